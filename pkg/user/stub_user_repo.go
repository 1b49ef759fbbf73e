package user

import (
	"context"
	"sync"
)

type StubUserRepository struct {
	mu     sync.Mutex
	nextId int
	data   map[int]User
}

func NewStubUserRepository() *StubUserRepository {
	return &StubUserRepository{nextId: 0, data: map[int]User{}}
}

func (s *StubUserRepository) UpsertUser(_ context.Context, user User) (User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.data {
		if existing.Uid == user.Uid {
			user.Id = id
			if user.TimeZone == "" {
				user.TimeZone = existing.TimeZone
			}
			s.data[id] = user
			return user, false, nil
		}
	}
	s.nextId++
	user.Id = s.nextId
	if user.TimeZone == "" {
		user.TimeZone = "UTC"
	}
	s.data[user.Id] = user
	return user, true, nil
}

func (s *StubUserRepository) GetUser(_ context.Context, id int) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.data[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *StubUserRepository) GetUserByUid(_ context.Context, uid string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.data {
		if user.Uid == uid {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}
