package google

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
)

type StubCredentialsRepo struct {
	mu     sync.Mutex
	tokens map[int]oauth2.Token
}

func NewStubCredentialsRepo() *StubCredentialsRepo {
	return &StubCredentialsRepo{tokens: make(map[int]oauth2.Token)}
}

func (s *StubCredentialsRepo) GetToken(_ context.Context, userId int) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[userId]
	if !ok {
		return nil, ErrNoCredentials
	}
	return &token, nil
}

func (s *StubCredentialsRepo) StoreToken(_ context.Context, userId int, token *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *token
	if stored.RefreshToken == "" {
		stored.RefreshToken = s.tokens[userId].RefreshToken
	}
	s.tokens[userId] = stored
	return nil
}

func (s *StubCredentialsRepo) DeleteToken(_ context.Context, userId int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userId)
	return nil
}
