package user

import (
	"context"
	"fmt"

	"github.com/klokku/calgate/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	// RegisterLogin records a successful sign-in of the given identity, creating the user on first login.
	RegisterLogin(ctx context.Context, user User) (User, error)
}

type UserServiceImpl struct {
	repo Repo
	bus  *event_bus.EventBus
}

func NewUserService(repo Repo, bus *event_bus.EventBus) *UserServiceImpl {
	return &UserServiceImpl{repo: repo, bus: bus}
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.repo.GetUser(ctx, userId)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

func (u *UserServiceImpl) RegisterLogin(ctx context.Context, user User) (User, error) {
	stored, created, err := u.repo.UpsertUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	if !created {
		log.Debugf("returning user signed in: %s", stored.Uid)
		return stored, nil
	}

	log.Infof("new user signed in: %s", stored.Uid)
	err = u.bus.Publish(event_bus.NewEvent(WithUser(ctx, stored), event_bus.UserCreated, event_bus.UserCreatedPayload{
		Id:          stored.Id,
		Uid:         stored.Uid,
		DisplayName: stored.DisplayName,
		Email:       stored.Email,
		TimeZone:    stored.TimeZone,
	}))
	if err != nil {
		// the login itself succeeded, subscribers only prepare optional data
		log.Warnf("failed to process user created event for %s: %v", stored.Uid, err)
	}
	return stored, nil
}
