package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klokku/calgate/internal/event_bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService() (*UserServiceImpl, *event_bus.EventBus) {
	bus := event_bus.NewEventBus()
	return NewUserService(NewStubUserRepository(), bus), bus
}

func TestRegisterLogin_PublishesUserCreatedOnlyOnce(t *testing.T) {
	// given
	service, bus := setupService()
	var published []event_bus.UserCreatedPayload
	var contextUser User
	event_bus.SubscribeTyped[event_bus.UserCreatedPayload](bus, event_bus.UserCreated,
		func(e event_bus.EventT[event_bus.UserCreatedPayload]) error {
			published = append(published, e.Data)
			contextUser, _ = CurrentUser(e.Context())
			return nil
		})
	ctx := context.Background()

	// when
	first, err := service.RegisterLogin(ctx, User{Uid: "g-1", DisplayName: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	second, err := service.RegisterLogin(ctx, User{Uid: "g-1", DisplayName: "Ada L.", Email: "ada@example.com"})
	require.NoError(t, err)

	// then
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, "Ada L.", second.DisplayName)
	assert.Len(t, published, 1)
	assert.Equal(t, "g-1", published[0].Uid)
	assert.Equal(t, first.Id, contextUser.Id)
}

func TestRegisterLogin_PublishesTimeZone(t *testing.T) {
	service, bus := setupService()
	var published event_bus.UserCreatedPayload
	event_bus.SubscribeTyped[event_bus.UserCreatedPayload](bus, event_bus.UserCreated,
		func(e event_bus.EventT[event_bus.UserCreatedPayload]) error {
			published = e.Data
			return nil
		})

	_, err := service.RegisterLogin(context.Background(), User{Uid: "g-4", TimeZone: "Asia/Tokyo"})
	require.NoError(t, err)
	again, err := service.RegisterLogin(context.Background(), User{Uid: "g-4"})
	require.NoError(t, err)

	assert.Equal(t, "Asia/Tokyo", published.TimeZone)
	assert.Equal(t, "Asia/Tokyo", again.TimeZone)
}

func TestRegisterLogin_SubscriberFailureDoesNotFailLogin(t *testing.T) {
	service, bus := setupService()
	bus.Subscribe(event_bus.UserCreated, func(event_bus.Event) error { return assert.AnError })

	u, err := service.RegisterLogin(context.Background(), User{Uid: "g-2"})

	assert.NoError(t, err)
	assert.NotZero(t, u.Id)
}

func TestGetCurrentUser_WithoutUserInContext(t *testing.T) {
	service, _ := setupService()

	_, err := service.GetCurrentUser(context.Background())

	assert.ErrorIs(t, err, ErrNoUser)
}

func TestHandler_CurrentUser(t *testing.T) {
	service, _ := setupService()
	stored, err := service.RegisterLogin(context.Background(), User{Uid: "g-3", DisplayName: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)
	handler := NewHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/user/current", nil)
	w := httptest.NewRecorder()
	handler.CurrentUser(w, req.WithContext(WithUser(req.Context(), stored)))

	assert.Equal(t, http.StatusOK, w.Code)
	var dto UserDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	assert.Equal(t, UserDTO{Id: stored.Id, Uid: "g-3", DisplayName: "Grace", Email: "grace@example.com", TimeZone: "UTC"}, dto)
}

func TestHandler_CurrentUser_Unknown(t *testing.T) {
	service, _ := setupService()
	handler := NewHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/user/current", nil)
	w := httptest.NewRecorder()
	handler.CurrentUser(w, req.WithContext(WithUser(req.Context(), User{Id: 42})))

	assert.Equal(t, http.StatusForbidden, w.Code)
}
