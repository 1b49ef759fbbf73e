package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(tokens *TokenService) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/protected", Middleware(tokens)(http.HandlerFunc(Protected))).Methods(http.MethodGet)
	return r
}

func getProtected(r http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProtected_NoAuthorizationHeader(t *testing.T) {
	tokens, _ := newTestTokenService()

	w := getProtected(protectedRouter(tokens), "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtected_SchemeWithoutToken(t *testing.T) {
	tokens, _ := newTestTokenService()

	w := getProtected(protectedRouter(tokens), "Bearer")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtected_GarbageToken(t *testing.T) {
	tokens, _ := newTestTokenService()

	w := getProtected(protectedRouter(tokens), "Bearer garbage")

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProtected_ValidToken(t *testing.T) {
	// given
	tokens, _ := newTestTokenService()
	token, err := tokens.Issue(Identity{Id: "1234", Name: "Ada Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)

	// when
	w := getProtected(protectedRouter(tokens), "Bearer "+token)

	// then
	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Message string `json:"message"`
		User    struct {
			Id    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
			Exp   int64  `json:"exp"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Protected data", body.Message)
	assert.Equal(t, "1234", body.User.Id)
	assert.Equal(t, "Ada Lovelace", body.User.Name)
	assert.Equal(t, "ada@example.com", body.User.Email)
	assert.Equal(t, testNow.Add(time.Hour).Unix(), body.User.Exp)
}

func TestProtected_ExpiredToken(t *testing.T) {
	tokens, clock := newTestTokenService()
	clock.SetNow(testNow.Add(-2 * time.Hour))
	token, err := tokens.Issue(Identity{Id: "1234"})
	require.NoError(t, err)
	clock.SetNow(testNow)

	w := getProtected(protectedRouter(tokens), "Bearer "+token)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
