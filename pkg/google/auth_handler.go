package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/calgate/internal/config"
	"github.com/klokku/calgate/internal/rest"
	"github.com/klokku/calgate/pkg/session"
	"github.com/klokku/calgate/pkg/user"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

const (
	stateCookie    = "oauth_state"
	timeZoneCookie = "oauth_tz"
	stateLifetime  = 10 * time.Minute
)

var ErrUnauthenticated = errors.New("user is unauthenticated, Google authentication is required")

// GoogleAuth runs the authorization-code flow, keeps the Google token per user and
// hands out the session token after a successful login.
type GoogleAuth struct {
	oauthConfig *oauth2.Config
	userService user.Service
	tokens      *session.TokenService
	credentials CredentialsRepo
	profiles    ProfileFetcher
	frontendUrl string
	secure      bool
}

func NewGoogleAuth(
	cfg config.Application,
	userService user.Service,
	tokens *session.TokenService,
	credentials CredentialsRepo,
	profiles ProfileFetcher,
) *GoogleAuth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  strings.TrimSuffix(cfg.Host, "/") + "/auth/google/callback",
		Scopes:       []string{"profile", "email", calendar.CalendarScope},
	}

	return &GoogleAuth{
		oauthConfig: oauthConfig,
		userService: userService,
		tokens:      tokens,
		credentials: credentials,
		profiles:    profiles,
		frontendUrl: cfg.Frontend.Url,
		secure:      strings.HasPrefix(cfg.Host, "https://"),
	}
}

// Login godoc
// @Summary Start Google sign-in
// @Description The optional tz is the browser's IANA time zone, used for the first-login sample agenda
// @Tags Auth
// @Param tz query string false "IANA time zone, e.g. Europe/Warsaw"
// @Success 302
// @Router /auth/google [get]
func (g *GoogleAuth) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.New().String()
	g.setFlowCookie(w, stateCookie, state)
	if tz := r.URL.Query().Get("tz"); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			log.Debugf("ignoring unknown time zone %q: %v", tz, err)
		} else {
			g.setFlowCookie(w, timeZoneCookie, tz)
		}
	}

	log.Tracef("Redirecting to Google auth URL with state: %s", state)
	u := g.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	http.Redirect(w, r, u, http.StatusFound)
}

// Callback godoc
// @Summary Google OAuth callback
// @Description Exchanges the code, registers the user and redirects to the front end with ?token=<JWT>
// @Tags Auth
// @Param code query string true "Authorization code"
// @Param state query string true "State issued by /auth/google"
// @Success 302
// @Failure 400 {object} rest.ErrorResponse
// @Failure 401 {object} rest.ErrorResponse
// @Router /auth/google/callback [get]
func (g *GoogleAuth) Callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.FormValue("state") {
		log.Warn("OAuth callback with missing or mismatched state")
		rest.WriteError(w, http.StatusBadRequest, "Invalid OAuth state", "")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/auth/google", MaxAge: -1})
	var timeZone string
	if tzCookie, err := r.Cookie(timeZoneCookie); err == nil {
		timeZone = tzCookie.Value
		http.SetCookie(w, &http.Cookie{Name: timeZoneCookie, Path: "/auth/google", MaxAge: -1})
	}

	if reason := r.FormValue("error"); reason != "" {
		log.Infof("Google sign-in was not granted: %s", reason)
		rest.WriteError(w, http.StatusUnauthorized, "Google sign-in failed", reason)
		return
	}

	ctx := r.Context()
	token, err := g.oauthConfig.Exchange(ctx, r.FormValue("code"))
	if err != nil {
		log.Errorf("unable to exchange code for token: %v", err)
		rest.WriteError(w, http.StatusUnauthorized, "Google sign-in failed", "unable to exchange authorization code")
		return
	}

	profile, err := g.profiles.FetchProfile(ctx, g.oauthConfig.Client(ctx, token))
	if err != nil {
		log.Errorf("unable to fetch Google profile: %v", err)
		rest.WriteError(w, http.StatusUnauthorized, "Google sign-in failed", "unable to read Google profile")
		return
	}

	redirect, err := g.completeLogin(ctx, profile, token, timeZone)
	if err != nil {
		log.Error(err)
		http.Error(w, "unable to complete sign-in", http.StatusInternalServerError)
		return
	}
	log.Debugf("Successfully signed in Google user %s", profile.Id)
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (g *GoogleAuth) setFlowCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/auth/google",
		MaxAge:   int(stateLifetime.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (g *GoogleAuth) completeLogin(ctx context.Context, profile Profile, token *oauth2.Token, timeZone string) (string, error) {
	u, err := g.userService.RegisterLogin(ctx, user.User{
		Uid:         profile.Id,
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
		TimeZone:    timeZone,
	})
	if err != nil {
		return "", fmt.Errorf("unable to register user %s: %w", profile.Id, err)
	}

	if err := g.credentials.StoreToken(ctx, u.Id, token); err != nil {
		return "", err
	}

	signed, err := g.tokens.Issue(session.Identity{
		Id:    profile.Id,
		Name:  profile.DisplayName,
		Email: profile.Email,
	})
	if err != nil {
		return "", err
	}

	target, err := url.Parse(g.frontendUrl)
	if err != nil {
		return "", fmt.Errorf("invalid frontend url %q: %w", g.frontendUrl, err)
	}
	query := target.Query()
	query.Set("token", signed)
	target.RawQuery = query.Encode()
	return target.String(), nil
}

// Status godoc
// @Summary Whether Google Calendar is connected for the current user
// @Tags Google
// @Produce json
// @Success 200 {boolean} bool
// @Failure 404
// @Router /api/google/auth [get]
// @Security BearerAuth
func (g *GoogleAuth) Status(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
		return
	}
	connected, err := g.IsAuthenticated(r.Context(), userId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !connected {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, true)
}

// Logout godoc
// @Summary Forget the stored Google credentials
// @Tags Google
// @Success 204
// @Router /api/google/auth [delete]
// @Security BearerAuth
func (g *GoogleAuth) Logout(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
		return
	}
	if err := g.credentials.DeleteToken(r.Context(), userId); err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}
	log.Debugf("Google credentials removed for user %d", userId)
	w.WriteHeader(http.StatusNoContent)
}

func (g *GoogleAuth) IsAuthenticated(ctx context.Context, userId int) (bool, error) {
	_, err := g.credentials.GetToken(ctx, userId)
	if errors.Is(err, ErrNoCredentials) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// getClient returns an HTTP client authorized with the user's Google token. Refreshed
// tokens are written back to the credentials repository.
func (g *GoogleAuth) getClient(ctx context.Context, userId int) (*http.Client, error) {
	token, err := g.credentials.GetToken(ctx, userId)
	if errors.Is(err, ErrNoCredentials) {
		log.Debugf("user %d has no Google credentials", userId)
		return nil, ErrUnauthenticated
	} else if err != nil {
		return nil, err
	}
	source := &persistingTokenSource{
		ctx:         ctx,
		base:        g.oauthConfig.TokenSource(ctx, token),
		credentials: g.credentials,
		userId:      userId,
		accessToken: token.AccessToken,
	}
	return oauth2.NewClient(ctx, source), nil
}

type persistingTokenSource struct {
	mu          sync.Mutex
	ctx         context.Context
	base        oauth2.TokenSource
	credentials CredentialsRepo
	userId      int
	accessToken string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != s.accessToken {
		log.Debugf("storing refreshed Google token for user %d", s.userId)
		if err := s.credentials.StoreToken(s.ctx, s.userId, token); err != nil {
			log.Warnf("unable to persist refreshed Google token for user %d: %v", s.userId, err)
		}
		s.accessToken = token.AccessToken
	}
	return token, nil
}
