package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var ErrNoCredentials = errors.New("no google credentials stored")

// CredentialsRepo keeps the Google OAuth token obtained for each user.
type CredentialsRepo interface {
	GetToken(ctx context.Context, userId int) (*oauth2.Token, error)
	StoreToken(ctx context.Context, userId int, token *oauth2.Token) error
	DeleteToken(ctx context.Context, userId int) error
}

type CredentialsRepoImpl struct {
	db *pgxpool.Pool
}

func NewCredentialsRepo(db *pgxpool.Pool) *CredentialsRepoImpl {
	return &CredentialsRepoImpl{db: db}
}

func (r *CredentialsRepoImpl) GetToken(ctx context.Context, userId int) (*oauth2.Token, error) {
	var token oauth2.Token
	var expiry *int64
	err := r.db.QueryRow(ctx,
		"SELECT access_token, refresh_token, token_type, expiry FROM google_calendar_auth WHERE user_id = $1", userId).
		Scan(&token.AccessToken, &token.RefreshToken, &token.TokenType, &expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoCredentials
	} else if err != nil {
		err := fmt.Errorf("unable to retrieve Google auth token: %w", err)
		log.Error(err)
		return nil, err
	}
	if expiry != nil {
		token.Expiry = time.Unix(*expiry, 0)
	}
	return &token, nil
}

// StoreToken saves the token. A token without a refresh token keeps the previously stored one,
// since Google only returns it on the first consent.
func (r *CredentialsRepoImpl) StoreToken(ctx context.Context, userId int, token *oauth2.Token) error {
	query := `INSERT INTO google_calendar_auth (user_id, access_token, refresh_token, token_type, expiry)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (user_id) DO UPDATE SET
					access_token = EXCLUDED.access_token,
					refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), google_calendar_auth.refresh_token),
					token_type = EXCLUDED.token_type,
					expiry = EXCLUDED.expiry`
	_, err := r.db.Exec(ctx, query, userId, token.AccessToken, token.RefreshToken, token.TokenType, expiryUnix(token))
	if err != nil {
		err := fmt.Errorf("unable to store Google auth token for user %d: %w", userId, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *CredentialsRepoImpl) DeleteToken(ctx context.Context, userId int) error {
	_, err := r.db.Exec(ctx, "DELETE FROM google_calendar_auth WHERE user_id = $1", userId)
	if err != nil {
		err := fmt.Errorf("failed to delete Google auth row for user %d: %w", userId, err)
		log.Error(err)
		return err
	}
	return nil
}

func expiryUnix(token *oauth2.Token) *int64 {
	if token.Expiry.IsZero() {
		return nil
	}
	unix := token.Expiry.Unix()
	return &unix
}
