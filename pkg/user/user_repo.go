package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")

type Repo interface {
	// UpsertUser creates the user or refreshes its profile fields. The returned flag is true when a new row was created.
	UpsertUser(ctx context.Context, user User) (User, bool, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
}

type UserRepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

func (u *UserRepoImpl) UpsertUser(ctx context.Context, user User) (User, bool, error) {
	// an empty time zone keeps the stored one
	query := `INSERT INTO users (uid, display_name, email, time_zone) VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), 'UTC'))
				ON CONFLICT (uid) DO UPDATE SET
					display_name = EXCLUDED.display_name,
					email = EXCLUDED.email,
					time_zone = CASE WHEN $4 = '' THEN users.time_zone ELSE EXCLUDED.time_zone END,
					last_login = now()
				RETURNING id, time_zone, (xmax = 0) AS created`
	var created bool
	err := u.db.QueryRow(ctx, query, user.Uid, user.DisplayName, user.Email, user.TimeZone).Scan(&user.Id, &user.TimeZone, &created)
	if err != nil {
		log.Errorf("failed to upsert user %s: %v", user.Uid, err)
		return User{}, false, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, created, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	return u.getOne(ctx, `SELECT id, uid, display_name, email, time_zone FROM users WHERE id = $1`, id)
}

func (u *UserRepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.getOne(ctx, `SELECT id, uid, display_name, email, time_zone FROM users WHERE uid = $1`, uid)
}

func (u *UserRepoImpl) getOne(ctx context.Context, query string, arg any) (User, error) {
	var user User
	err := u.db.QueryRow(ctx, query, arg).Scan(&user.Id, &user.Uid, &user.DisplayName, &user.Email, &user.TimeZone)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debugf("user %v not found", arg)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}
