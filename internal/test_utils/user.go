package test_utils

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/calgate/pkg/user"
)

// CreateTestUser inserts a user row and returns a context carrying that user.
func CreateTestUser(t *testing.T, db *pgxpool.Pool, uid string) (context.Context, user.User) {
	t.Helper()
	ctx := context.Background()

	u := user.User{Uid: uid, DisplayName: "Test User", Email: uid + "@example.com"}
	err := db.QueryRow(ctx, `INSERT INTO users (uid, display_name, email) VALUES ($1, $2, $3) RETURNING id`,
		u.Uid, u.DisplayName, u.Email).Scan(&u.Id)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user.WithUser(ctx, u), u
}
