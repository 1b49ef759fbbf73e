package test_utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/calgate/internal/config"
	"github.com/klokku/calgate/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	dbName     = "calgate"
	dbUser     = "test_calgate"
	dbPassword = "test_calgate"
)

func preparePostgresContainer(ctx context.Context) (*postgres.PostgresContainer, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %v", err)
	}

	pgContainer, err := postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithInitScripts(filepath.Join(projectRoot, "dev", "init.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return nil, err
	}
	return pgContainer, nil
}

// TestWithDB starts a Postgres container, applies all migrations and returns the
// pool together with a cleanup function terminating the container.
func TestWithDB() (*pgxpool.Pool, func()) {
	ctx := context.Background()

	container, err := preparePostgresContainer(ctx)
	if err != nil {
		log.Errorf("Failed to start postgres container: %v", err)
		os.Exit(1)
	}

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "5432/tcp")

	log.Infof("Postgres container started at %s:%d", host, port.Int())

	cfg := config.Database{
		Host:   host,
		Port:   port.Int(),
		User:   dbUser,
		Pass:   dbPassword,
		Name:   dbName,
		Schema: "calgate",
	}

	if err := database.Migrate(cfg); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	pool, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}

	return pool, func() {
		pool.Close()
		if err := testcontainers.TerminateContainer(container); err != nil {
			log.Errorf("Failed to terminate postgres container: %v", err)
		}
	}
}

// findProjectRoot attempts to locate the project root directory
// It looks for .git directory or go.mod file
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if fileExists(filepath.Join(dir, ".git")) || fileExists(filepath.Join(dir, "go.mod")) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root")
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
