package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/klokku/calgate/internal/config"
	"github.com/klokku/calgate/internal/database"
	"github.com/klokku/calgate/internal/utils"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg config.Application
	db  *pgxpool.Pool
	srv *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
		log.Debug("no .env file found")
	}

	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	// DB + migrations
	db, err := database.Open(context.Background(), cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(cfg.Database); err != nil {
		db.Close()
		return nil, err
	}

	deps := BuildDependencies(NewRepositories(db), cfg, utils.SystemClock{})

	srv := &http.Server{
		Handler:      NewHandler(deps, cfg),
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, db: db, srv: srv}, nil
}

// Run starts the HTTP server and blocks.
func (a *Application) Run() error {
	defer a.db.Close()
	log.Infof("Starting server on %s (public host %s)", a.srv.Addr, a.cfg.Host)
	return a.srv.ListenAndServe()
}
