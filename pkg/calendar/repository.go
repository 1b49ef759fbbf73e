package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrEventNotFound = errors.New("calendar event not found")

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	StoreEvent(ctx context.Context, userId int, event Event) (uuid.UUID, error)
	GetEvents(ctx context.Context, userId int, from, to time.Time) ([]Event, error)
	GetEvent(ctx context.Context, userId int, eventUid uuid.UUID) (Event, error)
	UpdateEvent(ctx context.Context, userId int, event Event) error
	DeleteEvent(ctx context.Context, userId int, eventUid uuid.UUID) error
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RepositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// no-op once committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&RepositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) StoreEvent(ctx context.Context, userId int, event Event) (uuid.UUID, error) {
	query := `INSERT INTO calendar_event (
                            uid,
                            user_id,
                            title,
                            start_time,
                            end_time,
                            all_day,
                            color,
                            description,
                            location
						) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	uid := uuid.New()
	_, err := r.q().Exec(ctx, query, uid, userId, event.Title, event.StartTime, event.EndTime, event.AllDay,
		event.Color, event.Metadata.Description, event.Metadata.Location)
	if err != nil {
		err := fmt.Errorf("could not store calendar event: %w", err)
		log.Error(err)
		return uuid.Nil, err
	}
	return uid, nil
}

func (r *RepositoryImpl) GetEvents(ctx context.Context, userId int, from, to time.Time) ([]Event, error) {
	// Events overlapping the period: starting before its end and ending after its start.
	query := `SELECT uid, title, start_time, end_time, all_day, color, description, location
              FROM calendar_event
              WHERE user_id = $1
                AND start_time < $2
                AND end_time > $3
			  ORDER BY start_time`

	rows, err := r.q().Query(ctx, query, userId, to, from)
	if err != nil {
		err := fmt.Errorf("could not query calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *RepositoryImpl) GetEvent(ctx context.Context, userId int, eventUid uuid.UUID) (Event, error) {
	query := `SELECT uid, title, start_time, end_time, all_day, color, description, location
              FROM calendar_event
              WHERE user_id = $1 AND uid = $2`
	event, err := scanEvent(r.q().QueryRow(ctx, query, userId, eventUid))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get calendar event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

func (r *RepositoryImpl) UpdateEvent(ctx context.Context, userId int, event Event) error {
	query := `UPDATE calendar_event
				SET title = $1, start_time = $2, end_time = $3, all_day = $4, color = $5, description = $6, location = $7
				WHERE uid = $8 AND user_id = $9`
	tag, err := r.q().Exec(ctx, query, event.Title, event.StartTime, event.EndTime, event.AllDay, event.Color,
		event.Metadata.Description, event.Metadata.Location, event.UID, userId)
	if err != nil {
		err := fmt.Errorf("could not update calendar event: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, userId int, eventUid uuid.UUID) error {
	tag, err := r.q().Exec(ctx, `DELETE FROM calendar_event WHERE uid = $1 AND user_id = $2`, eventUid, userId)
	if err != nil {
		err := fmt.Errorf("could not delete calendar event: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var event Event
	err := row.Scan(
		&event.UID,
		&event.Title,
		&event.StartTime,
		&event.EndTime,
		&event.AllDay,
		&event.Color,
		&event.Metadata.Description,
		&event.Metadata.Location,
	)
	return event, err
}
