package submission

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// PostgresStore writes schedules directly into the service database.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertSchedule(ctx context.Context, header ScheduleHeader) error {
	query := `INSERT INTO schedules (id, timestamp, created_by) VALUES ($1, $2, $3)`
	_, err := s.db.Exec(ctx, query, header.Id, header.Timestamp, header.CreatedBy)
	if err != nil {
		log.Errorf("failed to insert schedule: %v", err)
		return storeError(SchedulesCollection, err)
	}
	return nil
}

// InsertEvents writes all rows in one batch inside a transaction; either every row is
// stored or none.
func (s *PostgresStore) InsertEvents(ctx context.Context, rows []EventRow) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		log.Errorf("failed to begin transaction: %v", err)
		return storeError(EventsCollection, err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO events (schedule_id, type, timestamp, guild, members_required) VALUES ($1, $2, $3, $4, $5)`
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(query, row.ScheduleId, row.Type, row.Timestamp, row.Guild, row.MembersRequired)
	}

	results := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := results.Exec(); err != nil {
			results.Close()
			log.Errorf("failed to insert events: %v", err)
			return storeError(EventsCollection, err)
		}
	}
	if err := results.Close(); err != nil {
		log.Errorf("failed to close batch: %v", err)
		return storeError(EventsCollection, err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Errorf("failed to commit transaction: %v", err)
		return storeError(EventsCollection, err)
	}
	return nil
}

func storeError(collection string, err error) *StoreError {
	message := err.Error()
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		message = pgErr.Message
	}
	return &StoreError{Collection: collection, Message: message, Err: err}
}
