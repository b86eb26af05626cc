package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dunamismax/imgbox/internal/domain"
	_ "github.com/lib/pq"
)

const runSchemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	input TEXT NOT NULL,
	args JSONB NOT NULL,
	webhook_url TEXT NOT NULL DEFAULT '',
	outputs JSONB NOT NULL DEFAULT '[]',
	error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

type PostgresRunStore struct {
	db *sql.DB
}

func NewPostgresRunStore(ctx context.Context, dsn string) (*PostgresRunStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &PostgresRunStore{db: db}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresRunStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, runSchemaSQL); err != nil {
		return fmt.Errorf("ensure runs schema: %w", err)
	}
	return nil
}

func (s *PostgresRunStore) Close() error {
	return s.db.Close()
}

func (s *PostgresRunStore) Create(ctx context.Context, run domain.Run) error {
	argsJSON, err := json.Marshal(nonNil(run.Args))
	if err != nil {
		return fmt.Errorf("marshal run args: %w", err)
	}
	outputsJSON, err := json.Marshal(nonNil(run.Outputs))
	if err != nil {
		return fmt.Errorf("marshal run outputs: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, status, input, args, webhook_url, outputs, error, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID,
		run.Status,
		run.Input,
		argsJSON,
		run.WebhookURL,
		outputsJSON,
		run.Error,
		run.CreatedAt,
		run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	return nil
}

func (s *PostgresRunStore) Get(ctx context.Context, id string) (domain.Run, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, status, input, args, webhook_url, outputs, error, created_at, updated_at
		 FROM runs
		 WHERE id = $1`,
		id,
	)

	var (
		run         domain.Run
		argsJSON    []byte
		outputsJSON []byte
	)
	if err := row.Scan(
		&run.ID,
		&run.Status,
		&run.Input,
		&argsJSON,
		&run.WebhookURL,
		&outputsJSON,
		&run.Error,
		&run.CreatedAt,
		&run.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Run{}, false, nil
		}
		return domain.Run{}, false, fmt.Errorf("query run: %w", err)
	}

	if err := json.Unmarshal(argsJSON, &run.Args); err != nil {
		return domain.Run{}, false, fmt.Errorf("unmarshal run args: %w", err)
	}
	if err := json.Unmarshal(outputsJSON, &run.Outputs); err != nil {
		return domain.Run{}, false, fmt.Errorf("unmarshal run outputs: %w", err)
	}

	return run, true, nil
}

// UpdateStatus reads, applies, and writes the row inside one transaction so
// concurrent workers cannot interleave partial updates.
func (s *PostgresRunStore) UpdateStatus(ctx context.Context, id string, update domain.StatusUpdate) (domain.Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Run{}, fmt.Errorf("begin run update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		run         domain.Run
		outputsJSON []byte
	)
	err = tx.QueryRowContext(ctx, `SELECT status, outputs, error FROM runs WHERE id = $1 FOR UPDATE`, id).
		Scan(&run.Status, &outputsJSON, &run.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Run{}, ErrRunNotFound
	}
	if err != nil {
		return domain.Run{}, fmt.Errorf("lock run: %w", err)
	}
	if err := json.Unmarshal(outputsJSON, &run.Outputs); err != nil {
		return domain.Run{}, fmt.Errorf("unmarshal run outputs: %w", err)
	}

	applyUpdate(&run, update)
	if outputsJSON, err = json.Marshal(nonNil(run.Outputs)); err != nil {
		return domain.Run{}, fmt.Errorf("marshal run outputs: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE runs
		 SET status = $1, outputs = $2, error = $3, updated_at = $4
		 WHERE id = $5`,
		run.Status,
		outputsJSON,
		run.Error,
		time.Now().UTC(),
		id,
	); err != nil {
		return domain.Run{}, fmt.Errorf("update run status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Run{}, fmt.Errorf("commit run update: %w", err)
	}

	updated, ok, err := s.Get(ctx, id)
	if err != nil {
		return domain.Run{}, err
	}
	if !ok {
		return domain.Run{}, ErrRunNotFound
	}
	return updated, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
