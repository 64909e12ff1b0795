package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"sapdash/pkg/contracts/domain"
)

//go:embed schema.sql
var schemaSQL string

const eventColumns = `id, order_id, status, message, payload, original_payload, payload_format,
	retry_count, retry_history, error_details, integration_name, created_at, updated_at`

const newestFirst = ` ORDER BY created_at DESC, id DESC`

// SQLiteStore stores events in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  Clock
}

// NewSQLiteStore opens or creates the database at dbPath. An empty path means
// an in-memory database. Missing parent directories are created.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory for database: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Single writer; also keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath, now: time.Now}, nil
}

// Path returns the database location.
func (s *SQLiteStore) Path() string { return s.path }

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Save(ctx context.Context, event *domain.IntegrationEvent) error {
	now := s.now()
	if event.ID == 0 {
		stamp(event, now, true)
		res, err := s.db.ExecContext(ctx, `INSERT INTO integration_events
			(order_id, status, message, payload, original_payload, payload_format,
			 retry_count, retry_history, error_details, integration_name, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			event.OrderID, string(event.Status), event.Message, event.Payload, event.OriginalPayload,
			string(event.PayloadFormat), event.RetryCount, event.RetryHistory, event.ErrorDetails,
			event.IntegrationName, event.CreatedAt.UnixNano(), event.UpdatedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("insert event %s: %w", event.OrderID, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert event %s: %w", event.OrderID, err)
		}
		event.ID = id
		return nil
	}

	stamp(event, now, false)
	res, err := s.db.ExecContext(ctx, `UPDATE integration_events SET
		order_id = ?, status = ?, message = ?, payload = ?, original_payload = ?, payload_format = ?,
		retry_count = ?, retry_history = ?, error_details = ?, integration_name = ?, updated_at = ?
		WHERE id = ?`,
		event.OrderID, string(event.Status), event.Message, event.Payload, event.OriginalPayload,
		string(event.PayloadFormat), event.RetryCount, event.RetryHistory, event.ErrorDetails,
		event.IntegrationName, event.UpdatedAt.UnixNano(), event.ID)
	if err != nil {
		return fmt.Errorf("update event %d: %w", event.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event %d: %w", event.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update event %d: %w", event.ID, ErrEventNotFound)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*domain.IntegrationEvent, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM integration_events WHERE id = ?`, id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %d: %w", id, ErrEventNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	return &event, nil
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]domain.IntegrationEvent, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	return s.query(ctx, `SELECT `+eventColumns+` FROM integration_events`+newestFirst+` LIMIT ?`, limit)
}

func (s *SQLiteStore) SearchByOrderID(ctx context.Context, q string) ([]domain.IntegrationEvent, error) {
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	return s.query(ctx, `SELECT `+eventColumns+` FROM integration_events
		WHERE LOWER(order_id) LIKE ? ESCAPE '\'`+newestFirst, pattern)
}

func (s *SQLiteStore) FilterByStatus(ctx context.Context, status domain.EventStatus) ([]domain.IntegrationEvent, error) {
	return s.query(ctx, `SELECT `+eventColumns+` FROM integration_events WHERE status = ?`+newestFirst, string(status))
}

func (s *SQLiteStore) ByIntegration(ctx context.Context, name string) ([]domain.IntegrationEvent, error) {
	return s.query(ctx, `SELECT `+eventColumns+` FROM integration_events WHERE integration_name = ?`+newestFirst, name)
}

func (s *SQLiteStore) Between(ctx context.Context, start, end time.Time) ([]domain.IntegrationEvent, error) {
	return s.query(ctx, `SELECT `+eventColumns+` FROM integration_events
		WHERE created_at BETWEEN ? AND ?`+newestFirst, start.UnixNano(), end.UnixNano())
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM integration_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) CountByStatus(ctx context.Context, status domain.EventStatus) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM integration_events WHERE status = ?`, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s events: %w", status, err)
	}
	return n, nil
}

func (s *SQLiteStore) SummaryByIntegration(ctx context.Context) ([]domain.IntegrationSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT integration_name, COUNT(*) AS n FROM integration_events
		GROUP BY integration_name ORDER BY n DESC, integration_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("summarize events: %w", err)
	}
	defer rows.Close()

	var summary []domain.IntegrationSummary
	for rows.Next() {
		var item domain.IntegrationSummary
		if err := rows.Scan(&item.IntegrationName, &item.Count); err != nil {
			return nil, fmt.Errorf("summarize events: %w", err)
		}
		summary = append(summary, item)
	}
	return summary, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.IntegrationEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []domain.IntegrationEvent{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return events, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (domain.IntegrationEvent, error) {
	var (
		e                  domain.IntegrationEvent
		status, format     string
		createdAt, updated int64
	)
	err := row.Scan(&e.ID, &e.OrderID, &status, &e.Message, &e.Payload, &e.OriginalPayload, &format,
		&e.RetryCount, &e.RetryHistory, &e.ErrorDetails, &e.IntegrationName, &createdAt, &updated)
	if err != nil {
		return domain.IntegrationEvent{}, err
	}
	e.Status = domain.EventStatus(status)
	e.PayloadFormat = domain.PayloadFormat(format)
	e.CreatedAt = time.Unix(0, createdAt)
	e.UpdatedAt = time.Unix(0, updated)
	return e, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
