package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/zukai/internal/app"
	"github.com/hylla/zukai/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// defaultEventLimit caps ListChangeEvents when no limit is given.
const defaultEventLimit = 50

// Repository stores diagram documents and the change ledger.
type Repository struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			key TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS change_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			diagram TEXT NOT NULL,
			subject_id TEXT NOT NULL DEFAULT '',
			operation TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			actor_type TEXT NOT NULL,
			metadata_json TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_change_events_diagram_created_at ON change_events(diagram, created_at DESC, id DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// LoadDocument returns the stored body for key, or app.ErrNotFound.
func (r *Repository) LoadDocument(ctx context.Context, key string) ([]byte, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, app.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document %q: %w", key, err)
	}
	return []byte(body), nil
}

// SaveDocument upserts the body for key.
func (r *Repository) SaveDocument(ctx context.Context, key string, data []byte, at time.Time) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("document key is required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents(key, body, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, key, string(data), ts(at))
	if err != nil {
		return fmt.Errorf("save document %q: %w", key, err)
	}
	return nil
}

// DeleteDocument removes the body stored for key.
func (r *Repository) DeleteDocument(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete document %q: %w", key, err)
	}
	return translateNoRows(res)
}

// DocumentUpdatedAt reports when key was last written.
func (r *Repository) DocumentUpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM documents WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, app.ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return parseTS(raw), nil
}

// AppendChangeEvent records one ledger entry.
func (r *Repository) AppendChangeEvent(ctx context.Context, event domain.ChangeEvent) error {
	actorType, err := domain.NormalizeActorType(event.ActorType)
	if err != nil {
		actorType = domain.ActorTypeUser
	}
	actorID := strings.TrimSpace(event.ActorID)
	if actorID == "" {
		actorID = "local"
	}
	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode change_events.metadata_json: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO change_events(diagram, subject_id, operation, actor_id, actor_type, metadata_json, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`, string(event.Diagram), event.SubjectID, string(event.Operation), actorID, string(actorType), string(metadataJSON), ts(normalizeEventTS(event.OccurredAt)))
	if err != nil {
		return fmt.Errorf("insert change event: %w", err)
	}
	return nil
}

// ListChangeEvents returns the newest events for one diagram.
func (r *Repository) ListChangeEvents(ctx context.Context, kind domain.DiagramKind, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, diagram, subject_id, operation, actor_id, actor_type, metadata_json, created_at
		FROM change_events
		WHERE diagram = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, string(kind), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ChangeEvent, 0)
	for rows.Next() {
		var (
			event       domain.ChangeEvent
			diagram     string
			opRaw       string
			actorType   string
			metadataRaw string
			createdRaw  string
		)
		if err := rows.Scan(&event.ID, &diagram, &event.SubjectID, &opRaw, &event.ActorID, &actorType, &metadataRaw, &createdRaw); err != nil {
			return nil, err
		}
		event.Diagram = domain.DiagramKind(diagram)
		event.Operation = normalizeChangeOperation(opRaw)
		event.ActorType, err = domain.NormalizeActorType(domain.ActorType(actorType))
		if err != nil {
			event.ActorType = domain.ActorTypeUser
		}
		event.OccurredAt = parseTS(createdRaw)
		if strings.TrimSpace(metadataRaw) == "" {
			metadataRaw = "{}"
		}
		if err := json.Unmarshal([]byte(metadataRaw), &event.Metadata); err != nil {
			return nil, fmt.Errorf("decode change_events.metadata_json: %w", err)
		}
		if event.Metadata == nil {
			event.Metadata = map[string]string{}
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// normalizeChangeOperation maps stored values back to known operations.
func normalizeChangeOperation(raw string) domain.ChangeOperation {
	switch op := domain.ChangeOperation(strings.ToLower(strings.TrimSpace(raw))); op {
	case domain.ChangeOperationCreate, domain.ChangeOperationUpdate, domain.ChangeOperationDelete,
		domain.ChangeOperationSelect, domain.ChangeOperationReset, domain.ChangeOperationImport:
		return op
	default:
		return domain.ChangeOperationUpdate
	}
}

func normalizeEventTS(in time.Time) time.Time {
	if in.IsZero() {
		return time.Now().UTC()
	}
	return in.UTC()
}

func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
