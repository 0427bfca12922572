package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"subweave/internal/config"
)

// Store manages queue persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the queue database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, "queue.db"))
}

// OpenPath connects to the queue database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

const itemColumns = `id, source_path, title, status, source_language, target_language,
    detected_language, segments_json, subtitle_file, final_file,
    translation_failures, error_message, progress_stage, progress_percent,
    progress_message, created_at, updated_at`

// NewVideo inserts a pending item for a source video.
func (s *Store) NewVideo(ctx context.Context, sourcePath, title, sourceLang, targetLang string) (*Item, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO queue_items (
            source_path, title, status, source_language, target_language,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sourcePath,
		title,
		StatusPending,
		sourceLang,
		targetLang,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a queue item by identifier. A missing item returns nil, nil.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM queue_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update persists the mutable fields of an item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("update: nil item")
	}
	item.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE queue_items SET
            source_path = ?, title = ?, status = ?, source_language = ?,
            target_language = ?, detected_language = ?, segments_json = ?,
            subtitle_file = ?, final_file = ?, translation_failures = ?,
            error_message = ?, progress_stage = ?, progress_percent = ?,
            progress_message = ?, updated_at = ?
        WHERE id = ?`,
		item.SourcePath,
		item.Title,
		item.Status,
		item.SourceLanguage,
		item.TargetLanguage,
		item.DetectedLanguage,
		item.SegmentsJSON,
		item.SubtitleFile,
		item.FinalFile,
		item.TranslationFailures,
		item.ErrorMessage,
		item.ProgressStage,
		item.ProgressPercent,
		item.ProgressMessage,
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item %d: %w", item.ID, err)
	}
	return nil
}

// NextForStatuses returns the oldest item whose status matches any of the
// provided statuses, or nil when none is waiting.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Item, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = status
	}
	query := `SELECT ` + itemColumns + ` FROM queue_items WHERE status IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY created_at ASC, id ASC LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next item: %w", err)
	}
	return item, nil
}

// List returns items ordered by creation, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM queue_items`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Stats returns the number of items per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM queue_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}

// Clear removes all queue items and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM queue_items`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// RetryFailed resets failed items to pending so the next run picks them up.
func (s *Store) RetryFailed(ctx context.Context) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE queue_items SET status = ?, error_message = '', progress_stage = '',
            progress_percent = 0, progress_message = '', updated_at = ?
        WHERE status = ?`,
		StatusPending, timestamp, StatusFailed,
	)
	if err != nil {
		return 0, fmt.Errorf("retry failed items: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// ResetStuckProcessing rolls items abandoned mid-stage (after a crash) back
// to the preceding start status so they are re-attempted.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	rollbacks := []struct {
		from Status
		to   Status
	}{
		{StatusTranscribing, StatusPending},
		{StatusTranslating, StatusTranscribed},
		{StatusCompositing, StatusTranslated},
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	var total int64
	for _, rb := range rollbacks {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE queue_items SET status = ?, updated_at = ? WHERE status = ?`,
			rb.to, timestamp, rb.from,
		)
		if err != nil {
			return total, fmt.Errorf("reset stuck %s: %w", rb.from, err)
		}
		count, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += count
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(scanner rowScanner) (*Item, error) {
	var (
		item      Item
		status    string
		createdAt string
		updatedAt string
	)
	err := scanner.Scan(
		&item.ID,
		&item.SourcePath,
		&item.Title,
		&status,
		&item.SourceLanguage,
		&item.TargetLanguage,
		&item.DetectedLanguage,
		&item.SegmentsJSON,
		&item.SubtitleFile,
		&item.FinalFile,
		&item.TranslationFailures,
		&item.ErrorMessage,
		&item.ProgressStage,
		&item.ProgressPercent,
		&item.ProgressMessage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Status = Status(status)
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		item.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		item.UpdatedAt = ts
	}
	return &item, nil
}
