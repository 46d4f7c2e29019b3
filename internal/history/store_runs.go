package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, run_uuid, mode, text_source, voice, subtitles, slide_count, output_path, subtitle_path, status, stage, error_message, created_at, finished_at"

// timestampLayout is fixed width so stored values sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Begin inserts a running row for a new pipeline run and returns it with its
// assigned identifier.
func (s *Store) Begin(ctx context.Context, run Run) (*Run, error) {
	if strings.TrimSpace(run.RunID) == "" {
		return nil, errors.New("history begin: run id is required")
	}
	if strings.TrimSpace(run.Mode) == "" {
		return nil, errors.New("history begin: mode is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Status = StatusRunning
	run.FinishedAt = nil

	res, err := s.exec(
		ctx,
		`INSERT INTO runs (
            run_uuid, mode, text_source, voice, subtitles, slide_count,
            output_path, subtitle_path, status, stage, error_message, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.Mode,
		nullableString(run.TextSource),
		nullableString(run.Voice),
		boolToInt(run.Subtitles),
		run.SlideCount,
		nullableString(run.OutputPath),
		nullableString(run.SubtitlePath),
		string(run.Status),
		nullableString(run.Stage),
		nil,
		run.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	run.ID = id
	return &run, nil
}

// Update persists the mutable fields of a run. Terminal statuses stamp
// finished_at when the caller has not set it.
func (s *Store) Update(ctx context.Context, run *Run) error {
	if run == nil || run.ID == 0 {
		return errors.New("history update: run with id is required")
	}
	if run.Status.IsTerminal() && run.FinishedAt == nil {
		now := time.Now().UTC()
		run.FinishedAt = &now
	}
	var finished any
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC().Format(timestampLayout)
	}
	res, err := s.exec(
		ctx,
		`UPDATE runs SET
            slide_count = ?, output_path = ?, subtitle_path = ?, status = ?,
            stage = ?, error_message = ?, finished_at = ?
        WHERE id = ?`,
		run.SlideCount,
		nullableString(run.OutputPath),
		nullableString(run.SubtitlePath),
		string(run.Status),
		nullableString(run.Stage),
		nullableString(run.ErrorMessage),
		finished,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run %d: %w", run.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update run %d: %w", run.ID, ErrNotFound)
	}
	return nil
}

// Get fetches a run by identifier.
func (s *Store) Get(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return run, nil
}

// List returns the most recent runs first. A limit <= 0 returns every row.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Prune deletes finished runs created before the cutoff and reports how many
// rows were removed. Running rows are never pruned.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.exec(
		ctx,
		"DELETE FROM runs WHERE created_at < ? AND status != ?",
		before.UTC().Format(timestampLayout),
		string(StatusRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return removed, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id           int64
		runID        string
		mode         string
		textSource   sql.NullString
		voice        sql.NullString
		subtitles    int64
		slideCount   int64
		outputPath   sql.NullString
		subtitlePath sql.NullString
		statusStr    string
		stage        sql.NullString
		errorMessage sql.NullString
		createdRaw   string
		finishedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&runID,
		&mode,
		&textSource,
		&voice,
		&subtitles,
		&slideCount,
		&outputPath,
		&subtitlePath,
		&statusStr,
		&stage,
		&errorMessage,
		&createdRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:           id,
		RunID:        runID,
		Mode:         mode,
		TextSource:   textSource.String,
		Voice:        voice.String,
		Subtitles:    subtitles != 0,
		SlideCount:   int(slideCount),
		OutputPath:   outputPath.String,
		SubtitlePath: subtitlePath.String,
		Status:       Status(statusStr),
		Stage:        stage.String,
		ErrorMessage: errorMessage.String,
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		run.CreatedAt = ts
	}
	if finishedRaw.Valid && finishedRaw.String != "" {
		if ts, err := time.Parse(time.RFC3339Nano, finishedRaw.String); err == nil {
			run.FinishedAt = &ts
		}
	}
	return run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
