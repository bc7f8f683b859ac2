package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowdeck/flowdeck/internal/models"
	_ "modernc.org/sqlite"
)

// Store persists sessions and their append-only result and correction
// logs, keyed by session id. Result and correction rows are only ever
// inserted; the session row carries the current state machine position.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		work_item TEXT NOT NULL,
		workflow TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		current_phase TEXT,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		completed_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS phase_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		phase TEXT NOT NULL,
		attempt INTEGER NOT NULL,
		operation TEXT NOT NULL,
		status TEXT NOT NULL,
		exit_code INTEGER NOT NULL,
		reason TEXT,
		stdout TEXT,
		stderr TEXT,
		started_at TIMESTAMP,
		duration_ms INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS corrections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		phase TEXT NOT NULL,
		attempt INTEGER NOT NULL,
		indicator TEXT NOT NULL,
		operation TEXT NOT NULL,
		args TEXT,
		status TEXT NOT NULL,
		exit_code INTEGER NOT NULL,
		stdout TEXT,
		stderr TEXT,
		at TIMESTAMP,
		duration_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
	CREATE INDEX IF NOT EXISTS idx_sessions_work_item ON sessions(work_item);
	CREATE INDEX IF NOT EXISTS idx_results_session ON phase_results(session_id);
	CREATE INDEX IF NOT EXISTS idx_corrections_session ON corrections(session_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) CreateSession(session *models.Session) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, work_item, workflow, status, current_phase, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.WorkItem, session.Workflow, session.Status,
		session.CurrentPhase, session.Error, session.CreatedAt,
	)
	return err
}

func (s *Store) UpdateSession(session *models.Session) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET status = ?, current_phase = ?, error = ?, completed_at = ? WHERE id = ?`,
		session.Status, session.CurrentPhase, session.Error, session.CompletedAt, session.ID,
	)
	return err
}

func (s *Store) GetSession(id string) (*models.Session, error) {
	row := s.db.QueryRow(
		`SELECT id, work_item, workflow, status, current_phase, error, created_at, completed_at
		 FROM sessions WHERE id = ?`, id,
	)
	return scanSession(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var session models.Session
	var currentPhase, errText sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&session.ID, &session.WorkItem, &session.Workflow, &session.Status,
		&currentPhase, &errText, &session.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	if currentPhase.Valid {
		session.CurrentPhase = currentPhase.String
	}
	if errText.Valid {
		session.Error = errText.String
	}
	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}

	return &session, nil
}

func (s *Store) ListSessions(limit int) ([]*models.Session, error) {
	rows, err := s.db.Query(
		`SELECT id, work_item, workflow, status, current_phase, error, created_at, completed_at
		 FROM sessions ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// AppendResult appends one phase execution to the session log.
func (s *Store) AppendResult(sessionID, phase string, attempt int, result models.ExecutionResult) error {
	_, err := s.db.Exec(
		`INSERT INTO phase_results (session_id, phase, attempt, operation, status, exit_code, reason, stdout, stderr, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, phase, attempt, result.Operation, result.Status, result.ExitCode,
		result.Reason, result.Stdout, result.Stderr, result.StartedAt,
		result.Duration.Milliseconds(),
	)
	return err
}

// PhaseResult is one row of the append-only phase log.
type PhaseResult struct {
	Phase   string
	Attempt int
	Result  models.ExecutionResult
}

func (s *Store) ListResults(sessionID string) ([]PhaseResult, error) {
	rows, err := s.db.Query(
		`SELECT phase, attempt, operation, status, exit_code, reason, stdout, stderr, started_at, duration_ms
		 FROM phase_results WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []PhaseResult
	for rows.Next() {
		var pr PhaseResult
		var reason, stdout, stderr sql.NullString
		var startedAt sql.NullTime
		var durationMS int64

		err := rows.Scan(
			&pr.Phase, &pr.Attempt, &pr.Result.Operation, &pr.Result.Status,
			&pr.Result.ExitCode, &reason, &stdout, &stderr, &startedAt, &durationMS,
		)
		if err != nil {
			return nil, err
		}

		pr.Result.Reason = reason.String
		pr.Result.Stdout = stdout.String
		pr.Result.Stderr = stderr.String
		if startedAt.Valid {
			pr.Result.StartedAt = startedAt.Time
		}
		pr.Result.Duration = time.Duration(durationMS) * time.Millisecond

		results = append(results, pr)
	}

	return results, rows.Err()
}

// AppendCorrection appends one self-heal attempt to the session log.
func (s *Store) AppendCorrection(ca models.CorrectionAttempt) error {
	argsJSON, err := json.Marshal(ca.Args)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO corrections (session_id, phase, attempt, indicator, operation, args, status, exit_code, stdout, stderr, at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ca.SessionID, ca.Phase, ca.Attempt, ca.Indicator, ca.Operation, string(argsJSON),
		ca.Result.Status, ca.Result.ExitCode, ca.Result.Stdout, ca.Result.Stderr,
		ca.At, ca.Result.Duration.Milliseconds(),
	)
	return err
}

func (s *Store) ListCorrections(sessionID string) ([]models.CorrectionAttempt, error) {
	rows, err := s.db.Query(
		`SELECT session_id, phase, attempt, indicator, operation, args, status, exit_code, stdout, stderr, at, duration_ms
		 FROM corrections WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []models.CorrectionAttempt
	for rows.Next() {
		var ca models.CorrectionAttempt
		var argsJSON, stdout, stderr sql.NullString
		var at sql.NullTime
		var durationMS int64

		err := rows.Scan(
			&ca.SessionID, &ca.Phase, &ca.Attempt, &ca.Indicator, &ca.Operation,
			&argsJSON, &ca.Result.Status, &ca.Result.ExitCode, &stdout, &stderr,
			&at, &durationMS,
		)
		if err != nil {
			return nil, err
		}

		if argsJSON.Valid && argsJSON.String != "" {
			if err := json.Unmarshal([]byte(argsJSON.String), &ca.Args); err != nil {
				return nil, fmt.Errorf("decode correction args for session %s: %w", ca.SessionID, err)
			}
		}
		ca.Result.Operation = ca.Operation
		ca.Result.Stdout = stdout.String
		ca.Result.Stderr = stderr.String
		if at.Valid {
			ca.At = at.Time
		}
		ca.Result.Duration = time.Duration(durationMS) * time.Millisecond

		attempts = append(attempts, ca)
	}

	return attempts, rows.Err()
}

// DeleteSession removes a session and its logs.
func (s *Store) DeleteSession(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM corrections WHERE session_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM phase_results WHERE session_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}
