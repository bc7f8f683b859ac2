package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/flowdeck/flowdeck/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testSession(id string) *models.Session {
	return &models.Session{
		ID:        id,
		WorkItem:  "user login",
		Workflow:  "sdlc",
		Status:    models.SessionPending,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestSessionRoundtrip(t *testing.T) {
	store := testStore(t)

	session := testSession("s1")
	if err := store.CreateSession(session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := store.GetSession("s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ID != "s1" || got.WorkItem != "user login" || got.Workflow != "sdlc" {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
	if got.Status != models.SessionPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}
	if got.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil", got.CompletedAt)
	}
}

func TestUpdateSession(t *testing.T) {
	store := testStore(t)

	session := testSession("s1")
	if err := store.CreateSession(session); err != nil {
		t.Fatal(err)
	}

	done := time.Now().UTC().Truncate(time.Second)
	session.Status = models.SessionAbandoned
	session.CurrentPhase = "implement"
	session.Error = "retry budget exceeded"
	session.CompletedAt = &done
	if err := store.UpdateSession(session); err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	got, err := store.GetSession("s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.SessionAbandoned {
		t.Errorf("Status = %q, want abandoned", got.Status)
	}
	if got.CurrentPhase != "implement" {
		t.Errorf("CurrentPhase = %q, want implement", got.CurrentPhase)
	}
	if got.Error != "retry budget exceeded" {
		t.Errorf("Error = %q", got.Error)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt not persisted")
	}
}

func TestGetSession_NotFound(t *testing.T) {
	store := testStore(t)

	_, err := store.GetSession("missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListSessions_NewestFirstWithLimit(t *testing.T) {
	store := testStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"old", "mid", "new"} {
		s := testSession(id)
		s.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.CreateSession(s); err != nil {
			t.Fatal(err)
		}
	}

	sessions, err := store.ListSessions(2)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != "new" || sessions[1].ID != "mid" {
		t.Errorf("order = [%s %s], want [new mid]", sessions[0].ID, sessions[1].ID)
	}
}

func TestResultsLog_AppendOnlyOrder(t *testing.T) {
	store := testStore(t)
	if err := store.CreateSession(testSession("s1")); err != nil {
		t.Fatal(err)
	}

	entries := []struct {
		phase   string
		attempt int
		status  models.ResultStatus
	}{
		{"requirements", 1, models.ResultSuccess},
		{"design", 1, models.ResultFailure},
		{"design", 2, models.ResultSuccess},
	}
	for _, e := range entries {
		result := models.ExecutionResult{
			Operation: "sparc-run",
			Status:    e.status,
			StartedAt: time.Now().UTC().Truncate(time.Second),
			Duration:  1500 * time.Millisecond,
		}
		if e.status == models.ResultFailure {
			result.ExitCode = 1
			result.Stderr = "boom"
		}
		if err := store.AppendResult("s1", e.phase, e.attempt, result); err != nil {
			t.Fatalf("AppendResult failed: %v", err)
		}
	}

	results, err := store.ListResults("s1")
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, e := range entries {
		if results[i].Phase != e.phase || results[i].Attempt != e.attempt {
			t.Errorf("row %d = (%s, %d), want (%s, %d)", i, results[i].Phase, results[i].Attempt, e.phase, e.attempt)
		}
	}
	if results[1].Result.ExitCode != 1 || results[1].Result.Stderr != "boom" {
		t.Errorf("failure row not preserved: %+v", results[1].Result)
	}
	if results[0].Result.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", results[0].Result.Duration)
	}
}

func TestCorrectionsRoundtrip(t *testing.T) {
	store := testStore(t)
	if err := store.CreateSession(testSession("s1")); err != nil {
		t.Fatal(err)
	}

	ca := models.CorrectionAttempt{
		SessionID: "s1",
		Phase:     "implement",
		Attempt:   1,
		Indicator: "error",
		Operation: "swarm",
		Args:      []string{"npx", "claude-flow@alpha", "swarm", "Fix detected errors", "--continue-session"},
		Result: models.ExecutionResult{
			Operation: "swarm",
			Status:    models.ResultSuccess,
			Stdout:    "fixed",
			Duration:  2 * time.Second,
		},
		At: time.Now().UTC().Truncate(time.Second),
	}
	if err := store.AppendCorrection(ca); err != nil {
		t.Fatalf("AppendCorrection failed: %v", err)
	}

	attempts, err := store.ListCorrections("s1")
	if err != nil {
		t.Fatalf("ListCorrections failed: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("got %d corrections, want 1", len(attempts))
	}

	got := attempts[0]
	if got.Indicator != "error" || got.Operation != "swarm" || got.Attempt != 1 {
		t.Errorf("correction mismatch: %+v", got)
	}
	if !reflect.DeepEqual(got.Args, ca.Args) {
		t.Errorf("Args = %v, want %v", got.Args, ca.Args)
	}
	if got.Result.Status != models.ResultSuccess || got.Result.Stdout != "fixed" {
		t.Errorf("result mismatch: %+v", got.Result)
	}
}

func TestListCorrections_CorruptArgsSurfacesError(t *testing.T) {
	store := testStore(t)
	if err := store.CreateSession(testSession("s1")); err != nil {
		t.Fatal(err)
	}

	_, err := store.db.Exec(
		`INSERT INTO corrections (session_id, phase, attempt, indicator, operation, args, status, exit_code, stdout, stderr, at, duration_ms)
		 VALUES ('s1', 'implement', 1, 'error', 'swarm', '{not json', 'success', 0, '', '', ?, 0)`,
		time.Now().UTC(),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.ListCorrections("s1"); err == nil {
		t.Fatal("expected error for corrupt args column")
	} else if !strings.Contains(err.Error(), "decode correction args") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDeleteSession_RemovesLogs(t *testing.T) {
	store := testStore(t)
	if err := store.CreateSession(testSession("s1")); err != nil {
		t.Fatal(err)
	}
	if err := store.AppendResult("s1", "design", 1, models.ExecutionResult{Operation: "sparc-run", Status: models.ResultSuccess}); err != nil {
		t.Fatal(err)
	}
	if err := store.AppendCorrection(models.CorrectionAttempt{SessionID: "s1", Phase: "design", Attempt: 1, Indicator: "error", Operation: "swarm"}); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteSession("s1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	if _, err := store.GetSession("s1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("session still present: %v", err)
	}
	results, _ := store.ListResults("s1")
	if len(results) != 0 {
		t.Errorf("%d results left after delete", len(results))
	}
	corrections, _ := store.ListCorrections("s1")
	if len(corrections) != 0 {
		t.Errorf("%d corrections left after delete", len(corrections))
	}
}
