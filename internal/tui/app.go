package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flowdeck/flowdeck/internal/models"
	"github.com/flowdeck/flowdeck/internal/orchestrator"
	"github.com/flowdeck/flowdeck/internal/storage"
	"github.com/flowdeck/flowdeck/internal/workflow"
)

type View int

const (
	ViewSessionList View = iota
	ViewSessionDetail
	ViewNewSession
)

// App is the session monitor: a presentation layer over the append-only
// session store, with keys to start, cancel, and delete sessions.
type App struct {
	orch       *orchestrator.Orchestrator
	workflows  map[string]*workflow.Workflow
	projectDir string

	view            View
	sessions        []*models.Session
	selectedIdx     int
	selectedSession *models.Session
	results         []storage.PhaseResult
	corrections     []models.CorrectionAttempt

	workflowNames []string
	workflowIdx   int
	featureInput  textinput.Model

	width  int
	height int
	err    error
}

func NewApp(orch *orchestrator.Orchestrator, workflows map[string]*workflow.Workflow, projectDir string) *App {
	input := textinput.New()
	input.Placeholder = "feature description"
	input.CharLimit = 200

	var names []string
	for name := range workflows {
		names = append(names, name)
	}

	return &App{
		orch:          orch,
		workflows:     workflows,
		projectDir:    projectDir,
		view:          ViewSessionList,
		workflowNames: names,
		featureInput:  input,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadSessions, a.tickCmd())
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type tickMsg time.Time

func (a *App) hasActiveSessions() bool {
	for _, s := range a.sessions {
		if !s.Status.Terminal() {
			return true
		}
	}
	return false
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case sessionsLoadedMsg:
		a.sessions = msg.sessions
		a.err = msg.err
		return a, nil

	case tickMsg:
		if a.view == ViewSessionList && a.hasActiveSessions() {
			return a, tea.Batch(a.loadSessions, a.tickCmd())
		}
		return a, a.tickCmd()

	case sessionDetailMsg:
		a.selectedSession = msg.session
		a.results = msg.results
		a.corrections = msg.corrections
		a.err = msg.err
		if a.err == nil {
			a.view = ViewSessionDetail
		}
		return a, nil

	case sessionStartedMsg:
		a.err = msg.err
		a.view = ViewSessionList
		return a, a.loadSessions

	case sessionCancelledMsg:
		a.err = msg.err
		return a, a.loadSessions

	case sessionDeletedMsg:
		a.err = msg.err
		if a.selectedIdx >= len(a.sessions)-1 && a.selectedIdx > 0 {
			a.selectedIdx--
		}
		return a, a.loadSessions
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.view {
	case ViewSessionList:
		return a.handleListKey(msg)
	case ViewSessionDetail:
		return a.handleDetailKey(msg)
	case ViewNewSession:
		return a.handleNewSessionKey(msg)
	}
	return a, nil
}

func (a *App) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "up", "k":
		if a.selectedIdx > 0 {
			a.selectedIdx--
		}

	case "down", "j":
		if a.selectedIdx < len(a.sessions)-1 {
			a.selectedIdx++
		}

	case "enter":
		if len(a.sessions) > 0 && a.selectedIdx < len(a.sessions) {
			return a, a.loadDetail(a.sessions[a.selectedIdx].ID)
		}

	case "n":
		if len(a.workflowNames) > 0 {
			a.view = ViewNewSession
			a.featureInput.SetValue("")
			a.featureInput.Focus()
			return a, textinput.Blink
		}

	case "r":
		return a, a.loadSessions

	case "x":
		if len(a.sessions) > 0 && a.selectedIdx < len(a.sessions) {
			return a, a.cancelSession(a.sessions[a.selectedIdx].ID)
		}

	case "d":
		if len(a.sessions) > 0 && a.selectedIdx < len(a.sessions) {
			return a, a.deleteSession(a.sessions[a.selectedIdx].ID)
		}
	}

	return a, nil
}

func (a *App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		a.view = ViewSessionList
		a.selectedSession = nil
		a.results = nil
		a.corrections = nil

	case "ctrl+c":
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) handleNewSessionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.view = ViewSessionList
		return a, nil

	case "ctrl+c":
		return a, tea.Quit

	case "tab":
		a.workflowIdx = (a.workflowIdx + 1) % len(a.workflowNames)
		return a, nil

	case "enter":
		feature := a.featureInput.Value()
		if feature == "" {
			return a, nil
		}
		name := a.workflowNames[a.workflowIdx]
		return a, a.startSession(a.workflows[name], feature)
	}

	var cmd tea.Cmd
	a.featureInput, cmd = a.featureInput.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	switch a.view {
	case ViewSessionList:
		return a.viewSessionList()
	case ViewSessionDetail:
		return a.viewSessionDetail()
	case ViewNewSession:
		return a.viewNewSession()
	}
	return ""
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	statusRunning   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	statusCompleted = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusAbandoned = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

func (a *App) viewSessionList() string {
	s := titleStyle.Render("Flowdeck") + "\n\n"

	if a.err != nil {
		s += fmt.Sprintf("Error: %v\n", a.err)
	}

	if len(a.sessions) == 0 {
		s += "No sessions yet. Press 'n' to start one.\n"
	} else {
		s += "Recent Sessions\n"
		s += "───────────────\n"

		for i, session := range a.sessions {
			line := a.formatSessionLine(session)
			if i == a.selectedIdx {
				line = selectedStyle.Render("▶ " + line)
			} else if session.Status.Terminal() {
				line = "  " + dimStyle.Render(line)
			} else {
				line = "  " + line
			}
			s += line + "\n"
		}
	}

	s += "\n" + helpStyle.Render("[enter] view  [n] new  [x] cancel  [d] delete  [r] refresh  [q] quit")

	return s
}

func (a *App) formatSessionLine(session *models.Session) string {
	status := a.formatStatus(session.Status)
	age := formatAge(session.CreatedAt)
	phase := session.CurrentPhase
	if phase == "" {
		phase = "-"
	}
	return fmt.Sprintf("%-8s %-14s %s  %-6s  %s",
		shortID(session.ID), session.Workflow, status, age, phase)
}

func (a *App) formatStatus(status models.SessionStatus) string {
	switch status {
	case models.SessionRunning:
		return statusRunning.Render("● running")
	case models.SessionCompleted:
		return statusCompleted.Render("✓ completed")
	case models.SessionAbandoned:
		return statusAbandoned.Render("✗ abandoned")
	default:
		return dimStyle.Render("○ " + string(status))
	}
}

func (a *App) viewSessionDetail() string {
	if a.selectedSession == nil {
		return "No session selected"
	}

	session := a.selectedSession
	s := titleStyle.Render("Session "+shortID(session.ID)) + "  " + a.formatStatus(session.Status) + "\n\n"
	s += labelStyle.Render("Work item: ") + session.WorkItem + "\n"
	s += labelStyle.Render("Workflow:  ") + session.Workflow + "\n"
	if session.Error != "" {
		s += labelStyle.Render("Error:     ") + statusAbandoned.Render(session.Error) + "\n"
	}
	s += "\nPhases\n──────\n"

	if len(a.results) == 0 {
		s += "(no phases executed yet)\n"
	} else {
		for _, pr := range a.results {
			mark := "○"
			switch pr.Result.Status {
			case models.ResultSuccess:
				mark = statusCompleted.Render("✓")
			case models.ResultFailure, models.ResultProcessError:
				mark = statusAbandoned.Render("✗")
			case models.ResultTimedOut:
				mark = statusRunning.Render("⧗")
			}
			line := fmt.Sprintf("%s %-14s attempt %d  %-10s %s",
				mark, pr.Phase, pr.Attempt, pr.Result.Status, formatDuration(pr.Result.Duration))
			s += "  " + line + "\n"
		}
	}

	if len(a.corrections) > 0 {
		s += "\nCorrections\n───────────\n"
		for _, ca := range a.corrections {
			line := fmt.Sprintf("%-14s #%d  indicator=%q  %s",
				ca.Phase, ca.Attempt, ca.Indicator, ca.Result.Status)
			s += "  " + dimStyle.Render(line) + "\n"
		}
	}

	s += "\n" + helpStyle.Render("[esc] back  [q] quit")

	return s
}

func (a *App) viewNewSession() string {
	s := titleStyle.Render("New Session") + "\n\n"
	s += labelStyle.Render("Workflow: ") + a.workflowNames[a.workflowIdx] +
		dimStyle.Render("  (tab to change)") + "\n\n"
	s += a.featureInput.View() + "\n"
	s += "\n" + helpStyle.Render("[enter] start  [esc] cancel")
	return s
}

// Messages

type sessionsLoadedMsg struct {
	sessions []*models.Session
	err      error
}

type sessionDetailMsg struct {
	session     *models.Session
	results     []storage.PhaseResult
	corrections []models.CorrectionAttempt
	err         error
}

type sessionStartedMsg struct {
	err error
}

type sessionCancelledMsg struct {
	err error
}

type sessionDeletedMsg struct {
	err error
}

// Commands

func (a *App) loadSessions() tea.Msg {
	sessions, err := a.orch.ListSessions(20)
	return sessionsLoadedMsg{sessions: sessions, err: err}
}

func (a *App) loadDetail(id string) tea.Cmd {
	return func() tea.Msg {
		session, err := a.orch.GetSession(id)
		if err != nil {
			return sessionDetailMsg{err: err}
		}

		results, err := a.orch.SessionResults(id)
		if err != nil {
			return sessionDetailMsg{err: err}
		}

		corrections, err := a.orch.SessionCorrections(id)
		return sessionDetailMsg{session: session, results: results, corrections: corrections, err: err}
	}
}

func (a *App) startSession(wf *workflow.Workflow, feature string) tea.Cmd {
	return func() tea.Msg {
		session, err := a.orch.Start(wf, feature)
		if err != nil {
			return sessionStartedMsg{err: err}
		}

		// The session loop runs off the presentation goroutine; the
		// tick refresh picks up its progress from the store.
		go a.orch.Run(context.Background(), session, wf, feature, a.projectDir)

		return sessionStartedMsg{}
	}
}

func (a *App) cancelSession(id string) tea.Cmd {
	return func() tea.Msg {
		if !a.orch.Cancel(id) {
			return sessionCancelledMsg{err: fmt.Errorf("session %s is not active", shortID(id))}
		}
		return sessionCancelledMsg{}
	}
}

func (a *App) deleteSession(id string) tea.Cmd {
	return func() tea.Msg {
		return sessionDeletedMsg{err: a.orch.DeleteSession(id)}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
