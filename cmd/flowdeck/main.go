package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/flowdeck/flowdeck/internal/catalog"
	"github.com/flowdeck/flowdeck/internal/config"
	"github.com/flowdeck/flowdeck/internal/docgen"
	"github.com/flowdeck/flowdeck/internal/heal"
	"github.com/flowdeck/flowdeck/internal/models"
	"github.com/flowdeck/flowdeck/internal/orchestrator"
	"github.com/flowdeck/flowdeck/internal/runner"
	"github.com/flowdeck/flowdeck/internal/scaffold"
	"github.com/flowdeck/flowdeck/internal/storage"
	"github.com/flowdeck/flowdeck/internal/tui"
	"github.com/flowdeck/flowdeck/internal/workflow"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flowdeck",
		Short: "Agent workflow orchestration shell",
		Long:  "Flowdeck drives claude-flow operations through phased workflows with automatic error correction.",
		RunE:  runTUI,
	}

	rootCmd.AddCommand(newWorkflowCommand())
	rootCmd.AddCommand(newExecCommand())
	rootCmd.AddCommand(newOpsCommand())
	rootCmd.AddCommand(newScaffoldCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newCancelCommand())
	rootCmd.AddCommand(newDeleteCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired components every command needs.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *storage.Store
	runner    *runner.Runner
	catalog   *catalog.Catalog
	monitor   *heal.Monitor
	orch      *orchestrator.Orchestrator
	workflows map[string]*workflow.Workflow
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("failed to create data directories: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	run := runner.New(runner.Options{
		Overlay:        cfg.RunnerEnv(),
		DefaultTimeout: cfg.DefaultTimeout,
		CaptureLimit:   cfg.CaptureLimit,
	}, logger)

	cat := catalog.New(cfg.BaseCommand, cfg.DefaultTimeout)

	var detector heal.Detector
	if cfg.DetectorScript != "" {
		detector, err = heal.LoadLuaDetector(cfg.DetectorScript)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to load detector script: %w", err)
		}
	} else if len(cfg.Indicators) > 0 {
		detector = &heal.SubstringDetector{Needles: cfg.Indicators}
	}

	monitor := heal.NewMonitor(detector, run, cat, heal.Options{
		MaxAttempts: cfg.MaxCorrections,
		ProbeMemory: cfg.ProbeMemory,
	}, logger)

	orch := orchestrator.New(run, cat, monitor, store, cfg.MaxConcurrentSessions, logger)

	workflows, err := workflow.LoadAll(cfg.WorkflowDirs)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load workflows: %w", err)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		runner:    run,
		catalog:   cat,
		monitor:   monitor,
		orch:      orch,
		workflows: workflows,
	}, nil
}

func (a *app) close() {
	a.store.Close()
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	appModel := tui.NewApp(a.orch, a.workflows, dir)
	p := tea.NewProgram(appModel, tea.WithAltScreen())

	_, err = p.Run()
	return err
}

func newWorkflowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow <name> <feature>",
		Short: "Run a workflow for a feature",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			feature := args[1]
			item, _ := cmd.Flags().GetString("item")
			dir, _ := cmd.Flags().GetString("dir")
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			wf, ok := a.workflows[name]
			if !ok {
				return fmt.Errorf("workflow %q not found", name)
			}

			if item == "" {
				item = feature
			}
			if dir == "" {
				dir, err = os.Getwd()
				if err != nil {
					return err
				}
			}
			if metricsAddr == "" {
				metricsAddr = a.cfg.MetricsAddr
			}
			if metricsAddr != "" {
				go serveMetrics(metricsAddr, a.logger)
			}

			session, err := a.orch.Start(wf, item)
			if err != nil {
				return fmt.Errorf("failed to start session: %w", err)
			}

			fmt.Printf("Started session %s (workflow %q)\n", session.ID, wf.Name)

			report, err := a.orch.Run(context.Background(), session, wf, feature, dir)
			if report != nil {
				printReport(report)
			}
			if err != nil {
				return fmt.Errorf("workflow failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("item", "", "Work item identifier (default: the feature text)")
	cmd.Flags().StringP("dir", "d", "", "Working directory for invocations (default: current directory)")
	cmd.Flags().String("metrics-addr", "", "Address to serve Prometheus metrics on (e.g. :9090)")
	return cmd
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}

func printReport(report *orchestrator.Report) {
	fmt.Printf("\nSession %s: %s\n", report.Session.ID, report.Session.Status)
	if report.Session.Error != "" {
		fmt.Printf("Error: %s\n", report.Session.Error)
	}
	for _, outcome := range report.Phases {
		fmt.Printf("  %-14s attempt %d  %s", outcome.Phase, outcome.Attempt, outcome.Result.Status)
		if outcome.Corrections > 0 {
			fmt.Printf("  (%d corrections)", outcome.Corrections)
		}
		fmt.Println()
	}
}

func newExecCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <operation> [param=value...]",
		Short: "Run a single catalog operation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opName := args[0]
			dir, _ := cmd.Flags().GetString("dir")

			params := catalog.Values{}
			for _, arg := range args[1:] {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("invalid parameter %q, expected param=value", arg)
				}
				params[key] = value
			}

			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			inv, err := a.catalog.Build(opName, params)
			if err != nil {
				return err
			}
			if dir != "" {
				inv.Dir = dir
			}

			result := a.runner.Execute(cmd.Context(), inv)

			if result.Stdout != "" {
				fmt.Print(result.Stdout)
			}
			if result.Stderr != "" {
				fmt.Fprint(os.Stderr, result.Stderr)
			}
			if !result.OK() {
				return fmt.Errorf("operation %s: %s (exit %d)", opName, result.Status, result.ExitCode)
			}
			return nil
		},
	}

	cmd.Flags().StringP("dir", "d", "", "Working directory for the invocation")
	return cmd
}

func newOpsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List catalog operations and their parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			for _, name := range a.catalog.Operations() {
				fmt.Println(name)
				params, err := a.catalog.Params(name)
				if err != nil {
					return err
				}
				for _, p := range params {
					req := ""
					if p.Required {
						req = " (required)"
					}
					fmt.Printf("  %-20s %s%s\n", p.Name, p.Kind, req)
				}
			}
			return nil
		},
	}
}

func newScaffoldCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold <idea>",
		Short: "Create a project skeleton with generated planning documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idea := args[0]
			template, _ := cmd.Flags().GetString("template")

			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			var gen scaffold.Generator
			if a.cfg.OpenRouterToken != "" {
				gen = docgen.New(a.cfg.OpenRouterToken, a.cfg.OpenRouterModel)
			} else {
				fmt.Println("No OpenRouter token configured, using placeholder documents.")
			}

			sc := scaffold.New(a.cfg.ProjectsDir, gen, a.logger)
			result, err := sc.Create(cmd.Context(), idea, template)
			if err != nil {
				return fmt.Errorf("scaffold failed: %w", err)
			}

			fmt.Printf("Created project at %s (template %s)\n", result.Path, result.Template)
			for _, doc := range result.Documents {
				fmt.Printf("  doc: %s\n", doc)
			}
			for _, warning := range result.Warnings {
				fmt.Printf("  warning: %s\n", warning)
			}
			return nil
		},
	}

	cmd.Flags().StringP("template", "t", "", "Project template (webapp, cli-tool, data-pipeline, microservices)")
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recent sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			sessions, err := a.orch.ListSessions(20)
			if err != nil {
				return err
			}

			if len(sessions) == 0 {
				fmt.Println("No sessions found.")
				return nil
			}

			for _, s := range sessions {
				fmt.Printf("%s %s [%s] %s\n",
					s.ID[:8], s.Workflow, s.Status, truncate(s.WorkItem, 50))
			}
			return nil
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show session status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			session, err := a.orch.GetSession(args[0])
			if err != nil {
				return fmt.Errorf("failed to get session: %w", err)
			}

			fmt.Printf("Session %s: %s\n", session.ID, session.Workflow)
			fmt.Printf("Status: %s\n", session.Status)
			fmt.Printf("Work item: %s\n", session.WorkItem)
			if session.CurrentPhase != "" {
				fmt.Printf("Current phase: %s\n", session.CurrentPhase)
			}
			if session.Error != "" {
				fmt.Printf("Error: %s\n", session.Error)
			}

			results, err := a.orch.SessionResults(session.ID)
			if err != nil {
				return err
			}
			if len(results) > 0 {
				fmt.Println("\nPhases:")
				for _, pr := range results {
					fmt.Printf("  %-14s attempt %d  %s [%s]",
						pr.Phase, pr.Attempt, pr.Result.Operation, pr.Result.Status)
					if pr.Result.Status == models.ResultFailure {
						fmt.Printf(" (exit %d)", pr.Result.ExitCode)
					}
					fmt.Println()
				}
			}

			corrections, err := a.orch.SessionCorrections(session.ID)
			if err != nil {
				return err
			}
			if len(corrections) > 0 {
				fmt.Println("\nCorrections:")
				for _, ca := range corrections {
					fmt.Printf("  %-14s #%d indicator=%q [%s]\n",
						ca.Phase, ca.Attempt, ca.Indicator, ca.Result.Status)
				}
			}

			return nil
		},
	}
}

func newCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <session-id>",
		Short: "Cancel a session running in this process",
		Long: `Cancel stops a session between phases and marks it abandoned.

Cancellation only reaches sessions started by this process, such as
from the TUI. A session driven by another process (for example a
"workflow" run in a different terminal) must be interrupted there;
this command cannot signal it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			if !a.orch.Cancel(args[0]) {
				return fmt.Errorf("session %s is not active in this process", args[0])
			}
			fmt.Printf("Cancelled session %s\n", args[0])
			return nil
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.orch.DeleteSession(args[0]); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
			fmt.Printf("Deleted session %s\n", args[0])
			return nil
		},
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
