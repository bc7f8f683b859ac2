package catalog

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func testCatalog() *Catalog {
	return New([]string{"npx", "claude-flow@alpha"}, 5*time.Minute)
}

func TestBuild_PrefixesBaseCommand(t *testing.T) {
	c := testCatalog()

	inv, err := c.Build("hive-status", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := []string{"npx", "claude-flow@alpha", "hive-mind", "status"}
	if !reflect.DeepEqual(inv.Args, want) {
		t.Errorf("Args = %v, want %v", inv.Args, want)
	}
	if inv.Operation != "hive-status" {
		t.Errorf("Operation = %q, want hive-status", inv.Operation)
	}
	if inv.Timeout != 5*time.Minute {
		t.Errorf("Timeout = %v, want 5m", inv.Timeout)
	}
}

func TestBuild_UnknownOperation(t *testing.T) {
	c := testCatalog()

	_, err := c.Build("teleport", nil)
	if !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("expected ErrUnknownOperation, got %v", err)
	}
}

func TestBuild_MissingRequiredParam(t *testing.T) {
	c := testCatalog()

	_, err := c.Build("swarm", Values{})
	var perr *InvalidParamsError
	if !errors.As(err, &perr) {
		t.Fatalf("expected InvalidParamsError, got %v", err)
	}
	if perr.Param != "task" {
		t.Errorf("Param = %q, want task", perr.Param)
	}
}

func TestBuild_UnknownParamRejected(t *testing.T) {
	c := testCatalog()

	_, err := c.Build("hive-status", Values{"bogus": "x"})
	var perr *InvalidParamsError
	if !errors.As(err, &perr) {
		t.Fatalf("expected InvalidParamsError, got %v", err)
	}
	if perr.Param != "bogus" {
		t.Errorf("Param = %q, want bogus", perr.Param)
	}
}

func TestBuild_RuleViolation(t *testing.T) {
	c := testCatalog()

	_, err := c.Build("hive-spawn", Values{"description": "build api", "agents": 0})
	var perr *InvalidParamsError
	if !errors.As(err, &perr) {
		t.Fatalf("expected InvalidParamsError, got %v", err)
	}
	if perr.Param != "agents" {
		t.Errorf("Param = %q, want agents", perr.Param)
	}
}

func TestBuild_CoercesStringInputs(t *testing.T) {
	c := testCatalog()

	// CLI k=v input arrives with everything as strings.
	inv, err := c.Build("hive-spawn", Values{
		"description": "build api",
		"agents":      "4",
		"temp":        "true",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := []string{"npx", "claude-flow@alpha", "hive-mind", "spawn", "build api", "--agents", "4", "--temp"}
	if !reflect.DeepEqual(inv.Args, want) {
		t.Errorf("Args = %v, want %v", inv.Args, want)
	}
}

func TestBuild_RejectsNonIntegerString(t *testing.T) {
	c := testCatalog()

	_, err := c.Build("memory-query", Values{"term": "error", "limit": "lots"})
	var perr *InvalidParamsError
	if !errors.As(err, &perr) {
		t.Fatalf("expected InvalidParamsError, got %v", err)
	}
	if perr.Param != "limit" {
		t.Errorf("Param = %q, want limit", perr.Param)
	}
}

func TestBuild_OneofRule(t *testing.T) {
	c := testCatalog()

	if _, err := c.Build("daa-lifecycle", Values{"agent_id": "a1", "action": "explode"}); err == nil {
		t.Error("expected error for action outside the allowed set")
	}

	inv, err := c.Build("daa-lifecycle", Values{"agent_id": "a1", "action": "pause"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := []string{"npx", "claude-flow@alpha", "daa", "lifecycle-manage", "--agentId", "a1", "--action", "pause"}
	if !reflect.DeepEqual(inv.Args, want) {
		t.Errorf("Args = %v, want %v", inv.Args, want)
	}
}

func TestBuild_NeuralTrainDefaultEpochs(t *testing.T) {
	c := testCatalog()

	inv, err := c.Build("neural-train", Values{"pattern": "coordination"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := []string{"npx", "claude-flow@alpha", "neural", "train", "coordination", "--epochs", "50"}
	if !reflect.DeepEqual(inv.Args, want) {
		t.Errorf("Args = %v, want %v", inv.Args, want)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	c := testCatalog()
	params := Values{"task": "refactor parser", "continue_session": true}

	first, err := c.Build("swarm", params)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second, err := c.Build("swarm", params)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Build gave different invocations: %v vs %v", first, second)
	}
}

func TestOperations_SortedAndComplete(t *testing.T) {
	c := testCatalog()

	names := c.Operations()
	if len(names) != len(c.ops) {
		t.Fatalf("Operations returned %d names, want %d", len(names), len(c.ops))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
	for _, name := range []string{
		"init", "swarm", "sparc-run", "sparc-tdd", "memory-query", "github-release-coord",
		"swarm-init", "agent-spawn", "task-orchestrate", "swarm-monitor", "topology-optimize",
		"load-balance", "coordination-sync", "swarm-scale", "swarm-destroy",
		"pattern-recognize", "learning-adapt", "neural-compress", "ensemble-create",
		"transfer-learn", "neural-explain",
		"memory-usage", "memory-search", "memory-persist", "memory-namespace",
		"memory-backup", "memory-restore", "memory-compress", "memory-sync", "memory-analytics",
		"performance-report", "bottleneck-analyze", "token-usage", "benchmark-run",
		"metrics-collect", "trend-analysis",
	} {
		if !c.Has(name) {
			t.Errorf("catalog missing operation %q", name)
		}
	}
}

func TestBuild_AgentSpawnRequiresTriple(t *testing.T) {
	c := testCatalog()

	_, err := c.Build("agent-spawn", Values{"agent_type": "coder"})
	var perr *InvalidParamsError
	if !errors.As(err, &perr) {
		t.Fatalf("expected InvalidParamsError, got %v", err)
	}

	inv, err := c.Build("agent-spawn", Values{
		"agent_type":   "coder",
		"capabilities": "go,sql",
		"resources":    "2cpu",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := []string{"npx", "claude-flow@alpha", "swarm", "agent-spawn", "--type", "coder", "--capabilities", "go,sql", "--resources", "2cpu"}
	if !reflect.DeepEqual(inv.Args, want) {
		t.Errorf("args = %v, want %v", inv.Args, want)
	}
}

func TestBuild_MemorySearchOptionalNamespace(t *testing.T) {
	c := testCatalog()

	inv, err := c.Build("memory-search", Values{"term": "auth"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := []string{"npx", "claude-flow@alpha", "memory", "search", "auth"}
	if !reflect.DeepEqual(inv.Args, want) {
		t.Errorf("args = %v, want %v", inv.Args, want)
	}

	inv, err = c.Build("memory-search", Values{"term": "auth", "namespace": "dev"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want = []string{"npx", "claude-flow@alpha", "memory", "search", "auth", "--namespace", "dev"}
	if !reflect.DeepEqual(inv.Args, want) {
		t.Errorf("args = %v, want %v", inv.Args, want)
	}
}

func TestBuild_SwarmMonitorFlags(t *testing.T) {
	c := testCatalog()

	inv, err := c.Build("swarm-monitor", Values{"dashboard": true, "real_time": true})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := []string{"npx", "claude-flow@alpha", "swarm", "monitor", "--dashboard", "--real-time"}
	if !reflect.DeepEqual(inv.Args, want) {
		t.Errorf("args = %v, want %v", inv.Args, want)
	}
}

func TestBuild_BenchmarkRunRequiresName(t *testing.T) {
	c := testCatalog()

	_, err := c.Build("benchmark-run", nil)
	var perr *InvalidParamsError
	if !errors.As(err, &perr) {
		t.Fatalf("expected InvalidParamsError, got %v", err)
	}

	inv, err := c.Build("benchmark-run", Values{"name": "nightly"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := []string{"npx", "claude-flow@alpha", "performance", "benchmark-run", "--name", "nightly"}
	if !reflect.DeepEqual(inv.Args, want) {
		t.Errorf("args = %v, want %v", inv.Args, want)
	}
}

func TestParams_ReturnsCopy(t *testing.T) {
	c := testCatalog()

	params, err := c.Params("swarm")
	if err != nil {
		t.Fatalf("Params failed: %v", err)
	}
	if len(params) == 0 {
		t.Fatal("expected parameters for swarm")
	}
	params[0].Name = "mutated"

	again, _ := c.Params("swarm")
	if again[0].Name == "mutated" {
		t.Error("Params exposed internal state")
	}
}
