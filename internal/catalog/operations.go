package catalog

import "strconv"

// registerAll defines the operation surface of the wrapped tool. Each
// entry mirrors one subcommand of the external CLI; build functions only
// assemble argument lists from already validated values.
func (c *Catalog) registerAll() {
	c.register(operation{
		name: "init",
		params: []Param{
			{Name: "project_name", Kind: KindString},
			{Name: "hive_mind", Kind: KindBool},
			{Name: "neural_enhanced", Kind: KindBool},
		},
		build: func(v resolved) []string {
			args := []string{"init"}
			if s := v.str("project_name"); s != "" {
				args = append(args, "--project-name", s)
			}
			if v.flag("hive_mind") {
				args = append(args, "--hive-mind")
			}
			if v.flag("neural_enhanced") {
				args = append(args, "--neural-enhanced")
			}
			return args
		},
	})

	c.register(operation{
		name: "hive-spawn",
		params: []Param{
			{Name: "description", Kind: KindString, Required: true},
			{Name: "namespace", Kind: KindString},
			{Name: "agents", Kind: KindInt, Rules: "gt=0"},
			{Name: "temp", Kind: KindBool},
		},
		build: func(v resolved) []string {
			args := []string{"hive-mind", "spawn", v.str("description")}
			if s := v.str("namespace"); s != "" {
				args = append(args, "--namespace", s)
			}
			if n, ok := v.num("agents"); ok {
				args = append(args, "--agents", strconv.Itoa(n))
			}
			if v.flag("temp") {
				args = append(args, "--temp")
			}
			return args
		},
	})

	c.register(operation{
		name: "hive-resume",
		params: []Param{
			{Name: "session_id", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"hive-mind", "resume", v.str("session_id")}
		},
	})

	c.register(operation{
		name:  "hive-status",
		build: func(v resolved) []string { return []string{"hive-mind", "status"} },
	})

	c.register(operation{
		name:  "hive-sessions",
		build: func(v resolved) []string { return []string{"hive-mind", "sessions"} },
	})

	c.register(operation{
		name: "swarm",
		params: []Param{
			{Name: "task", Kind: KindString, Required: true},
			{Name: "continue_session", Kind: KindBool},
			{Name: "strategy", Kind: KindString},
		},
		build: func(v resolved) []string {
			args := []string{"swarm", v.str("task")}
			if v.flag("continue_session") {
				args = append(args, "--continue-session")
			}
			if s := v.str("strategy"); s != "" {
				args = append(args, "--strategy", s)
			}
			return args
		},
	})

	c.register(operation{
		name: "swarm-init",
		params: []Param{
			{Name: "description", Kind: KindString},
		},
		build: func(v resolved) []string {
			args := []string{"swarm", "init"}
			if s := v.str("description"); s != "" {
				args = append(args, s)
			}
			return args
		},
	})

	c.register(operation{
		name: "agent-spawn",
		params: []Param{
			{Name: "agent_type", Kind: KindString, Required: true},
			{Name: "capabilities", Kind: KindString, Required: true},
			{Name: "resources", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{
				"swarm", "agent-spawn",
				"--type", v.str("agent_type"),
				"--capabilities", v.str("capabilities"),
				"--resources", v.str("resources"),
			}
		},
	})

	c.register(operation{
		name: "task-orchestrate",
		params: []Param{
			{Name: "task", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"swarm", "task-orchestrate", v.str("task")}
		},
	})

	c.register(operation{
		name: "swarm-monitor",
		params: []Param{
			{Name: "dashboard", Kind: KindBool},
			{Name: "real_time", Kind: KindBool},
		},
		build: func(v resolved) []string {
			args := []string{"swarm", "monitor"}
			if v.flag("dashboard") {
				args = append(args, "--dashboard")
			}
			if v.flag("real_time") {
				args = append(args, "--real-time")
			}
			return args
		},
	})

	c.register(operation{
		name:  "topology-optimize",
		build: func(v resolved) []string { return []string{"swarm", "topology-optimize"} },
	})

	c.register(operation{
		name:  "load-balance",
		build: func(v resolved) []string { return []string{"swarm", "load-balance"} },
	})

	c.register(operation{
		name:  "coordination-sync",
		build: func(v resolved) []string { return []string{"swarm", "coordination-sync"} },
	})

	c.register(operation{
		name: "swarm-scale",
		params: []Param{
			{Name: "scale", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"swarm", "scale", v.str("scale")}
		},
	})

	c.register(operation{
		name:  "swarm-destroy",
		build: func(v resolved) []string { return []string{"swarm", "destroy"} },
	})

	c.register(operation{
		name:  "memory-stats",
		build: func(v resolved) []string { return []string{"memory", "stats"} },
	})

	c.register(operation{
		name:  "memory-usage",
		build: func(v resolved) []string { return []string{"memory", "usage"} },
	})

	c.register(operation{
		name: "memory-search",
		params: []Param{
			{Name: "term", Kind: KindString, Required: true},
			{Name: "namespace", Kind: KindString},
		},
		build: func(v resolved) []string {
			args := []string{"memory", "search", v.str("term")}
			if s := v.str("namespace"); s != "" {
				args = append(args, "--namespace", s)
			}
			return args
		},
	})

	c.register(operation{
		name:  "memory-persist",
		build: func(v resolved) []string { return []string{"memory", "persist"} },
	})

	c.register(operation{
		name: "memory-namespace",
		params: []Param{
			{Name: "namespace", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"memory", "namespace", v.str("namespace")}
		},
	})

	c.register(operation{
		name: "memory-backup",
		params: []Param{
			{Name: "output_file", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"memory", "backup", v.str("output_file")}
		},
	})

	c.register(operation{
		name: "memory-restore",
		params: []Param{
			{Name: "input_file", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"memory", "restore", v.str("input_file")}
		},
	})

	c.register(operation{
		name:  "memory-compress",
		build: func(v resolved) []string { return []string{"memory", "compress"} },
	})

	c.register(operation{
		name:  "memory-sync",
		build: func(v resolved) []string { return []string{"memory", "sync"} },
	})

	c.register(operation{
		name:  "memory-analytics",
		build: func(v resolved) []string { return []string{"memory", "analytics"} },
	})

	c.register(operation{
		name: "memory-query",
		params: []Param{
			{Name: "term", Kind: KindString, Required: true},
			{Name: "namespace", Kind: KindString},
			{Name: "limit", Kind: KindInt, Rules: "gt=0"},
		},
		build: func(v resolved) []string {
			args := []string{"memory", "query", v.str("term")}
			if s := v.str("namespace"); s != "" {
				args = append(args, "--namespace", s)
			}
			if n, ok := v.num("limit"); ok {
				args = append(args, "--limit", strconv.Itoa(n))
			}
			return args
		},
	})

	c.register(operation{
		name: "memory-store",
		params: []Param{
			{Name: "key", Kind: KindString, Required: true},
			{Name: "value", Kind: KindString, Required: true},
			{Name: "namespace", Kind: KindString},
		},
		build: func(v resolved) []string {
			args := []string{"memory", "store", v.str("key"), v.str("value")}
			if s := v.str("namespace"); s != "" {
				args = append(args, "--namespace", s)
			}
			return args
		},
	})

	c.register(operation{
		name: "memory-export",
		params: []Param{
			{Name: "output_file", Kind: KindString, Required: true},
			{Name: "namespace", Kind: KindString},
		},
		build: func(v resolved) []string {
			args := []string{"memory", "export", v.str("output_file")}
			if s := v.str("namespace"); s != "" {
				args = append(args, "--namespace", s)
			}
			return args
		},
	})

	c.register(operation{
		name: "memory-import",
		params: []Param{
			{Name: "input_file", Kind: KindString, Required: true},
			{Name: "namespace", Kind: KindString},
		},
		build: func(v resolved) []string {
			args := []string{"memory", "import", v.str("input_file")}
			if s := v.str("namespace"); s != "" {
				args = append(args, "--namespace", s)
			}
			return args
		},
	})

	c.register(operation{
		name: "neural-train",
		params: []Param{
			{Name: "pattern", Kind: KindString, Required: true},
			{Name: "epochs", Kind: KindInt, Rules: "gt=0"},
			{Name: "data_file", Kind: KindString},
		},
		build: func(v resolved) []string {
			args := []string{"neural", "train", v.str("pattern")}
			epochs := 50
			if n, ok := v.num("epochs"); ok {
				epochs = n
			}
			args = append(args, "--epochs", strconv.Itoa(epochs))
			if s := v.str("data_file"); s != "" {
				args = append(args, "--data", s)
			}
			return args
		},
	})

	c.register(operation{
		name: "neural-predict",
		params: []Param{
			{Name: "model", Kind: KindString, Required: true},
			{Name: "input_file", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"neural", "predict", v.str("model"), v.str("input_file")}
		},
	})

	c.register(operation{
		name: "pattern-recognize",
		params: []Param{
			{Name: "pattern", Kind: KindString, Required: true},
			{Name: "input_file", Kind: KindString},
		},
		build: func(v resolved) []string {
			args := []string{"neural", "pattern-recognize", "--pattern", v.str("pattern")}
			if s := v.str("input_file"); s != "" {
				args = append(args, "--input", s)
			}
			return args
		},
	})

	c.register(operation{
		name: "learning-adapt",
		params: []Param{
			{Name: "model", Kind: KindString, Required: true},
			{Name: "data_file", Kind: KindString},
		},
		build: func(v resolved) []string {
			args := []string{"neural", "learning-adapt", "--model", v.str("model")}
			if s := v.str("data_file"); s != "" {
				args = append(args, "--data", s)
			}
			return args
		},
	})

	c.register(operation{
		name: "neural-compress",
		params: []Param{
			{Name: "model", Kind: KindString, Required: true},
			{Name: "output_file", Kind: KindString},
		},
		build: func(v resolved) []string {
			args := []string{"neural", "compress", "--model", v.str("model")}
			if s := v.str("output_file"); s != "" {
				args = append(args, "--output", s)
			}
			return args
		},
	})

	c.register(operation{
		name: "ensemble-create",
		params: []Param{
			{Name: "models", Kind: KindString, Required: true},
			{Name: "output_model", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"neural", "ensemble-create", "--models", v.str("models"), "--output", v.str("output_model")}
		},
	})

	c.register(operation{
		name: "transfer-learn",
		params: []Param{
			{Name: "base_model", Kind: KindString, Required: true},
			{Name: "data_file", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"neural", "transfer-learn", "--base", v.str("base_model"), "--data", v.str("data_file")}
		},
	})

	c.register(operation{
		name: "neural-explain",
		params: []Param{
			{Name: "model", Kind: KindString, Required: true},
			{Name: "input_file", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"neural", "explain", "--model", v.str("model"), "--input", v.str("input_file")}
		},
	})

	c.register(operation{
		name: "cognitive-analyze",
		params: []Param{
			{Name: "behavior", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"cognitive", "analyze", v.str("behavior")}
		},
	})

	c.register(operation{
		name: "workflow-create",
		params: []Param{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "parallel", Kind: KindBool},
		},
		build: func(v resolved) []string {
			args := []string{"workflow", "create", "--name", v.str("name")}
			if v.flag("parallel") {
				args = append(args, "--parallel")
			}
			return args
		},
	})

	c.register(operation{
		name: "batch-process",
		params: []Param{
			{Name: "items", Kind: KindString, Required: true},
			{Name: "concurrent", Kind: KindBool},
		},
		build: func(v resolved) []string {
			args := []string{"batch", "process", "--items", v.str("items")}
			if v.flag("concurrent") {
				args = append(args, "--concurrent")
			}
			return args
		},
	})

	c.register(operation{
		name: "pipeline-create",
		params: []Param{
			{Name: "config_file", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"pipeline", "create", "--config", v.str("config_file")}
		},
	})

	c.register(operation{
		name: "github",
		params: []Param{
			{Name: "mode", Kind: KindString, Required: true},
			{Name: "task", Kind: KindString},
		},
		build: func(v resolved) []string {
			args := []string{"github", v.str("mode")}
			if s := v.str("task"); s != "" {
				args = append(args, s)
			}
			return args
		},
	})

	c.register(operation{
		name: "github-release-coord",
		params: []Param{
			{Name: "version", Kind: KindString, Required: true},
			{Name: "auto_changelog", Kind: KindBool},
		},
		build: func(v resolved) []string {
			args := []string{"github", "release-coord", "--version", v.str("version")}
			if v.flag("auto_changelog") {
				args = append(args, "--auto-changelog")
			}
			return args
		},
	})

	c.register(operation{
		name: "daa-create",
		params: []Param{
			{Name: "agent_type", Kind: KindString, Required: true},
			{Name: "capabilities", Kind: KindString, Required: true},
			{Name: "resources", Kind: KindString, Required: true},
			{Name: "security_level", Kind: KindString},
			{Name: "sandbox", Kind: KindBool},
		},
		build: func(v resolved) []string {
			args := []string{
				"daa", "agent-create",
				"--type", v.str("agent_type"),
				"--capabilities", v.str("capabilities"),
				"--resources", v.str("resources"),
			}
			if s := v.str("security_level"); s != "" {
				args = append(args, "--security-level", s)
			}
			if v.flag("sandbox") {
				args = append(args, "--sandbox")
			}
			return args
		},
	})

	c.register(operation{
		name: "daa-match",
		params: []Param{
			{Name: "task_requirements", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"daa", "capability-match", "--task-requirements", v.str("task_requirements")}
		},
	})

	c.register(operation{
		name: "daa-lifecycle",
		params: []Param{
			{Name: "agent_id", Kind: KindString, Required: true},
			{Name: "action", Kind: KindString, Required: true, Rules: "oneof=start pause resume terminate"},
		},
		build: func(v resolved) []string {
			return []string{"daa", "lifecycle-manage", "--agentId", v.str("agent_id"), "--action", v.str("action")}
		},
	})

	c.register(operation{
		name: "security-scan",
		params: []Param{
			{Name: "deep", Kind: KindBool},
			{Name: "report", Kind: KindBool},
		},
		build: func(v resolved) []string {
			args := []string{"security", "scan"}
			if v.flag("deep") {
				args = append(args, "--deep")
			}
			if v.flag("report") {
				args = append(args, "--report")
			}
			return args
		},
	})

	c.register(operation{
		name: "sparc-run",
		params: []Param{
			{Name: "mode", Kind: KindString, Required: true},
			{Name: "task", Kind: KindString, Required: true},
			{Name: "parallel", Kind: KindBool},
			{Name: "batch_optimize", Kind: KindBool},
		},
		build: func(v resolved) []string {
			args := []string{"sparc", "run", v.str("mode"), v.str("task")}
			if v.flag("parallel") {
				args = append(args, "--parallel")
			}
			if v.flag("batch_optimize") {
				args = append(args, "--batch-optimize")
			}
			return args
		},
	})

	c.register(operation{
		name: "sparc-tdd",
		params: []Param{
			{Name: "feature", Kind: KindString, Required: true},
			{Name: "batch_tdd", Kind: KindBool},
		},
		build: func(v resolved) []string {
			args := []string{"sparc", "tdd", v.str("feature")}
			if v.flag("batch_tdd") {
				args = append(args, "--batch-tdd")
			}
			return args
		},
	})

	c.register(operation{
		name: "sparc-pipeline",
		params: []Param{
			{Name: "task", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"sparc", "pipeline", v.str("task")}
		},
	})

	c.register(operation{
		name: "health-check",
		params: []Param{
			{Name: "components", Kind: KindString},
		},
		build: func(v resolved) []string {
			args := []string{"health", "check"}
			if s := v.str("components"); s != "" {
				args = append(args, "--components", s)
			}
			return args
		},
	})

	c.register(operation{
		name:  "health-auto-heal",
		build: func(v resolved) []string { return []string{"health", "auto-heal"} },
	})

	c.register(operation{
		name:  "fault-tolerance-retry",
		build: func(v resolved) []string { return []string{"fault-tolerance", "retry"} },
	})

	c.register(operation{
		name:  "performance-report",
		build: func(v resolved) []string { return []string{"performance", "report"} },
	})

	c.register(operation{
		name:  "bottleneck-analyze",
		build: func(v resolved) []string { return []string{"performance", "bottleneck-analyze"} },
	})

	c.register(operation{
		name:  "token-usage",
		build: func(v resolved) []string { return []string{"performance", "token-usage"} },
	})

	c.register(operation{
		name: "benchmark-run",
		params: []Param{
			{Name: "name", Kind: KindString, Required: true},
		},
		build: func(v resolved) []string {
			return []string{"performance", "benchmark-run", "--name", v.str("name")}
		},
	})

	c.register(operation{
		name:  "metrics-collect",
		build: func(v resolved) []string { return []string{"performance", "metrics-collect"} },
	})

	c.register(operation{
		name:  "trend-analysis",
		build: func(v resolved) []string { return []string{"performance", "trend-analysis"} },
	})
}

func (c *Catalog) register(op operation) {
	c.ops[op.name] = op
}
