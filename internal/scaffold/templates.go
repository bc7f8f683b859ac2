package scaffold

// templateDirs returns the directory layout for a template. Unknown or
// empty templates get the bare layout.
func templateDirs(template string) []string {
	base := []string{"docs"}
	switch template {
	case "webapp":
		return append(base, "frontend/src", "backend/src", "backend/tests")
	case "cli-tool":
		return append(base, "src", "tests")
	case "data-pipeline":
		return append(base, "pipeline", "data/raw", "data/processed", "notebooks")
	case "microservices":
		return append(base, "services/gateway", "services/auth", "deploy")
	}
	return base
}

// templateFiles returns skeleton files for a template keyed by relative
// path.
func templateFiles(template, idea string) map[string]string {
	files := map[string]string{
		"README.md": "# " + Slugify(idea) + "\n\n" + idea + "\n",
	}

	switch template {
	case "webapp":
		files["backend/src/server.js"] = "const http = require('http');\n\n" +
			"const server = http.createServer((req, res) => {\n" +
			"  res.setHeader('Content-Type', 'application/json');\n" +
			"  res.end(JSON.stringify({ message: 'Hello from backend!' }));\n" +
			"});\n\n" +
			"server.listen(3000);\n"
		files["frontend/src/index.html"] = "<!DOCTYPE html>\n<html>\n<body>\n<h1>" +
			idea + "</h1>\n</body>\n</html>\n"

	case "cli-tool":
		files["src/main.sh"] = "#!/usr/bin/env bash\n\nname=\"${1:-world}\"\necho \"Hello, ${name}!\"\n"

	case "data-pipeline":
		files["pipeline/pipeline.sh"] = "#!/usr/bin/env bash\n\n# extract -> transform -> load\nset -euo pipefail\n\necho 'extract'\necho 'transform'\necho 'load'\n"

	case "microservices":
		files["deploy/compose.yaml"] = "services:\n  gateway:\n    build: ../services/gateway\n  auth:\n    build: ../services/auth\n"
	}

	return files
}
