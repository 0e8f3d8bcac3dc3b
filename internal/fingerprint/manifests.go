package fingerprint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// readPackageJSON reads dependencies + devDependencies from package.json.
func readPackageJSON(root string) ([]string, bool) {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil, false
	}
	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, true
	}
	var deps []string
	for name := range manifest.Dependencies {
		deps = append(deps, name)
	}
	for name := range manifest.DevDependencies {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps, true
}

var cargoDepLine = regexp.MustCompile(`^([A-Za-z0-9_-]+)\s*=`)

// readCargoToml extracts dependency names from the [dependencies] and
// [dev-dependencies] tables of Cargo.toml without a full TOML parser — a line-oriented scan is
// sufficient since we only need names, not version requirements.
func readCargoToml(root string) ([]string, bool) {
	lines, ok := scanLines(filepath.Join(root, "Cargo.toml"))
	if !ok {
		return nil, false
	}
	var deps []string
	inDeps := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inDeps = strings.HasPrefix(trimmed, "[dependencies") || strings.HasPrefix(trimmed, "[dev-dependencies")
			continue
		}
		if !inDeps {
			continue
		}
		if m := cargoDepLine.FindStringSubmatch(trimmed); m != nil {
			deps = append(deps, m[1])
		}
	}
	sort.Strings(deps)
	return deps, true
}

var requirementLine = regexp.MustCompile(`^([A-Za-z0-9_.-]+)`)

// readPython reads pyproject.toml's [project.dependencies] (TOML array
// items) or falls back to requirements.txt.
func readPython(root string) ([]string, bool) {
	if lines, ok := scanLines(filepath.Join(root, "pyproject.toml")); ok {
		var deps []string
		inDeps := false
		for _, line := range lines {
			t := strings.TrimSpace(line)
			if !inDeps {
				inDeps = strings.HasPrefix(t, "dependencies") && strings.HasSuffix(t, "[")
				continue
			}
			if strings.HasPrefix(t, "]") {
				inDeps = false
				continue
			}
			trimmed := strings.Trim(t, `",`)
			if m := requirementLine.FindStringSubmatch(trimmed); m != nil && looksLikePythonDep(line) {
				deps = append(deps, strings.ToLower(m[1]))
			}
		}
		sort.Strings(deps)
		return deps, true
	}
	if lines, ok := scanLines(filepath.Join(root, "requirements.txt")); ok {
		var deps []string
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			if m := requirementLine.FindStringSubmatch(trimmed); m != nil {
				deps = append(deps, strings.ToLower(m[1]))
			}
		}
		sort.Strings(deps)
		return deps, true
	}
	return nil, false
}

func looksLikePythonDep(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, `"`) || strings.HasPrefix(trimmed, "'")
}

var goRequireLine = regexp.MustCompile(`^\s*([a-zA-Z0-9.\-_/]+)\s+v[0-9]`)

// readGoMod extracts required module paths from go.mod, matching both
// the single-line `require x v1` and block `require (...)` forms.
func readGoMod(root string) ([]string, bool) {
	lines, ok := scanLines(filepath.Join(root, "go.mod"))
	if !ok {
		return nil, false
	}
	var deps []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimPrefix(trimmed, "require ")
		trimmed = strings.TrimSpace(trimmed)
		if m := goRequireLine.FindStringSubmatch(trimmed); m != nil {
			deps = append(deps, lastPathSegment(m[1]))
		}
	}
	sort.Strings(deps)
	return deps, true
}

func lastPathSegment(modulePath string) string {
	parts := strings.Split(modulePath, "/")
	if len(parts) <= 2 {
		return modulePath
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
