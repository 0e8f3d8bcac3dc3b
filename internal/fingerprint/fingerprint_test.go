package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDetectFlagsAPIFrameworkPattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), `{"dependencies":{"express":"^4.0.0"}}`)

	fp, err := Detect(root)
	require.NoError(t, err)
	require.Contains(t, fp.Frameworks, "express")
	require.Contains(t, fp.Patterns, "api-framework")
}

func TestDetectFlagsCLIToolPattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/tool\n\nrequire github.com/spf13/cobra v1.10.2\n")

	fp, err := Detect(root)
	require.NoError(t, err)
	require.Contains(t, fp.Patterns, "cli-tool")
}

func TestDetectFlagsLibraryBuildPattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "rollup.config.js"), "export default {}\n")

	fp, err := Detect(root)
	require.NoError(t, err)
	require.Contains(t, fp.Patterns, "library-build")
}

func TestDetectFlagsContainerizedAndMonorepoPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Dockerfile"), "FROM scratch\n")
	writeFile(t, filepath.Join(root, "pnpm-workspace.yaml"), "packages:\n  - 'packages/*'\n")

	fp, err := Detect(root)
	require.NoError(t, err)
	require.Contains(t, fp.Patterns, "containerized")
	require.Contains(t, fp.Patterns, "monorepo")
}
