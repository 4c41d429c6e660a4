package features

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodrix-ai/bodrix/internal/infrastructure/database"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/migration"
	"github.com/bodrix-ai/bodrix/internal/shared/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// setupConfig writes a config pointing at a migrated SQLite file.
func setupConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "bodrix.db")

	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", Path: dbPath})
	require.NoError(t, err)
	require.NoError(t, migration.NewGooseStrategy("sqlite").Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	return writeFile(t, dir, "config.yaml", fmt.Sprintf(`
database:
  driver: sqlite
  path: %s
logger:
  level: error
  output_path: stderr
features:
  environment: production
  preload: false
`, dbPath))
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid catalog", func(t *testing.T) {
		path := writeFile(t, dir, "ok.yaml", `
version: "1.0.0"
features:
  - {id: ai-chat, name: AI Chat, category: communications}
  - {id: chat-history, name: History, category: communications, dependencies: [ai-chat]}
`)
		out, err := execute(t, "validate", "--file", path)
		require.NoError(t, err)
		assert.Contains(t, out, "catalog is valid (2 features)")
	})

	t.Run("newer minor version is noted", func(t *testing.T) {
		path := writeFile(t, dir, "newer.yaml", `
version: "1.4.0"
features:
  - {id: ai-chat, name: AI Chat, category: communications}
`)
		out, err := execute(t, "validate", "--file", path)
		require.NoError(t, err)
		assert.Contains(t, out, "note: catalog version 1.4.0 is newer")
	})

	t.Run("cycle and missing dependency", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", `
features:
  - {id: a, name: A, category: design, dependencies: [b]}
  - {id: b, name: B, category: design, dependencies: [a]}
  - {id: c, name: C, category: design, dependencies: [ghost]}
`)
		out, err := execute(t, "validate", "--file", path)
		require.Error(t, err)
		assert.Contains(t, out, "c: missing dependencies ghost")
		assert.Contains(t, out, "dependency cycle: a -> b -> a")
	})

	t.Run("incompatible version", func(t *testing.T) {
		path := writeFile(t, dir, "v2.yaml", "version: \"2.0.0\"\nfeatures: []\n")
		_, err := execute(t, "validate", "--file", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported catalog version")
	})
}

func TestStoredCatalogCommands(t *testing.T) {
	cfgPath := setupConfig(t)

	out, err := execute(t, "list", "-c", cfgPath, "--category", "payments")
	require.NoError(t, err)
	assert.Contains(t, out, "stripe-billing")
	assert.NotContains(t, out, "ai-chat")

	_, err = execute(t, "disable", "stripe-billing", "-c", cfgPath)
	require.NoError(t, err)

	out, err = execute(t, "list", "-c", cfgPath, "--category", "payments")
	require.NoError(t, err)
	assert.Regexp(t, `stripe-billing\s+payments\s+\w+\s+false`, out)

	_, err = execute(t, "enable", "ghost", "-c", cfgPath)
	assert.Error(t, err)

	out, err = execute(t, "validate", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "catalog is valid")
}

func TestSnapshotCommands(t *testing.T) {
	cfgPath := setupConfig(t)
	dir := t.TempDir()

	snapshot := writeFile(t, dir, "in.json", `{"overrides":{"ai-chat":false,"webhooks":true}}`)
	out, err := execute(t, "import", "--file", snapshot, "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 overrides (context replaced: false)")

	exported := filepath.Join(dir, "out.json")
	_, err = execute(t, "export", "--out", exported, "-c", cfgPath)
	require.NoError(t, err)

	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ai-chat":false`)
	assert.Contains(t, string(data), `"webhooks":true`)

	out, err = execute(t, "list", "-c", cfgPath, "--category", "communications")
	require.NoError(t, err)
	assert.Regexp(t, `ai-chat\s+communications\s+\w+\s+true\s+false\s+false`, out)

	_, err = execute(t, "import", "-c", cfgPath)
	assert.Error(t, err, "--file is required")
}
