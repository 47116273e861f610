package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type workspace struct {
	config string
	backup string
	target string
	root   string
}

func newWorkspace(t *testing.T, backupVersion, codebaseVersion string) *workspace {
	t.Helper()
	root := t.TempDir()
	w := &workspace{
		root:   root,
		backup: filepath.Join(root, "backup"),
		target: filepath.Join(root, "target"),
		config: filepath.Join(root, "config.yaml"),
	}
	require.NoError(t, os.Mkdir(w.backup, 0o755))
	require.NoError(t, os.Mkdir(w.target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(w.backup, "app.sql"), []byte("SELECT 1;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(w.backup, "app.log"), []byte("ok\n"), 0o644))

	cfg := fmt.Sprintf(`
app_name: recoveryd-test
logging:
  level: error
recovery_settings:
  target_dir: %s
  backup_formats:
    db: "*.sql"
    logs: "*.log"
intel:
  stable_backup_path: %s
  backup_version: %q
  codebase_version: %q
  migrations:
    - from: "1.0"
      to: "1.1"
      scripts: [migrate_1.0_to_1.1.py]
`, w.target, w.backup, backupVersion, codebaseVersion)
	require.NoError(t, os.WriteFile(w.config, []byte(cfg), 0o600))
	return w
}

func (w *workspace) writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(w.root, "error.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(NewRootCmd(&stdout), args, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "recoveryd version dev\n", out)
}

func TestConfigurationError(t *testing.T) {
	code, _, stderr := execute(t, "analyze", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--backup", "/tmp")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Configuration error:")
}

func TestRestore(t *testing.T) {
	w := newWorkspace(t, "1.0", "1.0")

	code, out, stderr := execute(t, "restore", "--config", w.config, "--backup", w.backup)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Restored 2 files")
	assert.FileExists(t, filepath.Join(w.target, "app.sql"))
	assert.FileExists(t, filepath.Join(w.target, "app.log"))
}

func TestRestore_MissingSource(t *testing.T) {
	w := newWorkspace(t, "1.0", "1.0")

	code, _, stderr := execute(t, "restore", "--config", w.config, "--backup", filepath.Join(w.root, "nope"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "restore failed")
}

func TestAnalyze(t *testing.T) {
	w := newWorkspace(t, "1.0", "1.0")

	t.Run("json", func(t *testing.T) {
		code, out, stderr := execute(t, "analyze", "--config", w.config, "--backup", w.backup)
		require.Equal(t, 0, code, stderr)

		var result map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, "ok", result["status"])
	})

	t.Run("yaml", func(t *testing.T) {
		code, out, stderr := execute(t, "analyze", "--config", w.config, "--backup", w.backup, "--format", "yaml")
		require.Equal(t, 0, code, stderr)

		var result map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &result))
		assert.Equal(t, "ok", result["status"])
	})

	t.Run("unknown format", func(t *testing.T) {
		code, _, stderr := execute(t, "analyze", "--config", w.config, "--backup", w.backup, "--format", "xml")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "unsupported format")
	})
}

func TestRepair(t *testing.T) {
	w := newWorkspace(t, "1.0", "1.0")

	logPath := w.writeLog(t, "PermissionError: [Errno 13] Permission denied: '/var/lib/app/db.sqlite'")
	code, out, _ := execute(t, "repair", "--config", w.config, "--error-log", logPath, "--tenant", "acme")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "--- Suggested Repair Script ---")
	assert.Contains(t, out, "chown -R acme_user:acme_group /var/lib/app/db.sqlite")

	logPath = w.writeLog(t, "segmentation fault")
	code, out, _ = execute(t, "repair", "--config", w.config, "--error-log", logPath)
	require.Equal(t, 0, code)
	assert.Equal(t, "No repair script could be generated for the given log.\n", out)
}

func TestIntelligentRestore(t *testing.T) {
	tests := []struct {
		name            string
		backupVersion   string
		codebaseVersion string
		code            int
		output          string
		restored        bool
	}{
		{
			name:            "direct restore",
			backupVersion:   "1.0",
			codebaseVersion: "1.0",
			code:            0,
			output:          "Plan: Direct restore.",
			restored:        true,
		},
		{
			name:            "migrated restore",
			backupVersion:   "1.0",
			codebaseVersion: "1.1",
			code:            0,
			output:          "migrate_1.0_to_1.1.py",
		},
		{
			name:            "no migration path",
			backupVersion:   "1.0",
			codebaseVersion: "2.0",
			code:            2,
			output:          "No migration path found from 1.0 to 2.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorkspace(t, tt.backupVersion, tt.codebaseVersion)
			logPath := w.writeLog(t, "database is locked")

			code, out, _ := execute(t, "intelligent-restore", "--config", w.config, "--error-log", logPath)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, out, tt.output)
			if tt.restored {
				assert.FileExists(t, filepath.Join(w.target, "app.sql"))
			} else {
				assert.NoFileExists(t, filepath.Join(w.target, "app.sql"))
			}
		})
	}
}

func TestTenantIsValidated(t *testing.T) {
	w := newWorkspace(t, "1.0", "1.0")
	logPath := w.writeLog(t, "Permission denied: '/var/lib/app/db.sqlite'")

	for _, command := range []string{"repair", "intelligent-restore"} {
		t.Run(command, func(t *testing.T) {
			code, out, stderr := execute(t, command, "--config", w.config, "--error-log", logPath, "--tenant", "acme; rm -rf /")
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, "invalid tenant")
			assert.NotContains(t, out, "chown")
			assert.NoFileExists(t, filepath.Join(w.target, "app.sql"))
		})
	}
}

func TestIntelligentRestore_UnreadableLog(t *testing.T) {
	w := newWorkspace(t, "1.0", "1.0")

	code, _, _ := execute(t, "intelligent-restore", "--config", w.config, "--error-log", filepath.Join(w.root, "missing.log"))
	assert.Equal(t, 1, code)
}
