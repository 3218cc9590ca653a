package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "uploads", cfg.UploadsDir)
	assert.Equal(t, "../students.csv", cfg.StudentsFile)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "result.log", cfg.AuditLog)
	assert.Equal(t, "table.csv", cfg.TableFile)
	assert.Empty(t, cfg.WorkbookFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(path, true)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reconciler.yaml")
	content := `uploads_dir: /srv/ferko/uploads
workbook_file: table.xlsx
encoding: windows-1250
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "/srv/ferko/uploads", cfg.UploadsDir)
	assert.Equal(t, "table.xlsx", cfg.WorkbookFile)
	assert.Equal(t, "windows-1250", cfg.Encoding)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "../students.csv", cfg.StudentsFile)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"encoding":   "encoding: klingon\n",
		"log level":  "log_level: loud\n",
		"color":      "color: sometimes\n",
		"same files": "audit_log: out.txt\ntable_file: out.txt\n",
		"bad yaml":   "uploads_dir: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "reconciler.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := Load(path, true)
			assert.Error(t, err)
		})
	}
}
