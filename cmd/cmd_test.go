package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ginjaninja78/upload-reconciler/internal/config"
	"github.com/ginjaninja78/upload-reconciler/internal/fault"
	"github.com/ginjaninja78/upload-reconciler/internal/testsupport"
)

func TestResolveArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		uploads  string
		students string
		sections string
	}{
		{"file only", []string{"lab.txt"}, "uploads", "../students.csv", "lab.txt"},
		{"bank and file", []string{"bank", "lab.txt"}, "bank", "../students.csv", "lab.txt"},
		{"all three", []string{"bank", "roster.csv", "lab.txt"}, "bank", "roster.csv", "lab.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.Default()
			got := resolveArgs(c, tt.args)
			assert.Equal(t, tt.sections, got)
			assert.Equal(t, tt.uploads, c.UploadsDir)
			assert.Equal(t, tt.students, c.StudentsFile)
		})
	}
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = newLogger("warn", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	// Config validation accepts any case, so the logger must too.
	l, err = newLogger("Debug", false)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = newLogger("loud", false)
	assert.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "reconciler 1.1\n", out.String())
}

func TestRunValidate(t *testing.T) {
	dir := t.TempDir()
	c := config.Default()
	c.StudentsFile = filepath.Join(dir, "students.csv")
	testsupport.WriteFile(t, c.StudentsFile, "0036123456;\"Smith\";\"John\";\"X\"\n")

	sectionsPath := filepath.Join(dir, "lab.txt")
	testsupport.WriteFile(t, sectionsPath, "1|LAB|AAAAA12345|19-09term1|x|y|z|0036123456 0036999999\n")

	var out bytes.Buffer
	require.NoError(t, runValidate(&out, c, sectionsPath))
	assert.Contains(t, out.String(), "1 students")
	assert.Contains(t, out.String(), "1 sections, 2 identifiers, 1 unknown")
	assert.Contains(t, out.String(), "12345_19-09")

	testsupport.WriteFile(t, sectionsPath, "1|LAB|short\n")
	err := runValidate(&out, c, sectionsPath)
	require.Error(t, err)
	assert.True(t, fault.IsFatal(err))
}
