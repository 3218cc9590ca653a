// =============================================================================
// Upload Reconciler - Configuration Module
// =============================================================================
//
// This module loads the optional YAML configuration file. Every setting has
// a default, so the tool runs without any file at all; command-line
// arguments override whatever the file says.
//
// PRECEDENCE (lowest to highest):
//   1. Built-in defaults
//   2. reconciler.yaml (or the file named by --config)
//   3. Positional arguments and flags
//
// EXAMPLE:
//   uploads_dir: uploads
//   students_file: ../students.csv
//   output_dir: .
//   workbook_file: table.xlsx
//   encoding: windows-1250
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/upload-reconciler/internal/delimited"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "reconciler.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// INPUTS
	// =========================================================================

	// UploadsDir is the unpacked upload bank, one subdirectory per identifier.
	// Default: "uploads"
	UploadsDir string `yaml:"uploads_dir"`

	// StudentsFile is the semicolon-separated roster.
	// Default: "../students.csv"
	StudentsFile string `yaml:"students_file"`

	// Encoding is the character encoding of the roster and section list.
	// Any WHATWG label is accepted, e.g. "windows-1250", "iso-8859-2".
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`

	// =========================================================================
	// OUTPUTS
	// =========================================================================

	// OutputDir is where section folders are created.
	// Default: "."
	OutputDir string `yaml:"output_dir"`

	// AuditLog is the audit trail file.
	// Default: "result.log"
	AuditLog string `yaml:"audit_log"`

	// TableFile is the tab-separated summary file.
	// Default: "table.csv"
	TableFile string `yaml:"table_file"`

	// WorkbookFile, if set, also writes the summary as XLSX.
	// Default: "" (disabled)
	WorkbookFile string `yaml:"workbook_file"`

	// =========================================================================
	// CONSOLE
	// =========================================================================

	// LogLevel controls diagnostic logging on stderr.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// Color controls console coloring: "auto", "always" or "never".
	// Default: "auto"
	Color string `yaml:"color"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file at path.
//
// PARAMETERS:
//   - path: The YAML file to read.
//   - explicit: true when the user named the file. A missing file is then
//     an error; otherwise defaults are returned.
//
// RETURNS:
//   - The loaded, defaulted and validated Config.
//   - An error if the file cannot be read, parsed or validated.
func Load(path string, explicit bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset options.
func applyDefaults(cfg *Config) {
	if cfg.UploadsDir == "" {
		cfg.UploadsDir = "uploads"
	}
	if cfg.StudentsFile == "" {
		cfg.StudentsFile = "../students.csv"
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "UTF-8"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.AuditLog == "" {
		cfg.AuditLog = "result.log"
	}
	if cfg.TableFile == "" {
		cfg.TableFile = "table.csv"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Color == "" {
		cfg.Color = "auto"
	}
}

// Validate checks option values.
func (cfg *Config) Validate() error {
	if _, err := delimited.LookupEncoding(cfg.Encoding); err != nil {
		return err
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unsupported value %q", cfg.LogLevel)
	}

	switch strings.ToLower(cfg.Color) {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color: unsupported value %q", cfg.Color)
	}

	if cfg.AuditLog == cfg.TableFile {
		return fmt.Errorf("audit_log and table_file must differ (both %q)", cfg.AuditLog)
	}

	return nil
}
