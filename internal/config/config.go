// =============================================================================
// xeroizer - Configuration Module
// =============================================================================
//
// This module loads the application configuration from config.yaml. The
// configuration drives the batch commands: where XML documents are picked up,
// where normalized documents are written and archived, where additional model
// schemas are read from, and how the output is formatted.
//
// LOADING:
//   1. Read and parse the YAML file
//   2. Apply defaults for every unset option
//   3. Validate the result
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/malclocke/xeroizer/internal/log"
)

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for XML documents to process.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the normalized XML documents.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input documents after successful processing.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives copies of generated documents.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// SchemasDir holds YAML and XLSX model schemas registered next to the
	// built-in models. A missing directory is not an error.
	// Default: "./schemas"
	SchemasDir string `yaml:"schemas_dir"`

	// LogDir receives the per-file error logs and the run summary.
	// Default: "./logs"
	LogDir string `yaml:"log_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat is the output file name format.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {model}     - Model of the records in the document
	//   {original}  - Input file name without extension
	// Default: "{original}_{uuid}.xml"
	OutputNameFormat string `yaml:"output_name_format"`

	// Indent is the indentation unit of generated XML.
	// Default: two spaces
	Indent *string `yaml:"indent"`

	// XMLDeclaration prepends <?xml ...?> to generated documents.
	// Default: true
	XMLDeclaration *bool `yaml:"xml_declaration"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the number of documents processed concurrently.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps processing the remaining documents when one fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// Load loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - The configuration with defaults applied.
//   - An error if the file cannot be read, parsed or is invalid.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault loads the configuration file, falling back to Default when
// the file does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	config, err := Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return config, err
}

// Parse parses configuration YAML.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.SchemasDir == "" {
		config.SchemasDir = "./schemas"
	}
	if config.LogDir == "" {
		config.LogDir = "./logs"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{original}_{uuid}.xml"
	}
	if config.Indent == nil {
		indent := "  "
		config.Indent = &indent
	}
	if config.XMLDeclaration == nil {
		declaration := true
		config.XMLDeclaration = &declaration
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.ContinueOnError == nil {
		cont := true
		config.ContinueOnError = &cont
	}
}

// validate checks option values.
func validate(config *Config) error {
	if _, err := log.ParseLevel(config.LogLevel); err != nil {
		return err
	}
	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}
	if strings.Trim(*config.Indent, " \t") != "" {
		return fmt.Errorf("indent must contain only spaces and tabs, got %q", *config.Indent)
	}
	if strings.ContainsAny(config.OutputNameFormat, `/\`) {
		return fmt.Errorf("output_name_format must be a file name, got %q", config.OutputNameFormat)
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() log.Level {
	level, _ := log.ParseLevel(c.LogLevel)
	return level
}

// Directories returns every directory the batch commands write to or read
// from, in a stable order.
func (c *Config) Directories() []string {
	return []string{c.InputDir, c.OutputDir, c.InputArchiveDir, c.OutputArchiveDir, c.LogDir}
}
