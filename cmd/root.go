// =============================================================================
// xeroizer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (xeroizer)
//   ├── processCmd  (xeroizer process)
//   ├── convertCmd  (xeroizer convert FILE)
//   ├── validateCmd (xeroizer validate [FILE...])
//   ├── schemaCmd   (xeroizer schema [MODEL])
//   └── versionCmd  (xeroizer version)
//
// SHARED SETUP:
//   Every command loads the configuration named by --config (defaults apply
//   when the file is missing), builds a logger at the configured level and
//   builds the model registry: the built-in models plus the YAML and XLSX
//   schemas found in schemas_dir.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/malclocke/xeroizer/internal/config"
	"github.com/malclocke/xeroizer/internal/log"
	"github.com/malclocke/xeroizer/internal/models"
	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/schema"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "xeroizer",
	Short: "xeroizer - Schema-driven XML record marshaling for the Xero API",
	Long: `xeroizer reads Xero API XML documents into typed records and writes
records back as XML, driven by per-model field schemas.

Key Features:
  - Built-in Contact, Invoice, Payment, Account, TrackingCategory and
    Organisation models
  - Additional models from YAML or XLSX schema definitions
  - Validation of documents and records against the schemas
  - Concurrent batch normalization of XML documents with archival

Example Usage:
  xeroizer process                      # Normalize all documents in the input directory
  xeroizer convert invoices.xml         # Normalize one document to stdout
  xeroizer validate                     # Check the model schemas
  xeroizer schema Invoice               # Show the fields of a model`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// environment is the state every command starts from.
type environment struct {
	config   *config.Config
	logger   log.Logger
	registry *record.Registry
}

// setup loads the configuration and builds the logger and registry.
func setup(cmd *cobra.Command) (*environment, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Level()
	if verbose {
		level = log.LevelDebug
	}
	logger := log.New(cmd.ErrOrStderr(), level)

	reg, err := buildRegistry(cfg.SchemasDir, logger)
	if err != nil {
		return nil, err
	}

	return &environment{config: cfg, logger: logger, registry: reg}, nil
}

// buildRegistry registers the built-in models and the schemas found in a
// schemas directory, then freezes the registry. Loaded schemas are backed by
// generic records.
func buildRegistry(schemasDir string, logger log.Logger) (*record.Registry, error) {
	reg, err := models.NewRegistry()
	if err != nil {
		return nil, err
	}

	loaded, err := schema.LoadDir(schemasDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load schemas: %w", err)
	}
	for _, s := range loaded {
		if err := reg.Register(s, record.Generic); err != nil {
			return nil, fmt.Errorf("failed to register schema %s: %w", s.Name(), err)
		}
		logger.Debug("registered model %s from %s", s.Name(), schemasDir)
	}

	reg.Freeze()
	return reg, nil
}
