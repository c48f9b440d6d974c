// =============================================================================
// xeroizer - Schema Command
// =============================================================================
//
// This file defines the 'schema' command, which shows the registered models
// and their fields, or exports them as a YAML or XLSX schema definition that
// can be dropped into schemas_dir.
//
// COMMAND USAGE:
//   xeroizer schema [MODEL...] [flags]
//
// FLAGS:
//   --yaml FILE  : Export the selected schemas as YAML ("-" for stdout)
//   --xlsx FILE  : Export the selected schemas as an XLSX template
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/schema"
)

var (
	schemaYAML string
	schemaXLSX string
)

var schemaCmd = &cobra.Command{
	Use:   "schema [MODEL...]",
	Short: "Show or export the model schemas",
	Long: `The schema command lists the fields of the registered models. Without
arguments every model is shown. The selected schemas can be exported as YAML
or as an XLSX template, the two formats read from schemas_dir.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}

		schemas, err := selectSchemas(env.registry, args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case schemaYAML != "":
			return exportYAML(schemas, schemaYAML, out)
		case schemaXLSX != "":
			return exportXLSX(schemas, schemaXLSX)
		}
		return printSchemas(schemas, out)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().StringVar(&schemaYAML, "yaml", "", `Export the schemas as YAML to this file ("-" for stdout)`)
	schemaCmd.Flags().StringVar(&schemaXLSX, "xlsx", "", "Export the schemas as an XLSX template to this file")
}

// selectSchemas returns the schemas of the named models, or all schemas.
func selectSchemas(reg *record.Registry, models []string) ([]*schema.Schema, error) {
	if len(models) == 0 {
		return reg.Schemas(), nil
	}
	schemas := make([]*schema.Schema, 0, len(models))
	for _, model := range models {
		s, err := reg.Lookup(model)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// printSchemas writes a field table per schema.
func printSchemas(schemas []*schema.Schema, out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, s := range schemas {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%s)\n", s.Name(), schema.Plural(s.Name()))
		fmt.Fprintln(w, "  KEY\tELEMENT\tTYPE\tMODEL\tCALCULATED")
		for _, f := range s.Fields() {
			calculated := ""
			if f.Calculated {
				calculated = "yes"
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", f.Key, f.WireName, f.Type, f.ModelName, calculated)
		}
	}
	return w.Flush()
}

func exportYAML(schemas []*schema.Schema, path string, out io.Writer) error {
	data, err := schema.MarshalYAML(schemas)
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(out, "Wrote %d schema(s) to %s\n", len(schemas), path)
	return nil
}

func exportXLSX(schemas []*schema.Schema, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := schema.WriteXLSX(file, schemas); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
