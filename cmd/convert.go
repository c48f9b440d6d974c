// =============================================================================
// xeroizer - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which reads the records of one
// document and writes them out again without touching the configured
// directories.
//
// COMMAND USAGE:
//   xeroizer convert FILE [flags]
//
// FLAGS:
//   --out     : Write to this file instead of stdout
//   --model   : Model of the document's records instead of detecting it
//   --format  : "xml" (default) or "yaml" for a dump of the record attributes
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/malclocke/xeroizer/internal/coerce"
	"github.com/malclocke/xeroizer/internal/converter"
	"github.com/malclocke/xeroizer/internal/marshal"
	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/schema"
	"github.com/malclocke/xeroizer/internal/xmltree"
)

var (
	convertOut    string
	convertModel  string
	convertFormat string
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Normalize a single XML document",
	Long: `The convert command reads the records of one XML document and writes
them back as normalized XML, or as a YAML dump of their attributes with
--format yaml. Elements the model does not declare are dropped.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if convertOut != "" {
			file, err := os.Create(convertOut)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			defer file.Close()
			out = file
		}
		return runConvert(env, args[0], convertModel, convertFormat, out)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "Write to this file instead of stdout")
	convertCmd.Flags().StringVar(&convertModel, "model", "", "Model of the document's records (detected when empty)")
	convertCmd.Flags().StringVar(&convertFormat, "format", "xml", `Output format: "xml" or "yaml"`)
}

// runConvert converts the document at path and writes the result to out.
func runConvert(env *environment, path, model, format string, out io.Writer) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	root, err := xmltree.Parse(file)
	file.Close()
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}

	if model == "" {
		if model, err = converter.DetectModel(env.registry, root); err != nil {
			return err
		}
	}

	mapper := marshal.New(env.registry,
		marshal.WithLogger(env.logger),
		marshal.WithXMLOptions(converter.XMLOptions(env.config)))
	records, err := mapper.UnmarshalCollection(root, model)
	if err != nil {
		return err
	}
	env.logger.Debug("read %d %s records from %s", len(records), model, path)

	switch strings.ToLower(format) {
	case "xml", "":
		doc, err := mapper.MarshalCollection(model, records)
		if err != nil {
			return err
		}
		_, err = out.Write(doc)
		return err

	case "yaml", "yml":
		dump := make([]map[string]interface{}, 0, len(records))
		for _, rec := range records {
			entry, err := dumpRecord(rec)
			if err != nil {
				return err
			}
			dump = append(dump, entry)
		}
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(map[string]interface{}{schema.Plural(model): dump}); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return encoder.Close()
	}

	return fmt.Errorf("unknown format %q", format)
}

// dumpRecord renders the attributes of a record as YAML-friendly values,
// keyed by internal field name. Scalars are rendered in their wire form.
func dumpRecord(rec record.Record) (map[string]interface{}, error) {
	s := rec.Schema()
	entry := make(map[string]interface{}, rec.Attributes().Len())

	err := rec.Attributes().Each(func(key string, value interface{}) error {
		if value == nil {
			return nil
		}
		f, ok := s.Field(key)
		if !ok {
			return &record.FieldError{Model: s.Name(), Field: key, Reason: "no such field"}
		}

		switch v := value.(type) {
		case record.Record:
			nested, err := dumpRecord(v)
			if err != nil {
				return err
			}
			entry[f.InternalName] = nested
		case []record.Record:
			items := make([]map[string]interface{}, 0, len(v))
			for _, item := range v {
				nested, err := dumpRecord(item)
				if err != nil {
					return err
				}
				items = append(items, nested)
			}
			entry[f.InternalName] = items
		default:
			text, err := coerce.Format(s.Name(), f, value)
			if err != nil {
				return err
			}
			entry[f.InternalName] = text
		}
		return nil
	})
	return entry, err
}
