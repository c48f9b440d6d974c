// =============================================================================
// xeroizer - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. Without arguments it checks the
// model registry: every model a belongs_to or has_many field names must be
// registered. With document arguments it also checks each document against
// the schemas and validates the records it holds.
//
// COMMAND USAGE:
//   xeroizer validate [FILE...] [flags]
//
// FLAGS:
//   --model            : Model of the documents' records instead of detecting it
//   --strict           : Treat warnings as errors
//   --stop-on-first    : Stop at the first error of each document
//   --log              : Also write the findings to this file
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/malclocke/xeroizer/internal/converter"
	"github.com/malclocke/xeroizer/internal/marshal"
	"github.com/malclocke/xeroizer/internal/validation"
	"github.com/malclocke/xeroizer/internal/xmltree"
)

var (
	validateModel       string
	validateStrict      bool
	validateStopOnFirst bool
	validateLog         string
)

var validateCmd = &cobra.Command{
	Use:   "validate [FILE...]",
	Short: "Check the model schemas and optionally documents",
	Long: `The validate command checks that every model referenced by a
belongs_to or has_many field is registered. Documents given as arguments are
checked for elements the models do not declare and for malformed values, and
the records they hold are validated.

The command fails when any error is found.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}

		options := validation.DefaultValidationOptions()
		options.TreatWarningsAsErrors = validateStrict
		options.StopOnFirstError = validateStopOnFirst

		return runValidate(env, args, validateModel, options, validateLog, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateModel, "model", "", "Model of the documents' records (detected when empty)")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as errors")
	validateCmd.Flags().BoolVar(&validateStopOnFirst, "stop-on-first", false, "Stop at the first error of each document")
	validateCmd.Flags().StringVar(&validateLog, "log", "", "Also write the findings to this file")
}

// runValidate validates the registry and the given documents.
func runValidate(env *environment, paths []string, model string, options validation.ValidationOptions, logPath string, out io.Writer) error {
	findings := validation.ValidateRegistry(env.registry)
	fmt.Fprintf(out, "Registry: %d model(s)\n", len(env.registry.Models()))

	valid := true
	for _, finding := range findings {
		if finding.Fatal() || options.TreatWarningsAsErrors {
			valid = false
		}
	}

	validator := validation.NewValidatorWithOptions(env.registry, options)
	for _, path := range paths {
		result, err := validateFile(env, validator, path, model)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d record(s), %d error(s), %d warning(s)\n",
			path, result.RecordsValidated, result.ErrorCount, result.WarningCount)
		findings = append(findings, result.Errors...)
		valid = valid && result.IsValid
	}

	fmt.Fprintln(out, validation.FormatErrors(findings))

	if logPath != "" {
		if err := validation.WriteErrorLog(findings, logPath); err != nil {
			return err
		}
	}

	if !valid {
		return fmt.Errorf("validation failed")
	}
	return nil
}

// validateFile checks one document. Records are only validated when the
// document check found no errors, since they could not be deserialized.
func validateFile(env *environment, validator *validation.Validator, path, model string) (*validation.ValidationResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	root, err := xmltree.Parse(file)
	file.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if model == "" {
		if model, err = converter.DetectModel(env.registry, root); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	combined := &validation.ValidationResult{IsValid: true}
	merge := func(r *validation.ValidationResult) {
		combined.Errors = append(combined.Errors, r.Errors...)
		combined.ErrorCount += r.ErrorCount
		combined.WarningCount += r.WarningCount
		combined.FieldsValidated += r.FieldsValidated
		combined.IsValid = combined.IsValid && r.IsValid
	}

	for _, el := range marshal.RecordElements(root, model) {
		merge(validator.ValidateDocument(el, model))
	}
	if combined.ErrorCount > 0 {
		return combined, nil
	}

	mapper := marshal.New(env.registry, marshal.WithLogger(env.logger))
	records, err := mapper.UnmarshalCollection(root, model)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	checked := validator.ValidateAll(records)
	merge(checked)
	combined.RecordsValidated = checked.RecordsValidated
	return combined, nil
}
