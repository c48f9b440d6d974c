// =============================================================================
// xeroizer - Converter Module
// =============================================================================
//
// This module contains the document processing pipeline. It takes one XML
// document through parsing, deserialization into records, validation and
// serialization back into a normalized document.
//
// PROCESSING PIPELINE:
//   1. Parse the input document
//   2. Detect the model of its records
//   3. Check the document for elements no model declares
//   4. Deserialize the records
//   5. Validate the records
//   6. Serialize the records into a normalized document
//   7. Write the output file
//   8. Archive the processed files
//
// CONCURRENCY:
//   A Converter processes a single file. The registry is read-only once
//   frozen, so converters for different files can run in parallel.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/malclocke/xeroizer/internal/config"
	"github.com/malclocke/xeroizer/internal/log"
	"github.com/malclocke/xeroizer/internal/marshal"
	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/schema"
	"github.com/malclocke/xeroizer/internal/validation"
	"github.com/malclocke/xeroizer/internal/xmltree"
	"github.com/malclocke/xeroizer/pkg/utils"
)

// ErrNoModel is returned when no registered model matches a document.
var ErrNoModel = errors.New("no registered model matches the document")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the generated XML file.
	// This is empty if processing failed.
	OutputFile string

	// Model is the model of the document's records.
	Model string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Findings are the validation findings, warnings included.
	Findings []*validation.ValidationError

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RecordsProcessed is the number of top-level records in the document.
	RecordsProcessed int

	// NestedRecords is the number of belongs_to and has_many records.
	NestedRecords int

	// SkippedElements is the number of elements no model declares.
	SkippedElements int

	// ValidationErrors is the number of fatal validation findings.
	ValidationErrors int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter processes a single XML document.
type Converter struct {
	inputPath string
	model     string
	config    *config.Config
	mapper    *marshal.Mapper
	validator *validation.Validator
	files     *utils.FileManager
	logger    log.Logger
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The path to the input document.
//   - cfg: The application configuration.
//   - reg: The registry of known models, frozen.
//   - files: The file manager used to archive and name files.
//   - logger: The logger; nil discards output.
//
// RETURNS:
//   - A new Converter instance.
func New(inputPath string, cfg *config.Config, reg *record.Registry, files *utils.FileManager, logger log.Logger) *Converter {
	if logger == nil {
		logger = log.Discard
	}
	logger = logger.With("file", filepath.Base(inputPath))

	return &Converter{
		inputPath: inputPath,
		config:    cfg,
		mapper: marshal.New(reg,
			marshal.WithLogger(logger),
			marshal.WithXMLOptions(XMLOptions(cfg))),
		validator: validation.NewValidator(reg),
		files:     files,
		logger:    logger,
	}
}

// WithModel fixes the model of the document's records instead of detecting
// it from the root element.
func (c *Converter) WithModel(model string) *Converter {
	c.model = model
	return c
}

// XMLOptions returns the builder options the configuration asks for.
func XMLOptions(cfg *config.Config) xmltree.Options {
	options := xmltree.DefaultOptions()
	options.Indent = *cfg.Indent
	options.IncludeXMLDeclaration = *cfg.XMLDeclaration
	return options
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the processing pipeline for the file.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run() (result Result) {
	startTime := time.Now()
	result = Result{FilePath: c.inputPath}
	defer func() { result.Stats.ProcessingTime = time.Since(startTime) }()

	c.logger.Info("processing file")

	// =========================================================================
	// STEP 1: PARSE DOCUMENT
	// =========================================================================

	file, err := os.Open(c.inputPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to open input: %w", err)
		return result
	}
	root, err := xmltree.Parse(file)
	file.Close()
	if err != nil {
		result.Error = fmt.Errorf("failed to parse document: %w", err)
		return result
	}

	// =========================================================================
	// STEP 2: DETECT MODEL
	// =========================================================================

	model := c.model
	if model == "" {
		if model, err = DetectModel(c.mapper.Registry(), root); err != nil {
			result.Error = err
			return result
		}
	}
	result.Model = model
	c.logger.Debug("document holds %s records", model)

	// =========================================================================
	// STEP 3: CHECK DOCUMENT
	// =========================================================================
	// Unknown elements are skipped by the deserializer. They are reported here
	// so that the run log shows what was dropped.

	elements := marshal.RecordElements(root, model)
	for _, el := range elements {
		check := c.validator.ValidateDocument(el, model)
		for _, finding := range check.Errors {
			if finding.Rule == "unknown_element" {
				result.Stats.SkippedElements++
			}
			c.logger.Warn("%s", finding.Error())
		}
		result.Findings = append(result.Findings, check.Errors...)
	}

	// =========================================================================
	// STEP 4: DESERIALIZE RECORDS
	// =========================================================================

	records, err := c.mapper.UnmarshalCollection(root, model)
	if err != nil {
		result.Error = fmt.Errorf("failed to read records: %w", err)
		return result
	}
	result.Stats.RecordsProcessed = len(records)
	for _, rec := range records {
		result.Stats.NestedRecords += countNested(rec)
	}
	c.logger.Debug("read %d records", len(records))

	// =========================================================================
	// STEP 5: VALIDATE RECORDS
	// =========================================================================

	validated := c.validator.ValidateAll(records)
	for _, finding := range validated.Errors {
		c.logger.Warn("%s", finding.Error())
	}
	result.Findings = append(result.Findings, validated.Errors...)
	result.Stats.ValidationErrors = validated.ErrorCount

	if !validated.IsValid && !*c.config.ContinueOnError {
		result.Error = fmt.Errorf("validation failed with %d errors", validated.ErrorCount)
		return result
	}

	// =========================================================================
	// STEP 6: SERIALIZE RECORDS
	// =========================================================================

	doc, err := c.mapper.MarshalCollection(model, records)
	if err != nil {
		result.Error = fmt.Errorf("failed to generate XML: %w", err)
		return result
	}

	// =========================================================================
	// STEP 7: WRITE OUTPUT FILE
	// =========================================================================

	outputPath, err := c.writeOutput(model, doc)
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	result.OutputFile = outputPath
	c.logger.Info("wrote %d %s records to %s", len(records), model, outputPath)

	// =========================================================================
	// STEP 8: ARCHIVE FILES
	// =========================================================================

	if err := c.archiveFiles(outputPath); err != nil {
		c.logger.Warn("failed to archive files: %v", err)
	}

	result.Success = true
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// DetectModel finds the model of the records in a document.
//
// MATCHING LOGIC:
//   1. The root element is named after a model: a single record
//   2. The root element is named after a pluralized model: a collection
//   3. A child of the root is named after a pluralized model: an API
//      response envelope such as <Response><Invoices>...
//
// Models are tried in sorted order, so the first match is stable.
func DetectModel(reg *record.Registry, root *xmltree.Element) (string, error) {
	models := reg.Models()

	for _, model := range models {
		if root.Name == model {
			return model, nil
		}
	}
	for _, model := range models {
		if root.Name == schema.Plural(model) {
			return model, nil
		}
	}
	for _, child := range root.Children {
		for _, model := range models {
			if child.Name == schema.Plural(model) {
				return model, nil
			}
		}
	}
	return "", fmt.Errorf("%w: <%s>", ErrNoModel, root.Name)
}

// countNested counts the belongs_to and has_many records below a record.
func countNested(rec record.Record) int {
	count := 0
	_ = rec.Attributes().Each(func(_ string, value interface{}) error {
		switch v := value.(type) {
		case record.Record:
			count += 1 + countNested(v)
		case []record.Record:
			for _, item := range v {
				count += 1 + countNested(item)
			}
		}
		return nil
	})
	return count
}

// writeOutput writes the document to the output directory under a name built
// from the configured output name format.
func (c *Converter) writeOutput(model string, doc []byte) (string, error) {
	fileName := utils.GenerateOutputFileName(c.config.OutputNameFormat, map[string]string{
		"model":    model,
		"original": utils.BaseName(c.inputPath),
	})
	outputPath := filepath.Join(c.config.OutputDir, fileName)

	if err := os.WriteFile(outputPath, doc, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return outputPath, nil
}

// archiveFiles moves the input document to the input archive and copies the
// output document to the output archive.
func (c *Converter) archiveFiles(outputPath string) error {
	if c.files == nil {
		return nil
	}
	if _, err := c.files.ArchiveInputFile(c.inputPath); err != nil {
		return fmt.Errorf("failed to archive input file: %w", err)
	}
	if _, err := c.files.ArchiveOutputFile(outputPath); err != nil {
		return fmt.Errorf("failed to archive output file: %w", err)
	}
	return nil
}
