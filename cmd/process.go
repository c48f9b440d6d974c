// =============================================================================
// xeroizer - Process Command
// =============================================================================
//
// This file defines the 'process' command, which normalizes every XML
// document in the input directory.
//
// COMMAND USAGE:
//   xeroizer process [flags]
//
// FLAGS:
//   --file     : Process only this file
//   --pattern  : Glob pattern selecting input files (default "*.xml")
//   --model    : Model of the documents' records instead of detecting it
//
// PROCESSING PIPELINE:
//   1. Load the configuration and build the model registry
//   2. Discover XML documents in the input directory
//   3. For each document (concurrently, at most max_concurrency at a time):
//      a. Parse the document and detect its model
//      b. Deserialize and validate the records
//      c. Serialize the records into the output directory
//      d. Archive the input and output documents
//   4. Write the error log and the summary report
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/malclocke/xeroizer/internal/converter"
	"github.com/malclocke/xeroizer/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	processFile    string
	processPattern string
	processModel   string
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Normalize the XML documents of the input directory",
	Long: `The process command scans the input directory for XML documents, reads
the records they hold and writes them back as normalized XML.

Documents are processed concurrently, bounded by max_concurrency. Each
document is processed independently.

On successful processing:
  - The normalized document is placed in the output directory
  - The input document is moved to the input archive
  - A copy of the output is placed in the output archive

On error:
  - The error is written to an error log in the log directory
  - The input document remains in the input directory
  - Remaining documents are processed unless continue_on_error is false`,

	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		return runProcess(cmd.Context(), env, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processFile, "file", "", "Process only this file")
	processCmd.Flags().StringVar(&processPattern, "pattern", "*.xml", "Glob pattern selecting input files")
	processCmd.Flags().StringVar(&processModel, "model", "", "Model of the documents' records (detected when empty)")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess normalizes the input documents and reports progress to out.
func runProcess(ctx context.Context, env *environment, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := env.config
	summary := utils.ProcessingSummary{StartTime: time.Now()}

	files := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir, cfg.LogDir)
	if err := files.EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if processFile != "" {
		if !utils.FileExists(processFile) {
			return fmt.Errorf("input file not found: %s", processFile)
		}
		inputFiles = []string{processFile}
	} else {
		var err error
		if inputFiles, err = files.DiscoverInputFiles(processPattern); err != nil {
			return err
		}
	}

	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No XML documents found in the input directory.")
		return nil
	}
	fmt.Fprintf(out, "Found %d file(s) to process\n", len(inputFiles))

	// =========================================================================
	// STEP 2: PROCESS FILES CONCURRENTLY
	// =========================================================================

	results := processFiles(ctx, env, files, inputFiles)

	// =========================================================================
	// STEP 3: COLLECT RESULTS
	// =========================================================================

	var errorLog []utils.ErrorLogEntry
	for _, result := range results {
		name := filepath.Base(result.FilePath)
		summary.TotalFiles++
		summary.ValidationErrors += result.Stats.ValidationErrors

		for _, finding := range result.Findings {
			errorLog = append(errorLog, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     name,
				ErrorType:    finding.Rule,
				ErrorMessage: finding.Message,
				Model:        finding.Model,
				Path:         finding.Path,
				FieldValue:   finding.Value,
			})
		}

		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalRecords += result.Stats.RecordsProcessed
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   name,
				OutputFile:  filepath.Base(result.OutputFile),
				Model:       result.Model,
				Records:     result.Stats.RecordsProcessed,
				ProcessTime: result.Stats.ProcessingTime,
			})
			fmt.Fprintf(out, "  ✓ %s -> %s (%d %s)\n", name, result.OutputFile, result.Stats.RecordsProcessed, result.Model)
			continue
		}

		summary.FailedFiles++
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    name,
			ErrorMessage: result.Error.Error(),
		})
		errorLog = append(errorLog, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     name,
			ErrorType:    "processing",
			ErrorMessage: result.Error.Error(),
			Model:        result.Model,
		})
		fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
	}
	summary.EndTime = time.Now()

	// =========================================================================
	// STEP 4: WRITE LOGS AND SUMMARY
	// =========================================================================

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Records:         %d\n", summary.TotalRecords)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if path, err := files.WriteErrorLog(errorLog); err != nil {
		env.logger.Error("failed to write error log: %v", err)
	} else if path != "" {
		fmt.Fprintf(out, "Findings have been logged to %s\n", path)
	}
	if _, err := files.WriteSummaryLog(summary); err != nil {
		env.logger.Error("failed to write summary: %v", err)
	}

	if summary.FailedFiles > 0 && !*cfg.ContinueOnError {
		return fmt.Errorf("%d file(s) failed", summary.FailedFiles)
	}
	return nil
}

// processFiles runs a converter per file on a pool of max_concurrency
// workers. When continue_on_error is false, files not yet started after the
// first failure are left alone. Results are returned in input order.
func processFiles(ctx context.Context, env *environment, files *utils.FileManager, inputFiles []string) []converter.Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := env.config.MaxConcurrency
	if workers > len(inputFiles) {
		workers = len(inputFiles)
	}

	jobs := make(chan int)
	results := make([]converter.Result, len(inputFiles))
	done := make([]bool, len(inputFiles))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				conv := converter.New(inputFiles[i], env.config, env.registry, files, env.logger)
				if processModel != "" {
					conv.WithModel(processModel)
				}
				results[i] = conv.Run()
				done[i] = true
				if !results[i].Success && !*env.config.ContinueOnError {
					cancel()
				}
			}
		}()
	}

feed:
	for i := range inputFiles {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	finished := results[:0]
	for i, result := range results {
		if done[i] {
			finished = append(finished, result)
		}
	}
	return finished
}
