// =============================================================================
// xeroizer - Main Entry Point
// =============================================================================
//
// USAGE:
//   xeroizer process        - Normalize all XML documents in the input directory
//   xeroizer convert FILE   - Normalize one document
//   xeroizer validate       - Check the model schemas and documents
//   xeroizer schema         - Show or export the model schemas
//   xeroizer version        - Display the application version
//
// ARCHITECTURE:
//   - cmd/                : CLI command definitions (Cobra)
//   - internal/schema     : Field schemas and their YAML/XLSX definitions
//   - internal/record     : Records, attributes and the model registry
//   - internal/coerce     : Scalar text <-> value conversion
//   - internal/marshal    : XML <-> record marshaling
//   - internal/models     : Built-in Xero models
//   - pkg/utils           : File handling of the batch commands
//
// =============================================================================

package main

import (
	"github.com/malclocke/xeroizer/cmd"
)

func main() {
	cmd.Execute()
}
