// =============================================================================
// Upload Reconciler - Main Entry Point
// =============================================================================
//
// This is the main entry point for the reconciler CLI application. It
// delegates command execution to the cmd package.
//
// USAGE:
//   reconciler [UPL_DIR] [STUD_FILE] FILE   - Copy and extract uploads per section
//   reconciler --clear FILE                 - Remove what an earlier run copied
//   reconciler validate [STUD_FILE] FILE    - Check inputs without touching files
//   reconciler version                      - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, reconciliation, logging and reporting
//   - pkg/           : Shared filesystem and archive helpers
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/upload-reconciler/cmd"
)

func main() {
	cmd.Execute()
}
