package main

import "time"

// Timeouts for CLI commands.
const (
	ShutdownTimeout = 15 * time.Second
)

// Valid export formats.
var validFormats = []string{"json", "markdown"}

// Valid import formats; auto picks by file extension.
var validImportFormats = []string{"auto", "json", "csv"}
