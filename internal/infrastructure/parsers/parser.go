// Package parsers provides parsers for importing entities from various formats.
package parsers

import (
	"io"
	"path/filepath"
	"strings"
)

// RawEntity represents an entity parsed from an external source before validation.
type RawEntity struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Description string         `json:"description,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	LineNum     int            `json:"-"` // Line number in source file (set by parser)
}

// Parser defines the interface for parsing entities from various formats.
type Parser interface {
	Parse(r io.Reader) ([]RawEntity, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}
