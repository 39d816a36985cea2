package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// TagSeparator splits the tags column of a CSV row.
const TagSeparator = ";"

// CSVParser parses entities from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed entities.
// Required columns: name, type. Optional: description, tags (semicolon
// separated). Remaining columns become properties; empty cells are skipped.
func (p *CSVParser) Parse(r io.Reader) ([]RawEntity, error) {
	reader := csv.NewReader(r)

	header, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, header)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) ([]string, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	present := make(map[string]bool, len(header))
	for i, col := range header {
		header[i] = strings.TrimSpace(col)
		present[header[i]] = true
	}

	for _, col := range []string{"name", "type"} {
		if !present[col] {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return header, nil
}

// readRecords reads all data rows and converts them to RawEntities.
func (p *CSVParser) readRecords(reader *csv.Reader, header []string) ([]RawEntity, error) {
	var rows []RawEntity
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		rows = append(rows, p.parseRecord(record, header, lineNum))
	}

	return rows, nil
}

// parseRecord converts a CSV record to a RawEntity.
func (p *CSVParser) parseRecord(record, header []string, lineNum int) RawEntity {
	row := RawEntity{LineNum: lineNum}

	for i, col := range header {
		if i >= len(record) {
			break
		}
		value := strings.TrimSpace(record[i])

		switch col {
		case "name":
			row.Name = value
		case "type":
			row.Type = value
		case "description":
			row.Description = value
		case "tags":
			row.Tags = splitTags(value)
		default:
			if value == "" {
				continue
			}
			if row.Properties == nil {
				row.Properties = make(map[string]any)
			}
			row.Properties[col] = value
		}
	}

	return row
}

func splitTags(value string) []string {
	if value == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(value, TagSeparator) {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
