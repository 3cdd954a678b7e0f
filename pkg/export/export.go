package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// Format names a supported export encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// Dataset defines tabular export content. Columns listed in Numeric are right-aligned where the format supports it.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	Numeric map[string]bool
}

// File is a rendered export ready to stream.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// ParseFormat normalises user input into a Format.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// Render encodes the dataset in the requested format. baseName is used for the file name.
func Render(format Format, data Dataset, title, baseName string) (*File, error) {
	switch format {
	case FormatCSV:
		body, err := renderCSV(data)
		if err != nil {
			return nil, err
		}
		return &File{Name: baseName + ".csv", ContentType: "text/csv; charset=utf-8", Body: body}, nil
	case FormatPDF:
		body, err := NewPDFExporter().Render(data, title)
		if err != nil {
			return nil, err
		}
		return &File{Name: baseName + ".pdf", ContentType: "application/pdf", Body: body}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// renderCSV writes the header row followed by one record per row; missing cells are empty.
func renderCSV(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Headers))
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
