// Package report renders analysis reports as text, Markdown, HTML, JSON
// or YAML.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/deungi/pkg/analysis"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown format")

// Format is an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatMarkdown, FormatHTML}

// ParseFormat converts a flag value into a Format. Common aliases such as
// md, yml and txt are accepted.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, value)
}

// FormatForPath picks a format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	extension := strings.TrimPrefix(filepath.Ext(path), ".")
	if extension == "" {
		return FormatJSON
	}
	format, err := ParseFormat(extension)
	if err != nil {
		return FormatJSON
	}
	return format
}

// Render renders an analysis report.
func Render(analysisReport *analysis.Report, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(Text(analysisReport)), nil
	case FormatMarkdown:
		return []byte(Markdown(analysisReport)), nil
	case FormatHTML:
		return []byte(HTML(analysisReport)), nil
	}
	return Encode(analysisReport, format)
}

// Encode serializes any value as JSON or YAML.
func Encode(value any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize JSON: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize YAML: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %q cannot encode values", ErrUnknownFormat, format)
}

// Write renders analysisReport to w.
func Write(w io.Writer, analysisReport *analysis.Report, format Format) error {
	data, err := Render(analysisReport, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// formatWon renders an amount in won with thousands separators.
func formatWon(amount int64) string {
	if amount == 0 {
		return "-"
	}
	digits := fmt.Sprintf("%d", amount)
	negative := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var sb strings.Builder
	for i, digit := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(digit)
	}

	if negative {
		return "-" + sb.String() + "원"
	}
	return sb.String() + "원"
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
