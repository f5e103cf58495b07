package grid

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// CSVMimeType is the content type of exported files.
const CSVMimeType = "text/csv;charset=utf-8"

var whitespaceRun = regexp.MustCompile(`\s+`)

// EncodeCSV renders columns and rows as CSV text. The header line holds the
// column labels; each following line holds the raw row values in column
// order. Values containing a comma are wrapped in double quotes.
func EncodeCSV(columns []ColumnSpec, rows []Row) string {
	lines := make([]string, 0, len(rows)+1)

	labels := make([]string, len(columns))
	for i, col := range columns {
		labels[i] = col.Label
	}
	lines = append(lines, strings.Join(labels, ","))

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			v, _ := row.Value(col.Key)
			cells[i] = csvField(FormatValue(v))
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

func csvField(s string) string {
	if strings.Contains(s, ",") {
		return `"` + s + `"`
	}
	return s
}

// ExportFilename returns "<slug>-<YYYY-MM-DD>.csv" where slug is the title
// lowercased with whitespace runs replaced by dashes.
func ExportFilename(title string, at time.Time) string {
	slug := strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(title), "-"))
	return fmt.Sprintf("%s-%s.csv", slug, at.Format("2006-01-02"))
}

// Downloader delivers an exported file to the user and returns where it went.
type Downloader interface {
	Save(name, mime string, data []byte) (string, error)
}

// DirDownloader saves exports into a directory.
type DirDownloader struct {
	Dir string
}

func (d DirDownloader) Save(name, mime string, data []byte) (string, error) {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

// ExportError reports a failed CSV export.
type ExportError struct {
	Filename string
	Err      error
}

func (e *ExportError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("export %s: %v", e.Filename, e.Err)
	}
	return fmt.Sprintf("export: %v", e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
