package grid

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEncodeCSV(t *testing.T) {
	cols := []ColumnSpec{{Key: "name", Label: "name"}, {Key: "value", Label: "value"}}

	tests := []struct {
		name string
		rows []Row
		want string
	}{
		{
			name: "quotes comma",
			rows: []Row{{ID: "1", Fields: map[string]any{"name": "A,B", "value": 5}}},
			want: "name,value\n\"A,B\",5",
		},
		{
			name: "header only",
			want: "name,value",
		},
		{
			name: "missing field is empty",
			rows: []Row{{ID: "1", Fields: map[string]any{"name": "solo"}}},
			want: "name,value\nsolo,",
		},
		{
			name: "raw values not display cells",
			rows: []Row{
				{ID: "1", Fields: map[string]any{"name": "x", "value": true}},
				{ID: "2", Fields: map[string]any{"name": "y", "value": 2.5}},
			},
			want: "name,value\nx,true\ny,2.5",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeCSV(cols, tt.rows); got != tt.want {
				t.Errorf("EncodeCSV() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeCSV_UsesLabels(t *testing.T) {
	cols := []ColumnSpec{{Key: "name", Label: "Company"}, {Key: "status", Label: "Status", Display: BadgeOf(map[string]Badge{"approved": {Label: "Approved"}})}}
	rows := []Row{{ID: "1", Fields: map[string]any{"name": "Acme", "status": "approved"}}}

	want := "Company,Status\nAcme,approved"
	if got := EncodeCSV(cols, rows); got != want {
		t.Errorf("EncodeCSV() = %q, want %q", got, want)
	}
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2026, 3, 9, 15, 4, 0, 0, time.UTC)
	tests := []struct {
		title, want string
	}{
		{"Job Posts", "job-posts-2026-03-09.csv"},
		{"  Users  ", "users-2026-03-09.csv"},
		{"Company\tApplications  List", "company-applications-list-2026-03-09.csv"},
	}
	for _, tt := range tests {
		if got := ExportFilename(tt.title, at); got != tt.want {
			t.Errorf("ExportFilename(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestDirDownloader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	path, err := DirDownloader{Dir: dir}.Save("users.csv", CSVMimeType, []byte("a,b"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "a,b" {
		t.Errorf("content = %q", data)
	}
}

func TestExportError(t *testing.T) {
	inner := errors.New("disk full")
	err := &ExportError{Filename: "x.csv", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("ExportError should unwrap to its cause")
	}
	if err.Error() != "export x.csv: disk full" {
		t.Errorf("Error() = %q", err.Error())
	}
}
