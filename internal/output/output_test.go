package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/marcus/jobdesk/internal/grid"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr := Stdout, Stderr
	Stdout, Stderr = &out, &errOut
	t.Cleanup(func() { Stdout, Stderr = oldOut, oldErr })
	return &out, &errOut
}

func TestMessages(t *testing.T) {
	out, errOut := capture(t)

	Success("deleted %s", "us-0001")
	Warning("guard %s", "expired")
	Error("failed: %v", "boom")

	if !strings.Contains(out.String(), "deleted us-0001") {
		t.Errorf("stdout = %q", out.String())
	}
	for _, want := range []string{"warning:", "guard expired", "error:", "failed: boom"} {
		if !strings.Contains(errOut.String(), want) {
			t.Errorf("stderr missing %q: %q", want, errOut.String())
		}
	}
}

func TestJSON(t *testing.T) {
	out, _ := capture(t)

	if err := JSONError("not_found", "user not found"); err != nil {
		t.Fatalf("JSONError: %v", err)
	}
	var got struct {
		OK    bool `json:"ok"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.OK || got.Error.Code != "not_found" {
		t.Errorf("got %+v", got)
	}
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, "never"},
		{now.Add(time.Hour), "in the future"},
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-4 * 24 * time.Hour), "4d ago"},
		{time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), "2025-12-01"},
	}
	for _, tt := range tests {
		if got := formatTimeAgo(tt.at, now); got != tt.want {
			t.Errorf("formatTimeAgo(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestRenderTable(t *testing.T) {
	cols := []grid.ColumnSpec{
		{Key: "name", Label: "Name"},
		{Key: "status", Label: "Status", Display: grid.BadgeOf(map[string]grid.Badge{
			"approved": {Label: "Approved", Tone: grid.ToneSuccess},
		})},
	}
	rows := []grid.Row{
		{ID: "co-0001", Fields: map[string]any{"name": "Northwind Traders International", "status": "approved"}},
		{ID: "co-0002", Fields: map[string]any{"name": "Acme"}},
	}

	out := RenderTable(cols, rows, 0)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "ID") || !strings.Contains(lines[0], "Status") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Approved") {
		t.Errorf("badge not rendered: %q", lines[1])
	}
	if !strings.Contains(lines[2], grid.Placeholder) {
		t.Errorf("missing value not rendered as placeholder: %q", lines[2])
	}

	narrow := RenderTable(cols, rows, 30)
	if strings.Contains(narrow, "International") {
		t.Errorf("expected long name to be truncated:\n%s", narrow)
	}
	if !strings.Contains(narrow, "…") {
		t.Errorf("expected ellipsis:\n%s", narrow)
	}
}

func TestRenderPager(t *testing.T) {
	tests := []struct {
		name string
		p    grid.Pagination
		want []string
	}{
		{"empty", grid.Pagination{CurrentPage: 1, RowsPerPage: 10}, []string{"No records"}},
		{"single page", grid.Pagination{CurrentPage: 1, RowsPerPage: 10, TotalItems: 7}, []string{"1-7 of 7"}},
		{"middle", grid.Pagination{CurrentPage: 5, RowsPerPage: 10, TotalItems: 95},
			[]string{"41-50 of 95", "‹", "3 4 [5] 6 7", "›"}},
		{"clamped", grid.Pagination{CurrentPage: 40, RowsPerPage: 10, TotalItems: 25},
			[]string{"21-25 of 25", "1 2 [3]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderPager(tt.p, 5)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("RenderPager = %q, missing %q", got, want)
				}
			}
		})
	}
}
