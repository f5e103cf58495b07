package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marcus/jobdesk/internal/config"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/spf13/cobra"
)

type listJSON struct {
	Page  int             `json:"page"`
	Pages int             `json:"pages"`
	Total int             `json:"total"`
	Rows  []models.Record `json:"rows"`
}

func listPage(t *testing.T, dir string, args ...string) listJSON {
	t.Helper()
	out, err := execute(t, dir, append([]string{"list", "--json"}, args...)...)
	if err != nil {
		t.Fatalf("list %v: %v", args, err)
	}
	var got listJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return got
}

func TestInit(t *testing.T) {
	dir := initProject(t)

	if _, err := os.Stat(config.Path(dir)); err != nil {
		t.Errorf("config not written: %v", err)
	}
	if got := listPage(t, dir, "users").Total; got != 12 {
		t.Errorf("users = %d, want 12", got)
	}

	// a second init keeps the data
	if _, err := execute(t, dir, "init"); err != nil {
		t.Fatalf("second init: %v", err)
	}
	if got := listPage(t, dir, "companies").Total; got != 6 {
		t.Errorf("companies after re-init = %d, want 6", got)
	}
}

func TestInit_NoSeed(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, dir, "init", "--no-seed")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "Users") {
		t.Errorf("output missing counts: %q", out)
	}
	if got := listPage(t, dir, "notices").Total; got != 0 {
		t.Errorf("notices = %d, want 0", got)
	}
}

func TestList(t *testing.T) {
	dir := initProject(t)

	tests := []struct {
		name      string
		args      []string
		wantTotal int
		wantPage  int
		wantRows  int
	}{
		{"first page", []string{"users", "--limit", "5"}, 12, 1, 5},
		{"last page", []string{"users", "--limit", "5", "--page", "3"}, 12, 3, 2},
		{"page past the end is clamped", []string{"users", "--limit", "5", "--page", "99"}, 12, 3, 2},
		{"filter", []string{"companies", "--filter", "status=approving"}, 2, 1, 2},
		{"alias", []string{"posts", "--limit", "20"}, 14, 1, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := listPage(t, dir, tt.args...)
			if got.Total != tt.wantTotal || got.Page != tt.wantPage || len(got.Rows) != tt.wantRows {
				t.Errorf("total=%d page=%d rows=%d, want %d/%d/%d",
					got.Total, got.Page, len(got.Rows), tt.wantTotal, tt.wantPage, tt.wantRows)
			}
		})
	}
}

func TestList_Table(t *testing.T) {
	dir := initProject(t)

	out, err := execute(t, dir, "list", "companies", "--sort", "name")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// header, six rows, pager
	if len(lines) != 8 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "Blue Bean Coffee") {
		t.Errorf("first row = %q, want Blue Bean Coffee", lines[1])
	}
	if !strings.HasPrefix(lines[7], "1-6 of 6") {
		t.Errorf("pager = %q", lines[7])
	}

	out, err = execute(t, dir, "list", "companies", "--search", "no such company")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.TrimSpace(out) != "No records match" {
		t.Errorf("empty search output = %q", out)
	}
}

func TestList_Errors(t *testing.T) {
	dir := initProject(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown resource", []string{"list", "widgets"}},
		{"filter without value", []string{"list", "companies", "--filter", "status"}},
		{"unknown sort key", []string{"list", "users", "--sort", "shoe_size"}},
		{"no database", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, args := dir, tt.args
			if args == nil {
				d, args = t.TempDir(), []string{"list", "users"}
			}
			if _, err := execute(t, d, args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestExport(t *testing.T) {
	dir := initProject(t)

	out, err := execute(t, dir, "export", "users", "--stdout", "--limit", "3")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if lines := strings.Split(out, "\n"); len(lines) != 4 {
		t.Errorf("got %d lines, want header plus 3 rows:\n%s", len(lines), out)
	}

	exportDir := filepath.Join(dir, "exports")
	if _, err := execute(t, dir, "export", "notices", "--all", "--limit", "2", "--dir", exportDir); err != nil {
		t.Fatalf("export --all: %v", err)
	}
	path := filepath.Join(exportDir, "notices-"+time.Now().Format("2006-01-02")+".csv")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if lines := strings.Split(string(data), "\n"); len(lines) != 6 {
		t.Errorf("got %d lines, want header plus 5 notices:\n%s", len(lines), data)
	}
}

func TestDelete(t *testing.T) {
	dir := initProject(t)

	old := promptInput
	t.Cleanup(func() { promptInput = old })

	promptInput = strings.NewReader("n\n")
	out, err := execute(t, dir, "delete", "users", "us-0001")
	if err != nil {
		t.Fatalf("declined delete: %v", err)
	}
	if !strings.Contains(out, "Applications (3)") || !strings.Contains(out, "Reviews (1)") {
		t.Errorf("cascade preview missing:\n%s", out)
	}
	if got := listPage(t, dir, "users").Total; got != 12 {
		t.Fatalf("users = %d after a declined delete", got)
	}

	promptInput = strings.NewReader("y\n")
	out, err = execute(t, dir, "delete", "users", "us-0001")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out, "DELETED us-0001") {
		t.Errorf("output = %q", out)
	}
	if got := listPage(t, dir, "users").Total; got != 11 {
		t.Errorf("users = %d, want 11", got)
	}
	if got := listPage(t, dir, "applications").Total; got != 22 {
		t.Errorf("applications = %d, want 22", got)
	}

	if _, err := execute(t, dir, "delete", "users", "us-0001", "--yes"); err == nil {
		t.Error("deleting a missing record succeeded")
	}
}

func TestStatus(t *testing.T) {
	dir := initProject(t)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		want    models.Status
	}{
		{"approve pending company", []string{"companies", "co-0003", "approved"}, false, models.StatusApproved},
		{"approved cannot go back to pending", []string{"companies", "co-0002", "approving"}, true, models.StatusApproved},
		{"unknown status", []string{"companies", "co-0001", "archived"}, true, models.StatusApproved},
		{"same status", []string{"companies", "co-0001", "approved"}, false, models.StatusApproved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, dir, append([]string{"status"}, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			out, err := execute(t, dir, "status", tt.args[0], tt.args[1])
			if err != nil {
				t.Fatalf("show status: %v", err)
			}
			if !strings.HasPrefix(out, tt.args[1]+" "+tt.want.Label()) {
				t.Errorf("status = %q, want %s", out, tt.want.Label())
			}
		})
	}

	if _, err := execute(t, dir, "status", "users", "us-0001", "approved"); err == nil {
		t.Error("users accepted a status")
	}
}

func TestConfig(t *testing.T) {
	dir := initProject(t)

	if _, err := execute(t, dir, "config", "set", "page_size", "3"); err != nil {
		t.Fatalf("set: %v", err)
	}
	out, err := execute(t, dir, "config", "get", "page_size")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.TrimSpace(out) != "3" {
		t.Errorf("page_size = %q, want 3", out)
	}
	if got := len(listPage(t, dir, "users").Rows); got != 3 {
		t.Errorf("rows = %d, want the configured page size 3", got)
	}

	if _, err := execute(t, dir, "config", "set", "modal_scope", "everywhere"); err == nil {
		t.Error("invalid modal_scope accepted")
	}
	if _, err := execute(t, dir, "config", "get", "colour"); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestResolveRemote(t *testing.T) {
	t.Chdir(t.TempDir())
	initBaseDir()

	tests := []struct {
		name    string
		flag    string
		cfgURL  string
		want    string
		wantErr bool
	}{
		{"local", "", "", "", false},
		{"flag", "http://10.0.0.2:8080", "", "http://10.0.0.2:8080", false},
		{"config", "", "http://admin.local", "http://admin.local", false},
		{"flag wins", "http://a", "http://b", "http://a", false},
		{"auto without a server", "auto", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveRemote(tt.flag, &models.Config{RemoteURL: tt.cfgURL})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveRemote = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyConsoleFlags(t *testing.T) {
	newCmd := func() *cobra.Command {
		c := &cobra.Command{}
		c.Flags().String("policy", "", "")
		c.Flags().String("modal-scope", "", "")
		return c
	}

	c := newCmd()
	_ = c.Flags().Set("policy", "optimistic")
	_ = c.Flags().Set("modal-scope", "local")
	cfg := models.DefaultConfig()
	if err := applyConsoleFlags(c, &cfg); err != nil {
		t.Fatalf("applyConsoleFlags: %v", err)
	}
	if cfg.UpdatePolicy != models.UpdateOptimistic || cfg.ModalScope != models.ModalLocal {
		t.Errorf("cfg = %+v", cfg)
	}

	c = newCmd()
	_ = c.Flags().Set("policy", "eventually")
	cfg = models.DefaultConfig()
	if err := applyConsoleFlags(c, &cfg); err == nil {
		t.Error("invalid policy accepted")
	}
}

func TestDeleteQuestion(t *testing.T) {
	tests := []struct {
		r    models.Resource
		ids  []string
		want string
	}{
		{models.ResourceCompanies, []string{"co-0001"}, "delete company co-0001?"},
		{models.ResourceJobPosts, []string{"jp-0001"}, "delete job post jp-0001?"},
		{models.ResourceUsers, []string{"us-0001", "us-0002"}, "delete 2 users?"},
	}
	for _, tt := range tests {
		if got := deleteQuestion(tt.r, tt.ids); got != tt.want {
			t.Errorf("deleteQuestion(%s, %v) = %q, want %q", tt.r, tt.ids, got, tt.want)
		}
	}
}
