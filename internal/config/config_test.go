package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/marcus/jobdesk/internal/models"
)

func TestLoad(t *testing.T) {
	t.Run("existing file", func(t *testing.T) {
		dir := t.TempDir()
		configDir := filepath.Join(dir, DirName)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatalf("setup: mkdir failed: %v", err)
		}
		data := `{"page_size": 50, "remote_url": "http://localhost:8080", "update_policy": "optimistic"}`
		if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(data), 0644); err != nil {
			t.Fatalf("setup: write failed: %v", err)
		}

		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.PageSize != 50 {
			t.Errorf("PageSize: got %d, want 50", cfg.PageSize)
		}
		if cfg.RemoteURL != "http://localhost:8080" {
			t.Errorf("RemoteURL: got %q", cfg.RemoteURL)
		}
		if cfg.UpdatePolicy != models.UpdateOptimistic {
			t.Errorf("UpdatePolicy: got %q", cfg.UpdatePolicy)
		}
		// Unset fields fall back to defaults
		if cfg.MaxPageButtons != 5 {
			t.Errorf("MaxPageButtons: got %d, want 5", cfg.MaxPageButtons)
		}
		if !reflect.DeepEqual(cfg.PageSizes, []int{10, 20, 50, 100}) {
			t.Errorf("PageSizes: got %v", cfg.PageSizes)
		}
	})

	t.Run("non-existent file returns defaults", func(t *testing.T) {
		cfg, err := Load(t.TempDir())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !reflect.DeepEqual(*cfg, models.DefaultConfig()) {
			t.Errorf("got %+v, want defaults", *cfg)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		os.MkdirAll(filepath.Join(dir, DirName), 0755)
		os.WriteFile(Path(dir), []byte("{not json"), 0644)
		if _, err := Load(dir); err == nil {
			t.Error("expected error for malformed config")
		}
	})
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := models.DefaultConfig()
	cfg.ExportDir = "exports"
	cfg.ModalScope = models.ModalLocal

	if err := Save(dir, &cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.ExportDir != "exports" || got.ModalScope != models.ModalLocal {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestSetLastResource(t *testing.T) {
	dir := t.TempDir()
	if err := SetLastResource(dir, models.ResourceJobPosts); err != nil {
		t.Fatalf("SetLastResource: %v", err)
	}
	cfg, _ := Load(dir)
	if cfg.LastResource != "job-posts" {
		t.Errorf("LastResource = %q", cfg.LastResource)
	}
}

func TestGetSet(t *testing.T) {
	tests := []struct {
		key, value string
		want       string
		wantErr    bool
	}{
		{"page_size", "20", "20", false},
		{"page_size", "0", "10", true},
		{"page_size", "ten", "10", true},
		{"page_sizes", "5, 15,25", "5,15,25", false},
		{"page_sizes", "5,x", "10,20,50,100", true},
		{"max_page_buttons", "7", "7", false},
		{"update_policy", "optimistic", "optimistic", false},
		{"update_policy", "eventually", "refetch", true},
		{"modal_scope", "local", "local", false},
		{"workflow_mode", "advisory", "advisory", false},
		{"export_dir", " /tmp/out ", "/tmp/out", false},
		{"colour", "red", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := models.DefaultConfig()
			err := Set(&cfg, tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set err = %v, wantErr %v", err, tt.wantErr)
			}
			got, _ := Get(&cfg, tt.key)
			if got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	if len(keys) != 8 {
		t.Errorf("Keys() = %v", keys)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("Keys() not sorted: %v", keys)
		}
	}
}
