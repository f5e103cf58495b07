package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/marcus/jobdesk/internal/models"
)

// DirName is the per-project state directory.
const DirName = ".jobdesk"

const configFile = DirName + "/config.json"

// Path returns the config file location under baseDir.
func Path(baseDir string) string {
	return filepath.Join(baseDir, configFile)
}

// Load reads the config from disk. A missing file yields the defaults; set
// fields in the file override them.
func Load(baseDir string) (*models.Config, error) {
	data, err := os.ReadFile(Path(baseDir))
	if err != nil {
		if os.IsNotExist(err) {
			cfg := models.DefaultConfig()
			return &cfg, nil
		}
		return nil, err
	}

	var cfg models.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configFile, err)
	}
	cfg = cfg.WithDefaults()
	return &cfg, nil
}

// Save writes the config to disk
func Save(baseDir string, cfg *models.Config) error {
	configPath := Path(baseDir)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

type field struct {
	get func(*models.Config) string
	set func(*models.Config, string) error
}

var fields = map[string]field{
	"page_size": {
		get: func(c *models.Config) string { return strconv.Itoa(c.PageSize) },
		set: func(c *models.Config, v string) error {
			n, err := positiveInt(v)
			if err != nil {
				return err
			}
			c.PageSize = n
			return nil
		},
	},
	"page_sizes": {
		get: func(c *models.Config) string {
			parts := make([]string, len(c.PageSizes))
			for i, n := range c.PageSizes {
				parts[i] = strconv.Itoa(n)
			}
			return strings.Join(parts, ",")
		},
		set: func(c *models.Config, v string) error {
			var sizes []int
			for _, part := range strings.Split(v, ",") {
				n, err := positiveInt(part)
				if err != nil {
					return err
				}
				sizes = append(sizes, n)
			}
			c.PageSizes = sizes
			return nil
		},
	},
	"max_page_buttons": {
		get: func(c *models.Config) string { return strconv.Itoa(c.MaxPageButtons) },
		set: func(c *models.Config, v string) error {
			n, err := positiveInt(v)
			if err != nil {
				return err
			}
			c.MaxPageButtons = n
			return nil
		},
	},
	"export_dir": {
		get: func(c *models.Config) string { return c.ExportDir },
		set: func(c *models.Config, v string) error { c.ExportDir = v; return nil },
	},
	"remote_url": {
		get: func(c *models.Config) string { return c.RemoteURL },
		set: func(c *models.Config, v string) error { c.RemoteURL = v; return nil },
	},
	"update_policy": {
		get: func(c *models.Config) string { return c.UpdatePolicy },
		set: func(c *models.Config, v string) error {
			return oneOf(&c.UpdatePolicy, v, models.UpdateRefetch, models.UpdateOptimistic)
		},
	},
	"modal_scope": {
		get: func(c *models.Config) string { return c.ModalScope },
		set: func(c *models.Config, v string) error {
			return oneOf(&c.ModalScope, v, models.ModalGlobal, models.ModalLocal)
		},
	},
	"workflow_mode": {
		get: func(c *models.Config) string { return c.WorkflowMode },
		set: func(c *models.Config, v string) error {
			return oneOf(&c.WorkflowMode, v, "strict", "advisory", "liberal")
		},
	},
}

// Keys returns the settable config keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key as text.
func Get(cfg *models.Config, key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return f.get(cfg), nil
}

// Set parses value into key.
func Set(cfg *models.Config, key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := f.set(cfg, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// SetLastResource records the resource the console showed last
func SetLastResource(baseDir string, r models.Resource) error {
	cfg, err := Load(baseDir)
	if err != nil {
		return err
	}
	cfg.LastResource = string(r)
	return Save(baseDir, cfg)
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive: %d", n)
	}
	return n, nil
}

func oneOf(dst *string, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			*dst = v
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
}
