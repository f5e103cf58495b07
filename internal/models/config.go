package models

// Update policies applied by console screens after a successful mutation.
const (
	UpdateRefetch    = "refetch"
	UpdateOptimistic = "optimistic"
)

// Modal scopes: one process-wide dialog controller, or one per screen.
const (
	ModalGlobal = "global"
	ModalLocal  = "local"
)

// Config is the per-project settings file.
type Config struct {
	PageSize       int    `json:"page_size,omitempty"`
	PageSizes      []int  `json:"page_sizes,omitempty"`
	MaxPageButtons int    `json:"max_page_buttons,omitempty"`
	ExportDir      string `json:"export_dir,omitempty"`
	RemoteURL      string `json:"remote_url,omitempty"`
	UpdatePolicy   string `json:"update_policy,omitempty"`
	ModalScope     string `json:"modal_scope,omitempty"`
	WorkflowMode   string `json:"workflow_mode,omitempty"`

	// Console state restored on the next launch
	LastResource string `json:"last_resource,omitempty"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		PageSize:       10,
		PageSizes:      []int{10, 20, 50, 100},
		MaxPageButtons: 5,
		ExportDir:      ".",
		UpdatePolicy:   UpdateRefetch,
		ModalScope:     ModalGlobal,
		WorkflowMode:   "strict",
	}
}

// WithDefaults fills every unset field from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if len(c.PageSizes) == 0 {
		c.PageSizes = d.PageSizes
	}
	if c.MaxPageButtons <= 0 {
		c.MaxPageButtons = d.MaxPageButtons
	}
	if c.ExportDir == "" {
		c.ExportDir = d.ExportDir
	}
	if c.UpdatePolicy == "" {
		c.UpdatePolicy = d.UpdatePolicy
	}
	if c.ModalScope == "" {
		c.ModalScope = d.ModalScope
	}
	if c.WorkflowMode == "" {
		c.WorkflowMode = d.WorkflowMode
	}
	return c
}
