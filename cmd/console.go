package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/jobdesk/internal/config"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/pkg/console"
	"github.com/spf13/cobra"
)

const consoleLogFile = "console.log"

var consoleCmd = &cobra.Command{
	Use:   "console [resource]",
	Short: "Open the interactive admin console",
	Long: `Open the admin console: one tab per resource with search, sort, column
filters, selection, paging, CSV export, status changes and deletes.

The console reads the local database unless --remote (or remote_url) points
it at a running 'jobdesk serve'. With --offline every record is copied into
memory first and changes are not written back.

Logs go to .jobdesk/console.log.`,
	GroupID:           "data",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: resourceCompletion,
	RunE:              runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	addRemoteFlag(consoleCmd)
	consoleCmd.Flags().Bool("offline", false, "Browse an in-memory snapshot; changes are discarded on exit")
	consoleCmd.Flags().String("policy", "", "Update policy after a change: refetch or optimistic")
	consoleCmd.Flags().String("modal-scope", "", "Dialog scope: global or local")
	consoleCmd.Flags().Bool("no-mouse", false, "Disable mouse support")
}

// applyConsoleFlags overrides config settings given on the command line.
func applyConsoleFlags(cmd *cobra.Command, cfg *models.Config) error {
	for flag, key := range map[string]string{
		"policy":      "update_policy",
		"modal-scope": "modal_scope",
	} {
		v, _ := cmd.Flags().GetString(flag)
		if v == "" {
			continue
		}
		if err := config.Set(cfg, key, v); err != nil {
			return fmt.Errorf("--%s: %w", flag, err)
		}
	}
	return nil
}

// openConsoleLog opens the console's log file. The terminal belongs to the
// console while it runs.
func openConsoleLog(baseDir string) (*os.File, error) {
	dir := filepath.Join(baseDir, config.DirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, consoleLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

func runConsole(cmd *cobra.Command, args []string) error {
	baseDir := getBaseDir()

	var start models.Resource
	if len(args) == 1 {
		r, err := parseResource(args[0])
		if err != nil {
			return err
		}
		start = r
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyConsoleFlags(cmd, cfg); err != nil {
		return err
	}

	logFile, err := openConsoleLog(baseDir)
	if err != nil {
		return fmt.Errorf("open console log: %w", err)
	}
	defer logFile.Close()
	logJSON, _ := cmd.Flags().GetBool("log-json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := slog.New(newLogHandler(logFile, logJSON, verbose))
	slog.SetDefault(logger)

	src, err := openSource(cmd, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	var records host.Source = src
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		machine, err := machineFor(cfg)
		if err != nil {
			return err
		}
		snap, err := host.Snapshot(cmd.Context(), src, machine)
		if err != nil {
			return userError(err)
		}
		records = snap
		logger.Info("browsing offline snapshot")
	}

	model := console.NewModel(console.Options{
		Source:   records,
		Config:   *cfg,
		BaseDir:  baseDir,
		Logger:   logger,
		Resource: start,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if noMouse, _ := cmd.Flags().GetBool("no-mouse"); !noMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		logger.Error("console", "err", err)
		return err
	}
	return nil
}
