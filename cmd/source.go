package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/marcus/jobdesk/internal/config"
	"github.com/marcus/jobdesk/internal/db"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/serve"
	"github.com/marcus/jobdesk/internal/workflow"
	"github.com/spf13/cobra"
)

// remoteAuto asks for the address of the server registered in the port file.
const remoteAuto = "auto"

// source is an opened host.Source plus what is needed to release it.
type source struct {
	host.Source

	// database is set when records come from the local store.
	database *db.DB
	remote   string
}

func (s *source) Close() error {
	if s.database != nil {
		return s.database.Close()
	}
	return nil
}

func addRemoteFlag(cmd *cobra.Command) {
	cmd.Flags().String("remote", "", "Use a running 'jobdesk serve' at this URL instead of the local database ('auto' reads the port file)")
}

// loadConfig reads the project config.
func loadConfig() (*models.Config, error) {
	cfg, err := config.Load(getBaseDir())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// machineFor builds the workflow machine for the configured mode.
func machineFor(cfg *models.Config) (*workflow.Machine, error) {
	mode, err := workflow.ParseMode(cfg.WorkflowMode)
	if err != nil {
		return nil, err
	}
	return workflow.NewMachine(mode), nil
}

// resolveRemote turns the --remote flag and the remote_url setting into a
// server address. An empty result means the local database.
func resolveRemote(flag string, cfg *models.Config) (string, error) {
	remote := flag
	if remote == "" {
		remote = cfg.RemoteURL
	}
	if remote != remoteAuto {
		return remote, nil
	}
	url, err := serve.DiscoverURL(getBaseDir())
	if err != nil {
		return "", err
	}
	return url, nil
}

// openSource opens the Source a command reads and mutates records through.
func openSource(cmd *cobra.Command, cfg *models.Config, logger *slog.Logger) (*source, error) {
	flag, _ := cmd.Flags().GetString("remote")
	remote, err := resolveRemote(flag, cfg)
	if err != nil {
		return nil, err
	}
	if remote != "" {
		r, err := host.NewRemote(remote, nil)
		if err != nil {
			return nil, err
		}
		logger.Debug("using remote source", "url", r.URL())
		return &source{Source: r, remote: r.URL()}, nil
	}

	machine, err := machineFor(cfg)
	if err != nil {
		return nil, err
	}
	database, err := db.Open(getBaseDir())
	if err != nil {
		return nil, err
	}
	return &source{Source: host.NewLocal(database, machine, logger), database: database}, nil
}

// parseResource resolves a resource argument, listing the valid names on
// failure.
func parseResource(arg string) (models.Resource, error) {
	r, err := models.ParseResource(arg)
	if err != nil {
		names := make([]string, 0, len(models.AllResources()))
		for _, r := range models.AllResources() {
			names = append(names, string(r))
		}
		return "", fmt.Errorf("%w (one of %v)", err, names)
	}
	return r, nil
}

// resourceCompletion completes resource names for the first argument.
func resourceCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, 0, len(models.AllResources()))
	for _, r := range models.AllResources() {
		names = append(names, string(r))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// userError replaces a source error with its user-facing message. The full
// error is kept in the debug log.
func userError(err error) error {
	slog.Debug("source error", "err", err)
	return errors.New(host.UserMessage(err))
}
