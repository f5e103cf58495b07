package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcus/jobdesk/internal/db"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/serve"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the jobdesk HTTP API server",
	Long: `Start an HTTP API server that exposes the admin records over REST.

The server provides JSON endpoints to list, read, update and delete records
and to change statuses. 'jobdesk console --remote auto' and the other record
commands with --remote use it.

If --port is 0 (the default), a random available port is assigned.
The actual port is written to .jobdesk/serve-port for discovery.`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (0 = auto-assign)")
	serveCmd.Flags().StringP("addr", "a", "localhost", "Address to bind to")
	serveCmd.Flags().String("cors", "", "Allowed CORS origin (optional, e.g. http://localhost:3000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	dir := getBaseDir()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	machine, err := machineFor(cfg)
	if err != nil {
		return err
	}

	database, err := db.Open(dir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	port, _ := cmd.Flags().GetInt("port")
	addr, _ := cmd.Flags().GetString("addr")
	cors, _ := cmd.Flags().GetString("cors")

	instanceID, err := serve.GenerateInstanceID()
	if err != nil {
		return fmt.Errorf("generate instance id: %w", err)
	}

	logger := slog.Default()
	srv := serve.NewServer(host.NewLocal(database, machine, logger), instanceID, serve.ServeConfig{
		Port:       port,
		Addr:       addr,
		CORSOrigin: cors,
	}, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx) }()

	select {
	case actualPort := <-srv.Listening():
		portInfo := &serve.PortInfo{
			Port:       actualPort,
			Addr:       addr,
			PID:        os.Getpid(),
			StartedAt:  time.Now(),
			InstanceID: instanceID,
			Workflow:   machine.Mode().String(),
		}
		if err := serve.WritePortFile(dir, portInfo); err != nil {
			stop()
			<-errCh
			return fmt.Errorf("write port file: %w", err)
		}
		defer func() { _ = serve.DeletePortFile(dir) }()

		fmt.Fprintf(os.Stderr, "jobdesk serve listening on http://%s:%d\n", addr, actualPort)
		fmt.Fprintf(os.Stderr, "  base dir:   %s\n", dir)
		fmt.Fprintf(os.Stderr, "  database:   %s\n", db.Path(dir))
		fmt.Fprintf(os.Stderr, "  workflow:   %s\n", machine.Mode())
		fmt.Fprintf(os.Stderr, "  instance:   %s\n", instanceID)
	case err := <-errCh:
		return err
	}

	if err := <-errCh; err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	fmt.Fprintf(os.Stderr, "jobdesk serve stopped\n")
	return nil
}
