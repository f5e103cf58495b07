package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/output"
	"github.com/spf13/cobra"
)

var (
	version string
	baseDir string
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "jobdesk",
	Short: "Admin console for a job board",
	Long: `jobdesk - browse and moderate the records of a job board: users, companies,
job posts, applications, reviews and notices.

Records live in a local sqlite database (.jobdesk/jobdesk.db). Run 'jobdesk init'
once, then 'jobdesk console' for the interactive console or the list, export,
delete and status commands for scripting. 'jobdesk serve' exposes the same
records over HTTP for a console on another machine.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command
func Execute() {
	// "jobdesk companies" is shorthand for "jobdesk list companies"
	args := os.Args[1:]
	if arg := firstNonFlagArg(args); arg != "" {
		if _, err := models.ParseResource(arg); err == nil {
			rootCmd.SetArgs(append([]string{"list"}, args...))
		}
	}

	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initBaseDir)

	rootCmd.AddGroup(
		&cobra.Group{ID: "data", Title: "Records:"},
		&cobra.Group{ID: "system", Title: "Setup and server:"},
	)

	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug messages")
}

func initBaseDir() {
	var err error
	baseDir, err = os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine working directory: %v\n", err)
		os.Exit(1)
	}
}

// getBaseDir returns the base directory for the project
func getBaseDir() string {
	return baseDir
}

// setupLogging installs the default slog handler on stderr. The console
// replaces it with a file handler since it owns the terminal.
func setupLogging(cmd *cobra.Command, args []string) error {
	logJSON, _ := cmd.Flags().GetBool("log-json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	slog.SetDefault(slog.New(newLogHandler(os.Stderr, logJSON, verbose)))
	return nil
}

func newLogHandler(w *os.File, logJSON, verbose bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if logJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// firstNonFlagArg returns the first argument that is not a flag, or "".
func firstNonFlagArg(args []string) string {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}
