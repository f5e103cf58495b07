package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/marcus/jobdesk/internal/config"
	"github.com/marcus/jobdesk/internal/db"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/output"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the jobdesk database in the current directory",
	Long: `Create .jobdesk/ with the sqlite database and a default config.json.

Demo records are seeded into an empty database unless --no-seed is given.
Running init again is safe: the schema is migrated and existing data is kept.`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		database, err := db.Initialize(baseDir)
		if err != nil {
			return err
		}
		defer database.Close()

		if _, err := os.Stat(config.Path(baseDir)); os.IsNotExist(err) {
			cfg := models.DefaultConfig()
			if err := config.Save(baseDir, &cfg); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
		}

		noSeed, _ := cmd.Flags().GetBool("no-seed")
		if !noSeed {
			if err := database.Seed(cmd.Context(), time.Now()); err != nil {
				output.Warning("not seeding: %v", err)
			}
		}

		stats, err := database.Stats(cmd.Context())
		if err != nil {
			return err
		}
		output.Success("initialized %s", db.Path(baseDir))
		for _, r := range models.AllResources() {
			fmt.Fprintf(output.Stdout, "  %-14s %d\n", r.Title(), stats.Counts[r])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("no-seed", false, "Do not insert demo records")
}
