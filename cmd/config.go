package cmd

import (
	"fmt"

	"github.com/marcus/jobdesk/internal/config"
	"github.com/marcus/jobdesk/internal/output"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Show or change project settings",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(cfg)
		}
		for _, key := range config.Keys() {
			v, _ := config.Get(cfg, key)
			fmt.Fprintf(output.Stdout, "%-18s %s\n", key, v)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Print one setting",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: configKeyCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		v, err := config.Get(cfg, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(output.Stdout, v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting in .jobdesk/config.json.

Keys:
  page_size         rows per page (default 10)
  page_sizes        page sizes offered, comma separated (default 10,20,50,100)
  max_page_buttons  numbered page buttons shown (default 5)
  export_dir        where CSV exports are written (default .)
  remote_url        server the record commands use; 'auto' reads the port file
  update_policy     refetch | optimistic
  modal_scope       global | local
  workflow_mode     strict | advisory | liberal`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: configKeyCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := config.Set(cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(baseDir, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		v, _ := config.Get(cfg, args[0])
		output.Success("%s = %s", args[0], v)
		return nil
	},
}

func configKeyCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return config.Keys(), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configCmd.Flags().Bool("json", false, "Output as JSON")
}
