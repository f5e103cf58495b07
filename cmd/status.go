package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/output"
	"github.com/marcus/jobdesk/internal/workflow"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <resource> <id> [status]",
	Short: "Show or change the status of a company, job post or application",
	Long: `Without a status, print the record's current status and the statuses it
can move to. With one, move the record there.

Transitions are checked against the workflow (see workflow_mode in
'jobdesk config'). --force skips the guards but not the transition table.

Examples:
  jobdesk status companies co-0003 approved
  jobdesk status applications ap-0012 denied
  jobdesk status job-posts jp-0007 open --force`,
	GroupID:           "data",
	Args:              cobra.RangeArgs(2, 3),
	ValidArgsFunction: statusCompletion,
	RunE:              runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	addRemoteFlag(statusCmd)
	statusCmd.Flags().Bool("force", false, "Bypass workflow guards")
}

func runStatus(cmd *cobra.Command, args []string) error {
	r, err := parseResource(args[0])
	if err != nil {
		return err
	}
	if !r.HasStatus() {
		return fmt.Errorf("%s have no status", strings.ToLower(r.Title()))
	}
	id := args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := openSource(cmd, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer src.Close()

	rec, err := src.Get(cmd.Context(), r, id)
	if err != nil {
		return userError(err)
	}
	from := rec.Status()

	if len(args) == 2 {
		fmt.Fprintf(output.Stdout, "%s %s\n", id, from.Label())
		for _, to := range workflow.GetTransitionsFrom(r, from) {
			fmt.Fprintf(output.Stdout, "  → %-10s %s\n", to, workflow.TransitionName(from, to))
		}
		return nil
	}

	to := models.Status(strings.ToLower(args[2]))
	if !models.IsValidStatus(r, to) {
		valid := make([]string, 0, 3)
		for _, s := range models.StatusesFor(r) {
			valid = append(valid, string(s))
		}
		return fmt.Errorf("invalid status %q for %s (one of %s)", args[2], r, strings.Join(valid, ", "))
	}

	force, _ := cmd.Flags().GetBool("force")
	warnings, err := src.SetStatus(cmd.Context(), r, id, to, force)
	for _, w := range warnings {
		output.Warning("%s: %s", w.Guard, w.Message)
	}
	if err != nil {
		return userError(err)
	}
	if from == to {
		output.Success("%s is already %s", id, to.Label())
		return nil
	}
	output.Success("%s %s → %s", id, from.Label(), to.Label())
	return nil
}

// statusCompletion completes the resource, then the statuses it knows.
func statusCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return resourceCompletion(cmd, args, toComplete)
	case 2:
		r, err := models.ParseResource(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var out []string
		for _, s := range models.StatusesFor(r) {
			out = append(out, string(s))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
