package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/marcus/jobdesk/internal/confirm"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/output"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <resource> <id...>",
	Short: "Delete records and everything that depends on them",
	Long: `Delete one or more records. Dependent records go with them: a user's
applications and reviews, a company's job posts, a job post's applications.

The records about to be removed are printed first and you are asked to
confirm. Pass --yes to skip the question; without a terminal the answer is no.`,
	GroupID:           "data",
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: resourceCompletion,
	RunE:              runDelete,
}

// promptInput is where delete reads its yes/no answer.
var promptInput io.Reader = os.Stdin

func init() {
	rootCmd.AddCommand(deleteCmd)

	addRemoteFlag(deleteCmd)
	deleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking")
}

func runDelete(cmd *cobra.Command, args []string) error {
	r, err := parseResource(args[0])
	if err != nil {
		return err
	}
	ids := args[1:]
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	src, err := openSource(cmd, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer src.Close()

	var found []string
	for _, id := range ids {
		rec, err := src.Get(cmd.Context(), r, id)
		if err != nil {
			output.Error("%s: %s", id, host.UserMessage(err))
			continue
		}
		fmt.Fprintln(output.Stdout, previewDelete(cmd, src, r, rec))
		found = append(found, id)
	}
	if len(found) == 0 {
		return errors.New("nothing to delete")
	}

	prompter := confirm.NewPrompter(promptInput, output.Stderr, slog.Default())
	prompter.AssumeYes, _ = cmd.Flags().GetBool("yes")

	var failed int
	err = prompter.Confirm(confirm.Request{
		Title:       "Delete",
		Message:     deleteQuestion(r, found),
		ConfirmText: "Delete",
		Destructive: true,
		Action: confirm.Sync(func() error {
			for _, id := range found {
				if err := src.Delete(cmd.Context(), r, id); err != nil {
					slog.Error("delete", "resource", r, "id", id, "err", err)
					output.Error("failed to delete %s: %s", id, host.UserMessage(err))
					failed++
					continue
				}
				fmt.Fprintf(output.Stdout, "DELETED %s\n", id)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d deletes failed", failed, len(found))
			}
			return nil
		}),
	})
	if errors.Is(err, confirm.ErrCancelled) {
		output.Warning("nothing deleted")
		return nil
	}
	return err
}

// previewDelete renders rec with the records its delete cascades to. Only the
// local store can list dependents.
func previewDelete(cmd *cobra.Command, src *source, r models.Resource, rec *models.Record) string {
	opts := output.TreeRenderOptions{MaxChildren: 10, ShowStatus: true}
	if src.database == nil {
		return output.RenderCascade(output.CascadeTree(r, *rec, nil), opts)
	}
	deps, err := src.database.Dependents(cmd.Context(), r, rec.ID)
	if err != nil {
		output.Warning("cannot list records depending on %s: %v", rec.ID, err)
	}
	return output.RenderCascade(output.CascadeTree(r, *rec, deps), opts)
}

func deleteQuestion(r models.Resource, ids []string) string {
	if len(ids) == 1 {
		return fmt.Sprintf("delete %s %s?", strings.ToLower(singular(r)), ids[0])
	}
	return fmt.Sprintf("delete %d %s?", len(ids), strings.ToLower(r.Title()))
}

func singular(r models.Resource) string {
	switch r {
	case models.ResourceCompanies:
		return "Company"
	default:
		return strings.TrimSuffix(r.Title(), "s")
	}
}
