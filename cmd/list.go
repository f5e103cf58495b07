package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/marcus/jobdesk/internal/grid"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/output"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "Print one page of a resource",
	Long: `Print one page of records with the pagination window below it.

Resources: users, companies, job-posts, applications, reviews, notices.

Examples:
  jobdesk list companies --filter status=approving
  jobdesk list users --search kim --sort name --desc
  jobdesk list job-posts --page 2 --limit 20`,
	GroupID:           "data",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: resourceCompletion,
	RunE:              runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	addQueryFlags(listCmd)
	addRemoteFlag(listCmd)
	listCmd.Flags().Bool("json", false, "Output the page as JSON")
}

// addQueryFlags registers the browsing flags shared by list and export.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("search", "s", "", "Free-text search")
	cmd.Flags().String("sort", "", "Sort by column key")
	cmd.Flags().Bool("desc", false, "Sort descending")
	cmd.Flags().StringArrayP("filter", "f", nil, "Column filter as key=value (repeatable)")
	cmd.Flags().IntP("page", "p", 1, "Page number (1-based)")
	cmd.Flags().IntP("limit", "n", 0, "Rows per page (default: page_size from config)")
}

// queryFromFlags builds a list query from the browsing flags.
func queryFromFlags(cmd *cobra.Command, cfg *models.Config) (models.ListQuery, error) {
	search, _ := cmd.Flags().GetString("search")
	sortKey, _ := cmd.Flags().GetString("sort")
	desc, _ := cmd.Flags().GetBool("desc")
	filters, _ := cmd.Flags().GetStringArray("filter")
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")

	if limit <= 0 {
		limit = cfg.PageSize
	}
	if page < 1 {
		page = 1
	}
	q := models.ListQuery{
		Search:  strings.TrimSpace(search),
		SortKey: sortKey,
		Desc:    desc,
		Page:    page,
		Limit:   limit,
	}
	if len(filters) > 0 {
		q.Filters = make(map[string]string, len(filters))
		for _, f := range filters {
			key, value, ok := strings.Cut(f, "=")
			if !ok || key == "" {
				return q, fmt.Errorf("invalid filter %q: want key=value", f)
			}
			q.Filters[key] = value
		}
	}
	return q, nil
}

// fetchPage lists q and clamps a page past the end back to the last page,
// as the console grid does.
func fetchPage(cmd *cobra.Command, src host.Source, r models.Resource, q models.ListQuery) (models.Page, grid.Pagination, error) {
	page, err := src.List(cmd.Context(), r, q)
	if err != nil {
		return page, grid.Pagination{}, err
	}
	p := grid.Pagination{CurrentPage: q.Page, RowsPerPage: q.Limit, TotalItems: page.Total}
	if clamped := p.Clamp(); clamped.CurrentPage != p.CurrentPage && page.Total > 0 {
		q.Page = clamped.CurrentPage
		page, err = src.List(cmd.Context(), r, q)
		if err != nil {
			return page, grid.Pagination{}, err
		}
		p = clamped
	}
	return page, p, nil
}

func runList(cmd *cobra.Command, args []string) error {
	r, err := parseResource(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	q, err := queryFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	src, err := openSource(cmd, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer src.Close()

	page, p, err := fetchPage(cmd, src, r, q)
	if err != nil {
		return userError(err)
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return output.JSON(map[string]any{
			"resource": r,
			"page":     p.CurrentPage,
			"pages":    p.PageCount(),
			"total":    page.Total,
			"rows":     page.Rows,
		})
	}

	if len(page.Rows) == 0 {
		if q.Search != "" || len(q.Filters) > 0 {
			fmt.Fprintln(output.Stdout, "No records match")
		} else {
			fmt.Fprintln(output.Stdout, "No records")
		}
		return nil
	}
	fmt.Fprint(output.Stdout, output.RenderTable(host.Columns(r), host.Rows(page.Rows), terminalWidth()))
	fmt.Fprintln(output.Stdout, output.RenderPager(p, cfg.MaxPageButtons))
	return nil
}

// terminalWidth is the width of stdout, or 0 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
