package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/marcus/jobdesk/internal/grid"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/output"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <resource>",
	Short: "Export one page of a resource as CSV",
	Long: `Export the rows of one page as CSV, in the same column order the console
shows. With --all every page matching the query is exported.

The file is written to export_dir (see 'jobdesk config') and named
<resource>-<date>.csv. Use --stdout to print it instead.`,
	GroupID:           "data",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: resourceCompletion,
	RunE:              runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	addQueryFlags(exportCmd)
	addRemoteFlag(exportCmd)
	exportCmd.Flags().Bool("all", false, "Export every page")
	exportCmd.Flags().Bool("stdout", false, "Write the CSV to stdout")
	exportCmd.Flags().StringP("dir", "o", "", "Directory to write to (default: export_dir from config)")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	var records []models.Record
	if all, _ := cmd.Flags().GetBool("all"); all {
		for q.Page = 1; ; q.Page++ {
			page, err := src.List(cmd.Context(), r, q)
			if err != nil {
				return userError(err)
			}
			records = append(records, page.Rows...)
			if len(page.Rows) == 0 || len(records) >= page.Total {
				break
			}
		}
	} else {
		page, _, err := fetchPage(cmd, src, r, q)
		if err != nil {
			return userError(err)
		}
		records = page.Rows
	}

	data := grid.EncodeCSV(host.Columns(r), host.Rows(records))
	if toStdout, _ := cmd.Flags().GetBool("stdout"); toStdout {
		_, err := fmt.Fprint(output.Stdout, data)
		return err
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.ExportDir
	}
	name := grid.ExportFilename(r.Title(), time.Now())
	path, err := grid.DirDownloader{Dir: dir}.Save(name, grid.CSVMimeType, []byte(data))
	if err != nil {
		return &grid.ExportError{Filename: name, Err: err}
	}
	output.Success("saved %d rows to %s", len(records), path)
	return nil
}
