package console

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/marcus/jobdesk/internal/models"
)

// copyToClipboard copies text to the system clipboard. It needs pbcopy on
// macOS and xclip, xsel or wl-copy on Linux.
var copyToClipboard = clipboard.WriteAll

// formatRecordMarkdown formats a record as markdown: a heading from its
// label, a metadata list of the visible fields, then each long-form field as
// its own section.
func formatRecordMarkdown(r models.Resource, rec *models.Record) string {
	var sb strings.Builder

	title := rec.String("name")
	if title == "" {
		title = rec.String("title")
	}
	if title == "" {
		title = rec.ID
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("**%s** `%s`\n\n", singular(r), rec.ID))

	var long []models.Field
	for _, f := range models.Fields(r) {
		if f.Kind == models.FieldMarkdown {
			long = append(long, f)
			continue
		}
		v := rec.String(f.Key)
		if v == "" || strings.HasSuffix(f.Key, "_id") {
			continue
		}
		if f.Kind == models.FieldStatus {
			v = models.Status(v).Label()
		}
		sb.WriteString(fmt.Sprintf("- **%s:** %s\n", f.Label, v))
	}

	for _, f := range long {
		v := strings.TrimSpace(rec.String(f.Key))
		if v == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n## %s\n\n", f.Label))
		sb.WriteString(v)
		sb.WriteString("\n")
	}
	return sb.String()
}

func singular(r models.Resource) string {
	switch r {
	case models.ResourceUsers:
		return "User"
	case models.ResourceCompanies:
		return "Company"
	case models.ResourceJobPosts:
		return "Job post"
	case models.ResourceApplications:
		return "Application"
	case models.ResourceReviews:
		return "Review"
	case models.ResourceNotices:
		return "Notice"
	default:
		return string(r)
	}
}
