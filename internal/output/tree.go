package output

import (
	"fmt"
	"strings"

	"github.com/marcus/jobdesk/internal/db"
	"github.com/marcus/jobdesk/internal/models"
)

// TreeNode represents a node in a tree structure for rendering
type TreeNode struct {
	ID       string
	Title    string
	Status   models.Status
	Children []TreeNode
}

// TreeRenderOptions configures tree rendering behavior
type TreeRenderOptions struct {
	MaxDepth    int  // 0 = unlimited
	MaxChildren int  // 0 = unlimited; the rest collapse into "… and N more"
	ShowStatus  bool // Whether to show status indicator
}

// statusMark returns a status indicator symbol
func statusMark(s models.Status) string {
	switch s {
	case models.StatusApproved, models.StatusOpen:
		return " \u2713" // ✓
	case models.StatusApproving:
		return " \u29d7" // ⧗
	case models.StatusDenied:
		return " \u2717" // ✗
	default:
		return ""
	}
}

// RenderTree renders a tree starting from a single root node
// Returns the complete tree as a string (without the root - just children)
func RenderTree(root TreeNode, opts TreeRenderOptions) string {
	lines := renderTreeNodes(root.Children, opts, 0, "")
	return strings.Join(lines, "\n")
}

// RenderTreeLines renders multiple root nodes and returns individual lines
func RenderTreeLines(roots []TreeNode, opts TreeRenderOptions) []string {
	return renderTreeNodes(roots, opts, 0, "")
}

func renderTreeNodes(nodes []TreeNode, opts TreeRenderOptions, depth int, prefix string) []string {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return nil
	}

	hidden := 0
	if opts.MaxChildren > 0 && len(nodes) > opts.MaxChildren {
		hidden = len(nodes) - opts.MaxChildren
		nodes = nodes[:opts.MaxChildren]
	}

	var lines []string
	for i, node := range nodes {
		isLast := i == len(nodes)-1 && hidden == 0

		connector := "\u251c\u2500\u2500 " // ├──
		if isLast {
			connector = "\u2514\u2500\u2500 " // └──
		}

		lines = append(lines, prefix+connector+nodeLine(node, opts))

		childPrefix := prefix
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "\u2502   " // │
		}
		lines = append(lines, renderTreeNodes(node.Children, opts, depth+1, childPrefix)...)
	}

	if hidden > 0 {
		lines = append(lines, fmt.Sprintf("%s└── … and %d more", prefix, hidden))
	}
	return lines
}

func nodeLine(node TreeNode, opts TreeRenderOptions) string {
	var parts []string
	if node.ID != "" {
		parts = append(parts, node.ID+":")
	}
	parts = append(parts, node.Title)
	if opts.ShowStatus && node.Status != "" {
		parts = append(parts, FormatStatus(node.Status)+statusMark(node.Status))
	}
	return strings.Join(parts, " ")
}

// CascadeTree builds the delete preview for rec: one group per dependent
// resource, in the order the store removes them.
func CascadeTree(r models.Resource, rec models.Record, deps []db.Dependent) TreeNode {
	root := TreeNode{ID: rec.ID, Title: recordTitle(r, rec), Status: rec.Status()}

	index := map[models.Resource]int{}
	for _, d := range deps {
		i, ok := index[d.Resource]
		if !ok {
			i = len(root.Children)
			index[d.Resource] = i
			root.Children = append(root.Children, TreeNode{Title: d.Resource.Title()})
		}
		root.Children[i].Children = append(root.Children[i].Children, TreeNode{ID: d.ID, Title: d.Label})
	}
	for i := range root.Children {
		root.Children[i].Title = fmt.Sprintf("%s (%d)", root.Children[i].Title, len(root.Children[i].Children))
	}
	return root
}

// RenderCascade renders the root line followed by everything deleted with it.
func RenderCascade(root TreeNode, opts TreeRenderOptions) string {
	head := nodeLine(root, opts)
	if len(root.Children) == 0 {
		return head
	}
	return head + "\n" + RenderTree(root, opts)
}

func recordTitle(r models.Resource, rec models.Record) string {
	for _, key := range []string{"name", "title"} {
		if s := rec.String(key); s != "" {
			return s
		}
	}
	if r == models.ResourceApplications {
		return rec.String("applicant") + " → " + rec.String("job_post")
	}
	return rec.ID
}
