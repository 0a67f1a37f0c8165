// Package printer renders trees and sync reports for the terminal.
package printer

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/custodia-labs/repotree/internal/adapters/driven/treefile"
	"github.com/custodia-labs/repotree/internal/core/domain"
)

// styles holds the colours used by both printers. The renderer is bound to
// the output writer, so nothing is coloured when it is not a terminal.
type styles struct {
	root     lipgloss.Style
	group    lipgloss.Style
	repo     lipgloss.Style
	muted    lipgloss.Style
	enum     lipgloss.Style
	success  lipgloss.Style
	warning  lipgloss.Style
	failure  lipgloss.Style
	emphasis lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		root:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		group:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		repo:     r.NewStyle(),
		muted:    r.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		enum:     r.NewStyle().Foreground(lipgloss.Color("#45475A")),
		success:  r.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		warning:  r.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		failure:  r.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		emphasis: r.NewStyle().Bold(true),
	}
}

// Print writes root in the requested format. The tree is never modified.
func Print(w io.Writer, root *domain.Node, format domain.PrintFormat) error {
	if root == nil {
		return fmt.Errorf("%w: nothing to print", domain.ErrEmptyTree)
	}
	switch format {
	case domain.PrintTree:
		_, err := fmt.Fprintln(w, renderTree(root, newStyles(w)))
		return err
	case domain.PrintJSON, domain.PrintYAML:
		return treefile.Write(w, root, format)
	default:
		return domain.NewConfigError("print-format", "unsupported format %s", format)
	}
}

func renderTree(root *domain.Node, st styles) string {
	t := tree.Root(st.root.Render("root") + " " + st.muted.Render("["+root.URL+"]")).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(st.enum)
	for _, c := range root.Children {
		t.Child(renderNode(c, st))
	}
	return t.String()
}

func renderNode(n *domain.Node, st styles) any {
	label := st.repo.Render(n.Name)
	if n.Kind == domain.KindGroup {
		label = st.group.Render(n.Name)
	}
	label += " " + st.muted.Render("["+n.Path+"]")
	if n.Archived {
		label += " " + st.warning.Render("(archived)")
	}
	if n.Shared {
		label += " " + st.muted.Render("(shared)")
	}

	if len(n.Children) == 0 {
		return label
	}
	sub := tree.Root(label)
	for _, c := range n.Children {
		sub.Child(renderNode(c, st))
	}
	return sub
}
