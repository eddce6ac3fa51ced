package knowledge

import (
	"strings"

	"github.com/kdurante/playbookmcp/internal/docsource"
)

// Section is a node in the document's section tree. The root section
// has level 0 and an empty title; preamble text before the first
// heading lands in the root's blocks.
type Section struct {
	Title    string
	Level    int
	Blocks   []docsource.Block
	Children []*Section
	Kind     SectionKind

	parent *Section
}

// BuildTree folds the ordered block sequence into a section tree using
// a stack of open sections. A heading of level L pops the stack to the
// nearest section of level < L and opens a child there; body and table
// blocks attach to the current top of stack. Skipped heading levels are
// kept as authored.
func BuildTree(blocks []docsource.Block) *Section {
	root := &Section{Level: 0}
	stack := []*Section{root}

	for _, b := range blocks {
		if b.IsHeading() {
			for len(stack) > 1 && stack[len(stack)-1].Level >= b.Level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1]
			sec := &Section{Title: b.Text, Level: b.Level, parent: parent}
			parent.Children = append(parent.Children, sec)
			stack = append(stack, sec)
			continue
		}
		top := stack[len(stack)-1]
		top.Blocks = append(top.Blocks, b)
	}

	return root
}

// IsRoot reports whether this is the synthetic root section.
func (s *Section) IsRoot() bool { return s.parent == nil }

// Breadcrumb is the root-to-node path of titles joined with " > ".
// The root's breadcrumb is empty.
func (s *Section) Breadcrumb() string {
	if s.parent == nil {
		return ""
	}
	parent := s.parent.Breadcrumb()
	if parent == "" {
		return s.Title
	}
	return parent + " > " + s.Title
}

// BodyText renders the section's own blocks as text, with tables
// flattened to pipe-delimited rows.
func (s *Section) BodyText() string {
	var parts []string
	for _, b := range s.Blocks {
		if b.IsTable() {
			parts = append(parts, RenderTable(b.Table))
		} else if b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Tables returns the section's own table blocks in order.
func (s *Section) Tables() [][][]string {
	var tables [][][]string
	for _, b := range s.Blocks {
		if b.IsTable() {
			tables = append(tables, b.Table)
		}
	}
	return tables
}

// Walk visits s and all descendants depth-first in source order.
func (s *Section) Walk(fn func(*Section)) {
	fn(s)
	for _, c := range s.Children {
		c.Walk(fn)
	}
}

// RenderTable formats table rows as pipe-delimited lines.
func RenderTable(rows [][]string) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("| " + strings.Join(row, " | ") + " |")
	}
	return b.String()
}
