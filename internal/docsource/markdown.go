package docsource

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownSource handles Markdown files using goldmark. GFM tables are
// parsed into table blocks.
type MarkdownSource struct{}

func (p *MarkdownSource) Parse(r io.Reader, filename string) ([]Block, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var blocks []Block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			if title != "" {
				blocks = append(blocks, Block{Text: title, Level: node.Level})
			}
		case *east.Table:
			rows := markdownTableRows(node, src)
			if len(rows) > 0 {
				blocks = append(blocks, Block{Table: rows})
			}
		case *ast.List:
			// One block per list item keeps item boundaries visible downstream.
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				t := extractText(item, src)
				if t != "" {
					blocks = append(blocks, Block{Text: t})
				}
			}
		default:
			t := extractText(n, src)
			if t != "" {
				blocks = append(blocks, Block{Text: t})
			}
		}
	}

	return blocks, nil
}

func markdownTableRows(tbl *east.Table, src []byte) [][]string {
	var rows [][]string
	appendRow := func(row ast.Node) {
		var cells []string
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, extractText(c, src))
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	for n := tbl.FirstChild(); n != nil; n = n.NextSibling() {
		switch n.(type) {
		case *east.TableHeader, *east.TableRow:
			appendRow(n)
		}
	}
	return rows
}

// extractText gets the text content of a goldmark AST node. Blocks with
// raw lines use those directly; containers and inlines recurse.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		part := extractText(c, src)
		if part != "" {
			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(part)
		}
	}
	return strings.TrimSpace(buf.String())
}
