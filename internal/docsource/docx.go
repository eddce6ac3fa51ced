package docsource

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXSource handles .docx files.
type DOCXSource struct{}

// figurePlaceholder stands in for embedded graphics, which carry no
// extractable text but still mark that the section illustrates its
// point visually.
const figurePlaceholder = "[Figure in this section]"

func (p *DOCXSource) Parse(r io.Reader, filename string) ([]Block, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "playbook-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var blocks []Block
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(it)
			if text == "" {
				if docxHasDrawing(it) {
					blocks = append(blocks, Block{Text: figurePlaceholder})
				}
				continue
			}
			blocks = append(blocks, Block{Text: text, Level: docxHeadingLevel(it)})
			if docxHasDrawing(it) {
				blocks = append(blocks, Block{Text: figurePlaceholder})
			}
		case *docx.Table:
			rows := docxTableRows(it)
			if len(rows) > 0 {
				blocks = append(blocks, Block{Table: rows})
			}
		}
	}

	return blocks, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	switch {
	case strings.EqualFold(style, "Heading1") || strings.EqualFold(style, "heading 1"):
		return 1
	case strings.EqualFold(style, "Heading2") || strings.EqualFold(style, "heading 2"):
		return 2
	case strings.EqualFold(style, "Heading3") || strings.EqualFold(style, "heading 3"):
		return 3
	case strings.EqualFold(style, "Heading4") || strings.EqualFold(style, "heading 4"):
		return 4
	case strings.EqualFold(style, "Heading5") || strings.EqualFold(style, "heading 5"):
		return 5
	case strings.EqualFold(style, "Heading6") || strings.EqualFold(style, "heading 6"):
		return 6
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func docxHasDrawing(para *docx.Paragraph) bool {
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if _, ok := rc.(*docx.Drawing); ok {
				return true
			}
		}
	}
	return false
}

func docxTableRows(tbl *docx.Table) [][]string {
	var rows [][]string
	for _, tr := range tbl.TableRows {
		var cells []string
		for _, tc := range tr.TableCells {
			var buf strings.Builder
			for _, para := range tc.Paragraphs {
				t := docxParagraphText(para)
				if t == "" {
					continue
				}
				if buf.Len() > 0 {
					buf.WriteByte(' ')
				}
				buf.WriteString(t)
			}
			cells = append(cells, buf.String())
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}
