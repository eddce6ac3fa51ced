package docsource

import (
	"testing"

	"github.com/fumiama/go-docx"
)

func textRun(s string) *docx.Run {
	return &docx.Run{Children: []interface{}{&docx.Text{Text: s}}}
}

func TestDocxParagraphText(t *testing.T) {
	para := &docx.Paragraph{Children: []interface{}{
		textRun("Session: a window "),
		textRun("of user activity."),
	}}
	got := docxParagraphText(para)
	want := "Session: a window of user activity."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDocxHasDrawing(t *testing.T) {
	plain := &docx.Paragraph{Children: []interface{}{textRun("No graphics here.")}}
	if docxHasDrawing(plain) {
		t.Error("text-only paragraph must not report a drawing")
	}

	figure := &docx.Paragraph{Children: []interface{}{
		&docx.Run{Children: []interface{}{&docx.Drawing{}}},
	}}
	if !docxHasDrawing(figure) {
		t.Error("paragraph with an embedded drawing must report it")
	}
}
