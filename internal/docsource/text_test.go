package docsource

import (
	"strings"
	"testing"
)

func TestTextSource_ParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextSource{}
	blocks, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}

	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	for i, w := range want {
		if blocks[i].Text != w {
			t.Errorf("block[%d]: expected %q, got %q", i, w, blocks[i].Text)
		}
		if blocks[i].Level != 0 {
			t.Errorf("block[%d]: expected level 0, got %d", i, blocks[i].Level)
		}
	}
}

func TestTextSource_EmptyInput(t *testing.T) {
	p := &TextSource{}
	blocks, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("expected 0 blocks for empty input, got %d", len(blocks))
	}
}

func TestTextSource_WhitespaceOnlyLines(t *testing.T) {
	input := "Para one.\n   \nPara two."
	p := &TextSource{}
	blocks, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
}

func TestForFile_Dispatch(t *testing.T) {
	cases := map[string]bool{
		"playbook.docx": true,
		"playbook.md":   true,
		"playbook.html": true,
		"playbook.pdf":  true,
		"playbook.txt":  true,
		"playbook.xlsx": false,
	}
	for name, ok := range cases {
		_, err := ForFile(name)
		if ok && err != nil {
			t.Errorf("ForFile(%q): unexpected error %v", name, err)
		}
		if !ok && err == nil {
			t.Errorf("ForFile(%q): expected error", name)
		}
		if got := IsSupportedExtension(name); got != ok {
			t.Errorf("IsSupportedExtension(%q) = %v, want %v", name, got, ok)
		}
	}
}
