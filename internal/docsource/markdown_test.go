package docsource

import (
	"strings"
	"testing"
)

func TestMarkdownSource_HeadingsAndBody(t *testing.T) {
	input := `# Playbook

Intro text.

## Dimensions and Metrics

Session: A visit window of activity.

## Limits

GA4 allows at most 25 user properties.
`
	p := &MarkdownSource{}
	blocks, err := p.Parse(strings.NewReader(input), "playbook.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(blocks) != 6 {
		t.Fatalf("expected 6 blocks, got %d: %+v", len(blocks), blocks)
	}

	if blocks[0].Text != "Playbook" || blocks[0].Level != 1 {
		t.Errorf("expected h1 Playbook, got %+v", blocks[0])
	}
	if blocks[1].Text != "Intro text." || blocks[1].Level != 0 {
		t.Errorf("expected body block, got %+v", blocks[1])
	}
	if blocks[2].Text != "Dimensions and Metrics" || blocks[2].Level != 2 {
		t.Errorf("expected h2, got %+v", blocks[2])
	}
}

func TestMarkdownSource_Table(t *testing.T) {
	input := `## Limits

| Platform | Category | Limit | Description |
| --- | --- | --- | --- |
| GA4 | Cookie Consent | required | Consent Mode must be enabled in the EEA. |
| General | Age Restriction | 16 | Minimum age for tracked users. |
`
	p := &MarkdownSource{}
	blocks, err := p.Parse(strings.NewReader(input), "limits.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var table [][]string
	for _, b := range blocks {
		if b.IsTable() {
			table = b.Table
		}
	}
	if table == nil {
		t.Fatal("expected a table block")
	}
	if len(table) != 3 {
		t.Fatalf("expected 3 rows (header + 2), got %d", len(table))
	}
	if table[0][0] != "Platform" {
		t.Errorf("expected header cell %q, got %q", "Platform", table[0][0])
	}
	if table[1][1] != "Cookie Consent" {
		t.Errorf("expected cell %q, got %q", "Cookie Consent", table[1][1])
	}
}

func TestMarkdownSource_ListItemsAreSeparateBlocks(t *testing.T) {
	input := `## Troubleshooting

- Check the tag installation.
- Verify consent mode.
`
	p := &MarkdownSource{}
	blocks, err := p.Parse(strings.NewReader(input), "ts.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks (heading + 2 items), got %d: %+v", len(blocks), blocks)
	}
	if blocks[1].Text != "Check the tag installation." {
		t.Errorf("unexpected item text %q", blocks[1].Text)
	}
}

func TestMarkdownSource_Empty(t *testing.T) {
	p := &MarkdownSource{}
	blocks, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("expected 0 blocks, got %d", len(blocks))
	}
}
