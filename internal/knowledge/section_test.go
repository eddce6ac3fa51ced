package knowledge

import (
	"testing"

	"github.com/kdurante/playbookmcp/internal/docsource"
)

func TestBuildTree_Nesting(t *testing.T) {
	blocks := []docsource.Block{
		{Text: "Preamble before any heading."},
		{Text: "Top", Level: 1},
		{Text: "Top body."},
		{Text: "Child", Level: 2},
		{Text: "Child body."},
		{Text: "Second Top", Level: 1},
	}
	root := BuildTree(blocks)

	if len(root.Blocks) != 1 || root.Blocks[0].Text != "Preamble before any heading." {
		t.Errorf("expected preamble on root, got %+v", root.Blocks)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 top-level sections, got %d", len(root.Children))
	}

	top := root.Children[0]
	if top.Title != "Top" || len(top.Children) != 1 {
		t.Fatalf("unexpected first section %+v", top)
	}
	if top.Children[0].Title != "Child" {
		t.Errorf("expected child %q, got %q", "Child", top.Children[0].Title)
	}
	if got := top.Children[0].BodyText(); got != "Child body." {
		t.Errorf("expected child body %q, got %q", "Child body.", got)
	}
}

func TestBuildTree_SkippedLevels(t *testing.T) {
	// Level 1 directly followed by level 3: accepted as-is, no synthesized level.
	blocks := []docsource.Block{
		{Text: "One", Level: 1},
		{Text: "Three", Level: 3},
		{Text: "Two", Level: 2},
	}
	root := BuildTree(blocks)
	one := root.Children[0]
	if len(one.Children) != 2 {
		t.Fatalf("expected 2 children under level 1, got %d", len(one.Children))
	}
	if one.Children[0].Title != "Three" || one.Children[0].Level != 3 {
		t.Errorf("expected literal level-3 nesting, got %+v", one.Children[0])
	}
	if one.Children[1].Title != "Two" {
		t.Errorf("expected level-2 sibling after pop, got %+v", one.Children[1])
	}
}

func TestBuildTree_Empty(t *testing.T) {
	root := BuildTree(nil)
	if !root.IsRoot() || len(root.Children) != 0 || len(root.Blocks) != 0 {
		t.Errorf("expected bare root for empty input, got %+v", root)
	}
	if root.Breadcrumb() != "" {
		t.Errorf("expected empty root breadcrumb, got %q", root.Breadcrumb())
	}
}

func TestBreadcrumb_ParentConcatenation(t *testing.T) {
	blocks := []docsource.Block{
		{Text: "A", Level: 1},
		{Text: "B", Level: 2},
		{Text: "C", Level: 3},
	}
	root := BuildTree(blocks)

	var check func(s *Section)
	check = func(s *Section) {
		for _, c := range s.Children {
			want := c.Title
			if s.Breadcrumb() != "" {
				want = s.Breadcrumb() + " > " + c.Title
			}
			if c.Breadcrumb() != want {
				t.Errorf("breadcrumb of %q: expected %q, got %q", c.Title, want, c.Breadcrumb())
			}
			check(c)
		}
	}
	check(root)

	deepest := root.Children[0].Children[0].Children[0]
	if deepest.Breadcrumb() != "A > B > C" {
		t.Errorf("expected %q, got %q", "A > B > C", deepest.Breadcrumb())
	}
}

func TestRenderTable(t *testing.T) {
	got := RenderTable([][]string{{"a", "b"}, {"1", "2"}})
	want := "| a | b |\n| 1 | 2 |"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestClassify(t *testing.T) {
	m := DefaultMarkers()
	cases := map[string]SectionKind{
		"Dimensions and Metrics":        KindGlossary,
		"Limits and Restrictions":       KindCompliance,
		"Choosing a Platform":           KindComparison,
		"Troubleshooting Discrepancies": KindIssue,
		"Server-side vs Client-side":    KindComparison,
		"Welcome":                       KindGeneral,
	}
	for title, want := range cases {
		if got := Classify(title, m); got != want {
			t.Errorf("Classify(%q) = %v, want %v", title, got, want)
		}
	}
}
