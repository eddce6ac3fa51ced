package docsource

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Block is one parsed unit of the source document: a heading, a body
// paragraph, or a table. Blocks are produced once per load and never
// mutated afterward.
type Block struct {
	Text  string     // Paragraph or heading text (empty for pure table blocks)
	Level int        // 0 = body text, 1..N = heading depth
	Table [][]string // Rows of cells for table blocks, nil otherwise
}

// IsHeading reports whether the block is a heading.
func (b Block) IsHeading() bool { return b.Level > 0 && b.Text != "" }

// IsTable reports whether the block carries table rows.
func (b Block) IsTable() bool { return len(b.Table) > 0 }

// Source converts raw document bytes into an ordered block sequence.
type Source interface {
	Parse(r io.Reader, filename string) ([]Block, error)
}

// SupportedExtensions lists file extensions this package can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tunes source construction.
type Options struct {
	// PDFFallbackPdftotext shells out to pdftotext when the native PDF
	// reader yields no text.
	PDFFallbackPdftotext bool
}

// DefaultOptions returns the options ForFile uses.
func DefaultOptions() Options {
	return Options{PDFFallbackPdftotext: true}
}

// ForFile returns the appropriate source for a filename.
func ForFile(filename string) (Source, error) {
	return ForFileOpts(filename, DefaultOptions())
}

// ForFileOpts returns the source for a filename with explicit options.
func ForFileOpts(filename string, opts Options) (Source, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextSource{}, nil
	case ".md", ".markdown":
		return &MarkdownSource{}, nil
	case ".html", ".htm":
		return &HTMLSource{}, nil
	case ".pdf":
		return &PDFSource{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXSource{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ReadFile opens path and parses it with the source matching its extension.
func ReadFile(path string) ([]Block, error) {
	return ReadFileOpts(path, DefaultOptions())
}

// ReadFileOpts is ReadFile with explicit options.
func ReadFileOpts(path string, opts Options) ([]Block, error) {
	src, err := ForFileOpts(path, opts)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return src.Parse(f, filepath.Base(path))
}
