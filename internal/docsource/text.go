package docsource

import (
	"bufio"
	"io"
	"strings"
)

// TextSource handles plain text files. Every paragraph becomes a body
// block; plain text carries no heading structure.
type TextSource struct{}

func (p *TextSource) Parse(r io.Reader, filename string) ([]Block, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []Block
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			blocks = append(blocks, Block{Text: current.String()})
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return blocks, nil
}
