// Package logio provides raw log input preprocessing: splitting
// submitted content into lines with size limits applied before the
// analysis pipeline sees it.
package logio

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

// Splitter breaks raw log content into lines.
type Splitter struct {
	maxLineLength int
}

// NewSplitter creates a Splitter. Lines longer than maxLineLength are
// truncated rather than dropped, so an oversized record still reaches
// the parser (and is counted there if the truncation broke it).
func NewSplitter(maxLineLength int) *Splitter {
	return &Splitter{maxLineLength: maxLineLength}
}

// Split reads lines from r. Blank and whitespace-only lines are
// dropped; access logs commonly end with a trailing newline and those
// empties are not records.
func (s *Splitter) Split(r io.Reader) ([]string, error) {
	reader := bufio.NewReader(r)

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			line = strings.TrimRight(line, "\r\n")
			if strings.TrimSpace(line) != "" {
				if len(line) > s.maxLineLength {
					// Back off to a rune boundary so truncation never
					// leaves a broken UTF-8 sequence at the end.
					cut := s.maxLineLength
					for cut > 0 && !utf8.RuneStart(line[cut]) {
						cut--
					}
					line = line[:cut]
				}
				lines = append(lines, line)
			}
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// SplitString is Split over in-memory content.
func (s *Splitter) SplitString(content string) ([]string, error) {
	return s.Split(strings.NewReader(content))
}

// IsEmpty checks if the content is empty or whitespace only.
func IsEmpty(content string) bool {
	return strings.TrimSpace(content) == ""
}
