package net

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// MaxLineLength bounds one console command line in bytes.
const MaxLineLength = 1024

// NewLineReader returns a scanner that yields console lines without their
// terminators. Lines longer than MaxLineLength fail the scan.
func NewLineReader(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 256), MaxLineLength)
	return sc
}

// CleanLine strips the terminator, a trailing carriage return and
// surrounding blanks from a console line.
func CleanLine(line string) string {
	return strings.TrimSpace(strings.TrimRight(line, "\r\n"))
}

// WriteLine writes text followed by a single newline.
func WriteLine(w io.Writer, text string) error {
	if _, err := io.WriteString(w, strings.TrimRight(text, "\r\n")+"\n"); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}
