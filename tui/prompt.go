package tui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm prints a y/N question on w and reads a single line of reply from
// r. Anything other than an explicit yes is a no.
func Confirm(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", question)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
