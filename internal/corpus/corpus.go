// Package corpus reads and runs the source test corpus format (§6
// "Source test corpus", §8 concrete scenarios). Grounded directly on
// original_source/tests/end_to_end_test.py's parse_test_case: a file
// holds one or more cases separated by a line containing exactly "---";
// within a case, "input "-prefixed lines supply stdin bytes in order and
// "output "-prefixed lines are expected stdout lines in order, and every
// other line is program source.
package corpus

import (
	"strconv"
	"strings"
)

// Case is one compile-run-compare test case parsed from a corpus file.
type Case struct {
	// File is the corpus file the case came from, and Index its position
	// within that file, together giving the case a stable display name.
	File  string
	Index int

	Source  string
	Inputs  []string
	Outputs []string
}

// Name returns a stable identifier for the case, e.g. "arith.tc_0".
func (c Case) Name() string {
	return c.File + "_" + strconv.Itoa(c.Index)
}

// ExpectedStdout joins Outputs the way the original test harness compares
// them: one line per expected output, newline-terminated, or the empty
// string if no output lines were declared.
func (c Case) ExpectedStdout() string {
	if len(c.Outputs) == 0 {
		return ""
	}
	return strings.Join(c.Outputs, "\n") + "\n"
}

// StdinBytes concatenates every declared input line, the way the original
// harness writes each one to the child process's stdin in turn.
func (c Case) StdinBytes() []byte {
	return []byte(strings.Join(c.Inputs, ""))
}

// Parse splits the contents of one corpus file into its cases.
func Parse(fileName, content string) []Case {
	var cases []Case
	for i, chunk := range strings.Split(content, "\n---\n") {
		cases = append(cases, parseCase(fileName, i, chunk))
	}
	return cases
}

func parseCase(fileName string, index int, chunk string) Case {
	c := Case{File: fileName, Index: index}
	var code strings.Builder
	for _, line := range strings.Split(chunk, "\n") {
		switch {
		case strings.HasPrefix(line, "input "):
			c.Inputs = append(c.Inputs, line[len("input "):])
		case strings.HasPrefix(line, "output "):
			c.Outputs = append(c.Outputs, line[len("output "):])
		default:
			code.WriteString(line)
			code.WriteString("\n")
		}
	}
	c.Source = code.String()
	return c
}
