package corpus

import (
	"testing"
)

func TestParseSplitsOnSeparator(t *testing.T) {
	content := "1 + 1\noutput 2\n---\n2 + 2\noutput 4\n"
	cases := Parse("arith.tc", content)
	if len(cases) != 2 {
		t.Fatalf("got %d cases, want 2", len(cases))
	}
	if cases[0].Name() != "arith.tc_0" || cases[1].Name() != "arith.tc_1" {
		t.Errorf("case names = %q, %q", cases[0].Name(), cases[1].Name())
	}
}

func TestParseCaseClassifiesLines(t *testing.T) {
	content := "input 5\nprint_int(read_int())\noutput 5\n"
	cases := Parse("echo.tc", content)
	if len(cases) != 1 {
		t.Fatalf("got %d cases, want 1", len(cases))
	}
	c := cases[0]
	if len(c.Inputs) != 1 || c.Inputs[0] != "5" {
		t.Errorf("Inputs = %v, want [\"5\"]", c.Inputs)
	}
	if len(c.Outputs) != 1 || c.Outputs[0] != "5" {
		t.Errorf("Outputs = %v, want [\"5\"]", c.Outputs)
	}
	if c.Source != "print_int(read_int())\n" {
		t.Errorf("Source = %q, want %q", c.Source, "print_int(read_int())\n")
	}
}

func TestExpectedStdoutJoinsWithNewlines(t *testing.T) {
	c := Case{Outputs: []string{"1", "2", "3"}}
	if got, want := c.ExpectedStdout(), "1\n2\n3\n"; got != want {
		t.Errorf("ExpectedStdout() = %q, want %q", got, want)
	}
}

func TestExpectedStdoutEmptyWhenNoOutputLines(t *testing.T) {
	c := Case{}
	if got := c.ExpectedStdout(); got != "" {
		t.Errorf("ExpectedStdout() = %q, want \"\"", got)
	}
}

func TestStdinBytesConcatenatesInputLines(t *testing.T) {
	c := Case{Inputs: []string{"1", "2"}}
	if got, want := string(c.StdinBytes()), "12"; got != want {
		t.Errorf("StdinBytes() = %q, want %q", got, want)
	}
}
