package diagnostics

import (
	"bytes"
	"strings"
	"testing"
)

func TestErrorFormatsWithPhaseAndCode(t *testing.T) {
	err := New(PhaseChecker, TypeUnboundIdent, "x")
	got := err.Error()
	for _, want := range []string{"[checker]", "T001", "x"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
}

func TestErrorUnknownCodeFallsBackGracefully(t *testing.T) {
	err := &Error{Phase: PhaseParser, Code: Code("BOGUS")}
	if !strings.Contains(err.Error(), "unknown error code") {
		t.Errorf("Error() = %q, want a fallback message for an undocumented code", err.Error())
	}
}

func TestPrinterFatalWritesDiagnosticError(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.Fatal(New(PhaseLexer, LexNoMatch, "@@@"))
	if !strings.Contains(buf.String(), "L001") {
		t.Errorf("Fatal output = %q, want it to mention the error code", buf.String())
	}
}

func TestPrinterNoteOnlyPrintsWhenVerbose(t *testing.T) {
	var quiet bytes.Buffer
	NewPrinter(&quiet, false).Note("progress: %s", "lexing")
	if quiet.Len() != 0 {
		t.Errorf("non-verbose Note wrote %q, want nothing", quiet.String())
	}

	var verbose bytes.Buffer
	NewPrinter(&verbose, true).Note("progress: %s", "lexing")
	if !strings.Contains(verbose.String(), "progress: lexing") {
		t.Errorf("verbose Note = %q, want it to contain the formatted message", verbose.String())
	}
}
