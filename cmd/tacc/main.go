// Command tacc is the compiler's CLI entrypoint (§6 CLI surface).
// Grounded on original_source/src/compiler/__main__.py's manual
// os.Args-loop argument parsing (no flag package anywhere in that draft)
// and the teacher's cmd/funxy/main.go convention of reporting pipeline
// failures with fmt.Fprintln(os.Stderr, ...) followed by os.Exit(1).
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tacc/internal/buildcache"
	"tacc/internal/checker"
	"tacc/internal/config"
	"tacc/internal/corpus"
	"tacc/internal/diagnostics"
	"tacc/internal/driver"
	"tacc/internal/interp"
	"tacc/internal/ir"
	"tacc/internal/lexer"
	"tacc/internal/parser"
	"tacc/internal/pipeline"
)

const usage = `Usage: tacc <command> [source_code_file]

Commands:
    ir          prints each function's name and its instruction listing
    asm         prints generated assembly text to stdout
    compile     same as asm, then assembles and links to ./compiled_program
    interpret   interprets the program directly, without emitting assembly
    test        runs every case in the given corpus file(s) or directory(ies)

Common arguments:
    source_code_file        optional, defaults to standard input
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var command string
	var files []string

	for _, arg := range args {
		switch {
		case arg == "-h" || arg == "--help":
			fmt.Fprint(stdout, usage)
			return 0
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(stderr, "unknown argument: %s\n", arg)
			return 1
		case command == "":
			command = arg
		default:
			files = append(files, arg)
		}
	}

	if command == "" {
		fmt.Fprintf(stderr, "error: command argument missing\n\n%s", usage)
		return 1
	}

	switch command {
	case "test":
		return runTest(files, stdout, stderr)
	case "ir", "asm", "compile", "interpret":
		var path string
		if len(files) > 0 {
			path = files[0]
		}
		return runPipelineCommand(command, path, stdin, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "error: unknown command: %s\n\n%s", command, usage)
		return 1
	}
}

func readSource(path string, stdin io.Reader) (string, error) {
	if path == "" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func runPipelineCommand(command, path string, stdin io.Reader, stdout, stderr io.Writer) int {
	source, err := readSource(path, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	printer := diagnostics.NewPrinter(stderr, false)

	switch command {
	case "interpret":
		ctx := pipeline.New(source)
		if err := pipeline.Run(ctx, lexer.Stage{}, parser.Stage{}, checker.Stage{}); err != nil {
			printer.Fatal(err)
			return 1
		}
		it := interp.New(stdout, stdin)
		if err := it.Run(ctx.Module); err != nil {
			printer.Fatal(err)
			return 1
		}
		return 0

	case "ir":
		code, err := driver.CompileToIR(source)
		if err != nil {
			printer.Fatal(err)
			return 1
		}
		printIR(stdout, code)
		return 0

	case "asm":
		asm, err := driver.CompileToAsm(source, nil)
		if err != nil {
			printer.Fatal(err)
			return 1
		}
		fmt.Fprintln(stdout, asm)
		return 0

	case "compile":
		asm, err := driver.CompileToAsm(source, openCache(stderr))
		if err != nil {
			printer.Fatal(err)
			return 1
		}
		if err := driver.Compile(asm); err != nil {
			printer.Fatal(err)
			return 1
		}
		return 0
	}

	return 1
}

func printIR(out io.Writer, code map[string][]ir.Instruction) {
	for _, name := range sortedKeys(code) {
		fmt.Fprintf(out, "%s:\n", name)
		for _, instr := range code[name] {
			fmt.Fprintf(out, "  %s\n", instr.String())
		}
	}
}

func sortedKeys(code map[string][]ir.Instruction) []string {
	keys := make([]string, 0, len(code))
	for k := range code {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// openCache opens the on-disk build cache for the "compile" command,
// continuing uncached (with a stderr note) if the cache can't be opened —
// a cache is an optimization, never a correctness requirement.
func openCache(stderr io.Writer) *buildcache.Cache {
	cache, err := buildcache.Open(".tacc-cache.sqlite")
	if err != nil {
		fmt.Fprintf(stderr, "warning: build cache unavailable: %v\n", err)
		return nil
	}
	return cache
}

func runTest(files []string, stdout, stderr io.Writer) int {
	if len(files) == 0 {
		fmt.Fprintln(stderr, "error: 'test' requires at least one corpus file")
		return 1
	}

	paths, err := expandCorpusPaths(files)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	failed := 0
	total := 0
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		for _, c := range corpus.Parse(path, string(content)) {
			total++
			result := corpus.Run(c)
			if result.Err != nil {
				failed++
				fmt.Fprintf(stdout, "FAIL %s: %v\n", c.Name(), result.Err)
				continue
			}
			if !result.Passed {
				failed++
				fmt.Fprintf(stdout, "FAIL %s: want %q, got %q\n", c.Name(), c.ExpectedStdout(), result.Got)
				continue
			}
			fmt.Fprintf(stdout, "PASS %s\n", c.Name())
		}
	}

	fmt.Fprintf(stdout, "%d/%d passed\n", total-failed, total)
	if failed > 0 {
		return 1
	}
	return 0
}

// expandCorpusPaths resolves each 'test' argument to one or more corpus
// files: a plain file is kept as-is, a directory is walked for every file
// named with config.SourceFileExt.
func expandCorpusPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.Walk(arg, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() && strings.HasSuffix(p, config.SourceFileExt) {
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}
