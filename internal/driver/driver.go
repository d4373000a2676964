// Package driver wires the five-stage pipeline together and drives the
// external assembler/linker invocation for the "compile" command (§6 CLI
// surface). Grounded on the teacher's cmd/funxy/main.go for the overall
// "read source, run pipeline, report a diagnostics.Error on stderr" shape;
// the per-invocation scratch directory uses github.com/google/uuid the
// same way the teacher's internal/evaluator/builtins_uuid.go generates
// identifiers, here naming a collision-free temp directory per compile
// rather than a language-level value.
package driver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"tacc/internal/buildcache"
	"tacc/internal/checker"
	"tacc/internal/codegen/x86"
	"tacc/internal/ir"
	"tacc/internal/lexer"
	"tacc/internal/parser"
	"tacc/internal/pipeline"
)

// BuildVersion tags the cache key so a codegen change invalidates every
// previously cached entry without needing a schema migration.
const BuildVersion = "tacc-1"

// CompiledProgramName is the fixed output binary name for "compile" (§6).
const CompiledProgramName = "./compiled_program"

// CompileToIR runs source through tokenizer -> parser -> checker -> IR and
// returns the function-partitioned IR, for the "ir" command.
func CompileToIR(source string) (map[string][]ir.Instruction, error) {
	ctx := pipeline.New(source)
	if err := pipeline.Run(ctx, lexer.Stage{}, parser.Stage{}, checker.Stage{}); err != nil {
		return nil, err
	}
	code, err := ir.Generate(ctx.Module)
	if err != nil {
		return nil, err
	}
	return code, nil
}

// CompileToAsm runs the full pipeline down to assembly text, for the
// "asm" and "compile" commands. When cache is non-nil, a hit skips
// checking/IR/codegen entirely and a miss populates the cache.
func CompileToAsm(source string, cache *buildcache.Cache) (string, error) {
	var digest string
	if cache != nil {
		digest = buildcache.Key(source, BuildVersion)
		if asm, ok, err := cache.Lookup(digest); err == nil && ok {
			return asm, nil
		}
	}

	code, err := CompileToIR(source)
	if err != nil {
		return "", err
	}
	asm, err := x86.Generate(code)
	if err != nil {
		return "", err
	}

	if cache != nil {
		_ = cache.Store(digest, BuildVersion, asm)
	}
	return asm, nil
}

// Compile assembles and links asm into CompiledProgramName (§6 "compile").
func Compile(asm string) error {
	return CompileToPath(asm, CompiledProgramName)
}

// CompileToPath assembles and links asm into outPath using the host's
// assembler and linker, in a uuid-named scratch directory so concurrent
// invocations never collide — the corpus runner calls this once per test
// case to build each case's binary independently.
func CompileToPath(asm, outPath string) error {
	scratch := filepath.Join(os.TempDir(), "tacc-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return fmt.Errorf("driver: scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	asmPath := filepath.Join(scratch, "out.s")
	if err := os.WriteFile(asmPath, []byte(asm), 0o644); err != nil {
		return fmt.Errorf("driver: write assembly: %w", err)
	}

	objPath := filepath.Join(scratch, "out.o")
	if out, err := exec.Command("as", "-o", objPath, asmPath).CombinedOutput(); err != nil {
		return fmt.Errorf("driver: assemble: %w: %s", err, out)
	}
	if out, err := exec.Command("cc", "-o", outPath, objPath).CombinedOutput(); err != nil {
		return fmt.Errorf("driver: link: %w: %s", err, out)
	}
	return nil
}
