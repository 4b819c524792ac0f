// Command glreflect prints the uniform block layout of a WGSL shader.
//
// Usage:
//
//	glreflect [options] <input>
//
// Examples:
//
//	glreflect shader.wgsl                  # Print the reflection
//	glreflect -o shader.refl shader.wgsl   # Also write the reflection blob
//	glreflect -dir out -all shader.wgsl    # Write every diagnostic artifact
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/glreflect"
	"github.com/gogpu/glreflect/frontend/wgsl"
)

var (
	output       = flag.String("o", "", "write the reflection blob to this file")
	dir          = flag.String("dir", "", "directory for diagnostic artifacts")
	perStage     = flag.Bool("per-stage", false, "group default-block uniforms per stage")
	blockName    = flag.String("block", "uniforms", "name of the default uniform block")
	set          = flag.Uint("set", 0, "descriptor set for unassigned blocks and samplers")
	noOpaque     = flag.Bool("no-opaque-bindings", false, "leave unbound samplers and textures unassigned")
	dumpInput    = flag.Bool("dump-input", false, "write the front-end uniform list")
	dumpSource   = flag.Bool("dump-source", false, "write the processed stage sources")
	saveBinary   = flag.Bool("save-binary", false, "write the blob and stage binaries")
	saveSPVText  = flag.Bool("save-spvtext", false, "write SPIR-V text for every stage")
	allArtifacts = flag.Bool("all", false, "write every diagnostic artifact")
	verbose      = flag.Bool("v", false, "log build steps to stderr")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}
	if *verbose {
		glreflect.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if err := run(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputPath string) error {
	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	prog, err := wgsl.Compile(string(source))
	if err != nil {
		return err
	}

	opts := glreflect.DefaultOptions()
	if *perStage {
		opts.BlockPolicy = glreflect.PolicyPerStage
	}
	opts.DefaultBlockName = *blockName
	opts.DefaultSet = uint32(*set)
	opts.AssignOpaqueBindings = !*noOpaque
	opts.Debug = glreflect.DebugOptions{
		DumpReflection:      *allArtifacts,
		DumpInputReflection: *allArtifacts || *dumpInput,
		DumpProcessedSource: *allArtifacts || *dumpSource,
		SaveBinary:          *allArtifacts || *saveBinary,
		SaveSource:          *allArtifacts,
		SaveSPVText:         *allArtifacts || *saveSPVText,
	}

	refl, err := glreflect.Build(nil, prog, opts)
	if err != nil {
		return err
	}
	if err := refl.Dump(os.Stdout); err != nil {
		return err
	}

	if *output != "" {
		blob, err := refl.MarshalBinary()
		if err != nil {
			return err
		}
		if err := os.WriteFile(*output, blob, 0o644); err != nil {
			return fmt.Errorf("write blob: %w", err)
		}
	}

	if *dir == "" {
		return nil
	}
	arts, err := glreflect.Artifacts(refl, prog, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return err
	}
	for _, a := range arts {
		if err := os.WriteFile(filepath.Join(*dir, a.Name), a.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", a.Kind, err)
		}
	}
	fmt.Fprintf(os.Stderr, "Wrote %d artifacts to %s\n", len(arts), *dir)
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: glreflect [options] <input.wgsl>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  glreflect shader.wgsl                 Print the reflection\n")
	fmt.Fprintf(os.Stderr, "  glreflect -o shader.refl shader.wgsl  Also write the blob\n")
	fmt.Fprintf(os.Stderr, "  glreflect -dir out -all shader.wgsl   Write every artifact\n")
}
