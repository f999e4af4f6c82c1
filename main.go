// kelc - an ahead-of-time compiler for the Kel systems language,
// targeting 32-bit x86 assembly in AT&T syntax.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/xyproto/env/v2"
)

const versionString = "kelc 1.2.0"

// TargetOS selects symbol mangling for the output assembly.
type TargetOS int

const (
	OSLinux TargetOS = iota
	OSFreeBSD
	OSWindows
)

func (o TargetOS) String() string {
	switch o {
	case OSLinux:
		return "linux"
	case OSFreeBSD:
		return "freebsd"
	case OSWindows:
		return "windows"
	default:
		return "unknown"
	}
}

// SymPrefix returns the prefix applied to every global symbol: "_" on
// Windows targets, nothing on POSIX.
func (o TargetOS) SymPrefix() string {
	if o == OSWindows {
		return "_"
	}
	return ""
}

// ParseTargetOS parses an OS string (like GOOS values).
func ParseTargetOS(s string) (TargetOS, error) {
	switch strings.ToLower(s) {
	case "linux":
		return OSLinux, nil
	case "freebsd":
		return OSFreeBSD, nil
	case "windows", "win":
		return OSWindows, nil
	default:
		return 0, fmt.Errorf("unsupported OS: %s (supported: linux, freebsd, windows)", s)
	}
}

// Options configures one compile run.
type Options struct {
	Inputs     []string
	OutputPath string
	EntrySym   string
	Target     TargetOS
	UseMemcpy  bool
	Verbose    bool
	Quiet      bool
}

// Compile runs the whole pipeline over the inputs and writes the
// assembly listing to opts.OutputPath. Diagnostics go to stderr.
func Compile(opts *Options) error {
	arena := NewArena(1<<16, nil)
	defer arena.Deinit()

	src := NewSourceState(arena)
	globals := NewSymbolTable(0, nil, true)

	for _, input := range opts.Inputs {
		if err := src.Expand(input, globals, 0, SourcePos{}); err != nil {
			PrintMessage(os.Stderr, src, err)
			return err
		}
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "parsed %d line(s) from %d file(s)\n",
			len(src.Lines), len(src.Files))
	}

	parser := NewParser(src, globals)
	unit, perr := parser.ParseUnit()
	if perr != nil {
		PrintMessage(os.Stderr, src, perr)
		return perr
	}

	if serr := Analyze(unit, globals); serr != nil {
		PrintMessage(os.Stderr, src, serr)
		return serr
	}

	out, err := os.Create(opts.OutputPath)
	if err != nil {
		return fmt.Errorf("cannot create %s: %v", opts.OutputPath, err)
	}
	defer out.Close()

	g := NewCodegen(out, opts.Target)
	g.UseMemcpyCall = opts.UseMemcpy
	if err := Generate(g, unit, globals, opts.EntrySym); err != nil {
		return fmt.Errorf("writing %s: %v", opts.OutputPath, err)
	}

	if !opts.Quiet && opts.Verbose {
		fmt.Fprintf(os.Stderr, "wrote %s\n", opts.OutputPath)
	}
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `%s - Kel compiler for 32-bit x86

USAGE:
    kelc [options] file.kel [file2.kel ...]

OPTIONS:
    -o <path>       output assembly path (default: first input with .s)
    -e <name>       entry symbol (default: main, or KELC_ENTRY)
    --os <os>       target OS: linux, freebsd, windows
                    (default: linux, or KELC_TARGET)
    --use-memcpy    call the C runtime memcpy for large copies
    -v              verbose
    -q              quiet
    --version       print version and exit

Multiple input files are concatenated, in order, into one translation
unit before compilation.
`, versionString)
}

func main() {
	flag.Usage = usage

	outputPath := flag.String("o", "", "output assembly path")
	entrySym := flag.String("e", env.Str("KELC_ENTRY", "main"), "entry symbol")
	targetName := flag.String("os", env.Str("KELC_TARGET", "linux"), "target OS")
	useMemcpy := flag.Bool("use-memcpy", false, "call memcpy for large copies")
	verbose := flag.Bool("v", false, "verbose")
	quiet := flag.Bool("q", false, "quiet")
	showVersion := flag.Bool("version", false, "print version")
	flag.Parse()

	if *showVersion {
		fmt.Println(versionString)
		return
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		usage()
		os.Exit(1)
	}

	target, err := ParseTargetOS(*targetName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kelc: %v\n", err)
		os.Exit(1)
	}

	out := *outputPath
	if out == "" {
		out = strings.TrimSuffix(inputs[0], ".kel") + ".s"
	}

	opts := &Options{
		Inputs:     inputs,
		OutputPath: out,
		EntrySym:   *entrySym,
		Target:     target,
		UseMemcpy:  *useMemcpy,
		Verbose:    *verbose,
		Quiet:      *quiet,
	}

	if err := Compile(opts); err != nil {
		os.Exit(1)
	}
}
