// Command cildiff compares two parsed policy trees and reports every place
// they structurally differ. It reads its two inputs as the JSON-AST format
// documented in internal/astjson (a real CIL parser is expected to sit
// upstream of this tool and hand it that JSON, or a bzip2-compressed copy
// of it); it does not parse CIL source itself.
//
// Usage:
//
//	cildiff [flags] <left> <right>
//
// Either path may be "-" to read that input from stdin; at most one of the
// two may be "-".
package main

import (
	"bytes"
	"compress/bzip2"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"cildiff/internal/astjson"
	"cildiff/internal/cilast"
	"cildiff/internal/cmp"
	"cildiff/internal/difftree"
	"cildiff/internal/textutil"
)

const version = "0.1.0"

var bz2Magic = []byte("BZh")

// Config holds everything parseFlags extracts from the command line.
type Config struct {
	json        bool
	pretty      bool
	outPath     string
	showVersion bool
	listFlavors bool
	leftPath    string
	rightPath   string
}

// parseFlags parses args (not including the program name) into a Config.
// Mode flags (-V, -list-flavors) skip the positional-argument check.
func parseFlags(args []string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("cildiff", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: cildiff [flags] <left> <right>\n\n")
		fmt.Fprintln(fs.Output(), "Either path may be \"-\" to read stdin (at most one of the two).")
		fmt.Fprintln(fs.Output(), "\nFlags:")
		fs.PrintDefaults()
	}

	fs.BoolFunc("json", "emit the report as JSON instead of plain text (-json=pretty also pretty-prints it)", func(v string) error {
		if v == "pretty" {
			cfg.json, cfg.pretty = true, true
			return nil
		}
		on, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		cfg.json = on
		return nil
	})
	fs.BoolVar(&cfg.pretty, "pretty", false, "pretty-print JSON output (implies -json)")
	fs.StringVar(&cfg.outPath, "o", "", "write the report to this path instead of stdout")
	fs.BoolVar(&cfg.showVersion, "V", false, "print the version and exit")
	versionLong := fs.Bool("version", false, "print the version and exit")
	fs.BoolVar(&cfg.listFlavors, "list-flavors", false, "print every known node flavor and exit")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.showVersion = cfg.showVersion || *versionLong
	if cfg.pretty {
		cfg.json = true
	}
	if cfg.showVersion || cfg.listFlavors {
		return cfg, nil
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return Config{}, errors.New("expected exactly two input paths")
	}
	cfg.leftPath, cfg.rightPath = fs.Arg(0), fs.Arg(1)
	if cfg.leftPath == "-" && cfg.rightPath == "-" {
		return Config{}, errors.New("only one input may be \"-\" (stdin)")
	}
	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "cildiff: %v\n", err)
		os.Exit(2)
	}

	if cfg.showVersion {
		fmt.Println("cildiff " + version)
		os.Exit(0)
	}
	if cfg.listFlavors {
		printFlavors()
		os.Exit(0)
	}

	leftAST, err := readAST(cfg.leftPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cildiff: reading %s: %v\n", cfg.leftPath, err)
		os.Exit(2)
	}
	rightAST, err := readAST(cfg.rightPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cildiff: reading %s: %v\n", cfg.rightPath, err)
		os.Exit(2)
	}

	leftRoot := cmp.BuildComparisonRoot(leftAST)
	rightRoot := cmp.BuildComparisonRoot(rightAST)
	tree := cmp.CompareRoots(leftRoot, rightRoot)

	out := os.Stdout
	if cfg.outPath != "" {
		f, err := os.Create(cfg.outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cildiff: %v\n", err)
			os.Exit(2)
		}
		defer f.Close()
		out = f
	}

	if cfg.json {
		if err := difftree.PrintJSON(out, tree, cfg.pretty); err != nil {
			fmt.Fprintf(os.Stderr, "cildiff: %v\n", err)
			os.Exit(2)
		}
	} else {
		fmt.Fprintf(out, "; left:  %s %s\n", cfg.leftPath, cmp.FullHashHex(leftRoot))
		fmt.Fprintf(out, "; right: %s %s\n", cfg.rightPath, cmp.FullHashHex(rightRoot))
		if err := difftree.Print(out, tree); err != nil {
			fmt.Fprintf(os.Stderr, "cildiff: %v\n", err)
			os.Exit(2)
		}
	}

	if tree.Empty() {
		os.Exit(0)
	}
	os.Exit(1)
}

// printFlavors lists every known node flavor, sorted for stable output.
func printFlavors() {
	names := make([]string, 0, len(cilast.AllFlavors()))
	for _, f := range cilast.AllFlavors() {
		names = append(names, f.String())
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Println(n)
	}
}

// readAST opens path ("-" for stdin), transparently decompresses it if it
// starts with the bzip2 magic, normalizes its line endings, and decodes it
// as a JSON-AST node tree.
func readAST(path string) (cilast.Node, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, bz2Magic) {
		decompressed, err := io.ReadAll(bzip2.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("decompressing bzip2 input: %w", err)
		}
		data = decompressed
	}
	data = textutil.NormalizeUTF8LF(data)

	return astjson.Decode(bytes.NewReader(data))
}
