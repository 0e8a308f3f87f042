package main

import (
	"os"
	"path/filepath"
	"testing"

	"cildiff/internal/cilast"
)

func TestParseFlagsBasic(t *testing.T) {
	cfg, err := parseFlags([]string{"-json", "left.json", "right.json"})
	if err != nil {
		t.Fatalf("parseFlags error: %v", err)
	}
	if !cfg.json {
		t.Fatalf("expected json mode")
	}
	if cfg.leftPath != "left.json" || cfg.rightPath != "right.json" {
		t.Fatalf("positional args not captured: %q %q", cfg.leftPath, cfg.rightPath)
	}
}

func TestParseFlagsPrettyImpliesJSON(t *testing.T) {
	cfg, err := parseFlags([]string{"-pretty", "a", "b"})
	if err != nil {
		t.Fatalf("parseFlags error: %v", err)
	}
	if !cfg.json || !cfg.pretty {
		t.Fatalf("expected -pretty to imply -json, got %+v", cfg)
	}
}

func TestParseFlagsMissingInputs(t *testing.T) {
	if _, err := parseFlags([]string{"only-one"}); err == nil {
		t.Fatalf("expected error for a single input path")
	}
}

func TestParseFlagsDoubleStdin(t *testing.T) {
	if _, err := parseFlags([]string{"-", "-"}); err == nil {
		t.Fatalf("expected error when both inputs are stdin")
	}
}

func TestParseFlagsVersionSkipsPositionalCheck(t *testing.T) {
	cfg, err := parseFlags([]string{"-V"})
	if err != nil {
		t.Fatalf("parseFlags error: %v", err)
	}
	if !cfg.showVersion {
		t.Fatalf("expected showVersion")
	}
}

func TestReadASTPlainJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	doc := `{"flavor": "root", "children": [
		{"flavor": "type", "line": 3, "data": {"name": "foo_t"}}
	]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	root, err := readAST(path)
	if err != nil {
		t.Fatalf("readAST error: %v", err)
	}
	if root.Flavor() != cilast.FlavorRoot {
		t.Fatalf("expected root flavor, got %s", root.Flavor())
	}
	child := root.FirstChild()
	if child == nil || child.Flavor() != cilast.FlavorType || child.Line() != 3 {
		t.Fatalf("unexpected first child: %#v", child)
	}
}

func TestReadASTMissingFile(t *testing.T) {
	if _, err := readAST(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing input file")
	}
}
