// Package setup installs the snippet file an editor reads.
//
// - Extra snippets: a hand-written JSON file at the repository root
// - Generated snippets: the output of `cargo snippet -t vscode`
// - Destination: the union of both, generated snippets winning on name clashes
package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alanbuscaglia/snipinstall/internal/generator"
	"github.com/alanbuscaglia/snipinstall/internal/snippets"
)

// ExtraSnippetsFile is the name of the hand-written snippets file, relative to
// the repository root.
const ExtraSnippetsFile = "extra_snippets.json"

// ErrDestinationIsDir is returned when the destination path is a directory.
var ErrDestinationIsDir = errors.New("is a directory")

var (
	statFn      = os.Stat
	readFileFn  = os.ReadFile
	writeFileFn = os.WriteFile
	runCommand  = generator.Run
	marshalFn   = snippets.Marshal
)

// Config locates the snippet sources.
type Config struct {
	Root      string // repository root; the generator runs here
	ExtraPath string
	Generator generator.Command
}

// DefaultConfig returns the configuration for a repository rooted at root.
func DefaultConfig(root string) Config {
	return Config{
		Root:      root,
		ExtraPath: filepath.Join(root, ExtraSnippetsFile),
		Generator: generator.Default(),
	}
}

// Result holds the outcome of an installation.
type Result struct {
	Destination string
	Extra       int
	Generated   int
	Overridden  int
	Total       int
}

// CheckDestination validates dest before anything is loaded. It reports
// whether dest is an existing regular file that would be overwritten.
func CheckDestination(dest string) (exists bool, err error) {
	info, err := statFn(dest)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", dest, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s: %w", dest, ErrDestinationIsDir)
	}
	return info.Mode().IsRegular(), nil
}

// Install merges the extra and generated snippets and writes them to dest.
// Nothing is written unless both sources load and merge cleanly.
func Install(cfg Config, dest string) (*Result, error) {
	extra, err := loadExtra(cfg.ExtraPath)
	if err != nil {
		return nil, err
	}

	generated, err := generate(cfg)
	if err != nil {
		return nil, err
	}

	merged := snippets.Merge(extra, generated)
	data, err := marshalFn(merged)
	if err != nil {
		return nil, fmt.Errorf("encode snippets: %w", err)
	}

	if err := writeFileFn(dest, data, 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", dest, err)
	}

	return &Result{
		Destination: dest,
		Extra:       extra.Len(),
		Generated:   generated.Len(),
		Overridden:  len(snippets.Overlap(extra, generated)),
		Total:       merged.Len(),
	}, nil
}

func loadExtra(path string) (*snippets.Set, error) {
	data, err := readFileFn(path)
	if err != nil {
		return nil, fmt.Errorf("read extra snippets: %w", err)
	}

	set, err := snippets.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse extra snippets %s: %w", path, err)
	}
	return set, nil
}

func generate(cfg Config) (*snippets.Set, error) {
	out, err := runCommand(cfg.Generator, cfg.Root)
	if err != nil {
		return nil, err
	}

	set, err := snippets.Parse(out)
	if err != nil {
		return nil, fmt.Errorf("parse %s output: %w", cfg.Generator.Name, err)
	}
	return set, nil
}
