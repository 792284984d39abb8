// Package main generates the markdown reference for the bookfeed CLI and its
// configuration file from the cobra command tree and the config schema.
//
// Usage:
//
//	go run ./scripts/gendocs -gen=cli -outdir=docs/cli
//	go run ./scripts/gendocs -gen=all
//	go run ./scripts/gendocs -check
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

type generator struct {
	name string
	dir  []string // default output dir below the project root
	run  func(outDir string) error
}

var generators = []generator{
	{"cli", []string{"docs", "cli"}, generateCLIDocs},
	{"config", []string{"docs"}, generateConfigDocs},
}

func main() {
	gen := flag.String("gen", "all", "what to generate: cli, config, all")
	outDir := flag.String("outdir", "", "output directory (only with a single -gen)")
	check := flag.Bool("check", false, "fail when the committed docs are stale instead of writing them")
	flag.Parse()

	selected, err := selectGenerators(*gen)
	if err != nil {
		log.Fatal(err)
	}

	root, err := findProjectRoot()
	if err != nil {
		log.Fatalf("failed to find project root: %v", err)
	}
	log.Printf("Project root: %s", root)

	for _, g := range selected {
		dir := filepath.Join(append([]string{root}, g.dir...)...)
		if *outDir != "" && len(selected) == 1 {
			dir = *outDir
		}

		if *check {
			if err := checkFresh(g, dir); err != nil {
				log.Fatalf("%s docs: %v", g.name, err)
			}
			continue
		}
		if err := g.run(dir); err != nil {
			log.Fatalf("failed to generate %s docs: %v", g.name, err)
		}
	}

	log.Println("Done!")
}

func selectGenerators(name string) ([]generator, error) {
	if name == "all" {
		return generators, nil
	}
	for _, g := range generators {
		if g.name == name {
			return []generator{g}, nil
		}
	}
	return nil, fmt.Errorf("unknown -gen value: %s (use: cli, config, all)", name)
}

var errStale = errors.New("out of date; run go run ./scripts/gendocs")

// checkFresh renders g into a scratch dir and compares every file with dir.
func checkFresh(g generator, dir string) error {
	tmp, err := os.MkdirTemp("", "gendocs-"+g.name)
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	if err := g.run(tmp); err != nil {
		return err
	}
	return filepath.WalkDir(tmp, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(tmp, path)
		want, _ := os.ReadFile(path)
		got, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil || !bytes.Equal(want, got) {
			return fmt.Errorf("%s: %w", rel, errStale)
		}
		return nil
	})
}

// findProjectRoot walks up from the working directory to the nearest go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
