// Package main contains Mage build targets for gs-transcoder developer tooling.
package main

import (
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// sampleDirs lists the working directories used by the Smoke target.
var sampleDirs = []string{
	"samples/in",
	"samples/out",
	"samples/split",
}

// Init creates the sample directory structure.
func Init() error {
	for _, dir := range sampleDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Sample directories initialized. Drop PDFs into samples/in.")
	return nil
}

const (
	binDir  = "bin"
	binName = "gs-transcoder"
	cmdPkg  = "./cmd/gs-transcoder"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Check runs vet and the tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Stats prints non-blank Go lines per package, split into production and
// test code, and the number of files in each sample directory.
func Stats() error {
	type count struct{ prod, test int }
	pkgs := map[string]*count{}
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path == "." {
				return nil
			}
			// Reference trees, dot directories and sample data.
			if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || path == "samples" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				n++
			}
		}
		dir := filepath.Dir(path)
		if pkgs[dir] == nil {
			pkgs[dir] = &count{}
		}
		if strings.HasSuffix(path, "_test.go") {
			pkgs[dir].test += n
		} else {
			pkgs[dir].prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	dirs := slices.Sorted(maps.Keys(pkgs))
	var total count
	for _, dir := range dirs {
		c := pkgs[dir]
		fmt.Printf("%-28s %6d prod %6d test\n", dir, c.prod, c.test)
		total.prod += c.prod
		total.test += c.test
	}
	fmt.Printf("%-28s %6d prod %6d test\n", "total", total.prod, total.test)

	for _, dir := range sampleDirs {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", dir, err)
		}
		fmt.Printf("%-28s %6d files\n", dir, len(entries))
	}
	return nil
}
