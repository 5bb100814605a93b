package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Smoke builds the CLI and renders every PDF in samples/in to samples/out.
// It needs a Ghostscript binary on PATH.
func Smoke() error {
	mg.Deps(Init, Build)

	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, "batch", "samples/in", "--out-dir", "samples/out", "--resolution", "72"); err != nil {
		return fmt.Errorf("smoke batch: %w", err)
	}
	fmt.Println("Smoke run complete; images are in samples/out.")
	return nil
}
