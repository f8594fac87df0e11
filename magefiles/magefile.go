//go:build mage

// Package main contains Mage build targets for semantic-corpus developer tooling.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	binDir  = "bin"
	binName = "semantic-corpus"
	cmdPkg  = "./cmd/semantic-corpus"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	cmd := exec.Command("go", "build", "-o", out, cmdPkg)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the full test suite.
func Test() error {
	cmd := exec.Command("go", "test", "./...")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go test: %w", err)
	}
	return nil
}

// Demo creates a throwaway structured corpus under tmp/demo-corpus and
// prints the commands to explore it.
func Demo() error {
	if err := Build(); err != nil {
		return err
	}
	if err := os.MkdirAll("tmp", 0o755); err != nil {
		return fmt.Errorf("creating tmp: %w", err)
	}

	bin := filepath.Join(binDir, binName)
	cmd := exec.Command(bin, "create",
		"--corpus", "tmp/demo-corpus",
		"--mode", "structured",
		"--org", "Demo Lab",
		"--description", "Throwaway demo corpus")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("creating demo corpus: %w", err)
	}

	fmt.Println("Try:")
	fmt.Printf("  %s --corpus tmp/demo-corpus add demo_001 --title 'Demo Paper'\n", bin)
	fmt.Printf("  %s --corpus tmp/demo-corpus validate\n", bin)
	return nil
}

// Stats prints production and test line counts for the module.
func Stats() error {
	prod, test := 0, 0
	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if name == "bin" || name == "tmp" || strings.HasPrefix(name, ".") && name != "." {
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
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", test)
	return nil
}
