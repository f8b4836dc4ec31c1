//go:build mage

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir   = "bin"
	binary   = "sarifview"
	sarifDir = ".sarif"
	pkgPath  = "github.com/dkoosis/sarifview/internal/version"
)

// Default target - build the binary
var Default = Build

// Build compiles bin/sarifview with version metadata.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", filepath.Join(binDir, binary), "./cmd/sarifview")
}

// Install installs sarifview into GOBIN.
func Install() error {
	return sh.RunV("go", "install", "-ldflags", ldflags(), "./cmd/sarifview")
}

// Clean removes build artifacts and generated SARIF reports.
func Clean() error {
	for _, dir := range []string{binDir, sarifDir} {
		if err := sh.Rm(dir); err != nil {
			return err
		}
	}
	return nil
}

type Test mg.Namespace

// All runs the unit tests.
func (Test) All() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs the tests with the race detector.
func (Test) Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Coverage writes coverage.out and prints the per-function summary.
func (Test) Coverage() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

type Lint mg.Namespace

// All runs every linter.
func (Lint) All() {
	mg.SerialDeps(Lint.Vet, Lint.Golangci)
}

// Vet runs go vet and stores its findings as .sarif/govet.sarif.
func (Lint) Vet() error {
	mg.Deps(Build)
	var diags bytes.Buffer
	ran, err := sh.Exec(nil, os.Stdout, &diags, "go", "vet", "./...")
	if !ran {
		return err
	}
	return writeSarif("govet", diags.String())
}

// Golangci runs golangci-lint with SARIF output into .sarif/.
func (Lint) Golangci() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Fprintln(os.Stderr, "golangci-lint not found (install: go install github.com/golangci/golangci-lint/v2/cmd/golangci-lint@latest)")
		return nil
	}
	if err := os.MkdirAll(sarifDir, 0o755); err != nil {
		return err
	}
	err := sh.RunV("golangci-lint", "run",
		"--output.sarif.path="+filepath.Join(sarifDir, "golangci-lint.sarif"),
		"--output.text.path=stdout",
		"./...")
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// findings are reported through the SARIF file
		return nil
	}
	return err
}

// writeSarif pipes compiler-style diagnostics through `sarifview wrap sarif`.
func writeSarif(tool, diagnostics string) error {
	if err := os.MkdirAll(sarifDir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(sarifDir, tool+".sarif"))
	if err != nil {
		return err
	}
	defer f.Close()

	cmd := exec.Command(filepath.Join(binDir, binary), "wrap", "sarif", "--tool", tool)
	cmd.Stdin = strings.NewReader(diagnostics)
	cmd.Stdout = f
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func ldflags() string {
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "unknown"
	}
	tag, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		tag = "dev"
	}
	return strings.Join([]string{
		"-X " + pkgPath + ".Version=" + tag,
		"-X " + pkgPath + ".CommitHash=" + commit,
		"-X " + pkgPath + ".BuildDate=" + time.Now().UTC().Format(time.RFC3339),
	}, " ")
}
