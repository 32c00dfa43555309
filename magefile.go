//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "cargo-check-i18n"
	mainPkg    = "./cmd/cargo-check-i18n"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the binary into the repository root
func Build() error {
	fmt.Println("Building", binaryName)
	return sh.RunV("go", "build", "-o", binaryName, mainPkg)
}

// Test runs all package tests with the race detector
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Install builds and copies the binary to ~/go/bin
func Install() error {
	mg.Deps(Build)

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dest := filepath.Join(home, "go", "bin", binaryName)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	fmt.Println("Installing to", dest)
	if err := sh.Copy(dest, binaryName); err != nil {
		return err
	}
	return os.Chmod(dest, 0755)
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm(binaryName)
}
