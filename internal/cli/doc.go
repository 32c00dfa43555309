// Package cli provides command-line interface setup and configuration
// for cargo-check-i18n. It handles flag parsing, command creation,
// configuration loading with cobra and viper, and wires one run of the
// translation pipeline together.
package cli
