package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"codeberg.org/snonux/cargo-check-i18n/internal/cli"
)

func main() {
	// A .env file in the working directory may carry the API key
	_ = godotenv.Load()

	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	exitCode := 0
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		projectDir, cargoArgs := cli.SplitArgs(cmd, args)
		code, err := cli.NewApp(flags).Run(ctx, projectDir, cargoArgs)
		exitCode = code
		return err
	}

	// Execute command
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
