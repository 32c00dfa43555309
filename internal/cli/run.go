package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"codeberg.org/snonux/cargo-check-i18n/internal"
	"codeberg.org/snonux/cargo-check-i18n/internal/cache"
	"codeberg.org/snonux/cargo-check-i18n/internal/config"
	"codeberg.org/snonux/cargo-check-i18n/internal/metrics"
	"codeberg.org/snonux/cargo-check-i18n/internal/models"
	"codeberg.org/snonux/cargo-check-i18n/internal/processor"
	"codeberg.org/snonux/cargo-check-i18n/internal/supervisor"
)

// App carries the flags and standard streams of one invocation
type App struct {
	Flags  *Flags
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Spawner overrides the cargo command, e.g. in tests
	Spawner supervisor.Spawner
}

// NewApp creates an App bound to the process's standard streams
func NewApp(flags *Flags) *App {
	return &App{
		Flags:  flags,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes one invocation and returns the process exit code. An error
// is returned only for failures of the tool itself; the exit code then is 1.
func (a *App) Run(ctx context.Context, projectDir string, cargoArgs []string) (int, error) {
	dir, err := filepath.Abs(projectDir)
	if err != nil {
		return 1, fmt.Errorf("invalid project directory %s: %w", projectDir, err)
	}
	cachePath := internal.CacheFilePath(dir)

	// Handle --archive-cache flag
	if a.Flags.ArchiveCache {
		archived, err := cache.Archive(cachePath)
		if err != nil {
			return 1, err
		}
		fmt.Fprintf(a.Stderr, "Archived translation cache to %s\n", archived)
		return 0, nil
	}

	cfg, err := LoadConfig(a.Flags.CfgFile)
	if errors.Is(err, config.ErrNotFound) {
		return a.bootstrap()
	}
	if err != nil {
		return 1, err
	}

	logger := NewLogger(a.Stderr, a.Flags.Verbose)
	slog.SetDefault(logger)

	// Handle --list-models flag
	if a.Flags.ListModels {
		if err := models.NewLister(cfg).Print(ctx, a.Stdout); err != nil {
			return 1, err
		}
		return 0, nil
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			return 1, fmt.Errorf("%w: set api_key in %s or export %s_API_KEY", err, ConfigPath(a.Flags.CfgFile), EnvPrefix)
		}
		return 1, err
	}

	m := metrics.New()
	if a.Flags.Stats {
		defer m.WriteSummary(a.Stderr)
	}

	var c *cache.Cache
	if a.Flags.NoCache {
		c = cache.New(cache.WithLogger(logger), cache.WithMetrics(m))
	} else {
		c = cache.Load(cachePath, cache.WithLogger(logger), cache.WithMetrics(m))
	}
	logger.Debug("translation cache ready", "path", c.Path(), "entries", c.Len())

	// Handle --seed flag
	if a.Flags.SeedFile != "" {
		entries, err := cache.ReadGlossary(a.Flags.SeedFile)
		if err != nil {
			return 1, err
		}
		if err := c.Seed(entries); err != nil {
			return 1, err
		}
		logger.Debug("seeded translation cache", "file", a.Flags.SeedFile, "entries", len(entries))
	}

	proc := processor.NewProcessor(cfg, c,
		processor.WithLogger(logger),
		processor.WithMetrics(m),
		processor.WithOutput(a.Stdout),
	)

	// Handle --input flag
	if a.Flags.InputFile != "" {
		return a.replay(ctx, proc)
	}

	spawner := a.Spawner
	if spawner == nil {
		spawner = supervisor.Cargo(dir, a.Flags.Subcommand, cargoArgs...)
	}
	return proc.Run(ctx, spawner)
}

// bootstrap writes the config template on first use
func (a *App) bootstrap() (int, error) {
	path := ConfigPath(a.Flags.CfgFile)
	if err := config.WriteTemplate(path); err != nil {
		return 1, err
	}

	fmt.Fprintf(a.Stderr, "Created configuration template at %s\n", path)
	fmt.Fprintln(a.Stderr, "Set api_key there (or export OPENAI_API_KEY) and run again.")
	return 0, nil
}

func (a *App) replay(ctx context.Context, proc *processor.Processor) (int, error) {
	name := a.Flags.InputFile
	r := a.Stdin
	if name == "-" {
		name = "stdin"
	} else {
		f, err := os.Open(name)
		if err != nil {
			return 1, fmt.Errorf("failed to open build log: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := proc.Replay(ctx, name, r); err != nil && !errors.Is(err, context.Canceled) {
		return 1, err
	}
	return 0, nil
}
