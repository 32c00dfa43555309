package cli

import "codeberg.org/snonux/cargo-check-i18n/internal/config"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile      string
	Subcommand   string
	NoCache      bool
	InputFile    string
	SeedFile     string
	ArchiveCache bool
	ListModels   bool
	Stats        bool
	Verbose      bool

	// Overrides for config file settings
	Language        string
	Model           string
	RateLimit       int
	Timeout         int
	BreakerFailures int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Subcommand: "check",
		Language:   config.DefaultLanguage,
		Model:      config.DefaultModel,
		RateLimit:  config.DefaultRateLimit,
		Timeout:    int(config.DefaultTimeout.Seconds()),
	}
}
