package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/cargo-check-i18n/internal"
	"codeberg.org/snonux/cargo-check-i18n/internal/config"
)

// EnvPrefix is prepended to every config key looked up in the environment
const EnvPrefix = "CARGO_CHECK_I18N"

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   internal.ToolName + " [project-dir] [-- cargo-args...]",
		Short: "Translate Rust compiler diagnostics while cargo runs",
		Long: `cargo-check-i18n runs cargo in a project directory and annotates every
diagnostic line with a translation into the configured language.

Translations come from an OpenAI-compatible chat completions endpoint and
are cached per project in .cargo-check-i18n-cache.json.

Examples:
  cargo-check-i18n                         # cargo check in the current directory
  cargo-check-i18n ../my-crate             # cargo check in another project
  cargo-check-i18n --subcommand build -- --release
  cargo-check-i18n --input build.log       # translate a captured log
  cargo-check-i18n --seed glossary.txt     # import hand-written translations first`,
		Args:          projectArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

// projectArgs allows at most one positional argument before "--"
func projectArgs(cmd *cobra.Command, args []string) error {
	n := cmd.ArgsLenAtDash()
	if n < 0 {
		n = len(args)
	}
	if n > 1 {
		return fmt.Errorf("accepts at most 1 project directory, received %d", n)
	}
	return nil
}

// SplitArgs separates the project directory from the arguments passed
// through to cargo after "--"
func SplitArgs(cmd *cobra.Command, args []string) (string, []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		dash = len(args)
	}

	projectDir := "."
	if dash > 0 {
		projectDir = args[0]
	}
	return projectDir, args[dash:]
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// --rate_limit is accepted like the config key rate_limit
	cmd.Flags().SetNormalizeFunc(normalizeFlagName)

	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is "+config.DefaultPath()+")")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log debug messages to stderr")

	// Local flags
	cmd.Flags().StringVarP(&flags.Subcommand, "subcommand", "s", flags.Subcommand, "Cargo subcommand to run (check, build, clippy, ...)")
	cmd.Flags().BoolVar(&flags.NoCache, "no-cache", false, "Do not read or write the project's translation cache")
	cmd.Flags().StringVarP(&flags.InputFile, "input", "i", "", "Translate a captured build log instead of running cargo (- for stdin)")
	cmd.Flags().StringVar(&flags.SeedFile, "seed", "", "Import hand-written translations (one 'diagnostic => translation' per line) before running")
	cmd.Flags().BoolVar(&flags.ArchiveCache, "archive-cache", false, "Move the project's translation cache into the archive directory and exit")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List the models offered by the configured endpoint and exit")
	cmd.Flags().BoolVar(&flags.Stats, "stats", false, "Print run counters to stderr on exit")

	// Config overrides
	cmd.Flags().StringVarP(&flags.Language, "language", "l", flags.Language, "Target language of the translations")
	cmd.Flags().StringVarP(&flags.Model, "model", "m", flags.Model, "Model name sent to the endpoint")
	cmd.Flags().IntVar(&flags.RateLimit, "rate-limit", flags.RateLimit, "Maximum translation requests per second")
	cmd.Flags().IntVar(&flags.Timeout, "timeout", flags.Timeout, "Seconds before a translation request is abandoned")
	cmd.Flags().IntVar(&flags.BreakerFailures, "breaker-failures", flags.BreakerFailures, "Pause translation requests after this many consecutive failures (0 disables)")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag(config.KeyLanguage, cmd.Flags().Lookup("language"))
	viper.BindPFlag(config.KeyModel, cmd.Flags().Lookup("model"))
	viper.BindPFlag(config.KeyRateLimit, cmd.Flags().Lookup("rate-limit"))
	viper.BindPFlag(config.KeyTimeout, cmd.Flags().Lookup("timeout"))
	viper.BindPFlag(config.KeyBreakerFailures, cmd.Flags().Lookup("breaker-failures"))
}

// ConfigPath returns the config file used for cfgFile, which may be empty
func ConfigPath(cfgFile string) string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

// InitConfig initializes viper configuration. It returns config.ErrNotFound
// when the config file does not exist.
func InitConfig(cfgFile string) error {
	path := ConfigPath(cfgFile)
	if !config.Exists(path) {
		return fmt.Errorf("%w: %s", config.ErrNotFound, path)
	}

	viper.SetConfigFile(path)
	viper.SetConfigType("toml")

	// Environment variables, e.g. CARGO_CHECK_I18N_API_KEY
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads the config file and returns the run's settings
func LoadConfig(cfgFile string) (*config.Config, error) {
	if err := InitConfig(cfgFile); err != nil {
		return nil, err
	}
	return config.FromViper(viper.GetViper()), nil
}
