package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ppiankov/contribproof/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string
	verbose bool
	logger  *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "contribproof",
	Short: "contribproof - proof-of-contribution generator for a data pool",
	Long: `contribproof verifies a single data contribution and emits a proof of
contribution for the pool's registration process.

It locates the one eligible input record, extracts the wallet address and
file hash it claims, asks the ownership oracle to confirm the claim, scores
the result and writes the proof document as JSON.

The contribution payload never leaves the machine: only the wallet address
and file hash are sent to the oracle.

Run without a subcommand to generate the proof.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		zcfg.EncoderConfig.TimeKey = "time"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	RunE: runProof,
}

// Execute runs the root command and logs any failure
func Execute() error {
	err := runGuarded(rootCmd.Execute)
	if err != nil {
		if logger != nil {
			logger.Error("Proof generation failed",
				zap.String("kind", errorKind(err)),
				zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}

// runGuarded converts a panic in fn into an error so it gets an exit code
func runGuarded(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Error("Panic during proof generation",
					zap.Any("panic", r),
					zap.Stack("stack"))
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("contribproof v" + model.Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.contribproof/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Run settings, shared by the root command and `run`
	flags.Int("dlp-id", 0, "data pool identifier written to the proof")
	flags.String("input-dir", "", "directory holding the input record")
	flags.String("input-prefix", "", "reserved file name prefix of eligible records")
	flags.String("output-dir", "", "directory the proof document is written to")
	flags.String("oracle-url", "", "verification endpoint")
	flags.Duration("oracle-timeout", 0, "timeout for a single oracle attempt")
	flags.Int("max-attempts", 0, "maximum oracle attempts for transient failures")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"verbose":             "verbose",
		"dlp_id":              "dlp-id",
		"input.dir":           "input-dir",
		"input.prefix":        "input-prefix",
		"output.dir":          "output-dir",
		"oracle.url":          "oracle-url",
		"oracle.timeout":      "oracle-timeout",
		"oracle.max_attempts": "max-attempts",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in the .env file, config file and environment variables
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home + "/.contribproof")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	configureViper(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: failed to read config file %s: %v\n", cfgFile, err)
	}
}

// configureViper registers defaults and environment bindings.
// Env vars are CONTRIBPROOF_<KEY> with dots replaced by underscores; DLP_ID and
// USER_EMAIL are also honored for compatibility with existing deployments.
func configureViper(v *viper.Viper) {
	def := model.DefaultConfig()
	v.SetDefault("dlp_id", def.DLPID)
	v.SetDefault("user_email", def.UserEmail)
	v.SetDefault("input.dir", def.Input.Dir)
	v.SetDefault("input.prefix", def.Input.Prefix)
	v.SetDefault("output.dir", def.Output.Dir)
	v.SetDefault("output.file", def.Output.File)
	v.SetDefault("oracle.url", def.Oracle.URL)
	v.SetDefault("oracle.confirm_path", def.Oracle.ConfirmPath)
	v.SetDefault("oracle.timeout", def.Oracle.Timeout)
	v.SetDefault("oracle.max_attempts", def.Oracle.MaxAttempts)
	v.SetDefault("oracle.backoff", def.Oracle.Backoff)
	v.SetDefault("oracle.max_body_bytes", def.Oracle.MaxBodyBytes)
	v.SetDefault("oracle.requests_per_second", def.Oracle.RequestsPerSecond)
	v.SetDefault("oracle.burst", def.Oracle.Burst)
	v.SetDefault("oracle.user_agent", def.Oracle.UserAgent)
	v.SetDefault("http.http_proxy", def.HTTP.HTTPProxy)
	v.SetDefault("http.https_proxy", def.HTTP.HTTPSProxy)
	v.SetDefault("http.no_proxy", def.HTTP.NoProxy)

	v.SetEnvPrefix("CONTRIBPROOF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("dlp_id", "CONTRIBPROOF_DLP_ID", "DLP_ID")
	_ = v.BindEnv("user_email", "CONTRIBPROOF_USER_EMAIL", "USER_EMAIL")
}

// loadConfig builds the effective configuration from v
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
