package cli

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/contribproof/internal/model"
	"github.com/ppiankov/contribproof/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Exit codes reported by the binary
const (
	ExitOK           = 0
	ExitUnexpected   = 1
	ExitNoInput      = 2
	ExitMalformed    = 3
	ExitVerification = 4
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate the proof of contribution",
	Long: `Run executes one proof generation pass:
- Find the single input record named with the reserved prefix
- Extract walletAddress and fileHash from it
- Ask the oracle to confirm the claim
- Score the verdict and write the proof document

Example:
  contribproof run
  contribproof run --input-dir ./input --output-dir ./output --dlp-id 107
  DLP_ID=42 contribproof run --oracle-timeout 10s`,
	Args: cobra.NoArgs,
	RunE: runProof,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runProof(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	base := logger
	if base == nil {
		base = zap.NewNop()
	}
	log := base.With(zap.String("run_id", uuid.NewString()))
	log.Info("Using config",
		zap.Int("dlp_id", cfg.DLPID),
		zap.String("input_dir", cfg.Input.Dir),
		zap.String("output_dir", cfg.Output.Dir),
		zap.String("oracle_url", cfg.Oracle.URL),
		zap.Duration("oracle_timeout", cfg.Oracle.Timeout),
		zap.Int("oracle_max_attempts", cfg.Oracle.MaxAttempts),
		zap.Bool("user_email_set", cfg.UserEmail != ""))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p := pipeline.NewPipeline(cfg, log)
	defer p.Close()

	start := time.Now()
	doc, err := p.Run(ctx)
	if err != nil {
		return err
	}

	log.Info("Proof generation complete",
		zap.Bool("valid", doc.Valid),
		zap.Float64("score", float64(doc.Score)),
		zap.String("output", p.OutputPath()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// ExitCode maps a run error to the process exit code
func ExitCode(err error) int {
	var (
		noInput   *model.NoInputError
		malformed *model.MalformedInputError
		verify    *model.VerificationServiceError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &noInput):
		return ExitNoInput
	case errors.As(err, &malformed):
		return ExitMalformed
	case errors.As(err, &verify):
		return ExitVerification
	default:
		return ExitUnexpected
	}
}

// errorKind names the error class for logs
func errorKind(err error) string {
	switch ExitCode(err) {
	case ExitNoInput:
		return "no_input"
	case ExitMalformed:
		return "malformed_input"
	case ExitVerification:
		return "verification_service"
	default:
		return "unexpected"
	}
}
