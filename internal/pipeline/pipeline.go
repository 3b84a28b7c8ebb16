package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/contribproof/internal/input"
	"github.com/ppiankov/contribproof/internal/model"
	"github.com/ppiankov/contribproof/internal/oracle"
	"github.com/ppiankov/contribproof/internal/proof"
	"github.com/ppiankov/contribproof/internal/score"
	"go.uber.org/zap"
)

// Pipeline runs one proof generation pass
type Pipeline struct {
	resolver *input.Resolver
	verifier oracle.Verifier
	engine   *score.Engine
	renderer *Renderer
	config   model.Config
	logger   *zap.Logger
}

// Option customizes a pipeline
type Option func(*Pipeline)

// WithVerifier replaces the HTTP oracle client
func WithVerifier(v oracle.Verifier) Option {
	return func(p *Pipeline) { p.verifier = v }
}

// WithEngine replaces the default scoring engine
func WithEngine(e *score.Engine) Option {
	return func(p *Pipeline) { p.engine = e }
}

// NewPipeline creates a pipeline with the given configuration.
// The configuration is copied; later changes to cfg do not affect the pipeline.
func NewPipeline(cfg *model.Config, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pipeline{
		resolver: input.NewResolver(cfg.Input.Prefix, logger),
		engine:   score.NewEngine(),
		renderer: NewRenderer(),
		config:   *cfg,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.verifier == nil {
		p.verifier = oracle.NewClient(cfg.Oracle, cfg.HTTP, logger)
	}
	return p
}

// OutputPath returns where the proof document is written
func (p *Pipeline) OutputPath() string {
	return filepath.Join(p.config.Output.Dir, p.config.Output.File)
}

// Run generates the proof and writes it to OutputPath. Any stage failure aborts the
// run and leaves no document at OutputPath, including one from an earlier run.
func (p *Pipeline) Run(ctx context.Context) (*model.ProofDocument, error) {
	outPath := p.OutputPath()
	if err := os.Remove(outPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale proof: %w", err)
	}

	doc, err := p.Generate(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.renderer.RenderJSON(doc, outPath); err != nil {
		return nil, fmt.Errorf("render proof: %w", err)
	}
	p.logger.Info("Proof written", zap.String("path", outPath))

	return doc, nil
}

// Generate runs resolve, parse, verify, score and assemble without touching the output
func (p *Pipeline) Generate(ctx context.Context) (*model.ProofDocument, error) {
	p.logger.Info("Starting proof generation", zap.String("input_dir", p.config.Input.Dir))

	// 1. Locate the input record
	if err := input.CheckDir(p.config.Input.Dir); err != nil {
		return nil, err
	}
	path, err := p.resolver.Resolve(p.config.Input.Dir)
	if err != nil {
		return nil, err
	}

	// 2. Extract the ownership claim
	claim, err := input.ParseFile(path)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Loaded claim",
		zap.String("record", filepath.Base(path)),
		zap.String("wallet", claim.WalletAddress),
		zap.String("file_hash", claim.FileHash))

	// 3. Ask the oracle
	verdict, err := p.verifier.Verify(ctx, claim)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Verification result",
		zap.Bool("confirmed", verdict.Confirmed),
		zap.Int("attempts", verdict.Attempts))

	// 4. Score
	result, err := p.engine.Score(ctx, claim, verdict)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	// 5. Assemble
	doc := proof.Assemble(p.config.DLPID, result)
	p.logger.Info("Proof assembled",
		zap.Int("dlp_id", doc.DLPID),
		zap.Bool("valid", doc.Valid),
		zap.Float64("score", float64(doc.Score)))

	return &doc, nil
}

// Close releases resources held by the default oracle client
func (p *Pipeline) Close() {
	if c, ok := p.verifier.(*oracle.Client); ok {
		c.Close()
	}
}
