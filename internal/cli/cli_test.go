package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/contribproof/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	configureViper(v)
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DLP_ID", "")
	t.Setenv("USER_EMAIL", "")

	cfg, err := loadConfig(newTestViper())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Run("prefixed variables", func(t *testing.T) {
		t.Setenv("CONTRIBPROOF_DLP_ID", "42")
		t.Setenv("CONTRIBPROOF_INPUT_DIR", "/data/in")
		t.Setenv("CONTRIBPROOF_ORACLE_TIMEOUT", "5s")
		t.Setenv("CONTRIBPROOF_ORACLE_CONFIRM_PATH", "result.verified")

		cfg, err := loadConfig(newTestViper())
		require.NoError(t, err)
		assert.Equal(t, 42, cfg.DLPID)
		assert.Equal(t, "/data/in", cfg.Input.Dir)
		assert.Equal(t, 5*time.Second, cfg.Oracle.Timeout)
		assert.Equal(t, "result.verified", cfg.Oracle.ConfirmPath)
	})

	t.Run("compatibility aliases", func(t *testing.T) {
		t.Setenv("CONTRIBPROOF_DLP_ID", "")
		t.Setenv("DLP_ID", "7")
		t.Setenv("USER_EMAIL", "someone@example.com")

		cfg, err := loadConfig(newTestViper())
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.DLPID)
		assert.Equal(t, "someone@example.com", cfg.UserEmail)
	})

	t.Run("prefixed wins over alias", func(t *testing.T) {
		t.Setenv("CONTRIBPROOF_DLP_ID", "9")
		t.Setenv("DLP_ID", "7")

		cfg, err := loadConfig(newTestViper())
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.DLPID)
	})
}

func TestLoadConfig_ConfigFile(t *testing.T) {
	t.Setenv("DLP_ID", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dlp_id: 55
output:
  dir: /tmp/proofs
oracle:
  max_attempts: 5
  backoff: 250ms
`), 0o644))

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 55, cfg.DLPID)
	assert.Equal(t, "/tmp/proofs", cfg.Output.Dir)
	assert.Equal(t, "results.json", cfg.Output.File)
	assert.Equal(t, 5, cfg.Oracle.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Oracle.Backoff)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("CONTRIBPROOF_DLP_ID", "-1")

	_, err := loadConfig(newTestViper())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dlp_id")
	assert.Equal(t, ExitUnexpected, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
		kind string
	}{
		{nil, ExitOK, "unexpected"},
		{&model.NoInputError{Dir: "/input"}, ExitNoInput, "no_input"},
		{fmt.Errorf("stage: %w", &model.MalformedInputError{Reason: "x"}), ExitMalformed, "malformed_input"},
		{&model.VerificationServiceError{Reason: "down"}, ExitVerification, "verification_service"},
		{errors.New("disk full"), ExitUnexpected, "unexpected"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
		if tt.err != nil {
			assert.Equal(t, tt.kind, errorKind(tt.err))
		}
	}
}

func TestRunGuarded_Panic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := logger
	logger = zap.New(core)
	t.Cleanup(func() { logger = prev })

	err := runGuarded(func() error { panic("dimension exploded") })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension exploded")
	assert.Equal(t, ExitUnexpected, ExitCode(err))
	assert.Equal(t, "unexpected", errorKind(err))

	entries := logs.FilterMessage("Panic during proof generation").All()
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ContextMap()["stack"])
}

func TestRunGuarded_PassesThrough(t *testing.T) {
	want := &model.NoInputError{Dir: "/input"}
	err := runGuarded(func() error { return want })
	assert.Same(t, want, err)
	assert.Equal(t, ExitNoInput, ExitCode(err))

	assert.NoError(t, runGuarded(func() error { return nil }))
}

func TestInitConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".contribproof", "config.yaml")
	require.NoError(t, initConfigFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got model.Config
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, *model.DefaultConfig(), got)

	// The written file must round-trip through viper too
	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig().Oracle, cfg.Oracle)

	err = initConfigFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestWriteConfigYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeConfigYAML(&buf, model.DefaultConfig()))

	out := buf.String()
	assert.Contains(t, out, "dlp_id: 107")
	assert.Contains(t, out, "timeout: 30s")
	assert.Contains(t, out, "prefix: vana_")
}
