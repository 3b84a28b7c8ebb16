// Package oracle queries the external verification service that confirms a
// wallet owns the contributed content.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/contribproof/internal/model"
	"github.com/ppiankov/contribproof/internal/util"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// sleepFunc waits between attempts (injectable for tests)
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Verifier confirms an ownership claim
type Verifier interface {
	Verify(ctx context.Context, claim model.OwnershipClaim) (model.Verdict, error)
}

// Client is the HTTP Verifier for the oracle endpoint
type Client struct {
	httpClient   *http.Client
	endpoint     string
	confirmPath  string
	userAgent    string
	timeout      time.Duration
	maxAttempts  int
	backoff      time.Duration
	maxBodyBytes int64
	pacer        *Pacer
	logger       *zap.Logger
}

// NewClient creates an oracle client from configuration
func NewClient(cfg model.OracleConfig, httpCfg model.HTTPConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
				TLSHandshakeTimeout: 10 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// A redirected POST would silently turn into a GET
				return http.ErrUseLastResponse
			},
		},
		endpoint:     cfg.URL,
		confirmPath:  cfg.ConfirmPath,
		userAgent:    cfg.UserAgent,
		timeout:      cfg.Timeout,
		maxAttempts:  maxAttempts,
		backoff:      cfg.Backoff,
		maxBodyBytes: maxBody,
		pacer:        NewPacer(cfg.RequestsPerSecond, cfg.Burst),
		logger:       logger.With(zap.String("endpoint", cfg.URL)),
	}
}

// Close releases idle connections held by the client
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// verifyRequest is the request body sent to the oracle
type verifyRequest struct {
	WalletAddress string `json:"walletAddress"`
	FileHash      string `json:"fileHash"`
}

// attemptError is a failed attempt and whether another attempt may help
type attemptError struct {
	statusCode int
	reason     string
	err        error
	retryable  bool
}

// Verify posts the claim to the oracle and returns its verdict.
// Network failures, timeouts, 5xx and 429 are retried with exponential backoff up to
// the configured attempt limit; every other failure is terminal. All failures are
// returned as *model.VerificationServiceError.
func (c *Client) Verify(ctx context.Context, claim model.OwnershipClaim) (model.Verdict, error) {
	body, err := json.Marshal(verifyRequest{
		WalletAddress: claim.WalletAddress,
		FileHash:      claim.FileHash,
	})
	if err != nil {
		return model.Verdict{}, c.fail(0, 0, "encode request", err)
	}

	var last *attemptError
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.pacer.Wait(ctx); err != nil {
			return model.Verdict{}, c.fail(0, attempt-1, "cancelled before attempt", err)
		}

		confirmed, status, aerr := c.attempt(ctx, body)
		if aerr == nil {
			c.logger.Debug("Oracle verdict received",
				zap.Bool("confirmed", confirmed),
				zap.Int("status", status),
				zap.Int("attempt", attempt))
			return model.Verdict{
				Confirmed:  confirmed,
				StatusCode: status,
				Attempts:   attempt,
				Endpoint:   c.endpoint,
			}, nil
		}

		last = aerr
		if !aerr.retryable || attempt == c.maxAttempts {
			return model.Verdict{}, c.fail(aerr.statusCode, attempt, aerr.reason, aerr.err)
		}

		delay := c.backoff * time.Duration(1<<uint(attempt-1))
		c.logger.Warn("Oracle attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("status", aerr.statusCode),
			zap.String("reason", aerr.reason),
			zap.Duration("backoff", delay),
			zap.Error(aerr.err))

		if err := sleepFunc(ctx, delay); err != nil {
			return model.Verdict{}, c.fail(aerr.statusCode, attempt, "cancelled during backoff", err)
		}
	}

	// Unreachable while maxAttempts >= 1
	return model.Verdict{}, c.fail(last.statusCode, c.maxAttempts, last.reason, last.err)
}

// attempt performs one bounded request and interprets the response
func (c *Client) attempt(ctx context.Context, body []byte) (bool, int, *attemptError) {
	attemptCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, 0, &attemptError{reason: "create request", err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The caller's own cancellation is never worth another attempt
		if ctx.Err() != nil {
			return false, 0, &attemptError{reason: "request cancelled", err: err}
		}
		if isTimeout(err) {
			return false, 0, &attemptError{reason: fmt.Sprintf("request timed out after %s", c.timeout), err: err, retryable: true}
		}
		return false, 0, &attemptError{reason: "request failed", err: err, retryable: isRetryableNetworkError(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		retryable := isTimeout(err) && ctx.Err() == nil
		return false, resp.StatusCode, &attemptError{statusCode: resp.StatusCode, reason: "read response", err: err, retryable: retryable}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, resp.StatusCode, &attemptError{
			statusCode: resp.StatusCode,
			reason:     "unexpected status " + resp.Status + snippet(data),
			retryable:  isRetryableStatus(resp.StatusCode),
		}
	}

	if int64(len(data)) > c.maxBodyBytes {
		return false, resp.StatusCode, &attemptError{statusCode: resp.StatusCode, reason: fmt.Sprintf("response exceeds %d bytes", c.maxBodyBytes)}
	}

	confirmed, err := c.readConfirmation(data)
	if err != nil {
		return false, resp.StatusCode, &attemptError{statusCode: resp.StatusCode, reason: "malformed response", err: err}
	}
	return confirmed, resp.StatusCode, nil
}

// readConfirmation extracts the boolean verdict at confirmPath
func (c *Client) readConfirmation(data []byte) (bool, error) {
	if !gjson.ValidBytes(data) {
		return false, fmt.Errorf("body is not valid JSON")
	}

	result := gjson.GetBytes(data, c.confirmPath)
	if !result.Exists() {
		return false, fmt.Errorf("field %q not present", c.confirmPath)
	}

	switch result.Type {
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	default:
		return false, fmt.Errorf("field %q is %s, expected a boolean", c.confirmPath, result.Type)
	}
}

func (c *Client) fail(status, attempts int, reason string, err error) *model.VerificationServiceError {
	return &model.VerificationServiceError{
		Endpoint:   c.endpoint,
		StatusCode: status,
		Attempts:   attempts,
		Reason:     reason,
		Err:        err,
	}
}

// isRetryableStatus reports server-side and rate-limit statuses
func isRetryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isRetryableNetworkError matches transient transport failures
func isRetryableNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "eof")
}

// snippet returns a short, single-line excerpt of an error body
func snippet(data []byte) string {
	s := strings.Join(strings.Fields(string(data)), " ")
	if s == "" {
		return ""
	}
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return ": " + s
}
