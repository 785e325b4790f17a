package ledger

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"github.com/veritrace/supplyview/internal/adapter"
	"github.com/veritrace/supplyview/internal/domain"
	"github.com/veritrace/supplyview/internal/logger"
)

// Commitment is the read staleness/finality tier.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// RetryConfig bounds the backoff policy applied to connection-class read
// failures. Decode and validation failures are never retried, and neither is
// transaction submission.
type RetryConfig struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Config holds the connection parameters. Program identifier and endpoint
// are externally supplied, never derived.
type Config struct {
	Endpoint       string
	ProgramID      domain.Address
	Commitment     Commitment
	RequestTimeout time.Duration
	Retry          RetryConfig
}

// AccountEntry is one raw program account as returned by an ownership scan.
type AccountEntry struct {
	Address domain.Address
	Data    []byte
}

// Client is a handle to the ledger's RPC endpoint at a fixed commitment
// level. A handle is read-only unless constructed with WithSigner; it holds
// no session state beyond the underlying connection.
type Client struct {
	rpc        adapter.RPCCaller
	programID  domain.Address
	commitment Commitment
	timeout    time.Duration
	retry      RetryConfig
	signer     Signer
	recent     *BlockhashProvider
}

// Option configures a Client.
type Option func(*Client)

// WithSigner binds a signing capability, switching the handle into signing
// mode. Constructing the handle does not contact the network on its own.
func WithSigner(s Signer) Option {
	return func(c *Client) {
		c.signer = s
	}
}

// Connect dials the RPC endpoint and returns a connection handle.
func Connect(ctx context.Context, dialer adapter.RPCDialer, cfg Config, opts ...Option) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, &domain.ValidationError{Reason: "ledger endpoint is required"}
	}
	if cfg.ProgramID.IsZero() {
		return nil, &domain.ValidationError{Reason: "program identifier is required"}
	}

	caller, err := dialer.Dial(ctx, cfg.Endpoint)
	if err != nil {
		return nil, &domain.ConnectionError{Op: "dial", Err: err}
	}

	c := &Client{
		rpc:        caller,
		programID:  cfg.ProgramID,
		commitment: cfg.Commitment,
		timeout:    cfg.RequestTimeout,
		retry:      cfg.Retry,
	}
	if c.commitment == "" {
		c.commitment = CommitmentConfirmed
	}
	if c.timeout <= 0 {
		c.timeout = 15 * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.recent == nil {
		c.recent = NewBlockhashProvider(c, BlockhashConfig{
			TTL:         10 * time.Second,
			StaleWindow: 30 * time.Second,
		}, adapter.NewClock())
	}
	return c, nil
}

// WithBlockhashProvider overrides the recent-blockhash cache, mainly for
// tests that need a controllable clock.
func WithBlockhashProvider(p *BlockhashProvider) Option {
	return func(c *Client) {
		c.recent = p
	}
}

// ProgramID returns the program this handle is scoped to.
func (c *Client) ProgramID() domain.Address {
	return c.programID
}

// Signer returns the bound signing capability, or nil for a read-only handle.
func (c *Client) Signer() Signer {
	return c.signer
}

// Identity returns the signer's address, or the placeholder identity for a
// read-only handle.
func (c *Client) Identity() domain.Address {
	if c.signer == nil {
		return domain.ZeroAddress
	}
	return c.signer.Identity()
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// accountInfoResult mirrors the getAccountInfo response envelope.
type accountInfoResult struct {
	Value *accountValue `json:"value"`
}

type accountValue struct {
	Data     []string `json:"data"`
	Owner    string   `json:"owner"`
	Lamports uint64   `json:"lamports"`
}

// programAccountResult mirrors one entry of a getProgramAccounts response.
type programAccountResult struct {
	Pubkey  string       `json:"pubkey"`
	Account accountValue `json:"account"`
}

// blockhashResult mirrors the getLatestBlockhash response envelope.
type blockhashResult struct {
	Value struct {
		Blockhash string `json:"blockhash"`
	} `json:"value"`
}

// AccountData fetches and returns one account's raw bytes. Absent accounts
// yield a NotFoundError carrying the queried address; the entity kind is
// filled in by the repository that knows it.
func (c *Client) AccountData(ctx context.Context, addr domain.Address) ([]byte, error) {
	var res accountInfoResult
	err := c.call(ctx, &res, "getAccountInfo", addr.String(), map[string]any{
		"encoding":   "base64",
		"commitment": string(c.commitment),
	})
	if err != nil {
		return nil, err
	}
	if res.Value == nil {
		return nil, &domain.NotFoundError{Address: addr}
	}
	return decodeAccountData(res.Value.Data)
}

// ProgramAccounts scans every account owned by the program whose data begins
// with the given discriminator. Filtering happens server-side by memcmp at
// offset zero; decode still re-verifies the tag.
func (c *Client) ProgramAccounts(ctx context.Context, disc Discriminator) ([]AccountEntry, error) {
	var res []programAccountResult
	err := c.call(ctx, &res, "getProgramAccounts", c.programID.String(), map[string]any{
		"encoding":   "base64",
		"commitment": string(c.commitment),
		"filters": []any{
			map[string]any{
				"memcmp": map[string]any{
					"offset": 0,
					"bytes":  base58.Encode(disc[:]),
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	entries := make([]AccountEntry, 0, len(res))
	for _, item := range res {
		addr, err := domain.ParseAddress(item.Pubkey)
		if err != nil {
			return nil, err
		}
		data, err := decodeAccountData(item.Account.Data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, AccountEntry{Address: addr, Data: data})
	}
	return entries, nil
}

// LatestBlockhash fetches the recent blockhash required by a transaction
// message.
func (c *Client) LatestBlockhash(ctx context.Context) ([32]byte, error) {
	var hash [32]byte
	var res blockhashResult
	err := c.call(ctx, &res, "getLatestBlockhash", map[string]any{
		"commitment": string(c.commitment),
	})
	if err != nil {
		return hash, err
	}
	raw, err := base58.Decode(res.Value.Blockhash)
	if err != nil || len(raw) != 32 {
		return hash, &domain.ConnectionError{Op: "getLatestBlockhash", Err: fmt.Errorf("malformed blockhash %q", res.Value.Blockhash)}
	}
	copy(hash[:], raw)
	return hash, nil
}

// SendTransaction submits a signed wire transaction and returns its base58
// signature. Submission is single-shot: acceptance does not imply
// confirmation, and the call is never retried because a duplicate submission
// is not idempotent.
func (c *Client) SendTransaction(ctx context.Context, wire []byte) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var signature string
	err := c.rpc.CallContext(callCtx, &signature, "sendTransaction",
		base64.StdEncoding.EncodeToString(wire),
		map[string]any{"encoding": "base64"},
	)
	if err != nil {
		return "", &domain.ConnectionError{Op: "sendTransaction", Err: err}
	}
	return signature, nil
}

// call performs a read RPC under the bounded timeout and retry policy.
// Only connection-class failures are retried; everything the server answers
// is returned as-is.
func (c *Client) call(ctx context.Context, result any, method string, args ...any) error {
	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		if err := c.rpc.CallContext(callCtx, result, method, args...); err != nil {
			logger.WarnCtx(ctx, "ledger read failed, retrying",
				zap.String("method", method),
				zap.Error(err))
			return &domain.ConnectionError{Op: method, Err: err}
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	if c.retry.InitialInterval > 0 {
		policy.InitialInterval = c.retry.InitialInterval
	}
	if c.retry.MaxInterval > 0 {
		policy.MaxInterval = c.retry.MaxInterval
	}

	attempts := c.retry.MaxAttempts
	if attempts == 0 {
		attempts = 3
	}

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, attempts-1), ctx))
}

// decodeAccountData unwraps the [payload, encoding] tuple of an RPC account
// response.
func decodeAccountData(tuple []string) ([]byte, error) {
	if len(tuple) != 2 || tuple[1] != "base64" {
		return nil, &domain.ConnectionError{Op: "decode account data", Err: fmt.Errorf("unexpected data envelope %v", tuple)}
	}
	data, err := base64.StdEncoding.DecodeString(tuple[0])
	if err != nil {
		return nil, &domain.ConnectionError{Op: "decode account data", Err: err}
	}
	return data, nil
}
