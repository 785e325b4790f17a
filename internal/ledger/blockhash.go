package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/veritrace/supplyview/internal/adapter"
	"github.com/veritrace/supplyview/internal/logger"
)

// blockhashInfo represents a cached recent blockhash
type blockhashInfo struct {
	Hash      [32]byte
	Timestamp time.Time
}

// BlockhashSource is the interface for fetching a recent blockhash from the
// ledger endpoint.
type BlockhashSource interface {
	// LatestBlockhash fetches the current recent blockhash
	LatestBlockhash(ctx context.Context) ([32]byte, error)
}

// BlockhashConfig holds configuration for the BlockhashProvider
type BlockhashConfig struct {
	// TTL is how long to cache the blockhash. The ledger accepts a
	// blockhash for well over a minute, so a short TTL stays safely inside
	// the acceptance window while still coalescing bursts of submissions.
	TTL time.Duration

	// StaleWindow is how long to use stale data if fetching fails
	// If the cached data is older than this and fetch fails, return error
	StaleWindow time.Duration
}

// BlockhashProvider provides cached access to a recent blockhash
// It reduces RPC calls when several operations are submitted close together.
type BlockhashProvider struct {
	source BlockhashSource
	config BlockhashConfig
	clock  adapter.Clock

	mu     sync.RWMutex
	cached *blockhashInfo
}

// NewBlockhashProvider creates a new BlockhashProvider with caching
func NewBlockhashProvider(source BlockhashSource, config BlockhashConfig, clock adapter.Clock) *BlockhashProvider {
	return &BlockhashProvider{
		source: source,
		config: config,
		clock:  clock,
	}
}

// Recent returns a recent blockhash, using cache if valid
func (p *BlockhashProvider) Recent(ctx context.Context) ([32]byte, error) {
	p.mu.RLock()
	cached := p.cached
	p.mu.RUnlock()

	now := p.clock.Now()

	// If cache is valid (within TTL), return cached value
	if cached != nil && now.Sub(cached.Timestamp) < p.config.TTL {
		logger.DebugCtx(ctx, "Using cached blockhash")
		return cached.Hash, nil
	}

	// Cache expired or doesn't exist, fetch fresh data
	logger.DebugCtx(ctx, "Fetching recent blockhash from ledger endpoint")
	hash, err := p.source.LatestBlockhash(ctx)
	if err != nil {
		// If fetch failed, check if we can use stale cache
		if cached != nil && now.Sub(cached.Timestamp) < p.config.StaleWindow {
			logger.DebugCtx(ctx, "Using stale blockhash", zap.Error(err))
			return cached.Hash, nil
		}
		return [32]byte{}, fmt.Errorf("failed to fetch recent blockhash and no valid cache available: %w", err)
	}

	p.mu.Lock()
	p.cached = &blockhashInfo{
		Hash:      hash,
		Timestamp: now,
	}
	p.mu.Unlock()

	return hash, nil
}
