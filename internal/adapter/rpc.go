package adapter

import (
	"context"

	ethrpc "github.com/ethereum/go-ethereum/rpc"
)

// RPCCaller defines the JSON-RPC surface the ledger client needs, so tests
// can substitute a fake endpoint.
type RPCCaller interface {
	// CallContext performs a JSON-RPC call with positional params and
	// unmarshals the result into result.
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error

	// Close closes the underlying connection.
	Close()
}

// RPCDialer opens JSON-RPC connections.
type RPCDialer interface {
	Dial(ctx context.Context, url string) (RPCCaller, error)
}

type realRPCDialer struct{}

// NewRPCDialer creates a dialer backed by go-ethereum's chain-agnostic
// JSON-RPC 2.0 client.
func NewRPCDialer() RPCDialer {
	return &realRPCDialer{}
}

func (d *realRPCDialer) Dial(ctx context.Context, url string) (RPCCaller, error) {
	return ethrpc.DialContext(ctx, url)
}
