package ledger

import (
	"context"
	"encoding/base64"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritrace/supplyview/internal/adapter"
	"github.com/veritrace/supplyview/internal/domain"
)

// fakeRPC substitutes the JSON-RPC connection so no test touches a network.
type fakeRPC struct {
	handler func(result any, method string, args ...any) error
	calls   []string
	closed  bool
}

func (f *fakeRPC) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	f.calls = append(f.calls, method)
	return f.handler(result, method, args...)
}

func (f *fakeRPC) Close() {
	f.closed = true
}

type fakeDialer struct {
	rpc adapter.RPCCaller
	err error
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (adapter.RPCCaller, error) {
	return d.rpc, d.err
}

func testConfig() Config {
	return Config{
		Endpoint:  "http://localhost:8899",
		ProgramID: testProgramID(),
		Retry: RetryConfig{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     2 * time.Millisecond,
		},
	}
}

func connectFake(t *testing.T, rpc *fakeRPC, opts ...Option) *Client {
	t.Helper()
	client, err := Connect(context.Background(), &fakeDialer{rpc: rpc}, testConfig(), opts...)
	require.NoError(t, err)
	return client
}

func TestConnectValidation(t *testing.T) {
	dialer := &fakeDialer{rpc: &fakeRPC{}}

	t.Run("missing endpoint", func(t *testing.T) {
		cfg := testConfig()
		cfg.Endpoint = ""
		_, err := Connect(context.Background(), dialer, cfg)
		var validation *domain.ValidationError
		require.Error(t, err)
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("missing program id", func(t *testing.T) {
		cfg := testConfig()
		cfg.ProgramID = domain.ZeroAddress
		_, err := Connect(context.Background(), dialer, cfg)
		var validation *domain.ValidationError
		require.Error(t, err)
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("dial failure", func(t *testing.T) {
		_, err := Connect(context.Background(), &fakeDialer{err: errors.New("refused")}, testConfig())
		var connection *domain.ConnectionError
		require.Error(t, err)
		assert.ErrorAs(t, err, &connection)
	})
}

func TestAccountDataNotFound(t *testing.T) {
	rpc := &fakeRPC{handler: func(result any, method string, args ...any) error {
		// getAccountInfo with a null value means the account does not exist
		return nil
	}}
	client := connectFake(t, rpc)

	addr := testAddrByte(9)
	_, err := client.AccountData(context.Background(), addr)

	var notFound *domain.NotFoundError
	require.Error(t, err)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, addr, notFound.Address)
	assert.True(t, domain.IsNotFound(err))
}

func TestAccountDataSuccess(t *testing.T) {
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	rpc := &fakeRPC{handler: func(result any, method string, args ...any) error {
		res, ok := result.(*accountInfoResult)
		require.True(t, ok)
		res.Value = &accountValue{Data: []string{base64.StdEncoding.EncodeToString(payload), "base64"}}
		return nil
	}}
	client := connectFake(t, rpc)

	data, err := client.AccountData(context.Background(), testAddrByte(9))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestReadRetriesConnectionFailures(t *testing.T) {
	failures := 0
	rpc := &fakeRPC{}
	rpc.handler = func(result any, method string, args ...any) error {
		if failures < 2 {
			failures++
			return errors.New("connection reset")
		}
		res := result.(*accountInfoResult)
		res.Value = &accountValue{Data: []string{"", "base64"}}
		return nil
	}
	client := connectFake(t, rpc)

	_, err := client.AccountData(context.Background(), testAddrByte(1))
	require.NoError(t, err)
	assert.Len(t, rpc.calls, 3)
}

func TestReadGivesUpAfterMaxAttempts(t *testing.T) {
	rpc := &fakeRPC{handler: func(result any, method string, args ...any) error {
		return errors.New("connection reset")
	}}
	client := connectFake(t, rpc)

	_, err := client.AccountData(context.Background(), testAddrByte(1))
	var connection *domain.ConnectionError
	require.Error(t, err)
	assert.ErrorAs(t, err, &connection)
	assert.True(t, domain.IsRetryable(err))
	assert.Len(t, rpc.calls, 3)
}

func TestProgramAccountsFiltersByDiscriminator(t *testing.T) {
	entryAddr := testAddrByte(2)
	factory := &domain.Factory{Address: entryAddr, ID: 1, Balance: big.NewInt(10)}
	data, err := EncodeFactory(factory)
	require.NoError(t, err)

	var capturedFilter string
	rpc := &fakeRPC{handler: func(result any, method string, args ...any) error {
		require.Equal(t, "getProgramAccounts", method)
		opts := args[1].(map[string]any)
		filters := opts["filters"].([]any)
		memcmp := filters[0].(map[string]any)["memcmp"].(map[string]any)
		capturedFilter = memcmp["bytes"].(string)

		res := result.(*[]programAccountResult)
		*res = []programAccountResult{{
			Pubkey:  entryAddr.String(),
			Account: accountValue{Data: []string{base64.StdEncoding.EncodeToString(data), "base64"}},
		}}
		return nil
	}}
	client := connectFake(t, rpc)

	entries, err := client.ProgramAccounts(context.Background(), DiscFactory)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entryAddr, entries[0].Address)
	assert.Equal(t, data, entries[0].Data)
	assert.Equal(t, base58.Encode(DiscFactory[:]), capturedFilter)
}

func TestSendTransactionNotRetried(t *testing.T) {
	rpc := &fakeRPC{handler: func(result any, method string, args ...any) error {
		return errors.New("connection reset")
	}}
	client := connectFake(t, rpc)

	_, err := client.SendTransaction(context.Background(), []byte{1, 2, 3})
	var connection *domain.ConnectionError
	require.Error(t, err)
	assert.ErrorAs(t, err, &connection)
	// A submission is never idempotent, so exactly one attempt goes out
	assert.Len(t, rpc.calls, 1)
}

func TestClientClose(t *testing.T) {
	rpc := &fakeRPC{handler: func(result any, method string, args ...any) error { return nil }}
	client := connectFake(t, rpc)
	client.Close()
	assert.True(t, rpc.closed)
}
