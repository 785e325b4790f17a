package ledger

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"math/big"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritrace/supplyview/internal/domain"
)

func testSigner(t *testing.T) Signer {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := NewKeypairSigner(priv)
	require.NoError(t, err)
	return signer
}

func testBlockhash() ([32]byte, string) {
	var hash [32]byte
	for i := range hash {
		hash[i] = byte(0x40 + i)
	}
	return hash, base58.Encode(hash[:])
}

func TestSubmitRejectedOnReadOnlyHandle(t *testing.T) {
	rpc := &fakeRPC{handler: func(result any, method string, args ...any) error {
		t.Fatalf("read-only rejection must not reach the network, got %s", method)
		return nil
	}}
	client := connectFake(t, rpc)

	op, err := UpdatePlatformFee(client.ProgramID(), testAddrByte(1), big.NewInt(250))
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), op)
	var unauthorized *domain.UnauthorizedError
	require.Error(t, err)
	assert.ErrorAs(t, err, &unauthorized)
	assert.Empty(t, rpc.calls)
}

func TestSubmitSignsAndSends(t *testing.T) {
	signer := testSigner(t)
	blockhash, blockhashB58 := testBlockhash()

	var sentWire []byte
	rpc := &fakeRPC{}
	rpc.handler = func(result any, method string, args ...any) error {
		switch method {
		case "getLatestBlockhash":
			res := result.(*blockhashResult)
			res.Value.Blockhash = blockhashB58
		case "sendTransaction":
			encoded := args[0].(string)
			wire, err := base64.StdEncoding.DecodeString(encoded)
			require.NoError(t, err)
			sentWire = wire
			sig := result.(*string)
			*sig = "sig-accepted"
		default:
			t.Fatalf("unexpected RPC method %s", method)
		}
		return nil
	}
	client := connectFake(t, rpc, WithSigner(signer))

	op, err := RegisterUser(client.ProgramID(), signer.Identity(), "alice", "alice@example.com", domain.RoleSeller)
	require.NoError(t, err)

	signature, err := client.Submit(context.Background(), op)
	require.NoError(t, err)
	assert.Equal(t, "sig-accepted", signature)

	// Wire layout: compact-u16 signature count, one 64-byte signature, message
	require.Greater(t, len(sentWire), 65)
	assert.Equal(t, byte(1), sentWire[0])
	sig := sentWire[1:65]
	message := sentWire[65:]

	pub := ed25519.PublicKey(signer.Identity().Bytes())
	assert.True(t, ed25519.Verify(pub, message, sig))

	// The recent blockhash rides in the message after header and account keys
	assert.Contains(t, string(message), string(blockhash[:]))
}

func TestBuildMessageLayout(t *testing.T) {
	feePayer := testAddrByte(1)
	programID := testProgramID()
	entity := testAddrByte(2)
	readonlyRef := testAddrByte(3)
	blockhash, _ := testBlockhash()

	op := OperationSpec{
		Name: "withdraw_balance",
		Accounts: []AccountMeta{
			{Address: entity, Writable: true},
			{Address: readonlyRef},
			{Address: feePayer, Signer: true, Writable: true},
		},
		Data: []byte{0xaa, 0xbb},
	}

	msg, err := buildMessage(feePayer, programID, op, blockhash)
	require.NoError(t, err)

	// Header: one required signature, no readonly signed, readonly unsigned
	// covers the readonly reference plus the program
	assert.Equal(t, byte(1), msg[0])
	assert.Equal(t, byte(0), msg[1])
	assert.Equal(t, byte(2), msg[2])

	// Key section: count then fee payer, writable, readonly, program
	assert.Equal(t, byte(4), msg[3])
	keys := msg[4 : 4+4*32]
	assert.Equal(t, feePayer.Bytes(), keys[0:32])
	assert.Equal(t, entity.Bytes(), keys[32:64])
	assert.Equal(t, readonlyRef.Bytes(), keys[64:96])
	assert.Equal(t, programID.Bytes(), keys[96:128])

	// Blockhash follows the keys
	offset := 4 + 4*32
	assert.Equal(t, blockhash[:], msg[offset:offset+32])
	offset += 32

	// Single instruction: count, program index, account indices, data
	assert.Equal(t, byte(1), msg[offset])
	assert.Equal(t, byte(3), msg[offset+1])
	assert.Equal(t, byte(3), msg[offset+2])
	assert.Equal(t, []byte{1, 2, 0}, msg[offset+3:offset+6])
	assert.Equal(t, byte(2), msg[offset+6])
	assert.Equal(t, []byte{0xaa, 0xbb}, msg[offset+7:offset+9])
	assert.Len(t, msg, offset+9)
}

func TestBuildMessageRequiresData(t *testing.T) {
	_, err := buildMessage(testAddrByte(1), testProgramID(), OperationSpec{Name: "noop"}, [32]byte{})
	var validation *domain.ValidationError
	require.Error(t, err)
	assert.ErrorAs(t, err, &validation)
}

func TestOperationBuilders(t *testing.T) {
	programID := testProgramID()
	caller := testAddrByte(7)

	t.Run("withdraw requires positive amount", func(t *testing.T) {
		_, err := WithdrawBalance(caller, testAddrByte(8), big.NewInt(0))
		var validation *domain.ValidationError
		require.Error(t, err)
		assert.ErrorAs(t, err, &validation)

		_, err = WithdrawBalance(caller, testAddrByte(8), nil)
		require.Error(t, err)
	})

	t.Run("register validates role and name", func(t *testing.T) {
		_, err := RegisterUser(programID, caller, "alice", "a@example.com", domain.Role(42))
		require.Error(t, err)

		_, err = RegisterUser(programID, caller, "", "a@example.com", domain.RoleSeller)
		require.Error(t, err)
	})

	t.Run("fee update targets the derived state account", func(t *testing.T) {
		op, err := UpdatePlatformFee(programID, caller, big.NewInt(250))
		require.NoError(t, err)

		state, err := StateAddress(programID)
		require.NoError(t, err)
		require.Len(t, op.Accounts, 2)
		assert.Equal(t, state, op.Accounts[0].Address)
		assert.True(t, op.Accounts[0].Writable)
		assert.Equal(t, caller, op.Accounts[1].Address)
		assert.True(t, op.Accounts[1].Signer)
	})
}
