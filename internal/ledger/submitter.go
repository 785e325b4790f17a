package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/veritrace/supplyview/internal/domain"
	"github.com/veritrace/supplyview/internal/logger"
)

// AccountMeta references one account in an instruction, with its access
// flags. Addresses are pre-derived by the caller; the submitter never
// derives on its own.
type AccountMeta struct {
	Address  domain.Address
	Signer   bool
	Writable bool
}

// OperationSpec is a fully-specified owner operation: one instruction
// against the program, referencing pre-derived addresses.
type OperationSpec struct {
	Name     string
	Accounts []AccountMeta
	Data     []byte
}

// Submit builds a single-instruction transaction for the operation, requests
// a signature through the handle's signing capability, sends it, and returns
// the signature immediately upon acceptance. Acceptance is not confirmation.
//
// Fails with UnauthorizedError on a read-only handle. Transport failures
// surface verbatim and are never retried here: duplicating a state-changing
// submission is worse than reporting the failure.
func (c *Client) Submit(ctx context.Context, op OperationSpec) (string, error) {
	if c.signer == nil {
		return "", &domain.UnauthorizedError{Reason: fmt.Sprintf("operation %s requires a signing connection", op.Name)}
	}

	blockhash, err := c.recent.Recent(ctx)
	if err != nil {
		return "", err
	}

	message, err := buildMessage(c.signer.Identity(), c.programID, op, blockhash)
	if err != nil {
		return "", err
	}

	signature, err := c.signer.Sign(message)
	if err != nil {
		return "", &domain.UnauthorizedError{Reason: fmt.Sprintf("signing %s failed: %v", op.Name, err)}
	}
	if len(signature) != 64 {
		return "", &domain.ValidationError{Reason: fmt.Sprintf("signer produced %d-byte signature, want 64", len(signature))}
	}

	// Wire form: compact-u16 signature count, signatures, then the message.
	wire := appendCompactU16(nil, 1)
	wire = append(wire, signature...)
	wire = append(wire, message...)

	id, err := c.SendTransaction(ctx, wire)
	if err != nil {
		return "", err
	}

	logger.InfoCtx(ctx, "submitted ledger operation",
		zap.String("operation", op.Name),
		zap.String("signature", id))
	return id, nil
}

// buildMessage assembles a legacy transaction message: header, account keys,
// recent blockhash, and the single program instruction.
func buildMessage(feePayer, programID domain.Address, op OperationSpec, blockhash [32]byte) ([]byte, error) {
	if len(op.Data) == 0 {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("operation %s has no instruction data", op.Name)}
	}

	// Account ordering: fee payer first, then writable non-signers, then
	// readonly non-signers, program last.
	keys := []domain.Address{feePayer}
	seen := domain.NewAddressSet(feePayer)
	var readonly []domain.Address
	for _, meta := range op.Accounts {
		if seen.Contains(meta.Address) {
			continue
		}
		seen.Add(meta.Address)
		if meta.Writable {
			keys = append(keys, meta.Address)
		} else {
			readonly = append(readonly, meta.Address)
		}
	}
	keys = append(keys, readonly...)
	programIndex := len(keys)
	keys = append(keys, programID)

	indexOf := make(map[domain.Address]int, len(keys))
	for i, k := range keys {
		indexOf[k] = i
	}

	// Header: one required signature (the fee payer), no readonly signed
	// accounts, readonly unsigned = readonly accounts plus the program.
	msg := []byte{1, 0, uint8(len(readonly) + 1)}

	msg = appendCompactU16(msg, uint16(len(keys)))
	for _, k := range keys {
		msg = append(msg, k.Bytes()...)
	}
	msg = append(msg, blockhash[:]...)

	// Single instruction.
	msg = appendCompactU16(msg, 1)
	msg = append(msg, uint8(programIndex))
	msg = appendCompactU16(msg, uint16(len(op.Accounts)))
	for _, meta := range op.Accounts {
		msg = append(msg, uint8(indexOf[meta.Address]))
	}
	msg = appendCompactU16(msg, uint16(len(op.Data)))
	msg = append(msg, op.Data...)

	return msg, nil
}
