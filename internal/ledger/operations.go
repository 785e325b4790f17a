package ledger

import (
	"math/big"

	"github.com/veritrace/supplyview/internal/domain"
)

// Instruction dispatch tags for the owner operations this layer drives. The
// names must match the program's published interface.
var (
	instrUpdatePlatformFee = InstructionDiscriminator("update_platform_fee")
	instrWithdrawBalance   = InstructionDiscriminator("withdraw_balance")
	instrRegisterUser      = InstructionDiscriminator("register_user")
)

// UpdatePlatformFee builds the fee-update operation against the singleton
// program state. Only the state owner can execute it; the program enforces
// that, this layer just submits.
func UpdatePlatformFee(programID domain.Address, caller domain.Address, feeBasisPoints *big.Int) (OperationSpec, error) {
	state, err := StateAddress(programID)
	if err != nil {
		return OperationSpec{}, err
	}

	e := newEncoder()
	e.Discriminator(instrUpdatePlatformFee)
	if err := e.BigU64(feeBasisPoints); err != nil {
		return OperationSpec{}, err
	}

	return OperationSpec{
		Name: "update_platform_fee",
		Accounts: []AccountMeta{
			{Address: state, Writable: true},
			{Address: caller, Signer: true, Writable: true},
		},
		Data: e.Bytes(),
	}, nil
}

// WithdrawBalance builds an owner withdrawal from a role entity account.
// The entity address is pre-derived by the caller.
func WithdrawBalance(caller, entity domain.Address, amount *big.Int) (OperationSpec, error) {
	if amount == nil || amount.Sign() <= 0 {
		return OperationSpec{}, &domain.ValidationError{Reason: "withdrawal amount must be positive"}
	}

	e := newEncoder()
	e.Discriminator(instrWithdrawBalance)
	if err := e.BigU64(amount); err != nil {
		return OperationSpec{}, err
	}

	return OperationSpec{
		Name: "withdraw_balance",
		Accounts: []AccountMeta{
			{Address: entity, Writable: true},
			{Address: caller, Signer: true, Writable: true},
		},
		Data: e.Bytes(),
	}, nil
}

// RegisterUser builds the caller's user-profile creation operation at the
// owner-keyed derived address.
func RegisterUser(programID, caller domain.Address, name, email string, role domain.Role) (OperationSpec, error) {
	if !role.Valid() {
		return OperationSpec{}, &domain.ValidationError{Reason: "role outside closed enumeration"}
	}
	if name == "" {
		return OperationSpec{}, &domain.ValidationError{Reason: "name is required"}
	}

	userAddr, err := UserAddress(programID, caller)
	if err != nil {
		return OperationSpec{}, err
	}

	e := newEncoder()
	e.Discriminator(instrRegisterUser)
	e.String(name)
	e.String(email)
	e.U8(uint8(role))

	return OperationSpec{
		Name: "register_user",
		Accounts: []AccountMeta{
			{Address: userAddr, Writable: true},
			{Address: caller, Signer: true, Writable: true},
		},
		Data: e.Bytes(),
	}, nil
}
