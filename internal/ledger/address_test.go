package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritrace/supplyview/internal/domain"
)

func testProgramID() domain.Address {
	var a domain.Address
	for i := range a {
		a[i] = byte(i)
	}
	return a
}

func TestDeriveAddressDeterministic(t *testing.T) {
	programID := testProgramID()

	first, firstBump, err := DeriveAddress(programID, []byte(SeedState))
	require.NoError(t, err)

	second, secondBump, err := DeriveAddress(programID, []byte(SeedState))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstBump, secondBump)
	assert.False(t, first.IsZero())

	// A derived address must never lie on the curve
	assert.True(t, offCurve(first))
}

func TestDeriveAddressDistinctInputs(t *testing.T) {
	programID := testProgramID()

	state, _, err := DeriveAddress(programID, []byte(SeedState))
	require.NoError(t, err)

	factory1, _, err := DeriveAddress(programID, []byte(SeedFactory), uint64Seed(1))
	require.NoError(t, err)

	factory2, _, err := DeriveAddress(programID, []byte(SeedFactory), uint64Seed(2))
	require.NoError(t, err)

	assert.NotEqual(t, state, factory1)
	assert.NotEqual(t, factory1, factory2)

	// The same seeds under a different program give a different address
	var otherProgram domain.Address
	otherProgram[0] = 0xff
	other, _, err := DeriveAddress(otherProgram, []byte(SeedFactory), uint64Seed(1))
	require.NoError(t, err)
	assert.NotEqual(t, factory1, other)
}

func TestDeriveAddressSeedLimits(t *testing.T) {
	programID := testProgramID()

	t.Run("too many seeds", func(t *testing.T) {
		seeds := make([][]byte, maxSeeds+1)
		for i := range seeds {
			seeds[i] = []byte{byte(i)}
		}
		_, _, err := DeriveAddress(programID, seeds...)
		var validation *domain.ValidationError
		require.Error(t, err)
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("seed too long", func(t *testing.T) {
		_, _, err := DeriveAddress(programID, make([]byte, maxSeedLength+1))
		var validation *domain.ValidationError
		require.Error(t, err)
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("at the limits", func(t *testing.T) {
		seeds := make([][]byte, maxSeeds)
		for i := range seeds {
			seeds[i] = make([]byte, maxSeedLength)
		}
		_, _, err := DeriveAddress(programID, seeds...)
		require.NoError(t, err)
	})
}

func TestEntityAddressHelpers(t *testing.T) {
	programID := testProgramID()

	var owner domain.Address
	owner[5] = 42

	user1, err := UserAddress(programID, owner)
	require.NoError(t, err)

	user2, err := UserAddress(programID, owner)
	require.NoError(t, err)
	assert.Equal(t, user1, user2)

	var otherOwner domain.Address
	otherOwner[5] = 43
	user3, err := UserAddress(programID, otherOwner)
	require.NoError(t, err)
	assert.NotEqual(t, user1, user3)

	// Join-entity addresses depend on both components
	var product domain.Address
	product[9] = 9
	stock1, err := SellerStockAddress(programID, owner, product)
	require.NoError(t, err)
	stock2, err := SellerStockAddress(programID, otherOwner, product)
	require.NoError(t, err)
	assert.NotEqual(t, stock1, stock2)

	purchase, err := CustomerProductAddress(programID, owner, product)
	require.NoError(t, err)
	assert.NotEqual(t, stock1, purchase)
}
