package ledger

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritrace/supplyview/internal/domain"
)

func testAddrByte(b byte) domain.Address {
	var a domain.Address
	a[0] = b
	return a
}

func maxU64() *big.Int {
	return new(big.Int).SetUint64(math.MaxUint64)
}

func TestFactoryRoundTrip(t *testing.T) {
	addr := testAddrByte(1)
	original := &domain.Factory{
		Address:      addr,
		ID:           7,
		Name:         "Northern Mills",
		Description:  "Primary producer",
		Owner:        testAddrByte(2),
		Latitude:     52.52,
		Longitude:    13.405,
		ProductCount: 12,
		Balance:      maxU64(),
	}

	data, err := EncodeFactory(original)
	require.NoError(t, err)

	decoded, err := DecodeFactory(addr, data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestProductRoundTrip(t *testing.T) {
	addr := testAddrByte(3)
	original := &domain.Product{
		Address:           addr,
		ID:                1,
		FactoryID:         7,
		Name:              "Bolt M8",
		Description:       "",
		BatchNo:           "B-2031",
		Price:             big.NewInt(250),
		Stock:             big.NewInt(10_000),
		Factory:           testAddrByte(1),
		Inspector:         testAddrByte(4),
		QualityChecked:    true,
		InspectionFeePaid: false,
	}

	data, err := EncodeProduct(original)
	require.NoError(t, err)

	decoded, err := DecodeProduct(addr, data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestTransactionRoundTrip(t *testing.T) {
	addr := testAddrByte(5)
	original := &domain.Transaction{
		Address:   addr,
		ID:        99,
		From:      testAddrByte(6),
		To:        testAddrByte(7),
		Amount:    big.NewInt(100),
		Timestamp: 1_700_000_000,
		Success:   true,
	}

	data, err := EncodeTransaction(original)
	require.NoError(t, err)

	decoded, err := DecodeTransaction(addr, data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestOrderRoundTrip(t *testing.T) {
	addr := testAddrByte(8)
	original := &domain.Order{
		Address:    addr,
		ID:         3,
		Product:    testAddrByte(3),
		Warehouse:  testAddrByte(9),
		Seller:     testAddrByte(10),
		Logistic:   testAddrByte(11),
		TotalPrice: big.NewInt(5000),
		Status:     domain.OrderShipped,
		Timestamp:  1_700_000_100,
	}

	data, err := EncodeOrder(original)
	require.NoError(t, err)

	decoded, err := DecodeOrder(addr, data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestUserRoundTrip(t *testing.T) {
	addr := testAddrByte(12)
	original := &domain.User{
		Address:      addr,
		Owner:        testAddrByte(13),
		Name:         "alice",
		Email:        "alice@example.com",
		Role:         domain.RoleInspector,
		FactoryCount: 1,
		Initialized:  true,
	}

	data, err := EncodeUser(original)
	require.NoError(t, err)

	decoded, err := DecodeUser(addr, data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeRejectsWrongDiscriminator(t *testing.T) {
	addr := testAddrByte(1)
	data, err := EncodeSeller(&domain.Seller{Address: addr, Balance: big.NewInt(1)})
	require.NoError(t, err)

	_, err = DecodeFactory(addr, data)
	var decodeErr *domain.DecodeError
	require.Error(t, err)
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, domain.KindFactory, decodeErr.Kind)
}

func TestDecodeRejectsTruncatedData(t *testing.T) {
	addr := testAddrByte(1)
	data, err := EncodeTransaction(&domain.Transaction{Address: addr, Amount: big.NewInt(1)})
	require.NoError(t, err)

	_, err = DecodeTransaction(addr, data[:len(data)-4])
	var decodeErr *domain.DecodeError
	require.Error(t, err)
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	addr := testAddrByte(1)
	data, err := EncodeTransaction(&domain.Transaction{Address: addr, Amount: big.NewInt(1)})
	require.NoError(t, err)

	_, err = DecodeTransaction(addr, append(data, 0x00))
	var decodeErr *domain.DecodeError
	require.Error(t, err)
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeRejectsEnumOutsideClosedSet(t *testing.T) {
	addr := testAddrByte(1)

	t.Run("order status", func(t *testing.T) {
		order := &domain.Order{Address: addr, TotalPrice: big.NewInt(1)}
		data, err := EncodeOrder(order)
		require.NoError(t, err)

		// Status byte sits right before the trailing 8-byte timestamp
		data[len(data)-9] = 200

		_, err = DecodeOrder(addr, data)
		var decodeErr *domain.DecodeError
		require.Error(t, err)
		assert.ErrorAs(t, err, &decodeErr)
	})

	t.Run("user role", func(t *testing.T) {
		user := &domain.User{Address: addr, Role: domain.Role(99)}
		data, err := EncodeUser(user)
		require.NoError(t, err)

		_, err = DecodeUser(addr, data)
		var decodeErr *domain.DecodeError
		require.Error(t, err)
		assert.ErrorAs(t, err, &decodeErr)
	})
}

func TestEncodeRejectsAmountOutsideU64(t *testing.T) {
	over := new(big.Int).Add(maxU64(), big.NewInt(1))
	_, err := EncodeFactory(&domain.Factory{Balance: over})
	var validation *domain.ValidationError
	require.Error(t, err)
	assert.ErrorAs(t, err, &validation)

	_, err = EncodeFactory(&domain.Factory{Balance: big.NewInt(-1)})
	require.Error(t, err)
	assert.ErrorAs(t, err, &validation)
}

func TestEncodeNilAmountIsZero(t *testing.T) {
	addr := testAddrByte(1)
	data, err := EncodeFactory(&domain.Factory{Address: addr})
	require.NoError(t, err)

	decoded, err := DecodeFactory(addr, data)
	require.NoError(t, err)
	assert.Zero(t, decoded.Balance.Sign())
}

func TestAccountDiscriminator(t *testing.T) {
	// Distinct names yield distinct tags, and account/instruction namespaces
	// never collide.
	assert.NotEqual(t, DiscFactory, DiscSeller)
	assert.NotEqual(t, AccountDiscriminator("Transfer"), InstructionDiscriminator("Transfer"))
	assert.Equal(t, DiscFactory, AccountDiscriminator("Factory"))
}

func TestAppendCompactU16(t *testing.T) {
	tests := []struct {
		value    uint16
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{0xffff, []byte{0xff, 0xff, 0x03}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, appendCompactU16(nil, tt.value), "value %#x", tt.value)
	}
}
