package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/veritrace/supplyview/internal/domain"
)

const (
	// maxSeeds and maxSeedLength are the ledger's structural limits on
	// program-derived address inputs.
	maxSeeds      = 16
	maxSeedLength = 32

	// pdaMarker is appended to the hash input so derived addresses can never
	// collide with hashes produced outside address derivation.
	pdaMarker = "ProgramDerivedAddress"
)

// Entity seed prefixes. These must match the on-chain program byte for byte;
// they are part of its published schema.
const (
	SeedState           = "state"
	SeedFactory         = "factory"
	SeedProduct         = "product"
	SeedSeller          = "seller"
	SeedWarehouse       = "warehouse"
	SeedLogistics       = "logistics"
	SeedInspector       = "inspector"
	SeedTransaction     = "transaction"
	SeedOrder           = "order"
	SeedSellerStock     = "seller_stock"
	SeedCustomerProduct = "customer_product"
	SeedUser            = "user"
)

// DeriveAddress deterministically computes a program-owned account address
// from the ordered seeds and the program identifier. It searches bump seeds
// from 255 downward for the first candidate that does not lie on the ed25519
// curve, and returns that address together with the bump.
//
// Derivation is pure: identical inputs always yield the identical address.
func DeriveAddress(programID domain.Address, seeds ...[]byte) (domain.Address, uint8, error) {
	if len(seeds) > maxSeeds {
		return domain.ZeroAddress, 0, &domain.ValidationError{
			Reason: fmt.Sprintf("too many seeds: %d (max %d)", len(seeds), maxSeeds),
		}
	}
	for i, seed := range seeds {
		if len(seed) > maxSeedLength {
			return domain.ZeroAddress, 0, &domain.ValidationError{
				Reason: fmt.Sprintf("seed %d too long: %d bytes (max %d)", i, len(seed), maxSeedLength),
			}
		}
	}

	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{uint8(bump)})
		h.Write(programID.Bytes())
		h.Write([]byte(pdaMarker))

		candidate, err := domain.AddressFromBytes(h.Sum(nil))
		if err != nil {
			return domain.ZeroAddress, 0, err
		}
		if offCurve(candidate) {
			return candidate, uint8(bump), nil
		}
	}

	return domain.ZeroAddress, 0, &domain.ValidationError{Reason: "bump seed space exhausted"}
}

// offCurve reports whether the candidate bytes fail to decode as an ed25519
// curve point. Derived addresses must be off-curve so no private key can ever
// sign for them.
func offCurve(a domain.Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a.Bytes())
	return err != nil
}

// uint64Seed renders a numeric id as its 8-byte little-endian seed form.
func uint64Seed(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

// StateAddress derives the singleton program-state address.
func StateAddress(programID domain.Address) (domain.Address, error) {
	addr, _, err := DeriveAddress(programID, []byte(SeedState))
	return addr, err
}

// FactoryAddress derives a factory account address from its numeric id.
func FactoryAddress(programID domain.Address, id uint64) (domain.Address, error) {
	addr, _, err := DeriveAddress(programID, []byte(SeedFactory), uint64Seed(id))
	return addr, err
}

// ProductAddress derives a product account address from its factory and
// product ids.
func ProductAddress(programID domain.Address, factoryID, id uint64) (domain.Address, error) {
	addr, _, err := DeriveAddress(programID, []byte(SeedProduct), uint64Seed(factoryID), uint64Seed(id))
	return addr, err
}

// SellerAddress derives a seller account address from its numeric id.
func SellerAddress(programID domain.Address, id uint64) (domain.Address, error) {
	addr, _, err := DeriveAddress(programID, []byte(SeedSeller), uint64Seed(id))
	return addr, err
}

// WarehouseAddress derives a warehouse account address from its numeric id.
func WarehouseAddress(programID domain.Address, id uint64) (domain.Address, error) {
	addr, _, err := DeriveAddress(programID, []byte(SeedWarehouse), uint64Seed(id))
	return addr, err
}

// LogisticsAddress derives a logistics account address from its numeric id.
func LogisticsAddress(programID domain.Address, id uint64) (domain.Address, error) {
	addr, _, err := DeriveAddress(programID, []byte(SeedLogistics), uint64Seed(id))
	return addr, err
}

// InspectorAddress derives an inspector account address from its numeric id.
func InspectorAddress(programID domain.Address, id uint64) (domain.Address, error) {
	addr, _, err := DeriveAddress(programID, []byte(SeedInspector), uint64Seed(id))
	return addr, err
}

// TransactionAddress derives a transaction account address from its numeric id.
func TransactionAddress(programID domain.Address, id uint64) (domain.Address, error) {
	addr, _, err := DeriveAddress(programID, []byte(SeedTransaction), uint64Seed(id))
	return addr, err
}

// OrderAddress derives an order account address from its seller and order ids.
func OrderAddress(programID domain.Address, sellerID, id uint64) (domain.Address, error) {
	addr, _, err := DeriveAddress(programID, []byte(SeedOrder), uint64Seed(sellerID), uint64Seed(id))
	return addr, err
}

// SellerStockAddress derives the seller-product stock join address.
func SellerStockAddress(programID, seller, product domain.Address) (domain.Address, error) {
	addr, _, err := DeriveAddress(programID, []byte(SeedSellerStock), seller.Bytes(), product.Bytes())
	return addr, err
}

// CustomerProductAddress derives a customer purchase record address.
func CustomerProductAddress(programID, owner, product domain.Address) (domain.Address, error) {
	addr, _, err := DeriveAddress(programID, []byte(SeedCustomerProduct), owner.Bytes(), product.Bytes())
	return addr, err
}

// UserAddress derives the owner-keyed user profile address.
func UserAddress(programID, owner domain.Address) (domain.Address, error) {
	addr, _, err := DeriveAddress(programID, []byte(SeedUser), owner.Bytes())
	return addr, err
}
