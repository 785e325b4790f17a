package repository

import (
	"context"

	"github.com/veritrace/supplyview/internal/domain"
	"github.com/veritrace/supplyview/internal/ledger"
)

// Set bundles one repository per entity kind over a shared account source.
type Set struct {
	State            *Repository[*domain.ProgramState]
	Factories        *Repository[*domain.Factory]
	Products         *Repository[*domain.Product]
	Sellers          *Repository[*domain.Seller]
	Warehouses       *Repository[*domain.Warehouse]
	Logistics        *Repository[*domain.Logistics]
	Inspectors       *Repository[*domain.Inspector]
	Transactions     *Repository[*domain.Transaction]
	Orders           *Repository[*domain.Order]
	SellerStocks     *Repository[*domain.SellerProductStock]
	CustomerProducts *Repository[*domain.CustomerProduct]
	Users            *Repository[*domain.User]

	programID domain.Address
}

// NewSet builds the full repository set from a connection handle.
func NewSet(client *ledger.Client) *Set {
	return newSet(client, client.ProgramID())
}

// NewSetFrom builds the repository set over an arbitrary account source.
func NewSetFrom(source AccountSource, programID domain.Address) *Set {
	return newSet(source, programID)
}

func newSet(source AccountSource, programID domain.Address) *Set {
	return &Set{
		State:            New(domain.KindProgramState, ledger.DiscProgramState, source, ledger.DecodeProgramState),
		Factories:        New(domain.KindFactory, ledger.DiscFactory, source, ledger.DecodeFactory),
		Products:         New(domain.KindProduct, ledger.DiscProduct, source, ledger.DecodeProduct),
		Sellers:          New(domain.KindSeller, ledger.DiscSeller, source, ledger.DecodeSeller),
		Warehouses:       New(domain.KindWarehouse, ledger.DiscWarehouse, source, ledger.DecodeWarehouse),
		Logistics:        New(domain.KindLogistics, ledger.DiscLogistics, source, ledger.DecodeLogistics),
		Inspectors:       New(domain.KindInspector, ledger.DiscInspector, source, ledger.DecodeInspector),
		Transactions:     New(domain.KindTransaction, ledger.DiscTransaction, source, ledger.DecodeTransaction),
		Orders:           New(domain.KindOrder, ledger.DiscOrder, source, ledger.DecodeOrder),
		SellerStocks:     New(domain.KindSellerProductStock, ledger.DiscSellerProductStock, source, ledger.DecodeSellerProductStock),
		CustomerProducts: New(domain.KindCustomerProduct, ledger.DiscCustomerProduct, source, ledger.DecodeCustomerProduct),
		Users:            New(domain.KindUser, ledger.DiscUser, source, ledger.DecodeUser),
		programID:        programID,
	}
}

// FetchState fetches the singleton program state at its derived address.
func (s *Set) FetchState(ctx context.Context) (*domain.ProgramState, error) {
	addr, err := ledger.StateAddress(s.programID)
	if err != nil {
		return nil, err
	}
	return s.State.FetchOne(ctx, addr)
}

// FetchUser fetches the owner-keyed user profile. The profile's role decides
// which aggregation variant applies to the owner.
func (s *Set) FetchUser(ctx context.Context, owner domain.Address) (*domain.User, error) {
	addr, err := ledger.UserAddress(s.programID, owner)
	if err != nil {
		return nil, err
	}
	return s.Users.FetchOne(ctx, addr)
}
