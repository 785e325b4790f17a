package aggregate

import (
	"math/big"

	"github.com/veritrace/supplyview/internal/domain"
	"github.com/veritrace/supplyview/internal/resolver"
)

// Snapshot is a role-scoped aggregate view. Snapshots are pure functions of
// the fetched and resolved inputs: identical records always build identical
// snapshots.
type Snapshot interface {
	// Role returns the aggregation variant that produced the snapshot.
	Role() domain.Role

	// IncompleteKinds lists entity kinds whose contribution is missing
	// because their fetch failed. An empty list means the snapshot is whole.
	IncompleteKinds() []domain.EntityKind
}

// FactoryDashboard is the factory owner's aggregate view.
type FactoryDashboard struct {
	Owner                domain.Address        `json:"owner"`
	Factories            []*domain.Factory     `json:"factories"`
	Products             []*domain.Product     `json:"products"`
	TransactionsReceived []*domain.Transaction `json:"transactions_received"`
	TransactionsSent     []*domain.Transaction `json:"transactions_sent"`
	TotalBalance         *big.Int              `json:"total_balance"`
	TotalProducts        int                   `json:"total_products"`
	QualityChecked       int                   `json:"quality_checked"`
	Incomplete           []domain.EntityKind   `json:"incomplete,omitempty"`
}

func (d *FactoryDashboard) Role() domain.Role                    { return domain.RoleFactory }
func (d *FactoryDashboard) IncompleteKinds() []domain.EntityKind { return d.Incomplete }

// BuildFactoryDashboard assembles the factory snapshot from fetched records.
func BuildFactoryDashboard(
	owner domain.Address,
	factories []*domain.Factory,
	products []*domain.Product,
	txs []*domain.Transaction,
	incomplete []domain.EntityKind,
) *FactoryDashboard {
	owned := resolver.Owned(factories, owner, func(f *domain.Factory) domain.Address { return f.Owner })
	addresses := resolver.Addresses(owned, func(f *domain.Factory) domain.Address { return f.Address })
	addresses.Add(owner)

	ownedProducts := resolver.Related(products, addresses,
		func(p *domain.Product) domain.Address { return p.Factory },
		func(p *domain.Product) domain.Address { return p.Address })
	received, sent := resolver.SplitTransactions(txs, addresses)

	checked := 0
	for _, p := range ownedProducts {
		if p.QualityChecked {
			checked++
		}
	}

	return &FactoryDashboard{
		Owner:                owner,
		Factories:            owned,
		Products:             ownedProducts,
		TransactionsReceived: received,
		TransactionsSent:     sent,
		TotalBalance:         sumBig(owned, func(f *domain.Factory) *big.Int { return f.Balance }),
		TotalProducts:        len(ownedProducts),
		QualityChecked:       checked,
		Incomplete:           incomplete,
	}
}

// SellerDashboard is the seller owner's aggregate view.
type SellerDashboard struct {
	Owner                domain.Address               `json:"owner"`
	Sellers              []*domain.Seller             `json:"sellers"`
	Stock                []*domain.SellerProductStock `json:"stock"`
	PendingOrders        []*domain.Order              `json:"pending_orders"`
	CompletedOrders      []*domain.Order              `json:"completed_orders"`
	TransactionsReceived []*domain.Transaction        `json:"transactions_received"`
	TransactionsSent     []*domain.Transaction        `json:"transactions_sent"`
	TotalBalance         *big.Int                     `json:"total_balance"`
	TotalStock           *big.Int                     `json:"total_stock"`
	Incomplete           []domain.EntityKind          `json:"incomplete,omitempty"`
}

func (d *SellerDashboard) Role() domain.Role                    { return domain.RoleSeller }
func (d *SellerDashboard) IncompleteKinds() []domain.EntityKind { return d.Incomplete }

// BuildSellerDashboard assembles the seller snapshot from fetched records.
func BuildSellerDashboard(
	owner domain.Address,
	sellers []*domain.Seller,
	stocks []*domain.SellerProductStock,
	orders []*domain.Order,
	txs []*domain.Transaction,
	incomplete []domain.EntityKind,
) *SellerDashboard {
	owned := resolver.Owned(sellers, owner, func(s *domain.Seller) domain.Address { return s.Owner })
	addresses := resolver.Addresses(owned, func(s *domain.Seller) domain.Address { return s.Address })
	addresses.Add(owner)

	ownedStock := resolver.Related(stocks, addresses,
		func(s *domain.SellerProductStock) domain.Address { return s.Seller },
		func(s *domain.SellerProductStock) domain.Address { return s.Address })
	ownedOrders := resolver.Related(orders, addresses,
		func(o *domain.Order) domain.Address { return o.Seller },
		func(o *domain.Order) domain.Address { return o.Address })
	received, sent := resolver.SplitTransactions(txs, addresses)

	pending, completed := splitOrders(ownedOrders)

	return &SellerDashboard{
		Owner:                owner,
		Sellers:              owned,
		Stock:                ownedStock,
		PendingOrders:        pending,
		CompletedOrders:      completed,
		TransactionsReceived: received,
		TransactionsSent:     sent,
		TotalBalance:         sumBig(owned, func(s *domain.Seller) *big.Int { return s.Balance }),
		TotalStock:           sumBig(ownedStock, func(s *domain.SellerProductStock) *big.Int { return s.StockQuantity }),
		Incomplete:           incomplete,
	}
}

// WarehouseDashboard is the warehouse owner's aggregate view.
type WarehouseDashboard struct {
	Owner                domain.Address        `json:"owner"`
	Warehouses           []*domain.Warehouse   `json:"warehouses"`
	PendingOrders        []*domain.Order       `json:"pending_orders"`
	CompletedOrders      []*domain.Order       `json:"completed_orders"`
	TransactionsReceived []*domain.Transaction `json:"transactions_received"`
	TransactionsSent     []*domain.Transaction `json:"transactions_sent"`
	TotalBalance         *big.Int              `json:"total_balance"`
	TotalProducts        uint64                `json:"total_products"`
	Incomplete           []domain.EntityKind   `json:"incomplete,omitempty"`
}

func (d *WarehouseDashboard) Role() domain.Role                    { return domain.RoleWarehouse }
func (d *WarehouseDashboard) IncompleteKinds() []domain.EntityKind { return d.Incomplete }

// BuildWarehouseDashboard assembles the warehouse snapshot from fetched records.
func BuildWarehouseDashboard(
	owner domain.Address,
	warehouses []*domain.Warehouse,
	orders []*domain.Order,
	txs []*domain.Transaction,
	incomplete []domain.EntityKind,
) *WarehouseDashboard {
	owned := resolver.Owned(warehouses, owner, func(w *domain.Warehouse) domain.Address { return w.Owner })
	addresses := resolver.Addresses(owned, func(w *domain.Warehouse) domain.Address { return w.Address })
	addresses.Add(owner)

	ownedOrders := resolver.Related(orders, addresses,
		func(o *domain.Order) domain.Address { return o.Warehouse },
		func(o *domain.Order) domain.Address { return o.Address })
	received, sent := resolver.SplitTransactions(txs, addresses)

	pending, completed := splitOrders(ownedOrders)

	var productCount uint64
	for _, w := range owned {
		productCount += w.ProductCount
	}

	return &WarehouseDashboard{
		Owner:                owner,
		Warehouses:           owned,
		PendingOrders:        pending,
		CompletedOrders:      completed,
		TransactionsReceived: received,
		TransactionsSent:     sent,
		TotalBalance:         sumBig(owned, func(w *domain.Warehouse) *big.Int { return w.Balance }),
		TotalProducts:        productCount,
		Incomplete:           incomplete,
	}
}

// LogisticsDashboard is the shipment operator's aggregate view.
type LogisticsDashboard struct {
	Owner              domain.Address      `json:"owner"`
	ActiveShipments    []*domain.Logistics `json:"active_shipments"`
	CompletedShipments []*domain.Logistics `json:"completed_shipments"`
	AssignedOrders     []*domain.Order     `json:"assigned_orders"`
	PendingOrders      []*domain.Order     `json:"pending_orders"`
	TotalShipmentCost  *big.Int            `json:"total_shipment_cost"`
	Incomplete         []domain.EntityKind `json:"incomplete,omitempty"`
}

func (d *LogisticsDashboard) Role() domain.Role                    { return domain.RoleLogistics }
func (d *LogisticsDashboard) IncompleteKinds() []domain.EntityKind { return d.Incomplete }

// BuildLogisticsDashboard assembles the logistics snapshot from fetched records.
func BuildLogisticsDashboard(
	owner domain.Address,
	shipments []*domain.Logistics,
	orders []*domain.Order,
	incomplete []domain.EntityKind,
) *LogisticsDashboard {
	owned := resolver.Owned(shipments, owner, func(l *domain.Logistics) domain.Address { return l.Owner })
	addresses := resolver.Addresses(owned, func(l *domain.Logistics) domain.Address { return l.Address })

	assigned := resolver.Related(orders, addresses,
		func(o *domain.Order) domain.Address { return o.Logistic },
		func(o *domain.Order) domain.Address { return o.Address })
	pending, _ := splitOrders(assigned)

	var active, completed []*domain.Logistics
	for _, l := range owned {
		if l.Delivered {
			completed = append(completed, l)
		} else {
			active = append(active, l)
		}
	}

	return &LogisticsDashboard{
		Owner:              owner,
		ActiveShipments:    active,
		CompletedShipments: completed,
		AssignedOrders:     assigned,
		PendingOrders:      pending,
		TotalShipmentCost:  sumBig(owned, func(l *domain.Logistics) *big.Int { return l.ShipmentCost }),
		Incomplete:         incomplete,
	}
}

// InspectorDashboard is the product inspector's aggregate view.
type InspectorDashboard struct {
	Owner                domain.Address        `json:"owner"`
	Inspectors           []*domain.Inspector   `json:"inspectors"`
	AssignedProducts     []*domain.Product     `json:"assigned_products"`
	PendingInspection    []*domain.Product     `json:"pending_inspection"`
	TransactionsReceived []*domain.Transaction `json:"transactions_received"`
	TransactionsSent     []*domain.Transaction `json:"transactions_sent"`
	TotalBalance         *big.Int              `json:"total_balance"`
	Incomplete           []domain.EntityKind   `json:"incomplete,omitempty"`
}

func (d *InspectorDashboard) Role() domain.Role                    { return domain.RoleInspector }
func (d *InspectorDashboard) IncompleteKinds() []domain.EntityKind { return d.Incomplete }

// BuildInspectorDashboard assembles the inspector snapshot from fetched
// records. Inspectors are filtered by owner before their addresses enter the
// transaction match set, so a payment to some other inspector never lands in
// this owner's received list.
func BuildInspectorDashboard(
	owner domain.Address,
	inspectors []*domain.Inspector,
	products []*domain.Product,
	txs []*domain.Transaction,
	incomplete []domain.EntityKind,
) *InspectorDashboard {
	owned := resolver.Owned(inspectors, owner, func(i *domain.Inspector) domain.Address { return i.Owner })
	addresses := resolver.Addresses(owned, func(i *domain.Inspector) domain.Address { return i.Address })
	addresses.Add(owner)

	assigned := resolver.Related(products, addresses,
		func(p *domain.Product) domain.Address { return p.Inspector },
		func(p *domain.Product) domain.Address { return p.Address })
	received, sent := resolver.SplitTransactions(txs, addresses)

	var pendingInspection []*domain.Product
	for _, p := range assigned {
		if !p.QualityChecked {
			pendingInspection = append(pendingInspection, p)
		}
	}

	return &InspectorDashboard{
		Owner:                owner,
		Inspectors:           owned,
		AssignedProducts:     assigned,
		PendingInspection:    pendingInspection,
		TransactionsReceived: received,
		TransactionsSent:     sent,
		TotalBalance:         sumBig(owned, func(i *domain.Inspector) *big.Int { return i.Balance }),
		Incomplete:           incomplete,
	}
}

// CustomerDashboard is the purchasing customer's aggregate view.
type CustomerDashboard struct {
	Owner                domain.Address            `json:"owner"`
	Purchases            []*domain.CustomerProduct `json:"purchases"`
	TransactionsReceived []*domain.Transaction     `json:"transactions_received"`
	TransactionsSent     []*domain.Transaction     `json:"transactions_sent"`
	TotalSpent           *big.Int                  `json:"total_spent"`
	Incomplete           []domain.EntityKind       `json:"incomplete,omitempty"`
}

func (d *CustomerDashboard) Role() domain.Role                    { return domain.RoleCustomer }
func (d *CustomerDashboard) IncompleteKinds() []domain.EntityKind { return d.Incomplete }

// BuildCustomerDashboard assembles the customer snapshot from fetched records.
func BuildCustomerDashboard(
	owner domain.Address,
	purchases []*domain.CustomerProduct,
	txs []*domain.Transaction,
	incomplete []domain.EntityKind,
) *CustomerDashboard {
	owned := resolver.Owned(purchases, owner, func(c *domain.CustomerProduct) domain.Address { return c.Owner })
	received, sent := resolver.SplitTransactions(txs, domain.NewAddressSet(owner))

	return &CustomerDashboard{
		Owner:                owner,
		Purchases:            owned,
		TransactionsReceived: received,
		TransactionsSent:     sent,
		TotalSpent:           sumBig(sent, func(t *domain.Transaction) *big.Int { return t.Amount }),
		Incomplete:           incomplete,
	}
}

// splitOrders partitions orders into pending and completed. Delivered orders
// never land in the pending list regardless of which role asked.
func splitOrders(orders []*domain.Order) (pending, completed []*domain.Order) {
	for _, o := range orders {
		switch o.Status {
		case domain.OrderPending:
			pending = append(pending, o)
		case domain.OrderDelivered:
			completed = append(completed, o)
		}
	}
	return pending, completed
}

// sumBig totals an arbitrary-precision money field across records, treating
// nil as zero. Amounts are never forced through a float.
func sumBig[T any](records []T, amountOf func(T) *big.Int) *big.Int {
	total := new(big.Int)
	for _, r := range records {
		if v := amountOf(r); v != nil {
			total.Add(total, v)
		}
	}
	return total
}
