package domain

import (
	"fmt"
	"math/big"
)

// EntityKind names an account schema owned by the supply-chain program.
type EntityKind string

const (
	KindProgramState       EntityKind = "program_state"
	KindFactory            EntityKind = "factory"
	KindProduct            EntityKind = "product"
	KindSeller             EntityKind = "seller"
	KindWarehouse          EntityKind = "warehouse"
	KindLogistics          EntityKind = "logistics"
	KindInspector          EntityKind = "inspector"
	KindTransaction        EntityKind = "transaction"
	KindOrder              EntityKind = "order"
	KindSellerProductStock EntityKind = "seller_product_stock"
	KindCustomerProduct    EntityKind = "customer_product"
	KindUser               EntityKind = "user"
)

// Role identifies which aggregation variant applies to an owner.
type Role uint8

const (
	RoleFactory Role = iota
	RoleSeller
	RoleWarehouse
	RoleLogistics
	RoleInspector
	RoleCustomer
)

var roleNames = map[Role]string{
	RoleFactory:   "factory",
	RoleSeller:    "seller",
	RoleWarehouse: "warehouse",
	RoleLogistics: "logistics",
	RoleInspector: "inspector",
	RoleCustomer:  "customer",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// ParseRole maps the lowercase role name to its constant.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return 0, &ValidationError{Reason: fmt.Sprintf("unknown role %q", s)}
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// OrderStatus is the closed order lifecycle enumeration. Only forward
// transitions are valid; the program enforces them, this layer only observes.
type OrderStatus uint8

const (
	OrderPending OrderStatus = iota
	OrderAssigned
	OrderShipped
	OrderDelivered
)

var orderStatusNames = map[OrderStatus]string{
	OrderPending:   "PENDING",
	OrderAssigned:  "ASSIGNED",
	OrderShipped:   "SHIPPED",
	OrderDelivered: "DELIVERED",
}

func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Valid reports whether the status is one of the closed set.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusNames[s]
	return ok
}

// TransportMode is the shipment transport enumeration.
type TransportMode uint8

const (
	TransportRoad TransportMode = iota
	TransportRail
	TransportSea
	TransportAir
)

var transportModeNames = map[TransportMode]string{
	TransportRoad: "ROAD",
	TransportRail: "RAIL",
	TransportSea:  "SEA",
	TransportAir:  "AIR",
}

func (m TransportMode) String() string {
	if name, ok := transportModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("transport(%d)", uint8(m))
}

// Valid reports whether the transport mode is one of the closed set.
func (m TransportMode) Valid() bool {
	_, ok := transportModeNames[m]
	return ok
}

// ProgramState is the singleton configuration account.
type ProgramState struct {
	Address        Address  `json:"address"`
	Owner          Address  `json:"owner"`
	FeeBasisPoints *big.Int `json:"fee_basis_points"`
	Initialized    bool     `json:"initialized"`
}

// Factory is a producer of products.
type Factory struct {
	Address      Address  `json:"address"`
	ID           uint64   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Owner        Address  `json:"owner"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	ProductCount uint64   `json:"product_count"`
	Balance      *big.Int `json:"balance"`
}

// Product belongs to a factory and is optionally referenced by an inspector.
type Product struct {
	Address          Address  `json:"address"`
	ID               uint64   `json:"id"`
	FactoryID        uint64   `json:"factory_id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	BatchNo          string   `json:"batch_no"`
	Price            *big.Int `json:"price"`
	Stock            *big.Int `json:"stock"`
	Factory          Address  `json:"factory"`
	Inspector        Address  `json:"inspector"`
	QualityChecked   bool     `json:"quality_checked"`
	InspectionFeePaid bool    `json:"inspection_fee_paid"`
}

// Seller owns stock listings and orders.
type Seller struct {
	Address       Address  `json:"address"`
	ID            uint64   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	ProductsCount uint64   `json:"products_count"`
	OrderCount    uint64   `json:"order_count"`
	Balance       *big.Int `json:"balance"`
	Owner         Address  `json:"owner"`
}

// Warehouse holds products and sources orders.
type Warehouse struct {
	Address       Address  `json:"address"`
	ID            uint64   `json:"id"`
	FactoryID     uint64   `json:"factory_id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Product       Address  `json:"product"`
	ProductCount  uint64   `json:"product_count"`
	LogisticCount uint64   `json:"logistic_count"`
	Balance       *big.Int `json:"balance"`
	Owner         Address  `json:"owner"`
}

// Logistics is a shipment record fulfilling orders.
type Logistics struct {
	Address       Address       `json:"address"`
	ID            uint64        `json:"id"`
	Name          string        `json:"name"`
	TransportMode TransportMode `json:"transport_mode"`
	Status        string        `json:"status"`
	ShipmentCost  *big.Int      `json:"shipment_cost"`
	Product       Address       `json:"product"`
	Warehouse     Address       `json:"warehouse"`
	ReceivedAt    int64         `json:"received_at"`
	DeliveredAt   int64         `json:"delivered_at"`
	Delivered     bool          `json:"delivered"`
	Owner         Address       `json:"owner"`
}

// Inspector performs product quality checks for a fee.
type Inspector struct {
	Address       Address  `json:"address"`
	ID            uint64   `json:"id"`
	Name          string   `json:"name"`
	Outcome       string   `json:"outcome"`
	FeePerProduct *big.Int `json:"fee_per_product"`
	Balance       *big.Int `json:"balance"`
	Owner         Address  `json:"owner"`
}

// Transaction is a ledger-wide payment record. From/To are identities, not
// enforced foreign keys; the resolver joins them against derived addresses.
type Transaction struct {
	Address   Address  `json:"address"`
	ID        uint64   `json:"id"`
	From      Address  `json:"from"`
	To        Address  `json:"to"`
	Amount    *big.Int `json:"amount"`
	Timestamp int64    `json:"timestamp"`
	Success   bool     `json:"success"`
}

// Order links a seller, warehouse, product, and logistics record.
type Order struct {
	Address    Address     `json:"address"`
	ID         uint64      `json:"id"`
	Product    Address     `json:"product"`
	Warehouse  Address     `json:"warehouse"`
	Seller     Address     `json:"seller"`
	Logistic   Address     `json:"logistic"`
	TotalPrice *big.Int    `json:"total_price"`
	Status     OrderStatus `json:"status"`
	Timestamp  int64       `json:"timestamp"`
}

// SellerProductStock is the join entity between a seller and a product.
type SellerProductStock struct {
	Address       Address  `json:"address"`
	Seller        Address  `json:"seller"`
	Product       Address  `json:"product"`
	StockQuantity *big.Int `json:"stock_quantity"`
	StockPrice    *big.Int `json:"stock_price"`
	CreatedAt     int64    `json:"created_at"`
}

// CustomerProduct records a customer's purchase.
type CustomerProduct struct {
	Address       Address  `json:"address"`
	Product       Address  `json:"product"`
	Seller        Address  `json:"seller"`
	Owner         Address  `json:"owner"`
	StockQuantity *big.Int `json:"stock_quantity"`
	PurchasedOn   int64    `json:"purchased_on"`
}

// User is the owner-keyed profile whose role selects the aggregation variant.
type User struct {
	Address        Address `json:"address"`
	Owner          Address `json:"owner"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Role           Role    `json:"role"`
	FactoryCount   uint64  `json:"factory_count"`
	SellerCount    uint64  `json:"seller_count"`
	WarehouseCount uint64  `json:"warehouse_count"`
	LogisticsCount uint64  `json:"logistics_count"`
	InspectorCount uint64  `json:"inspector_count"`
	Initialized    bool    `json:"initialized"`
}
