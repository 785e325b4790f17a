package ledger

import (
	"fmt"

	"github.com/veritrace/supplyview/internal/domain"
)

// Account schema tags, derived from the program's account type names.
var (
	DiscProgramState       = AccountDiscriminator("ProgramState")
	DiscFactory            = AccountDiscriminator("Factory")
	DiscProduct            = AccountDiscriminator("Product")
	DiscSeller             = AccountDiscriminator("Seller")
	DiscWarehouse          = AccountDiscriminator("Warehouse")
	DiscLogistics          = AccountDiscriminator("Logistics")
	DiscInspector          = AccountDiscriminator("ProductInspector")
	DiscTransaction        = AccountDiscriminator("Transaction")
	DiscOrder              = AccountDiscriminator("Order")
	DiscSellerProductStock = AccountDiscriminator("SellerProductStock")
	DiscCustomerProduct    = AccountDiscriminator("CustomerProduct")
	DiscUser               = AccountDiscriminator("User")
)

// DecodeProgramState parses the singleton state account.
func DecodeProgramState(addr domain.Address, data []byte) (*domain.ProgramState, error) {
	d := newDecoder(domain.KindProgramState, data)
	d.Discriminator(DiscProgramState)
	s := &domain.ProgramState{
		Address:        addr,
		Owner:          d.Address(),
		FeeBasisPoints: d.BigU64(),
		Initialized:    d.Bool(),
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return s, nil
}

// EncodeProgramState renders the state account in wire layout.
func EncodeProgramState(s *domain.ProgramState) ([]byte, error) {
	e := newEncoder()
	e.Discriminator(DiscProgramState)
	e.Address(s.Owner)
	if err := e.BigU64(s.FeeBasisPoints); err != nil {
		return nil, err
	}
	e.Bool(s.Initialized)
	return e.Bytes(), nil
}

// DecodeFactory parses a factory account.
func DecodeFactory(addr domain.Address, data []byte) (*domain.Factory, error) {
	d := newDecoder(domain.KindFactory, data)
	d.Discriminator(DiscFactory)
	f := &domain.Factory{
		Address:      addr,
		ID:           d.U64(),
		Name:         d.String(),
		Description:  d.String(),
		Owner:        d.Address(),
		Latitude:     d.F64(),
		Longitude:    d.F64(),
		ProductCount: d.U64(),
		Balance:      d.BigU64(),
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return f, nil
}

// EncodeFactory renders a factory account in wire layout.
func EncodeFactory(f *domain.Factory) ([]byte, error) {
	e := newEncoder()
	e.Discriminator(DiscFactory)
	e.U64(f.ID)
	e.String(f.Name)
	e.String(f.Description)
	e.Address(f.Owner)
	e.F64(f.Latitude)
	e.F64(f.Longitude)
	e.U64(f.ProductCount)
	if err := e.BigU64(f.Balance); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// DecodeProduct parses a product account.
func DecodeProduct(addr domain.Address, data []byte) (*domain.Product, error) {
	d := newDecoder(domain.KindProduct, data)
	d.Discriminator(DiscProduct)
	p := &domain.Product{
		Address:           addr,
		ID:                d.U64(),
		FactoryID:         d.U64(),
		Name:              d.String(),
		Description:       d.String(),
		BatchNo:           d.String(),
		Price:             d.BigU64(),
		Stock:             d.BigU64(),
		Factory:           d.Address(),
		Inspector:         d.Address(),
		QualityChecked:    d.Bool(),
		InspectionFeePaid: d.Bool(),
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return p, nil
}

// EncodeProduct renders a product account in wire layout.
func EncodeProduct(p *domain.Product) ([]byte, error) {
	e := newEncoder()
	e.Discriminator(DiscProduct)
	e.U64(p.ID)
	e.U64(p.FactoryID)
	e.String(p.Name)
	e.String(p.Description)
	e.String(p.BatchNo)
	if err := e.BigU64(p.Price); err != nil {
		return nil, err
	}
	if err := e.BigU64(p.Stock); err != nil {
		return nil, err
	}
	e.Address(p.Factory)
	e.Address(p.Inspector)
	e.Bool(p.QualityChecked)
	e.Bool(p.InspectionFeePaid)
	return e.Bytes(), nil
}

// DecodeSeller parses a seller account.
func DecodeSeller(addr domain.Address, data []byte) (*domain.Seller, error) {
	d := newDecoder(domain.KindSeller, data)
	d.Discriminator(DiscSeller)
	s := &domain.Seller{
		Address:       addr,
		ID:            d.U64(),
		Name:          d.String(),
		Description:   d.String(),
		Latitude:      d.F64(),
		Longitude:     d.F64(),
		ProductsCount: d.U64(),
		OrderCount:    d.U64(),
		Balance:       d.BigU64(),
		Owner:         d.Address(),
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return s, nil
}

// EncodeSeller renders a seller account in wire layout.
func EncodeSeller(s *domain.Seller) ([]byte, error) {
	e := newEncoder()
	e.Discriminator(DiscSeller)
	e.U64(s.ID)
	e.String(s.Name)
	e.String(s.Description)
	e.F64(s.Latitude)
	e.F64(s.Longitude)
	e.U64(s.ProductsCount)
	e.U64(s.OrderCount)
	if err := e.BigU64(s.Balance); err != nil {
		return nil, err
	}
	e.Address(s.Owner)
	return e.Bytes(), nil
}

// DecodeWarehouse parses a warehouse account.
func DecodeWarehouse(addr domain.Address, data []byte) (*domain.Warehouse, error) {
	d := newDecoder(domain.KindWarehouse, data)
	d.Discriminator(DiscWarehouse)
	w := &domain.Warehouse{
		Address:       addr,
		ID:            d.U64(),
		FactoryID:     d.U64(),
		Name:          d.String(),
		Description:   d.String(),
		Product:       d.Address(),
		ProductCount:  d.U64(),
		LogisticCount: d.U64(),
		Balance:       d.BigU64(),
		Owner:         d.Address(),
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return w, nil
}

// EncodeWarehouse renders a warehouse account in wire layout.
func EncodeWarehouse(w *domain.Warehouse) ([]byte, error) {
	e := newEncoder()
	e.Discriminator(DiscWarehouse)
	e.U64(w.ID)
	e.U64(w.FactoryID)
	e.String(w.Name)
	e.String(w.Description)
	e.Address(w.Product)
	e.U64(w.ProductCount)
	e.U64(w.LogisticCount)
	if err := e.BigU64(w.Balance); err != nil {
		return nil, err
	}
	e.Address(w.Owner)
	return e.Bytes(), nil
}

// DecodeLogistics parses a logistics (shipment) account.
func DecodeLogistics(addr domain.Address, data []byte) (*domain.Logistics, error) {
	d := newDecoder(domain.KindLogistics, data)
	d.Discriminator(DiscLogistics)
	l := &domain.Logistics{
		Address:       addr,
		ID:            d.U64(),
		Name:          d.String(),
		TransportMode: domain.TransportMode(d.U8()),
		Status:        d.String(),
		ShipmentCost:  d.BigU64(),
		Product:       d.Address(),
		Warehouse:     d.Address(),
		ReceivedAt:    d.I64(),
		DeliveredAt:   d.I64(),
		Delivered:     d.Bool(),
		Owner:         d.Address(),
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	if !l.TransportMode.Valid() {
		return nil, &domain.DecodeError{
			Kind:   domain.KindLogistics,
			Reason: fmt.Sprintf("transport mode %d outside closed enumeration", uint8(l.TransportMode)),
		}
	}
	return l, nil
}

// EncodeLogistics renders a logistics account in wire layout.
func EncodeLogistics(l *domain.Logistics) ([]byte, error) {
	e := newEncoder()
	e.Discriminator(DiscLogistics)
	e.U64(l.ID)
	e.String(l.Name)
	e.U8(uint8(l.TransportMode))
	e.String(l.Status)
	if err := e.BigU64(l.ShipmentCost); err != nil {
		return nil, err
	}
	e.Address(l.Product)
	e.Address(l.Warehouse)
	e.I64(l.ReceivedAt)
	e.I64(l.DeliveredAt)
	e.Bool(l.Delivered)
	e.Address(l.Owner)
	return e.Bytes(), nil
}

// DecodeInspector parses a product inspector account.
func DecodeInspector(addr domain.Address, data []byte) (*domain.Inspector, error) {
	d := newDecoder(domain.KindInspector, data)
	d.Discriminator(DiscInspector)
	i := &domain.Inspector{
		Address:       addr,
		ID:            d.U64(),
		Name:          d.String(),
		Outcome:       d.String(),
		FeePerProduct: d.BigU64(),
		Balance:       d.BigU64(),
		Owner:         d.Address(),
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return i, nil
}

// EncodeInspector renders an inspector account in wire layout.
func EncodeInspector(i *domain.Inspector) ([]byte, error) {
	e := newEncoder()
	e.Discriminator(DiscInspector)
	e.U64(i.ID)
	e.String(i.Name)
	e.String(i.Outcome)
	if err := e.BigU64(i.FeePerProduct); err != nil {
		return nil, err
	}
	if err := e.BigU64(i.Balance); err != nil {
		return nil, err
	}
	e.Address(i.Owner)
	return e.Bytes(), nil
}

// DecodeTransaction parses a payment record account.
func DecodeTransaction(addr domain.Address, data []byte) (*domain.Transaction, error) {
	d := newDecoder(domain.KindTransaction, data)
	d.Discriminator(DiscTransaction)
	t := &domain.Transaction{
		Address:   addr,
		ID:        d.U64(),
		From:      d.Address(),
		To:        d.Address(),
		Amount:    d.BigU64(),
		Timestamp: d.I64(),
		Success:   d.Bool(),
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return t, nil
}

// EncodeTransaction renders a payment record in wire layout.
func EncodeTransaction(t *domain.Transaction) ([]byte, error) {
	e := newEncoder()
	e.Discriminator(DiscTransaction)
	e.U64(t.ID)
	e.Address(t.From)
	e.Address(t.To)
	if err := e.BigU64(t.Amount); err != nil {
		return nil, err
	}
	e.I64(t.Timestamp)
	e.Bool(t.Success)
	return e.Bytes(), nil
}

// DecodeOrder parses an order account.
func DecodeOrder(addr domain.Address, data []byte) (*domain.Order, error) {
	d := newDecoder(domain.KindOrder, data)
	d.Discriminator(DiscOrder)
	o := &domain.Order{
		Address:    addr,
		ID:         d.U64(),
		Product:    d.Address(),
		Warehouse:  d.Address(),
		Seller:     d.Address(),
		Logistic:   d.Address(),
		TotalPrice: d.BigU64(),
		Status:     domain.OrderStatus(d.U8()),
		Timestamp:  d.I64(),
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	if !o.Status.Valid() {
		return nil, &domain.DecodeError{
			Kind:   domain.KindOrder,
			Reason: fmt.Sprintf("order status %d outside closed enumeration", uint8(o.Status)),
		}
	}
	return o, nil
}

// EncodeOrder renders an order account in wire layout.
func EncodeOrder(o *domain.Order) ([]byte, error) {
	e := newEncoder()
	e.Discriminator(DiscOrder)
	e.U64(o.ID)
	e.Address(o.Product)
	e.Address(o.Warehouse)
	e.Address(o.Seller)
	e.Address(o.Logistic)
	if err := e.BigU64(o.TotalPrice); err != nil {
		return nil, err
	}
	e.U8(uint8(o.Status))
	e.I64(o.Timestamp)
	return e.Bytes(), nil
}

// DecodeSellerProductStock parses a seller-product stock join account.
func DecodeSellerProductStock(addr domain.Address, data []byte) (*domain.SellerProductStock, error) {
	d := newDecoder(domain.KindSellerProductStock, data)
	d.Discriminator(DiscSellerProductStock)
	s := &domain.SellerProductStock{
		Address:       addr,
		Seller:        d.Address(),
		Product:       d.Address(),
		StockQuantity: d.BigU64(),
		StockPrice:    d.BigU64(),
		CreatedAt:     d.I64(),
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return s, nil
}

// EncodeSellerProductStock renders a stock join account in wire layout.
func EncodeSellerProductStock(s *domain.SellerProductStock) ([]byte, error) {
	e := newEncoder()
	e.Discriminator(DiscSellerProductStock)
	e.Address(s.Seller)
	e.Address(s.Product)
	if err := e.BigU64(s.StockQuantity); err != nil {
		return nil, err
	}
	if err := e.BigU64(s.StockPrice); err != nil {
		return nil, err
	}
	e.I64(s.CreatedAt)
	return e.Bytes(), nil
}

// DecodeCustomerProduct parses a customer purchase record.
func DecodeCustomerProduct(addr domain.Address, data []byte) (*domain.CustomerProduct, error) {
	d := newDecoder(domain.KindCustomerProduct, data)
	d.Discriminator(DiscCustomerProduct)
	c := &domain.CustomerProduct{
		Address:       addr,
		Product:       d.Address(),
		Seller:        d.Address(),
		Owner:         d.Address(),
		StockQuantity: d.BigU64(),
		PurchasedOn:   d.I64(),
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return c, nil
}

// EncodeCustomerProduct renders a purchase record in wire layout.
func EncodeCustomerProduct(c *domain.CustomerProduct) ([]byte, error) {
	e := newEncoder()
	e.Discriminator(DiscCustomerProduct)
	e.Address(c.Product)
	e.Address(c.Seller)
	e.Address(c.Owner)
	if err := e.BigU64(c.StockQuantity); err != nil {
		return nil, err
	}
	e.I64(c.PurchasedOn)
	return e.Bytes(), nil
}

// DecodeUser parses the owner-keyed user profile.
func DecodeUser(addr domain.Address, data []byte) (*domain.User, error) {
	d := newDecoder(domain.KindUser, data)
	d.Discriminator(DiscUser)
	u := &domain.User{
		Address:        addr,
		Owner:          d.Address(),
		Name:           d.String(),
		Email:          d.String(),
		Role:           domain.Role(d.U8()),
		FactoryCount:   d.U64(),
		SellerCount:    d.U64(),
		WarehouseCount: d.U64(),
		LogisticsCount: d.U64(),
		InspectorCount: d.U64(),
		Initialized:    d.Bool(),
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	if !u.Role.Valid() {
		return nil, &domain.DecodeError{
			Kind:   domain.KindUser,
			Reason: fmt.Sprintf("role %d outside closed enumeration", uint8(u.Role)),
		}
	}
	return u, nil
}

// EncodeUser renders a user profile in wire layout.
func EncodeUser(u *domain.User) ([]byte, error) {
	e := newEncoder()
	e.Discriminator(DiscUser)
	e.Address(u.Owner)
	e.String(u.Name)
	e.String(u.Email)
	e.U8(uint8(u.Role))
	e.U64(u.FactoryCount)
	e.U64(u.SellerCount)
	e.U64(u.WarehouseCount)
	e.U64(u.LogisticsCount)
	e.U64(u.InspectorCount)
	e.Bool(u.Initialized)
	return e.Bytes(), nil
}
