package rest

import (
	"context"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veritrace/supplyview/internal/aggregate"
	"github.com/veritrace/supplyview/internal/domain"
	"github.com/veritrace/supplyview/internal/ledger"
	"github.com/veritrace/supplyview/internal/repository"
)

// Ledger is the slice of the connection handle the handlers need for
// submissions.
type Ledger interface {
	// ProgramID returns the program the handle is scoped to.
	ProgramID() domain.Address

	// Identity returns the signing identity, or the zero address when the
	// service runs read-only.
	Identity() domain.Address

	// Submit signs and broadcasts one operation, returning its signature.
	Submit(ctx context.Context, op ledger.OperationSpec) (string, error)
}

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
type Handler interface {
	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)

	// GetState retrieves the singleton program state account
	// GET /api/v1/state
	GetState(c *gin.Context)

	// ListFactories retrieves factory records, optionally filtered by owner
	// GET /api/v1/factories?owner=<address>
	ListFactories(c *gin.Context)

	// ListProducts retrieves product records, optionally filtered by factory
	// GET /api/v1/products?factory=<address>
	ListProducts(c *gin.Context)

	// ListSellers retrieves seller records, optionally filtered by owner
	// GET /api/v1/sellers?owner=<address>
	ListSellers(c *gin.Context)

	// ListWarehouses retrieves warehouse records, optionally filtered by owner
	// GET /api/v1/warehouses?owner=<address>
	ListWarehouses(c *gin.Context)

	// ListLogistics retrieves shipment records, optionally filtered by owner
	// GET /api/v1/logistics?owner=<address>
	ListLogistics(c *gin.Context)

	// ListInspectors retrieves inspector records, optionally filtered by owner
	// GET /api/v1/inspectors?owner=<address>
	ListInspectors(c *gin.Context)

	// ListTransactions retrieves payment records, optionally filtered by
	// counterparty
	// GET /api/v1/transactions?party=<address>
	ListTransactions(c *gin.Context)

	// ListOrders retrieves order records, optionally filtered by seller
	// GET /api/v1/orders?seller=<address>
	ListOrders(c *gin.Context)

	// ListSellerStocks retrieves per-seller stock records, optionally
	// filtered by seller
	// GET /api/v1/seller-stocks?seller=<address>
	ListSellerStocks(c *gin.Context)

	// ListCustomerProducts retrieves purchase records, optionally filtered
	// by owner
	// GET /api/v1/customer-products?owner=<address>
	ListCustomerProducts(c *gin.Context)

	// GetFactory retrieves a single factory by account address
	// GET /api/v1/factories/:address
	GetFactory(c *gin.Context)

	// GetProduct retrieves a single product by account address
	// GET /api/v1/products/:address
	GetProduct(c *gin.Context)

	// GetOrder retrieves a single order by account address
	// GET /api/v1/orders/:address
	GetOrder(c *gin.Context)

	// GetUser retrieves the user profile derived from a wallet address
	// GET /api/v1/users/:owner
	GetUser(c *gin.Context)

	// GetDashboard builds a role-scoped dashboard snapshot
	// GET /api/v1/dashboards/:role?owner=<address>
	GetDashboard(c *gin.Context)

	// UpdatePlatformFee submits a platform fee change (requires authentication)
	// POST /api/v1/operations/fee
	UpdatePlatformFee(c *gin.Context)

	// WithdrawBalance submits a balance withdrawal (requires authentication)
	// POST /api/v1/operations/withdraw
	WithdrawBalance(c *gin.Context)

	// RegisterUser submits a user registration (requires authentication)
	// POST /api/v1/operations/register
	RegisterUser(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	debug  bool
	repos  *repository.Set
	agg    *aggregate.Aggregator
	ledger Ledger
}

// NewHandler creates a new REST API handler
func NewHandler(debug bool, repos *repository.Set, agg *aggregate.Aggregator, ledger Ledger) Handler {
	return &handler{
		debug:  debug,
		repos:  repos,
		agg:    agg,
		ledger: ledger,
	}
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"program_id": h.ledger.ProgramID().String(),
	})
}

// GetState retrieves the singleton program state account
func (h *handler) GetState(c *gin.Context) {
	state, err := h.repos.FetchState(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *handler) ListFactories(c *gin.Context) {
	respondList(c, "owner", h.repos.Factories,
		func(f *domain.Factory) domain.Address { return f.Owner })
}

func (h *handler) ListProducts(c *gin.Context) {
	respondList(c, "factory", h.repos.Products,
		func(p *domain.Product) domain.Address { return p.Factory })
}

func (h *handler) ListSellers(c *gin.Context) {
	respondList(c, "owner", h.repos.Sellers,
		func(s *domain.Seller) domain.Address { return s.Owner })
}

func (h *handler) ListWarehouses(c *gin.Context) {
	respondList(c, "owner", h.repos.Warehouses,
		func(w *domain.Warehouse) domain.Address { return w.Owner })
}

func (h *handler) ListLogistics(c *gin.Context) {
	respondList(c, "owner", h.repos.Logistics,
		func(l *domain.Logistics) domain.Address { return l.Owner })
}

func (h *handler) ListInspectors(c *gin.Context) {
	respondList(c, "owner", h.repos.Inspectors,
		func(i *domain.Inspector) domain.Address { return i.Owner })
}

// ListTransactions filters by either counterparty of the payment.
func (h *handler) ListTransactions(c *gin.Context) {
	party, ok, err := queryAddress(c, "party")
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	var (
		txs []*domain.Transaction
	)
	if ok {
		txs, err = h.repos.Transactions.FetchFiltered(c.Request.Context(), func(t *domain.Transaction) bool {
			return t.From == party || t.To == party
		})
	} else {
		txs, err = h.repos.Transactions.FetchAll(c.Request.Context())
	}
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": txs, "count": len(txs)})
}

func (h *handler) ListOrders(c *gin.Context) {
	respondList(c, "seller", h.repos.Orders,
		func(o *domain.Order) domain.Address { return o.Seller })
}

func (h *handler) ListSellerStocks(c *gin.Context) {
	respondList(c, "seller", h.repos.SellerStocks,
		func(s *domain.SellerProductStock) domain.Address { return s.Seller })
}

func (h *handler) ListCustomerProducts(c *gin.Context) {
	respondList(c, "owner", h.repos.CustomerProducts,
		func(p *domain.CustomerProduct) domain.Address { return p.Owner })
}

func (h *handler) GetFactory(c *gin.Context) {
	respondOne(c, h.repos.Factories)
}

func (h *handler) GetProduct(c *gin.Context) {
	respondOne(c, h.repos.Products)
}

func (h *handler) GetOrder(c *gin.Context) {
	respondOne(c, h.repos.Orders)
}

// GetUser derives the user profile address from the wallet address and
// fetches it.
func (h *handler) GetUser(c *gin.Context) {
	owner, err := domain.ParseAddress(c.Param("owner"))
	if err != nil {
		respondBadRequest(c, "Invalid owner address", err.Error())
		return
	}

	user, err := h.repos.FetchUser(c.Request.Context(), owner)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetDashboard builds a role-scoped dashboard snapshot. The role comes from
// the path and the owner from the query; neither is inferred from session
// state.
func (h *handler) GetDashboard(c *gin.Context) {
	role, err := domain.ParseRole(c.Param("role"))
	if err != nil {
		respondBadRequest(c, "Invalid dashboard role", err.Error())
		return
	}

	owner, ok, err := queryAddress(c, "owner")
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if !ok {
		respondBadRequest(c, "Query parameter 'owner' is required")
		return
	}

	snapshot, err := h.agg.Dashboard(c.Request.Context(), role, owner)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// updateFeeRequest is the payload for a platform fee change.
type updateFeeRequest struct {
	FeeBasisPoints string `json:"fee_basis_points" binding:"required"`
}

// UpdatePlatformFee submits a platform fee change
func (h *handler) UpdatePlatformFee(c *gin.Context) {
	var req updateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	fee, err := parseAmount(req.FeeBasisPoints)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	op, err := ledger.UpdatePlatformFee(h.ledger.ProgramID(), h.ledger.Identity(), fee)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	h.submit(c, op)
}

// withdrawRequest is the payload for a balance withdrawal.
type withdrawRequest struct {
	Entity string `json:"entity" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// WithdrawBalance submits a balance withdrawal
func (h *handler) WithdrawBalance(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	entity, err := domain.ParseAddress(req.Entity)
	if err != nil {
		respondBadRequest(c, "Invalid entity address", err.Error())
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	op, err := ledger.WithdrawBalance(h.ledger.Identity(), entity, amount)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	h.submit(c, op)
}

// registerUserRequest is the payload for a user registration.
type registerUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

// RegisterUser submits a user registration
func (h *handler) RegisterUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	op, err := ledger.RegisterUser(h.ledger.ProgramID(), h.ledger.Identity(), req.Name, req.Email, role)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	h.submit(c, op)
}

// submit broadcasts a built operation and writes the signature response.
func (h *handler) submit(c *gin.Context, op ledger.OperationSpec) {
	signature, err := h.ledger.Submit(c.Request.Context(), op)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature": signature})
}

// queryAddress parses an optional address query parameter.
func queryAddress(c *gin.Context, name string) (domain.Address, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return domain.ZeroAddress, false, nil
	}
	addr, err := domain.ParseAddress(raw)
	if err != nil {
		return domain.ZeroAddress, false, err
	}
	return addr, true, nil
}

// parseAmount parses a decimal string into an arbitrary-precision integer.
// Amounts ride as strings so callers never round-trip them through floats.
func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, &domain.ValidationError{Reason: "amount must be a decimal integer"}
	}
	return amount, nil
}

// respondList fetches a collection with an optional relation filter and
// writes the standard list envelope.
func respondList[T any](c *gin.Context, filterParam string, repo *repository.Repository[T], relationOf func(T) domain.Address) {
	filter, ok, err := queryAddress(c, filterParam)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	var records []T
	if ok {
		records, err = repo.FetchFiltered(c.Request.Context(), func(r T) bool {
			return relationOf(r) == filter
		})
	} else {
		records, err = repo.FetchAll(c.Request.Context())
	}
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": records, "count": len(records)})
}

// respondOne fetches a single record by its path address.
func respondOne[T any](c *gin.Context, repo *repository.Repository[T]) {
	addr, err := domain.ParseAddress(c.Param("address"))
	if err != nil {
		respondBadRequest(c, "Invalid account address", err.Error())
		return
	}

	record, err := repo.FetchOne(c.Request.Context(), addr)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
