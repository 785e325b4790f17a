// Package aggregate composes repository fetches into role-scoped dashboard
// snapshots. Each variant fetches only the collections its view needs, runs
// the fetches concurrently on a bounded pool, and resolves relations after
// every contributing fetch has settled.
package aggregate

import (
	"context"
	"fmt"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/veritrace/supplyview/internal/domain"
	"github.com/veritrace/supplyview/internal/logger"
	"github.com/veritrace/supplyview/internal/repository"
)

const (
	defaultWorkers   = 8
	defaultQueueSize = 64
)

// Aggregator builds dashboard snapshots for an explicit owner identity. The
// owner is always an argument; nothing here reads ambient session state.
type Aggregator struct {
	repos *repository.Set
	pool  pond.Pool
}

// Config bounds the fetch fan-out pool.
type Config struct {
	Workers   int
	QueueSize int
}

// New creates an aggregator over the repository set.
func New(repos *repository.Set, cfg Config) *Aggregator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	return &Aggregator{
		repos: repos,
		pool:  pond.NewPool(workers, pond.WithQueueSize(queueSize)),
	}
}

// Close stops the fetch pool and waits for in-flight fetches to finish.
func (a *Aggregator) Close() {
	a.pool.StopAndWait()
}

// Dashboard builds the snapshot for the requested aggregation variant. The
// role is part of the request, never inferred from the owner address.
func (a *Aggregator) Dashboard(ctx context.Context, role domain.Role, owner domain.Address) (Snapshot, error) {
	switch role {
	case domain.RoleFactory:
		return a.Factory(ctx, owner)
	case domain.RoleSeller:
		return a.Seller(ctx, owner)
	case domain.RoleWarehouse:
		return a.Warehouse(ctx, owner)
	case domain.RoleLogistics:
		return a.Logistics(ctx, owner)
	case domain.RoleInspector:
		return a.Inspector(ctx, owner)
	case domain.RoleCustomer:
		return a.Customer(ctx, owner)
	default:
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("unknown dashboard role %d", role)}
	}
}

// Factory builds the factory owner's snapshot.
func (a *Aggregator) Factory(ctx context.Context, owner domain.Address) (*FactoryDashboard, error) {
	var (
		factories []*domain.Factory
		products  []*domain.Product
		txs       []*domain.Transaction
	)

	c := a.newCollector()
	c.fetch(domain.KindFactory, func() (err error) {
		factories, err = a.repos.Factories.FetchAll(ctx)
		return err
	})
	c.fetch(domain.KindProduct, func() (err error) {
		products, err = a.repos.Products.FetchAll(ctx)
		return err
	})
	c.fetch(domain.KindTransaction, func() (err error) {
		txs, err = a.repos.Transactions.FetchAll(ctx)
		return err
	})

	incomplete, err := c.wait(ctx)
	if err != nil {
		return nil, err
	}
	return BuildFactoryDashboard(owner, factories, products, txs, incomplete), nil
}

// Seller builds the seller owner's snapshot.
func (a *Aggregator) Seller(ctx context.Context, owner domain.Address) (*SellerDashboard, error) {
	var (
		sellers []*domain.Seller
		stocks  []*domain.SellerProductStock
		orders  []*domain.Order
		txs     []*domain.Transaction
	)

	c := a.newCollector()
	c.fetch(domain.KindSeller, func() (err error) {
		sellers, err = a.repos.Sellers.FetchAll(ctx)
		return err
	})
	c.fetch(domain.KindSellerProductStock, func() (err error) {
		stocks, err = a.repos.SellerStocks.FetchAll(ctx)
		return err
	})
	c.fetch(domain.KindOrder, func() (err error) {
		orders, err = a.repos.Orders.FetchAll(ctx)
		return err
	})
	c.fetch(domain.KindTransaction, func() (err error) {
		txs, err = a.repos.Transactions.FetchAll(ctx)
		return err
	})

	incomplete, err := c.wait(ctx)
	if err != nil {
		return nil, err
	}
	return BuildSellerDashboard(owner, sellers, stocks, orders, txs, incomplete), nil
}

// Warehouse builds the warehouse owner's snapshot.
func (a *Aggregator) Warehouse(ctx context.Context, owner domain.Address) (*WarehouseDashboard, error) {
	var (
		warehouses []*domain.Warehouse
		orders     []*domain.Order
		txs        []*domain.Transaction
	)

	c := a.newCollector()
	c.fetch(domain.KindWarehouse, func() (err error) {
		warehouses, err = a.repos.Warehouses.FetchAll(ctx)
		return err
	})
	c.fetch(domain.KindOrder, func() (err error) {
		orders, err = a.repos.Orders.FetchAll(ctx)
		return err
	})
	c.fetch(domain.KindTransaction, func() (err error) {
		txs, err = a.repos.Transactions.FetchAll(ctx)
		return err
	})

	incomplete, err := c.wait(ctx)
	if err != nil {
		return nil, err
	}
	return BuildWarehouseDashboard(owner, warehouses, orders, txs, incomplete), nil
}

// Logistics builds the shipment operator's snapshot.
func (a *Aggregator) Logistics(ctx context.Context, owner domain.Address) (*LogisticsDashboard, error) {
	var (
		shipments []*domain.Logistics
		orders    []*domain.Order
	)

	c := a.newCollector()
	c.fetch(domain.KindLogistics, func() (err error) {
		shipments, err = a.repos.Logistics.FetchAll(ctx)
		return err
	})
	c.fetch(domain.KindOrder, func() (err error) {
		orders, err = a.repos.Orders.FetchAll(ctx)
		return err
	})

	incomplete, err := c.wait(ctx)
	if err != nil {
		return nil, err
	}
	return BuildLogisticsDashboard(owner, shipments, orders, incomplete), nil
}

// Inspector builds the product inspector's snapshot.
func (a *Aggregator) Inspector(ctx context.Context, owner domain.Address) (*InspectorDashboard, error) {
	var (
		inspectors []*domain.Inspector
		products   []*domain.Product
		txs        []*domain.Transaction
	)

	c := a.newCollector()
	c.fetch(domain.KindInspector, func() (err error) {
		inspectors, err = a.repos.Inspectors.FetchAll(ctx)
		return err
	})
	c.fetch(domain.KindProduct, func() (err error) {
		products, err = a.repos.Products.FetchAll(ctx)
		return err
	})
	c.fetch(domain.KindTransaction, func() (err error) {
		txs, err = a.repos.Transactions.FetchAll(ctx)
		return err
	})

	incomplete, err := c.wait(ctx)
	if err != nil {
		return nil, err
	}
	return BuildInspectorDashboard(owner, inspectors, products, txs, incomplete), nil
}

// Customer builds the purchasing customer's snapshot.
func (a *Aggregator) Customer(ctx context.Context, owner domain.Address) (*CustomerDashboard, error) {
	var (
		purchases []*domain.CustomerProduct
		txs       []*domain.Transaction
	)

	c := a.newCollector()
	c.fetch(domain.KindCustomerProduct, func() (err error) {
		purchases, err = a.repos.CustomerProducts.FetchAll(ctx)
		return err
	})
	c.fetch(domain.KindTransaction, func() (err error) {
		txs, err = a.repos.Transactions.FetchAll(ctx)
		return err
	})

	incomplete, err := c.wait(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCustomerDashboard(owner, purchases, txs, incomplete), nil
}

// collector tracks one snapshot's concurrent fetches and which entity kinds
// failed.
type collector struct {
	pool  pond.Pool
	kinds []domain.EntityKind
	tasks []pond.Task
}

func (a *Aggregator) newCollector() *collector {
	return &collector{pool: a.pool}
}

// fetch submits one collection fetch to the pool, tagged with its kind.
func (c *collector) fetch(kind domain.EntityKind, fn func() error) {
	c.kinds = append(c.kinds, kind)
	c.tasks = append(c.tasks, c.pool.SubmitErr(fn))
}

// wait blocks until every submitted fetch settles. Failed kinds are reported
// in the returned incomplete list so the snapshot can degrade instead of
// failing, except when every fetch failed, which means the connection itself
// is down and the first error is returned as-is.
func (c *collector) wait(ctx context.Context) ([]domain.EntityKind, error) {
	var (
		incomplete []domain.EntityKind
		firstErr   error
	)
	for i, task := range c.tasks {
		if err := task.Wait(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			incomplete = append(incomplete, c.kinds[i])
			logger.WarnCtx(ctx, "dashboard fetch degraded",
				zap.String("kind", string(c.kinds[i])),
				zap.Error(err),
			)
		}
	}

	if firstErr != nil && len(incomplete) == len(c.tasks) {
		return nil, firstErr
	}
	return incomplete, nil
}
