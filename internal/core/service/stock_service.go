package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/reservation-service/internal/core/domain"
	"github.com/rl1809/reservation-service/internal/port"
)

// ItemKey is the counter key holding the reserved count for one item.
func ItemKey(itemID int) string {
	return fmt.Sprintf("item.%d", itemID)
}

// StockService serves the per-item catalog. Each item has an independent
// reserved counter; the reserve path goes through the store's
// compare-and-swap primitive so the check and the increment cannot race.
type StockService struct {
	counters port.CounterRepository
	products []domain.Product
	log      *zap.SugaredLogger
}

// NewStockService builds the service over an immutable catalog. A nil
// products slice loads the default catalog.
func NewStockService(counters port.CounterRepository, products []domain.Product, log *zap.SugaredLogger) *StockService {
	if products == nil {
		products = domain.DefaultCatalog()
	}
	return &StockService{counters: counters, products: products, log: log}
}

func (s *StockService) ListProducts() []domain.Product {
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// GetProduct returns the catalog entry enriched with the quantity still
// available. A missing reserved counter counts as zero reserved.
func (s *StockService) GetProduct(ctx context.Context, itemID int) (domain.ProductDetail, error) {
	product, ok := s.findProduct(itemID)
	if !ok {
		return domain.ProductDetail{}, domain.ErrProductNotFound
	}

	reserved, _, err := s.counters.GetCount(ctx, ItemKey(itemID))
	if err != nil {
		return domain.ProductDetail{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return domain.ProductDetail{
		Product:         product,
		CurrentQuantity: product.InitialAvailableQuantity - reserved,
	}, nil
}

// ReserveProduct reserves one unit of the item, atomically on the store:
// the reserved counter is only incremented while it is below the item's
// initial quantity.
func (s *StockService) ReserveProduct(ctx context.Context, itemID int) error {
	product, ok := s.findProduct(itemID)
	if !ok {
		return domain.ErrProductNotFound
	}

	reserved, err := s.counters.IncrementIfBelow(ctx, ItemKey(itemID), product.InitialAvailableQuantity)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if !reserved {
		return fmt.Errorf("%w: not enough stock available", domain.ErrResourceExhausted)
	}

	s.log.Infow("product reserved", "item_id", itemID)
	return nil
}

// ResetStock zeroes every item's reserved counter. Run at startup.
func (s *StockService) ResetStock(ctx context.Context) error {
	for _, product := range s.products {
		if err := s.counters.SetCount(ctx, ItemKey(product.ItemID), 0); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}
	return nil
}

func (s *StockService) findProduct(itemID int) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ItemID == itemID {
			return p, true
		}
	}
	return domain.Product{}, false
}
