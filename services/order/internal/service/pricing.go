package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/restaurant_orders/services/order/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuCatalog looks up sellable menu items of one vendor.
type MenuCatalog interface {
	FindMenuItems(ctx context.Context, vendorID uuid.UUID, ids []uuid.UUID) ([]models.MenuItem, error)
}

type ResolvedItem struct {
	Name  string
	Price decimal.Decimal
}

type PriceResolver struct {
	Catalog MenuCatalog
}

// Resolve prices every distinct menu item referenced by lines. It fails as a
// whole if any of them is unknown, unavailable or owned by another vendor.
func (p *PriceResolver) Resolve(ctx context.Context, vendorID uuid.UUID, lines []models.OrderItem) (map[uuid.UUID]ResolvedItem, error) {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.MenuItemID]; ok {
			continue
		}
		seen[l.MenuItemID] = struct{}{}
		ids = append(ids, l.MenuItemID)
	}

	found, err := p.Catalog.FindMenuItems(ctx, vendorID, ids)
	if err != nil {
		return nil, err
	}

	prices := make(map[uuid.UUID]ResolvedItem, len(found))
	for _, m := range found {
		prices[m.ID] = ResolvedItem{Name: m.Name, Price: m.Price}
	}
	if len(prices) != len(ids) {
		return nil, fmt.Errorf("%w: one or more items are invalid or unavailable", ErrInvalidReference)
	}
	return prices, nil
}

type TotalCalculator struct {
	Prices *PriceResolver
}

// Total returns the sum of quantity * unit price over lines and fills in
// each line's Name and UnitPrice.
func (c *TotalCalculator) Total(ctx context.Context, vendorID uuid.UUID, lines []models.OrderItem) (decimal.Decimal, error) {
	prices, err := c.Prices.Resolve(ctx, vendorID, lines)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for i := range lines {
		p := prices[lines[i].MenuItemID]
		lines[i].Name = p.Name
		lines[i].UnitPrice = p.Price
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(lines[i].Quantity))))
	}
	return total, nil
}
