// Package catalog verifica que productos y ubicaciones referenciados existan antes de escribir en el diario.
package catalog

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Ensure devuelve domain.ErrNotFound con el primer producto o ubicación inexistente.
func Ensure(
	ctx context.Context,
	products repository.ProductRepository,
	locations repository.StockLocationRepository,
	productIDs, locationIDs []int64,
) error {
	found, err := products.GetByIDs(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("catalog: productos: %w", err)
	}
	for _, id := range productIDs {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
		}
	}
	known, err := locations.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("catalog: ubicaciones: %w", err)
	}
	set := make(map[int64]struct{}, len(known))
	for _, id := range known {
		set[id] = struct{}{}
	}
	for _, id := range locationIDs {
		if _, ok := set[id]; !ok {
			return fmt.Errorf("ubicación %d: %w", id, domain.ErrNotFound)
		}
	}
	return nil
}
