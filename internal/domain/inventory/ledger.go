package inventory

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// PairKey identifica una línea de stock: producto en ubicación.
type PairKey struct {
	ProductID  int64
	LocationID int64
}

// LatestSnapshots reduce los inventarios al más reciente por par con CapturedAt <= cutoff.
// Con CapturedAt idéntico gana el de mayor ID.
func LatestSnapshots(snapshots []entity.InventorySnapshot, cutoff time.Time) map[PairKey]entity.InventorySnapshot {
	latest := make(map[PairKey]entity.InventorySnapshot, len(snapshots))
	for _, s := range snapshots {
		if s.CapturedAt.After(cutoff) {
			continue
		}
		key := PairKey{ProductID: s.ProductID, LocationID: s.LocationID}
		cur, ok := latest[key]
		if !ok || s.CapturedAt.After(cur.CapturedAt) || (s.CapturedAt.Equal(cur.CapturedAt) && s.ID > cur.ID) {
			latest[key] = s
		}
	}
	return latest
}

// Fold reconstruye la cantidad de cada par al instante cutoff:
// cantidad del último inventario <= cutoff + suma de deltas con OccurredAt en (inventario, cutoff].
// Sin inventario la base es 0 y cuentan todos los movimientos <= cutoff.
// El resultado depende solo de las fechas, no del orden de las entradas.
func Fold(snapshots []entity.InventorySnapshot, movements []entity.StockMovement, cutoff time.Time) map[PairKey]int64 {
	latest := LatestSnapshots(snapshots, cutoff)

	quantities := make(map[PairKey]int64, len(latest))
	for key, s := range latest {
		quantities[key] = s.Quantity
	}
	for _, m := range movements {
		if m.OccurredAt.After(cutoff) {
			continue
		}
		key := PairKey{ProductID: m.ProductID, LocationID: m.LocationID}
		if s, ok := latest[key]; ok && !m.OccurredAt.After(s.CapturedAt) {
			continue
		}
		quantities[key] += m.QuantityDelta
	}
	return quantities
}

// Total suma las cantidades de todos los pares.
func Total(quantities map[PairKey]int64) int64 {
	var total int64
	for _, q := range quantities {
		total += q
	}
	return total
}
