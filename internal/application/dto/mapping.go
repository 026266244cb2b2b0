package dto

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// MovementFromEntity convierte un movimiento del dominio a su DTO.
func MovementFromEntity(m *entity.StockMovement) MovementDTO {
	return MovementDTO{
		ID:                 m.ID,
		ProductID:          m.ProductID,
		StockLocationID:    m.LocationID,
		QuantityDelta:      m.QuantityDelta,
		Reason:             m.Reason,
		OccurredAt:         m.OccurredAt,
		SourceDocumentType: m.SourceDocumentType,
		SourceDocumentID:   m.SourceDocumentID,
	}
}

// MovementsFromEntities convierte una lista conservando el orden.
func MovementsFromEntities(list []*entity.StockMovement) []MovementDTO {
	out := make([]MovementDTO, 0, len(list))
	for _, m := range list {
		out = append(out, MovementFromEntity(m))
	}
	return out
}

// SnapshotFromEntity convierte un inventario del dominio a su DTO.
func SnapshotFromEntity(s *entity.InventorySnapshot) SnapshotDTO {
	return SnapshotDTO{
		ID:              s.ID,
		ProductID:       s.ProductID,
		StockLocationID: s.LocationID,
		Quantity:        s.Quantity,
		CapturedAt:      s.CapturedAt,
	}
}
