package entity

import (
	"strconv"
	"time"
)

// AllScopeKey partición de caché que agrega todas las ubicaciones.
const AllScopeKey = "all"

// LocationScopeKey partición de caché de una ubicación concreta.
func LocationScopeKey(locationID int64) string {
	return "loc:" + strconv.FormatInt(locationID, 10)
}

// DailyValuation fila de caché con el valor total del stock de un día (UTC) para un scope.
// Es un artefacto derivado: se puede borrar y recalcular en cualquier momento.
type DailyValuation struct {
	ValuationDate   time.Time // medianoche UTC
	ScopeKey        string
	LocationID      *int64 // nil para AllScopeKey
	TotalValueCents int64
	Currency        string
	ComputedAt      time.Time
}
