package valuation

import (
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// endOfDay último instante del día representable en PostgreSQL (resolución de microsegundos).
func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Microsecond)
}

func dayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func scopeKeys(locationIDs []int64) []string {
	keys := make([]string, 0, len(locationIDs)+1)
	keys = append(keys, entity.AllScopeKey)
	for _, id := range locationIDs {
		keys = append(keys, entity.LocationScopeKey(id))
	}
	return keys
}

// missingScopes scopes a calcular para day. Hoy se recalcula entero si refresh; un día
// pasado cuya fila se calculó antes de su fin de día (cuando aún era hoy) se recalcula
// con el corte de fin de día.
func missingScopes(have dayRows, scopes []string, day time.Time, isToday, refresh bool) []string {
	if isToday && refresh {
		return scopes
	}
	var missing []string
	for _, s := range scopes {
		row, ok := have[s]
		if !ok || (!isToday && row.ComputedAt.Before(endOfDay(day))) {
			missing = append(missing, s)
		}
	}
	return missing
}

func locationFromScope(scope string) int64 {
	id, _ := strconv.ParseInt(strings.TrimPrefix(scope, "loc:"), 10, 64)
	return id
}

func containsID(ids []int64, id int64) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
