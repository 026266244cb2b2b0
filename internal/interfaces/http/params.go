package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// paramID lee un id positivo del path.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s debe ser un entero positivo", name)
	}
	return id, nil
}

// queryOptionalID lee un id positivo opcional de la query. Vacío = nil.
func queryOptionalID(c *fiber.Ctx, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%s debe ser un entero positivo", name)
	}
	return &id, nil
}

// queryLocation stockLocationId: "", "all" (cualquier capitalización) o entero positivo.
func queryLocation(c *fiber.Ctx) (*int64, error) {
	raw := strings.TrimSpace(c.Query("stockLocationId"))
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf(`stockLocationId debe ser "all" o un entero positivo`)
	}
	return &id, nil
}

// queryDays days con valor por defecto def.
func queryDays(c *fiber.Ctx, def int) (int, error) {
	raw := strings.TrimSpace(c.Query("days"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("days debe ser un entero positivo")
	}
	return n, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDate acepta fecha ISO (con o sin hora). Sin zona se interpreta en UTC.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida %q, se espera formato ISO (YYYY-MM-DD o RFC3339)", raw)
}

// queryOptionalDate fecha opcional de la query.
func queryOptionalDate(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
