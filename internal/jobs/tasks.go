// Package jobs agrupa las tareas en segundo plano (Asynq sobre Redis).
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola única del worker.
	QueueDefault = "default"

	// TaskValuationWarmup precalcula la caché de valorización de los tenants activos.
	TaskValuationWarmup = "valuation:warmup"
)

// WarmupPayload parámetros de TaskValuationWarmup.
type WarmupPayload struct {
	Days       int    `json:"days"`
	TenantCode string `json:"tenant_code,omitempty"` // vacío = todos los tenants activos
}

// NewWarmupTask construye la tarea de precálculo.
func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("jobs: payload warmup: %w", err)
	}
	return asynq.NewTask(TaskValuationWarmup, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
