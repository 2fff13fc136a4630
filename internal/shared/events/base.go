package events

import (
	"encoding/json"
	"time"
)

// Base de todos los eventos de integración
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Key       string          `json:"key,omitempty"` // clave de partición (ej. ID del agregado)
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"` // contenido específico del evento
}

// PartitionKey permite a los publishers agrupar eventos del mismo agregado.
func (e IntegrationEvent) PartitionKey() string {
	return e.Key
}

// NewIntegrationEvent serializa data y construye el sobre del evento.
func NewIntegrationEvent(eventType, key string, data interface{}) (IntegrationEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return IntegrationEvent{}, err
	}
	return IntegrationEvent{
		Type:      eventType,
		Key:       key,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}
