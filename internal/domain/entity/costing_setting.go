package entity

import "time"

// CostingSetting configuración de política de costeo por empresa (fila única por tenant).
type CostingSetting struct {
	CompanyID string
	Policy    string // FIFO, LIFO, AVERAGE
	UpdatedBy string
	UpdatedAt time.Time
}
