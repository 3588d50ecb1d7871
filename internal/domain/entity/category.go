package entity

import "time"

// Category agrupa productos para la valorización.
type Category struct {
	ID        string
	CompanyID string
	Name      string
	Code      string // código único por empresa
	CreatedAt time.Time
	UpdatedAt time.Time
}
