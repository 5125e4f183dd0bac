package entity

import "time"

// Warehouse representa una bodega o sucursal dueña de sus pools de stock.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
