package customers

import "time"

// Customer tracks a buyer and the channel that brought them in.
// Customers may be auto-created inside the sale transaction when an
// order arrives with a name instead of an id.
type Customer struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	SourceChannel string    `json:"source_channel,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
