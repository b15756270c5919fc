package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing represents a property offered by a host.
type Listing struct {
	ID            string
	HostID        string
	Title         string
	Location      string
	PricePerNight decimal.Decimal
	CreatedAt     time.Time
}
