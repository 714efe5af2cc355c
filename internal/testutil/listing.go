package testutil

import (
	"bds-go/internal/model"
)

// NewListing returns a minimally populated listing for tests.
func NewListing(id, category string, price float64) *model.Listing {
	return &model.Listing{
		ID:       id,
		Category: category,
		Price:    price,
		Status:   model.StatusAvailable,
	}
}

// FloatPtr returns a pointer to f, for optional area fields.
func FloatPtr(f float64) *float64 {
	return &f
}
