package store

import (
	"errors"

	"github.com/google/uuid"

	"github.com/mcclellann/fredMortgage/pkg/models"
)

// ErrNotFound is returned when a mortgage does not exist.
var ErrNotFound = errors.New("mortgage not found")

// Storage defines the interface for database operations related to mortgage
// scenarios and their extra payments.
type Storage interface {
	CreateMortgage(mortgage *models.Mortgage) error
	GetMortgage(id uuid.UUID) (*models.Mortgage, error)
	UpdateMortgage(mortgage *models.Mortgage) error
	DeleteMortgage(id uuid.UUID) error
	GetAllMortgages() ([]*models.Mortgage, error)

	// GetExtraPayments returns the extra payments of a mortgage ordered by due date.
	GetExtraPayments(mortgageID uuid.UUID) ([]*models.ExtraPayment, error)
	// ReplaceExtraPayments atomically swaps all extra payments of a mortgage.
	ReplaceExtraPayments(mortgageID uuid.UUID, payments []*models.ExtraPayment) error

	Close() error
}
