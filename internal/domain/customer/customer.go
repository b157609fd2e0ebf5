package customer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/retail-shop/internal/domain/money"
	"github.com/shopspring/decimal"
)

const (
	DefaultSegment = "Standard"
	DefaultRole    = "customer"
)

var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("a valid email is required")
	ErrInvalidName        = errors.New("first name is required")
	ErrInvalidID          = errors.New("customer id must be positive")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Customer is a registered shopper. LifetimeValue is nullable for rows
// imported before the column existed; readers treat an absent value as zero.
type Customer struct {
	ID               int64               `json:"customer_id"`
	FirstName        string              `json:"first_name"`
	LastName         string              `json:"last_name"`
	Email            string              `json:"email"`
	PasswordHash     string              `json:"-"`
	Phone            string              `json:"phone"`
	Address          string              `json:"address"`
	City             string              `json:"city"`
	State            string              `json:"state"`
	ZipCode          string              `json:"zip_code"`
	Country          string              `json:"country"`
	Segment          string              `json:"customer_segment"`
	Role             string              `json:"role"`
	LifetimeValue    decimal.NullDecimal `json:"lifetime_value"`
	RegistrationDate time.Time           `json:"registration_date"`
}

// AddToLifetimeValue increments the running lifetime value by amount.
func (c *Customer) AddToLifetimeValue(amount decimal.Decimal) {
	current := decimal.Zero
	if c.LifetimeValue.Valid {
		current = c.LifetimeValue.Decimal
	}
	c.LifetimeValue = decimal.NullDecimal{Decimal: current.Add(amount), Valid: true}
}

// Repository persists customers. Save inserts when ID is zero and assigns the
// new id, otherwise it overwrites the stored record.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	Save(ctx context.Context, c *Customer) error
}

func (c Customer) MarshalJSON() ([]byte, error) {
	type plain Customer
	return json.Marshal(struct {
		plain
		LifetimeValue *string `json:"lifetime_value"`
	}{plain(c), money.FormatNull(c.LifetimeValue)})
}
