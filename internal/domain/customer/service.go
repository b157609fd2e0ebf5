package customer

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/example/retail-shop/internal/auth"
	"github.com/shopspring/decimal"
)

// RegisterRequest carries the fields a new customer signs up with.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
	Segment   string `json:"customer_segment"`
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Register creates a customer with a bcrypt password hash, the default
// segment and a zero lifetime value.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Customer, error) {
	email := normalizeEmail(req.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, ErrInvalidName
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrCustomerNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	segment := strings.TrimSpace(req.Segment)
	if segment == "" {
		segment = DefaultSegment
	}

	now := s.now()
	c := &Customer{
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            email,
		PasswordHash:     hash,
		Phone:            req.Phone,
		Address:          req.Address,
		City:             req.City,
		State:            req.State,
		ZipCode:          req.ZipCode,
		Country:          req.Country,
		Segment:          segment,
		Role:             DefaultRole,
		LifetimeValue:    decimal.NewNullDecimal(decimal.Zero),
		RegistrationDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}

	// The unique index on email still guards against a concurrent signup.
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Authenticate returns the customer whose password matches. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Customer, error) {
	c, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(password, c.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Customer, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return s.repo.FindByID(ctx, id)
}

// SearchByEmail returns the matching customer as a one-element slice, or an
// empty slice when nobody has that email.
func (s *Service) SearchByEmail(ctx context.Context, email string) ([]Customer, error) {
	c, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return []Customer{}, nil
		}
		return nil, err
	}
	return []Customer{*c}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
