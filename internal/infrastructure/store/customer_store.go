package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/example/retail-shop/internal/domain/customer"
)

const customerColumns = `customer_id, first_name, last_name, email, password_hash,
	COALESCE(phone, ''), COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''),
	COALESCE(zip_code, ''), COALESCE(country, ''), customer_segment, role,
	lifetime_value, registration_date`

// PostgresCustomerStore implements customer.Repository. When bound to a
// transaction, reads by id take a row lock so concurrent checkouts for the
// same customer serialise their lifetime value updates.
type PostgresCustomerStore struct {
	db        dbtx
	forUpdate bool
}

func NewPostgresCustomerStore(db *sql.DB) *PostgresCustomerStore {
	return &PostgresCustomerStore{db: db}
}

func (s *PostgresCustomerStore) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE customer_id = $1`
	if s.forUpdate {
		query += ` FOR UPDATE`
	}
	return scanCustomer(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresCustomerStore) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return scanCustomer(s.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email),
	))
}

func (s *PostgresCustomerStore) Save(ctx context.Context, c *customer.Customer) error {
	var err error
	if c.ID == 0 {
		err = s.db.QueryRowContext(ctx,
			`INSERT INTO customers (first_name, last_name, email, password_hash, phone, address,
				city, state, zip_code, country, customer_segment, role, lifetime_value, registration_date)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			 RETURNING customer_id`,
			c.FirstName, c.LastName, c.Email, c.PasswordHash, c.Phone, c.Address,
			c.City, c.State, c.ZipCode, c.Country, c.Segment, c.Role, c.LifetimeValue, c.RegistrationDate,
		).Scan(&c.ID)
	} else {
		var res sql.Result
		res, err = s.db.ExecContext(ctx,
			`UPDATE customers SET first_name = $2, last_name = $3, email = $4, password_hash = $5,
				phone = $6, address = $7, city = $8, state = $9, zip_code = $10, country = $11,
				customer_segment = $12, role = $13, lifetime_value = $14
			 WHERE customer_id = $1`,
			c.ID, c.FirstName, c.LastName, c.Email, c.PasswordHash, c.Phone, c.Address,
			c.City, c.State, c.ZipCode, c.Country, c.Segment, c.Role, c.LifetimeValue,
		)
		if err == nil {
			if n, _ := res.RowsAffected(); n == 0 {
				return customer.ErrCustomerNotFound
			}
		}
	}
	if isUniqueViolation(err) {
		return customer.ErrEmailTaken
	}
	return err
}

func scanCustomer(row *sql.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PasswordHash,
		&c.Phone, &c.Address, &c.City, &c.State, &c.ZipCode, &c.Country,
		&c.Segment, &c.Role, &c.LifetimeValue, &c.RegistrationDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customer.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
