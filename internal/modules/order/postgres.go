package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id, customer_name, customer_email, customer_phone,
	shipping_address, shipping_city, shipping_state, shipping_zip_code, shipping_country, shipping_location,
	order_items, total_price, shipping_fee, payment_method_id, payment_method_name, payment_proof_url,
	contact_method, notes, order_status, payment_status, created_at`

// Insert writes the order in one statement; order_items is a jsonb snapshot.
func (r *postgresRepo) Insert(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode order_items: %w", err)
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO orders
		  (customer_name, customer_email, customer_phone,
		   shipping_address, shipping_city, shipping_state, shipping_zip_code, shipping_country, shipping_location,
		   order_items, total_price, shipping_fee, payment_method_id, payment_method_name, payment_proof_url,
		   contact_method, notes, order_status, payment_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING id, created_at`,
		o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.ShippingAddress, o.ShippingCity, o.ShippingState, o.ShippingZipCode, o.ShippingCountry, o.ShippingLocation,
		items, o.TotalPrice, o.ShippingFee, o.PaymentMethodID, o.PaymentMethod, o.PaymentProofURL,
		o.ContactMethod, o.Notes, o.OrderStatus, o.PaymentStatus,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return o, err
}

func (r *postgresRepo) ListRecent(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_name, total_price, order_items, created_at
		FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		var items []byte
		if err := rows.Scan(&s.ID, &s.CustomerName, &s.TotalPrice, &items, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &s.Items); err != nil {
			return nil, fmt.Errorf("decode order_items of %s: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	var (
		items          []byte
		methodID, name sql.NullString
		notes          sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.ShippingAddress, &o.ShippingCity, &o.ShippingState, &o.ShippingZipCode, &o.ShippingCountry, &o.ShippingLocation,
		&items, &o.TotalPrice, &o.ShippingFee, &methodID, &name, &o.PaymentProofURL,
		&o.ContactMethod, &notes, &o.OrderStatus, &o.PaymentStatus, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order_items: %w", err)
	}
	o.PaymentMethodID = nullableString(methodID)
	o.PaymentMethod = nullableString(name)
	o.Notes = nullableString(notes)
	return o, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
