package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const productColumns = `id,name,description,category,base_price,discount_price,discount_start_date,discount_end_date,
	discount_active,purity_percentage,molecular_weight,cas_number,sequence,storage_conditions,inclusions,
	stock_quantity,available,featured,image_url,safety_sheet_url,created_at,updated_at`

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanProduct(row rowScanner) (*Product, error) {
	p := &Product{}
	var (
		discountPrice              sql.NullFloat64
		discountStart, discountEnd sql.NullTime
		molecularWeight, cas, seq  sql.NullString
		imageURL, safetySheet      sql.NullString
		storage                    sql.NullString
		inclusions                 pq.StringArray
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.BasePrice, &discountPrice,
		&discountStart, &discountEnd, &p.DiscountActive, &p.PurityPercentage, &molecularWeight,
		&cas, &seq, &storage, &inclusions, &p.StockQuantity, &p.Available, &p.Featured,
		&imageURL, &safetySheet, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if discountPrice.Valid {
		p.DiscountPrice = &discountPrice.Float64
	}
	if discountStart.Valid {
		p.DiscountStartDate = &discountStart.Time
	}
	if discountEnd.Valid {
		p.DiscountEndDate = &discountEnd.Time
	}
	p.MolecularWeight = nullString(molecularWeight)
	p.CASNumber = nullString(cas)
	p.Sequence = nullString(seq)
	p.ImageURL = nullString(imageURL)
	p.SafetySheetURL = nullString(safetySheet)
	p.StorageConditions = storage.String
	p.Inclusions = inclusions
	return p, nil
}

func (r *postgresRepo) List(ctx context.Context, availableOnly bool) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if availableOnly {
		query += ` WHERE available=true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, r.attachVariations(ctx, products)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return p, r.attachVariations(ctx, []*Product{p})
}

func (r *postgresRepo) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]*PaymentMethod, error) {
	query := `SELECT id,name,account_number,account_name,qr_code_url,active,sort_order FROM payment_methods`
	if activeOnly {
		query += ` WHERE active=true`
	}
	query += ` ORDER BY sort_order ASC, name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []*PaymentMethod
	for rows.Next() {
		m := &PaymentMethod{}
		var qr sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &m.AccountNumber, &m.AccountName, &qr, &m.Active, &m.SortOrder); err != nil {
			return nil, err
		}
		m.QRCodeURL = nullString(qr)
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) attachVariations(ctx context.Context, products []*Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, 0, len(products))
	byID := make(map[string]*Product, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id,product_id,name,quantity_mg,price,discount_price,discount_active,stock_quantity,created_at
		FROM product_variations WHERE product_id = ANY($1) ORDER BY quantity_mg ASC`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		v := Variation{}
		var discountPrice sql.NullFloat64
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.QuantityMG, &v.Price,
			&discountPrice, &v.DiscountActive, &v.StockQuantity, &v.CreatedAt); err != nil {
			return err
		}
		if discountPrice.Valid {
			v.DiscountPrice = &discountPrice.Float64
		}
		if p, ok := byID[v.ProductID]; ok {
			p.Variations = append(p.Variations, v)
		}
	}
	return rows.Err()
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
