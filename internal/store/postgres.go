package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/models"
)

// Postgres persists receipts in a single receipts table. Monetary fields are
// nullable NUMERIC columns so an absent extraction stays absent.
type Postgres struct {
	pool *pgxpool.Pool
}

const receiptsSchema = `
CREATE TABLE IF NOT EXISTS receipts (
	id UUID PRIMARY KEY,
	file_name TEXT NOT NULL DEFAULT '',
	file_url TEXT NOT NULL DEFAULT '',
	raw_text TEXT NOT NULL DEFAULT '',
	amount NUMERIC,
	subtotal_amount NUMERIC,
	tax_amount NUMERIC,
	tax_percentage NUMERIC,
	invoice_number TEXT NOT NULL DEFAULT '',
	receipt_date TEXT NOT NULL DEFAULT '',
	vendor_name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPostgres ensures the receipts table exists and returns the store.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, receiptsSchema); err != nil {
		return nil, fmt.Errorf("ensuring receipts table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Save(ctx context.Context, r *Receipt) error {
	query := `
		INSERT INTO receipts (
			id, file_name, file_url, raw_text,
			amount, subtotal_amount, tax_amount, tax_percentage,
			invoice_number, receipt_date, vendor_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	rec := r.Record
	err := p.pool.QueryRow(ctx, query,
		r.ID, r.FileName, r.FileURL, rec.RawText,
		rec.Amount, rec.SubtotalAmount, rec.TaxAmount, rec.TaxPercentage,
		rec.InvoiceNumber, rec.Date, rec.VendorName,
	).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving receipt: %w", err)
	}
	return nil
}

const receiptColumns = `
	id, COALESCE(file_name, ''), COALESCE(file_url, ''), COALESCE(raw_text, ''),
	amount, subtotal_amount, tax_amount, tax_percentage,
	COALESCE(invoice_number, ''), COALESCE(receipt_date, ''), COALESCE(vendor_name, ''),
	created_at
`

func scanReceipt(row pgx.Row) (*Receipt, error) {
	r := Receipt{Record: &models.ReceiptRecord{}}
	rec := r.Record
	err := row.Scan(
		&r.ID, &r.FileName, &r.FileURL, &rec.RawText,
		&rec.Amount, &rec.SubtotalAmount, &rec.TaxAmount, &rec.TaxPercentage,
		&rec.InvoiceNumber, &rec.Date, &rec.VendorName,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*Receipt, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+receiptColumns+` FROM receipts WHERE id = $1`, id)
	r, err := scanReceipt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading receipt: %w", err)
	}
	return r, nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	defer rows.Close()

	var out []Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning receipt: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
