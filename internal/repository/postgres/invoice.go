package postgres

import (
	"context"

	"github.com/ticketpulse/adwallet/internal/domain/invoice"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/logger"
	"github.com/ticketpulse/adwallet/internal/postgres"
	"github.com/ticketpulse/adwallet/internal/types"
)

const idxInvoiceIdempotency = "invoices_idempotency_key_key"

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewInvoiceRepository creates a new instance of invoice repository
func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (
			id, invoice_number, wallet_id, amount_usd_cents, credits_purchased,
			promo_code, tax_usd_cents, invoice_status, processor_session_id,
			processor_payment_id, receipt_url, idempotency_key, purchased_by,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :invoice_number, :wallet_id, :amount_usd_cents, :credits_purchased,
			:promo_code, :tax_usd_cents, :invoice_status, :processor_session_id,
			:processor_payment_id, :receipt_url, :idempotency_key, :purchased_by,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"wallet_id", inv.WalletID,
		"credits_purchased", inv.CreditsPurchased,
	)

	if _, err := r.db.NamedExecContext(ctx, query, inv); err != nil {
		if postgres.IsUniqueViolation(err, idxInvoiceIdempotency) {
			return ierr.WithError(err).
				WithHint("An invoice with this idempotency key already exists").
				WithReportableDetails(map[string]any{
					"idempotency_key": inv.IdempotencyKey,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id string) (*invoice.Invoice, error) {
	return r.getOne(ctx, "id", id)
}

func (r *invoiceRepository) GetByIdempotencyKey(ctx context.Context, idempotencyKey string) (*invoice.Invoice, error) {
	return r.getOne(ctx, "idempotency_key", idempotencyKey)
}

func (r *invoiceRepository) GetByProcessorSessionID(ctx context.Context, sessionID string) (*invoice.Invoice, error) {
	return r.getOne(ctx, "processor_session_id", sessionID)
}

func (r *invoiceRepository) GetByProcessorPaymentID(ctx context.Context, paymentID string) (*invoice.Invoice, error) {
	return r.getOne(ctx, "processor_payment_id", paymentID)
}

func (r *invoiceRepository) getOne(ctx context.Context, column, value string) (*invoice.Invoice, error) {
	query := `
		SELECT * FROM invoices
		WHERE ` + column + ` = :value
		AND status = :status`

	params := map[string]interface{}{
		"value":  value,
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query invoice").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			WithReportableDetails(map[string]any{
				column: value,
			}).
			Mark(ierr.ErrNotFound)
	}

	var inv invoice.Invoice
	if err := rows.StructScan(&inv); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan invoice").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}

func (r *invoiceRepository) UpdateProcessorRefs(ctx context.Context, id, sessionID, paymentID string) error {
	query := `
		UPDATE invoices
		SET
			processor_session_id = :session_id,
			processor_payment_id = :payment_id,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":         id,
		"session_id": sessionID,
		"payment_id": paymentID,
		"updated_by": types.GetUserID(ctx),
		"status":     types.StatusPublished,
	}

	return r.exec(ctx, query, params, id)
}

// MarkPaid transitions pending -> paid. The guard in the WHERE clause keeps an
// already-paid or failed invoice untouched under webhook redelivery.
func (r *invoiceRepository) MarkPaid(ctx context.Context, id, receiptURL string) error {
	query := `
		UPDATE invoices
		SET
			invoice_status = :paid,
			receipt_url = :receipt_url,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND invoice_status = :pending
		AND status = :status`

	params := map[string]interface{}{
		"id":          id,
		"paid":        types.InvoiceStatusPaid,
		"pending":     types.InvoiceStatusPending,
		"receipt_url": receiptURL,
		"updated_by":  types.GetUserID(ctx),
		"status":      types.StatusPublished,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to mark invoice paid").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to mark invoice paid").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("invoice is not pending").
			WithHint("Only a pending invoice can transition to paid").
			WithReportableDetails(map[string]any{
				"invoice_id": id,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

func (r *invoiceRepository) MarkFailed(ctx context.Context, id string) error {
	query := `
		UPDATE invoices
		SET
			invoice_status = :failed,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND invoice_status = :pending
		AND status = :status`

	params := map[string]interface{}{
		"id":         id,
		"failed":     types.InvoiceStatusFailed,
		"pending":    types.InvoiceStatusPending,
		"updated_by": types.GetUserID(ctx),
		"status":     types.StatusPublished,
	}

	// Marking a non-pending invoice failed is a no-op, not an error: a late
	// failure event must never claw a paid invoice back.
	if _, err := r.db.NamedExecContext(ctx, query, params); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to mark invoice failed").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) exec(ctx context.Context, query string, params map[string]interface{}, id string) error {
	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			WithReportableDetails(map[string]any{
				"invoice_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
