package testutil

import (
	"context"
	"sync"

	"github.com/ticketpulse/adwallet/internal/domain/invoice"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/types"
)

type InMemoryInvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]*invoice.Invoice
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		invoices: make(map[string]*invoice.Invoice),
	}
}

func (r *InMemoryInvoiceStore) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	invoices := make(map[string]*invoice.Invoice, len(r.invoices))
	for id, inv := range r.invoices {
		copied := *inv
		invoices[id] = &copied
	}

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.invoices = invoices
	}
}

func (r *InMemoryInvoiceStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices = make(map[string]*invoice.Invoice)
}

func (r *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.invoices {
		if existing.IdempotencyKey == inv.IdempotencyKey {
			return ierr.NewError("invoice already exists").
				Mark(ierr.ErrAlreadyExists)
		}
	}

	copied := *inv
	r.invoices[inv.ID] = &copied
	return nil
}

func (r *InMemoryInvoiceStore) GetByID(ctx context.Context, id string) (*invoice.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if inv, exists := r.invoices[id]; exists {
		copied := *inv
		return &copied, nil
	}
	return nil, ierr.NewError("invoice not found").
		WithHint("Invoice not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryInvoiceStore) GetByIdempotencyKey(ctx context.Context, idempotencyKey string) (*invoice.Invoice, error) {
	return r.findOne(func(inv *invoice.Invoice) bool {
		return inv.IdempotencyKey == idempotencyKey
	})
}

func (r *InMemoryInvoiceStore) GetByProcessorSessionID(ctx context.Context, sessionID string) (*invoice.Invoice, error) {
	return r.findOne(func(inv *invoice.Invoice) bool {
		return sessionID != "" && inv.ProcessorSessionID == sessionID
	})
}

func (r *InMemoryInvoiceStore) GetByProcessorPaymentID(ctx context.Context, paymentID string) (*invoice.Invoice, error) {
	return r.findOne(func(inv *invoice.Invoice) bool {
		return paymentID != "" && inv.ProcessorPaymentID == paymentID
	})
}

func (r *InMemoryInvoiceStore) findOne(match func(*invoice.Invoice) bool) (*invoice.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, inv := range r.invoices {
		if match(inv) {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, ierr.NewError("invoice not found").
		WithHint("Invoice not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryInvoiceStore) UpdateProcessorRefs(ctx context.Context, id, sessionID, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, exists := r.invoices[id]
	if !exists {
		return ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			Mark(ierr.ErrNotFound)
	}
	inv.ProcessorSessionID = sessionID
	inv.ProcessorPaymentID = paymentID
	return nil
}

func (r *InMemoryInvoiceStore) MarkPaid(ctx context.Context, id, receiptURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, exists := r.invoices[id]
	if !exists {
		return ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			Mark(ierr.ErrNotFound)
	}
	if inv.InvoiceStatus != types.InvoiceStatusPending {
		return ierr.NewError("invoice is not pending").
			WithHint("Only pending invoices can be marked paid").
			Mark(ierr.ErrInvalidOperation)
	}
	inv.InvoiceStatus = types.InvoiceStatusPaid
	inv.ReceiptURL = receiptURL
	return nil
}

func (r *InMemoryInvoiceStore) MarkFailed(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, exists := r.invoices[id]
	if !exists {
		return ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			Mark(ierr.ErrNotFound)
	}
	if inv.InvoiceStatus == types.InvoiceStatusPending {
		inv.InvoiceStatus = types.InvoiceStatusFailed
	}
	return nil
}
