package types

import (
	"context"

	ierr "github.com/ticketpulse/adwallet/internal/errors"
)

// WalletStatus is the state of a wallet
type WalletStatus string

const (
	WalletStatusActive WalletStatus = "active"
	// WalletStatusFrozen blocks all spend against the wallet. Set on adverse
	// processor events (dispute, refund driving the balance negative) and
	// cleared only by manual resolution.
	WalletStatusFrozen WalletStatus = "frozen"
)

func (s WalletStatus) Validate() error {
	switch s {
	case WalletStatusActive, WalletStatusFrozen:
		return nil
	}
	return ierr.NewError("invalid wallet status").
		WithHint("Wallet status must be one of active, frozen").
		WithReportableDetails(map[string]interface{}{
			"wallet_status": s,
		}).
		Mark(ierr.ErrValidation)
}

// TransactionType is the kind of ledger entry
type TransactionType string

const (
	TransactionTypePurchase   TransactionType = "purchase"
	TransactionTypeSpend      TransactionType = "spend"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

func (t TransactionType) Validate() error {
	switch t {
	case TransactionTypePurchase, TransactionTypeSpend, TransactionTypeRefund, TransactionTypeAdjustment:
		return nil
	}
	return ierr.NewError("invalid transaction type").
		WithHint("Transaction type must be one of purchase, spend, refund, adjustment").
		WithReportableDetails(map[string]interface{}{
			"type": t,
		}).
		Mark(ierr.ErrValidation)
}

// WalletTxReferenceType is the polymorphic reference a transaction points at
type WalletTxReferenceType string

const (
	WalletTxReferenceTypeCampaign WalletTxReferenceType = "campaign"
	WalletTxReferenceTypeInvoice  WalletTxReferenceType = "invoice"
	WalletTxReferenceTypeRequest  WalletTxReferenceType = "request"
)

// OwnerType discriminates wallet ownership between an individual user and an
// organization. A wallet belongs to exactly one of the two.
type OwnerType string

const (
	OwnerTypeUser         OwnerType = "user"
	OwnerTypeOrganization OwnerType = "organization"
)

// WalletOwner is a tagged reference to the owning user or organization.
type WalletOwner struct {
	Type OwnerType `db:"owner_type" json:"owner_type"`
	ID   string    `db:"owner_id" json:"owner_id"`
}

func NewUserOwner(userID string) WalletOwner {
	return WalletOwner{Type: OwnerTypeUser, ID: userID}
}

func NewOrganizationOwner(orgID string) WalletOwner {
	return WalletOwner{Type: OwnerTypeOrganization, ID: orgID}
}

// OwnerFromContext resolves the wallet owner for the authenticated caller.
// Callers acting for an organization own the organization wallet; everyone
// else owns their individual wallet. The owner is never taken from request
// input, so a caller can only ever reach their own wallet.
func OwnerFromContext(ctx context.Context) (WalletOwner, error) {
	if orgID := GetOrgID(ctx); orgID != "" {
		return NewOrganizationOwner(orgID), nil
	}
	if userID := GetUserID(ctx); userID != "" {
		return NewUserOwner(userID), nil
	}
	return WalletOwner{}, ierr.NewError("caller identity missing").
		WithHint("Authentication did not supply a user or organization identity").
		Mark(ierr.ErrPermissionDenied)
}

func (o WalletOwner) Validate() error {
	if o.ID == "" {
		return ierr.NewError("wallet owner id is required").
			WithHint("Exactly one of user or organization wallet must be referenced").
			Mark(ierr.ErrInvalidWalletReference)
	}
	switch o.Type {
	case OwnerTypeUser, OwnerTypeOrganization:
		return nil
	}
	return ierr.NewError("invalid wallet owner type").
		WithHint("Exactly one of user or organization wallet must be referenced").
		WithReportableDetails(map[string]interface{}{
			"owner_type": o.Type,
		}).
		Mark(ierr.ErrInvalidWalletReference)
}
