package dto

// WebhookResult reports how a processor webhook event was handled. Redelivered
// events resolve to handled with no additional effects.
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	InvoiceID string `json:"invoice_id,omitempty"`
	WalletID  string `json:"wallet_id,omitempty"`
	Handled   bool   `json:"handled"`
	Reason    string `json:"reason,omitempty"`
}
