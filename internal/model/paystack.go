package model

// Wire types for the Paystack REST API. Only the fields this service
// reads are declared.

type PaystackInitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type PaystackInitializeResult struct {
	Status  bool                   `json:"status"`
	Message string                 `json:"message"`
	Data    PaystackInitializeData `json:"data"`
}

type PaystackCustomer struct {
	Email string `json:"email"`
}

type PaystackVerifyData struct {
	ID     int64  `json:"id"`
	Status string `json:"status"` // success, failed, abandoned, ongoing, pending
	// "test" or "live"; test transactions must never grant real value.
	Domain    string           `json:"domain"`
	Reference string           `json:"reference"`
	Amount    int64            `json:"amount"` // minor units
	Currency  string           `json:"currency"`
	Channel   string           `json:"channel"`
	PaidAt    string           `json:"paid_at"`
	Customer  PaystackCustomer `json:"customer"`
}

type PaystackVerifyResult struct {
	Status  bool               `json:"status"`
	Message string             `json:"message"`
	Data    PaystackVerifyData `json:"data"`
}

type PaystackWebhookEvent struct {
	Event string             `json:"event"`
	Data  PaystackVerifyData `json:"data"`
}
