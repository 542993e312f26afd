package domain

import "time"

// Currency is an ISO 4217 code accepted for international payments.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyZAR Currency = "ZAR"
)

// MinPaymentAmount is the smallest amount a payment instruction may carry.
const MinPaymentAmount = 0.01

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyZAR:
		return true
	}
	return false
}

// PaymentStatus is the state of a recorded submission. Only "submitted"
// exists; settlement happens outside this system.
type PaymentStatus string

const PaymentSubmitted PaymentStatus = "submitted"

// PaymentInstruction is an employee-submitted payment kept as an audit
// record. It carries no balance or ledger semantics.
type PaymentInstruction struct {
	Reference        string        `json:"reference" bson:"reference"`
	RecipientAccount string        `json:"recipientAccount" bson:"recipient_account"`
	Amount           float64       `json:"amount" bson:"amount"`
	Currency         Currency      `json:"currency" bson:"currency"`
	Description      string        `json:"description,omitempty" bson:"description,omitempty"`
	SubmittedBy      string        `json:"submittedBy" bson:"submitted_by"`
	Status           PaymentStatus `json:"status" bson:"status"`
	SubmittedAt      time.Time     `json:"submittedAt" bson:"submitted_at"`
}

// Validate applies the payment field rules in request order.
func (p *PaymentInstruction) Validate() error {
	if err := ValidateRecipientAccount(p.RecipientAccount); err != nil {
		return err
	}
	if err := ValidateAmount(p.Amount); err != nil {
		return err
	}
	if err := ValidateCurrency(string(p.Currency)); err != nil {
		return err
	}
	return ValidateDescription(p.Description)
}
