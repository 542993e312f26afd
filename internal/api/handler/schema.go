package handler

import (
	"time"

	"github.com/intlpay/payments-portal/internal/core/domain"
)

// --- Request types ---

type registerRequest struct {
	Name          string `json:"name"          validate:"required,personname"`
	IDNumber      string `json:"idNumber"      validate:"required,idnumber"`
	AccountNumber string `json:"accountNumber" validate:"required,accountnumber"`
	Password      string `json:"password"      validate:"required,password"`
}

type loginRequest struct {
	AccountNumber string `json:"accountNumber" validate:"required,accountnumber"`
	Password      string `json:"password"      validate:"required"`
}

type paymentRequest struct {
	RecipientAccount string  `json:"recipientAccount" validate:"required,recipientaccount"`
	Amount           float64 `json:"amount"           validate:"paymentamount"`
	Currency         string  `json:"currency"         validate:"required,currency"`
	Description      string  `json:"description"      validate:"paymentdesc"`
}

// --- Response types ---
// These are owned by the transport layer so the JSON contract is not coupled
// to domain changes.

type messageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the envelope for every 4xx/5xx response.
type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Message   string      `json:"message"`
}

// userResponse never carries password material.
type userResponse struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	IDNumber      string      `json:"idNumber"`
	AccountNumber string      `json:"accountNumber"`
	Role          domain.Role `json:"role"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type paymentResponse struct {
	Message          string  `json:"message"`
	Reference        string  `json:"reference"`
	Status           string  `json:"status"`
	RecipientAccount string  `json:"recipientAccount"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	SubmittedAt      string  `json:"submittedAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		IDNumber:      u.IDNumber,
		AccountNumber: u.AccountNumber,
		Role:          u.Role,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
