package mongo

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/intlpay/payments-portal/internal/core/domain"
)

func duplicateKey(msg string) error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: msg}}}
}

func TestConflictFromWriteError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		field string
	}{
		{
			name:  "id number index",
			err:   duplicateKey(`E11000 duplicate key error collection: payments_portal.users index: id_number_unique dup key: { id_number: "1234567890123" }`),
			field: domain.FieldIDNumber,
		},
		{
			name:  "account number index",
			err:   duplicateKey(`E11000 duplicate key error collection: payments_portal.users index: account_number_unique dup key: { account_number: "2000000001" }`),
			field: domain.FieldAccountNumber,
		},
		{
			name:  "unknown index",
			err:   duplicateKey(`E11000 duplicate key error collection: payments_portal.users index: _id_`),
			field: "record",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conflictFromWriteError(tt.err)
			if got == nil {
				t.Fatalf("expected conflict, got nil")
			}
			if got.Field != tt.field {
				t.Fatalf("field = %s, want %s", got.Field, tt.field)
			}
		})
	}
}

func TestConflictFromWriteError_OtherErrors(t *testing.T) {
	if c := conflictFromWriteError(errors.New("network timeout")); c != nil {
		t.Fatalf("expected nil, got %+v", c)
	}
	other := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 121, Message: "Document failed validation"}}}
	if c := conflictFromWriteError(other); c != nil {
		t.Fatalf("expected nil for non-duplicate write error, got %+v", c)
	}
}

func TestMongoUserToDomain(t *testing.T) {
	oid := primitive.NewObjectID()
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("SAST", 2*3600))

	u := (&mongoUser{
		ID:            oid,
		Name:          "Jane Doe",
		IDNumber:      "1234567890123",
		AccountNumber: "2000000001",
		PasswordHash:  "$2a$12$hash",
		Role:          "customer",
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}).toDomain()

	if u.ID != oid.Hex() {
		t.Fatalf("ID = %s, want %s", u.ID, oid.Hex())
	}
	if u.Role != domain.RoleCustomer {
		t.Fatalf("Role = %s", u.Role)
	}
	if u.CreatedAt.Location() != time.UTC || !u.CreatedAt.Equal(ts) {
		t.Fatalf("CreatedAt not normalised to UTC: %v", u.CreatedAt)
	}
}
