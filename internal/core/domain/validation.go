package domain

import (
	"math"
	"regexp"
	"strings"
)

// Field names as they appear in request bodies and error payloads.
const (
	FieldName             = "name"
	FieldIDNumber         = "idNumber"
	FieldAccountNumber    = "accountNumber"
	FieldPassword         = "password"
	FieldRecipientAccount = "recipientAccount"
	FieldAmount           = "amount"
	FieldCurrency         = "currency"
	FieldDescription      = "description"
)

// PasswordSymbols is the fixed set of special characters a password may use.
const PasswordSymbols = "!@#$%^&*"

const (
	minPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

var (
	nameRe        = regexp.MustCompile(`^[A-Za-z\s\-']+$`)
	idNumberRe    = regexp.MustCompile(`^\d{13}$`)
	accountRe     = regexp.MustCompile(`^\d{10}$`)
	descriptionRe = regexp.MustCompile(`^[A-Za-z0-9\s\-.,]{0,100}$`)
)

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// ValidateName requires at least three characters after trimming, made of
// letters, spaces, hyphens and apostrophes only.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 3 {
		return invalid(FieldName, "Name must be at least 3 characters long.")
	}
	if !nameRe.MatchString(trimmed) {
		return invalid(FieldName, "Name may only contain letters, spaces, hyphens, or apostrophes.")
	}
	return nil
}

// NormalizeName returns the name in the form it is stored.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// ValidateIDNumber requires exactly 13 decimal digits.
func ValidateIDNumber(id string) error {
	if id == "" {
		return invalid(FieldIDNumber, "ID number is required.")
	}
	if !idNumberRe.MatchString(id) {
		return invalid(FieldIDNumber, "ID number must be exactly 13 digits.")
	}
	return nil
}

// ValidateAccountNumber requires exactly 10 decimal digits.
func ValidateAccountNumber(account string) error {
	if account == "" {
		return invalid(FieldAccountNumber, "Account number is required.")
	}
	if !accountRe.MatchString(account) {
		return invalid(FieldAccountNumber, "Account number must be exactly 10 digits and numeric.")
	}
	return nil
}

// ValidatePassword enforces a length of 8 to 72 bytes with at least one uppercase letter,
// one digit and one symbol from PasswordSymbols. No other characters are
// allowed.
func ValidatePassword(password string) error {
	if password == "" {
		return invalid(FieldPassword, "Password is required.")
	}
	if len(password) > MaxPasswordBytes {
		return invalid(FieldPassword, "Password must be at most 72 characters.")
	}
	var upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		case r >= 'a' && r <= 'z':
		default:
			return invalid(FieldPassword, passwordRuleMessage)
		}
	}
	if len(password) < minPasswordLength || !upper || !digit || !symbol {
		return invalid(FieldPassword, passwordRuleMessage)
	}
	return nil
}

const passwordRuleMessage = "Password must be at least 8 characters, with at least 1 uppercase letter, 1 number, and 1 special character (!@#$%^&*)."

// ValidateRegistration checks registration input in order name, ID number,
// account number, password and returns the first failure.
func ValidateRegistration(name, idNumber, accountNumber, password string) error {
	checks := []func() error{
		func() error { return ValidateName(name) },
		func() error { return ValidateIDNumber(idNumber) },
		func() error { return ValidateAccountNumber(accountNumber) },
		func() error { return ValidatePassword(password) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRecipientAccount applies the account number format to a payment recipient.
func ValidateRecipientAccount(account string) error {
	if !accountRe.MatchString(account) {
		return invalid(FieldRecipientAccount, "Recipient account must be exactly 10 digits.")
	}
	return nil
}

// ValidateAmount requires a finite amount of at least one cent.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < MinPaymentAmount {
		return invalid(FieldAmount, "Amount must be a positive number.")
	}
	return nil
}

// ValidateCurrency accepts only the supported settlement currencies.
func ValidateCurrency(currency string) error {
	if !Currency(currency).Valid() {
		return invalid(FieldCurrency, "Currency must be a valid type.")
	}
	return nil
}

// ValidateDescription allows an empty description or up to 100 letters,
// digits, spaces, hyphens, dots and commas.
func ValidateDescription(desc string) error {
	if !descriptionRe.MatchString(desc) {
		return invalid(FieldDescription, "Description contains invalid characters.")
	}
	return nil
}
