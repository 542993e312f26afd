package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/intlpay/payments-portal/internal/core/domain"
)

// FieldError is one failed request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is returned by Validate when one or more fields fail.
type ValidationErrors []FieldError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// stringRules binds the custom validator tags to the domain rules, so request
// validation and persistence validation share one implementation.
var stringRules = map[string]func(string) error{
	"personname":       domain.ValidateName,
	"idnumber":         domain.ValidateIDNumber,
	"accountnumber":    domain.ValidateAccountNumber,
	"password":         domain.ValidatePassword,
	"recipientaccount": domain.ValidateRecipientAccount,
	"currency":         domain.ValidateCurrency,
	"paymentdesc":      domain.ValidateDescription,
}

var requiredMessages = map[string]string{
	domain.FieldName:             "Name is required.",
	domain.FieldIDNumber:         "ID number is required.",
	domain.FieldAccountNumber:    "Account number is required.",
	domain.FieldPassword:         "Password is required.",
	domain.FieldRecipientAccount: "Recipient account is required.",
	domain.FieldCurrency:         "Currency is required.",
}

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, rule := range stringRules {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return rule(fl.Field().String()) == nil
		})
	}
	_ = v.RegisterValidation("paymentamount", func(fl validator.FieldLevel) bool {
		return domain.ValidateAmount(fl.Field().Float()) == nil
	})

	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			out := make(ValidationErrors, 0, len(ve))
			for _, fe := range ve {
				out = append(out, FieldError{Field: fe.Field(), Message: fieldError(fe)})
			}
			return out
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	if rule, ok := stringRules[fe.Tag()]; ok {
		if err := rule(fmt.Sprint(fe.Value())); err != nil {
			return err.Error()
		}
	}
	switch fe.Tag() {
	case "required":
		if msg, ok := requiredMessages[fe.Field()]; ok {
			return msg
		}
		return fe.Field() + " is required."
	case "paymentamount":
		if f, ok := fe.Value().(float64); ok {
			if err := domain.ValidateAmount(f); err != nil {
				return err.Error()
			}
		}
		return "Amount must be a positive number."
	default:
		return fmt.Sprintf("%s failed validation (%s).", fe.Field(), fe.Tag())
	}
}
