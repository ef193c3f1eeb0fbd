// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"billnudge/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var once sync.Once

// Register registers all custom validators with the Gin binding engine.
func Register() {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonFieldName)
			v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
			_ = v.RegisterValidation("hex_color", validateHexColor)
			_ = v.RegisterValidation("transaction_type", validateTransactionType)
			_ = v.RegisterValidation("billing_cycle", validateBillingCycle)
			_ = v.RegisterValidation("reminder_type", validateReminderType)
			_ = v.RegisterValidation("reminder_frequency", validateReminderFrequency)
		}
	})
}

// jsonFieldName reports fields by their JSON name so error details match the
// request body.
func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// decimalValue lets numeric tags (gt, gte, lte) operate on decimal amounts.
func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.TransactionType(fl.Field().String()).IsValid()
}

func validateBillingCycle(fl validator.FieldLevel) bool {
	return models.BillingCycle(fl.Field().String()).IsValid()
}

func validateReminderType(fl validator.FieldLevel) bool {
	return models.ReminderType(fl.Field().String()).IsValid()
}

func validateReminderFrequency(fl validator.FieldLevel) bool {
	return models.ReminderFrequency(fl.Field().String()).IsValid()
}

// FieldErrors converts a binding error into per-field messages keyed by JSON
// field name. It returns nil when err carries no field information.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "uuid":
		return "Must be a valid UUID."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be less than or equal to %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s.", fe.Param())
	case "hex_color":
		return "Must be a hex color such as #007bff."
	case "transaction_type":
		return "Must be one of: expense, income."
	case "billing_cycle":
		return "Must be one of: weekly, monthly, quarterly, yearly."
	case "reminder_type":
		return "Must be one of: bill_due, budget_check, weekly_review, custom."
	case "reminder_frequency":
		return "Must be one of: once, weekly, monthly."
	}
	return fmt.Sprintf("Failed the %s check.", fe.Tag())
}
