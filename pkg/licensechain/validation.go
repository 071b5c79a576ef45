package licensechain

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/licensechain/licensechain-go/pkg/utils"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// requestValidator returns the shared validator with the LicenseChain tags registered.
func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		registerCustomValidators(v)
		validate = v
	})
	return validate
}

func registerCustomValidators(v *validator.Validate) {
	_ = v.RegisterValidation("lc_email", func(fl validator.FieldLevel) bool {
		return utils.ValidateEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("lc_currency", func(fl validator.FieldLevel) bool {
		return utils.ValidateCurrency(fl.Field().String())
	})
	_ = v.RegisterValidation("lc_amount", func(fl validator.FieldLevel) bool {
		return utils.ValidateAmount(fl.Field().Float())
	})
	_ = v.RegisterValidation("lc_url", func(fl validator.FieldLevel) bool {
		return utils.IsValidURL(fl.Field().String())
	})
	_ = v.RegisterValidation("lc_license_key", func(fl validator.FieldLevel) bool {
		return utils.ValidateLicenseKey(fl.Field().String())
	})
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// validateRequest checks a request body against its validate tags.
func validateRequest(req any) error {
	if err := requestValidator().Struct(req); err != nil {
		return asValidationError(err)
	}
	return nil
}

func describeFieldErrors(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return strings.Join(msgs, "; ")
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "lc_email":
		return field + " must be a valid email address"
	case "lc_currency":
		return fmt.Sprintf("%s must be one of %s", field, strings.Join(utils.SupportedCurrencies, ", "))
	case "lc_amount":
		return field + " must be a positive amount"
	case "lc_url":
		return field + " must be an http or https URL"
	case "lc_license_key":
		return fmt.Sprintf("%s must be %d letters or digits", field, utils.LicenseKeyLength)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have a length of at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}
