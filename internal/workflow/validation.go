package workflow

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"eventhub/internal/budget"
	"eventhub/models"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	requiredTag  = "required"
	requiredText = "this field is required"
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	translator, _ = ut.New(en.New()).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterTranslation(requiredTag, translator,
		func(t ut.Translator) error { return t.Add(requiredTag, requiredText, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(requiredTag, fe.Field())
			return s
		},
	)
}

// validateStruct runs struct tag validation and converts failures, plus any
// extra field errors, into a *models.ValidationError keyed by JSON field name.
func validateStruct(v any, extra ...models.FieldError) error {
	flds := extra
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			flds = append(flds, models.FieldError{Field: fe.Field(), Error: fe.Translate(translator)})
		}
	}
	if len(flds) == 0 {
		return nil
	}
	return models.NewValidationError(errors.New("invalid input"), flds...)
}

// checkAmount validates a required non-negative amount in whole cents that
// fits the money columns.
func checkAmount(field string, amount *decimal.Decimal) []models.FieldError {
	switch {
	case amount == nil:
		return []models.FieldError{{Field: field, Error: requiredText}}
	case amount.IsNegative():
		return []models.FieldError{{Field: field, Error: field + " cannot be negative"}}
	case !budget.HasCents(*amount):
		return []models.FieldError{{Field: field, Error: field + " must have at most two decimal places"}}
	case amount.GreaterThan(budget.MaxAmount):
		return []models.FieldError{{Field: field, Error: field + " must not exceed " + budget.MaxAmount.StringFixed(budget.CentPlaces)}}
	}
	return nil
}

func fieldError(field, msg string) error {
	return models.NewValidationError(errors.New(msg), models.FieldError{Field: field, Error: msg})
}
