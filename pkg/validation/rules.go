package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("not_blank", isNotBlank); err != nil {
		return err
	}
	return nil
}

// isNotBlank rejects strings made only of whitespace. Nil pointers pass so
// the rule can be combined with omitempty on partial updates.
func isNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		return strings.TrimSpace(field.String()) != ""
	case reflect.Ptr:
		if field.IsNil() {
			return true
		}
		return strings.TrimSpace(field.Elem().String()) != ""
	}
	return true
}
