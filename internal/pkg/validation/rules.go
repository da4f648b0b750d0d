package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Custom validation tags
const (
	// TagNotBlank rejects strings made only of whitespace
	TagNotBlank = "notblank"
)

// NotBlank reports whether a string field holds a non-whitespace character. Nil pointers are
// left to omitempty.
func NotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

// RegisterRules adds the custom tags to v
func RegisterRules(v *validator.Validate) error {
	if err := v.RegisterValidation(TagNotBlank, NotBlank); err != nil {
		return fmt.Errorf("register %s: %w", TagNotBlank, err)
	}
	return nil
}

// Register adds the custom tags to gin's binding validator
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	return RegisterRules(v)
}
