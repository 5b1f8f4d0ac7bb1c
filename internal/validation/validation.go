// Package validation wraps go-playground/validator with the rules request payloads share.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailShape is a local@domain.tld check, deliberately looser than RFC 5322.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsEmail(s string) bool {
	return emailShape.MatchString(s)
}

// New returns a validator that reports json field names and knows the "contactemail" tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	return v
}

// FieldErrors maps a json field name to the tag that failed on it.
type FieldErrors map[string]string

// FromError flattens validator errors. Anything else lands under "_".
func FromError(err error) FieldErrors {
	out := FieldErrors{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return out
	}
	if err != nil {
		out["_"] = "invalid"
	}
	return out
}

// HasTag reports whether any field failed with tag.
func (f FieldErrors) HasTag(tag string) bool {
	for _, t := range f {
		if t == tag {
			return true
		}
	}
	return false
}
