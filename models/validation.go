package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidPayload is wrapped by every decode or validation failure.
var ErrInvalidPayload = errors.New("invalid payload")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report wire names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the struct tags of v and returns the first violation.
// Pointers are followed; nil pointers and non-struct values pass.
func Validate(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	err := validate.Struct(rv.Interface())
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Param() != "" {
			return fmt.Errorf("%w: %s must satisfy %s=%s", ErrInvalidPayload, fe.Namespace(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%w: %s must satisfy %s", ErrInvalidPayload, fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
}

// Decode parses data as exactly one JSON document of type T, rejecting
// unknown fields, and validates the result.
func Decode[T any](data []byte) (T, error) {
	var out T
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if dec.More() {
		return out, fmt.Errorf("%w: trailing data after document", ErrInvalidPayload)
	}
	if err := Validate(&out); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeOr is Decode with a fallback for documents that fail to parse or
// validate.
func DecodeOr[T any](data []byte, fallback T) T {
	out, err := Decode[T](data)
	if err != nil {
		return fallback
	}
	return out
}
