package models

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nipPattern   = regexp.MustCompile(`^\d{10}$`)
	regonPattern = regexp.MustCompile(`^\d{9}$`)
)

// FieldError describes a single invalid field on a submitted record.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every invalid field found on a record.
// A nil or empty slice means the record is valid.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// OrNil returns the collected errors as an error, or nil when empty.
// Returning a typed nil slice as error would always be non-nil.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func validNIP(nip string) bool {
	return nipPattern.MatchString(nip)
}

func validREGON(regon string) bool {
	return regonPattern.MatchString(regon)
}
