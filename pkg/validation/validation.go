// Package validation checks the intake and booking forms and turns failures
// into per-field messages that can be shown next to each input.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"medwaste/pkg/models"
)

// FieldErrors maps a form field name to a human readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, fe[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var messages = map[string]string{
	"hospitalName.notblank":   "Hospital name is required",
	"userName.notblank":       "User name is required",
	"location.notblank":       "Location is required",
	"vendorName.notblank":     "Vendor name is required",
	"place.notblank":          "Place is required",
	"vehicleNumber.notblank":  "Vehicle number is required",
	"contactNumber.notblank":  "Contact number is required",
	"contactNumber.phone10":   "Enter a valid 10-digit phone number",
	"wasteType.required":      "Please select a waste category",
	"wasteType.wastecategory": "Please select a valid waste category",
	"weight.required":         "Weight is required",
	"weight.posweight":        "Please enter a valid weight",
}

// Validator wraps a configured validator.Validate. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom form tags registered
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return ValidContactNumber(fl.Field().String())
	})
	_ = v.RegisterValidation("wastecategory", func(fl validator.FieldLevel) bool {
		_, ok := models.LookupWasteCategory(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("posweight", func(fl validator.FieldLevel) bool {
		_, ok := ParseWeight(fl.Field().String())
		return ok
	})

	return &Validator{validate: v}
}

// Hospital validates the hospital intake form. It returns nil when every field is valid.
func (v *Validator) Hospital(h models.HospitalIdentity) FieldErrors {
	return v.check(h)
}

// Vendor validates the vendor intake form.
func (v *Validator) Vendor(vi models.VendorIdentity) FieldErrors {
	return v.check(vi)
}

// Booking validates the waste category and weight independently; both may fail at once.
func (v *Validator) Booking(req models.BookingRequest) FieldErrors {
	return v.check(req)
}

func (v *Validator) check(s interface{}) FieldErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", field)
		}
		out[field] = msg
	}
	return out
}

// DigitsOnly strips every non-digit rune from s
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidContactNumber reports whether s holds exactly 10 ASCII digits once
// separators like spaces, dashes and brackets are removed.
func ValidContactNumber(s string) bool {
	return len(DigitsOnly(s)) == 10
}

// decimalWeight accepts plain decimal notation with an optional exponent.
// Underscores, hex and named values like Inf are not weights.
var decimalWeight = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseWeight parses a weight in kilograms. Surrounding whitespace is ignored;
// the value must be a finite decimal number strictly greater than zero.
func ParseWeight(s string) (float64, bool) {
	s = strings.TrimFunc(s, unicode.IsSpace)
	if !decimalWeight.MatchString(s) {
		return 0, false
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return 0, false
	}
	return w, true
}
