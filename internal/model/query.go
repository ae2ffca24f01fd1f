package model

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format for query and record dates.
const DateLayout = "2006-01-02"

// Query is the facade input.
type Query struct {
	LawyerName string `json:"lawyer_name" validate:"required"`
	OAB        string `json:"oab,omitempty" validate:"omitempty,max=32"`
	DateStart  string `json:"date_start" validate:"required,datetime=2006-01-02"`
	DateEnd    string `json:"date_end" validate:"required,datetime=2006-01-02"`
	Court      string `json:"court,omitempty" validate:"omitempty,alphanum,max=12"`
	ClientKey  string `json:"client_key"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field formats and that DateStart <= DateEnd.
// Every failure is an *InvalidQueryError.
func (q Query) Validate() error {
	if strings.TrimSpace(q.LawyerName) == "" {
		return &InvalidQueryError{Field: "lawyer_name", Reason: "required"}
	}
	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			reason := fe.Tag()
			if fe.Tag() == "datetime" {
				reason = "expected YYYY-MM-DD"
			}
			return &InvalidQueryError{Field: fe.Field(), Reason: reason}
		}
		return &InvalidQueryError{Reason: err.Error()}
	}
	start, end := q.Range()
	if start.After(end) {
		return &InvalidQueryError{Field: "date_start", Reason: "must not be after date_end"}
	}
	return nil
}

// Range parses DateStart and DateEnd. Call Validate first; unparseable
// values come back as the zero time.
func (q Query) Range() (start, end time.Time) {
	start, _ = time.Parse(DateLayout, q.DateStart)
	end, _ = time.Parse(DateLayout, q.DateEnd)
	return start, end
}
