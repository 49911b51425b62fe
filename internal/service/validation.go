package service

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/query"
)

// validate is shared; validator.Validate is safe for concurrent use once configured.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report request parameter names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("param"); name != "" && name != "-" {
			return name
		}
		return f.Name
	})
	mustRegister(v, "position", func(fl validator.FieldLevel) bool {
		return model.Position(fl.Field().String()).Valid()
	})
	mustRegister(v, "querytype", func(fl validator.FieldLevel) bool {
		return model.QueryType(fl.Field().String()).Valid()
	})
	mustRegister(v, "orderable", func(fl validator.FieldLevel) bool {
		return query.IsOrderable(fl.Field().String())
	})
	mustRegister(v, "gamestatus", func(fl validator.FieldLevel) bool {
		return isValidGameStatus(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// structErrors runs the validator and converts failures to FieldErrors.
func structErrors(s any) []FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "request", Reason: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Reason: reasonFor(fe)})
	}
	return out
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "gt", "gte":
		if fe.Param() == "0" {
			return "must be a positive integer"
		}
		return "must be greater than " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "position":
		return "must be one of " + joinPositions()
	case "querytype":
		return "must be one of " + joinQueryTypes()
	case "orderable":
		return "must be one of the allow-listed fields"
	case "gamestatus":
		return "must be a known game status"
	case "ltefield":
		return "must not exceed the matching attempts"
	case "nefield":
		return "must differ from the other side"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

func joinPositions() string {
	ps := model.Positions()
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return strings.Join(out, ", ")
}

func joinQueryTypes() string {
	qs := model.QueryTypes()
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = string(q)
	}
	return strings.Join(out, ", ")
}

// parser collects numeric parse failures while reading raw parameters.
type parser struct {
	raw  map[string]string
	errs []FieldError
}

func newParser(raw map[string]string) *parser {
	return &parser{raw: raw}
}

func (p *parser) str(name string) string {
	return strings.TrimSpace(p.raw[name])
}

// id reads an optional positive integer; nil means absent.
// Range checks are left to the validator so all failures aggregate.
func (p *parser) id(name string) *int64 {
	s := p.str(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		p.errs = append(p.errs, FieldError{Field: name, Reason: "must be a positive integer"})
		return nil
	}
	return &v
}

func (p *parser) num(name string) *int {
	s := p.str(name)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.errs = append(p.errs, FieldError{Field: name, Reason: "must be an integer"})
		return nil
	}
	return &v
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// ParseID parses a path identifier, reporting field on failure.
func ParseID(field, raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return 0, NewInvalidInputError([]FieldError{{Field: field, Reason: "must be a positive integer"}})
	}
	return v, nil
}

func positiveID(field string, id int64) []FieldError {
	if id <= 0 {
		return []FieldError{{Field: field, Reason: "must be a positive integer"}}
	}
	return nil
}

func isValidGameStatus(status string) bool {
	switch status {
	case model.GameStatusScheduled, model.GameStatusInProgress, model.GameStatusHalftime,
		model.GameStatusFinished, model.GameStatusPostponed, model.GameStatusCanceled:
		return true
	default:
		return false
	}
}
