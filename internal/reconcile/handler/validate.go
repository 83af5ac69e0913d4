package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"match-service/internal/reconcile/service"
)

type ValidationError struct {
	Fields []FieldError
}

type FieldError struct {
	Field   string
	Tag     string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// matchParams: параметры сверки из формы запроса.
type matchParams struct {
	ASheet       string   `json:"a_sheet"`
	BSheet       string   `json:"b_sheet"`
	AColumns     []string `json:"a_columns" validate:"required,min=1,dive,required"`
	BColumns     []string `json:"b_columns" validate:"required,min=1,dive,required"`
	AHeaderRow   int      `json:"a_header_row" validate:"gte=1"`
	BHeaderRow   int      `json:"b_header_row" validate:"gte=1"`
	Threshold    int      `json:"threshold" validate:"gte=0,lte=100"`
	Scorer       string   `json:"scorer" validate:"omitempty,scorer"`
	Dedupe       bool     `json:"dedupe"`
	StripAccents bool     `json:"strip_accents"`
}

var paramsValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("scorer", func(fl validator.FieldLevel) bool {
		_, err := service.ScorerByName(fl.Field().String())
		return err == nil
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(matchParams)
		if len(p.AColumns) > 0 && len(p.BColumns) > 0 && len(p.AColumns) != len(p.BColumns) {
			sl.ReportError(p.BColumns, "b_columns", "BColumns", "arity", fmt.Sprint(len(p.AColumns)))
		}
	}, matchParams{})
	return v
}

func (p *matchParams) validate() error {
	err := paramsValidator.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation failed: %w", err)
	}
	ve := &ValidationError{Fields: make([]FieldError, len(verrs))}
	for i, fe := range verrs {
		ve.Fields[i] = FieldError{Field: fe.Field(), Tag: fe.Tag(), Message: fieldMessage(fe)}
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must have at least %s item(s)", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "scorer":
		return fmt.Sprintf("scorer %q not found, use one of: %s", fe.Value(), strings.Join(service.ScorerNames(), ", "))
	case "arity":
		return fmt.Sprintf("%s must select the same number of columns as a_columns (%s)", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
