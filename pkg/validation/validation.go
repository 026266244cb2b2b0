// Package validation envuelve go-playground/validator con nombres de campo JSON
// y errores que se mapean a domain.ErrInvalidInput.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Get devuelve la instancia compartida del validador.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Usar el nombre JSON en los mensajes de error
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct valida obj. Los errores envuelven domain.ErrInvalidInput y listan los campos inválidos.
func Struct(obj any) error {
	err := Get().Struct(obj)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	sort.Strings(msgs)
	return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), domain.ErrInvalidInput)
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s es obligatorio", field)
	case "gt", "gte", "min":
		return fmt.Sprintf("%s debe ser al menos %s", field, boundOf(fe))
	case "max", "lte":
		return fmt.Sprintf("%s no puede superar %s", field, fe.Param())
	case "ne":
		return fmt.Sprintf("%s no puede ser %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s es inválido", field)
	}
}

// fieldPath ruta del campo sin el nombre del struct raíz (ej. movements[0].product_id).
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func boundOf(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		return fe.Param() + " (exclusivo)"
	}
	return fe.Param()
}
