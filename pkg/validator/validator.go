// Package validator envuelve go-playground/validator y traduce los errores de
// campo a mensajes legibles, en el orden en que aparecen los campos del struct.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator valida structs con tags `validate` y produce mensajes en español.
type Validator struct {
	v *validator.Validate
}

// New construye el validador usando el nombre JSON de cada campo en los mensajes.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// decimal.Decimal se valida como float64 para poder usar gte/lte sobre precios.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return &Validator{v: v}
}

// Struct valida s y devuelve la lista ordenada de mensajes; vacía si es válido.
// Un error que no sea de validación (p. ej. s no es struct) se devuelve tal cual.
func (val *Validator) Struct(s any) ([]string, error) {
	err := val.v.Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return msgs, nil
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s no puede estar vacío", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("El campo %s debe tener al menos %s caracteres", field, fe.Param())
		}
		return fmt.Sprintf("El campo %s debe ser mayor o igual que %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("El campo %s no puede superar %s caracteres", field, fe.Param())
		}
		return fmt.Sprintf("El campo %s debe ser menor o igual que %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("El campo %s debe ser mayor o igual que %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("El campo %s debe ser mayor que %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("El campo %s debe ser un email válido", field)
	case "oneof":
		return fmt.Sprintf("El campo %s debe ser uno de: %s", field, fe.Param())
	default:
		return fmt.Sprintf("El campo %s no es válido (%s)", field, fe.Tag())
	}
}

// fieldPath devuelve la ruta del campo sin el nombre del struct raíz (p. ej. "presentacion.id").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
