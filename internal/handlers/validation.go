package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	msgRequired      = "Missing data for required field."
	msgInvalidInput  = "Invalid input type."
	msgInvalidDate   = "Not a valid date."
	msgInvalidString = "Not a valid string."
	msgInvalidInt    = "Not a valid integer."

	schemaKey = "_schema"
)

// FieldErrors maps a JSON field name to what is wrong with it.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// bindJSON decodes and validates the body into obj, answering 400 itself on
// failure.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, fieldErrors(err))
		return false
	}
	return true
}

func fieldErrors(err error) FieldErrors {
	out := FieldErrors{}

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			out.Add(fe.Field(), tagMessage(fe))
		}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		out.Add(typeErr.Field, kindMessage(typeErr.Type))
	default:
		out.Add(schemaKey, msgInvalidInput)
	}
	return out
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Longer than maximum length %s.", fe.Param())
	}
	return "Invalid value."
}

func kindMessage(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return msgInvalidString
	case reflect.Float32, reflect.Float64:
		return "Not a valid number."
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return msgInvalidInt
	}
	return "Invalid value."
}
