package middleware

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Validator plugs go-playground/validator into echo. Field names in errors
// come from the binding tags, so they read as the caller sent them.
type Validator struct {
	validate *validator.Validate
}

var nameTags = []string{"json", "param", "query", "header"}

func NewValidator() *Validator {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range nameTags {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return ""
	})

	// objectid: a hex string the store accepts as _id
	validate.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})

	return &Validator{validate: validate}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
