package simulations

import (
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// InterventionsTag is the binding tag that checks an Interventions map.
const InterventionsTag = "interventions"

var registerOnce sync.Once

// RegisterValidators adds the interventions tag to v.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation(InterventionsTag, func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.Map {
			return false
		}
		in, ok := field.Interface().(Interventions)
		if !ok {
			return false
		}
		return ValidateInterventions(in) == nil
	})
}

// registerBindingValidators installs the custom tags on gin's validator once.
func registerBindingValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = RegisterValidators(v)
		}
	})
}
