package person

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/shepherdcrm/shepherd/core"
)

var (
	outcomeTag  = "outcome_"
	outcomeText = "invalid check-in outcome"

	statusTag  = "status_"
	statusText = "invalid status"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(outcomeTag, outcomeValidation)
	core.RegisterCustomTranslation(validate, translator, outcomeTag, outcomeText)

	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// Custom Validators

// outcomeValidation checks that the value is a known check-in Outcome.
func outcomeValidation(fl validator.FieldLevel) bool {
	return Outcome(fl.Field().String()).Valid()
}

// statusValidation checks that the value is a known pipeline Status.
func statusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).Valid()
}
