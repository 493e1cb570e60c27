package lifecycle

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"wardwatch-be/models"
)

// Submission is a citizen's issue report before it becomes an Issue.
type Submission struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"required,max=1000"`
	Category    string          `json:"category" validate:"required,issuecategory"`
	Ward        string          `json:"ward" validate:"required,wardid"`
	Location    models.Location `json:"location"`
	PhotoURL    *string         `json:"photoUrl,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("issuecategory", func(fl validator.FieldLevel) bool {
		return models.IsValidCategory(fl.Field().String())
	})
	v.RegisterValidation("wardid", func(fl validator.FieldLevel) bool {
		return models.IsValidWard(fl.Field().String())
	})
	return v
}

// ValidateSubmission checks every required field and returns one error
// listing all of them, or nil when the submission is acceptable. Location
// counts as present with either coordinates or a manual address.
func ValidateSubmission(s Submission) *ValidationError {
	ve := &ValidationError{Fields: map[string]string{}}

	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				ve.Fields[strings.ToLower(fe.Field())] = messageFor(fe)
			}
		}
	}

	if !s.Location.IsPresent() {
		ve.Fields["location"] = "location is required: detected coordinates or a manual address"
	}

	if len(ve.Fields) == 0 {
		return nil
	}
	return ve
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "exceeds maximum length of " + fe.Param()
	case "issuecategory":
		return "is not a valid category"
	case "wardid":
		return "is not a ward in the directory"
	default:
		return "is invalid"
	}
}
