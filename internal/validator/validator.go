package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
)

const maxLessonIDLength = 200

// Validator combines struct tag validation with exercise definition checks
type Validator struct {
	structValidator   *validator.Validate
	exerciseValidator *ExerciseValidator
}

func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		exerciseValidator: NewExerciseValidator(structValidator),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates s and returns ValidationErrors on failure.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// ValidateExercise checks that an exercise definition is structurally sound.
func (v *Validator) ValidateExercise(exercise *models.Exercise) error {
	return v.exerciseValidator.Validate(exercise)
}

func (v *Validator) Exercise() *ExerciseValidator {
	return v.exerciseValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("exercise_type", validateExerciseType)
	validate.RegisterValidation("lesson_id", validateLessonID)

	// Report json names in errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateExerciseType(fl validator.FieldLevel) bool {
	return models.ExerciseType(fl.Field().String()).IsValid()
}

func validateLessonID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" || len(value) > maxLessonIDLength {
		return false
	}
	return !strings.ContainsAny(value, "/\\")
}
