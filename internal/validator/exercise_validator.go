package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
)

// ExerciseValidator rejects exercise definitions that cannot be scored at
// all. Question-level content problems such as a missing blank are left to
// the engine, which grades them as zero.
type ExerciseValidator struct {
	structValidator *validator.Validate
}

func NewExerciseValidator(structValidator *validator.Validate) *ExerciseValidator {
	return &ExerciseValidator{structValidator: structValidator}
}

func (v *ExerciseValidator) Validate(exercise *models.Exercise) error {
	if exercise == nil || exercise.Payload == nil {
		return ValidationErrors{*NewError("type", "is required", nil)}
	}

	if err := v.structValidator.Struct(exercise.Payload); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}

	var errs ValidationErrors
	switch p := exercise.Payload.(type) {
	case *models.FillBlankPayload:
		errs = uniqueIDs(errs, len(p.Questions), func(i int) string { return p.Questions[i].ID })
	case *models.MultipleChoicePayload:
		errs = uniqueIDs(errs, len(p.Questions), func(i int) string { return p.Questions[i].ID })
	case *models.MatchingPayload:
		errs = v.validateMatching(errs, p)
	case *models.TranslationPayload:
		errs = uniqueIDs(errs, len(p.Questions), func(i int) string { return p.Questions[i].ID })
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *ExerciseValidator) validateMatching(errs ValidationErrors, p *models.MatchingPayload) ValidationErrors {
	usedLeft := make(map[int]bool)
	usedRight := make(map[int]bool)

	for i, pair := range p.CorrectMatches {
		field := fmt.Sprintf("correct_matches[%d]", i)

		if pair.Left < 0 || pair.Left >= len(p.LeftItems) {
			errs = append(errs, *NewError(field+".left", "references a non-existent left item", pair.Left))
		} else if usedLeft[pair.Left] {
			errs = append(errs, *NewError(field+".left", "left item is already matched", pair.Left))
		}

		if pair.Right < 0 || pair.Right >= len(p.RightItems) {
			errs = append(errs, *NewError(field+".right", "references a non-existent right item", pair.Right))
		} else if usedRight[pair.Right] {
			errs = append(errs, *NewError(field+".right", "right item is already matched", pair.Right))
		}

		usedLeft[pair.Left] = true
		usedRight[pair.Right] = true
	}

	return errs
}

func uniqueIDs(errs ValidationErrors, n int, idAt func(int) string) ValidationErrors {
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		id := idAt(i)
		if seen[id] {
			errs = append(errs, *NewError(fmt.Sprintf("questions[%d].id", i), "duplicates an earlier question id", id))
		}
		seen[id] = true
	}
	return errs
}

func NewError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}
