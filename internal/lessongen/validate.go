package lessongen

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"servewise-backend/internal/model"
)

var repeatKinds = map[string][]model.RepeatKind{
	model.CategoryFood: {model.RepeatDishTypes, model.RepeatAllergens},
	model.CategoryWine: {model.RepeatVarietals, model.RepeatOfferings},
}

// SourceKinds returns the option-source vocabulary of a catalog category.
func SourceKinds(category string) []model.SourceKind {
	switch category {
	case model.CategoryFood:
		return DishSourceKinds()
	case model.CategoryWine:
		return WineSourceKinds()
	}
	return nil
}

// ValidateSpecs checks every spec against the category's vocabulary before a
// template is stored. Generation would skip such specs anyway; rejecting them
// at upload keeps authoring mistakes visible.
func ValidateSpecs(category string, specs []model.QuestionSpec) error {
	kinds := SourceKinds(category)
	if kinds == nil {
		return fmt.Errorf("%w: category %q", ErrUnknownSource, category)
	}
	var errs []error
	for i, spec := range specs {
		if strings.TrimSpace(spec.Text) == "" {
			errs = append(errs, fmt.Errorf("question %d: empty text", i))
		}
		if !slices.Contains(kinds, spec.Options.Kind) {
			errs = append(errs, fmt.Errorf("question %d: %w %q", i, ErrUnknownSource, spec.Options.Kind))
		}
		if spec.CorrectAnswer != nil && !slices.Contains(kinds, spec.CorrectAnswer.Kind) {
			errs = append(errs, fmt.Errorf("question %d: %w %q", i, ErrUnknownSource, spec.CorrectAnswer.Kind))
		}
		if spec.Options.Kind == model.SourceLiteral {
			if len(spec.Options.Values) == 0 {
				errs = append(errs, fmt.Errorf("question %d: literal options without values", i))
			}
			if spec.CorrectAnswer == nil {
				errs = append(errs, fmt.Errorf("question %d: literal options without a correct answer", i))
			}
		}
		if spec.Options.Kind == model.SourceWineCount && spec.Options.Predicate == nil {
			errs = append(errs, fmt.Errorf("question %d: wine_count without predicate", i))
		}
		if spec.RepeatFor != "" && !slices.Contains(repeatKinds[category], spec.RepeatFor) {
			errs = append(errs, fmt.Errorf("question %d: %w repeat_for %q", i, ErrUnknownSource, spec.RepeatFor))
		}
	}
	return errors.Join(errs...)
}
