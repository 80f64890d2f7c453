package lessongen

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"servewise-backend/internal/model"
)

var legacyQuestionTypes = map[string]string{
	"single_select":     model.QuestionSingleSelect,
	"single":            model.QuestionSingleSelect,
	"single_choice":     model.QuestionSingleSelect,
	"multiple_choice":   model.QuestionMultipleChoice,
	"multiple_select":   model.QuestionMultipleChoice,
	"multi_select":      model.QuestionMultipleChoice,
	"select_all":        model.QuestionMultipleChoice,
	"free_text":         model.QuestionFreeText,
	"text":              model.QuestionFreeText,
	"open_ended":        model.QuestionFreeText,
	"true_false":        model.QuestionTrueFalse,
	"yes_no":            model.QuestionTrueFalse,
	"boolean":           model.QuestionTrueFalse,
	"fill_in_blank":     model.QuestionFillInBlank,
	"fill_in_the_blank": model.QuestionFillInBlank,
	"fill_blank":        model.QuestionFillInBlank,
	"short_answer":      model.QuestionShortAnswer,
}

// NormalizeQuestionType maps template spellings, including deprecated ones,
// onto a supported type. Anything unrecognized becomes single_select.
func NormalizeQuestionType(t string) string {
	k := strings.ToLower(strings.TrimSpace(t))
	k = strings.NewReplacer("-", "_", " ", "_").Replace(k)
	if v, ok := legacyQuestionTypes[k]; ok {
		return v
	}
	return model.QuestionSingleSelect
}

func isTextType(t string) bool {
	switch t {
	case model.QuestionFreeText, model.QuestionShortAnswer, model.QuestionFillInBlank:
		return true
	}
	return false
}

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// substitute replaces {token} occurrences with values; unknown tokens are left in place.
func substitute(text string, values map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		if v, ok := values[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

func substituteAll(xs []string, values map[string]string) []string {
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		out = append(out, substitute(x, values))
	}
	return out
}

// unknownPlaceholder returns the first token in a template text that values
// cannot fill. Only the template is checked: substituted catalog values may
// legitimately contain braces.
func unknownPlaceholder(text string, values map[string]string) (string, bool) {
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		if _, ok := values[m[1]]; !ok {
			return m[0], true
		}
	}
	return "", false
}

// FormatPrice renders an amount as currency, e.g. "$12.00".
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func formatRange(lo, hi decimal.Decimal) string {
	return FormatPrice(lo) + " - " + FormatPrice(hi)
}
