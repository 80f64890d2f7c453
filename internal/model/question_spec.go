package model

// Question types a template may declare.
const (
	QuestionSingleSelect   = "single_select"
	QuestionMultipleChoice = "multiple_choice"
	QuestionFreeText       = "free_text"
	QuestionTrueFalse      = "true_false"
	QuestionFillInBlank    = "fill_in_blank"
	QuestionShortAnswer    = "short_answer"
)

// SourceKind names one variant of the OptionSource union.
type SourceKind string

// Shared kinds.
const (
	SourceLiteral SourceKind = "literal"
	SourceYesNo   SourceKind = "yes_no"
)

// Dish-bound kinds.
const (
	SourceDishTypes           SourceKind = "dish_types"
	SourcePriceVariation      SourceKind = "price_variation"
	SourceCoursePriceRanges   SourceKind = "course_price_ranges"
	SourceDietaryRestrictions SourceKind = "dietary_restrictions"
	SourceAllergens           SourceKind = "allergens"
	SourceTemperatures        SourceKind = "temperatures"
	SourceAccommodations      SourceKind = "accommodations"
	SourceDishNames           SourceKind = "dish_names"
)

// Wine-bound kinds.
const (
	SourceVarietals      SourceKind = "varietals"
	SourceWineCategories SourceKind = "wine_categories"
	SourceProducers      SourceKind = "producers"
	SourceLabelImages    SourceKind = "label_images"
	SourceWineCount      SourceKind = "wine_count"
	SourceCountries      SourceKind = "countries"
	SourceRegions        SourceKind = "regions"
	SourceWineStyles     SourceKind = "wine_styles"
	SourceWineNames      SourceKind = "wine_names"
	SourceOffering       SourceKind = "offering"
	SourceBlend          SourceKind = "blend"
)

// RepeatKind names the enumerable set a spec is instantiated over.
type RepeatKind string

const (
	RepeatDishTypes RepeatKind = "dish_types"
	RepeatAllergens RepeatKind = "allergens"
	RepeatVarietals RepeatKind = "varietals"
	RepeatOfferings RepeatKind = "offerings"
)

// QuestionSpec is one templated question. Options and CorrectAnswer are
// resolved against a bound catalog item when lessons are generated.
type QuestionSpec struct {
	Text          string        `json:"text" yaml:"text"`
	QuestionType  string        `json:"question_type" yaml:"question_type"`
	Options       OptionSource  `json:"options_variable" yaml:"options_variable"`
	CorrectAnswer *OptionSource `json:"correct_answer_variable,omitempty" yaml:"correct_answer_variable,omitempty"`
	RepeatFor     RepeatKind    `json:"repeat_for,omitempty" yaml:"repeat_for,omitempty"`
	Explanation   string        `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// OptionSource is a tagged union: Kind selects the variant, the remaining
// fields are the payload the variant reads.
type OptionSource struct {
	Kind      SourceKind      `json:"kind" yaml:"kind"`
	Values    []string        `json:"values,omitempty" yaml:"values,omitempty"`
	Variation float64         `json:"variation,omitempty" yaml:"variation,omitempty"`
	Attribute string          `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Predicate *CountPredicate `json:"predicate,omitempty" yaml:"predicate,omitempty"`
}

// CountPredicate selects which wines a wine_count question counts. Same*
// fields compare against the bound wine (or the repeat value for varietals).
type CountPredicate struct {
	ByTheGlass   bool `json:"by_the_glass,omitempty" yaml:"by_the_glass,omitempty"`
	ByTheBottle  bool `json:"by_the_bottle,omitempty" yaml:"by_the_bottle,omitempty"`
	SameCountry  bool `json:"same_country,omitempty" yaml:"same_country,omitempty"`
	SameRegion   bool `json:"same_region,omitempty" yaml:"same_region,omitempty"`
	SameVarietal bool `json:"same_varietal,omitempty" yaml:"same_varietal,omitempty"`
	SameCategory bool `json:"same_category,omitempty" yaml:"same_category,omitempty"`
	SamePrice    bool `json:"same_price,omitempty" yaml:"same_price,omitempty"`
}
