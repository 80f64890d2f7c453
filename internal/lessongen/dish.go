package lessongen

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"servewise-backend/internal/model"
)

// DishResolver binds specs to one dish of a restaurant's menu.
type DishResolver struct {
	dish       *model.Dish
	restaurant *model.Restaurant
	dishes     []model.Dish
	cfg        Config
}

// NewDishResolver takes the restaurant's full dish list; archived dishes are
// ignored for comparisons.
func NewDishResolver(dish *model.Dish, restaurant *model.Restaurant, all []model.Dish, cfg Config) *DishResolver {
	live := make([]model.Dish, 0, len(all))
	for _, d := range all {
		if !d.IsDeleted {
			live = append(live, d)
		}
	}
	return &DishResolver{dish: dish, restaurant: restaurant, dishes: live, cfg: cfg}
}

func (r *DishResolver) ItemID() uuid.UUID { return r.dish.ID }

func (r *DishResolver) course(repeat model.RepeatKind, value string) string {
	if repeat == model.RepeatDishTypes && value != "" {
		return value
	}
	return r.dish.PrimaryType()
}

func (r *DishResolver) Placeholders(repeat model.RepeatKind, value string) map[string]string {
	p := map[string]string{
		"dish_name":   r.dish.Name,
		"description": r.dish.Description,
		"dish_type":   r.dish.PrimaryType(),
		"price":       FormatPrice(r.dish.Price),
		"course":      r.course(repeat, value),
		"image":       r.dish.ImageURL,
		"repeat":      value,
	}
	if r.restaurant != nil {
		p["restaurant"] = r.restaurant.Name
	}
	if repeat == model.RepeatAllergens {
		p["allergen"] = value
	}
	return p
}

func (r *DishResolver) RepeatValues(repeat model.RepeatKind) ([]string, error) {
	switch repeat {
	case model.RepeatDishTypes:
		primary := r.dish.PrimaryType()
		if primary != "" && containsFold(r.cfg.ValidDishTypes, primary) {
			return []string{primary}, nil
		}
		return nil, nil
	case model.RepeatAllergens:
		return distinct(r.dish.Allergens), nil
	}
	return nil, unknownSource(repeat)
}

type dishSourceFunc func(r *DishResolver, src model.OptionSource, b Binding) (Resolution, error)

var dishSources = map[model.SourceKind]dishSourceFunc{
	model.SourceDishTypes:           (*DishResolver).dishTypes,
	model.SourcePriceVariation:      (*DishResolver).priceVariation,
	model.SourceCoursePriceRanges:   (*DishResolver).coursePriceRanges,
	model.SourceDietaryRestrictions: (*DishResolver).dietaryRestrictions,
	model.SourceAllergens:           (*DishResolver).allergens,
	model.SourceTemperatures:        (*DishResolver).temperatures,
	model.SourceAccommodations:      (*DishResolver).accommodations,
	model.SourceDishNames:           (*DishResolver).dishNames,
	model.SourceYesNo:               (*DishResolver).yesNo,
}

// DishSourceKinds lists the kinds a food template may use.
func DishSourceKinds() []model.SourceKind {
	kinds := []model.SourceKind{model.SourceLiteral}
	for k := range dishSources {
		kinds = append(kinds, k)
	}
	return kinds
}

func (r *DishResolver) Resolve(src model.OptionSource, b Binding) (Resolution, error) {
	fn, ok := dishSources[src.Kind]
	if !ok {
		return Resolution{}, unknownSource(src.Kind)
	}
	return fn(r, src, b)
}

func (r *DishResolver) dishTypes(_ model.OptionSource, b Binding) (Resolution, error) {
	course := b.Placeholders["course"]
	if course == "" {
		return Resolution{}, unresolved("dish %q has no type", r.dish.Name)
	}
	// Sibling tags only count when they are valid types; an empty list of
	// valid types accepts whatever the menu uses.
	valid := r.cfg.ValidDishTypes
	pool := append([]string(nil), valid...)
	for _, d := range r.dishes {
		for _, t := range d.DishTypes {
			if len(valid) == 0 || containsFold(valid, t) {
				pool = append(pool, t)
			}
		}
	}
	return Resolution{Correct: []string{course}, Pool: pool}, nil
}

func (r *DishResolver) priceVariation(src model.OptionSource, b Binding) (Resolution, error) {
	if !r.dish.Price.IsPositive() {
		return Resolution{}, unresolved("dish %q has no price", r.dish.Name)
	}
	band := src.Variation
	if band <= 0 {
		band = r.cfg.DefaultPriceVariation
	}
	return Resolution{
		Correct: []string{FormatPrice(r.dish.Price)},
		Pool:    priceVariants(b.Rand, r.dish.Price, band, r.cfg.optionCount()-1),
	}, nil
}

func (r *DishResolver) coursePriceRanges(_ model.OptionSource, b Binding) (Resolution, error) {
	course := b.Placeholders["course"]
	var (
		lo, hi decimal.Decimal
		found  bool
	)
	for _, d := range r.dishes {
		if !containsFold(d.DishTypes, course) || !d.Price.IsPositive() {
			continue
		}
		if !found || d.Price.LessThan(lo) {
			lo = d.Price
		}
		if !found || d.Price.GreaterThan(hi) {
			hi = d.Price
		}
		found = true
	}
	if !found {
		return Resolution{}, unresolved("no priced dishes for course %q", course)
	}
	return Resolution{
		Correct: []string{formatRange(lo, hi)},
		Pool:    priceRangeBands(b.Rand, lo, hi, r.cfg.optionCount()-1),
	}, nil
}

func (r *DishResolver) dietaryRestrictions(model.OptionSource, Binding) (Resolution, error) {
	return Resolution{Correct: r.dish.DietaryRestrictions, Pool: r.cfg.DietaryRestrictions}, nil
}

func (r *DishResolver) allergens(model.OptionSource, Binding) (Resolution, error) {
	pool := append([]string(nil), r.cfg.Allergens...)
	for _, d := range r.dishes {
		pool = append(pool, d.Allergens...)
	}
	return Resolution{Correct: r.dish.Allergens, Pool: pool}, nil
}

func (r *DishResolver) temperatures(model.OptionSource, Binding) (Resolution, error) {
	for _, t := range r.cfg.Temperatures {
		if normKey(t) == normKey(r.dish.Temperature) {
			return Resolution{Correct: []string{t}, Fixed: r.cfg.Temperatures}, nil
		}
	}
	return Resolution{}, unresolved("dish %q temperature %q not in vocabulary", r.dish.Name, r.dish.Temperature)
}

func (r *DishResolver) accommodations(model.OptionSource, Binding) (Resolution, error) {
	pool := append([]string(nil), r.cfg.Accommodations...)
	for _, d := range r.dishes {
		pool = append(pool, d.Accommodations...)
	}
	return Resolution{Correct: r.dish.Accommodations, Pool: pool}, nil
}

func (r *DishResolver) dishNames(model.OptionSource, Binding) (Resolution, error) {
	var pool []string
	for _, d := range r.dishes {
		if d.ID != r.dish.ID {
			pool = append(pool, d.Name)
		}
	}
	return Resolution{
		Correct:  []string{r.dish.Name},
		Pool:     pool,
		Fallback: r.cfg.Fallback.DishNames,
	}, nil
}

// dishFacts pairs a keyword pattern with the dish attribute it asks about.
// Order matters: the first matching pattern decides, so specific allergens
// come before the generic allergen check.
var dishFacts = []struct {
	pattern *regexp.Regexp
	truth   func(d *model.Dish, text string) bool
}{
	{regexp.MustCompile(`cross[- ]contact`), func(d *model.Dish, _ string) bool { return d.CrossContactRisk }},
	{regexp.MustCompile(`substitut`), func(d *model.Dish, _ string) bool { return d.CanSubstitute }},
	{regexp.MustCompile(`\bvegan\b`), func(d *model.Dish, _ string) bool { return d.IsVegan }},
	{regexp.MustCompile(`vegetarian`), func(d *model.Dish, _ string) bool { return d.IsVegetarian }},
	{regexp.MustCompile(`gluten`), func(d *model.Dish, text string) bool {
		if strings.Contains(text, "free") {
			return d.IsGlutenFree
		}
		return !d.IsGlutenFree
	}},
	{regexp.MustCompile(`dairy`), func(d *model.Dish, text string) bool {
		if strings.Contains(text, "free") {
			return !d.ContainsDairy
		}
		return d.ContainsDairy
	}},
	{regexp.MustCompile(`\bnuts?\b|peanut`), func(d *model.Dish, text string) bool {
		if strings.Contains(text, "free") {
			return !d.ContainsNuts
		}
		return d.ContainsNuts
	}},
	{regexp.MustCompile(`allergen`), func(d *model.Dish, text string) bool {
		if strings.Contains(text, "free") {
			return len(d.Allergens) == 0
		}
		return len(d.Allergens) > 0
	}},
	{regexp.MustCompile(`spicy`), func(d *model.Dish, _ string) bool { return d.IsSpicy }},
	{regexp.MustCompile(`\bhot\b`), func(d *model.Dish, _ string) bool { return normKey(d.Temperature) == "hot" }},
	{regexp.MustCompile(`\bcold\b`), func(d *model.Dish, _ string) bool { return normKey(d.Temperature) == "cold" }},
}

var dishAttributes = map[string]func(d *model.Dish) bool{
	"vegetarian":     func(d *model.Dish) bool { return d.IsVegetarian },
	"vegan":          func(d *model.Dish) bool { return d.IsVegan },
	"gluten_free":    func(d *model.Dish) bool { return d.IsGlutenFree },
	"contains_dairy": func(d *model.Dish) bool { return d.ContainsDairy },
	"contains_nuts":  func(d *model.Dish) bool { return d.ContainsNuts },
	"spicy":          func(d *model.Dish) bool { return d.IsSpicy },
	"can_substitute": func(d *model.Dish) bool { return d.CanSubstitute },
	"cross_contact":  func(d *model.Dish) bool { return d.CrossContactRisk },
}

// yesNo answers from an explicit attribute when the source names one,
// otherwise from keywords in the template text. The raw template text is
// matched so dish names cannot trigger a keyword.
func (r *DishResolver) yesNo(src model.OptionSource, b Binding) (Resolution, error) {
	if src.Attribute != "" {
		fn, ok := dishAttributes[normKey(src.Attribute)]
		if !ok {
			return Resolution{}, unresolved("unknown dish attribute %q", src.Attribute)
		}
		return yesNoResolution(fn(r.dish)), nil
	}
	text := strings.ToLower(b.Spec.Text)
	if b.RepeatKind == model.RepeatAllergens && (strings.Contains(text, "{repeat}") || strings.Contains(text, "{allergen}")) {
		return yesNoResolution(containsFold(r.dish.Allergens, b.Repeat)), nil
	}
	for _, f := range dishFacts {
		if f.pattern.MatchString(text) {
			return yesNoResolution(f.truth(r.dish, text)), nil
		}
	}
	return Resolution{}, unresolved("no dish attribute matches %q", b.Spec.Text)
}

func yesNoResolution(truth bool) Resolution {
	answer := "No"
	if truth {
		answer = "Yes"
	}
	return Resolution{
		Correct:      []string{answer},
		Fixed:        []string{"Yes", "No"},
		QuestionType: model.QuestionTrueFalse,
	}
}
