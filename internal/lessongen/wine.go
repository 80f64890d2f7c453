package lessongen

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"servewise-backend/internal/model"
)

const (
	offeringGlass  = "glass"
	offeringBottle = "bottle"
)

// WineResolver binds specs to one wine of a restaurant's list.
type WineResolver struct {
	wine       *model.Wine
	restaurant *model.Restaurant
	wines      []model.Wine
	cfg        Config
}

// NewWineResolver takes the restaurant's full wine list; archived wines are
// ignored for comparisons and counts.
func NewWineResolver(wine *model.Wine, restaurant *model.Restaurant, all []model.Wine, cfg Config) *WineResolver {
	live := make([]model.Wine, 0, len(all))
	for _, w := range all {
		if !w.IsDeleted {
			live = append(live, w)
		}
	}
	return &WineResolver{wine: wine, restaurant: restaurant, wines: live, cfg: cfg}
}

func (r *WineResolver) ItemID() uuid.UUID { return r.wine.ID }

func (r *WineResolver) Placeholders(repeat model.RepeatKind, value string) map[string]string {
	w := r.wine
	p := map[string]string{
		"wine_name":    w.ProductName,
		"producer":     w.Producer,
		"varietal":     strings.Join(w.Varietals, ", "),
		"vintage":      vintageLabel(w.Vintage),
		"country":      w.Country,
		"region":       w.MajorRegion,
		"category":     w.Category,
		"style":        w.Style,
		"glass_price":  FormatPrice(w.GlassPrice),
		"bottle_price": FormatPrice(w.BottlePrice),
		"offering":     offeringLabel(w),
		"image":        w.ImageURL,
		"repeat":       value,
	}
	p["price"] = p["bottle_price"]
	if w.ByTheGlass && !w.ByTheBottle {
		p["price"] = p["glass_price"]
	}
	switch repeat {
	case model.RepeatVarietals:
		p["varietal"] = value
	case model.RepeatOfferings:
		if price, ok := channelPrice(w, value); ok {
			p["price"] = FormatPrice(price)
		}
		p["offering"] = "by the " + value
	}
	if r.restaurant != nil {
		p["restaurant"] = r.restaurant.Name
	}
	return p
}

func (r *WineResolver) RepeatValues(repeat model.RepeatKind) ([]string, error) {
	switch repeat {
	case model.RepeatVarietals:
		return distinct(r.wine.Varietals), nil
	case model.RepeatOfferings:
		var out []string
		if r.wine.ByTheGlass {
			out = append(out, offeringGlass)
		}
		if r.wine.ByTheBottle {
			out = append(out, offeringBottle)
		}
		return out, nil
	}
	return nil, unknownSource(repeat)
}

type wineSourceFunc func(r *WineResolver, src model.OptionSource, b Binding) (Resolution, error)

var wineSources = map[model.SourceKind]wineSourceFunc{
	model.SourceVarietals:      (*WineResolver).varietals,
	model.SourceWineCategories: (*WineResolver).categories,
	model.SourceProducers:      (*WineResolver).producers,
	model.SourceLabelImages:    (*WineResolver).labelImages,
	model.SourceWineCount:      (*WineResolver).count,
	model.SourceCountries:      (*WineResolver).countries,
	model.SourceRegions:        (*WineResolver).regions,
	model.SourceWineStyles:     (*WineResolver).styles,
	model.SourceWineNames:      (*WineResolver).names,
	model.SourceOffering:       (*WineResolver).offering,
	model.SourceBlend:          (*WineResolver).blend,
	model.SourceYesNo:          (*WineResolver).yesNo,
}

// WineSourceKinds lists the kinds a wine template may use.
func WineSourceKinds() []model.SourceKind {
	kinds := []model.SourceKind{model.SourceLiteral}
	for k := range wineSources {
		kinds = append(kinds, k)
	}
	return kinds
}

func (r *WineResolver) Resolve(src model.OptionSource, b Binding) (Resolution, error) {
	fn, ok := wineSources[src.Kind]
	if !ok {
		return Resolution{}, unknownSource(src.Kind)
	}
	return fn(r, src, b)
}

// others collects one attribute from every other wine on the list.
func (r *WineResolver) others(attr func(w *model.Wine) []string) []string {
	var out []string
	for i := range r.wines {
		if r.wines[i].ID == r.wine.ID {
			continue
		}
		out = append(out, attr(&r.wines[i])...)
	}
	return out
}

func one(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return []string{s}
}

func (r *WineResolver) varietals(_ model.OptionSource, b Binding) (Resolution, error) {
	correct := []string(r.wine.Varietals)
	if b.RepeatKind == model.RepeatVarietals {
		correct = []string{b.Repeat}
	}
	return Resolution{
		Correct:  correct,
		Pool:     r.others(func(w *model.Wine) []string { return w.Varietals }),
		Fallback: r.cfg.Fallback.Varietals,
		Exclude:  r.wine.Varietals,
	}, nil
}

func (r *WineResolver) categories(model.OptionSource, Binding) (Resolution, error) {
	return Resolution{
		Correct: one(r.wine.Category),
		Pool:    append(append([]string(nil), r.cfg.WineCategories...), r.others(func(w *model.Wine) []string { return one(w.Category) })...),
	}, nil
}

func (r *WineResolver) producers(model.OptionSource, Binding) (Resolution, error) {
	return Resolution{
		Correct:  one(r.wine.Producer),
		Pool:     r.others(func(w *model.Wine) []string { return one(w.Producer) }),
		Fallback: r.cfg.Fallback.Producers,
	}, nil
}

func (r *WineResolver) labelImages(model.OptionSource, Binding) (Resolution, error) {
	return Resolution{
		Correct:  one(r.wine.ImageURL),
		Pool:     r.others(func(w *model.Wine) []string { return one(w.ImageURL) }),
		Fallback: r.cfg.Fallback.ImageURLs,
	}, nil
}

func (r *WineResolver) countries(model.OptionSource, Binding) (Resolution, error) {
	return Resolution{
		Correct:  one(r.wine.Country),
		Pool:     r.others(func(w *model.Wine) []string { return one(w.Country) }),
		Fallback: r.cfg.Fallback.Countries,
	}, nil
}

func (r *WineResolver) regions(model.OptionSource, Binding) (Resolution, error) {
	return Resolution{
		Correct:  one(r.wine.MajorRegion),
		Pool:     r.others(func(w *model.Wine) []string { return one(w.MajorRegion) }),
		Fallback: r.cfg.Fallback.Regions,
	}, nil
}

func (r *WineResolver) styles(model.OptionSource, Binding) (Resolution, error) {
	return Resolution{
		Correct:  one(r.wine.Style),
		Pool:     r.others(func(w *model.Wine) []string { return one(w.Style) }),
		Fallback: r.cfg.Fallback.Styles,
	}, nil
}

func (r *WineResolver) names(model.OptionSource, Binding) (Resolution, error) {
	return Resolution{
		Correct:  one(r.wine.ProductName),
		Pool:     r.others(func(w *model.Wine) []string { return one(w.ProductName) }),
		Fallback: r.cfg.Fallback.WineNames,
	}, nil
}

func (r *WineResolver) offering(model.OptionSource, Binding) (Resolution, error) {
	var answer string
	switch {
	case r.wine.ByTheGlass && r.wine.ByTheBottle:
		answer = "Both"
	case r.wine.ByTheGlass:
		answer = "Glass"
	case r.wine.ByTheBottle:
		answer = "Bottle"
	default:
		return Resolution{}, unresolved("wine %q is not offered", r.wine.ProductName)
	}
	return Resolution{
		Correct:      []string{answer},
		Fixed:        []string{"Glass", "Bottle", "Both"},
		QuestionType: model.QuestionSingleSelect,
	}, nil
}

func (r *WineResolver) blend(model.OptionSource, Binding) (Resolution, error) {
	answer := "Single Grape"
	if r.wine.IsBlend || len(r.wine.Varietals) > 1 {
		answer = "Blend"
	}
	return Resolution{
		Correct:      []string{answer},
		Fixed:        []string{"Single Grape", "Blend"},
		QuestionType: model.QuestionSingleSelect,
	}, nil
}

var wineAttributes = map[string]func(w *model.Wine) bool{
	"organic":        func(w *model.Wine) bool { return w.IsOrganic },
	"biodynamic":     func(w *model.Wine) bool { return w.IsBiodynamic },
	"vegan":          func(w *model.Wine) bool { return w.IsVegan },
	"filtered":       func(w *model.Wine) bool { return w.IsFiltered },
	"residual_sugar": func(w *model.Wine) bool { return w.HasResidualSugar },
}

func (r *WineResolver) yesNo(src model.OptionSource, _ Binding) (Resolution, error) {
	fn, ok := wineAttributes[normKey(src.Attribute)]
	if !ok {
		return Resolution{}, unresolved("unknown wine attribute %q", src.Attribute)
	}
	return yesNoResolution(fn(r.wine)), nil
}

// wineQuery is a count predicate pinned to concrete values taken from the
// bound wine.
type wineQuery struct {
	channel  string
	price    decimal.Decimal
	varietal string
	country  string
	region   string
	category string
}

// count answers "how many wines ..." questions. When the predicate compares
// price, the bound wine must itself be offered on the channel at a price, or
// there is nothing concrete to ask about.
func (r *WineResolver) count(src model.OptionSource, b Binding) (Resolution, error) {
	if src.Predicate == nil {
		return Resolution{}, unresolved("wine_count without predicate")
	}
	pred := *src.Predicate
	q := wineQuery{}
	switch {
	case b.RepeatKind == model.RepeatOfferings:
		q.channel = b.Repeat
	case pred.ByTheGlass:
		q.channel = offeringGlass
	case pred.ByTheBottle:
		q.channel = offeringBottle
	}
	if pred.SamePrice {
		price, ok := channelPrice(r.wine, q.channel)
		if !ok {
			return Resolution{}, unresolved("wine %q has no %s price to compare", r.wine.ProductName, q.channel)
		}
		q.price = price
	}
	if pred.SameVarietal {
		q.varietal = b.Repeat
		if b.RepeatKind != model.RepeatVarietals {
			if len(r.wine.Varietals) == 0 {
				return Resolution{}, unresolved("wine %q has no varietal", r.wine.ProductName)
			}
			q.varietal = r.wine.Varietals[0]
		}
	}
	if pred.SameCountry {
		if q.country = r.wine.Country; q.country == "" {
			return Resolution{}, unresolved("wine %q has no country", r.wine.ProductName)
		}
	}
	if pred.SameRegion {
		if q.region = r.wine.MajorRegion; q.region == "" {
			return Resolution{}, unresolved("wine %q has no region", r.wine.ProductName)
		}
	}
	if pred.SameCategory {
		if q.category = r.wine.Category; q.category == "" {
			return Resolution{}, unresolved("wine %q has no category", r.wine.ProductName)
		}
	}

	n := 0
	for i := range r.wines {
		if q.matches(&r.wines[i], pred.SamePrice) {
			n++
		}
	}
	return Resolution{
		Correct:      []string{strconv.Itoa(n)},
		Pool:         numericDecoys(b.Rand, n, r.cfg.optionCount()-1),
		QuestionType: model.QuestionSingleSelect,
	}, nil
}

func (q wineQuery) matches(w *model.Wine, comparePrice bool) bool {
	if q.channel != "" {
		price, ok := channelPrice(w, q.channel)
		if !ok {
			return false
		}
		if comparePrice && !price.Equal(q.price) {
			return false
		}
	}
	if q.varietal != "" && !containsFold(w.Varietals, q.varietal) {
		return false
	}
	if q.country != "" && normKey(w.Country) != normKey(q.country) {
		return false
	}
	if q.region != "" && normKey(w.MajorRegion) != normKey(q.region) {
		return false
	}
	if q.category != "" && normKey(w.Category) != normKey(q.category) {
		return false
	}
	return true
}

// channelPrice reports the wine's price on a channel and whether it is sold there.
func channelPrice(w *model.Wine, channel string) (decimal.Decimal, bool) {
	switch channel {
	case offeringGlass:
		return w.GlassPrice, w.ByTheGlass && w.GlassPrice.IsPositive()
	case offeringBottle:
		return w.BottlePrice, w.ByTheBottle && w.BottlePrice.IsPositive()
	}
	return decimal.Zero, false
}

func offeringLabel(w *model.Wine) string {
	switch {
	case w.ByTheGlass && w.ByTheBottle:
		return "by the glass and bottle"
	case w.ByTheGlass:
		return "by the glass"
	case w.ByTheBottle:
		return "by the bottle"
	}
	return ""
}

func vintageLabel(v int) string {
	if v <= 0 {
		return "NV"
	}
	return strconv.Itoa(v)
}
