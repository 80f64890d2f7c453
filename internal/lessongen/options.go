package lessongen

import (
	"math/rand/v2"
	"strconv"

	"github.com/shopspring/decimal"
)

// assembleOptions builds an option set of exactly count distinct values.
// Single-select keeps one correct answer; multiple-choice shows at most
// count-1 of the correct answers so at least one distractor is present.
// The returned correct slice is the subset actually shown.
func assembleOptions(rng *rand.Rand, count int, multi bool, correct []string, res Resolution) ([]string, []string, error) {
	// Every true value is banned as a distractor, shown or not.
	banned := make(map[string]struct{}, len(correct)+len(res.Exclude))
	for _, v := range correct {
		banned[normKey(v)] = struct{}{}
	}
	if multi {
		if len(correct) > count-1 {
			correct = sample(rng, correct, count-1)
		}
	} else {
		correct = correct[:1]
	}
	for _, v := range res.Exclude {
		banned[normKey(v)] = struct{}{}
	}

	options := append([]string(nil), correct...)
	take := func(pool []string) {
		for _, v := range shuffled(rng, distinct(pool)) {
			if len(options) >= count {
				return
			}
			k := normKey(v)
			if _, ok := banned[k]; ok {
				continue
			}
			banned[k] = struct{}{}
			options = append(options, v)
		}
	}
	take(res.Pool)
	take(res.Fallback)

	if len(options) < count {
		return nil, nil, unresolved("only %d distinct options for %v", len(options), correct)
	}
	return shuffled(rng, options), correct, nil
}

// priceVariants draws need distinct prices around price. Deltas are multiples
// of 0.50 up to the band; the band widens (k = 2, 3) only if the first band
// cannot supply enough distinct positive values.
func priceVariants(rng *rand.Rand, price decimal.Decimal, band float64, need int) []string {
	if band <= 0 {
		band = 1
	}
	seen := map[string]struct{}{FormatPrice(price): {}}
	var out []string
	half := decimal.NewFromFloat(0.5)
	for k := 1; k <= 3 && len(out) < need; k++ {
		steps := int(band * float64(k) * 2)
		if steps < 1 {
			steps = 1
		}
		for attempt := 0; attempt < 40 && len(out) < need; attempt++ {
			delta := decimal.NewFromInt(int64(rng.IntN(steps) + 1)).Mul(half)
			cand := price.Add(delta)
			if rng.IntN(2) == 0 && price.Sub(delta).IsPositive() {
				cand = price.Sub(delta)
			}
			f := FormatPrice(cand)
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

var rangeFactors = []string{"0.5", "0.75", "1.25", "1.5", "1.75", "2"}

// priceRangeBands derives plausible but wrong [min, max] bands by scaling the
// true one.
func priceRangeBands(rng *rand.Rand, lo, hi decimal.Decimal, need int) []string {
	truth := formatRange(lo, hi)
	seen := map[string]struct{}{truth: {}}
	var out []string
	for _, f := range shuffled(rng, rangeFactors) {
		if len(out) >= need {
			break
		}
		factor := decimal.RequireFromString(f)
		l := lo.Mul(factor).Round(2)
		h := hi.Mul(factor).Round(2)
		if !h.IsPositive() {
			continue
		}
		band := formatRange(l, h)
		if _, dup := seen[band]; dup {
			continue
		}
		seen[band] = struct{}{}
		out = append(out, band)
	}
	return out
}

// numericDecoys returns need distinct non-negative integers near n, never n
// itself. Nearby offsets go first; random wider values fill any gap.
func numericDecoys(rng *rand.Rand, n, need int) []string {
	seen := map[int]struct{}{n: {}}
	var out []string
	add := func(v int) {
		if v < 0 || len(out) >= need {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		out = append(out, strconv.Itoa(v))
	}
	for _, off := range shuffled(rng, []int{-2, -1, 1, 2}) {
		add(n + off)
	}
	for attempt := 0; len(out) < need && attempt < 100; attempt++ {
		add(n + rng.IntN(10) + 3)
	}
	return out
}
