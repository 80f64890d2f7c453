package lessongen

import (
	"math/rand/v2"
	"strings"
)

// NewRand returns a random source for a generation run. A zero seed draws
// from the runtime's entropy; any other seed makes the run reproducible.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// shuffled returns a shuffled copy of xs.
func shuffled[T any](rng *rand.Rand, xs []T) []T {
	out := make([]T, len(xs))
	copy(out, xs)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// sample picks up to n distinct positions of xs in random order.
func sample[T any](rng *rand.Rand, xs []T, n int) []T {
	out := shuffled(rng, xs)
	if n < len(out) {
		out = out[:n]
	}
	return out
}

func normKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// distinct drops blanks and case-insensitive duplicates, keeping first spellings.
func distinct(xs []string) []string {
	seen := make(map[string]struct{}, len(xs))
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		x = strings.TrimSpace(x)
		k := normKey(x)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, x)
	}
	return out
}

func containsFold(xs []string, v string) bool {
	k := normKey(v)
	for _, x := range xs {
		if normKey(x) == k {
			return true
		}
	}
	return false
}
