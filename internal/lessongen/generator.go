package lessongen

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"servewise-backend/internal/model"
)

// AttributeResolver binds the symbolic sources of a question spec to one
// catalog item. Dish and wine each provide one.
type AttributeResolver interface {
	ItemID() uuid.UUID
	// Placeholders returns the {token} values for one instantiation of a spec.
	Placeholders(repeat model.RepeatKind, value string) map[string]string
	// RepeatValues enumerates the instantiations of a repeat_for spec.
	RepeatValues(repeat model.RepeatKind) ([]string, error)
	// Resolve evaluates a domain-specific source. Literal sources never reach it.
	Resolve(src model.OptionSource, b Binding) (Resolution, error)
}

// Binding is the context one spec instantiation is resolved in.
type Binding struct {
	Spec         model.QuestionSpec
	QuestionType string
	Text         string
	RepeatKind   model.RepeatKind
	Repeat       string
	Placeholders map[string]string
	Rand         *rand.Rand
	Config       Config
}

// Resolution is what a source yields. Fixed is a complete option set used
// as-is; otherwise options are assembled from Correct, Pool and Fallback.
type Resolution struct {
	Correct  []string
	Pool     []string
	Fallback []string
	// Exclude lists values that must never be offered as distractors.
	Exclude []string
	Fixed   []string
	// QuestionType, when set, overrides the spec's type.
	QuestionType string
}

// Question is a resolved spec instantiation bound to one catalog item.
type Question struct {
	Key            string
	SpecIndex      int
	Repeat         string
	MenuItemID     uuid.UUID
	Text           string
	QuestionType   string
	Options        []string
	CorrectAnswers []string
	Explanation    string
}

type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New returns a generator drawing from rng. A Generator is not safe for
// concurrent use; give each goroutine its own.
func New(cfg Config, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = NewRand(0)
	}
	return &Generator{cfg: cfg, rng: rng}
}

func (g *Generator) Config() Config { return g.cfg }

// Generate resolves one spec against the item, expanding repeat_for into
// consecutive instantiations. Instantiations that fail are dropped and
// reported through the joined error; the resolved ones are still returned.
func (g *Generator) Generate(templateID uuid.UUID, specIndex int, spec model.QuestionSpec, r AttributeResolver) ([]Question, error) {
	repeats := []string{""}
	if spec.RepeatFor != "" {
		values, err := r.RepeatValues(spec.RepeatFor)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, unresolved("repeat_for %q has no members for item %s", spec.RepeatFor, r.ItemID())
		}
		repeats = values
	}

	var (
		out  []Question
		errs []error
	)
	for _, rep := range repeats {
		q, err := g.instantiate(spec, r, rep)
		if err != nil {
			errs = append(errs, fmt.Errorf("spec %d repeat %q: %w", specIndex, rep, err))
			continue
		}
		q.SpecIndex = specIndex
		q.Repeat = rep
		q.MenuItemID = r.ItemID()
		q.Key = QuestionKey(r.ItemID(), templateID, specIndex, rep)
		out = append(out, q)
	}
	return out, errors.Join(errs...)
}

// GenerateAll runs every spec of a template in declared order.
func (g *Generator) GenerateAll(templateID uuid.UUID, specs []model.QuestionSpec, r AttributeResolver) ([]Question, []error) {
	var (
		out  []Question
		errs []error
	)
	for i, spec := range specs {
		qs, err := g.Generate(templateID, i, spec, r)
		out = append(out, qs...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return out, errs
}

func (g *Generator) instantiate(spec model.QuestionSpec, r AttributeResolver, rep string) (Question, error) {
	placeholders := r.Placeholders(spec.RepeatFor, rep)
	b := Binding{
		Spec:         spec,
		QuestionType: NormalizeQuestionType(spec.QuestionType),
		Text:         substitute(spec.Text, placeholders),
		RepeatKind:   spec.RepeatFor,
		Repeat:       rep,
		Placeholders: placeholders,
		Rand:         g.rng,
		Config:       g.cfg,
	}
	if tok, ok := unknownPlaceholder(spec.Text, placeholders); ok {
		return Question{}, unresolved("unknown placeholder %s in %q", tok, spec.Text)
	}

	if spec.Options.Kind == model.SourceLiteral && spec.CorrectAnswer == nil {
		return Question{}, unresolved("literal options without a correct answer")
	}
	opts, err := g.resolve(spec.Options, r, b)
	if err != nil {
		return Question{}, err
	}
	correct := opts.Correct
	if spec.CorrectAnswer != nil {
		ans, err := g.resolve(*spec.CorrectAnswer, r, b)
		if err != nil {
			return Question{}, err
		}
		correct = ans.Correct
	}
	correct = distinct(correct)
	if len(correct) == 0 {
		return Question{}, unresolved("no correct answer for %q", b.Text)
	}

	qtype := b.QuestionType
	if opts.QuestionType != "" {
		qtype = opts.QuestionType
	}

	var options []string
	switch {
	case opts.Fixed != nil:
		options = distinct(opts.Fixed)
		if qtype == model.QuestionSingleSelect || qtype == model.QuestionTrueFalse {
			correct = correct[:1]
		}
	case isTextType(qtype):
		options = correct
	default:
		options, correct, err = assembleOptions(g.rng, g.cfg.optionCount(), qtype == model.QuestionMultipleChoice, correct, opts)
		if err != nil {
			return Question{}, err
		}
	}

	if err := checkAnswersOffered(options, correct); err != nil {
		return Question{}, err
	}
	return Question{
		Text:           b.Text,
		QuestionType:   qtype,
		Options:        options,
		CorrectAnswers: correct,
		Explanation:    substitute(spec.Explanation, placeholders),
	}, nil
}

func (g *Generator) resolve(src model.OptionSource, r AttributeResolver, b Binding) (Resolution, error) {
	switch src.Kind {
	case "":
		return Resolution{}, unresolved("empty option source")
	case model.SourceLiteral:
		values := substituteAll(src.Values, b.Placeholders)
		return Resolution{Correct: values, Fixed: values}, nil
	}
	return r.Resolve(src, b)
}

func checkAnswersOffered(options, correct []string) error {
	offered := make(map[string]struct{}, len(options))
	for _, o := range options {
		offered[o] = struct{}{}
	}
	for _, c := range correct {
		if _, ok := offered[c]; !ok {
			return unresolved("correct answer %q not among options", c)
		}
	}
	return nil
}

// QuestionKey identifies one spec instantiation for one item so re-running
// synthesis never issues the same question twice.
func QuestionKey(itemID, templateID uuid.UUID, specIndex int, repeat string) string {
	h := sha256.New()
	h.Write([]byte(itemID.String()))
	h.Write([]byte{0})
	h.Write([]byte(templateID.String()))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(specIndex)))
	h.Write([]byte{0})
	h.Write([]byte(repeat))
	return hex.EncodeToString(h.Sum(nil))
}
