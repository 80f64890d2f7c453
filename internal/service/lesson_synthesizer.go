package service

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"servewise-backend/internal/lessongen"
	"servewise-backend/internal/model"
	"servewise-backend/internal/notify"
	"servewise-backend/internal/repository"
	"servewise-backend/utilities"
)

// SynthesisReport summarizes one synthesis run.
type SynthesisReport struct {
	LessonsCreated int `json:"lessons_created"`
	LessonsUpdated int `json:"lessons_updated"`
	QuestionsAdded int `json:"questions_added"`
	// Skipped counts questions already present in their lesson.
	Skipped int `json:"skipped"`
	// Unresolved counts specs that could not be bound to an item.
	Unresolved int `json:"unresolved"`
}

func (r *SynthesisReport) add(o SynthesisReport) {
	r.LessonsCreated += o.LessonsCreated
	r.LessonsUpdated += o.LessonsUpdated
	r.QuestionsAdded += o.QuestionsAdded
	r.Skipped += o.Skipped
	r.Unresolved += o.Unresolved
}

type SynthesizerOptions struct {
	Generator lessongen.Config
	// Seed makes generation reproducible; 0 draws fresh randomness.
	Seed uint64
	// Workers bounds how many restaurants a template upload processes at once.
	Workers int
}

// LessonSynthesizer turns templates and catalog items into lessons. It only
// ever adds: existing questions keep their ordinals and content.
type LessonSynthesizer interface {
	OnCatalogItemCreated(ctx context.Context, category string, restaurantID, itemID uuid.UUID) (SynthesisReport, error)
	OnTemplateUploaded(ctx context.Context, templateID uuid.UUID) (SynthesisReport, error)
	// Listen runs OnTemplateUploaded for every upload published on bus.
	Listen(bus *utilities.EventBus)
}

type lessonSynthesizer struct {
	db          *gorm.DB
	restaurants repository.RestaurantRepository
	catalog     repository.CatalogRepository
	templates   repository.TemplateRepository
	lessons     repository.LessonRepository
	bus         *utilities.EventBus
	opts        SynthesizerOptions
	log         *utilities.Logger
}

func NewLessonSynthesizer(
	db *gorm.DB,
	restaurants repository.RestaurantRepository,
	catalog repository.CatalogRepository,
	templates repository.TemplateRepository,
	lessons repository.LessonRepository,
	bus *utilities.EventBus,
	opts SynthesizerOptions,
	baseLog *utilities.Logger,
) LessonSynthesizer {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &lessonSynthesizer{
		db:          db,
		restaurants: restaurants,
		catalog:     catalog,
		templates:   templates,
		lessons:     lessons,
		bus:         bus,
		opts:        opts,
		log:         baseLog.With("service", "LessonSynthesizer"),
	}
}

// generator returns a fresh generator. With a fixed seed the stream depends
// only on salt, so concurrent runs stay reproducible.
func (s *lessonSynthesizer) generator(salt uuid.UUID) *lessongen.Generator {
	seed := s.opts.Seed
	if seed != 0 {
		if mixed := seed ^ binary.BigEndian.Uint64(salt[:8]); mixed != 0 {
			seed = mixed
		}
	}
	return lessongen.New(s.opts.Generator, lessongen.NewRand(seed))
}

type catalogSnapshot struct {
	restaurant *model.Restaurant
	category   string
	dishes     []model.Dish
	wines      []model.Wine
}

func (s *lessonSynthesizer) loadSnapshot(ctx context.Context, category string, restaurantID uuid.UUID) (*catalogSnapshot, error) {
	restaurant, err := s.restaurants.Get(ctx, nil, restaurantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRestaurantNotFound, restaurantID)
	}
	if err != nil {
		return nil, err
	}
	snap := &catalogSnapshot{restaurant: restaurant, category: category}
	switch category {
	case model.CategoryFood:
		snap.dishes, err = s.catalog.ListDishes(ctx, nil, restaurantID)
	case model.CategoryWine:
		snap.wines, err = s.catalog.ListWines(ctx, nil, restaurantID)
	default:
		return nil, checkCategory(category)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s catalog: %w", category, err)
	}
	return snap, nil
}

func (c *catalogSnapshot) itemIDs() []uuid.UUID {
	var ids []uuid.UUID
	for i := range c.dishes {
		ids = append(ids, c.dishes[i].ID)
	}
	for i := range c.wines {
		ids = append(ids, c.wines[i].ID)
	}
	return ids
}

func (c *catalogSnapshot) resolver(id uuid.UUID, cfg lessongen.Config) (lessongen.AttributeResolver, bool) {
	for i := range c.dishes {
		if c.dishes[i].ID == id {
			return lessongen.NewDishResolver(&c.dishes[i], c.restaurant, c.dishes, cfg), true
		}
	}
	for i := range c.wines {
		if c.wines[i].ID == id {
			return lessongen.NewWineResolver(&c.wines[i], c.restaurant, c.wines, cfg), true
		}
	}
	return nil, false
}

func (s *lessonSynthesizer) OnCatalogItemCreated(ctx context.Context, category string, restaurantID, itemID uuid.UUID) (SynthesisReport, error) {
	var report SynthesisReport
	if err := checkCategory(category); err != nil {
		return report, err
	}
	snap, err := s.loadSnapshot(ctx, category, restaurantID)
	if err != nil {
		return report, err
	}
	if _, ok := snap.resolver(itemID, s.opts.Generator); !ok {
		return report, fmt.Errorf("%w: live %s %s in restaurant %s", ErrItemNotFound, category, itemID, restaurantID)
	}
	templates, err := s.templates.ListByCategory(ctx, nil, category)
	if err != nil {
		return report, fmt.Errorf("list %s templates: %w", category, err)
	}

	gen := s.generator(itemID)
	var (
		errs    []error
		touched []*model.Lesson
	)
	for i := range templates {
		tmpl := &templates[i]
		r, lesson, err := s.synthesize(ctx, gen, snap, tmpl, []uuid.UUID{itemID})
		report.add(r)
		if err != nil {
			errs = append(errs, fmt.Errorf("template %s unit %d chapter %d: %w", tmpl.Category, tmpl.Unit, tmpl.Chapter, err))
			continue
		}
		if lesson != nil {
			touched = append(touched, lesson)
		}
	}
	s.announce(ctx, snap.restaurant, touched)

	s.log.Info("item synthesis finished",
		"category", category,
		"restaurant_id", restaurantID,
		"item_id", itemID,
		"lessons_created", report.LessonsCreated,
		"lessons_updated", report.LessonsUpdated,
		"questions_added", report.QuestionsAdded,
		"unresolved", report.Unresolved,
	)
	return report, errors.Join(errs...)
}

func (s *lessonSynthesizer) OnTemplateUploaded(ctx context.Context, templateID uuid.UUID) (SynthesisReport, error) {
	var report SynthesisReport
	tmpl, err := s.templates.Get(ctx, nil, templateID)
	if errors.Is(err, repository.ErrNotFound) {
		return report, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}
	if err != nil {
		return report, err
	}
	restaurants, err := s.restaurants.ListActive(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("list restaurants: %w", err)
	}

	// Restaurants never share a lesson key, so they can be processed in parallel.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	var (
		mu   sync.Mutex
		errs []error
	)
	for _, restaurant := range restaurants {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			r, err := s.synthesizeRestaurant(gctx, tmpl, restaurant.ID)
			mu.Lock()
			defer mu.Unlock()
			report.add(r)
			if err != nil {
				errs = append(errs, fmt.Errorf("restaurant %s: %w", restaurant.ID, err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}

	s.log.Info("template synthesis finished",
		"template_id", templateID,
		"restaurants", len(restaurants),
		"lessons_created", report.LessonsCreated,
		"lessons_updated", report.LessonsUpdated,
		"questions_added", report.QuestionsAdded,
		"unresolved", report.Unresolved,
		"failures", len(errs),
	)
	return report, errors.Join(errs...)
}

func (s *lessonSynthesizer) synthesizeRestaurant(ctx context.Context, tmpl *model.LessonTemplate, restaurantID uuid.UUID) (SynthesisReport, error) {
	snap, err := s.loadSnapshot(ctx, tmpl.Category, restaurantID)
	if err != nil {
		return SynthesisReport{}, err
	}
	ids := snap.itemIDs()
	if len(ids) == 0 {
		return SynthesisReport{}, nil
	}
	report, lesson, err := s.synthesize(ctx, s.generator(restaurantID), snap, tmpl, ids)
	if err != nil {
		return report, err
	}
	if lesson != nil {
		s.announce(ctx, snap.restaurant, []*model.Lesson{lesson})
	}
	return report, nil
}

func (s *lessonSynthesizer) Listen(bus *utilities.EventBus) {
	bus.Subscribe(utilities.EventTemplateUploaded, func(data interface{}) {
		templateID, ok := data.(uuid.UUID)
		if !ok {
			s.log.Warn("ignoring template upload event", "payload", data)
			return
		}
		if _, err := s.OnTemplateUploaded(context.Background(), templateID); err != nil {
			s.log.Error("template synthesis failed", "template_id", templateID, "error", err)
		}
	})
}

// synthesize generates the template's questions for items, in item order,
// and upserts them into the restaurant's lesson for the template. The lesson
// is returned only when something was added to it.
func (s *lessonSynthesizer) synthesize(ctx context.Context, gen *lessongen.Generator, snap *catalogSnapshot, tmpl *model.LessonTemplate, itemIDs []uuid.UUID) (SynthesisReport, *model.Lesson, error) {
	var (
		report    SynthesisReport
		questions []lessongen.Question
		covered   []uuid.UUID
	)
	for _, id := range itemIDs {
		r, ok := snap.resolver(id, gen.Config())
		if !ok {
			continue
		}
		qs, errs := gen.GenerateAll(tmpl.ID, tmpl.Questions, r)
		for _, err := range errs {
			report.Unresolved++
			s.log.Warn("question skipped",
				"template_id", tmpl.ID,
				"item_id", id,
				"error", err,
			)
		}
		if len(qs) > 0 {
			questions = append(questions, qs...)
			covered = append(covered, id)
		}
	}
	if len(questions) == 0 {
		return report, nil, nil
	}

	res, err := s.upsert(ctx, snap.restaurant.ID, tmpl, covered, questions)
	if err != nil {
		return report, nil, err
	}
	report.Skipped += res.skipped
	report.QuestionsAdded += res.added
	switch {
	case res.created:
		report.LessonsCreated++
	case res.added > 0 || res.linked > 0:
		report.LessonsUpdated++
	}
	if res.added == 0 {
		return report, nil, nil
	}
	return report, res.lesson, nil
}

type upsertResult struct {
	lesson  *model.Lesson
	created bool
	added   int
	linked  int
	skipped int
}

func (s *lessonSynthesizer) upsert(ctx context.Context, restaurantID uuid.UUID, tmpl *model.LessonTemplate, itemIDs []uuid.UUID, questions []lessongen.Question) (upsertResult, error) {
	for attempt := 0; ; attempt++ {
		var res upsertResult
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			lesson, err := s.lessons.FindByKey(ctx, tx, restaurantID, tmpl.Category, tmpl.Unit, tmpl.Chapter)
			if errors.Is(err, repository.ErrNotFound) {
				return s.createLesson(ctx, tx, restaurantID, tmpl, itemIDs, questions, &res)
			}
			if err != nil {
				return err
			}
			return s.appendToLesson(ctx, tx, lesson, itemIDs, questions, &res)
		})
		if err == nil {
			return res, nil
		}
		// A concurrent run created the lesson first; the retry appends to it.
		if attempt == 0 && repository.IsUniqueViolation(err) {
			s.log.Warn("lesson upsert lost a race, retrying",
				"restaurant_id", restaurantID,
				"unit", tmpl.Unit,
				"chapter", tmpl.Chapter,
			)
			continue
		}
		return upsertResult{}, err
	}
}

func (s *lessonSynthesizer) createLesson(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, tmpl *model.LessonTemplate, itemIDs []uuid.UUID, questions []lessongen.Question, res *upsertResult) error {
	employees, err := s.restaurants.ActiveEmployees(ctx, tx, restaurantID)
	if err != nil {
		return fmt.Errorf("load employees: %w", err)
	}
	lesson := &model.Lesson{
		RestaurantID: restaurantID,
		TemplateID:   tmpl.ID,
		Category:     tmpl.Category,
		Unit:         tmpl.Unit,
		UnitName:     tmpl.UnitName,
		Chapter:      tmpl.Chapter,
		ChapterName:  tmpl.ChapterName,
		Difficulty:   tmpl.Difficulty,
		Content:      tmpl.Content,
	}
	for _, id := range itemIDs {
		lesson.MenuItems = append(lesson.MenuItems, model.LessonMenuItem{MenuItemID: id})
	}
	for i, q := range questions {
		lesson.Questions = append(lesson.Questions, toGeneratedQuestion(q, i+1))
	}
	for _, e := range employees {
		lesson.Progress = append(lesson.Progress, model.Progress{EmployeeID: e.ID, Status: model.ProgressNotStarted})
	}
	if err := s.lessons.Create(ctx, tx, lesson); err != nil {
		return err
	}
	res.lesson = lesson
	res.created = true
	res.added = len(questions)
	res.linked = len(itemIDs)
	return nil
}

func (s *lessonSynthesizer) appendToLesson(ctx context.Context, tx *gorm.DB, lesson *model.Lesson, itemIDs []uuid.UUID, questions []lessongen.Question, res *upsertResult) error {
	// Keys of archived questions count too: restoring an item must not
	// re-issue what it already had.
	issued := make(map[string]struct{}, len(lesson.Questions))
	for _, q := range lesson.Questions {
		issued[q.Key] = struct{}{}
	}
	var fresh []model.GeneratedQuestion
	for _, q := range questions {
		if _, ok := issued[q.Key]; ok {
			res.skipped++
			continue
		}
		issued[q.Key] = struct{}{}
		fresh = append(fresh, toGeneratedQuestion(q, 0))
	}
	var link []uuid.UUID
	for _, id := range itemIDs {
		if !lesson.HasMenuItem(id) {
			link = append(link, id)
		}
	}
	res.lesson = lesson
	if len(fresh) == 0 && len(link) == 0 {
		return nil
	}
	if _, err := s.lessons.AppendQuestionsAndItem(ctx, tx, lesson.ID, link, fresh); err != nil {
		return err
	}
	res.added = len(fresh)
	res.linked = len(link)
	return nil
}

func toGeneratedQuestion(q lessongen.Question, ordinal int) model.GeneratedQuestion {
	return model.GeneratedQuestion{
		Ordinal:        ordinal,
		Key:            q.Key,
		MenuItemID:     q.MenuItemID,
		Text:           q.Text,
		QuestionType:   q.QuestionType,
		Options:        q.Options,
		CorrectAnswers: q.CorrectAnswers,
		Explanation:    q.Explanation,
	}
}

// announce publishes newly assigned lessons for the restaurant's staff.
// Delivery happens off the request path.
func (s *lessonSynthesizer) announce(ctx context.Context, restaurant *model.Restaurant, lessons []*model.Lesson) {
	if s.bus == nil || len(lessons) == 0 {
		return
	}
	employees, err := s.restaurants.ActiveEmployees(ctx, nil, restaurant.ID)
	if err != nil {
		s.log.Warn("skipping lesson notification", "restaurant_id", restaurant.ID, "error", err)
		return
	}
	event := notify.LessonsAssigned{RestaurantID: restaurant.ID, RestaurantName: restaurant.Name}
	for _, e := range employees {
		event.Recipients = append(event.Recipients, notify.Recipient{
			EmployeeID: e.ID,
			Name:       e.FirstName + " " + e.LastName,
			Email:      e.Email,
		})
	}
	for _, l := range lessons {
		event.Lessons = append(event.Lessons, notify.LessonSummary{LessonID: l.ID, Title: LessonTitle(l), Category: l.Category})
	}
	s.bus.Publish(utilities.EventLessonsAssigned, event)
}

// LessonTitle is the display title used in handouts and notifications.
func LessonTitle(l *model.Lesson) string {
	title := fmt.Sprintf("Unit %d, Chapter %d", l.Unit, l.Chapter)
	if l.ChapterName != "" {
		title += ": " + l.ChapterName
	}
	return title
}
