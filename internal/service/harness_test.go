package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"servewise-backend/internal/lessongen"
	"servewise-backend/internal/model"
	"servewise-backend/internal/notify"
	"servewise-backend/internal/repository"
	"servewise-backend/internal/testutil"
	"servewise-backend/utilities"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.LessonsAssigned
}

func (r *recordingNotifier) NotifyLessonsAssigned(_ context.Context, e notify.LessonsAssigned) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingNotifier) all() []notify.LessonsAssigned {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.LessonsAssigned(nil), r.events...)
}

type harness struct {
	t   *testing.T
	ctx context.Context
	db  *gorm.DB
	bus *utilities.EventBus

	restaurants repository.RestaurantRepository
	catalogRepo repository.CatalogRepository
	templates   repository.TemplateRepository
	lessonRepo  repository.LessonRepository

	synth     LessonSynthesizer
	lifecycle LifecycleManager
	catalog   CatalogService
	upload    TemplateService
	lessons   LessonService
	progress  ProgressService
	auth      AuthService
	notified  *recordingNotifier
}

func newHarness(t *testing.T, policy string) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	h := &harness{
		t:           t,
		ctx:         context.Background(),
		db:          db,
		bus:         utilities.NewEventBus(),
		restaurants: repository.NewRestaurantRepository(db, log),
		catalogRepo: repository.NewCatalogRepository(db, log),
		templates:   repository.NewTemplateRepository(db, log),
		lessonRepo:  repository.NewLessonRepository(db, log),
		notified:    &recordingNotifier{},
	}
	h.synth = NewLessonSynthesizer(db, h.restaurants, h.catalogRepo, h.templates, h.lessonRepo, h.bus, SynthesizerOptions{
		Generator: lessongen.DefaultConfig(),
		Seed:      42,
		Workers:   2,
	}, log)
	h.synth.Listen(h.bus)
	notify.Subscribe(h.bus, h.notified, log, time.Second)

	h.lifecycle = NewLifecycleManager(db, h.catalogRepo, h.lessonRepo, h.synth, policy, log)
	h.catalog = NewCatalogService(h.restaurants, h.catalogRepo, h.synth, log)
	h.upload = NewTemplateService(db, h.templates, h.bus, log)
	h.lessons = NewLessonService(h.restaurants, h.lessonRepo, log)
	h.progress = NewProgressService(db, h.lessonRepo, repository.NewProgressRepository(db, log), log)
	h.auth = NewAuthService(h.restaurants, log)
	t.Cleanup(h.bus.Wait)
	return h
}

func (h *harness) restaurant(name string, employees int) *model.Restaurant {
	return testutil.SeedRestaurant(h.t, h.ctx, h.db, name, employees)
}

func (h *harness) template(category string, unit, chapter int, specs []model.QuestionSpec) *model.LessonTemplate {
	return testutil.SeedTemplate(h.t, h.ctx, h.db, category, unit, chapter, specs)
}

// dish seeds a dish and runs item synthesis for it, as the catalog handler would.
func (h *harness) dish(restaurantID uuid.UUID, name, price string, types ...string) *model.Dish {
	h.t.Helper()
	d := testutil.SeedDish(h.t, h.ctx, h.db, restaurantID, name, price, types...)
	_, err := h.synth.OnCatalogItemCreated(h.ctx, model.CategoryFood, restaurantID, d.ID)
	require.NoError(h.t, err)
	return d
}

func (h *harness) lessonFor(restaurantID uuid.UUID, category string, unit, chapter int) *model.Lesson {
	h.t.Helper()
	l, err := h.lessonRepo.FindByKey(h.ctx, nil, restaurantID, category, unit, chapter)
	require.NoError(h.t, err)
	full, err := h.lessonRepo.Get(h.ctx, nil, l.ID)
	require.NoError(h.t, err)
	return full
}

func questionsFor(l *model.Lesson, itemID uuid.UUID) []model.GeneratedQuestion {
	var out []model.GeneratedQuestion
	for _, q := range l.Questions {
		if q.MenuItemID == itemID {
			out = append(out, q)
		}
	}
	return out
}

func ordinals(qs []model.GeneratedQuestion) []int {
	out := make([]int, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Ordinal)
	}
	return out
}
