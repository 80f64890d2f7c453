package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"servewise-backend/internal/repository"
	"servewise-backend/utilities"
)

// Hard delete policies.
const (
	// PolicyLesson removes every lesson covering the item, including
	// questions about other items in those lessons.
	PolicyLesson = "lesson"
	// PolicyQuestions removes only the item's questions and drops lessons
	// left covering nothing.
	PolicyQuestions = "questions"
)

type RestoreReport struct {
	QuestionsRestored int64           `json:"questions_restored"`
	Synthesis         SynthesisReport `json:"synthesis"`
	// SynthesisErr is set when the top-up failed after the restore committed.
	SynthesisErr error `json:"-"`
}

type HardDeleteReport struct {
	Policy           string      `json:"policy"`
	LessonsRemoved   []uuid.UUID `json:"lessons_removed"`
	QuestionsRemoved int64       `json:"questions_removed,omitempty"`
	// CollateralItems are other items whose questions went with the removed lessons.
	CollateralItems []uuid.UUID `json:"collateral_items,omitempty"`
}

// LifecycleManager keeps issued lessons consistent with catalog archival,
// restoration and removal.
type LifecycleManager interface {
	ArchiveItem(ctx context.Context, category string, itemID uuid.UUID) (int64, error)
	RestoreItem(ctx context.Context, category string, itemID uuid.UUID) (RestoreReport, error)
	HardDeleteItem(ctx context.Context, category string, itemID uuid.UUID) (HardDeleteReport, error)
}

type lifecycleManager struct {
	db          *gorm.DB
	catalog     repository.CatalogRepository
	lessons     repository.LessonRepository
	synthesizer LessonSynthesizer
	policy      string
	log         *utilities.Logger
}

func NewLifecycleManager(db *gorm.DB, catalog repository.CatalogRepository, lessons repository.LessonRepository, synthesizer LessonSynthesizer, policy string, baseLog *utilities.Logger) LifecycleManager {
	if policy == "" {
		policy = PolicyLesson
	}
	return &lifecycleManager{
		db:          db,
		catalog:     catalog,
		lessons:     lessons,
		synthesizer: synthesizer,
		policy:      policy,
		log:         baseLog.With("service", "LifecycleManager"),
	}
}

func (m *lifecycleManager) ArchiveItem(ctx context.Context, category string, itemID uuid.UUID) (int64, error) {
	var flagged int64
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getItem(ctx, tx, m.catalog, category, itemID); err != nil {
			return err
		}
		if err := setItemDeleted(ctx, tx, m.catalog, category, itemID, true); err != nil {
			return err
		}
		n, err := m.lessons.SetQuestionsDeletedForItem(ctx, tx, itemID, true)
		flagged = n
		return err
	})
	if err != nil {
		return 0, err
	}
	m.log.Info("item archived", "category", category, "item_id", itemID, "questions", flagged)
	return flagged, nil
}

// RestoreItem clears the archive flags and then tops the item's lessons up
// with questions from templates added while it was archived.
func (m *lifecycleManager) RestoreItem(ctx context.Context, category string, itemID uuid.UUID) (RestoreReport, error) {
	var (
		report RestoreReport
		item   itemRef
	)
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if item, err = getItem(ctx, tx, m.catalog, category, itemID); err != nil {
			return err
		}
		if err := setItemDeleted(ctx, tx, m.catalog, category, itemID, false); err != nil {
			return err
		}
		report.QuestionsRestored, err = m.lessons.SetQuestionsDeletedForItem(ctx, tx, itemID, false)
		return err
	})
	if err != nil {
		return RestoreReport{}, err
	}

	report.Synthesis, report.SynthesisErr = m.synthesizer.OnCatalogItemCreated(ctx, category, item.RestaurantID, itemID)
	if report.SynthesisErr != nil {
		m.log.Warn("restore top-up incomplete", "item_id", itemID, "error", report.SynthesisErr)
	}
	m.log.Info("item restored",
		"category", category,
		"item_id", itemID,
		"questions", report.QuestionsRestored,
		"questions_added", report.Synthesis.QuestionsAdded,
	)
	return report, nil
}

func (m *lifecycleManager) HardDeleteItem(ctx context.Context, category string, itemID uuid.UUID) (HardDeleteReport, error) {
	report := HardDeleteReport{Policy: m.policy}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getItem(ctx, tx, m.catalog, category, itemID); err != nil {
			return err
		}
		switch m.policy {
		case PolicyQuestions:
			n, dropped, err := m.lessons.DeleteQuestionsForItem(ctx, tx, itemID)
			if err != nil {
				return err
			}
			report.QuestionsRemoved = n
			report.LessonsRemoved = dropped
		case PolicyLesson:
			removed, err := m.lessons.DeleteLessonsReferencingItem(ctx, tx, itemID)
			if err != nil {
				return err
			}
			seen := map[uuid.UUID]bool{itemID: true}
			for i := range removed {
				report.LessonsRemoved = append(report.LessonsRemoved, removed[i].ID)
				for _, other := range removed[i].MenuItemIDs() {
					if !seen[other] {
						seen[other] = true
						report.CollateralItems = append(report.CollateralItems, other)
					}
				}
			}
		default:
			return fmt.Errorf("unknown hard delete policy %q", m.policy)
		}
		return deleteItem(ctx, tx, m.catalog, category, itemID)
	})
	if err != nil {
		return HardDeleteReport{}, err
	}

	if len(report.CollateralItems) > 0 {
		m.log.Warn("hard delete removed lessons covering other items",
			"item_id", itemID,
			"lessons", report.LessonsRemoved,
			"collateral_items", report.CollateralItems,
		)
	}
	m.log.Info("item deleted", "category", category, "item_id", itemID, "policy", m.policy, "lessons_removed", len(report.LessonsRemoved))
	return report, nil
}
