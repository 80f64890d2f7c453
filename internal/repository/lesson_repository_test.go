package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"servewise-backend/internal/model"
	"servewise-backend/internal/testutil"
)

func question(itemID uuid.UUID, key, text string) model.GeneratedQuestion {
	return model.GeneratedQuestion{
		Key:            key,
		MenuItemID:     itemID,
		Text:           text,
		QuestionType:   model.QuestionSingleSelect,
		Options:        []string{"a", "b", "c", "d"},
		CorrectAnswers: []string{"a"},
	}
}

func seedLesson(t *testing.T, ctx context.Context, db *gorm.DB, repo LessonRepository, restaurantID uuid.UUID, unit int, items ...uuid.UUID) *model.Lesson {
	t.Helper()
	lesson := &model.Lesson{
		RestaurantID: restaurantID,
		TemplateID:   uuid.New(),
		Category:     model.CategoryFood,
		Unit:         unit,
		Chapter:      1,
	}
	for i, id := range items {
		lesson.MenuItems = append(lesson.MenuItems, model.LessonMenuItem{MenuItemID: id})
		q := question(id, uuid.NewString(), "q")
		q.Ordinal = i + 1
		lesson.Questions = append(lesson.Questions, q)
	}
	require.NoError(t, repo.Create(ctx, db, lesson))
	return lesson
}

func TestLessonRepoAppendAssignsOrdinals(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewLessonRepository(db, testutil.Logger(t))
	restaurant := testutil.SeedRestaurant(t, ctx, db, "Osteria", 0)

	first, second := uuid.New(), uuid.New()
	lesson := seedLesson(t, ctx, db, repo, restaurant.ID, 1, first)

	got, err := repo.FindByKey(ctx, nil, restaurant.ID, model.CategoryFood, 1, 1)
	require.NoError(t, err)
	require.Equal(t, lesson.ID, got.ID)
	require.Len(t, got.Questions, 1)
	before := got.Questions[0]

	appended, err := repo.AppendQuestionsAndItem(ctx, nil, lesson.ID, []uuid.UUID{second, first}, []model.GeneratedQuestion{
		question(second, "k2", "second"),
		question(second, "k3", "third"),
	})
	require.NoError(t, err)
	require.Len(t, appended, 2)
	assert.Equal(t, 2, appended[0].Ordinal)
	assert.Equal(t, 3, appended[1].Ordinal)

	got, err = repo.Get(ctx, nil, lesson.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{first, second}, got.MenuItemIDs())
	require.Len(t, got.Questions, 3)
	assert.Equal(t, before.ID, got.Questions[0].ID)
	assert.Equal(t, before.Text, got.Questions[0].Text)
	assert.Equal(t, []string{"second", "third"}, []string{got.Questions[1].Text, got.Questions[2].Text})

	_, err = repo.AppendQuestionsAndItem(ctx, nil, lesson.ID, nil, []model.GeneratedQuestion{question(second, "k2", "dup")})
	assert.True(t, IsUniqueViolation(err), "a repeated key is rejected: %v", err)
}

func TestLessonRepoFindByKeyNotFound(t *testing.T) {
	db := testutil.DB(t)
	repo := NewLessonRepository(db, testutil.Logger(t))
	_, err := repo.FindByKey(context.Background(), nil, uuid.New(), model.CategoryWine, 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLessonRepoSetQuestionsDeleted(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewLessonRepository(db, testutil.Logger(t))
	restaurant := testutil.SeedRestaurant(t, ctx, db, "Osteria", 0)

	x, y := uuid.New(), uuid.New()
	a := seedLesson(t, ctx, db, repo, restaurant.ID, 1, x, y)
	b := seedLesson(t, ctx, db, repo, restaurant.ID, 2, x)

	n, err := repo.SetQuestionsDeletedForItem(ctx, nil, x, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		l, err := repo.Get(ctx, nil, id)
		require.NoError(t, err)
		for _, q := range l.Questions {
			assert.Equal(t, q.MenuItemID == x, q.IsDeleted)
		}
	}

	n, err = repo.SetQuestionsDeletedForItem(ctx, nil, x, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestGeneratedQuestionIsImmutable(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewLessonRepository(db, testutil.Logger(t))
	restaurant := testutil.SeedRestaurant(t, ctx, db, "Osteria", 0)
	lesson := seedLesson(t, ctx, db, repo, restaurant.ID, 1, uuid.New())

	err := db.Model(&model.GeneratedQuestion{}).Where("lesson_id = ?", lesson.ID).Update("text", "rewritten").Error
	assert.ErrorIs(t, err, model.ErrQuestionImmutable)

	err = db.Model(&model.GeneratedQuestion{}).Where("lesson_id = ?", lesson.ID).Update("is_deleted", true).Error
	assert.NoError(t, err)
}

func TestLessonRepoDeleteLessonsReferencingItem(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewLessonRepository(db, testutil.Logger(t))
	restaurant := testutil.SeedRestaurant(t, ctx, db, "Osteria", 0)

	x, y := uuid.New(), uuid.New()
	shared := seedLesson(t, ctx, db, repo, restaurant.ID, 1, x, y)
	onlyY := seedLesson(t, ctx, db, repo, restaurant.ID, 2, y)

	removed, err := repo.DeleteLessonsReferencingItem(ctx, nil, x)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, shared.ID, removed[0].ID)
	assert.ElementsMatch(t, []uuid.UUID{x, y}, removed[0].MenuItemIDs())

	_, err = repo.Get(ctx, nil, shared.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var orphans int64
	require.NoError(t, db.Model(&model.GeneratedQuestion{}).Where("lesson_id = ?", shared.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	_, err = repo.Get(ctx, nil, onlyY.ID)
	assert.NoError(t, err)
}

func TestLessonRepoDeleteQuestionsForItem(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewLessonRepository(db, testutil.Logger(t))
	restaurant := testutil.SeedRestaurant(t, ctx, db, "Osteria", 0)

	x, y := uuid.New(), uuid.New()
	shared := seedLesson(t, ctx, db, repo, restaurant.ID, 1, x, y)
	onlyX := seedLesson(t, ctx, db, repo, restaurant.ID, 2, x)

	n, dropped, err := repo.DeleteQuestionsForItem(ctx, nil, x)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, []uuid.UUID{onlyX.ID}, dropped)

	l, err := repo.Get(ctx, nil, shared.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{y}, l.MenuItemIDs())
	require.Len(t, l.Questions, 1)
	assert.Equal(t, y, l.Questions[0].MenuItemID)
}
