package service

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servewise-backend/internal/model"
	"servewise-backend/internal/testutil"
)

func TestLessonServiceHandout(t *testing.T) {
	h := newHarness(t, PolicyLesson)
	r := h.restaurant("Osteria", 1)
	h.template(model.CategoryFood, 1, 1, testutil.FoodSpecs())
	h.dish(r.ID, "Crème Brûlée", "11.00", "Dessert")
	lesson := h.lessonFor(r.ID, model.CategoryFood, 1, 1)

	var buf bytes.Buffer
	require.NoError(t, h.lessons.WriteHandout(h.ctx, lesson.ID, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	err := h.lessons.WriteHandout(h.ctx, uuid.New(), &buf)
	assert.ErrorIs(t, err, ErrLessonNotFound)

	_, err = h.lessons.ListByRestaurant(h.ctx, uuid.New())
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}

func TestLessonTitle(t *testing.T) {
	assert.Equal(t, "Unit 2, Chapter 3: Pairings", LessonTitle(&model.Lesson{Unit: 2, Chapter: 3, ChapterName: "Pairings"}))
	assert.Equal(t, "Unit 1, Chapter 1", LessonTitle(&model.Lesson{Unit: 1, Chapter: 1}))
}
