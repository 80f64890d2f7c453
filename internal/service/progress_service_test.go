package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servewise-backend/internal/model"
	"servewise-backend/internal/testutil"
	"servewise-backend/utilities"
)

func wrongOption(q model.GeneratedQuestion) string {
	for _, o := range q.Options {
		if !contains(q.CorrectAnswers, o) {
			return o
		}
	}
	return "definitely wrong"
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func TestSubmitAnswerTracksScoreAndStatus(t *testing.T) {
	h := newHarness(t, PolicyLesson)
	r := h.restaurant("Osteria", 1)
	h.template(model.CategoryFood, 1, 1, testutil.FoodSpecs())
	h.dish(r.ID, "Burrata", "14.00", "Appetizer")
	lesson := h.lessonFor(r.ID, model.CategoryFood, 1, 1)
	require.Len(t, lesson.Questions, 3)
	require.Len(t, lesson.Progress, 1)
	employee := lesson.Progress[0].EmployeeID
	qs := lesson.Questions

	submit := func(q model.GeneratedQuestion, answers ...string) *AnswerResult {
		t.Helper()
		res, err := h.progress.SubmitAnswer(h.ctx, lesson.ID, AnswerSubmission{EmployeeID: employee, QuestionID: q.ID, Answers: answers})
		require.NoError(t, err)
		return res
	}

	res := submit(qs[0], "  "+qs[0].CorrectAnswers[0]+" ")
	assert.True(t, res.IsCorrect)
	assert.Equal(t, model.ProgressInProgress, res.Progress.Status)
	assert.Equal(t, 33, res.Progress.Score)

	res = submit(qs[1], wrongOption(qs[1]))
	assert.False(t, res.IsCorrect)
	assert.Equal(t, []string(qs[1].CorrectAnswers), res.CorrectAnswers)
	assert.Equal(t, model.ProgressInProgress, res.Progress.Status)

	res = submit(qs[2], qs[2].CorrectAnswers[0])
	assert.Equal(t, model.ProgressCompleted, res.Progress.Status)
	assert.Equal(t, 66, res.Progress.Score)

	res = submit(qs[1], qs[1].CorrectAnswers...)
	assert.Equal(t, 100, res.Progress.Score, "the latest attempt counts")
	assert.Len(t, res.Progress.Attempts, 4)

	mine, err := h.progress.EmployeeProgress(h.ctx, employee)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 100, mine[0].Score)
}

func TestSubmitAnswerErrors(t *testing.T) {
	h := newHarness(t, PolicyLesson)
	r := h.restaurant("Osteria", 1)
	h.template(model.CategoryFood, 1, 1, testutil.FoodSpecs())
	d := h.dish(r.ID, "Burrata", "14.00", "Appetizer")
	lesson := h.lessonFor(r.ID, model.CategoryFood, 1, 1)
	employee := lesson.Progress[0].EmployeeID
	q := lesson.Questions[0]

	cases := []struct {
		name     string
		lessonID uuid.UUID
		sub      AnswerSubmission
		want     error
	}{
		{"blank answers", lesson.ID, AnswerSubmission{EmployeeID: employee, QuestionID: q.ID, Answers: []string{" "}}, ErrInvalidAnswer},
		{"unknown lesson", uuid.New(), AnswerSubmission{EmployeeID: employee, QuestionID: q.ID, Answers: []string{"x"}}, ErrLessonNotFound},
		{"unknown question", lesson.ID, AnswerSubmission{EmployeeID: employee, QuestionID: uuid.New(), Answers: []string{"x"}}, ErrQuestionNotFound},
		{"not assigned", lesson.ID, AnswerSubmission{EmployeeID: uuid.New(), QuestionID: q.ID, Answers: []string{"x"}}, ErrNotAssigned},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.progress.SubmitAnswer(h.ctx, tc.lessonID, tc.sub)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := h.lifecycle.ArchiveItem(h.ctx, model.CategoryFood, d.ID)
	require.NoError(t, err)
	_, err = h.progress.SubmitAnswer(h.ctx, lesson.ID, AnswerSubmission{EmployeeID: employee, QuestionID: q.ID, Answers: []string{"x"}})
	assert.ErrorIs(t, err, ErrQuestionNotFound, "archived questions take no answers")
}

func TestGradeAnswer(t *testing.T) {
	cases := []struct {
		name    string
		qtype   string
		correct []string
		answers []string
		want    bool
	}{
		{"single", model.QuestionSingleSelect, []string{"Entree"}, []string{"entree"}, true},
		{"single wrong", model.QuestionSingleSelect, []string{"Entree"}, []string{"Dessert"}, false},
		{"single extra", model.QuestionSingleSelect, []string{"Entree"}, []string{"Entree", "Dessert"}, false},
		{"multi exact", model.QuestionMultipleChoice, []string{"Dairy", "Eggs"}, []string{"eggs", "Dairy"}, true},
		{"multi partial", model.QuestionMultipleChoice, []string{"Dairy", "Eggs"}, []string{"Dairy"}, false},
		{"multi superset", model.QuestionMultipleChoice, []string{"Dairy"}, []string{"Dairy", "Soy"}, false},
		{"text any", model.QuestionFreeText, []string{"Nebbiolo", "Nebbiolo grape"}, []string{"nebbiolo   GRAPE"}, true},
		{"no key", model.QuestionTrueFalse, nil, []string{"Yes"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := &model.GeneratedQuestion{QuestionType: tc.qtype, CorrectAnswers: tc.correct}
			assert.Equal(t, tc.want, gradeAnswer(q, tc.answers))
		})
	}
}

func TestAuthServiceIssuesAndRefreshes(t *testing.T) {
	h := newHarness(t, PolicyLesson)
	r := h.restaurant("Osteria", 1)

	var employee model.Employee
	require.NoError(t, h.db.Where("restaurant_id = ?", r.ID).First(&employee).Error)

	pair, err := h.auth.IssueTokens(h.ctx, " "+employee.Email+" ")
	require.NoError(t, err)
	claims, err := utilities.ValidateToken(pair.AccessToken, false)
	require.NoError(t, err)
	assert.Equal(t, employee.ID, claims.EmployeeID)
	assert.Equal(t, r.ID, claims.RestaurantID)

	refreshed, err := h.auth.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = h.auth.Refresh(pair.AccessToken)
	assert.ErrorIs(t, err, utilities.ErrInvalidToken)

	_, err = h.auth.IssueTokens(h.ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}
