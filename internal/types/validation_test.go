package types

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
)

func TestValidateCreateCategory(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   CreateCategoryRequest
		ok   bool
	}{
		{"valid", CreateCategoryRequest{Name: "Workplace"}, true},
		{"blank", CreateCategoryRequest{Name: "   "}, false},
		{"too long", CreateCategoryRequest{Name: string(make([]rune, MaxCategoryNameLen+1))}, false},
		{"negative order", CreateCategoryRequest{Name: "x", DisplayOrder: -1}, false},
		{"multibyte at limit", CreateCategoryRequest{Name: strings.Repeat("職", MaxCategoryNameLen)}, true},
	}
	for _, c := range cases {
		err := ValidateCreateCategory(c.in)
		if c.ok {
			assert.NoError(t, err, c.name)
			continue
		}
		require.Error(t, err, c.name)
		assert.True(t, apierr.IsCode(err, apierr.CodeValidation), c.name)
	}
}

func TestValidation_DetailsFormat(t *testing.T) {
	t.Parallel()
	err := ValidateCreateSurvey(CreateSurveyRequest{})
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, e.StatusCode)
	assert.Equal(t, []string{
		"endDate: is required",
		"startDate: is required",
		"title: is required",
	}, apierr.FormatValidationErrors(e.Details))
}

func TestValidateCreateSurvey_DateOrder(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	ok := CreateSurveyRequest{Title: "Q2 pulse", StartDate: start, EndDate: start.AddDate(0, 0, 14)}
	assert.NoError(t, ValidateCreateSurvey(ok))

	bad := ok
	bad.EndDate = start
	err := ValidateCreateSurvey(bad)
	e, _ := apierr.As(err)
	require.NotNil(t, e)
	assert.Equal(t, []string{"endDate: must be after startDate"}, apierr.FormatValidationErrors(e.Details))
}

func TestValidateQuestion(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateCreateQuestion(CreateQuestionRequest{Text: "How satisfied are you?", Type: QuestionRating}))
	assert.Error(t, ValidateCreateQuestion(CreateQuestionRequest{Text: "Pick one", Type: QuestionMultipleChoice, Options: []string{"a"}}))
	assert.Error(t, ValidateCreateQuestion(CreateQuestionRequest{Text: "x", Type: "essay"}))

	bad := QuestionType("essay")
	assert.Error(t, ValidateUpdateQuestion(UpdateQuestionRequest{Type: &bad}))
	assert.NoError(t, ValidateUpdateQuestion(UpdateQuestionRequest{}))
}

func TestValidateIDAndReorder(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateID("id", "42"))
	assert.Error(t, ValidateID("id", ""))
	assert.Error(t, ValidateID("id", "tmp-123"))

	assert.NoError(t, ValidateReorder([]string{"a", "b"}))
	assert.Error(t, ValidateReorder(nil))
	assert.Error(t, ValidateReorder([]string{"a", "a"}))
}

func TestOperationTarget(t *testing.T) {
	t.Parallel()
	cases := []struct {
		op   Operation
		from SurveyStatus
		to   SurveyStatus
		ok   bool
	}{
		{OpStart, SurveyDraft, SurveyActive, true},
		{OpStart, SurveyPaused, SurveyActive, true},
		{OpStart, SurveyClosed, "", false},
		{OpPause, SurveyActive, SurveyPaused, true},
		{OpPause, SurveyDraft, "", false},
		{OpStop, SurveyPaused, SurveyClosed, true},
		{OpStop, SurveyDraft, "", false},
	}
	for _, c := range cases {
		got, ok := c.op.Target(c.from)
		assert.Equal(t, c.ok, ok, "%s from %s", c.op, c.from)
		assert.Equal(t, c.to, got, "%s from %s", c.op, c.from)
	}
}

func TestUpdateRequests_Apply(t *testing.T) {
	t.Parallel()
	name := "Renamed"
	active := false
	c := UpdateCategoryRequest{Name: &name, IsActive: &active}.Apply(Category{ID: "1", Name: "Old", Description: "keep", IsActive: true})
	assert.Equal(t, Category{ID: "1", Name: "Renamed", Description: "keep"}, c)

	assert.True(t, CategoriesInactive.Matches(c))
	assert.False(t, CategoriesActive.Matches(c))
	assert.True(t, CategoriesAll.Matches(c))
}
