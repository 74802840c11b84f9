package types

import (
	"strings"
	"unicode/utf8"

	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
)

// Length limits enforced by the backend.
const (
	MaxCategoryNameLen = 100
	MaxQuestionTextLen = 500
	MaxSurveyTitleLen  = 200
)

// fieldErrors collects validation failures keyed by field, in the same shape
// the backend uses for its `errors` object.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, msg string) { fe[field] = append(fe[field], msg) }

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	details := make(map[string]any, len(fe))
	for k, v := range fe {
		details[k] = v
	}
	return apierr.New(apierr.CodeValidation, apierr.MsgValidation, 400).WithDetails(details)
}

func required(fe fieldErrors, field, v string, maxLen int) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		fe.add(field, "is required")
	case utf8.RuneCountInString(v) > maxLen:
		fe.add(field, "is too long")
	}
}

// ValidateID rejects blank identifiers and temporary placeholders that have
// not been assigned by the server yet.
func ValidateID(field, id string) error {
	fe := fieldErrors{}
	switch {
	case strings.TrimSpace(id) == "":
		fe.add(field, "is required")
	case strings.HasPrefix(id, "tmp-"):
		fe.add(field, "is not yet confirmed by the server")
	}
	return fe.err()
}

// ValidateCreateCategory checks a new category before it is sent.
func ValidateCreateCategory(r CreateCategoryRequest) error {
	fe := fieldErrors{}
	required(fe, "name", r.Name, MaxCategoryNameLen)
	if r.DisplayOrder < 0 {
		fe.add("displayOrder", "must not be negative")
	}
	return fe.err()
}

// ValidateUpdateCategory checks a partial category update.
func ValidateUpdateCategory(r UpdateCategoryRequest) error {
	fe := fieldErrors{}
	if r.Name != nil {
		required(fe, "name", *r.Name, MaxCategoryNameLen)
	}
	if r.DisplayOrder != nil && *r.DisplayOrder < 0 {
		fe.add("displayOrder", "must not be negative")
	}
	return fe.err()
}

// ValidateReorder requires a non-empty id list without duplicates.
func ValidateReorder(ids []string) error {
	fe := fieldErrors{}
	if len(ids) == 0 {
		fe.add("categoryIds", "is required")
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			fe.add("categoryIds", "contains duplicate id "+id)
		}
		seen[id] = true
	}
	return fe.err()
}

// ValidateCreateQuestion checks a new question before it is sent.
func ValidateCreateQuestion(r CreateQuestionRequest) error {
	fe := fieldErrors{}
	required(fe, "text", r.Text, MaxQuestionTextLen)
	if !r.Type.Valid() {
		fe.add("type", "is not a supported question type")
	}
	if r.Type == QuestionMultipleChoice && len(r.Options) < 2 {
		fe.add("options", "needs at least two choices")
	}
	return fe.err()
}

// ValidateUpdateQuestion checks a partial question update.
func ValidateUpdateQuestion(r UpdateQuestionRequest) error {
	fe := fieldErrors{}
	if r.Text != nil {
		required(fe, "text", *r.Text, MaxQuestionTextLen)
	}
	if r.Type != nil && !r.Type.Valid() {
		fe.add("type", "is not a supported question type")
	}
	return fe.err()
}

// ValidateCreateSurvey checks a new survey before it is sent.
func ValidateCreateSurvey(r CreateSurveyRequest) error {
	fe := fieldErrors{}
	required(fe, "title", r.Title, MaxSurveyTitleLen)
	if r.StartDate.IsZero() {
		fe.add("startDate", "is required")
	}
	if r.EndDate.IsZero() {
		fe.add("endDate", "is required")
	}
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() && !r.EndDate.After(r.StartDate) {
		fe.add("endDate", "must be after startDate")
	}
	return fe.err()
}

// ValidateUpdateSurvey checks a partial survey update.
func ValidateUpdateSurvey(r UpdateSurveyRequest) error {
	fe := fieldErrors{}
	if r.Title != nil {
		required(fe, "title", *r.Title, MaxSurveyTitleLen)
	}
	if r.StartDate != nil && r.EndDate != nil && !r.EndDate.After(*r.StartDate) {
		fe.add("endDate", "must be after startDate")
	}
	return fe.err()
}
