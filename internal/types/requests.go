package types

import "time"

// ------------------------------
// Request Types
// ------------------------------

// CategoryFilter selects categories by status.
type CategoryFilter string

const (
	CategoriesAll      CategoryFilter = "all"
	CategoriesActive   CategoryFilter = "active"
	CategoriesInactive CategoryFilter = "inactive"
)

// Valid reports whether f is a known filter.
func (f CategoryFilter) Valid() bool {
	return f == CategoriesAll || f == CategoriesActive || f == CategoriesInactive
}

// Matches reports whether c belongs to the filtered listing.
func (f CategoryFilter) Matches(c Category) bool {
	switch f {
	case CategoriesActive:
		return c.IsActive
	case CategoriesInactive:
		return !c.IsActive
	}
	return true
}

// CreateCategoryRequest holds parameters for a new category.
type CreateCategoryRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	DisplayOrder int    `json:"displayOrder,omitempty"`
	IsActive     *bool  `json:"isActive,omitempty"`
}

// UpdateCategoryRequest is a partial update; nil fields are left unchanged.
type UpdateCategoryRequest struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	DisplayOrder *int    `json:"displayOrder,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// Apply merges the set fields into c.
func (r UpdateCategoryRequest) Apply(c Category) Category {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Description != nil {
		c.Description = *r.Description
	}
	if r.DisplayOrder != nil {
		c.DisplayOrder = *r.DisplayOrder
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
	return c
}

// ReorderCategoriesRequest lists category ids in their new order.
type ReorderCategoriesRequest struct {
	CategoryIDs []string `json:"categoryIds"`
}

// CreateQuestionRequest holds parameters for a new question.
type CreateQuestionRequest struct {
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`
	CategoryID string       `json:"categoryId,omitempty"`
	IsRequired bool         `json:"isRequired"`
	Options    []string     `json:"options,omitempty"`
}

// UpdateQuestionRequest is a partial update; nil fields are left unchanged.
type UpdateQuestionRequest struct {
	Text       *string       `json:"text,omitempty"`
	Type       *QuestionType `json:"type,omitempty"`
	CategoryID *string       `json:"categoryId,omitempty"`
	IsRequired *bool         `json:"isRequired,omitempty"`
	Options    []string      `json:"options,omitempty"`
}

// Apply merges the set fields into q.
func (r UpdateQuestionRequest) Apply(q Question) Question {
	if r.Text != nil {
		q.Text = *r.Text
	}
	if r.Type != nil {
		q.Type = *r.Type
	}
	if r.CategoryID != nil {
		q.CategoryID = *r.CategoryID
	}
	if r.IsRequired != nil {
		q.IsRequired = *r.IsRequired
	}
	if r.Options != nil {
		q.Options = r.Options
	}
	return q
}

// CreateSurveyRequest holds parameters for a new survey.
type CreateSurveyRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Anonymous   bool      `json:"isAnonymous"`
	QuestionIDs []string  `json:"questionIds,omitempty"`
}

// UpdateSurveyRequest is a partial update; nil fields are left unchanged.
type UpdateSurveyRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Anonymous   *bool      `json:"isAnonymous,omitempty"`
	QuestionIDs []string   `json:"questionIds,omitempty"`
}

// Apply merges the set fields into s.
func (r UpdateSurveyRequest) Apply(s Survey) Survey {
	if r.Title != nil {
		s.Title = *r.Title
	}
	if r.Description != nil {
		s.Description = *r.Description
	}
	if r.StartDate != nil {
		s.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		s.EndDate = *r.EndDate
	}
	if r.Anonymous != nil {
		s.Anonymous = *r.Anonymous
	}
	if r.QuestionIDs != nil {
		s.QuestionIDs = r.QuestionIDs
	}
	return s
}
