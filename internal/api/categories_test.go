package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
	"github.com/d-nishikido/organization-survey-tool/client/internal/types"
)

func TestListCategories_Filter(t *testing.T) {
	t.Parallel()
	f := &fakeRequester{resp: types.ListCategoriesResponse{Categories: []types.Category{{ID: "1", Name: "Workplace"}}, Total: 1}}

	got, err := ListCategories(context.Background(), f, types.CategoriesActive)
	if err != nil || len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("ListCategories unexpected: got=%+v err=%v", got, err)
	}
	c := f.last()
	if c.Method != http.MethodGet || c.Path != "/api/categories" || c.Query.Get("status") != "active" {
		t.Fatalf("unexpected call %+v", c)
	}

	if _, err := ListCategories(context.Background(), f, types.CategoriesAll); err != nil {
		t.Fatal(err)
	}
	if q := f.last().Query; q != nil {
		t.Fatalf("all filter should send no query, got %v", q)
	}
}

func TestCategoryMutations_Routes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := &fakeRequester{resp: types.Category{ID: "7", Name: "Growth"}}

	if c, err := CreateCategory(ctx, f, types.CreateCategoryRequest{Name: "Growth"}); err != nil || c.ID != "7" {
		t.Fatalf("CreateCategory: %+v %v", c, err)
	}
	if got := f.last(); got.Method != http.MethodPost || got.Path != "/api/categories" {
		t.Fatalf("create routed to %s %s", got.Method, got.Path)
	}

	name := "Career"
	if _, err := UpdateCategory(ctx, f, "7", types.UpdateCategoryRequest{Name: &name}); err != nil {
		t.Fatal(err)
	}
	if got := f.last(); got.Method != http.MethodPut || got.Path != "/api/categories/7" {
		t.Fatalf("update routed to %s %s", got.Method, got.Path)
	}

	if _, err := ToggleCategoryStatus(ctx, f, "7"); err != nil {
		t.Fatal(err)
	}
	if got := f.last(); got.Method != http.MethodPatch || got.Path != "/api/categories/7/toggle-status" {
		t.Fatalf("toggle routed to %s %s", got.Method, got.Path)
	}

	if err := ReorderCategories(ctx, f, []string{"3", "1", "2"}); err != nil {
		t.Fatal(err)
	}
	got := f.last()
	body, ok := got.Body.(types.ReorderCategoriesRequest)
	if got.Path != "/api/categories/reorder" || !ok || len(body.CategoryIDs) != 3 {
		t.Fatalf("reorder call %+v", got)
	}

	if err := DeleteCategory(ctx, f, "a/b"); err != nil {
		t.Fatal(err)
	}
	if got := f.last(); got.Method != http.MethodDelete || got.Path != "/api/categories/a%2Fb" {
		t.Fatalf("delete routed to %s %s", got.Method, got.Path)
	}
}

func TestCategories_ValidationBeforeIO(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := &fakeRequester{}

	if _, err := CreateCategory(ctx, f, types.CreateCategoryRequest{}); !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("want VALIDATION_ERROR, got %v", err)
	}
	if err := DeleteCategory(ctx, f, ""); !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("want VALIDATION_ERROR, got %v", err)
	}
	if err := ReorderCategories(ctx, f, nil); !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("want VALIDATION_ERROR, got %v", err)
	}
	if _, err := ToggleCategoryStatus(ctx, f, "tmp-1"); !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("want VALIDATION_ERROR for temp id, got %v", err)
	}
	if n := f.count(); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}

func TestCategories_PropagatesNormalizedError(t *testing.T) {
	t.Parallel()
	f := &fakeRequester{err: apierr.FromResponse(404, nil)}
	if _, err := GetCategory(context.Background(), f, "9"); !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("want NOT_FOUND, got %v", err)
	}
}

func TestCategories_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeRequester{}
	if _, err := ListCategories(ctx, f, ""); !apierr.IsCode(err, apierr.CodeTimeout) {
		t.Fatalf("want TIMEOUT for cancelled ctx, got %v", err)
	}
	if f.count() != 0 {
		t.Fatal("no request expected after cancellation")
	}
}
