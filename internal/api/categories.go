package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/d-nishikido/organization-survey-tool/client/internal/types"
)

// ListCategories returns categories matching filter. CategoriesAll (or "")
// sends no status parameter.
func ListCategories(ctx context.Context, r Requester, filter types.CategoryFilter) ([]types.Category, error) {
	var q url.Values
	if filter != "" && filter != types.CategoriesAll {
		q = url.Values{"status": {string(filter)}}
	}
	var lr types.ListCategoriesResponse
	if err := get(ctx, r, path("categories"), q, &lr); err != nil {
		return nil, err
	}
	return lr.Categories, nil
}

// GetCategory retrieves a category by ID.
func GetCategory(ctx context.Context, r Requester, id string) (*types.Category, error) {
	if err := types.ValidateID("id", id); err != nil {
		return nil, err
	}
	var c types.Category
	if err := get(ctx, r, path("categories", id), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory creates a category and returns it with its server ID.
func CreateCategory(ctx context.Context, r Requester, req types.CreateCategoryRequest) (*types.Category, error) {
	if err := types.ValidateCreateCategory(req); err != nil {
		return nil, err
	}
	var c types.Category
	if err := send(ctx, r, http.MethodPost, path("categories"), req, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCategory applies a partial update.
func UpdateCategory(ctx context.Context, r Requester, id string, req types.UpdateCategoryRequest) (*types.Category, error) {
	if err := types.ValidateID("id", id); err != nil {
		return nil, err
	}
	if err := types.ValidateUpdateCategory(req); err != nil {
		return nil, err
	}
	var c types.Category
	if err := send(ctx, r, http.MethodPut, path("categories", id), req, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCategory deletes a category. Questions in it are left uncategorized
// by the backend.
func DeleteCategory(ctx context.Context, r Requester, id string) error {
	if err := types.ValidateID("id", id); err != nil {
		return err
	}
	return send(ctx, r, http.MethodDelete, path("categories", id), nil, nil)
}

// ReorderCategories stores a new display order.
func ReorderCategories(ctx context.Context, r Requester, ids []string) error {
	if err := types.ValidateReorder(ids); err != nil {
		return err
	}
	return send(ctx, r, http.MethodPut, path("categories", "reorder"), types.ReorderCategoriesRequest{CategoryIDs: ids}, nil)
}

// ToggleCategoryStatus flips IsActive on the server and returns the result.
func ToggleCategoryStatus(ctx context.Context, r Requester, id string) (*types.Category, error) {
	if err := types.ValidateID("id", id); err != nil {
		return nil, err
	}
	var c types.Category
	if err := send(ctx, r, http.MethodPatch, path("categories", id, "toggle-status"), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
