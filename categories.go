package client

import (
	"context"
	"fmt"

	"github.com/d-nishikido/organization-survey-tool/client/internal/api"
	"github.com/d-nishikido/organization-survey-tool/client/internal/querycache"
	"github.com/d-nishikido/organization-survey-tool/client/internal/types"
)

// Collection names used for cache invalidation and mutation ordering.
const (
	CollectionCategories = "categories"
	CollectionQuestions  = "questions"
	CollectionSurveys    = "surveys"
)

// CategoryStore reads categories through the cache and edits them
// optimistically. The list is cached under the "all", "active" and
// "inactive" filters at once.
type CategoryStore struct {
	c    *Client
	coll *querycache.Collection[types.Category]
}

func newCategoryStore(c *Client, serial querycache.Serializer) *CategoryStore {
	s := &CategoryStore{c: c, coll: querycache.NewCollection[types.Category](CollectionCategories, serial)}
	for _, f := range []types.CategoryFilter{types.CategoriesAll, types.CategoriesActive, types.CategoriesInactive} {
		f := f
		s.coll.Register(string(f), func(ctx context.Context) ([]types.Category, error) {
			return withRetry(ctx, c, func(ctx context.Context) ([]types.Category, error) {
				return api.ListCategories(ctx, c, f)
			})
		}, querycache.Matching(f.Matches))
	}
	return s
}

// Categories returns the category store.
func (c *Client) Categories() *CategoryStore { return c.categories }

// List returns categories for filter; "" means all.
func (s *CategoryStore) List(ctx context.Context, filter CategoryFilter) ([]Category, error) {
	if filter == "" {
		filter = types.CategoriesAll
	}
	if !filter.Valid() {
		return nil, invalidField("status", fmt.Sprintf("unknown filter %q", filter))
	}
	return cachedRead(ctx, s.c, s.coll, string(filter))
}

// Get fetches one category from the server.
func (s *CategoryStore) Get(ctx context.Context, id string) (*Category, error) {
	out, err := withRetry(ctx, s.c, func(ctx context.Context) (*types.Category, error) {
		return api.GetCategory(ctx, s.c, id)
	})
	return out, normalize(err)
}

// Create shows the new category immediately under a temporary id and
// returns the server's copy once confirmed. New categories are active
// unless the request says otherwise.
func (s *CategoryStore) Create(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	if err := types.ValidateCreateCategory(req); err != nil {
		return nil, err
	}
	draft := types.Category{Name: req.Name, Description: req.Description, DisplayOrder: req.DisplayOrder, IsActive: true}
	if req.IsActive != nil {
		draft.IsActive = *req.IsActive
	}

	var created *types.Category
	m, _ := querycache.Create(draft, func(ctx context.Context) error {
		var err error
		created, err = withRetry(ctx, s.c, func(ctx context.Context) (*types.Category, error) {
			return api.CreateCategory(ctx, s.c, req)
		})
		return err
	})
	if err := mutate(ctx, s.c, s.coll, m); err != nil {
		return nil, err
	}
	return created, nil
}

// Update merges the set fields of req into the cached category.
func (s *CategoryStore) Update(ctx context.Context, id string, req UpdateCategoryRequest) (*Category, error) {
	if err := types.ValidateID("id", id); err != nil {
		return nil, err
	}
	if err := types.ValidateUpdateCategory(req); err != nil {
		return nil, err
	}
	var updated *types.Category
	m := querycache.Update(id, req.Apply, func(ctx context.Context) error {
		var err error
		updated, err = withRetry(ctx, s.c, func(ctx context.Context) (*types.Category, error) {
			return api.UpdateCategory(ctx, s.c, id, req)
		})
		return err
	})
	if err := mutate(ctx, s.c, s.coll, m); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the category. Questions are invalidated as well because the
// backend detaches them from the deleted category.
func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	if err := types.ValidateID("id", id); err != nil {
		return err
	}
	m := querycache.Delete[types.Category](id, func(ctx context.Context) error {
		return retryErr(ctx, s.c, func(ctx context.Context) error {
			return api.DeleteCategory(ctx, s.c, id)
		})
	})
	m.OnSettled = func(err error) {
		if err == nil {
			s.c.caches.Invalidate(CollectionQuestions)
		}
	}
	return mutate(ctx, s.c, s.coll, m)
}

// Reorder moves the listed categories to the front in the given order and
// renumbers DisplayOrder from 1.
func (s *CategoryStore) Reorder(ctx context.Context, ids []string) error {
	if err := types.ValidateReorder(ids); err != nil {
		return err
	}
	m := querycache.Reorder[types.Category](ids, func(ctx context.Context) error {
		return retryErr(ctx, s.c, func(ctx context.Context) error {
			return api.ReorderCategories(ctx, s.c, ids)
		})
	})
	return mutate(ctx, s.c, s.coll, m)
}

// ToggleStatus flips IsActive. The category drops out of the filtered view it
// no longer matches until the next refetch.
func (s *CategoryStore) ToggleStatus(ctx context.Context, id string) (*Category, error) {
	if err := types.ValidateID("id", id); err != nil {
		return nil, err
	}
	var toggled *types.Category
	flip := func(c types.Category) types.Category {
		c.IsActive = !c.IsActive
		return c
	}
	m := querycache.Toggle(id, flip, func(ctx context.Context) error {
		var err error
		toggled, err = withRetry(ctx, s.c, func(ctx context.Context) (*types.Category, error) {
			return api.ToggleCategoryStatus(ctx, s.c, id)
		})
		return err
	})
	if err := mutate(ctx, s.c, s.coll, m); err != nil {
		return nil, err
	}
	return toggled, nil
}

// Cached returns the local contents of filter without fetching.
func (s *CategoryStore) Cached(filter CategoryFilter) ([]Category, bool) {
	if filter == "" {
		filter = types.CategoriesAll
	}
	return s.coll.Peek(string(filter))
}

// retryErr runs an error-only op under the client's retry policy.
func retryErr(ctx context.Context, c *Client, op func(context.Context) error) error {
	_, err := withRetry(ctx, c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
