package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeBackend serves /api/categories from memory. Failures and gates can be
// armed per "METHOD /path" route.
type fakeBackend struct {
	t *testing.T

	mu         sync.Mutex
	categories []Category
	nextID     int
	hits       map[string]int
	fail       map[string]failure
	gates      map[string]*gate
}

type failure struct {
	status int
	body   any
	times  int // 0 means forever
}

// gate holds a route until released and reports when a request reached it.
type gate struct {
	arrived  chan struct{}
	release  chan struct{}
	once     sync.Once
	openOnce sync.Once
}

func newFakeBackend(t *testing.T, cats ...Category) *fakeBackend {
	return &fakeBackend{
		t:          t,
		categories: slices.Clone(cats),
		nextID:     100,
		hits:       make(map[string]int),
		fail:       make(map[string]failure),
		gates:      make(map[string]*gate),
	}
}

func (b *fakeBackend) failRoute(route string, status int, body any, times int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[route] = failure{status: status, body: body, times: times}
}

func (b *fakeBackend) gateRoute(route string) *gate {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := &gate{arrived: make(chan struct{}), release: make(chan struct{})}
	b.gates[route] = g
	b.t.Cleanup(g.open)
	return g
}

func (g *gate) wait(t *testing.T) {
	t.Helper()
	select {
	case <-g.arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the backend")
	}
}

func (g *gate) open() { g.openOnce.Do(func() { close(g.release) }) }

func (b *fakeBackend) count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func (b *fakeBackend) route(r *http.Request) string {
	p := r.URL.Path
	if strings.HasPrefix(p, "/api/categories/") && p != "/api/categories/reorder" {
		rest := strings.TrimPrefix(p, "/api/categories/")
		if strings.HasSuffix(rest, "/toggle-status") {
			return r.Method + " /api/categories/{id}/toggle-status"
		}
		return r.Method + " /api/categories/{id}"
	}
	return r.Method + " " + p
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := b.route(r)

	b.mu.Lock()
	b.hits[route]++
	g := b.gates[route]
	f, failing := b.fail[route]
	if failing && f.times > 0 {
		f.times--
		if f.times == 0 {
			delete(b.fail, route)
		} else {
			b.fail[route] = f
		}
	}
	b.mu.Unlock()

	if g != nil {
		g.once.Do(func() { close(g.arrived) })
		<-g.release
	}
	if failing {
		writeJSON(w, f.status, f.body)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	switch route {
	case "GET /api/categories":
		filter := CategoryFilter(r.URL.Query().Get("status"))
		out := []Category{}
		for _, c := range b.categories {
			if filter.Matches(c) {
				out = append(out, c)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": out, "total": len(out)})
	case "POST /api/categories":
		var req CreateCategoryRequest
		require.NoError(b.t, json.NewDecoder(r.Body).Decode(&req))
		b.nextID++
		c := Category{ID: strconv.Itoa(b.nextID), Name: req.Name, Description: req.Description, DisplayOrder: len(b.categories) + 1, IsActive: req.IsActive == nil || *req.IsActive}
		b.categories = append(b.categories, c)
		writeJSON(w, http.StatusCreated, c)
	case "DELETE /api/categories/{id}":
		i := b.index(id)
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Category not found"})
			return
		}
		b.categories = slices.Delete(b.categories, i, i+1)
		w.WriteHeader(http.StatusNoContent)
	case "PUT /api/categories/reorder":
		var req struct {
			CategoryIDs []string `json:"categoryIds"`
		}
		require.NoError(b.t, json.NewDecoder(r.Body).Decode(&req))
		out := make([]Category, 0, len(b.categories))
		for pos, cid := range req.CategoryIDs {
			c := b.categories[b.index(cid)]
			c.DisplayOrder = pos + 1
			out = append(out, c)
		}
		b.categories = out
		w.WriteHeader(http.StatusNoContent)
	case "PATCH /api/categories/{id}/toggle-status":
		id = strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/categories/"), "/toggle-status")
		i := b.index(id)
		b.categories[i].IsActive = !b.categories[i].IsActive
		writeJSON(w, http.StatusOK, b.categories[i])
	case "GET /api/questions":
		writeJSON(w, http.StatusOK, map[string]any{"questions": []Question{}, "total": 0})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no route " + route})
	}
}

func (b *fakeBackend) index(id string) int {
	return slices.IndexFunc(b.categories, func(c Category) bool { return c.ID == id })
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// instantTimer fires immediately so retries do not sleep in tests.
type instantTimer struct{}

var firedChan = func() chan time.Time {
	ch := make(chan time.Time)
	close(ch)
	return ch
}()

func (instantTimer) Start(time.Duration) {}
func (instantTimer) Stop()               {}
func (instantTimer) C() <-chan time.Time { return firedChan }

func withInstantRetries() Option {
	return func(c *Client) error {
		c.retryTimer = instantTimer{}
		return nil
	}
}

func newTestClient(t *testing.T, h http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	c, err := New(srv.URL, append([]Option{withInstantRetries()}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
		srv.Close()
	})
	return c, srv
}
