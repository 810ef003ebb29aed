package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCollection is an in-memory stand-in for the remote books API with
// the real backend's behavior: POST echoes the created record with its
// assigned id, PUT replaces the three fields, DELETE answers 404 for
// unknown ids.
type fakeCollection struct {
	mu     sync.Mutex
	books  []Book
	nextID int64

	// failMutations makes POST and PUT answer 500, for testing the
	// refresh-after-failure path.
	failMutations bool
	// listGate, when set, blocks GET until the channel closes.
	listGate chan struct{}
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{nextID: 1}
}

// add seeds a book directly, bypassing the wire.
func (f *fakeCollection) add(title, author, isbn string) Book {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := Book{ID: f.nextID, Title: title, Author: author, ISBN: isbn}
	f.nextID++
	f.books = append(f.books, b)
	return b
}

func (f *fakeCollection) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/books", f.handleCollection)
	mux.HandleFunc("/api/books/", f.handleItem)
	return mux
}

func (f *fakeCollection) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		f.mu.Lock()
		gate := f.listGate
		f.mu.Unlock()
		if gate != nil {
			<-gate
		}
		f.mu.Lock()
		books := append([]Book{}, f.books...)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(books)
	case http.MethodPost:
		f.mu.Lock()
		fail := f.failMutations
		f.mu.Unlock()
		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		var payload Book
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		payload.ID = f.nextID
		f.nextID++
		f.books = append(f.books, payload)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (f *fakeCollection) handleItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/books/"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	idx := -1
	for i, b := range f.books {
		if b.ID == id {
			idx = i
			break
		}
	}

	switch r.Method {
	case http.MethodPut:
		if f.failMutations {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if idx == -1 {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		var payload Book
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.books[idx].Title = payload.Title
		f.books[idx].Author = payload.Author
		f.books[idx].ISBN = payload.ISBN
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(f.books[idx])
	case http.MethodDelete:
		if idx == -1 {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		f.books = append(f.books[:idx], f.books[idx+1:]...)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// newTestClient starts a fake collection server and returns a client
// pointed at it.
func newTestClient(t *testing.T) (*Client, *fakeCollection) {
	t.Helper()
	f := newFakeCollection()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/api/books"), f
}

func TestClientCreateAndList(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.Create(ctx, FormDraft{Title: "Dune", Author: "Herbert", ISBN: "111"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Dune", created.Title)

	books, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, created.ID, books[0].ID)
	assert.Equal(t, "Herbert", books[0].Author)
	assert.Equal(t, "111", books[0].ISBN)
}

func TestClientListEmpty(t *testing.T) {
	client, _ := newTestClient(t)

	books, err := client.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestClientUpdate(t *testing.T) {
	client, f := newTestClient(t)
	ctx := context.Background()
	seeded := f.add("Dune", "Herbert", "111")

	err := client.Update(ctx, seeded.ID, FormDraft{Title: "Dune Messiah", Author: "Frank Herbert", ISBN: "222"})
	require.NoError(t, err)

	books, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, seeded.ID, books[0].ID, "id must survive an update")
	assert.Equal(t, "Dune Messiah", books[0].Title)
	assert.Equal(t, "Frank Herbert", books[0].Author)
	assert.Equal(t, "222", books[0].ISBN)
}

func TestClientUpdateMissing(t *testing.T) {
	client, _ := newTestClient(t)

	err := client.Update(context.Background(), 42, FormDraft{Title: "x", Author: "y", ISBN: "z"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientDeleteIdempotent(t *testing.T) {
	client, f := newTestClient(t)
	ctx := context.Background()
	seeded := f.add("Dune", "Herbert", "111")

	require.NoError(t, client.Delete(ctx, seeded.ID))

	books, err := client.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	// Deleting an already-absent id is success from the caller's view.
	assert.NoError(t, client.Delete(ctx, seeded.ID))
}

func TestClientCreateEmptyBody(t *testing.T) {
	// Some backends acknowledge a create without echoing the record.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL)
	created, err := client.Create(context.Background(), FormDraft{Title: "Dune", Author: "Herbert", ISBN: "111"})
	require.NoError(t, err)
	assert.Zero(t, created.ID)
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL)
	ctx := context.Background()

	_, err := client.List(ctx)
	assert.ErrorContains(t, err, "500")

	_, err = client.Create(ctx, FormDraft{Title: "x", Author: "y", ISBN: "z"})
	assert.ErrorContains(t, err, "500")

	err = client.Update(ctx, 1, FormDraft{Title: "x", Author: "y", ISBN: "z"})
	assert.ErrorContains(t, err, "500")

	assert.ErrorContains(t, client.Delete(ctx, 1), "500")
}
