package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOrder selects the direction of the title sort.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// ErrEmptyDraft rejects a submit with a blank title, author or ISBN.
var ErrEmptyDraft = errors.New("title, author and isbn are required")

const (
	noticeAdded   = "book added successfully"
	noticeUpdated = "book updated successfully"
	noticeTTL     = 3 * time.Second
)

// ViewModel holds the working copy of the remote collection plus the
// in-progress form. The cache is replaced wholesale on every refresh and
// never patched locally, so it can never drift more than one round trip
// from the server.
//
// The mutex exists for the notice timer, which fires on another
// goroutine; everything else runs on the single shell thread.
type ViewModel struct {
	client *Client

	mu        sync.Mutex
	books     []Book
	draft     FormDraft
	message   string
	loading   bool
	listShown bool
	search    string
	order     SortOrder
	msgTimer  *time.Timer
	msgTTL    time.Duration
	coll      *collate.Collator
}

// NewViewModel builds a view model over the given repository client.
func NewViewModel(client *Client) *ViewModel {
	return &ViewModel{
		client: client,
		msgTTL: noticeTTL,
		coll:   collate.New(language.English, collate.IgnoreCase),
	}
}

// Refresh replaces the cached collection with the server's. The loading
// flag is advisory: set before the request, cleared at settlement.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	vm.mu.Lock()
	vm.loading = true
	vm.mu.Unlock()

	books, err := vm.client.List(ctx)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.loading = false
	if err != nil {
		return err
	}
	vm.books = books
	return nil
}

// Books returns a copy of the cached collection, in server order.
func (vm *ViewModel) Books() []Book {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]Book(nil), vm.books...)
}

// Draft returns the current form draft.
func (vm *ViewModel) Draft() FormDraft {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.draft
}

// Message returns the transient status notice, if any.
func (vm *ViewModel) Message() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.message
}

// Loading reports whether a list request is in flight.
func (vm *ViewModel) Loading() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loading
}

// SetFields replaces the draft's field values, keeping the editing
// target.
func (vm *ViewModel) SetFields(title, author, isbn string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.draft.Title, vm.draft.Author, vm.draft.ISBN = title, author, isbn
}

// BeginEdit loads the draft from book and marks it as an update target.
func (vm *ViewModel) BeginEdit(book Book) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.draft = FormDraft{
		Title:     book.Title,
		Author:    book.Author,
		ISBN:      book.ISBN,
		EditingID: book.ID,
	}
}

// CancelEdit throws the draft away.
func (vm *ViewModel) CancelEdit() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.draft = FormDraft{}
}

// Submit dispatches the draft: create when there is no editing target,
// update otherwise. Settlement is always followed by a full refresh,
// whatever the mutation's outcome; that refresh is the system's
// consistency mechanism. On failure the draft stays intact so the user
// can retry.
func (vm *ViewModel) Submit(ctx context.Context) error {
	vm.mu.Lock()
	draft := vm.draft
	vm.mu.Unlock()

	if strings.TrimSpace(draft.Title) == "" ||
		strings.TrimSpace(draft.Author) == "" ||
		strings.TrimSpace(draft.ISBN) == "" {
		return ErrEmptyDraft
	}

	var mutErr error
	notice := noticeAdded
	if draft.EditingID == 0 {
		_, mutErr = vm.client.Create(ctx, draft)
	} else {
		notice = noticeUpdated
		mutErr = vm.client.Update(ctx, draft.EditingID, draft)
	}

	refreshErr := vm.Refresh(ctx)

	if mutErr != nil {
		return mutErr
	}

	vm.mu.Lock()
	vm.draft = FormDraft{}
	vm.setMessageLocked(notice)
	vm.mu.Unlock()
	return refreshErr
}

// Delete removes id from the collection, then refreshes. Deleting an id
// the server already dropped still counts as success.
func (vm *ViewModel) Delete(ctx context.Context, id int64) error {
	err := vm.client.Delete(ctx, id)
	refreshErr := vm.Refresh(ctx)
	if err != nil {
		return err
	}
	return refreshErr
}

// View derives the display list from the cache, search term and sort
// order: a case-insensitive substring match on title or author, then a
// locale-aware title sort. It works on a copy and computes the same
// output for the same inputs on every call.
func (vm *ViewModel) View() []Book {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	term := strings.ToLower(vm.search)
	filtered := make([]Book, 0, len(vm.books))
	for _, b := range vm.books {
		if term == "" ||
			strings.Contains(strings.ToLower(b.Title), term) ||
			strings.Contains(strings.ToLower(b.Author), term) {
			filtered = append(filtered, b)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		cmp := vm.coll.CompareString(filtered[i].Title, filtered[j].Title)
		if vm.order == Descending {
			return cmp > 0
		}
		return cmp < 0
	})
	return filtered
}

// Search returns the current search term.
func (vm *ViewModel) Search() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.search
}

// SetSearch replaces the search term.
func (vm *ViewModel) SetSearch(term string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.search = term
}

// Sort returns the current sort order.
func (vm *ViewModel) Sort() SortOrder {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.order
}

// SetSort replaces the sort order.
func (vm *ViewModel) SetSort(order SortOrder) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.order = order
}

// ListVisible reports whether the list view is open.
func (vm *ViewModel) ListVisible() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.listShown
}

// ShowList opens the list view. The caller refreshes afterwards.
func (vm *ViewModel) ShowList() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.listShown = true
}

// HideList closes the list view.
func (vm *ViewModel) HideList() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.listShown = false
}

// Reset discards the cached collection, the draft and the list view. The
// session controller calls it on logout.
func (vm *ViewModel) Reset() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.books = nil
	vm.draft = FormDraft{}
	vm.listShown = false
	vm.search = ""
	vm.order = Ascending
	vm.clearMessageLocked()
}

// Close stops the pending notice timer so nothing writes state after
// teardown.
func (vm *ViewModel) Close() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.msgTimer != nil {
		vm.msgTimer.Stop()
		vm.msgTimer = nil
	}
}

// setMessageLocked publishes a transient notice that clears itself after
// the TTL. Callers hold vm.mu.
func (vm *ViewModel) setMessageLocked(text string) {
	if vm.msgTimer != nil {
		vm.msgTimer.Stop()
	}
	vm.message = text
	vm.msgTimer = time.AfterFunc(vm.msgTTL, func() {
		vm.mu.Lock()
		vm.message = ""
		vm.mu.Unlock()
	})
}

func (vm *ViewModel) clearMessageLocked() {
	if vm.msgTimer != nil {
		vm.msgTimer.Stop()
		vm.msgTimer = nil
	}
	vm.message = ""
}
