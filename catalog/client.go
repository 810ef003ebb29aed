package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotFound reports an update against an id the server no longer has.
var ErrNotFound = errors.New("book not found")

// Client talks to the remote books collection resource.
type Client struct {
	// BaseURL addresses the collection, e.g.
	// http://localhost:8080/api/books.
	BaseURL string

	httpClient *http.Client
}

// NewClient creates a client for the collection at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// bookPayload is the wire body of create and update requests. The id is
// never sent; the server owns it.
type bookPayload struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

// List fetches the full collection. Order is whatever the server
// returns.
func (c *Client) List(ctx context.Context) ([]Book, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch books: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("list", resp)
	}
	var books []Book
	if err := json.NewDecoder(resp.Body).Decode(&books); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	return books, nil
}

// Create POSTs the draft. The backend echoes the created record with its
// assigned id; an empty success body is tolerated and yields a zero
// Book, since every mutation is followed by a full refresh anyway.
func (c *Client) Create(ctx context.Context, draft FormDraft) (Book, error) {
	resp, err := c.send(ctx, http.MethodPost, c.BaseURL, draft)
	if err != nil {
		return Book{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Book{}, statusError("create", resp)
	}
	var created Book
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		if errors.Is(err, io.EOF) {
			return Book{}, nil
		}
		return Book{}, fmt.Errorf("decode created book: %w", err)
	}
	return created, nil
}

// Update PUTs the full replacement record to the item resource.
func (c *Client) Update(ctx context.Context, id int64, draft FormDraft) error {
	resp, err := c.send(ctx, http.MethodPut, c.itemURL(id), draft)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError("update", resp)
	}
	return nil
}

// Delete removes the item resource. A 404 counts as success: the record
// is gone either way and the follow-up refresh reconciles the cache.
func (c *Client) Delete(ctx context.Context, id int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.itemURL(id), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError("delete", resp)
	}
	return nil
}

func (c *Client) itemURL(id int64) string {
	return fmt.Sprintf("%s/%d", c.BaseURL, id)
}

func (c *Client) send(ctx context.Context, method, url string, draft FormDraft) (*http.Response, error) {
	body, err := json.Marshal(bookPayload{
		Title:  draft.Title,
		Author: draft.Author,
		ISBN:   draft.ISBN,
	})
	if err != nil {
		return nil, fmt.Errorf("encode book: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s book: %w", strings.ToLower(method), err)
	}
	return resp, nil
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s returned status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
}
