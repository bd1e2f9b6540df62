package roplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"net/http"
	"time"
)

const (
	detailCacheSize = 256
	detailCacheTTL  = 30 * time.Second
)

// TransportError is a failed call to the remote service: either the
// request itself failed or the response status was not 2xx.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client talks to the RoPlace item service.
type Client struct {
	base string
	http *http.Client

	details *lru.Cache

	Sugar *zap.SugaredLogger
}

type cachedDetail struct {
	item Item
	at   time.Time
}

func NewClient(base string, sugar *zap.SugaredLogger) *Client {
	cache, _ := lru.New(detailCacheSize)
	return &Client{
		base:    base,
		http:    &http.Client{},
		details: cache,
		Sugar:   sugar,
	}
}

// ListItems fetches the full limited-item catalog snapshot.
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := c.getJSON(ctx, "list items", c.base+"/items/limited", &items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].PriceHistory = normalizeHistory(items[i].PriceHistory)
	}
	return items, nil
}

// GetItemDetail fetches one item's full record. Recent results are served
// from a small cache to absorb bursty lookups.
func (c *Client) GetItemDetail(ctx context.Context, id int64) (*Item, error) {
	if v, ok := c.details.Get(id); ok {
		cached := v.(cachedDetail)
		if time.Since(cached.at) < detailCacheTTL {
			item := cached.item
			return &item, nil
		}
	}
	var item Item
	if err := c.getJSON(ctx, "get item detail", fmt.Sprintf("%s/items/%d", c.base, id), &item); err != nil {
		return nil, err
	}
	item.PriceHistory = normalizeHistory(item.PriceHistory)
	c.details.Add(id, cachedDetail{item: item, at: time.Now()})
	return &item, nil
}

// SubmitPurchase attempts to buy item id at or below maxPrice. Every
// failure collapses to false; the cause is only logged. One attempt, no
// retry.
func (c *Client) SubmitPurchase(ctx context.Context, id, maxPrice int64) bool {
	if err := c.postJSON(ctx, "submit purchase", c.base+"/purchase", purchaseRequest{
		ItemID:   id,
		MaxPrice: maxPrice,
	}, nil); err != nil {
		c.Sugar.Warnf("purchase item %d failed: %s", id, err)
		return false
	}
	return true
}

// RegisterAlert registers a price alert for item id. Unlike SubmitPurchase
// the error propagates.
func (c *Client) RegisterAlert(ctx context.Context, id, maxPrice int64) (*Alert, error) {
	var alert Alert
	if err := c.postJSON(ctx, "register alert", c.base+"/alerts", purchaseRequest{
		ItemID:   id,
		MaxPrice: maxPrice,
	}, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

type purchaseRequest struct {
	ItemID   int64 `json:"itemId"`
	MaxPrice int64 `json:"maxPrice"`
}

func (c *Client) getJSON(ctx context.Context, op, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	return c.do(op, req, out)
}

func (c *Client) postJSON(ctx context.Context, op, url string, body, out interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req, out)
}

func (c *Client) do(op string, req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Op: op, Status: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err = decoder.Decode(out); err != nil {
		return &TransportError{Op: op, Err: err}
	}
	return nil
}
