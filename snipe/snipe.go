// Package snipe drives one purchase attempt from user intent to outcome.
package snipe

import (
	"context"
	"errors"
	"github.com/shopspring/decimal"
	"github.com/xyths/roplace-sniper/catalog"
	"github.com/xyths/roplace-sniper/roplace"
	"go.uber.org/zap"
	"sync"
)

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrInFlight    = errors.New("a snipe is already submitting")
	ErrBadSettings = errors.New("max price must be positive")
)

// overpayFactor: warn when max price exceeds 1.2x the average price.
var overpayFactor = decimal.NewFromFloat(1.2)

// Settings for one snipe attempt. Discarded once the dialog closes.
type Settings struct {
	MaxPrice   int64
	AutoSnipe  bool
	AlertPrice int64
}

// DefaultSettings seeds the dialog from the item's current price.
func DefaultSettings(item roplace.Item) Settings {
	return Settings{
		MaxPrice:   item.Price,
		AutoSnipe:  true,
		AlertPrice: item.Price,
	}
}

// Service is the slice of the remote client the workflow needs.
type Service interface {
	ListItems(ctx context.Context) ([]roplace.Item, error)
	SubmitPurchase(ctx context.Context, id, maxPrice int64) bool
	RegisterAlert(ctx context.Context, id, maxPrice int64) (*roplace.Alert, error)
}

// Runner is the purchase workflow for one open dialog. Only one
// submission may be in flight at a time.
type Runner struct {
	mu    sync.Mutex
	state State

	svc   Service
	store *catalog.Store

	Sugar *zap.SugaredLogger
}

func NewRunner(svc Service, store *catalog.Store, sugar *zap.SugaredLogger) *Runner {
	return &Runner{svc: svc, store: store, Sugar: sugar}
}

func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Reset returns a terminal state to idle, as when the dialog closes. An
// in-flight submission is not cancelled; its refresh still lands.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateSucceeded || r.state == StateFailed {
		r.state = StateIdle
	}
}

// Start runs one snipe attempt. On a successful purchase the catalog is
// refreshed wholesale; on failure the store is untouched and the caller
// keeps the dialog open. The returned bool is the purchase outcome.
func (r *Runner) Start(ctx context.Context, item roplace.Item, settings Settings) (bool, error) {
	r.mu.Lock()
	if r.state == StateSubmitting {
		r.mu.Unlock()
		return false, ErrInFlight
	}
	if settings.MaxPrice <= 0 {
		r.mu.Unlock()
		return false, ErrBadSettings
	}
	r.state = StateSubmitting
	r.mu.Unlock()

	ok := r.svc.SubmitPurchase(ctx, item.ID, settings.MaxPrice)
	if !ok {
		r.setState(StateFailed)
		r.Sugar.Warnf("snipe failed: item %d max %d", item.ID, settings.MaxPrice)
		return false, nil
	}

	r.Sugar.Infof("snipe succeeded: item %d max %d", item.ID, settings.MaxPrice)
	items, err := r.svc.ListItems(ctx)
	if err != nil {
		// purchase went through, refresh is best effort
		r.Sugar.Errorf("post-snipe refresh error: %s", err)
	} else {
		r.store.Load(items)
	}
	r.setState(StateSucceeded)
	return true, nil
}

// SetAlertOnly registers a price alert instead of purchasing. The
// workflow completes either way; the error is for logging only.
func (r *Runner) SetAlertOnly(ctx context.Context, item roplace.Item, settings Settings) (*roplace.Alert, error) {
	alert, err := r.svc.RegisterAlert(ctx, item.ID, settings.AlertPrice)
	if err != nil {
		r.Sugar.Errorf("register alert for item %d error: %s", item.ID, err)
		return nil, err
	}
	r.Sugar.Infof("alert %d registered: item %d max %d", alert.ID, item.ID, settings.AlertPrice)
	return alert, nil
}

// Overpaying reports whether the max price is significantly above the
// item's average price. Advisory only, never blocks submission.
func Overpaying(item roplace.Item, settings Settings) bool {
	if item.AveragePrice <= 0 {
		return false
	}
	max := decimal.NewFromInt(settings.MaxPrice)
	threshold := decimal.NewFromInt(item.AveragePrice).Mul(overpayFactor)
	return max.GreaterThan(threshold)
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}
