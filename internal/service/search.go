package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// DefaultDebounceWindow is the quiescence period before a search is sent.
const DefaultDebounceWindow = 500 * time.Millisecond

// SearchAPI is the remote catalog.
type SearchAPI interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	SearchProducts(ctx context.Context, text string) ([]domain.Product, error)
}

// CatalogSink receives a replacement catalog. *catalog.Cache implements it.
type CatalogSink interface {
	Replace(ctx context.Context, products []domain.Product)
}

// DebounceState is the debouncer's state.
type DebounceState int

const (
	Idle DebounceState = iota
	Pending
)

func (s DebounceState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	default:
		return fmt.Sprintf("DebounceState(%d)", int(s))
	}
}

// SearchResult is the outcome of one search. Err matches apperrors.ErrNotFound
// when nothing matched, and is a NetworkFailure when the API could not be read.
type SearchResult struct {
	Text     string
	Products []domain.Product
	Err      error
}

// SearchDebouncer collapses rapid search input into one delayed query. Only
// the last OnInput within the window reaches the API.
//
// In-flight requests are not cancelled: a slow response for an older query
// can still land after a newer one and replace the catalog.
type SearchDebouncer struct {
	api     SearchAPI
	catalog CatalogSink
	window  time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	timer    *time.Timer
	gen      uint64
	text     string
	deadline time.Time
	onResult func(SearchResult)
}

// NewSearchDebouncer creates an idle debouncer. A non-positive window falls
// back to DefaultDebounceWindow.
func NewSearchDebouncer(api SearchAPI, catalog CatalogSink, window time.Duration, logger *slog.Logger) *SearchDebouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &SearchDebouncer{
		api:     api,
		catalog: catalog,
		window:  window,
		logger:  logger,
	}
}

// OnResult registers fn to receive the outcome of every debounced search.
// fn runs on the timer goroutine.
func (d *SearchDebouncer) OnResult(fn func(SearchResult)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onResult = fn
}

// OnInput cancels any pending search and schedules one for text after the
// window. ctx supplies request-scoped values; its cancellation does not
// cancel the scheduled search, use Stop for that.
func (d *SearchDebouncer) OnInput(ctx context.Context, text string) {
	base := context.WithoutCancel(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.text = text
	d.deadline = time.Now().Add(d.window)
	d.timer = time.AfterFunc(d.window, func() { d.fire(base, gen, text) })
}

// State reports whether a search is scheduled.
func (d *SearchDebouncer) State() DebounceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		return Pending
	}
	return Idle
}

// Pending returns the scheduled text and its deadline. ok is false when idle.
func (d *SearchDebouncer) Pending() (text string, deadline time.Time, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return "", time.Time{}, false
	}
	return d.text, d.deadline, true
}

// Stop cancels a pending search. It does not affect a search already sent.
func (d *SearchDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *SearchDebouncer) fire(ctx context.Context, gen uint64, text string) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	deliver := d.onResult
	d.mu.Unlock()

	result := d.Search(ctx, text)
	if deliver != nil {
		deliver(result)
	}
}

// Search runs a query immediately. Blank text reloads the full catalog.
// On success the catalog is replaced; on failure it keeps its last value.
func (d *SearchDebouncer) Search(ctx context.Context, text string) SearchResult {
	query := strings.TrimSpace(text)
	result := SearchResult{Text: text}

	var (
		products []domain.Product
		err      error
	)
	if query == "" {
		products, err = d.api.FetchProducts(ctx)
	} else {
		products, err = d.api.SearchProducts(ctx, query)
	}
	if err != nil {
		d.logger.WarnContext(ctx, "product search failed",
			slog.String("query", query),
			slog.String("kind", string(apperrors.KindOf(err))),
		)
		result.Err = err
		return result
	}

	d.catalog.Replace(ctx, products)
	result.Products = products

	if query != "" && len(products) == 0 {
		result.Err = apperrors.NotFound("product", query)
	}

	d.logger.DebugContext(ctx, "product search completed",
		slog.String("query", query),
		slog.Int("results", len(products)),
	)
	return result
}
