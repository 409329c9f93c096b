// Package preview drives the render-service round trip: a debounced,
// last-write-wins scheduler that collapses bursts of document edits into at
// most one in-flight render request.
package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"pbc/config"
	"pbc/document"
	"pbc/schema"
	"pbc/styles"
)

// Request is the renderer's input payload. CustomNavItems keeps the
// document's tri-state on the wire: null derives navigation from the page
// tree, an empty list renders none.
type Request struct {
	Blocks            []schema.Block `json:"blocks"`
	Theme             styles.Theme   `json:"theme"`
	CustomNavItems    []string       `json:"custom_nav_items"`
	Title             string         `json:"title"`
	Slug              string         `json:"slug"`
	Body              string         `json:"body"`
	ShowNavigationBar bool           `json:"show_navigation_bar"`
	RenderBodyOnly    bool           `json:"render_body_only"`
	CustomCSS         string         `json:"custom_css"`
	CustomJS          string         `json:"custom_js"`
}

// Result is the renderer's response.
type Result struct {
	HTML        string `json:"html"`
	ContentHTML string `json:"content_html"`
	ThemeCSS    string `json:"theme_css"`
	CustomCSS   string `json:"custom_css"`
	CustomJS    string `json:"custom_js"`
}

// Sink receives preview outcomes. Only the newest render ever arrives;
// superseded requests are discarded without a call.
type Sink interface {
	PreviewReady(res Result)
	PreviewFailed(err error)
}

// BuildRequest maps a document onto the renderer payload.
func BuildRequest(doc *document.PageDocument) Request {
	blocks := doc.Blocks
	if blocks == nil {
		blocks = []schema.Block{}
	}
	return Request{
		Blocks:            blocks,
		Theme:             doc.Theme,
		CustomNavItems:    doc.CustomNavItems,
		Title:             doc.Title,
		Slug:              doc.Slug,
		Body:              doc.Body,
		ShowNavigationBar: doc.ShowNavigationBar,
		RenderBodyOnly:    doc.RenderBodyOnly,
		CustomCSS:         doc.CustomCSS,
		CustomJS:          doc.CustomJS,
	}
}

// ErrNothingPending is returned by Flush when no document is scheduled.
var ErrNothingPending = errors.New("no pending preview")

// Scheduler debounces render requests. Schedule records the latest document
// and re-arms the timer; when it fires, any in-flight request is canceled
// and exactly one request carrying the last document goes out.
type Scheduler struct {
	endpoint string
	bodyOnly bool
	debounce time.Duration
	timeout  time.Duration
	client   *http.Client
	sink     Sink
	log      *zap.Logger

	mu        sync.Mutex
	timer     *time.Timer
	pending   *document.PageDocument
	cancel    context.CancelFunc
	seq       int
	suspended bool
	closed    bool
	wg        sync.WaitGroup
}

// NewScheduler builds a scheduler from the preview configuration. A nil
// client falls back to a plain one; the per-request timeout always comes
// from the configuration.
func NewScheduler(cfg config.PreviewConfig, client *http.Client, sink Sink, log *zap.Logger) *Scheduler {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		endpoint: cfg.Endpoint,
		bodyOnly: cfg.RenderBodyOnly,
		debounce: time.Duration(cfg.DebounceMS) * time.Millisecond,
		timeout:  time.Duration(cfg.TimeoutSec) * time.Second,
		client:   client,
		sink:     sink,
		log:      log,
	}
}

// Schedule records the document as the pending preview and arms (or
// re-arms) the debounce timer. Safe to call from any goroutine.
func (s *Scheduler) Schedule(doc *document.PageDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = doc.Clone()
	if s.suspended {
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.fire)
		return
	}
	s.timer.Reset(s.debounce)
}

// Suspend pauses the debounce: Schedule keeps recording the latest document
// but no render fires until Resume. Inline editing writes straight into the
// live surface, so refreshing underneath it would discard edits in progress.
func (s *Scheduler) Suspend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.suspended {
		return
	}
	s.suspended = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Resume lifts a suspension. A document scheduled while suspended renders
// immediately, bypassing the debounce, so the surface resynchronizes in one
// step.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	if s.closed || !s.suspended {
		s.mu.Unlock()
		return
	}
	s.suspended = false
	refresh := s.pending != nil
	s.mu.Unlock()
	if refresh {
		s.fire()
	}
}

// Flush renders the pending document immediately, bypassing the debounce.
// The result is returned and also delivered to the sink; it supersedes any
// in-flight request.
func (s *Scheduler) Flush(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Result{}, ErrNothingPending
	}
	doc := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if doc == nil {
		s.mu.Unlock()
		return Result{}, ErrNothingPending
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	res, err := s.render(ctx, doc)
	s.deliver(seq, res, err)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// Close stops the timer, cancels in-flight work and waits for it to drain.
// The scheduler accepts no work afterwards.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	s.mu.Unlock()
	s.wg.Wait()
}

// fire runs when the debounce window elapses, or on Resume.
func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.suspended {
		// A stopped timer can still race Suspend; the document stays
		// pending for Resume.
		s.mu.Unlock()
		return
	}
	doc := s.pending
	s.pending = nil
	s.timer = nil
	if doc == nil || s.closed {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.seq++
	seq := s.seq
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		res, err := s.render(ctx, doc)
		s.deliver(seq, res, err)
	}()
}

// deliver hands the outcome to the sink unless a newer request superseded
// this one. Cancellation is silent.
func (s *Scheduler) deliver(seq int, res Result, err error) {
	s.mu.Lock()
	newest := seq == s.seq && !s.closed
	if newest && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	if !newest {
		return
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.log.Warn("preview render failed", zap.Error(err))
		if s.sink != nil {
			s.sink.PreviewFailed(err)
		}
		return
	}
	if s.sink != nil {
		s.sink.PreviewReady(res)
	}
}

func (s *Scheduler) render(ctx context.Context, doc *document.PageDocument) (Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	payload := BuildRequest(doc)
	payload.RenderBodyOnly = payload.RenderBodyOnly || s.bodyOnly
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("unable to encode preview request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("unable to build preview request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("preview request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Result{}, fmt.Errorf("preview endpoint returned %s", resp.Status)
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("unable to decode preview response: %w", err)
	}
	return res, nil
}
