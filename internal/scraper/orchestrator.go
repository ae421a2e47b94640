package scraper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// LoadRequest describes one entity load.
type LoadRequest struct {
	Handle   Handle
	Provider DetailProvider
	ID       string
	Fields   FieldSet
	Locale   Locale
}

// LoadReport is the outcome of an entity load. Errors holds one entry per
// failed sub-request kind.
type LoadReport struct {
	ID        uuid.UUID              `json:"id"`
	Provider  string                 `json:"provider"`
	Media     MediaType              `json:"media"`
	Kinds     []RequestKind          `json:"-"`
	Errors    map[RequestKind]*Error `json:"-"`
	Written   FieldSet               `json:"-"`
	Abandoned bool                   `json:"abandoned,omitempty"`
	Duration  time.Duration          `json:"duration"`
}

// Failed reports whether any sub-request failed.
func (r *LoadReport) Failed() bool {
	return len(r.Errors) > 0
}

// Err joins the per-kind errors in kind order, or returns nil.
func (r *LoadReport) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	kinds := make([]RequestKind, 0, len(r.Errors))
	for k := range r.Errors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	errs := make([]error, 0, len(kinds))
	for _, k := range kinds {
		errs = append(errs, fmt.Errorf("%s: %w", k, r.Errors[k]))
	}
	return errors.Join(errs...)
}

// Orchestrator fans an entity load out into concurrent sub-requests and
// merges their results into the entity one at a time.
type Orchestrator struct {
	transport Transport
	store     *Store
	opts      options
	logger    zerolog.Logger
}

func NewOrchestrator(t Transport, store *Store, logger zerolog.Logger, opts ...Option) *Orchestrator {
	return &Orchestrator{
		transport: t,
		store:     store,
		opts:      buildOptions(opts),
		logger:    logger.With().Str("component", "orchestrator").Logger(),
	}
}

type subResult struct {
	kind     RequestKind
	update   *Update
	err      *Error
	duration time.Duration
}

// Load runs every sub-request implied by req.Fields and blocks until the
// last one has been handled. The returned error covers setup problems only;
// sub-request failures are reported in LoadReport.Errors.
func (o *Orchestrator) Load(ctx context.Context, req LoadRequest) (*LoadReport, error) {
	if req.Provider == nil {
		return nil, errors.New("provider is required")
	}
	if req.ID == "" {
		return nil, ErrMissingID
	}

	var media MediaType
	if !o.store.View(req.Handle, func(e Entity) { media = e.MediaType() }) {
		return nil, ErrEntityGone
	}
	if !supportsMedia(req.Provider, media) {
		return nil, fmt.Errorf("%w: %s cannot load %s", ErrUnsupportedMedia, req.Provider.Name(), media)
	}

	routes := req.Provider.Routes(media)
	if err := ValidateRoutes(routes); err != nil {
		return nil, fmt.Errorf("%s: %w", req.Provider.Name(), err)
	}

	locale := req.Locale
	if locale.IsZero() {
		locale = DefaultLocale
	}
	fields := req.Fields.Intersect(Supported(routes))
	kinds := KindsFor(routes, fields)

	if !o.store.Update(req.Handle, func(e Entity) { e.Meta().Clear(fields) }) {
		return nil, ErrEntityGone
	}

	start := time.Now()
	report := &LoadReport{
		ID:       uuid.New(),
		Provider: req.Provider.Name(),
		Media:    media,
		Kinds:    kinds,
		Errors:   make(map[RequestKind]*Error),
	}
	log := o.logger.With().
		Str("load", report.ID.String()).
		Str("provider", report.Provider).
		Str("media", string(media)).
		Str("id", req.ID).
		Logger()

	tracker := NewLoadTracker(func() {
		report.Duration = time.Since(start)
		o.opts.recorder.ObserveLoad(report.Provider, media, len(report.Errors), report.Duration)
		log.Info().
			Dur("duration", report.Duration).
			Int("errors", len(report.Errors)).
			Bool("abandoned", report.Abandoned).
			Msg("Load finished")
	})
	tracker.Begin(kinds...)
	if len(kinds) == 0 {
		return report, nil
	}

	results := make(chan subResult, len(kinds))
	p := pool.New().WithMaxGoroutines(o.opts.maxConcurrency)
	for _, kind := range kinds {
		dr := DetailRequest{
			Kind:   kind,
			Media:  media,
			ID:     req.ID,
			Locale: locale,
			Fields: fields,
		}
		p.Go(func() {
			results <- o.fetch(ctx, req.Provider, dr, log)
		})
	}
	go func() {
		p.Wait()
		close(results)
	}()

	for res := range results {
		o.handle(req.Handle, routes, fields, res, report, log)
		tracker.Complete(res.kind)
	}

	return report, nil
}

// LoadAsync starts Load in the background and calls onFinished exactly once
// with its outcome.
func (o *Orchestrator) LoadAsync(ctx context.Context, req LoadRequest, onFinished func(*LoadReport, error)) {
	go func() {
		report, err := o.Load(ctx, req)
		if onFinished != nil {
			onFinished(report, err)
		}
	}()
}

// fetch performs one sub-request and parses its response. It never touches
// the entity.
func (o *Orchestrator) fetch(ctx context.Context, p DetailProvider, req DetailRequest, log zerolog.Logger) (res subResult) {
	res.kind = req.Kind
	start := time.Now()
	defer func() {
		res.duration = time.Since(start)
	}()

	u, err := p.RequestURL(req)
	if err != nil {
		res.err = &Error{Type: ErrorAPI, Message: "The request could not be built.", Technical: err.Error()}
		return res
	}

	log.Debug().Str("kind", req.Kind.String()).Msg("Dispatching sub-request")

	resp := o.transport.Get(ctx, u, JSONHeader())
	if res.err = Classify(resp, nil); res.err != nil {
		return res
	}

	update, perr := p.Parse(req, resp.Body)
	if perr != nil {
		res.err = Classify(resp, perr)
		return res
	}
	res.update = update
	return res
}

func (o *Orchestrator) handle(h Handle, routes []Route, fields FieldSet, res subResult, report *LoadReport, log zerolog.Logger) {
	o.opts.recorder.ObserveRequest(report.Provider, res.kind, errTypeOf(res.err), res.duration)

	if !o.store.Valid(h) {
		report.Abandoned = true
		log.Debug().Str("kind", res.kind.String()).Msg("Entity removed, discarding sub-request result")
		return
	}

	if res.err != nil {
		report.Errors[res.kind] = res.err
		log.Warn().
			Str("kind", res.kind.String()).
			Str("type", res.err.Type.String()).
			Str("technical", res.err.Technical).
			Msg(res.err.Message)
		return
	}

	allowed := fields.Intersect(OwnedFields(routes, res.kind))
	ok := o.store.Update(h, func(e Entity) {
		report.Written = report.Written.Union(e.Meta().Apply(res.update, allowed))
	})
	if !ok {
		report.Abandoned = true
		log.Debug().Str("kind", res.kind.String()).Msg("Entity removed, discarding sub-request result")
	}
}
