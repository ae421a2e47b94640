package scraper

// DefaultMaxConcurrency bounds the sub-requests of one load in flight at once.
const DefaultMaxConcurrency = 5

type options struct {
	maxConcurrency int
	recorder       Recorder
}

// Option configures an Orchestrator or PaginatedSearch.
type Option func(*options)

// WithMaxConcurrency limits concurrent sub-requests per load.
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConcurrency = n
		}
	}
}

// WithRecorder reports request outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		maxConcurrency: DefaultMaxConcurrency,
		recorder:       nopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
