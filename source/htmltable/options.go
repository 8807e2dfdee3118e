package htmltable

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultURL is the FBref Big 5 leagues player table for 2023-24.
	DefaultURL = "https://fbref.com/en/comps/Big5/2023-2024/players/"
	// DefaultMaxRows caps the number of scraped records.
	DefaultMaxRows = 1000
	// DefaultMaxRetries bounds fetch retries.
	DefaultMaxRetries = 4
	// DefaultRateLimit is the default number of requests per second.
	DefaultRateLimit = 1.0

	maxBodySize = 64 << 20
)

// Columns selects td cells by zero-based index.
type Columns struct {
	Name    int
	Metrics []int
}

// PlayerColumns is the FBref player table layout.
var PlayerColumns = Columns{Name: 1, Metrics: []int{4, 6, 8}}

// MissingMetricPolicy decides how an empty or non-numeric metric cell is handled.
type MissingMetricPolicy int

const (
	// MissingAsZero records the metric as 0.
	MissingAsZero MissingMetricPolicy = iota
	// MissingFail aborts the scrape with a *MissingMetricError.
	MissingFail
)

func (p MissingMetricPolicy) String() string {
	switch p {
	case MissingAsZero:
		return "zero"
	case MissingFail:
		return "fail"
	default:
		return fmt.Sprintf("MissingMetricPolicy(%d)", int(p))
	}
}

// ParseMissingMetricPolicy parses "zero" or "fail". The empty string is "zero".
func ParseMissingMetricPolicy(s string) (MissingMetricPolicy, error) {
	switch s {
	case "", "zero":
		return MissingAsZero, nil
	case "fail":
		return MissingFail, nil
	default:
		return 0, fmt.Errorf("unknown missing metric policy %q", s)
	}
}

type options struct {
	client          *http.Client
	limiter         *rate.Limiter
	columns         Columns
	maxRows         int
	policy          MissingMetricPolicy
	maxRetries      uint64
	initialInterval time.Duration
	userAgent       string
	logger          *slog.Logger
}

// Option configures parsing and fetching.
type Option func(*options)

func applyOptions(opts []Option) options {
	o := options{
		client:          &http.Client{Timeout: 30 * time.Second},
		limiter:         rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		columns:         PlayerColumns,
		maxRows:         DefaultMaxRows,
		policy:          MissingAsZero,
		maxRetries:      DefaultMaxRetries,
		initialInterval: 500 * time.Millisecond,
		userAgent:       "statclust/1.0",
		logger:          slog.Default(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

// WithRateLimit limits requests to rps per second with the given burst.
// rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		if rps <= 0 {
			o.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithColumns sets the cell layout.
func WithColumns(c Columns) Option {
	return func(o *options) {
		o.columns = c
	}
}

// WithMaxRows caps the number of records. n <= 0 means unlimited.
func WithMaxRows(n int) Option {
	return func(o *options) {
		o.maxRows = n
	}
}

// WithMissingMetricPolicy sets how unparseable metric cells are handled.
func WithMissingMetricPolicy(p MissingMetricPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithRetry sets the retry budget and the first backoff interval.
func WithRetry(maxRetries uint64, initialInterval time.Duration) Option {
	return func(o *options) {
		o.maxRetries = maxRetries
		if initialInterval > 0 {
			o.initialInterval = initialInterval
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithLogger sets the logger used for retry notices.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
