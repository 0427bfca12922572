package subtitle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"subweave/internal/logging"
)

const defaultTranslateWorkers = 8

// Client is the translation collaborator contract. Implementations must be
// safe for concurrent use; every call is independent given its own text and
// the fixed language pair.
type Client interface {
	// Translate returns the target-language rendering of text. An empty
	// result is a valid outcome, not an error.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	// Available reports whether the client can serve requests at all
	// (credentials present, endpoint configured). A non-nil error is a
	// systemic failure and no per-segment requests should be issued.
	Available() error
}

// Failure records one per-segment translation failure.
type Failure struct {
	Index int
	Err   error
}

func (f Failure) String() string {
	return fmt.Sprintf("segment %d: %v", f.Index, f.Err)
}

// Report summarizes one translation batch.
type Report struct {
	Requested int
	Failures  []Failure
}

// Clean reports whether every segment translated successfully.
func (r Report) Clean() bool {
	return len(r.Failures) == 0
}

// Translator issues one translation request per segment with bounded
// concurrency and assembles results in input order regardless of completion
// order.
type Translator struct {
	client  Client
	logger  *slog.Logger
	workers int
	timeout time.Duration
}

// TranslatorOption customizes a Translator.
type TranslatorOption func(*Translator)

// WithWorkers bounds the number of in-flight translation requests.
func WithWorkers(n int) TranslatorOption {
	return func(t *Translator) {
		if n > 0 {
			t.workers = n
		}
	}
}

// WithRequestTimeout sets the upper-bound wait per translation request.
// Exceeding it fails that segment only, never the batch.
func WithRequestTimeout(d time.Duration) TranslatorOption {
	return func(t *Translator) {
		t.timeout = d
	}
}

// WithLogger attaches a logger for per-segment diagnostics.
func WithLogger(logger *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTranslator constructs a Translator around the supplied client.
func NewTranslator(client Client, opts ...TranslatorOption) *Translator {
	t := &Translator{
		client:  client,
		logger:  logging.NewNop(),
		workers: defaultTranslateWorkers,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate maps N segments to N translated segments. The i-th output always
// corresponds to the i-th input: each request writes to a pre-sized,
// index-addressed buffer, so arrival order never reorders the sequence.
// A failed request keeps its slot with the original untranslated text and is
// recorded in the report. A systemic client failure aborts before any request
// is issued.
func (t *Translator) Translate(ctx context.Context, segments []Segment, sourceLang, targetLang string) ([]TranslatedSegment, Report, error) {
	report := Report{Requested: len(segments)}
	if t.client == nil {
		return nil, report, fmt.Errorf("translate: no client configured")
	}
	if err := t.client.Available(); err != nil {
		return nil, report, fmt.Errorf("translate: client unavailable: %w", err)
	}
	if len(segments) == 0 {
		return []TranslatedSegment{}, report, nil
	}

	// Timings are copied up front so only the text slot is written by the
	// completing request.
	results := make([]TranslatedSegment, len(segments))
	errs := make([]error, len(segments))
	for i, seg := range segments {
		results[i] = TranslatedSegment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}

	workers := t.workers
	if workers <= 0 || workers > len(segments) {
		workers = len(segments)
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				text, err := t.translateOne(ctx, segments[i].Text, sourceLang, targetLang)
				if err != nil {
					errs[i] = err
					continue
				}
				results[i].Text = text
			}
		}()
	}

	for i := range segments {
		indices <- i
	}
	close(indices)
	wg.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		report.Failures = append(report.Failures, Failure{Index: i, Err: err})
		t.logger.Warn("segment translation failed; keeping source text",
			logging.Int("segment", i),
			logging.Error(err),
		)
	}

	if err := ctx.Err(); err != nil {
		return results, report, fmt.Errorf("translate: %w", err)
	}
	return results, report, nil
}

func (t *Translator) translateOne(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	translated, err := t.client.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(translated), nil
}
