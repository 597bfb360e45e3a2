package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultCompanyName stands in for a missing or blank company name.
	DefaultCompanyName = "Not provided"
	// NotApplicable is what the model returns when a category has no content.
	NotApplicable = "NA"
	// ErrorSummary replaces the value of a category whose generation failed.
	ErrorSummary = "Error in generating summary"
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Observer is told about every failed category and, once per call, how
// long the whole summary took and how many of its categories failed.
type Observer interface {
	IncCategoryFailure(category string)
	ObserveSummary(duration time.Duration, failed, total int)
}

type Option func(*Service)

// WithConcurrency bounds how many category prompts run at once. One keeps
// the calls sequential.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

type Service struct {
	generator   Generator
	concurrency int
	timeout     time.Duration
	logger      *slog.Logger
	observer    Observer
}

func New(generator Generator, opts ...Option) *Service {
	s := &Service{
		generator:   generator,
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type Section struct {
	Category Category
	Summary  string
	// Err is a *GenerationError when the model call for this category failed.
	Err error
}

// Value is the string reported for the section in the summary record.
func (s Section) Value() string {
	if s.Err != nil {
		return ErrorSummary
	}
	return s.Summary
}

type Result struct {
	CompanyName string
	Sections    []Section
}

// Fields flattens the result into company_name plus one key per category.
func (r Result) Fields() map[string]string {
	fields := make(map[string]string, len(r.Sections)+1)
	fields["company_name"] = r.CompanyName
	for _, section := range r.Sections {
		fields[section.Category.Key] = section.Value()
	}
	return fields
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields())
}

// Failures returns the generation errors of the failed sections.
func (r Result) Failures() []*GenerationError {
	var out []*GenerationError
	for _, section := range r.Sections {
		var genErr *GenerationError
		if errors.As(section.Err, &genErr) {
			out = append(out, genErr)
		}
	}
	return out
}

// Summarize asks the generator for one summary per category and assembles
// them with the company name. A failed category never aborts the others.
func (s *Service) Summarize(ctx context.Context, transcript, companyName string) (Result, error) {
	if s.generator == nil {
		return Result{}, &SummarizationError{Err: errors.New("no generator configured")}
	}
	if strings.TrimSpace(companyName) == "" {
		companyName = DefaultCompanyName
	}

	started := time.Now()
	sections := make([]Section, len(categories))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, category := range categories {
		g.Go(func() error {
			sections[i] = s.summarizeCategory(ctx, category, transcript)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		s.observe(time.Since(started), len(sections), len(sections))
		return Result{}, &SummarizationError{Err: err}
	}
	result := Result{CompanyName: companyName, Sections: sections}
	s.observe(time.Since(started), len(result.Failures()), len(sections))
	return result, nil
}

func (s *Service) summarizeCategory(ctx context.Context, category Category, transcript string) (section Section) {
	section.Category = category
	defer func() {
		if rec := recover(); rec != nil {
			section = s.failed(ctx, category, fmt.Errorf("panic: %v", rec))
		}
	}()

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.generator.Generate(callCtx, buildPrompt(category, transcript))
	if err != nil {
		return s.failed(ctx, category, err)
	}
	section.Summary = strings.TrimSpace(text)
	return section
}

func (s *Service) observe(duration time.Duration, failed, total int) {
	if s.observer != nil {
		s.observer.ObserveSummary(duration, failed, total)
	}
}

func (s *Service) failed(ctx context.Context, category Category, err error) Section {
	s.logger.WarnContext(ctx, "category_summary_failed", "category", category.Key, "error", err)
	if s.observer != nil {
		s.observer.IncCategoryFailure(category.Key)
	}
	return Section{Category: category, Err: &GenerationError{Category: category.Key, Err: err}}
}
