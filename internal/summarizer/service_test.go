package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	// failing maps a category name to the error its prompt should return.
	failing map[string]error
	reply   func(prompt string) string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	for name, err := range f.failing {
		if strings.Contains(prompt, "focused on "+name+".") {
			return "", err
		}
	}
	if f.reply != nil {
		return f.reply(prompt), nil
	}
	return "  summary  \n", nil
}

type fakeObserver struct {
	mu        sync.Mutex
	failures  []string
	summaries [][2]int
}

func (f *fakeObserver) IncCategoryFailure(category string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, category)
}

func (f *fakeObserver) ObserveSummary(_ time.Duration, failed, total int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, [2]int{failed, total})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCategoriesKeys(t *testing.T) {
	want := []string{
		"financial_performance",
		"market_dynamics",
		"expansion_plans",
		"environmental_risks",
		"regulatory_or_policy_changes",
	}
	got := Categories()
	if len(got) != len(want) {
		t.Fatalf("unexpected category count: %d", len(got))
	}
	for i, c := range got {
		if c.Key != want[i] {
			t.Fatalf("category %d: got key %q want %q", i, c.Key, want[i])
		}
		if c.Guidance == "" {
			t.Fatalf("category %q has no guidance", c.Name)
		}
	}

	got[0].Key = "mutated"
	if Categories()[0].Key != want[0] {
		t.Fatal("Categories() must return a copy")
	}
}

func TestSummarizeAllCategoriesSucceed(t *testing.T) {
	gen := &fakeGenerator{}
	svc := New(gen, WithLogger(quietLogger()))

	res, err := svc.Summarize(context.Background(), "revenue grew 10%", "Acme")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	fields := res.Fields()
	if len(fields) != 6 {
		t.Fatalf("expected 6 fields, got %d: %+v", len(fields), fields)
	}
	if fields["company_name"] != "Acme" {
		t.Fatalf("unexpected company name: %q", fields["company_name"])
	}
	for _, c := range Categories() {
		if fields[c.Key] != "summary" {
			t.Fatalf("category %s: expected trimmed summary, got %q", c.Key, fields[c.Key])
		}
	}
	if len(gen.prompts) != 5 {
		t.Fatalf("expected 5 generator calls, got %d", len(gen.prompts))
	}
	if len(res.Failures()) != 0 {
		t.Fatalf("unexpected failures: %v", res.Failures())
	}
}

func TestSummarizeIsolatesCategoryFailure(t *testing.T) {
	gen := &fakeGenerator{failing: map[string]error{"Market Dynamics": errors.New("boom")}}
	obs := &fakeObserver{}
	svc := New(gen, WithLogger(quietLogger()), WithObserver(obs))

	res, err := svc.Summarize(context.Background(), "transcript", "Acme")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	fields := res.Fields()
	if len(fields) != 6 {
		t.Fatalf("expected 6 fields, got %d", len(fields))
	}
	if fields["market_dynamics"] != ErrorSummary {
		t.Fatalf("expected error sentinel, got %q", fields["market_dynamics"])
	}
	for _, key := range []string{"financial_performance", "expansion_plans", "environmental_risks", "regulatory_or_policy_changes"} {
		if fields[key] != "summary" {
			t.Fatalf("category %s: unexpected value %q", key, fields[key])
		}
	}

	failures := res.Failures()
	if len(failures) != 1 || failures[0].Category != "market_dynamics" {
		t.Fatalf("unexpected failures: %+v", failures)
	}
	if failures[0].Unwrap().Error() != "boom" {
		t.Fatalf("unexpected wrapped error: %v", failures[0].Unwrap())
	}
	if len(obs.failures) != 1 || obs.failures[0] != "market_dynamics" {
		t.Fatalf("unexpected observed failures: %v", obs.failures)
	}
	if len(obs.summaries) != 1 || obs.summaries[0] != [2]int{1, 5} {
		t.Fatalf("unexpected observed summaries: %v", obs.summaries)
	}
}

func TestSummarizeAllCategoriesFailStillReturnsRecord(t *testing.T) {
	failing := map[string]error{}
	for _, c := range Categories() {
		failing[c.Name] = errors.New("down")
	}
	svc := New(&fakeGenerator{failing: failing}, WithLogger(quietLogger()))

	res, err := svc.Summarize(context.Background(), "transcript", "Acme")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	fields := res.Fields()
	if len(fields) != 6 {
		t.Fatalf("expected 6 fields, got %d", len(fields))
	}
	for _, c := range Categories() {
		if fields[c.Key] != ErrorSummary {
			t.Fatalf("category %s: unexpected value %q", c.Key, fields[c.Key])
		}
	}
}

func TestSummarizeRecoversGeneratorPanic(t *testing.T) {
	gen := &fakeGenerator{reply: func(prompt string) string {
		if strings.Contains(prompt, "focused on Expansion Plans.") {
			panic("nil pointer")
		}
		return "ok"
	}}
	svc := New(gen, WithLogger(quietLogger()), WithConcurrency(5))

	res, err := svc.Summarize(context.Background(), "transcript", "Acme")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got := res.Fields()["expansion_plans"]; got != ErrorSummary {
		t.Fatalf("expected error sentinel, got %q", got)
	}
	if got := res.Fields()["financial_performance"]; got != "ok" {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestSummarizeDefaultsBlankCompanyName(t *testing.T) {
	svc := New(&fakeGenerator{}, WithLogger(quietLogger()))

	for _, name := range []string{"", "   "} {
		res, err := svc.Summarize(context.Background(), "transcript", name)
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		if res.CompanyName != DefaultCompanyName {
			t.Fatalf("expected default company name, got %q", res.CompanyName)
		}
	}
}

func TestSummarizePassesNotApplicableThrough(t *testing.T) {
	gen := &fakeGenerator{reply: func(string) string { return " NA " }}
	svc := New(gen, WithLogger(quietLogger()))

	res, err := svc.Summarize(context.Background(), "transcript", "Acme")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got := res.Fields()["environmental_risks"]; got != NotApplicable {
		t.Fatalf("expected NA, got %q", got)
	}
}

func TestSummarizeConcurrentMatchesSequential(t *testing.T) {
	reply := func(prompt string) string {
		for _, c := range Categories() {
			if strings.Contains(prompt, "focused on "+c.Name+".") {
				return "about " + c.Key
			}
		}
		return "unknown"
	}

	seq, err := New(&fakeGenerator{reply: reply}, WithLogger(quietLogger())).Summarize(context.Background(), "t", "Acme")
	if err != nil {
		t.Fatalf("sequential Summarize() error = %v", err)
	}
	par, err := New(&fakeGenerator{reply: reply}, WithLogger(quietLogger()), WithConcurrency(5)).Summarize(context.Background(), "t", "Acme")
	if err != nil {
		t.Fatalf("parallel Summarize() error = %v", err)
	}

	seqJSON, _ := json.Marshal(seq)
	parJSON, _ := json.Marshal(par)
	if string(seqJSON) != string(parJSON) {
		t.Fatalf("results differ:\n%s\n%s", seqJSON, parJSON)
	}
	for i, section := range par.Sections {
		if section.Category.Key != Categories()[i].Key {
			t.Fatalf("section %d out of order: %s", i, section.Category.Key)
		}
	}
}

type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestSummarizeCategoryTimeoutIsIsolated(t *testing.T) {
	svc := New(blockingGenerator{}, WithLogger(quietLogger()), WithTimeout(10*time.Millisecond), WithConcurrency(5))

	res, err := svc.Summarize(context.Background(), "transcript", "Acme")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	failures := res.Failures()
	if len(failures) != 5 {
		t.Fatalf("expected 5 failures, got %d", len(failures))
	}
	if !errors.Is(failures[0], context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", failures[0])
	}
}

func TestSummarizeReturnsErrorWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	obs := &fakeObserver{}
	_, err := New(blockingGenerator{}, WithLogger(quietLogger()), WithObserver(obs)).Summarize(ctx, "transcript", "Acme")
	var sumErr *SummarizationError
	if !errors.As(err, &sumErr) {
		t.Fatalf("expected *SummarizationError, got %T (%v)", err, err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(obs.summaries) != 1 || obs.summaries[0] != [2]int{5, 5} {
		t.Fatalf("canceled summary should be observed as fully failed, got %v", obs.summaries)
	}
}

func TestSummarizeWithoutGenerator(t *testing.T) {
	_, err := New(nil).Summarize(context.Background(), "transcript", "Acme")
	var sumErr *SummarizationError
	if !errors.As(err, &sumErr) {
		t.Fatalf("expected *SummarizationError, got %v", err)
	}
}

func TestResultMarshalJSON(t *testing.T) {
	res := Result{
		CompanyName: "Acme",
		Sections: []Section{
			{Category: Categories()[0], Summary: "up"},
			{Category: Categories()[1], Err: &GenerationError{Category: "market_dynamics", Err: errors.New("x")}},
		},
	}
	body, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"company_name":"Acme","financial_performance":"up","market_dynamics":"Error in generating summary"}`
	if string(body) != want {
		t.Fatalf("unexpected json: %s", body)
	}
}
