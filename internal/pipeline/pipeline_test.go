package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/crimson-sun/djenbridge/internal/adapter"
	"github.com/crimson-sun/djenbridge/internal/model"
)

// --- mocks ---

type mockFetcher struct {
	results map[string]adapter.Result
	errs    map[string]error
	calls   []string
}

func (m *mockFetcher) Fetch(_ context.Context, q model.Query) (adapter.Result, error) {
	m.calls = append(m.calls, q.LawyerName)
	if err := m.errs[q.LawyerName]; err != nil {
		return adapter.Result{}, err
	}
	return m.results[q.LawyerName], nil
}

type mockOutput struct {
	records []model.NotificationRecord
	err     error
	closed  bool
}

func (m *mockOutput) Write(_ context.Context, rec model.NotificationRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockOutput) Close() error {
	m.closed = true
	return nil
}

func rec(caseNumber string) model.NotificationRecord {
	return model.NotificationRecord{
		Date:       "2024-03-01",
		Court:      "TJMG",
		CaseNumber: caseNumber,
		Type:       model.TypeIntimar,
		Deadline:   "15 days",
		Actions:    []string{"ANALISAR_INTIMACAO", "CALCULAR_PRAZO"},
	}
}

func query(name string) model.Query {
	return model.Query{LawyerName: name, DateStart: "2024-03-01", DateEnd: "2024-03-01"}
}

// --- tests ---

func TestQueryWritesRecords(t *testing.T) {
	f := &mockFetcher{results: map[string]adapter.Result{
		"PEDRO": {Records: []model.NotificationRecord{rec("1"), rec("2")}, Source: adapter.SourceUpstream},
	}}
	out := &mockOutput{}
	p := New(f, out)

	rep, err := p.Query(context.Background(), query("PEDRO"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Records != 2 || len(out.records) != 2 {
		t.Fatalf("expected 2 records written, got report=%d output=%d", rep.Records, len(out.records))
	}
	if rep.Source != adapter.SourceUpstream || rep.Stale {
		t.Fatalf("unexpected provenance: %+v", rep)
	}
	if rep.Tokens <= 0 {
		t.Fatalf("expected a token estimate, got %d", rep.Tokens)
	}
}

func TestRunSuppressesCrossQueryDuplicates(t *testing.T) {
	f := &mockFetcher{results: map[string]adapter.Result{
		"A": {Records: []model.NotificationRecord{rec("1"), rec("2")}},
		"B": {Records: []model.NotificationRecord{rec("2"), rec("3")}},
	}}
	out := &mockOutput{}
	p := New(f, out)

	reports, err := p.Run(context.Background(), []model.Query{query("A"), query("B")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.records) != 3 {
		t.Fatalf("expected 3 unique records, got %d", len(out.records))
	}
	if reports[1].Duplicates != 1 || reports[1].Records != 1 {
		t.Fatalf("expected second query to report 1 duplicate and 1 record, got %+v", reports[1])
	}
}

func TestRunContinuesPastFailedQuery(t *testing.T) {
	f := &mockFetcher{
		results: map[string]adapter.Result{"B": {Records: []model.NotificationRecord{rec("9")}}},
		errs:    map[string]error{"A": &model.RateLimitedError{}},
	}
	out := &mockOutput{}
	p := New(f, out)

	reports, err := p.Run(context.Background(), []model.Query{query("A"), query("B")})
	if err == nil {
		t.Fatal("expected joined error for the failed query")
	}
	var rl *model.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("expected RateLimitedError in chain, got %v", err)
	}
	if reports[0].Err == nil {
		t.Fatal("expected first report to carry the error")
	}
	if len(out.records) != 1 || reports[1].Records != 1 {
		t.Fatalf("second query should still be written, got %d records", len(out.records))
	}
}

func TestRunStopsOnOutputError(t *testing.T) {
	f := &mockFetcher{results: map[string]adapter.Result{
		"A": {Records: []model.NotificationRecord{rec("1")}},
		"B": {Records: []model.NotificationRecord{rec("2")}},
	}}
	out := &mockOutput{err: errors.New("disk full")}
	p := New(f, out)

	if _, err := p.Run(context.Background(), []model.Query{query("A"), query("B")}); err == nil {
		t.Fatal("expected output error")
	}
	if len(f.calls) != 1 {
		t.Fatalf("expected the run to stop after the first query, got calls %v", f.calls)
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	f := &mockFetcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(f, &mockOutput{}).Run(ctx, []model.Query{query("A")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(f.calls) != 0 {
		t.Fatal("no fetch should run after cancellation")
	}
}

func TestStaleResultReported(t *testing.T) {
	f := &mockFetcher{results: map[string]adapter.Result{
		"A": {Records: []model.NotificationRecord{rec("1")}, Stale: true, Source: adapter.SourceFallbackMock},
	}}
	rep, err := New(f, &mockOutput{}).Query(context.Background(), query("A"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.Stale || rep.Source != adapter.SourceFallbackMock {
		t.Fatalf("expected stale mock provenance, got %+v", rep)
	}
}

func TestCloseClosesOutput(t *testing.T) {
	out := &mockOutput{}
	if err := New(&mockFetcher{}, out).Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.closed {
		t.Fatal("expected output to be closed")
	}
}
