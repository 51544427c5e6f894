package report_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/testify-edu/gabarito/internal/gabarito"
	"github.com/testify-edu/gabarito/internal/grading"
	"github.com/testify-edu/gabarito/internal/report"
)

func seedTemplate(t *testing.T, store gabarito.Store, key ...gabarito.Choice) *gabarito.Template {
	t.Helper()
	b := gabarito.NewBuilder(nil)
	if err := b.SetDetails("Prova de História", fmt.Sprint(len(key))); err != nil {
		t.Fatalf("SetDetails: %v", err)
	}
	for i, c := range key {
		if err := b.SetAnswer(i+1, c); err != nil {
			t.Fatalf("SetAnswer: %v", err)
		}
	}
	tpl, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := store.PutTemplate(context.Background(), tpl); err != nil {
		t.Fatalf("PutTemplate: %v", err)
	}
	return tpl
}

func grade(t *testing.T, tpl *gabarito.Template, section string, answers ...gabarito.Choice) gabarito.Result {
	t.Helper()
	e := grading.NewEngine()
	res, err := e.Grade(tpl, grading.Submission{
		Student: gabarito.StudentIdentity{Name: "aluno", Section: section},
		Answers: answers,
	})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	return res
}

func TestAggregator_AppendKeepsHistoryOrder(t *testing.T) {
	ctx := context.Background()
	store := gabarito.NewInMemoryStore()
	agg := report.NewAggregator(store)
	tpl := seedTemplate(t, store, "A", "B")

	var ids []string
	for i := 0; i < 3; i++ {
		res := grade(t, tpl, "3A", "A", "B")
		res.CreatedAt = time.Now().Unix()
		ids = append(ids, res.ID)
		updated, err := agg.Append(ctx, tpl.ID, res)
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		if len(updated.Results) != i+1 {
			t.Fatalf("after %d appends history has %d results", i+1, len(updated.Results))
		}
		if updated.Results[0].ID != res.ID {
			t.Fatalf("newest result not at head: %q", updated.Results[0].ID)
		}
	}

	got, err := store.GetTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	// newest first: ids reversed
	for i := range ids {
		if got.Results[i].ID != ids[len(ids)-1-i] {
			t.Fatalf("Results[%d] = %q, want %q", i, got.Results[i].ID, ids[len(ids)-1-i])
		}
	}
}

func TestAggregator_AppendRevalidatesLength(t *testing.T) {
	ctx := context.Background()
	store := gabarito.NewInMemoryStore()
	agg := report.NewAggregator(store)
	tpl := seedTemplate(t, store, "A", "B", "C")

	// a Result built by hand, bypassing the engine
	bad := gabarito.Result{ID: "forged", Answers: []gabarito.Choice{"A"}, Score: 1, Total: 1}
	_, err := agg.Append(ctx, tpl.ID, bad)
	var mse *gabarito.MalformedSubmissionError
	if !errors.As(err, &mse) {
		t.Fatalf("error = %v, want MalformedSubmissionError", err)
	}

	got, _ := store.GetTemplate(ctx, tpl.ID)
	if len(got.Results) != 0 {
		t.Fatalf("rejected append reached the history")
	}
}

func TestAggregator_AppendUnknownTemplate(t *testing.T) {
	store := gabarito.NewInMemoryStore()
	agg := report.NewAggregator(store)
	_, err := agg.Append(context.Background(), "nope", gabarito.Result{})
	if !errors.Is(err, gabarito.ErrTemplateNotFound) {
		t.Fatalf("error = %v, want ErrTemplateNotFound", err)
	}
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	store := gabarito.NewInMemoryStore()
	agg := report.NewAggregator(store)
	tpl := seedTemplate(t, store, "A", "B", "C")

	// 3A: scores 3 and 1; 3B: score 2. Question 3 missed twice.
	for _, sub := range []struct {
		section string
		answers []gabarito.Choice
	}{
		{"3A", []gabarito.Choice{"A", "B", "C"}},
		{"3A", []gabarito.Choice{"A", "E", "E"}},
		{"3B", []gabarito.Choice{"A", "B", "D"}},
	} {
		if _, err := agg.Append(ctx, tpl.ID, grade(t, tpl, sub.section, sub.answers...)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	s, err := agg.Summarize(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Count != 3 {
		t.Fatalf("Count = %d, want 3", s.Count)
	}
	if s.MeanScore != 2 {
		t.Fatalf("MeanScore = %v, want 2", s.MeanScore)
	}
	if s.MeanErrors != 1 {
		t.Fatalf("MeanErrors = %v, want 1", s.MeanErrors)
	}
	if s.Distribution[3] != 1 || s.Distribution[2] != 1 || s.Distribution[1] != 1 {
		t.Fatalf("Distribution = %v", s.Distribution)
	}
	if s.BySection["3A"].Count != 2 || s.BySection["3A"].MeanScore != 2 {
		t.Fatalf("BySection[3A] = %+v", s.BySection["3A"])
	}
	if s.BySection["3B"].Count != 1 || s.BySection["3B"].MeanScore != 2 {
		t.Fatalf("BySection[3B] = %+v", s.BySection["3B"])
	}
	if s.HardestQuestion != 3 {
		t.Fatalf("HardestQuestion = %d, want 3", s.HardestQuestion)
	}
	if s.EasiestQuestion != 1 {
		t.Fatalf("EasiestQuestion = %d, want 1", s.EasiestQuestion)
	}
}

func TestSummarize_Empty(t *testing.T) {
	store := gabarito.NewInMemoryStore()
	agg := report.NewAggregator(store)
	tpl := seedTemplate(t, store, "A")

	s, err := agg.Summarize(context.Background(), tpl.ID)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Count != 0 || s.MeanScore != 0 {
		t.Fatalf("empty summary = %+v", s)
	}
	if s.HardestQuestion != 0 || s.EasiestQuestion != 0 {
		t.Fatalf("question stats on empty history: %+v", s)
	}
}

// Results are normally produced by the engine, but Summarize must tolerate
// a history row carrying more outcomes than the template has questions.
func TestSummarize_IgnoresExcessOutcomes(t *testing.T) {
	ctx := context.Background()
	store := gabarito.NewInMemoryStore()
	agg := report.NewAggregator(store)
	tpl := seedTemplate(t, store, "A", "B")

	res := grade(t, tpl, "3A", "A", "B")
	res.Outcomes = append(res.Outcomes, gabarito.OutcomeCorrect, gabarito.OutcomeCorrect)
	if _, err := agg.Append(ctx, tpl.ID, res); err != nil {
		t.Fatalf("Append: %v", err)
	}

	s, err := agg.Summarize(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Count != 1 || s.MeanScore != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if s.HardestQuestion != 1 || s.EasiestQuestion != 1 {
		t.Fatalf("question stats out of range: hardest=%d easiest=%d", s.HardestQuestion, s.EasiestQuestion)
	}
}
