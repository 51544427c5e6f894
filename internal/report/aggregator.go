// Package report owns the append-only result history of a template and
// derives summary statistics on demand.
package report

import (
	"context"

	"github.com/testify-edu/gabarito/internal/gabarito"
)

// Aggregator appends graded results through a Store and summarizes a
// template's history. It holds no state of its own; the store serializes
// appends per template.
type Aggregator struct {
	store gabarito.Store
}

func NewAggregator(store gabarito.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Append inserts the result at the head of the template's history and
// returns the updated template. The answer-count check is re-done here even
// though the grading engine guarantees it, so a Result built any other way
// cannot corrupt a history.
func (a *Aggregator) Append(ctx context.Context, templateID string, r gabarito.Result) (*gabarito.Template, error) {
	t, err := a.store.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if len(r.Answers) != t.QuestionCount {
		return nil, &gabarito.MalformedSubmissionError{Got: len(r.Answers), Want: t.QuestionCount}
	}
	return a.store.AppendResult(ctx, templateID, r)
}

// Summarize recomputes statistics for a template's full history. Nothing is
// cached or stored, so a summary can never go stale.
func (a *Aggregator) Summarize(ctx context.Context, templateID string) (Summary, error) {
	t, err := a.store.GetTemplate(ctx, templateID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(t), nil
}

// SectionSummary groups results by the class/section identity field.
type SectionSummary struct {
	Count     int     `json:"count"`
	MeanScore float64 `json:"mean_score"`
}

type Summary struct {
	TemplateID   string                    `json:"template_id"`
	Count        int                       `json:"count"`
	MeanScore    float64                   `json:"mean_score"`
	MeanErrors   float64                   `json:"mean_errors"`
	MeanPercent  float64                   `json:"mean_percent"`
	Distribution map[int]int               `json:"distribution"`
	BySection    map[string]SectionSummary `json:"by_section"`

	// 1-based question numbers; 0 when there are no results.
	HardestQuestion int `json:"hardest_question"`
	EasiestQuestion int `json:"easiest_question"`
}

// Summarize derives statistics from the template's results. Pure.
func Summarize(t *gabarito.Template) Summary {
	s := Summary{
		TemplateID:   t.ID,
		Count:        len(t.Results),
		Distribution: map[int]int{},
		BySection:    map[string]SectionSummary{},
	}
	if s.Count == 0 {
		return s
	}

	scoreSum := 0
	percentSum := 0.0
	sectionSums := map[string]int{}
	correctPerQ := make([]int, t.QuestionCount)
	for _, r := range t.Results {
		scoreSum += r.Score
		percentSum += r.Percent()
		s.Distribution[r.Score]++
		sec := s.BySection[r.Student.Section]
		sec.Count++
		s.BySection[r.Student.Section] = sec
		sectionSums[r.Student.Section] += r.Score
		for i, o := range r.Outcomes {
			if i >= t.QuestionCount {
				break
			}
			if o == gabarito.OutcomeCorrect {
				correctPerQ[i]++
			}
		}
	}
	n := float64(s.Count)
	s.MeanScore = float64(scoreSum) / n
	s.MeanErrors = float64(t.QuestionCount) - s.MeanScore
	s.MeanPercent = percentSum / n
	for sec, sum := range sectionSums {
		entry := s.BySection[sec]
		entry.MeanScore = float64(sum) / float64(entry.Count)
		s.BySection[sec] = entry
	}

	s.HardestQuestion, s.EasiestQuestion = 1, 1
	for q := 1; q < t.QuestionCount; q++ {
		if correctPerQ[q] < correctPerQ[s.HardestQuestion-1] {
			s.HardestQuestion = q + 1
		}
		if correctPerQ[q] > correctPerQ[s.EasiestQuestion-1] {
			s.EasiestQuestion = q + 1
		}
	}
	return s
}
