// Package grading scores captured answer sheets against a template's key.
package grading

import (
	"time"

	"github.com/google/uuid"

	"github.com/testify-edu/gabarito/internal/gabarito"
)

// Submission is what the answer-capture component hands over: an identity
// (possibly partial) and the marked choices, aligned 1:1 with question
// numbers. gabarito.Blank marks a question left unanswered.
type Submission struct {
	Student gabarito.StudentIdentity
	Answers []gabarito.Choice
}

// Engine turns submissions into Results. It is pure apart from the ID and
// timestamp generators, which are injectable for tests.
type Engine struct {
	NewID func() string
	Now   func() time.Time
}

func NewEngine() Engine {
	return Engine{NewID: uuid.NewString, Now: time.Now}
}

// Grade compares the submission against the template's answer key and
// produces a Result. The template is not touched; appending the Result to
// its history is the report aggregator's job.
//
// A submission shorter than the question count is padded with Blank; a
// longer one is rejected with MalformedSubmissionError. Comparison is
// case-sensitive with no normalization: the capture component must hand
// over symbols already in the template's alphabet.
func (e Engine) Grade(t *gabarito.Template, sub Submission) (gabarito.Result, error) {
	n := t.QuestionCount
	if len(sub.Answers) > n {
		return gabarito.Result{}, &gabarito.MalformedSubmissionError{Got: len(sub.Answers), Want: n}
	}
	answers := make([]gabarito.Choice, n)
	copy(answers, sub.Answers)

	outcomes := make([]gabarito.Outcome, n)
	score := 0
	for i := 0; i < n; i++ {
		switch {
		case answers[i] == gabarito.Blank:
			outcomes[i] = gabarito.OutcomeUnanswered
		case answers[i] == t.Key(i+1):
			outcomes[i] = gabarito.OutcomeCorrect
			score++
		default:
			outcomes[i] = gabarito.OutcomeIncorrect
		}
	}

	return gabarito.Result{
		ID:        e.NewID(),
		Student:   sub.Student.WithDefaults(),
		Answers:   answers,
		Outcomes:  outcomes,
		Score:     score,
		Total:     n,
		CreatedAt: e.Now().Unix(),
	}, nil
}
