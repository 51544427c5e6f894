package gabarito

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stage names the builder's position in the template creation flow.
type Stage string

const (
	StageDetails   Stage = "details"
	StageKeying    Stage = "keying"
	StageFinalized Stage = "finalized"
)

// Builder walks one template through details -> keying -> finalized. Each
// transition validates its inputs and leaves the draft untouched on failure,
// so the caller can re-prompt and retry. A Builder is not safe for
// concurrent use; it models a single creation session.
type Builder struct {
	NewID func() string
	Now   func() time.Time

	stage       Stage
	title       string
	description string
	count       int
	alphabet    Alphabet
	key         []Choice
	lastErr     error
}

func NewBuilder(alphabet Alphabet) *Builder {
	if len(alphabet) == 0 {
		alphabet = DefaultAlphabet()
	}
	return &Builder{
		NewID:    uuid.NewString,
		Now:      time.Now,
		stage:    StageDetails,
		alphabet: alphabet,
	}
}

func (b *Builder) Stage() Stage { return b.stage }

// Err reports the validation error from the most recent failed operation,
// for display. Cleared by the next successful operation and by Reset.
func (b *Builder) Err() error { return b.lastErr }

func (b *Builder) Title() string      { return b.title }
func (b *Builder) QuestionCount() int { return b.count }

// Answers returns a copy of the draft key, Blank where unset.
func (b *Builder) Answers() []Choice {
	return append([]Choice(nil), b.key...)
}

// Missing lists the question numbers still unset, ascending.
func (b *Builder) Missing() []int {
	var out []int
	for i, c := range b.key {
		if c == Blank {
			out = append(out, i+1)
		}
	}
	return out
}

// SetDetails validates the title and question count and advances to the
// keying stage, initializing every entry to Blank.
func (b *Builder) SetDetails(title, questionCount string) error {
	if b.stage == StageFinalized {
		return b.fail(&ValidationError{Field: "stage", Reason: "template already finalized; reset to start another"})
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return b.fail(&ValidationError{Field: "title", Reason: "must not be empty"})
	}
	n, err := strconv.Atoi(strings.TrimSpace(questionCount))
	if err != nil {
		return b.fail(&ValidationError{Field: "question_count", Reason: "must be a number"})
	}
	if n <= 0 {
		return b.fail(&ValidationError{Field: "question_count", Reason: "must be positive"})
	}
	b.title = title
	b.count = n
	b.key = make([]Choice, n)
	b.stage = StageKeying
	b.lastErr = nil
	return nil
}

// SetDescription attaches an optional free-text description. Valid in any
// draft stage; never fails.
func (b *Builder) SetDescription(desc string) {
	if b.stage != StageFinalized {
		b.description = strings.TrimSpace(desc)
	}
}

// SetAnswer records the correct choice for a 1-based question number.
// Re-setting a question overwrites the previous choice.
func (b *Builder) SetAnswer(question int, c Choice) error {
	if b.stage != StageKeying {
		return b.fail(&ValidationError{Field: "stage", Reason: "details not set"})
	}
	if question < 1 || question > b.count {
		return b.fail(&ValidationError{Field: "question", Reason: "out of range"})
	}
	if !b.alphabet.Contains(c) {
		return b.fail(&ValidationError{Field: "choice", Reason: "not in alphabet"})
	}
	b.key[question-1] = c
	b.lastErr = nil
	return nil
}

// Finalize produces the Template once every question is keyed. On failure
// the draft is unchanged and the builder stays in the keying stage. The
// finalized key is positional, question 1 first, regardless of the order
// answers were set in.
func (b *Builder) Finalize() (*Template, error) {
	if b.stage == StageFinalized {
		return nil, b.fail(&ValidationError{Field: "stage", Reason: "already finalized"})
	}
	if b.stage != StageKeying {
		return nil, b.fail(&ValidationError{Field: "stage", Reason: "details not set"})
	}
	if missing := b.Missing(); len(missing) > 0 {
		return nil, b.fail(&IncompleteKeyError{Missing: missing})
	}
	t := &Template{
		ID:            b.NewID(),
		Title:         b.title,
		Description:   b.description,
		QuestionCount: b.count,
		Alphabet:      append(Alphabet(nil), b.alphabet...),
		AnswerKey:     append([]Choice(nil), b.key...),
		CreatedAt:     b.Now().Unix(),
		Results:       []Result{},
	}
	b.stage = StageFinalized
	b.lastErr = nil
	return t, nil
}

// Reset discards the draft and returns to the details stage. Templates
// already finalized are unaffected.
func (b *Builder) Reset() {
	b.stage = StageDetails
	b.title = ""
	b.description = ""
	b.count = 0
	b.key = nil
	b.lastErr = nil
}

func (b *Builder) fail(err error) error {
	b.lastErr = err
	return err
}
