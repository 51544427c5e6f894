package gabarito

// Choice is one answer symbol from a template's alphabet.
type Choice string

// Blank marks the absence of a choice: an entry the builder has not keyed
// yet, or an unanswered question in a submission. It is never part of an
// alphabet.
const Blank Choice = ""

// Alphabet is the fixed set of valid choices for a template.
type Alphabet []Choice

// DefaultAlphabet returns the standard A-E answer sheet alphabet.
func DefaultAlphabet() Alphabet {
	return Alphabet{"A", "B", "C", "D", "E"}
}

func (a Alphabet) Contains(c Choice) bool {
	for _, x := range a {
		if x == c {
			return true
		}
	}
	return false
}

// Outcome classifies one graded answer position.
type Outcome string

const (
	OutcomeCorrect    Outcome = "correct"
	OutcomeIncorrect  Outcome = "incorrect"
	OutcomeUnanswered Outcome = "unanswered"
)

// Sentinels for identity fields the capture component did not supply.
// These are raw data values, not display strings: summaries group by them.
const (
	UnknownStudent      = "Aluno Não Identificado"
	UnknownRegistration = "Não informada"
	UnknownSection      = "Não informada"
)

type StudentIdentity struct {
	Name         string `json:"name"`
	Registration string `json:"registration"`
	Section      string `json:"section"`
}

// WithDefaults fills empty identity fields with the unknown sentinels so a
// Result never carries an empty identity.
func (s StudentIdentity) WithDefaults() StudentIdentity {
	if s.Name == "" {
		s.Name = UnknownStudent
	}
	if s.Registration == "" {
		s.Registration = UnknownRegistration
	}
	if s.Section == "" {
		s.Section = UnknownSection
	}
	return s
}

// Result is one scored submission against a template's answer key. It is
// immutable once created and owned by the template it was scored against.
type Result struct {
	ID        string          `json:"id"`
	Student   StudentIdentity `json:"student"`
	Answers   []Choice        `json:"answers"`
	Outcomes  []Outcome       `json:"outcomes"`
	Score     int             `json:"score"`
	Total     int             `json:"total"`
	CreatedAt int64           `json:"created_at"`
}

// Errors is the number of questions not answered correctly.
func (r Result) Errors() int { return r.Total - r.Score }

// Percent is the hit rate in 0..100.
func (r Result) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total) * 100
}

// Template is a finalized answer key plus its accumulated grading history.
// Everything except Results is immutable after finalization; Results grows
// only by insertion at the head.
type Template struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	QuestionCount int      `json:"question_count"`
	Alphabet      Alphabet `json:"alphabet"`
	AnswerKey     []Choice `json:"answer_key,omitempty"`
	CreatedAt     int64    `json:"created_at"`
	Results       []Result `json:"results"`
}

// Key returns the correct choice for a 1-based question number.
func (t *Template) Key(question int) Choice {
	return t.AnswerKey[question-1]
}

// Clone deep-copies the template so callers cannot reach into a store's
// owned aggregate.
func (t *Template) Clone() *Template {
	cp := *t
	cp.Alphabet = append(Alphabet(nil), t.Alphabet...)
	cp.AnswerKey = append([]Choice(nil), t.AnswerKey...)
	cp.Results = make([]Result, len(t.Results))
	for i, r := range t.Results {
		r.Answers = append([]Choice(nil), r.Answers...)
		r.Outcomes = append([]Outcome(nil), r.Outcomes...)
		cp.Results[i] = r
	}
	return &cp
}

// StudentView returns a copy with the answer key stripped, for serving to
// non-teacher callers.
func (t *Template) StudentView() *Template {
	cp := t.Clone()
	cp.AnswerKey = nil
	return cp
}

// TemplateSummary is the list-view projection of a template.
type TemplateSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"question_count"`
	CreatedAt     int64  `json:"created_at"`
	ResultCount   int    `json:"result_count"`
}
