package gabarito

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

type memoryStore struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewInMemoryStore returns a Store keeping everything in process memory.
// This is the source of truth when no database is configured (offline mode).
func NewInMemoryStore() Store {
	return &memoryStore{templates: map[string]*Template{}}
}

func (m *memoryStore) PutTemplate(ctx context.Context, t *Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		return errors.New("template id required")
	}
	if _, ok := m.templates[t.ID]; ok {
		return errors.New("template already exists")
	}
	m.templates[t.ID] = t.Clone()
	return nil
}

func (m *memoryStore) GetTemplate(ctx context.Context, id string) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	return t.Clone(), nil
}

func (m *memoryStore) ListTemplates(ctx context.Context, opts ListOpts) ([]TemplateSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TemplateSummary, 0, len(m.templates))
	q := strings.ToLower(opts.Q)
	for _, t := range m.templates {
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) {
			continue
		}
		out = append(out, TemplateSummary{
			ID:            t.ID,
			Title:         t.Title,
			QuestionCount: t.QuestionCount,
			CreatedAt:     t.CreatedAt,
			ResultCount:   len(t.Results),
		})
	}
	// newest templates first, id as tiebreak for stable listings
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	out = page(out, opts.Limit, opts.Offset)
	return out, nil
}

func (m *memoryStore) AppendResult(ctx context.Context, templateID string, r Result) (*Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[templateID]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	if len(r.Answers) != t.QuestionCount {
		return nil, &MalformedSubmissionError{Got: len(r.Answers), Want: t.QuestionCount}
	}
	t.Results = append([]Result{r}, t.Results...)
	return t.Clone(), nil
}

func page(in []TemplateSummary, limit, offset int) []TemplateSummary {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(in) {
		return []TemplateSummary{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
