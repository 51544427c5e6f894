package gabarito

import "context"

type ListOpts struct {
	Q      string // substring match on title
	Limit  int
	Offset int
}

// Store persists finalized templates and their result histories. Templates
// are immutable once put; results are append-only, newest first. Appends for
// a given template are serialized by the implementation.
type Store interface {
	PutTemplate(ctx context.Context, t *Template) error
	GetTemplate(ctx context.Context, id string) (*Template, error)
	ListTemplates(ctx context.Context, opts ListOpts) ([]TemplateSummary, error)

	// AppendResult inserts r at the head of the template's history and
	// returns the updated template.
	AppendResult(ctx context.Context, templateID string, r Result) (*Template, error)
}
