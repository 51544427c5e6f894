package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/testify-edu/gabarito/internal/auth/middleware"
	"github.com/testify-edu/gabarito/internal/gabarito"
	"github.com/testify-edu/gabarito/internal/remote"
)

type createGabaritoReq struct {
	Titulo            string      `json:"titulo"`
	NumQuestoes       json.Number `json:"num_questoes"`
	Alternativas      []string    `json:"alternativas,omitempty"`
	RespostasCorretas []string    `json:"respostas_corretas"`
	Descricao         string      `json:"descricao,omitempty"`
}

// CreateTemplateHandler drives a Builder through its three stages from one
// request body: details, per-question answers, finalize. Any stage failure
// maps to 400 with the validation message and nothing is stored. On success
// the template is stored locally and mirrored to the remote store in the
// background; a sync failure never fails this request.
func CreateTemplateHandler(store gabarito.Store, sync *remote.Client, alphabet gabarito.Alphabet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGabaritoReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		ab := alphabet
		if len(req.Alternativas) > 0 {
			ab = make(gabarito.Alphabet, len(req.Alternativas))
			for i, s := range req.Alternativas {
				if s == "" {
					http.Error(w, "alternativas must not contain empty symbols", http.StatusBadRequest)
					return
				}
				ab[i] = gabarito.Choice(s)
			}
		}

		b := gabarito.NewBuilder(ab)
		if err := b.SetDetails(req.Titulo, req.NumQuestoes.String()); err != nil {
			writeDomainError(w, err)
			return
		}
		b.SetDescription(req.Descricao)
		for i, s := range req.RespostasCorretas {
			if err := b.SetAnswer(i+1, gabarito.Choice(s)); err != nil {
				writeDomainError(w, err)
				return
			}
		}
		t, err := b.Finalize()
		if err != nil {
			writeDomainError(w, err)
			return
		}

		if err := store.PutTemplate(r.Context(), t); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if sync != nil {
			go func(t *gabarito.Template) {
				out := sync.PushTemplate(context.Background(), t)
				if out.Synced {
					log.Printf("template %s mirrored to remote store (remote id %q)", t.ID, out.RemoteID)
				} else {
					log.Printf("template %s remote sync failed, continuing offline: %s", t.ID, out.Reason)
				}
			}(t.Clone())
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(t)
	}
}

func ListTemplatesHandler(store gabarito.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := gabarito.ListOpts{Q: r.URL.Query().Get("q")}
		out, err := store.ListTemplates(r.Context(), opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GetTemplateHandler serves the full template to teachers; everyone else
// gets the answer key stripped.
func GetTemplateHandler(store gabarito.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "templateID")
		t, err := store.GetTemplate(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if auth.RoleFromContext(r.Context()) != "teacher" {
			t = t.StudentView()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(t)
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	var ve *gabarito.ValidationError
	var ike *gabarito.IncompleteKeyError
	var mse *gabarito.MalformedSubmissionError
	switch {
	case errors.Is(err, gabarito.ErrTemplateNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &ve), errors.As(err, &ike), errors.As(err, &mse):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
