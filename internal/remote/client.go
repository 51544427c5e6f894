// Package remote mirrors finalized templates to the central store with a
// single best-effort HTTP call. Sync never blocks or fails finalization:
// the in-memory/local template stays the source of truth and a failed push
// just reports SyncFailed for telemetry.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/testify-edu/gabarito/internal/gabarito"
)

// DefaultTimeout bounds the one outbound attempt per finalization.
const DefaultTimeout = 15 * time.Second

// Outcome is the two-state sync report: Synced carries the remote
// identifier, SyncFailed carries the reason. Neither is an error.
type Outcome struct {
	Synced   bool   `json:"synced"`
	RemoteID string `json:"remote_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

func synced(id string) Outcome      { return Outcome{Synced: true, RemoteID: id} }
func syncFailed(why string) Outcome { return Outcome{Reason: why} }

type Client struct {
	http    *http.Client
	baseURL string
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// templatePayload is the remote store's wire format.
type templatePayload struct {
	Titulo            string            `json:"titulo"`
	NumQuestoes       int               `json:"num_questoes"`
	Alternativas      gabarito.Alphabet `json:"alternativas"`
	RespostasCorretas []gabarito.Choice `json:"respostas_corretas"`
	Descricao         *string           `json:"descricao"`
}

// PushTemplate makes at most one attempt to mirror t. Timeouts, transport
// errors and non-2xx statuses all collapse into SyncFailed; there is no
// retry or queue.
func (c *Client) PushTemplate(ctx context.Context, t *gabarito.Template) Outcome {
	p := templatePayload{
		Titulo:            t.Title,
		NumQuestoes:       t.QuestionCount,
		Alternativas:      t.Alphabet,
		RespostasCorretas: t.AnswerKey,
	}
	if t.Description != "" {
		p.Descricao = &t.Description
	}
	body, err := json.Marshal(p)
	if err != nil {
		return syncFailed("encode: " + err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/gabaritos/", bytes.NewReader(body))
	if err != nil {
		return syncFailed("request: " + err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return syncFailed(err.Error())
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return syncFailed(fmt.Sprintf("remote store: %s", res.Status))
	}

	var created struct {
		ID json.Number `json:"id"`
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&created); err != nil {
		// stored remotely but the id is unreadable; local operation does
		// not need it, so still report success
		return synced("")
	}
	return synced(created.ID.String())
}
