package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/testify-edu/gabarito/internal/gabarito"
	"github.com/testify-edu/gabarito/internal/remote"
)

func pushTemplate() *gabarito.Template {
	return &gabarito.Template{
		ID:            "tpl-1",
		Title:         "Prova de Física",
		Description:   "2º bimestre",
		QuestionCount: 3,
		Alphabet:      gabarito.DefaultAlphabet(),
		AnswerKey:     []gabarito.Choice{"A", "B", "C"},
		CreatedAt:     1700000000,
	}
}

func TestPushTemplate_Synced(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/gabaritos/" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42, "titulo": "Prova de Física"}`))
	}))
	defer ts.Close()

	c := remote.New(ts.URL, time.Second)
	out := c.PushTemplate(context.Background(), pushTemplate())
	if !out.Synced {
		t.Fatalf("outcome = %+v, want synced", out)
	}
	if out.RemoteID != "42" {
		t.Fatalf("RemoteID = %q, want 42", out.RemoteID)
	}

	if got["titulo"] != "Prova de Física" {
		t.Fatalf("titulo = %v", got["titulo"])
	}
	if got["num_questoes"] != float64(3) {
		t.Fatalf("num_questoes = %v", got["num_questoes"])
	}
	if got["descricao"] != "2º bimestre" {
		t.Fatalf("descricao = %v", got["descricao"])
	}
	respostas, _ := got["respostas_corretas"].([]any)
	if len(respostas) != 3 || respostas[0] != "A" {
		t.Fatalf("respostas_corretas = %v", got["respostas_corretas"])
	}
}

func TestPushTemplate_NonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := remote.New(ts.URL, time.Second)
	out := c.PushTemplate(context.Background(), pushTemplate())
	if out.Synced {
		t.Fatalf("500 reported as synced")
	}
	if out.Reason == "" {
		t.Fatalf("failure carries no reason")
	}
}

func TestPushTemplate_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	c := remote.New(ts.URL, 20*time.Millisecond)
	start := time.Now()
	out := c.PushTemplate(context.Background(), pushTemplate())
	if out.Synced {
		t.Fatalf("timeout reported as synced")
	}
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Fatalf("call not abandoned at timeout, took %v", elapsed)
	}
}

func TestPushTemplate_ConnectionRefused(t *testing.T) {
	// a server that is already closed
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	c := remote.New(ts.URL, time.Second)
	out := c.PushTemplate(context.Background(), pushTemplate())
	if out.Synced {
		t.Fatalf("refused connection reported as synced")
	}
}
