package http

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/testify-edu/gabarito/internal/gabarito"
	"github.com/testify-edu/gabarito/internal/grading"
	"github.com/testify-edu/gabarito/internal/report"
)

type createResultadoReq struct {
	NomeAluno      string   `json:"nome_aluno"`
	MatriculaAluno string   `json:"matricula_aluno"`
	TurmaAluno     string   `json:"turma_aluno"`
	RespostasAluno []string `json:"respostas_aluno"`
}

type resultadoResponse struct {
	ID               string             `json:"id"`
	GabaritoID       string             `json:"gabarito_id"`
	NomeAluno        string             `json:"nome_aluno"`
	MatriculaAluno   string             `json:"matricula_aluno"`
	TurmaAluno       string             `json:"turma_aluno"`
	RespostasAluno   []gabarito.Choice  `json:"respostas_aluno"`
	Outcomes         []gabarito.Outcome `json:"outcomes"`
	Acertos          int                `json:"acertos"`
	Erros            int                `json:"erros"`
	PercentualAcerto float64            `json:"percentual_acerto"`
	Nota             float64            `json:"nota"`
	CriadoEm         int64              `json:"criado_em"`
}

func toResultadoResponse(templateID string, r gabarito.Result) resultadoResponse {
	nota := 0.0
	if r.Total > 0 {
		nota = float64(r.Score) / float64(r.Total) * 10
	}
	return resultadoResponse{
		ID:               r.ID,
		GabaritoID:       templateID,
		NomeAluno:        r.Student.Name,
		MatriculaAluno:   r.Student.Registration,
		TurmaAluno:       r.Student.Section,
		RespostasAluno:   r.Answers,
		Outcomes:         r.Outcomes,
		Acertos:          r.Score,
		Erros:            r.Errors(),
		PercentualAcerto: round2(r.Percent()),
		Nota:             round2(nota),
		CriadoEm:         r.CreatedAt,
	}
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }

// GradeSubmissionHandler scores one captured answer sheet against the
// template's key and appends the result to its history.
func GradeSubmissionHandler(store gabarito.Store, engine grading.Engine, agg *report.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateID := chi.URLParam(r, "templateID")
		var req createResultadoReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		t, err := store.GetTemplate(r.Context(), templateID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		answers := make([]gabarito.Choice, len(req.RespostasAluno))
		for i, s := range req.RespostasAluno {
			answers[i] = gabarito.Choice(s)
		}
		res, err := engine.Grade(t, grading.Submission{
			Student: gabarito.StudentIdentity{
				Name:         req.NomeAluno,
				Registration: req.MatriculaAluno,
				Section:      req.TurmaAluno,
			},
			Answers: answers,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		if _, err := agg.Append(r.Context(), templateID, res); err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toResultadoResponse(templateID, res))
	}
}

// ListResultsHandler returns the template's history, newest first.
func ListResultsHandler(store gabarito.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateID := chi.URLParam(r, "templateID")
		t, err := store.GetTemplate(r.Context(), templateID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]resultadoResponse, len(t.Results))
		for i, res := range t.Results {
			out[i] = toResultadoResponse(templateID, res)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

type estatisticasResponse struct {
	GabaritoID            string                           `json:"gabarito_id"`
	TotalProvasCorrigidas int                              `json:"total_provas_corrigidas"`
	MediaAcertos          float64                          `json:"media_acertos"`
	MediaErros            float64                          `json:"media_erros"`
	MediaPercentual       float64                          `json:"media_percentual"`
	Distribuicao          map[int]int                      `json:"distribuicao"`
	PorTurma              map[string]report.SectionSummary `json:"por_turma"`
	QuestaoMaisErrada     int                              `json:"questao_mais_errada"`
	QuestaoMaisAcertada   int                              `json:"questao_mais_acertada"`
}

// SummaryHandler recomputes template statistics on every call.
func SummaryHandler(agg *report.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateID := chi.URLParam(r, "templateID")
		s, err := agg.Summarize(r.Context(), templateID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp := estatisticasResponse{
			GabaritoID:            s.TemplateID,
			TotalProvasCorrigidas: s.Count,
			MediaAcertos:          round2(s.MeanScore),
			MediaErros:            round2(s.MeanErrors),
			MediaPercentual:       round2(s.MeanPercent),
			Distribuicao:          s.Distribution,
			PorTurma:              s.BySection,
			QuestaoMaisErrada:     s.HardestQuestion,
			QuestaoMaisAcertada:   s.EasiestQuestion,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
