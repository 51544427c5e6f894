package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/testify-edu/gabarito/internal/api/http"
	auth "github.com/testify-edu/gabarito/internal/auth/middleware"
	"github.com/testify-edu/gabarito/internal/config"
	"github.com/testify-edu/gabarito/internal/db"
	"github.com/testify-edu/gabarito/internal/gabarito"
	"github.com/testify-edu/gabarito/internal/grading"
	"github.com/testify-edu/gabarito/internal/remote"
	"github.com/testify-edu/gabarito/internal/report"
)

func main() {
	cfg := config.FromEnv()

	// --- Store ---
	var store gabarito.Store
	if cfg.DBDriver == "memory" {
		store = gabarito.NewInMemoryStore()
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		store = gabarito.NewSQLStore(dbh, cfg.DBDriver)
	}

	engine := grading.NewEngine()
	agg := report.NewAggregator(store)

	// Remote mirror is optional; without a URL the core runs local-only.
	var sync *remote.Client
	if cfg.RemoteBaseURL != "" {
		sync = remote.New(cfg.RemoteBaseURL, cfg.RemoteTimeout)
	}

	alphabet := make(gabarito.Alphabet, len(cfg.ChoiceAlphabet))
	for i, s := range cfg.ChoiceAlphabet {
		alphabet[i] = gabarito.Choice(s)
	}

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)
	teacher := auth.Teacher{User: cfg.TeacherUser, PassHash: cfg.TeacherPassHash}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, teacher))

	// Public reads; non-teacher callers get templates without answer keys.
	// AttachRole lets an authenticated teacher see the full template.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.AttachRole(authSvc))
		pr.Get("/api/gabaritos", api.ListTemplatesHandler(store))
		pr.Get("/api/gabaritos/{templateID}", api.GetTemplateHandler(store))
		pr.Get("/api/gabaritos/{templateID}/resultados", api.ListResultsHandler(store))
		pr.Get("/api/gabaritos/{templateID}/estatisticas", api.SummaryHandler(agg))
	})

	// Teacher-only writes.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.RequireRole("teacher"))
		pr.Post("/api/gabaritos", api.CreateTemplateHandler(store, sync, alphabet))
		pr.Post("/api/gabaritos/{templateID}/resultados", api.GradeSubmissionHandler(store, engine, agg))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
