package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/MichaelPain/FutHaxball-sub001/docs"
	"github.com/MichaelPain/FutHaxball-sub001/handlers"
	"github.com/MichaelPain/FutHaxball-sub001/middleware"
	"github.com/MichaelPain/FutHaxball-sub001/models"
)

type Options struct {
	JWTSecret       []byte
	AllowedOrigins  []string
	ResultRateLimit float64
	ResultRateBurst int
}

func SetupRoutes(
	router *chi.Mux,
	opts Options,
	tournamentHandler *handlers.TournamentHandler,
	participantHandler *handlers.ParticipantHandler,
	stageHandler *handlers.StageHandler,
	matchHandler *handlers.MatchHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", handlers.HealthHandler)
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	authenticate := middleware.Authenticate(opts.JWTSecret)
	organizerOnly := middleware.Authorize(models.RoleOrganizer, models.RoleAdmin)

	burst := opts.ResultRateBurst
	if burst == 0 {
		burst = int(opts.ResultRateLimit) + 1
	}
	resultLimiter := middleware.NewRateLimiter(opts.ResultRateLimit, burst)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)

		r.With(authenticate, organizerOnly).Post("/", tournamentHandler.CreateHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetByIDHandler)
			r.Get("/stages/{stageID}/standings", stageHandler.StandingsHandler)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)

				r.Post("/participants", participantHandler.RegisterHandler)
				r.Post("/participants/{participantID}/check-in", participantHandler.CheckInHandler)

				r.Group(func(r chi.Router) {
					r.Use(organizerOnly)

					r.Post("/registration/open", tournamentHandler.OpenRegistrationHandler)
					r.Post("/registration/close", tournamentHandler.CloseRegistrationHandler)
					r.Post("/cancel", tournamentHandler.CancelHandler)
					r.Post("/advance", tournamentHandler.AdvanceHandler)

					r.Post("/participants/{participantID}/disqualify", participantHandler.DisqualifyHandler)

					r.Post("/stages", stageHandler.AddHandler)
					r.Post("/stages/{order}/generate", stageHandler.GenerateHandler)
					r.Post("/stages/{stageID}/complete", stageHandler.CompleteHandler)

					r.Post("/matches/{matchID}/start", matchHandler.StartHandler)
					r.With(resultLimiter.Handler).Post("/matches/{matchID}/result", matchHandler.SubmitResultHandler)
					r.Post("/matches/{matchID}/cancel", matchHandler.CancelHandler)
				})
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
