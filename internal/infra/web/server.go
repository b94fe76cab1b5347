package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"map-ai-relay/internal/usecase"
)

// Server exposes the three relay operations over HTTP.
type Server struct {
	placeUC   usecase.PlaceUseCase
	polygonUC usecase.PolygonUseCase
	chatUC    usecase.ChatUseCase
	tokens    *TokenManager
	log       *zerolog.Logger
}

func NewServer(
	placeUC usecase.PlaceUseCase,
	polygonUC usecase.PolygonUseCase,
	chatUC usecase.ChatUseCase,
	tokens *TokenManager,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		placeUC:   placeUC,
		polygonUC: polygonUC,
		chatUC:    chatUC,
		tokens:    tokens,
		log:       logger,
	}
}

// Router builds the chi mux with the shared middleware stack. timeout bounds
// each request including the model call.
func (s *Server) Router(timeout time.Duration) *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID(s.log))
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))
	r.Use(Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/place/resolve", s.handleResolvePlace)
		r.Post("/polygon/interpret", s.handleInterpretPolygon)
		r.Post("/chat", s.handleChat)
	})
	return r
}
