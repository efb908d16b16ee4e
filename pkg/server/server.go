// Package server exposes a game session over HTTP: JSON endpoints for every
// intent, a websocket stream of updates and the territory estimation
// contract of the analysis service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"weixiang/pkg/core"
	"weixiang/pkg/estimate"
	"weixiang/pkg/game"
	"weixiang/pkg/grid"
	"weixiang/pkg/xiangqi"
)

const maxJSONBodyBytes int64 = 1 << 20

type Options struct {
	Session *Session
	Hub     *Hub
	Logger  *zap.Logger
	// Estimator serves POST /api/estimate-territory; nil disables it.
	Estimator estimate.Estimator
	// Alive reports whether the analysis engine is running for /health.
	Alive func() bool
}

type Server struct {
	session   *Session
	hub       *Hub
	log       *zap.Logger
	estimator estimate.Estimator
	alive     func() bool

	srv *http.Server
}

func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	hub := opts.Hub
	if hub == nil {
		hub = NewHub(log)
	}
	alive := opts.Alive
	if alive == nil {
		alive = func() bool { return false }
	}
	return &Server{
		session:   opts.Session,
		hub:       hub,
		log:       log,
		estimator: opts.Estimator,
		alive:     alive,
	}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get(estimate.HealthPath, s.handleHealth)
	r.Get("/ws", s.serveWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(limitBody)
		r.Get("/state", s.handleState)
		r.Get("/moves", s.handleMoves)
		r.Post("/stone", s.handleStone)
		r.Post("/fortress", s.handleFortress)
		r.Post("/fortress/skip", s.handleIntent(func(g *game.Game) error { return g.SkipFortress() }))
		r.Post("/summon", s.handleSummon)
		r.Post("/move", s.handleMove)
		r.Post("/battle/end", s.handleIntent(func(g *game.Game) error { return g.EndBattle() }))
		r.Post("/undo", s.handleIntent(func(g *game.Game) error { return g.Undo() }))
		r.Post("/new", s.handleIntent(func(g *game.Game) error { g.NewGame(); return nil }))
		r.Post("/estimate-territory", s.handleEstimate)
	})
	return r
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.log.Info("listening", zap.String("addr", addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Warn("graceful shutdown failed", zap.Error(err))
		return s.srv.Close()
	}
	return nil
}

type stateResponse struct {
	State   game.Update `json:"state"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type moveBody struct {
	From grid.Point `json:"from"`
	To   grid.Point `json:"to"`
}

type summonBody struct {
	Piece xiangqi.PieceType `json:"piece"`
}

type movesResponse struct {
	From  grid.Point   `json:"from"`
	Moves []grid.Point `json:"moves"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var u game.Update
	if err := s.session.Do(r.Context(), func(g *game.Game) { u = g.State() }); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: u})
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	row, errRow := strconv.Atoi(r.URL.Query().Get("row"))
	col, errCol := strconv.Atoi(r.URL.Query().Get("col"))
	if errRow != nil || errCol != nil {
		writeError(w, http.StatusBadRequest, "row and col are required")
		return
	}
	from := grid.Point{Row: row, Col: col}
	resp := movesResponse{From: from, Moves: []grid.Point{}}
	if err := s.session.Do(r.Context(), func(g *game.Game) {
		if moves := g.LegalMoves(from); moves != nil {
			resp.Moves = moves
		}
	}); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStone(w http.ResponseWriter, r *http.Request) {
	var p grid.Point
	if !decode(w, r, &p) {
		return
	}
	s.apply(w, r, func(g *game.Game) error { return g.PlaceStone(p.Row, p.Col) })
}

func (s *Server) handleFortress(w http.ResponseWriter, r *http.Request) {
	var p grid.Point
	if !decode(w, r, &p) {
		return
	}
	s.apply(w, r, func(g *game.Game) error { return g.PlaceFortress(p.Row, p.Col) })
}

func (s *Server) handleSummon(w http.ResponseWriter, r *http.Request) {
	var body summonBody
	if !decode(w, r, &body) {
		return
	}
	s.apply(w, r, func(g *game.Game) error { return g.Summon(body.Piece) })
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var body moveBody
	if !decode(w, r, &body) {
		return
	}
	s.apply(w, r, func(g *game.Game) error { return g.MovePiece(body.From, body.To) })
}

func (s *Server) handleIntent(fn func(*game.Game) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.apply(w, r, fn)
	}
}

// apply runs fn on the session and answers with the resulting state. Rule
// rejections answer 409 with the rejection code.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, fn func(*game.Game) error) {
	var (
		u      game.Update
		intent error
	)
	if err := s.session.Do(r.Context(), func(g *game.Game) {
		intent = fn(g)
		u = g.State()
	}); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if intent != nil {
		writeJSON(w, http.StatusConflict, stateResponse{State: u, Error: core.Code(intent), Message: intent.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: u})
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if s.estimator == nil {
		writeError(w, http.StatusServiceUnavailable, "no estimator configured")
		return
	}
	var req estimate.Request
	if !decode(w, r, &req) {
		return
	}
	t, err := s.estimator.Estimate(r.Context(), req)
	if err != nil {
		s.log.Warn("estimate failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, estimate.Response{Territories: t})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, estimate.Health{Status: "ok", KatagoRunning: s.alive()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	return true
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
