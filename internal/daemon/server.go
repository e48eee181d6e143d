package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/stephencockerill/oink/internal/backup"
	"github.com/stephencockerill/oink/internal/model"
	"github.com/stephencockerill/oink/internal/reminder"
)

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.loggingMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/summary", s.handleSummary)
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/reminder", s.handleReminder)
		r.Post("/reminder", s.handleSendReminder)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
		r.Get("/export", s.handleExport)

		r.Post("/checkins", s.handleCheckin)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)

		r.Route("/cashouts", func(r chi.Router) {
			r.Get("/", s.handleListCashOuts)
			r.Post("/", s.handleCreateCashOut)
			r.Put("/{id}", s.handleUpdateCashOut)
			r.Delete("/{id}", s.handleDeleteCashOut)
		})

		r.Route("/freezes", func(r chi.Router) {
			r.Post("/", s.handleAcquireFreeze)
			r.Post("/use", s.handleUseFreeze)
		})
	})

	return r
}

// loggingMiddleware logs HTTP requests and counts them.
func (s *Service) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		s.metrics.Requests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	if ve, ok := model.IsValidation(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Code: ve.Code, Message: ve.Message})
		return
	}
	if errors.Is(err, model.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "not_found", Message: err.Error()})
		return
	}
	s.log.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorBody{Code: "internal", Message: "internal error"})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.Invalid(model.CodeInvalidBody, "invalid request body: %v", err)
	}
	return nil
}

// decodeOptional is decode for requests whose fields are all optional: an
// empty body leaves v untouched.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return model.Invalid(model.CodeInvalidBody, "invalid request body: %v", err)
	}
	return nil
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.bank.Summary(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Service) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.bank.Latest(); ok && snap.Today == s.bank.Today() {
		writeJSON(w, http.StatusOK, snap)
		return
	}
	snap, err := s.bank.Refresh(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type reminderStatus struct {
	Today         model.Date       `json:"today"`
	NeedsReminder bool             `json:"needs_reminder"`
	Urgency       reminder.Urgency `json:"urgency"`
}

func (s *Service) handleReminder(w http.ResponseWriter, r *http.Request) {
	need, err := s.bank.NeedsReminder(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reminderStatus{
		Today:         s.bank.Today(),
		NeedsReminder: need,
		Urgency:       reminder.UrgencyAt(s.bank.Now(), need),
	})
}

// handleSendReminder runs the daily reminder job immediately. The job only
// notifies when today still needs a workout.
func (s *Service) handleSendReminder(w http.ResponseWriter, r *http.Request) {
	if err := s.scheduler.RunNow(s.reminderJob); err != nil {
		s.writeError(w, err)
		return
	}
	s.handleReminder(w, r)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.eventsCopy())
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	if snap, ok := s.bank.Latest(); ok {
		writeSSE(w, Event{Type: EventSnapshot, Timestamp: time.Now(), Snapshot: &snap})
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

type checkinRequest struct {
	Date      *model.Date  `json:"date,omitempty"`
	Dates     []model.Date `json:"dates,omitempty"`
	Exercised bool         `json:"exercised"`
}

func (s *Service) handleCheckin(w http.ResponseWriter, r *http.Request) {
	var req checkinRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	if len(req.Dates) > 0 {
		n, err := s.bank.BulkRecord(r.Context(), req.Dates, req.Exercised)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"written": n})
		return
	}

	date := s.bank.Today()
	if req.Date != nil {
		date = *req.Date
	}
	entry, err := s.bank.RecordOutcome(r.Context(), date, req.Exercised)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type settingsResponse struct {
	model.Settings
	MaxFreezes int `json:"max_freezes"`
}

func (s *Service) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.bank.Settings(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: st, MaxFreezes: s.bank.MaxFreezes()})
}

type settingsRequest struct {
	RewardRate       *decimal.Decimal `json:"reward_rate,omitempty"`
	AvailableFreezes *int             `json:"available_freezes,omitempty"`
}

func (s *Service) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.RewardRate != nil {
		if err := s.bank.SetRewardRate(r.Context(), *req.RewardRate); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.AvailableFreezes != nil {
		if err := s.bank.SetAvailableFreezes(r.Context(), *req.AvailableFreezes); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.handleGetSettings(w, r)
}

type cashOutRequest struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Emoji  string          `json:"emoji,omitempty"`
}

func (s *Service) handleListCashOuts(w http.ResponseWriter, r *http.Request) {
	list, err := s.bank.CashOuts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []model.Deduction{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Service) handleCreateCashOut(w http.ResponseWriter, r *http.Request) {
	var req cashOutRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	d, err := s.bank.CashOut(r.Context(), req.Label, req.Amount, req.Emoji)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Service) handleUpdateCashOut(w http.ResponseWriter, r *http.Request) {
	var req cashOutRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	d, err := s.bank.UpdateCashOut(r.Context(), chi.URLParam(r, "id"), req.Label, req.Amount, req.Emoji)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Service) handleDeleteCashOut(w http.ResponseWriter, r *http.Request) {
	if err := s.bank.DeleteCashOut(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleAcquireFreeze(w http.ResponseWriter, r *http.Request) {
	n, err := s.bank.AcquireFreeze(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"available_freezes": n})
}

type useFreezeRequest struct {
	Date *model.Date `json:"date,omitempty"`
}

func (s *Service) handleUseFreeze(w http.ResponseWriter, r *http.Request) {
	var req useFreezeRequest
	if err := decodeOptional(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	var date model.Date
	if req.Date != nil {
		date = *req.Date
	} else {
		snap, err := s.bank.Refresh(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		if snap.MissedDayForFreeze == nil {
			s.writeError(w, model.Invalid(model.CodeInvalidDate, "no missed day in the last week to freeze"))
			return
		}
		date = *snap.MissedDayForFreeze
	}
	cost, err := s.bank.UseFreeze(r.Context(), date)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "cost": cost})
}

func (s *Service) handleExport(w http.ResponseWriter, r *http.Request) {
	archive, err := s.bank.Export(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", `attachment; filename="oink-backup.jsonl"`)
	if err := backup.Write(w, archive, time.Now()); err != nil {
		s.log.Warn().Err(err).Msg("writing export")
	}
}
