package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hydrosight/ipastat/internal/config"
	"github.com/hydrosight/ipastat/internal/indicator"
	"github.com/hydrosight/ipastat/internal/loader"
	"github.com/hydrosight/ipastat/internal/scoring"
	"github.com/hydrosight/ipastat/internal/store"
)

// api wires the calculation endpoints to the indicator engine and the
// session store.
type api struct {
	store   store.Store
	limits  config.LimitsConfig
	limiter *rate.Limiter
}

func newAPI(st store.Store, limits config.LimitsConfig) *api {
	if limits.UploadMaxBytes <= 0 {
		limits.UploadMaxBytes = 16 << 20
	}
	if limits.RequestsPerSec <= 0 {
		limits.RequestsPerSec = 5
	}
	if limits.Burst <= 0 {
		limits.Burst = 10
	}
	return &api{
		store:   st,
		limits:  limits,
		limiter: rate.NewLimiter(rate.Limit(limits.RequestsPerSec), limits.Burst),
	}
}

// router builds the HTTP surface. Endpoint shapes mirror the legacy
// backend: multipart "file" uploads, form-encoded cca/crop_id parameters,
// and an {"error": msg} failure envelope.
func (a *api) router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(a.logRequests)

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(a.rateLimit)
		r.Post("/api/adequacy", a.handleIndicator(indicator.KindAdequacy))
		r.Post("/api/productivity", a.handleIndicator(indicator.KindProductivity))
		r.Post("/api/equity", a.handleIndicator(indicator.KindEquity))
		r.Post("/api/cropping-intensity", a.handleIndicator(indicator.KindCroppingIntensity))
		r.Post("/api/irrigation-utilization", a.handleIndicator(indicator.KindIrrigationUtilization))
		r.Post("/api/indicators", a.handleAllIndicators)
		r.Post("/api/score", a.handleScore)
	})

	r.Get("/api/runs", a.handleListRuns)

	return r
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r)
	})
}

func (a *api) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// calcInput parses the multipart upload shared by the calculation
// endpoints.
func (a *api) calcInput(r *http.Request, needCCA bool) (indicator.Request, error) {
	var req indicator.Request

	if err := r.ParseMultipartForm(a.limits.UploadMaxBytes); err != nil {
		return req, errors.New("invalid multipart request")
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return req, errors.New("no file provided")
	}
	defer file.Close()

	rows, err := loader.ParseCSV(r.Context(), file, loader.Options{})
	if err != nil {
		return req, err
	}
	req.Rows = rows

	if v := r.FormValue("cca"); v != "" {
		cca, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, errors.New("cca must be a number")
		}
		req.CCA = cca
	}
	if needCCA && req.CCA <= 0 {
		return req, errors.New("valid cca (Culturable Command Area) is required")
	}

	if v := r.FormValue("crop_id"); v != "" {
		cropID, err := strconv.Atoi(v)
		if err != nil {
			return req, errors.New("crop_id must be an integer")
		}
		req.CropID = cropID
	}

	return req, nil
}

func (a *api) handleIndicator(kind indicator.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := a.calcInput(r, kind.NeedsCCA())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Kind = kind

		run := a.startRun(r, kind)
		res, err := indicator.Compute(req)
		if err != nil {
			a.finishRun(r, run, nil, err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		a.finishRun(r, run, res, nil)
		writeJSON(w, http.StatusOK, res)
	}
}

// handleAllIndicators computes all five indicators concurrently. Partial
// failures are reported per indicator rather than failing the request.
func (a *api) handleAllIndicators(w http.ResponseWriter, r *http.Request) {
	req, err := a.calcInput(r, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	type slot struct {
		Result *indicator.Result `json:"result,omitempty"`
		Error  string            `json:"error,omitempty"`
	}
	out := make(map[indicator.Kind]*slot, len(indicator.Kinds))
	for _, kind := range indicator.Kinds {
		out[kind] = &slot{}
	}

	var g errgroup.Group
	for _, kind := range indicator.Kinds {
		kind := kind
		g.Go(func() error {
			kreq := req
			kreq.Kind = kind
			res, err := indicator.Compute(kreq)
			if err != nil {
				out[kind].Error = err.Error()
				return nil
			}
			out[kind].Result = res
			return nil
		})
	}
	_ = g.Wait()

	writeJSON(w, http.StatusOK, out)
}

func (a *api) handleScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Observed       *float64 `json:"observed"`
		Critical       float64  `json:"critical"`
		Target         float64  `json:"target"`
		HigherIsBetter bool     `json:"higher_is_better"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s := scoring.ScoreValue(req.Observed, req.Critical, req.Target, req.HigherIsBetter)
	writeJSON(w, http.StatusOK, map[string]int{"score": s})
}

func (a *api) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeJSON(w, http.StatusOK, []store.Run{})
		return
	}

	filter := store.RunFilter{
		Indicator: r.URL.Query().Get("indicator"),
		Status:    store.RunStatus(r.URL.Query().Get("status")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	runs, err := a.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// startRun records the calculation in the session store. Store failures
// only cost history, not the calculation.
func (a *api) startRun(r *http.Request, kind indicator.Kind) *store.Run {
	if a.store == nil {
		return nil
	}
	run, err := a.store.CreateRun(r.Context(), "", string(kind))
	if err != nil {
		zap.L().Warn("create run failed", zap.Error(err))
		return nil
	}
	return run
}

func (a *api) finishRun(r *http.Request, run *store.Run, res *indicator.Result, calcErr error) {
	if a.store == nil || run == nil {
		return
	}
	if calcErr != nil {
		if err := a.store.FailRun(r.Context(), run.ID, calcErr.Error()); err != nil {
			zap.L().Warn("fail run failed", zap.Error(err))
		}
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		zap.L().Warn("marshal run result failed", zap.Error(err))
		return
	}
	if err := a.store.CompleteRun(r.Context(), run.ID, string(payload)); err != nil {
		zap.L().Warn("complete run failed", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
