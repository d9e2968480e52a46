package deliveryeta

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/zlocal/deliveryeta-service/internal/common"
	t "github.com/zlocal/deliveryeta-service/internal/types"
)

type errorBody struct {
	Error string `json:"error"`
}

func (s *Service) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.RootHandler)
	mux.HandleFunc("/health", s.HealthHandler)
	mux.HandleFunc("/history", s.HistoryHandler)
	mux.HandleFunc("/predict-eta", s.PredictHandler)

	port := os.Getenv("port")
	if port == "" {
		port = "8000"
	}
	return http.ListenAndServe(":"+port, s.withRequestID(mux))
}

// withRequestID tags every request with an id, logs an access line and
// converts panics into opaque 500s.
func (s *Service) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)

		defer func() {
			if rec := recover(); rec != nil {
				s.Logger.Errorw("panic recovered",
					"request_id", id, "path", r.URL.Path, "panic", rec)
				w.WriteHeader(http.StatusInternalServerError)
				io.WriteString(w, "Internal server error")
			}
		}()

		start := time.Now()
		next.ServeHTTP(w, r)
		s.Logger.Infow("request handled",
			"request_id", id, "method", r.Method, "path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func (s *Service) PredictHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, common.CodeError{Code: 405, Msg: "Method not allowed"})
		return
	}

	var req t.DeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, common.CodeError{Code: 400, Msg: "Malformed request body"})
		return
	}

	resp, err := s.Estimate(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":           "healthy",
		"model_configured": s.modelConfigured,
		"timestamp":        s.now().Format(time.RFC3339),
	})
}

func (s *Service) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit := int64(20)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > 1000 {
			s.writeError(w, common.CodeError{Code: 400, Msg: "'limit' parameter must be an integer between 1 and 1000"})
			return
		}
		limit = n
	}

	entries, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"estimates": entries})
}

func (s *Service) RootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, common.CodeError{Code: 404, Msg: "Not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "DeliveryETA API is running",
		"status":  "healthy",
	})
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	var codeErr common.CodeError
	if errors.As(err, &codeErr) {
		s.writeJSON(w, codeErr.Code, errorBody{Error: codeErr.Error()})
		return
	}
	s.Logger.Errorw("internal error", "error", err)
	w.WriteHeader(http.StatusInternalServerError)
	io.WriteString(w, "Internal server error")
}

func (s *Service) writeJSON(w http.ResponseWriter, code int, body any) {
	bodyBytes, _ := json.Marshal(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(bodyBytes)
}
