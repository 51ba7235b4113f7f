package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/hostwatch/internal/domain"
	mw "github.com/hamed0406/hostwatch/internal/httpapi/middleware"
	"github.com/hamed0406/hostwatch/internal/probe"
)

// Monitor is the scheduler surface the API drives.
type Monitor interface {
	Hosts() []domain.Host
	StartHost(h domain.Host)
	StopHost(id domain.HostID)
	Subscribe() (<-chan domain.ProbeResult, func())
}

// HistoryReader is the read surface of the in-memory store.
type HistoryReader interface {
	ExportSnapshot() []domain.HostSummary
	Recent(n int) []domain.ProbeResult
}

// ArchiveReader serves long-term history. nil when archiving is off.
type ArchiveReader interface {
	Recent(ctx context.Context, address string, since time.Time) ([]domain.ProbeResult, error)
}

type Server struct {
	Logger     *zap.Logger
	Monitor    Monitor
	History    HistoryReader
	Archive    ArchiveReader
	Keys       mw.Keys
	RatePerMin int
	Burst      int

	// newProber is swappable for tests.
	newProber func(domain.ProbeConfig) probe.Prober
}

func NewServer(l *zap.Logger, m Monitor, h HistoryReader, a ArchiveReader, keys mw.Keys, ratePerMin, burst int) *Server {
	return &Server{
		Logger:     l,
		Monitor:    m,
		History:    h,
		Archive:    a,
		Keys:       keys,
		RatePerMin: ratePerMin,
		Burst:      burst,
		newProber:  probe.New,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(mw.RateLimit(s.RatePerMin, s.Burst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(s.Keys))
		r.Get("/api/hosts", s.handleListHosts)
		r.Get("/api/snapshot", s.handleSnapshot)
		r.Get("/api/history", s.handleHistory)
		r.Get("/api/archive", s.handleArchive)
		r.Get("/api/live", s.handleLive)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAdmin(s.Keys))
		r.Post("/api/hosts", s.handleAddHost)
		r.Delete("/api/hosts/{id}", s.handleRemoveHost)
	})

	return r
}

func (s *Server) handleListHosts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Monitor.Hosts())
}

// handleSnapshot is the export surface consumed by widget/UI collaborators.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.History.ExportSnapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.History.Recent(limit))
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if s.Archive == nil {
		http.Error(w, "archive disabled", http.StatusNotFound)
		return
	}
	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "bad hours", http.StatusBadRequest)
			return
		}
		hours = n
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	rows, err := s.Archive.Recent(r.Context(), r.URL.Query().Get("address"), since)
	if err != nil {
		s.Logger.Warn("archive_query_failed", zap.Error(err))
		http.Error(w, "archive error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleAddHost(w http.ResponseWriter, r *http.Request) {
	var h domain.Host
	if err := json.NewDecoder(r.Body).Decode(&h); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	if h.ID == "" {
		h.ID = domain.HostID(time.Now().UTC().Format("20060102T150405.000000000"))
	}
	h.Enabled = true
	if err := h.Normalize(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.Monitor.StartHost(h)

	// Run a single probe synchronously for immediate feedback.
	out := s.newProber(h.Probe).Probe(r.Context(), h.Address)
	out.Name = h.Name

	s.Logger.Info("host_added",
		zap.String("host_id", string(h.ID)),
		zap.String("address", h.Address),
		zap.String("status", string(out.Status)),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"host": h, "result": out,
	})
}

func (s *Server) handleRemoveHost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	s.Monitor.StopHost(domain.HostID(id))
	s.Logger.Info("host_removed", zap.String("host_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
