package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/flightdelay/internal/dashboard"
	"github.com/sells-group/flightdelay/internal/filter"
	"github.com/sells-group/flightdelay/internal/model"
	"github.com/sells-group/flightdelay/internal/render"
)

// Option is one entry of a filter widget.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// DomainsResponse lists the selectable options of both filters, All first.
type DomainsResponse struct {
	Airports []Option `json:"airports"`
	Airlines []Option `json:"airlines"`
}

// FilterView is one dimension's current selection.
type FilterView struct {
	Selected      []string `json:"selected"`
	MaxSelections int      `json:"max_selections"`
}

// SessionView describes a session and its filters.
type SessionView struct {
	ID        string                `json:"id"`
	CreatedAt time.Time             `json:"created_at"`
	Filters   map[string]FilterView `json:"filters"`
	Changed   *bool                 `json:"changed,omitempty"`
}

type filterRequest struct {
	Keys []string `json:"keys"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	ds, err := s.manager.Dataset(r.Context())
	if err != nil {
		s.internalError(w, "load dataset", err)
		return
	}
	writeJSON(w, http.StatusOK, Domains(ds))
}

// Domains builds the option lists the way the widgets label them: "All"
// for the sentinel and display names for keys.
func Domains(ds *model.Dataset) DomainsResponse {
	resp := DomainsResponse{
		Airports: []Option{{Key: filter.All, Label: "All"}},
		Airlines: []Option{{Key: filter.All, Label: "All"}},
	}
	for _, code := range ds.OriginDomain() {
		resp.Airports = append(resp.Airports, Option{Key: code, Label: ds.AirportName(code)})
	}
	for _, id := range ds.AirlineDomain() {
		resp.Airlines = append(resp.Airlines, Option{Key: id, Label: ds.AirlineName(id)})
	}
	return resp
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.manager.Reload(r.Context())
	if err != nil {
		s.internalError(w, "reload dataset", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "reloaded",
		"flights":  len(ds.Flights),
		"sessions": len(s.manager.IDs()),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Create(r.Context())
	if err != nil {
		s.internalError(w, "create session", err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, sessionView(sess, nil))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionView(sess, nil))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	dim, err := filter.ParseDimension(chi.URLParam(r, "dimension"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown filter dimension")
		return
	}

	var req filterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	changed := sess.ApplyFilter(dim, req.Keys)
	writeJSON(w, http.StatusOK, sessionView(sess, &changed))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	report := sess.Report()

	switch format := r.URL.Query().Get("format"); format {
	case "", render.FormatJSON:
		writeJSON(w, http.StatusOK, render.NewDocument(report, s.opts.Thresholds))
	case render.FormatYAML, render.FormatText:
		ct := "application/yaml"
		if format == render.FormatText {
			ct = "text/plain; charset=utf-8"
		}
		w.Header().Set("Content-Type", ct)
		w.WriteHeader(http.StatusOK)
		if err := render.Write(w, format, report, s.opts.Thresholds); err != nil {
			zap.L().Warn("server: write report", zap.Error(err))
		}
	default:
		writeError(w, http.StatusBadRequest, "unsupported format")
	}
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	b, err := render.BubbleMapJSON(sess.Report().Airports)
	if err != nil {
		s.internalError(w, "encode map", err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// session resolves the {id} parameter, writing a 404 when it is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*dashboard.Session, bool) {
	sess, err := s.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		if eris.Is(err, dashboard.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
		} else {
			s.internalError(w, "get session", err)
		}
		return nil, false
	}
	return sess, true
}

func sessionView(sess *dashboard.Session, changed *bool) SessionView {
	st := sess.State()
	view := SessionView{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		Filters:   make(map[string]FilterView, 2),
		Changed:   changed,
	}
	for _, d := range []filter.Dimension{filter.DimensionAirport, filter.DimensionAirline} {
		sel := st.Selection(d)
		view.Filters[string(d)] = FilterView{Selected: sel.Raw(), MaxSelections: sel.MaxSelections}
	}
	return view
}

func (s *Server) internalError(w http.ResponseWriter, action string, err error) {
	zap.L().Error("server: "+action, zap.Error(err))
	writeError(w, http.StatusInternalServerError, action+" failed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
