package server

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"voxlis/internal/report"
	"voxlis/internal/resolve"
)

// maxNameLength bounds executor names accepted in paths.
const maxNameLength = 64

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._\-]*$`)

func checkName(name string) bool {
	return name != "" && len(name) <= maxNameLength && validName.MatchString(name)
}

const (
	cacheReport  = "public, s-maxage=300, stale-while-revalidate=600"
	cacheListing = "public, max-age=15"
)

func (s *Server) handleUncTest(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if !checkName(name) {
		writeError(w, http.StatusBadRequest, "Invalid executor name")
		return
	}
	kind := report.ParseKind(r.URL.Query().Get("type"))

	rep, status, err := s.svc.Report(r.Context(), name, kind)
	if err != nil {
		var nf *resolve.NotFoundError
		if errors.As(err, &nf) {
			writeJSON(w, http.StatusNotFound, notFoundBody(nf))
			return
		}
		s.logger.ErrorContext(r.Context(), "report failed", "executor", name, "kind", kind,
			"request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch test data")
		return
	}

	w.Header().Set("X-Cache", string(status))
	w.Header().Set("Cache-Control", cacheReport)
	writeJSON(w, http.StatusOK, rep)
}

func notFoundBody(nf *resolve.NotFoundError) errorBody {
	switch {
	case nf.Reason == resolve.ReasonUnknownExecutor:
		return errorBody{
			Error: "Executor not found in WEAO database",
			Hint:  "This executor may not be tracked by WEAO",
		}
	case nf.Kind == report.KindSecure:
		return errorBody{Error: "No sUNC test data available for this executor"}
	default:
		return errorBody{Error: "Test data not available"}
	}
}

func (s *Server) handleExploits(w http.ResponseWriter, r *http.Request) {
	list, status, err := s.svc.Resolver().Listing(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "listing failed", "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch exploit data")
		return
	}
	w.Header().Set("X-Cache", string(status))
	w.Header().Set("Cache-Control", cacheListing)
	writeRawJSON(w, http.StatusOK, list.Raw)
}

func (s *Server) handleExploit(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if !checkName(name) {
		writeError(w, http.StatusBadRequest, "Invalid executor name")
		return
	}
	body, err := s.status.Exploit(r.Context(), name)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "exploit lookup failed", "executor", name,
			"request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch exploit data")
		return
	}
	w.Header().Set("Cache-Control", cacheListing)
	writeRawJSON(w, http.StatusOK, body)
}

func (s *Server) handleRobloxVersion(w http.ResponseWriter, r *http.Request) {
	body, err := s.status.RobloxVersion(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "version lookup failed", "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch version data")
		return
	}
	writeRawJSON(w, http.StatusOK, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status    string `json:"status"`
		Timestamp int64  `json:"timestamp"`
	}{"ok", s.now().UnixMilli()})
}
