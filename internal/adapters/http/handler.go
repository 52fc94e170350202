package httpadapter

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/PabloGalante/axiomqa/internal/app/citation"
	"github.com/PabloGalante/axiomqa/internal/domain"
	"github.com/PabloGalante/axiomqa/internal/observability"
)

// QA is the question-answering surface the server exposes; *qa.Engine
// implements it.
type QA interface {
	Invoke(ctx context.Context, question string) (string, error)
	InvokeStreaming(ctx context.Context, question string) iter.Seq2[domain.ResponseChunk, error]
}

type Server struct {
	qa     QA
	axioms domain.AxiomStore
}

func NewServer(qa QA, axioms domain.AxiomStore) http.Handler {
	s := &Server{qa: qa, axioms: axioms}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /axioms → list (GET)
	mux.HandleFunc("/axioms", s.handleAxioms)

	// /axioms/{id} → one axiom (GET)
	mux.HandleFunc("/axioms/", s.handleAxiomWithID)

	// /ask → full answer (POST)
	mux.HandleFunc("/ask", s.handleAsk)

	// /ask/stream → text/event-stream (POST)
	mux.HandleFunc("/ask/stream", s.handleAskStream)

	return chainMiddlewares(mux, withLogging, withRequestID, withCORS)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type axiomsResponse struct {
	Axioms []domain.Axiom `json:"axioms"`
}

type textEvent struct {
	Content string `json:"content"`
}

type citationEvent struct {
	Axiom domain.Axiom `json:"axiom"`
}

type referencesEvent struct {
	Axioms []domain.Axiom `json:"axioms"`
}

type errorEvent struct {
	Error string `json:"error"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAxioms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, axiomsResponse{Axioms: s.axioms.List()})
}

func (s *Server) handleAxiomWithID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/axioms/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	a, ok := s.axioms.Get(domain.AxiomID(id))
	if !ok {
		writeError(w, r, errors.Mark(errors.Newf("axiom %q not found", id), domain.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	question, ok := decodeQuestion(w, r)
	if !ok {
		return
	}

	answer, err := s.qa.Invoke(r.Context(), question)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

// handleAskStream relays the classified answer as server-sent events:
// text and citation events in model order, then one references event with
// the distinct cited axioms, then done. A failure after the stream has
// started is reported as an error event.
func (s *Server) handleAskStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	question, ok := decodeQuestion(w, r)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(event string, v any) bool {
		if err := writeEvent(w, event, v); err != nil {
			return false
		}
		return rc.Flush() == nil
	}

	var refs citation.References
	for chunk, err := range s.qa.InvokeStreaming(r.Context(), question) {
		if err != nil {
			logError(r, err)
			send("error", errorEvent{Error: publicMessage(err)})
			return
		}

		var sent bool
		switch c := chunk.(type) {
		case domain.CitationContent:
			refs.Observe(c)
			sent = send("citation", citationEvent{Axiom: c.Axiom})
		default:
			sent = send("text", textEvent{Content: c.Text()})
		}
		if !sent {
			// Client went away; leaving the loop releases the upstream.
			return
		}
	}

	if !send("references", referencesEvent{Axioms: refs.Axioms()}) {
		return
	}
	send("done", struct{}{})
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func decodeQuestion(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return "", false
	}
	if strings.TrimSpace(req.Question) == "" {
		badRequest(w, "question is required")
		return "", false
	}
	return req.Question, true
}

func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write([]byte("event: " + event + "\ndata: " + string(data) + "\n\n"))
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}

// statusFor maps the domain error classes to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides causes of upstream and internal failures; they may
// carry provider responses or credentials context.
func publicMessage(err error) string {
	switch statusFor(err) {
	case http.StatusBadRequest, http.StatusNotFound:
		return err.Error()
	case http.StatusBadGateway:
		return "upstream model error"
	default:
		return "internal server error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logError(r, err)
	}
	writeJSON(w, status, map[string]string{
		"error": publicMessage(err),
	})
}

func logError(r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)
}
