// Package api exposes the profile pipeline over HTTP. Requests carry the
// query as JSON; successful responses are the plain-text report.
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nyue/xssp/hssp"
	"github.com/nyue/xssp/stockholm"
)

// NewRouter returns the API router backed by the given pipeline.
func NewRouter(p *hssp.Pipeline) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api/profile", func(r chi.Router) {
		r.Post("/from-sequence", fromSequenceHandler(p))
		r.Post("/from-alignment", fromAlignmentHandler(p))
	})

	return r
}

// SequenceRequest is the body of a from-sequence request.
type SequenceRequest struct {
	Sequence string `json:"sequence"`
}

// AlignmentRequest is the body of a from-alignment request: a complete
// Stockholm 1.0 alignment whose first entry is the query.
type AlignmentRequest struct {
	Alignment string `json:"alignment"`
}

func fromSequenceHandler(p *hssp.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SequenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error": "invalid request body"}`,
				http.StatusBadRequest)
			return
		}

		var buf bytes.Buffer
		if err := p.FromSequence(req.Sequence, &buf); err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write(buf.Bytes())
	}
}

func fromAlignmentHandler(p *hssp.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AlignmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error": "invalid request body"}`,
				http.StatusBadRequest)
			return
		}

		aln, _, err := stockholm.Read(strings.NewReader(req.Alignment))
		if err != nil {
			writeError(w, err)
			return
		}

		prot := &hssp.Protein{
			ID: "UNKN",
			Chains: []*hssp.Chain{
				hssp.NewChain('A', aln.Ungapped(0)),
			},
		}
		alns := []hssp.ChainAlignment{{ChainID: 'A', Alignment: aln}}

		var buf bytes.Buffer
		if err := p.FromAlignments(prot, alns, &buf); err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write(buf.Bytes())
	}
}

// writeError maps pipeline errors to HTTP status codes. Malformed input is
// the client's fault; anything else is ours.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch err.(type) {
	case stockholm.FormatError, stockholm.MismatchError,
		hssp.EmptySequenceError:
		code = http.StatusBadRequest
	}
	http.Error(w, err.Error(), code)
}
