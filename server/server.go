// Package server exposes chart conversion over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/leafo/usdxmidi/usdx"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// MaxChartSize bounds uploaded chart bodies
const MaxChartSize = 4 << 20

// Options configure a Server
type Options struct {
	// WorkDir holds the per request staging directories, defaults to os.TempDir()
	WorkDir        string
	AllowedOrigins []string
	Logger         logrus.FieldLogger
}

// Server converts uploaded charts
type Server struct {
	workDir string
	origins []string
	log     logrus.FieldLogger
}

// rejection is the body of a 422 response
type rejection struct {
	Accepted bool                 `json:"accepted"`
	Reason   usdx.RejectionReason `json:"reason"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a Server
func New(opts Options) *Server {
	s := &Server{
		workDir: opts.WorkDir,
		origins: opts.AllowedOrigins,
		log:     opts.Logger,
	}
	if s.workDir == "" {
		s.workDir = os.TempDir()
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

// Handler returns the routed, CORS wrapped handler
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/convert", s.HandleConvert).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	return cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		ExposedHeaders: []string{"X-Chart-Title", "X-Chart-Notes"},
	}).Handler(router)
}

// ListenAndServe serves Handler on addr
func (s *Server) ListenAndServe(addr string) error {
	s.log.WithField("addr", addr).Info("listening")
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// HandleConvert takes the chart as the request body and answers with the
// MIDI file. Pass ?lyrics=1 to include lyric events.
func (s *Server) HandleConvert(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()
	log := s.log.WithField("request", id)

	chart, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxChartSize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "could not read chart: " + err.Error()})
		return
	}
	if len(chart) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "empty chart"})
		return
	}

	// conversion works on paths, so each request gets its own directory
	dir := filepath.Join(s.workDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.WithError(err).Error("could not create staging directory")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	defer os.RemoveAll(dir)

	chartPath := filepath.Join(dir, "chart.txt")
	if err := os.WriteFile(chartPath, chart, 0o644); err != nil {
		log.WithError(err).Error("could not stage chart")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	conv := usdx.NewConverter(dir)
	conv.Lyrics = r.URL.Query().Get("lyrics") == "1"
	conv.Logger = log

	outcome, err := conv.ConvertTo(chartPath, filepath.Join(dir, "chart.mid"))
	if err != nil {
		status := http.StatusInternalServerError
		if isChartError(err) {
			status = http.StatusBadRequest
		}
		log.WithError(err).Warn("conversion failed")
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	if !outcome.Verdict.Accepted {
		writeJSON(w, http.StatusUnprocessableEntity, rejection{Accepted: false, Reason: outcome.Verdict.Reason})
		return
	}

	midiData, err := os.ReadFile(outcome.MidiPath)
	if err != nil {
		log.WithError(err).Error("could not read converted file")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	log.WithField("notes", len(outcome.Document.Notes)).Info("converted")

	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("X-Chart-Title", outcome.Document.Title())
	w.Header().Set("X-Chart-Notes", fmt.Sprint(len(outcome.Document.Notes)))
	w.WriteHeader(http.StatusOK)
	w.Write(midiData)
}

// isChartError is true for errors caused by the chart's contents
func isChartError(err error) bool {
	return errors.Is(err, usdx.ErrDecode) ||
		errors.Is(err, usdx.ErrParse) ||
		errors.Is(err, usdx.ErrNegativeOnset) ||
		errors.Is(err, usdx.ErrPitchRange) ||
		errors.Is(err, usdx.ErrTickRange) ||
		errors.Is(err, usdx.ErrInvalidTempo)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
