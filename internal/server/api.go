package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/n0roo/richness-kit/internal/analytics"
	"github.com/n0roo/richness-kit/internal/persona"
	"github.com/n0roo/richness-kit/internal/richness"
)

// DevicesResponse is the body of GET /api/devices
type DevicesResponse struct {
	Source  string            `json:"source"`
	Total   int               `json:"total"`
	Matched int               `json:"matched"`
	Count   int               `json:"count"`
	Devices []richness.Record `json:"devices"`
}

// DeviceResponse is the body of GET /api/devices/{id}
type DeviceResponse struct {
	Device   richness.Record   `json:"device"`
	Personas []persona.Persona `json:"personas"`
}

// SummaryResponse is the body of GET /api/summary. Statistics that are
// undefined for the current row count are null.
type SummaryResponse struct {
	Source     string                  `json:"source"`
	Count      int                     `json:"count"`
	Mean       *float64                `json:"mean"`
	Std        *float64                `json:"std"`
	Min        *float64                `json:"min"`
	P25        *float64                `json:"p25"`
	P50        *float64                `json:"p50"`
	P75        *float64                `json:"p75"`
	Max        *float64                `json:"max"`
	NullScores map[richness.Domain]int `json:"null_scores"`
	Histogram  []analytics.Bin         `json:"histogram"`
}

const histogramBins = 20

// handleDevices returns rows whose overall score lies in [min, max]
func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	recs, err := s.Records()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	lo, err := queryFloat(r, "min", math.Inf(-1))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	hi, err := queryFloat(r, "max", math.Inf(1))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if lo > hi {
		s.errorResponse(w, http.StatusBadRequest, "min이 max보다 큽니다")
		return
	}

	limit := s.config.MaxRows
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errorResponse(w, http.StatusBadRequest, "limit은 1 이상의 정수여야 합니다")
			return
		}
		limit = n
	}

	filtered := analytics.Filter(recs, lo, hi)
	shown := filtered
	if len(shown) > limit {
		shown = shown[:limit]
	}

	s.jsonResponse(w, DevicesResponse{
		Source:  s.config.Source,
		Total:   len(recs),
		Matched: len(filtered),
		Count:   len(shown),
		Devices: shown,
	})
}

// handleDevice returns one device with its three personas
func (s *Server) handleDevice(w http.ResponseWriter, r *http.Request) {
	recs, err := s.Records()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	rec, ok := analytics.Find(recs, id)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "디바이스를 찾을 수 없습니다: "+id)
		return
	}

	s.jsonResponse(w, DeviceResponse{
		Device:   rec,
		Personas: s.personas.ForRecord(rec),
	})
}

// handleSummary returns describe() statistics of the overall score
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	recs, err := s.Records()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	sum := analytics.DescribeRecords(recs)
	bins := analytics.Histogram(analytics.Overall(recs), histogramBins)
	if bins == nil {
		bins = []analytics.Bin{}
	}

	s.jsonResponse(w, SummaryResponse{
		Source:     s.config.Source,
		Count:      sum.Count,
		Mean:       finite(sum.Mean),
		Std:        finite(sum.Std),
		Min:        finite(sum.Min),
		P25:        finite(sum.P25),
		P50:        finite(sum.P50),
		P75:        finite(sum.P75),
		Max:        finite(sum.Max),
		NullScores: sum.NullScores,
		Histogram:  bins,
	})
}

// finite maps NaN and Inf to JSON null
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
