// Package handlers provides HTTP request handlers for the triage API
// endpoints: the full triage pipeline, pharmacy matching, cart
// pricing, the tele-consult directory, geocoding and health checks.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nishkal/triage-api/cart"
	"github.com/nishkal/triage-api/config"
	"github.com/nishkal/triage-api/geocode"
	"github.com/nishkal/triage-api/geodist"
	"github.com/nishkal/triage-api/imaging"
	"github.com/nishkal/triage-api/ingest"
	"github.com/nishkal/triage-api/interfaces"
	"github.com/nishkal/triage-api/logging"
	"github.com/nishkal/triage-api/matching"
	"github.com/nishkal/triage-api/metrics"
	"github.com/nishkal/triage-api/recommend"
	"github.com/nishkal/triage-api/refdata/entities"
	"github.com/nishkal/triage-api/triageplan"
)

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Warn("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"error": msg})
}

// respondWithCoreError translates the core error taxonomy: bad input
// is corrective (400), everything else is operational (500).
func respondWithCoreError(w http.ResponseWriter, err error) {
	var validationErr *entities.ValidationError
	if errors.As(err, &validationErr) {
		RespondWithError(w, http.StatusBadRequest, validationErr.Error())
		return
	}
	logging.Error("Unexpected pipeline error", "error", err)
	RespondWithError(w, http.StatusInternalServerError, "internal error")
}

// TriageRequest is the input of the full pipeline. Age and allergies
// override what the note scan extracts when provided explicitly.
type TriageRequest struct {
	XrayFile  string   `json:"xray_file"`
	Notes     string   `json:"notes"`
	Age       *int     `json:"age,omitempty"`
	Allergies []string `json:"allergies,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
}

// TriageResponse bundles every stage output plus the consolidated
// plan.
type TriageResponse struct {
	Ingestion ingest.Result                       `json:"ingestion"`
	Imaging   ImagingResult                       `json:"imaging"`
	Therapy   entities.Recommendation             `json:"therapy"`
	Offers    map[string][]entities.PharmacyOffer `json:"offers,omitempty"`
	Plan      entities.FinalPlan                  `json:"final_plan"`
}

// ImagingResult is the imaging collaborator output.
type ImagingResult struct {
	ConditionProbs entities.ConditionProbs `json:"condition_probs"`
	SeverityHint   entities.Severity       `json:"severity_hint"`
}

// Triage runs the full decision pipeline over one request.
func Triage(dataStore interfaces.DataStore, classifier imaging.Classifier, cfg *config.Config) http.HandlerFunc {
	consolidator := triageplan.NewConsolidator()

	return func(w http.ResponseWriter, r *http.Request) {
		var req TriageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		ingested, err := ingest.Ingest(req.XrayFile, req.Notes)
		if err != nil {
			respondWithCoreError(w, err)
			return
		}

		// Explicit patient fields win over note extraction
		if req.Age != nil {
			ingested.Patient.Age = *req.Age
		}
		if len(req.Allergies) > 0 {
			ingested.Patient.Allergies = req.Allergies
		}
		if err := ingested.Patient.Validate(); err != nil {
			respondWithCoreError(w, err)
			return
		}

		probs, severity := classifier.Classify(req.XrayFile)

		snapshot := dataStore.GetSnapshot()
		recommendation, err := recommend.NewEngine(snapshot).Recommend(probs, ingested.Patient)
		if err != nil {
			respondWithCoreError(w, err)
			return
		}

		// One stock lookup per recommended item, when an origin was given
		var offers map[string][]entities.PharmacyOffer
		if req.Lat != nil && req.Lon != nil {
			origin := geodist.Coordinate{Lat: *req.Lat, Lon: *req.Lon}
			if err := origin.Validate(); err != nil {
				respondWithCoreError(w, err)
				return
			}

			matcher := matching.NewMatcher(snapshot, cfg.DeliveryFee)
			offers = make(map[string][]entities.PharmacyOffer, len(recommendation.Options))
			for _, option := range recommendation.Options {
				found, err := matcher.Find(option.SKU, origin, matching.DefaultMaxDistanceKm, matching.DefaultLimit)
				if err != nil {
					respondWithCoreError(w, err)
					return
				}
				offers[option.SKU] = found
			}
		}

		plan := consolidator.Consolidate(severity, probs, recommendation.RedFlags, ingested.Patient.Notes, recommendation.Options)
		plan.PlanID = uuid.NewString()

		metrics.TriagePlansTotal.Inc()
		if len(plan.RedFlags) > 0 {
			metrics.TriageRedFlagsTotal.Inc()
		}

		RespondWithJSON(w, http.StatusOK, TriageResponse{
			Ingestion: ingested,
			Imaging:   ImagingResult{ConditionProbs: probs, SeverityHint: severity},
			Therapy:   recommendation,
			Offers:    offers,
			Plan:      plan,
		})
	}
}

// FindPharmacies returns nearby pharmacies stocking the item.
func FindPharmacies(dataStore interfaces.DataStore, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item := chi.URLParam(r, "item")
		if item == "" {
			RespondWithError(w, http.StatusBadRequest, "missing item")
			return
		}

		lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, "invalid lat")
			return
		}
		lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, "invalid lon")
			return
		}

		maxKm := 0.0
		if raw := r.URL.Query().Get("max_km"); raw != "" {
			if maxKm, err = strconv.ParseFloat(raw, 64); err != nil || maxKm <= 0 {
				RespondWithError(w, http.StatusBadRequest, "invalid max_km")
				return
			}
		}
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if limit, err = strconv.Atoi(raw); err != nil || limit <= 0 {
				RespondWithError(w, http.StatusBadRequest, "invalid limit")
				return
			}
		}

		matcher := matching.NewMatcher(dataStore.GetSnapshot(), cfg.DeliveryFee)
		offers, err := matcher.Find(item, geodist.Coordinate{Lat: lat, Lon: lon}, maxKm, limit)
		if err != nil {
			respondWithCoreError(w, err)
			return
		}

		if len(offers) == 0 {
			// Normal empty outcome, informational rather than an error
			RespondWithError(w, http.StatusNotFound, "no pharmacies with stock in range")
			return
		}

		RespondWithJSON(w, http.StatusOK, offers)
	}
}

// CartRequest prices a set of selected lines.
type CartRequest struct {
	Lines       []cart.Line `json:"lines"`
	TeleConsult bool        `json:"tele_consult"`
}

// CartResponse echoes the valid lines with computed totals.
type CartResponse struct {
	Lines      []CartLineTotal `json:"lines"`
	ConsultFee int             `json:"consult_fee"`
	GrandTotal int             `json:"grand_total"`
}

type CartLineTotal struct {
	cart.Line
	Total int `json:"total"`
}

// PriceCart computes the grand total for a cart.
func PriceCart(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		consultFee := 0
		if req.TeleConsult {
			consultFee = cfg.ConsultFee
		}

		c := cart.Cart{Lines: req.Lines, ConsultFee: consultFee}
		valid := c.ValidLines()

		lines := make([]CartLineTotal, 0, len(valid))
		for _, line := range valid {
			lines = append(lines, CartLineTotal{Line: line, Total: line.Total()})
		}

		RespondWithJSON(w, http.StatusOK, CartResponse{
			Lines:      lines,
			ConsultFee: consultFee,
			GrandTotal: c.GrandTotal(),
		})
	}
}

// ListDoctors returns the tele-consult directory.
func ListDoctors(dataStore interfaces.DataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors := dataStore.GetSnapshot().Doctors
		if len(doctors) == 0 {
			RespondWithError(w, http.StatusNotFound, "tele-consult directory unavailable")
			return
		}
		RespondWithJSON(w, http.StatusOK, doctors)
	}
}

// GeocodeAddress resolves a free-text address through the external
// provider. A nil client means the route is not configured.
func GeocodeAddress(client *geocode.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			RespondWithError(w, http.StatusServiceUnavailable, "geocoding not configured")
			return
		}

		coord, err := client.Resolve(r.Context(), r.URL.Query().Get("address"))
		if err != nil {
			switch {
			case errors.Is(err, geocode.ErrNoMatch):
				RespondWithError(w, http.StatusNotFound, "no coordinates found for address")
			case errors.Is(err, geocode.ErrUnavailable):
				RespondWithError(w, http.StatusServiceUnavailable, "geocoding service unavailable")
			default:
				respondWithCoreError(w, err)
			}
			return
		}

		RespondWithJSON(w, http.StatusOK, coord)
	}
}

// HealthCheck reports service and snapshot health.
func HealthCheck(checker interfaces.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, data, httpStatus := checker.HealthCheck()

		payload := map[string]any{"status": status}
		for k, v := range data {
			payload[k] = v
		}

		RespondWithJSON(w, httpStatus, payload)
	}
}
