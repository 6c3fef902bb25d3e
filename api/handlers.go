/*
handlers.go - HTTP API handlers for the depletion forecaster

PURPOSE:
  Exposes the catalog and the forecast engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Forecasts:
    POST   /api/forecast                  Forecast over inline schedules

  Items:
    GET    /api/items                     List catalogued items
    POST   /api/items                     Catalogue an item
    GET    /api/items/{id}                Get item
    GET    /api/items/{id}/schedules      List an item's schedules
    POST   /api/items/{id}/schedules      Add a schedule to an item
    POST   /api/items/{id}/forecast       Forecast over an item's schedules

  Scenarios:
    GET    /api/scenarios                 List demo catalogs
    POST   /api/scenarios/load            Seed the catalog with a demo

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (catalog, forecast engine)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body, missing starting_amount, invalid schedule
  - 404: Unknown item
  - 409: Item or schedule ID already exists
  - 422: Forecast horizon exceeded (body still carries the partial forecast)
  - 500: Internal errors

  A forecast in which no schedule is valid is a 200 with outcome
  "no_valid_schedules" and a null date.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo catalog loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/inventory-forecast/factory"
	"github.com/warp/inventory-forecast/generic"
	"github.com/warp/inventory-forecast/inventory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Catalog inventory.Catalog
	Engine  *inventory.ForecastEngine

	// DefaultUnit labels amounts sent without one.
	DefaultUnit generic.Unit

	Log *logrus.Entry
}

// NewHandler creates a new handler with the given catalog and engine.
func NewHandler(catalog inventory.Catalog, engine *inventory.ForecastEngine, log *logrus.Entry) *Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{
		Catalog: catalog,
		Engine:  engine,
		Log:     log,
	}
}

// =============================================================================
// FORECAST HANDLERS
// =============================================================================

// Forecast runs a forecast over schedules sent in the body.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	var req ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.StartingAmount == nil {
		writeError(w, http.StatusBadRequest, "starting_amount is required", nil)
		return
	}

	unit := h.DefaultUnit
	if req.Unit != "" {
		unit = generic.Unit(req.Unit)
	}

	schedules, issues, err := factory.DecodeRaw(req.Schedules, unit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedules", err)
		return
	}
	for _, issue := range issues {
		h.Log.WithField("index", issue.Index).WithError(issue.Err).Debug("unreadable schedule record")
	}

	h.runForecast(w, r, schedules, generic.NewAmount(*req.StartingAmount, unit), req.Today)
}

// ItemForecast runs a forecast over an item's stored schedules.
func (h *Handler) ItemForecast(w http.ResponseWriter, r *http.Request) {
	id := inventory.ItemID(chi.URLParam(r, "id"))

	var req ItemForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.StartingAmount == nil {
		writeError(w, http.StatusBadRequest, "starting_amount is required", nil)
		return
	}

	item, err := h.Catalog.GetItem(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get item", err)
		return
	}

	schedules, err := h.Catalog.Schedules(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to load schedules", err)
		return
	}

	unit := item.Unit
	if unit == generic.UnitNone {
		unit = h.DefaultUnit
	}
	h.runForecast(w, r, schedules, generic.NewAmount(*req.StartingAmount, unit), req.Today)
}

func (h *Handler) runForecast(w http.ResponseWriter, r *http.Request, schedules []inventory.ScheduledUse, onHand generic.Amount, today string) {
	engine := *h.Engine
	if today != "" {
		day, err := generic.ParseDate(today)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid today", err)
			return
		}
		engine.Now = func() generic.TimePoint { return day }
	}

	result, err := engine.Run(r.Context(), schedules, onHand)
	if errors.Is(err, generic.ErrHorizonExceeded) {
		writeJSON(w, http.StatusUnprocessableEntity, toForecastDTO(result))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Forecast failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toForecastDTO(result))
}

// =============================================================================
// ITEM HANDLERS
// =============================================================================

// ListItems returns all catalogued items.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.ListItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list items", err)
		return
	}

	dtos := make([]ItemDTO, len(items))
	for i, item := range items {
		dtos[i] = toItemDTO(item)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateItem catalogues a new item.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	item := inventory.Item{
		ID:        inventory.ItemID(req.ID),
		Name:      req.Name,
		Unit:      generic.Unit(req.Unit),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Catalog.CreateItem(r.Context(), item); err != nil {
		writeDomainError(w, "Failed to create item", err)
		return
	}

	h.Log.WithField("item_id", item.ID).Info("item created")
	writeJSON(w, http.StatusCreated, toItemDTO(item))
}

// GetItem returns one item.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Catalog.GetItem(r.Context(), inventory.ItemID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "Failed to get item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(*item))
}

// ListSchedules returns an item's schedules, flagging invalid ones.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.Catalog.Schedules(r.Context(), inventory.ItemID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "Failed to load schedules", err)
		return
	}

	dtos := make([]ScheduleDTO, len(schedules))
	for i, s := range schedules {
		dtos[i] = toScheduleDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddSchedule attaches a schedule to an item. Invalid schedules are rejected
// here even though the engine would merely skip them.
func (h *Handler) AddSchedule(w http.ResponseWriter, r *http.Request) {
	id := inventory.ItemID(chi.URLParam(r, "id"))

	var sj factory.ScheduleJSON
	if err := json.NewDecoder(r.Body).Decode(&sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := h.Catalog.GetItem(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get item", err)
		return
	}

	unit := item.Unit
	if unit == generic.UnitNone {
		unit = h.DefaultUnit
	}
	schedule, err := factory.FromJSON(sj, unit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule", err)
		return
	}
	if err := schedule.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule", err)
		return
	}

	stored, err := h.Catalog.AddSchedule(r.Context(), id, schedule)
	if err != nil {
		writeDomainError(w, "Failed to add schedule", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"item_id":     id,
		"schedule_id": stored.ID,
	}).Info("schedule added")
	writeJSON(w, http.StatusCreated, toScheduleDTO(stored))
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the generic error taxonomy.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, generic.ErrDuplicateItem), errors.Is(err, generic.ErrDuplicateSchedule):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func toItemDTO(item inventory.Item) ItemDTO {
	dto := ItemDTO{
		ID:   string(item.ID),
		Name: item.Name,
		Unit: string(item.Unit),
	}
	if !item.CreatedAt.IsZero() {
		dto.CreatedAt = item.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toScheduleDTO(s inventory.ScheduledUse) ScheduleDTO {
	dto := ScheduleDTO{ScheduleJSON: factory.ToJSON(s), Valid: true}
	if err := s.Validate(); err != nil {
		dto.Valid = false
		dto.Reason = err.Error()
	}
	return dto
}

func toForecastDTO(r *inventory.Result) ForecastDTO {
	dto := ForecastDTO{
		Outcome:        string(r.Outcome),
		Remaining:      r.Remaining.Float64(),
		Consumed:       r.Consumed.Float64(),
		Unit:           string(r.Remaining.Unit),
		ValidSchedules: r.ValidSchedules,
		Excluded:       make([]ExclusionDTO, 0, len(r.Excluded)),
	}
	if r.Date != nil {
		dto.Date = strPtr(r.Date.String())
	}
	if r.Horizon != nil {
		dto.Horizon = strPtr(r.Horizon.String())
	}
	if !r.Window.Start.IsZero() {
		dto.WindowStart = r.Window.Start.String()
		dto.WindowEnd = r.Window.End.String()
	}
	for _, x := range r.Excluded {
		dto.Excluded = append(dto.Excluded, ExclusionDTO{
			Index:      x.Index,
			ScheduleID: x.ScheduleID,
			Reason:     x.Reason.Error(),
		})
	}
	return dto
}

func strPtr(s string) *string {
	return &s
}
