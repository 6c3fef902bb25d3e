/*
scenarios.go - Demo catalog loaders for testing and demonstrations

PURPOSE:

	Provides pre-built catalogs of consumables and schedules so the API can
	be explored without typing schedules by hand. Dates are laid out relative
	to the engine's "today", so a loaded scenario always forecasts into the
	future.

AVAILABLE SCENARIOS:

	lab-bench:      Acetone with overlapping daily rinses, one retired
	weekly-cleanup: Ethanol used every Monday plus a short daily study
	fixed-study:    Buffer solution used by a study with a known end date
	misconfigured:  Reagent whose only schedules are invalid

HOW SCENARIOS WORK:
 1. Create items (existing IDs are left as they are)
 2. Attach schedules through the catalog, bypassing API validation so
    that misconfigured rows can be demonstrated

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "lab-bench"}

	POST /api/items/acetone/forecast
	{"starting_amount": 23}

SEE ALSO:
  - handlers.go: Catalog and forecast handlers
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/inventory-forecast/generic"
	"github.com/warp/inventory-forecast/inventory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes a loadable demo catalog.
type ScenarioDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Items       []string `json:"items"`
}

// LoadScenarioRequest selects a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type scenarioItem struct {
	item      inventory.Item
	schedules func(today generic.TimePoint) []inventory.ScheduledUse
}

type scenario struct {
	ScenarioDTO
	items []scenarioItem
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "lab-bench",
			Name:        "Lab Bench",
			Description: "Two daily acetone rinses, one of them already retired",
		},
		items: []scenarioItem{{
			item: inventory.Item{ID: "acetone", Name: "Acetone", Unit: generic.UnitMilliliters},
			schedules: func(today generic.TimePoint) []inventory.ScheduledUse {
				return []inventory.ScheduledUse{
					{
						ID:          "acetone-old-rinse",
						Amount:      generic.NewAmountFromInt(10, generic.UnitMilliliters),
						Periodicity: inventory.Daily,
						Start:       today.AddDays(-23),
						End:         today.AddDays(-3).Ptr(),
					},
					{
						ID:          "acetone-rinse",
						Amount:      generic.NewAmountFromInt(10, generic.UnitMilliliters),
						Periodicity: inventory.Daily,
						Start:       today.AddDays(-7),
					},
				}
			},
		}},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "weekly-cleanup",
			Name:        "Weekly Cleanup",
			Description: "Ethanol used every Monday plus a two-week daily study",
		},
		items: []scenarioItem{{
			item: inventory.Item{ID: "ethanol", Name: "Ethanol 70%", Unit: generic.UnitLiters},
			schedules: func(today generic.TimePoint) []inventory.ScheduledUse {
				return []inventory.ScheduledUse{
					{
						ID:          "ethanol-monday",
						Amount:      generic.NewAmount(1.5, generic.UnitLiters),
						Periodicity: inventory.Weekly,
						Start:       today.AddDays(-7),
						Weekday:     inventory.WeekdayPtr(time.Monday),
					},
					{
						ID:          "ethanol-study",
						Amount:      generic.NewAmount(0.25, generic.UnitLiters),
						Periodicity: inventory.Daily,
						Start:       today,
						End:         today.AddDays(13).Ptr(),
					},
				}
			},
		}},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "fixed-study",
			Name:        "Fixed-Length Study",
			Description: "Buffer solution for a study that ends in three days",
		},
		items: []scenarioItem{{
			item: inventory.Item{ID: "pbs-buffer", Name: "PBS Buffer", Unit: generic.UnitMilliliters},
			schedules: func(today generic.TimePoint) []inventory.ScheduledUse {
				return []inventory.ScheduledUse{{
					ID:          "pbs-study",
					Amount:      generic.NewAmountFromInt(10, generic.UnitMilliliters),
					Periodicity: inventory.Daily,
					Start:       today.AddDays(-23),
					End:         today.AddDays(3).Ptr(),
				}}
			},
		}},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "misconfigured",
			Name:        "Misconfigured Reagent",
			Description: "Every schedule is invalid, so no forecast is possible",
		},
		items: []scenarioItem{{
			item: inventory.Item{ID: "trypsin", Name: "Trypsin", Unit: generic.UnitMilliliters},
			schedules: func(today generic.TimePoint) []inventory.ScheduledUse {
				return []inventory.ScheduledUse{
					{
						ID:          "trypsin-weekly-no-day",
						Amount:      generic.NewAmountFromInt(5, generic.UnitMilliliters),
						Periodicity: inventory.Weekly,
						Start:       today.AddDays(-7),
					},
					{
						ID:          "trypsin-monthly",
						Amount:      generic.NewAmountFromInt(5, generic.UnitMilliliters),
						Periodicity: "monthly",
						Start:       today.AddDays(-7),
					},
				}
			},
		}},
	},
}

func init() {
	for i := range scenarios {
		for _, si := range scenarios[i].items {
			scenarios[i].Items = append(scenarios[i].Items, string(si.item.ID))
		}
	}
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the loadable scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario seeds the catalog with a scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		if errors.Is(err, errUnknownScenario) {
			writeError(w, http.StatusNotFound, "Unknown scenario", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "scenario_id": req.ScenarioID})
}

var errUnknownScenario = errors.New("unknown scenario")

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	var found *scenario
	for i := range scenarios {
		if scenarios[i].ID == id {
			found = &scenarios[i]
			break
		}
	}
	if found == nil {
		return fmt.Errorf("%q: %w", id, errUnknownScenario)
	}

	today := generic.Today()
	if h.Engine != nil && h.Engine.Now != nil {
		today = h.Engine.Now()
	}

	for _, si := range found.items {
		item := si.item
		item.CreatedAt = time.Now().UTC()
		err := h.Catalog.CreateItem(ctx, item)
		if errors.Is(err, generic.ErrDuplicateItem) {
			h.Log.WithField("item_id", item.ID).Info("scenario item already loaded")
			continue
		}
		if err != nil {
			return err
		}

		for _, s := range si.schedules(today) {
			if _, err := h.Catalog.AddSchedule(ctx, item.ID, s); err != nil {
				return fmt.Errorf("scenario %s, schedule %s: %w", id, s.ID, err)
			}
		}
	}

	h.Log.WithField("scenario_id", id).Info("scenario loaded")
	return nil
}
