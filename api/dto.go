/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.
  Schedule records are the factory's ScheduleJSON so the API, the CLI and
  TOML files share one schema.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: ScheduleJSON type
*/
package api

import (
	"encoding/json"

	"github.com/warp/inventory-forecast/factory"
)

// =============================================================================
// ITEMS
// =============================================================================

// ItemDTO represents a catalogued consumable.
type ItemDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Unit      string `json:"unit,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateItemRequest is the request to catalogue an item.
type CreateItemRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

// ScheduleDTO is a stored schedule plus its validity.
type ScheduleDTO struct {
	factory.ScheduleJSON
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// =============================================================================
// FORECASTS
// =============================================================================

// ForecastRequest runs a forecast over inline schedules.
// Schedules stay raw so one bad element doesn't reject the request.
type ForecastRequest struct {
	StartingAmount *float64          `json:"starting_amount"`
	Unit           string            `json:"unit,omitempty"`
	Today          string            `json:"today,omitempty"`
	Schedules      []json.RawMessage `json:"schedules"`
}

// ItemForecastRequest runs a forecast over an item's stored schedules.
type ItemForecastRequest struct {
	StartingAmount *float64 `json:"starting_amount"`
	Today          string   `json:"today,omitempty"`
}

// ForecastDTO is the forecast answer.
type ForecastDTO struct {
	Outcome        string         `json:"outcome"`
	Date           *string        `json:"date"`
	Remaining      float64        `json:"remaining"`
	Consumed       float64        `json:"consumed"`
	Unit           string         `json:"unit,omitempty"`
	Horizon        *string        `json:"horizon,omitempty"`
	WindowStart    string         `json:"window_start,omitempty"`
	WindowEnd      string         `json:"window_end,omitempty"`
	ValidSchedules int            `json:"valid_schedules"`
	Excluded       []ExclusionDTO `json:"excluded"`
}

// ExclusionDTO names a schedule left out of a forecast.
type ExclusionDTO struct {
	Index      int    `json:"index"`
	ScheduleID string `json:"schedule_id,omitempty"`
	Reason     string `json:"reason"`
}

// ErrorResponse is returned for all errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
