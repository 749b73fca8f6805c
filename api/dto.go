/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Clock:      ClockDTO, AdvanceRequest
  Fleet:      AssetDTO, CreateAssetRequest, UsageDTO
  Contracts:  ContractDTO (wraps factory.ContractJSON), DraftDTO
  Schedules:  ScheduleDTO, ScheduleEventDTO
  Ledger:     StatementDTO, TransactionDTO
  Scenarios:  ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/contract.go: ContractJSON and OptionJSON
*/
package api

import (
	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/factory"
	"github.com/warp/airline-engine/generic"
	"github.com/warp/airline-engine/missions"
	"github.com/warp/airline-engine/schedule"
)

// =============================================================================
// CLOCK
// =============================================================================

type ClockDTO struct {
	Tick    generic.Tick `json:"tick"`
	Display string       `json:"display"`
	Weekday string       `json:"weekday"`
	Week    int64        `json:"week"`
	Paused  bool         `json:"paused"`

	// Day start of the last event registration, -1 before the first.
	LastMaterialized generic.Tick `json:"last_materialized"`
}

type AdvanceRequest struct {
	Ticks int64 `json:"ticks"`
}

// =============================================================================
// FLEET
// =============================================================================

type AssetDTO struct {
	ID             string             `json:"id"`
	Model          string             `json:"model"`
	Seats          airline.Passengers `json:"seats"`
	Ownership      string             `json:"ownership"`
	Hub            string             `json:"hub,omitempty"`
	LeaseExpiresAt *string            `json:"lease_expires_at,omitempty"`
	Schedules      int                `json:"schedules"`
	Utilization    int                `json:"utilization"`

	// Contract the aircraft is flying right now.
	Flying string `json:"flying,omitempty"`
}

// CreateAssetRequest buys an aircraft, or leases it when LeaseWeeks > 0.
type CreateAssetRequest struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Seats      airline.Passengers `json:"seats"`
	LeaseWeeks int                `json:"lease_weeks,omitempty"`
}

// UsageDTO is an asset's busy ticks per weekday.
type UsageDTO struct {
	AssetID     string                  `json:"asset_id"`
	Days        map[string]generic.Tick `json:"days"`
	Utilization int                     `json:"utilization"`
	Schedules   []ScheduleDTO           `json:"schedules"`
}

// =============================================================================
// CONTRACTS
// =============================================================================

type ContractDTO struct {
	factory.ContractJSON
	Status    string  `json:"status"`
	ExpiresAt *string `json:"expires_at,omitempty"`
}

// DraftDTO previews the window an option would take.
type DraftDTO struct {
	Start     generic.Tick `json:"start"`
	End       generic.Tick `json:"end"`
	Opens     string       `json:"opens"`
	Closes    string       `json:"closes"`
	Wraps     bool         `json:"wraps"`
	Available bool         `json:"available"`
	Profit    string       `json:"profit"`
}

// =============================================================================
// SCHEDULES
// =============================================================================

type ScheduleDTO struct {
	ID         string `json:"id"`
	ContractID string `json:"contract_id"`
	AssetID    string `json:"asset_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Profit     string `json:"profit"`
}

type ScheduleEventDTO struct {
	ScheduleID    string       `json:"schedule_id"`
	ContractID    string       `json:"contract_id"`
	ExecutionTime generic.Tick `json:"execution_time"`
	Due           string       `json:"due"`
}

type StatusDTO struct {
	ContractID string `json:"contract_id"`
	schedule.FlightStatus
}

// =============================================================================
// LEDGER
// =============================================================================

type TransactionDTO struct {
	ID          string `json:"id"`
	EntityID    string `json:"entity_id"`
	EffectiveAt string `json:"effective_at"`
	Delta       string `json:"delta"`
	Type        string `json:"type"`
	Reason      string `json:"reason,omitempty"`
	ReferenceID string `json:"reference_id,omitempty"`
}

type StatementDTO struct {
	AssetID      string           `json:"asset_id,omitempty"`
	Credits      string           `json:"credits"`
	Debits       string           `json:"debits"`
	Net          string           `json:"net"`
	Flights      int              `json:"flights"`
	Transactions []TransactionDTO `json:"transactions"`
}

type ReputationDTO struct {
	Score   string           `json:"score"`
	History []TransactionDTO `json:"history"`
}

type CreateMissionRequest = missions.Mission

// =============================================================================
// SCENARIOS AND ERRORS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toScheduleDTO(s airline.Schedule) ScheduleDTO {
	return ScheduleDTO{
		ID:         string(s.ID),
		ContractID: string(s.ContractID),
		AssetID:    string(s.AssetID()),
		Start:      s.Start.Clock(),
		End:        s.End.Clock(),
		Profit:     s.Option.Profit().StringFixed(2),
	}
}

func toScheduleDTOs(list []airline.Schedule) []ScheduleDTO {
	dtos := make([]ScheduleDTO, len(list))
	for i, s := range list {
		dtos[i] = toScheduleDTO(s)
	}
	return dtos
}

func toTransactionDTOs(txs []generic.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = TransactionDTO{
			ID:          string(tx.ID),
			EntityID:    string(tx.EntityID),
			EffectiveAt: tx.EffectiveAt.String(),
			Delta:       tx.Delta.Value.StringFixed(2),
			Type:        string(tx.Type),
			Reason:      tx.Reason,
			ReferenceID: tx.ReferenceID,
		}
	}
	return dtos
}

func strPtr(s string) *string {
	return &s
}
