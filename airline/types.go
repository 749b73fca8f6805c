/*
Package airline defines the entities the scheduling engine moves around.

KEY TYPES:
  - Contract: An offered route (hub → destination) with a weekly departure
    time, a duration once accepted, and a reputation reward
  - ContractOption: One priced way of flying a contract with a specific
    asset; locked in by value at acceptance
  - Schedule: An accepted contract bound to an asset and a weekly window
  - ScheduleEvent: One materialized occurrence of a schedule, due at an
    absolute tick
  - Asset: An owned or leased aircraft in the hangar

Entities reference each other by id. A Schedule stores its ContractID and
looks the contract up when it needs it; the only thing it copies is the
option, because the priced option must not change after acceptance.

RESOURCES:
  cash        money booked per asset by settled flights
  reputation  points booked per contract at acceptance, reversed on expiry

SEE ALSO:
  - ledger.go: Settlement of flights into the ledger
  - schedule/engine.go: Lifecycle of schedules and events
*/
package airline

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/airline-engine/generic"
)

// =============================================================================
// RESOURCE TYPES
// =============================================================================

type AirlineResource string

func (r AirlineResource) ResourceID() string     { return string(r) }
func (r AirlineResource) ResourceDomain() string { return "airline" }

const (
	ResourceCash       AirlineResource = "cash"
	ResourceReputation AirlineResource = "reputation"
)

func init() {
	generic.RegisterResource(ResourceCash)
	generic.RegisterResource(ResourceReputation)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	ContractID  string
	AssetID     string
	ScheduleID  string
	AirportCode string
)

// =============================================================================
// CONTRACT
// =============================================================================

type ContractStatus string

const (
	ContractOffered  ContractStatus = "offered"
	ContractAccepted ContractStatus = "accepted"
	ContractExpired  ContractStatus = "expired"
)

// Passengers counts seats per cabin.
type Passengers struct {
	Economy  int `json:"economy"`
	Business int `json:"business"`
	First    int `json:"first"`
}

func (p Passengers) Total() int { return p.Economy + p.Business + p.First }

// Contract is a weekly route the airline can take on.
type Contract struct {
	ID          ContractID  `json:"id"`
	Hub         AirportCode `json:"hub"`
	Destination AirportCode `json:"destination"`

	// DepartureTime is the tick-of-week the aircraft leaves the hub.
	DepartureTime generic.Tick `json:"departure_time"`

	// Duration is how long the contract runs once accepted.
	Duration generic.Tick `json:"duration"`

	Demand     Passengers `json:"demand"`
	Reputation int64      `json:"reputation"`

	Status     ContractStatus `json:"status"`
	AcceptedAt generic.Tick   `json:"accepted_at"`
	ExpiredAt  generic.Tick   `json:"expired_at,omitempty"`
}

// ExpiresAt is the absolute tick at which an accepted contract ends.
func (c Contract) ExpiresAt() generic.Tick { return c.AcceptedAt + c.Duration }

// ExpiredBy reports whether an accepted contract has run out at now.
func (c Contract) ExpiredBy(now generic.Tick) bool {
	return c.Status == ContractAccepted && c.ExpiresAt() <= now
}

func (c Contract) Route() string { return fmt.Sprintf("%s-%s", c.Hub, c.Destination) }

// =============================================================================
// CONTRACT OPTION
// =============================================================================

type CostBreakdown struct {
	Fuel        decimal.Decimal `json:"fuel"`
	Crew        decimal.Decimal `json:"crew"`
	Airport     decimal.Decimal `json:"airport"`
	Maintenance decimal.Decimal `json:"maintenance"`
	Lease       decimal.Decimal `json:"lease"`
}

func (c CostBreakdown) Total() decimal.Decimal {
	return decimal.Sum(c.Fuel, c.Crew, c.Airport, c.Maintenance, c.Lease)
}

type RevenueBreakdown struct {
	Economy  decimal.Decimal `json:"economy"`
	Business decimal.Decimal `json:"business"`
	First    decimal.Decimal `json:"first"`
}

func (r RevenueBreakdown) Total() decimal.Decimal {
	return decimal.Sum(r.Economy, r.Business, r.First)
}

// ContractOption is one priced way to fly a contract. Times are in ticks.
type ContractOption struct {
	AssetID    AssetID          `json:"asset_id"`
	Passengers Passengers       `json:"passengers"`
	Costs      CostBreakdown    `json:"costs"`
	Revenue    RevenueBreakdown `json:"revenue"`

	// Utilization is the percentage of seats sold.
	Utilization int `json:"utilization"`

	FlightTime   generic.Tick `json:"flight_time"`   // one way
	BoardingTime generic.Tick `json:"boarding_time"` // before departure
	TotalTime    generic.Tick `json:"total_time"`    // boarding, out, turnaround, back
}

// Profit per flown occurrence.
func (o ContractOption) Profit() decimal.Decimal {
	return o.Revenue.Total().Sub(o.Costs.Total())
}

// =============================================================================
// SCHEDULE
// =============================================================================

// Schedule is an accepted contract occupying a weekly window on one asset.
type Schedule struct {
	ID         ScheduleID     `json:"id"`
	ContractID ContractID     `json:"contract_id"`
	Start      generic.Tick   `json:"start"`
	End        generic.Tick   `json:"end"`
	Option     ContractOption `json:"option"`
	AcceptedAt generic.Tick   `json:"accepted_at"`
}

func (s Schedule) Window() generic.Window { return generic.Window{Start: s.Start, End: s.End} }

func (s Schedule) AssetID() AssetID { return s.Option.AssetID }

// ScheduleEvent is one occurrence of a schedule, due at ExecutionTime.
type ScheduleEvent struct {
	ExecutionTime generic.Tick `json:"execution_time"`
	ScheduleID    ScheduleID   `json:"schedule_id"`
	ContractID    ContractID   `json:"contract_id"`
}

// SettlementKey identifies the occurrence in the ledger.
func (e ScheduleEvent) SettlementKey() string {
	return fmt.Sprintf("flight:%s:%d", e.ScheduleID, e.ExecutionTime)
}

// Flight is a fired occurrence with its schedule and contract resolved.
type Flight struct {
	Schedule      Schedule     `json:"schedule"`
	Contract      Contract     `json:"contract"`
	ExecutionTime generic.Tick `json:"execution_time"`
}

func (f Flight) Event() ScheduleEvent {
	return ScheduleEvent{
		ExecutionTime: f.ExecutionTime,
		ScheduleID:    f.Schedule.ID,
		ContractID:    f.Schedule.ContractID,
	}
}

// =============================================================================
// ASSET
// =============================================================================

type Ownership string

const (
	Owned  Ownership = "owned"
	Leased Ownership = "leased"
)

// Asset is an aircraft in the hangar. An asset serves at most one hub at a
// time; the hub is set when a schedule is accepted and cleared when the
// asset has no schedules left.
type Asset struct {
	ID             AssetID      `json:"id"`
	Model          string       `json:"model"`
	Seats          Passengers   `json:"seats"`
	Ownership      Ownership    `json:"ownership"`
	Hub            AirportCode  `json:"hub,omitempty"`
	AcquiredAt     generic.Tick `json:"acquired_at"`
	LeaseExpiresAt generic.Tick `json:"lease_expires_at,omitempty"`
}

// LeaseEndedBy reports whether a leased asset must be returned at now.
func (a Asset) LeaseEndedBy(now generic.Tick) bool {
	return a.Ownership == Leased && a.LeaseExpiresAt <= now
}
