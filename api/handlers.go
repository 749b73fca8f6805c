/*
handlers.go - HTTP API handlers for the airline engine

PURPOSE:
  Exposes the scheduling engine via REST API. Handles HTTP request and
  response, JSON serialization, and delegates to the Game.

ENDPOINTS:
  Clock:
    GET    /api/clock                     Current playtime
    POST   /api/clock/advance             Run N ticks now
    POST   /api/clock/pause               Stop the tick driver
    POST   /api/clock/resume              Restart the tick driver

  Fleet:
    GET    /api/fleet                     List assets
    POST   /api/fleet                     Buy or lease an asset
    DELETE /api/fleet/{id}                Sell an asset (cascades schedules)
    GET    /api/fleet/{id}/usage          Busy ticks per weekday

  Contracts:
    GET    /api/contracts?status=         List contracts
    POST   /api/contracts                 Offer a contract from JSON
    POST   /api/contracts/{id}/draft      Preview an option's window
    POST   /api/contracts/{id}/accept     Accept with an option

  Schedules:
    GET    /api/schedules?day=&asset=     Active schedules
    GET    /api/schedules/{id}/status     Where the flight is now
    DELETE /api/schedules/{id}            Detach a contract
    GET    /api/events/pending            Materialized, unsettled flights

  Books:
    GET    /api/ledger?asset=&from=&to=   Cash statement
    GET    /api/ledger/recent?limit=      Newest transactions, all books
    GET    /api/reputation                Reputation score and history
    GET    /api/missions                  Missions and progress
    POST   /api/missions                  Add a mission

ERROR HANDLING:
  Domain errors map to status codes in writeDomainError:
  - 400: Invalid windows, expired contracts, bad input
  - 404: Unknown contract, asset or schedule
  - 409: Overlaps, hub mismatch, duplicates
  - 500: Everything else

SECURITY NOTE:
  No authentication. The API is meant for a local single-player game.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/factory"
	"github.com/warp/airline-engine/generic"
	"github.com/warp/airline-engine/schedule"
)

// maxAdvance bounds a single /clock/advance call to four weeks of ticks.
const maxAdvance = 4 * generic.Week

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Game    *Game
	Driver  *TickDriver // nil when running headless
	Factory *factory.ContractFactory

	mu              sync.Mutex
	currentScenario string
}

func NewHandler(game *Game, driver *TickDriver) *Handler {
	return &Handler{
		Game:    game,
		Driver:  driver,
		Factory: factory.NewContractFactory(),
	}
}

// =============================================================================
// CLOCK HANDLERS
// =============================================================================

func (h *Handler) GetClock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.clockDTO())
}

// AdvanceClock runs ticks synchronously, settling whatever comes due.
func (h *Handler) AdvanceClock(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Ticks <= 0 || generic.Tick(req.Ticks) > maxAdvance {
		writeError(w, http.StatusBadRequest, "ticks must be between 1 and 40320", nil)
		return
	}

	if _, err := h.Game.Advance(r.Context(), generic.Tick(req.Ticks)); err != nil {
		writeError(w, http.StatusInternalServerError, "Some ticks failed", err)
		return
	}
	writeJSON(w, http.StatusOK, h.clockDTO())
}

func (h *Handler) PauseClock(w http.ResponseWriter, r *http.Request) {
	if h.Driver == nil {
		writeError(w, http.StatusConflict, "No tick driver running", nil)
		return
	}
	h.Driver.Pause()
	writeJSON(w, http.StatusOK, h.clockDTO())
}

func (h *Handler) ResumeClock(w http.ResponseWriter, r *http.Request) {
	if h.Driver == nil {
		writeError(w, http.StatusConflict, "No tick driver running", nil)
		return
	}
	h.Driver.Resume()
	writeJSON(w, http.StatusOK, h.clockDTO())
}

func (h *Handler) clockDTO() ClockDTO {
	now := h.Game.Clock.Now()
	return ClockDTO{
		Tick:             now,
		Display:          now.String(),
		Weekday:          now.Weekday().String(),
		Week:             now.WeekNumber(),
		Paused:           h.Driver == nil || h.Driver.Paused(),
		LastMaterialized: h.Game.Engine.LastRegistration(),
	}
}

// =============================================================================
// FLEET HANDLERS
// =============================================================================

func (h *Handler) ListFleet(w http.ResponseWriter, r *http.Request) {
	assets := h.Game.Fleet.All()
	dtos := make([]AssetDTO, len(assets))
	for i, a := range assets {
		dtos[i] = h.assetDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAsset buys an aircraft, or leases it for LeaseWeeks.
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Model == "" {
		writeError(w, http.StatusBadRequest, "id and model are required", nil)
		return
	}

	now := h.Game.Clock.Now()
	a := airline.Asset{
		ID:         airline.AssetID(req.ID),
		Model:      req.Model,
		Seats:      req.Seats,
		Ownership:  airline.Owned,
		AcquiredAt: now,
	}
	if req.LeaseWeeks > 0 {
		a.Ownership = airline.Leased
		a.LeaseExpiresAt = now + generic.Tick(req.LeaseWeeks)*generic.Week
	}

	if err := h.Game.Fleet.Add(r.Context(), a); err != nil {
		writeDomainError(w, "Failed to add asset", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.assetDTO(a))
}

// SellAsset removes the asset and ends every schedule it flies.
func (h *Handler) SellAsset(w http.ResponseWriter, r *http.Request) {
	id := airline.AssetID(chi.URLParam(r, "id"))
	if err := h.Game.Engine.RemoveAsset(r.Context(), id, schedule.RemovedSold); err != nil {
		writeDomainError(w, "Failed to sell asset", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sold", "asset_id": string(id)})
}

func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	id := airline.AssetID(chi.URLParam(r, "id"))
	if _, ok := h.Game.Fleet.Asset(id); !ok {
		writeError(w, http.StatusNotFound, "Asset not found", nil)
		return
	}

	days := make(map[string]generic.Tick, len(generic.Weekdays))
	for day, ticks := range h.Game.Engine.UseTime(id) {
		days[day.String()] = ticks
	}
	writeJSON(w, http.StatusOK, UsageDTO{
		AssetID:     string(id),
		Days:        days,
		Utilization: h.Game.Engine.Utilization(id),
		Schedules:   toScheduleDTOs(h.Game.Engine.SchedulesForAsset(id)),
	})
}

func (h *Handler) assetDTO(a airline.Asset) AssetDTO {
	dto := AssetDTO{
		ID:          string(a.ID),
		Model:       a.Model,
		Seats:       a.Seats,
		Ownership:   string(a.Ownership),
		Hub:         string(a.Hub),
		Schedules:   len(h.Game.Engine.SchedulesForAsset(a.ID)),
		Utilization: h.Game.Engine.Utilization(a.ID),
	}
	if a.Ownership == airline.Leased {
		dto.LeaseExpiresAt = strPtr(a.LeaseExpiresAt.String())
	}
	if s, ok := h.Game.Engine.FlyingAt(a.ID, h.Game.Clock.Now()); ok {
		dto.Flying = string(s.ContractID)
	}
	return dto
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	status := airline.ContractStatus(r.URL.Query().Get("status"))
	list := h.Game.Contracts.List(status)
	dtos := make([]ContractDTO, len(list))
	for i, c := range list {
		dtos[i] = h.contractDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateContract offers a contract built from factory JSON.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var cj factory.ContractJSON
	if err := json.NewDecoder(r.Body).Decode(&cj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	c, err := h.Factory.FromJSON(cj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract", err)
		return
	}
	if err := h.Game.Contracts.Add(r.Context(), c); err != nil {
		writeDomainError(w, "Failed to add contract", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.contractDTO(c))
}

func (h *Handler) DraftContract(w http.ResponseWriter, r *http.Request) {
	id := airline.ContractID(chi.URLParam(r, "id"))
	opt, ok := h.decodeOption(w, r)
	if !ok {
		return
	}

	win, free, err := h.Game.Engine.Draft(id, opt)
	if err != nil {
		writeDomainError(w, "Failed to draft schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, DraftDTO{
		Start:     win.Start,
		End:       win.End,
		Opens:     win.Start.Clock(),
		Closes:    win.End.Clock(),
		Wraps:     win.Wraps(),
		Available: free,
		Profit:    opt.Profit().StringFixed(2),
	})
}

func (h *Handler) AcceptContract(w http.ResponseWriter, r *http.Request) {
	id := airline.ContractID(chi.URLParam(r, "id"))
	opt, ok := h.decodeOption(w, r)
	if !ok {
		return
	}

	s, err := h.Game.Engine.Accept(r.Context(), id, opt)
	if err != nil {
		writeDomainError(w, "Failed to accept contract", err)
		return
	}
	writeJSON(w, http.StatusCreated, toScheduleDTO(s))
}

func (h *Handler) decodeOption(w http.ResponseWriter, r *http.Request) (airline.ContractOption, bool) {
	var oj factory.OptionJSON
	if err := json.NewDecoder(r.Body).Decode(&oj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return airline.ContractOption{}, false
	}
	opt, err := h.Factory.OptionFromJSON(oj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid option", err)
		return airline.ContractOption{}, false
	}
	return opt, true
}

func (h *Handler) contractDTO(c airline.Contract) ContractDTO {
	dto := ContractDTO{ContractJSON: h.Factory.ToJSON(c), Status: string(c.Status)}
	if c.Status == airline.ContractAccepted {
		dto.ExpiresAt = strPtr(c.ExpiresAt().String())
	}
	return dto
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ListSchedules filters by ?day=MON and/or ?asset=N100AA.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var list []airline.Schedule
	if d := q.Get("day"); d != "" {
		day, err := generic.ParseWeekday(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid day", err)
			return
		}
		list = h.Game.Engine.SchedulesForDay(day)
	} else {
		list = h.Game.Engine.Schedules()
	}

	if asset := airline.AssetID(q.Get("asset")); asset != "" {
		filtered := list[:0]
		for _, s := range list {
			if s.AssetID() == asset {
				filtered = append(filtered, s)
			}
		}
		list = filtered
	}
	writeJSON(w, http.StatusOK, toScheduleDTOs(list))
}

func (h *Handler) GetScheduleStatus(w http.ResponseWriter, r *http.Request) {
	id := airline.ContractID(chi.URLParam(r, "id"))
	st, err := h.Game.Engine.Status(id)
	if err != nil {
		writeDomainError(w, "Failed to get status", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusDTO{ContractID: string(id), FlightStatus: st})
}

func (h *Handler) DetachSchedule(w http.ResponseWriter, r *http.Request) {
	id := airline.ContractID(chi.URLParam(r, "id"))
	if err := h.Game.Engine.Detach(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to detach schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "detached", "contract_id": string(id)})
}

func (h *Handler) ListPendingEvents(w http.ResponseWriter, r *http.Request) {
	pending := h.Game.Engine.Pending()
	dtos := make([]ScheduleEventDTO, len(pending))
	for i, e := range pending {
		dtos[i] = ScheduleEventDTO{
			ScheduleID:    string(e.ScheduleID),
			ContractID:    string(e.ContractID),
			ExecutionTime: e.ExecutionTime,
			Due:           e.ExecutionTime.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// BOOK HANDLERS
// =============================================================================

// GetStatement returns the cash statement of one asset, or the airline.
// Optional from/to ticks narrow it to a window of play; a missing bound
// defaults to game start or the current tick.
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	asset := airline.AssetID(strings.TrimSpace(q.Get("asset")))

	var (
		txs     []generic.Transaction
		flights int
		err     error
	)
	if q.Has("from") || q.Has("to") {
		from, to, ok := tickRange(w, q.Get("from"), q.Get("to"), h.Game.Clock.Now())
		if !ok {
			return
		}
		txs, err = h.Game.Ledger.TransactionsBetween(ctx, asset, from, to)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
			return
		}
		flights = airline.CountFlights(txs)
	} else {
		txs, err = h.Game.Ledger.Transactions(ctx, asset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
			return
		}
		flights, err = h.Game.Ledger.FlightCount(ctx, asset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to count flights", err)
			return
		}
	}

	st := generic.Summarize(txs, generic.UnitCurrency)
	writeJSON(w, http.StatusOK, StatementDTO{
		AssetID:      string(asset),
		Credits:      st.Credits.Value.StringFixed(2),
		Debits:       st.Debits.Value.StringFixed(2),
		Net:          st.Net.Value.StringFixed(2),
		Flights:      flights,
		Transactions: toTransactionDTOs(txs),
	})
}

// tickRange parses optional from/to query values. It writes a 400 and
// returns false on bad input.
func tickRange(w http.ResponseWriter, rawFrom, rawTo string, now generic.Tick) (generic.Tick, generic.Tick, bool) {
	from, to := generic.Tick(0), now
	for _, p := range []struct {
		raw string
		dst *generic.Tick
	}{{rawFrom, &from}, {rawTo, &to}} {
		if p.raw == "" {
			continue
		}
		n, err := strconv.ParseInt(p.raw, 10, 64)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "from and to must be non-negative ticks", err)
			return 0, 0, false
		}
		*p.dst = generic.Tick(n)
	}
	if from > to {
		writeError(w, http.StatusBadRequest, "from must not be after to", nil)
		return 0, 0, false
	}
	return from, to, true
}

// RecentTransactions lists the newest ledger rows across cash and reputation.
func (h *Handler) RecentTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		limit = n
	}
	txs, err := h.Game.Store.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

func (h *Handler) GetReputation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	score, err := h.Game.Reputation.Score(ctx, h.Game.Clock.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load reputation", err)
		return
	}
	history, err := h.Game.Reputation.History(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load reputation", err)
		return
	}
	writeJSON(w, http.StatusOK, ReputationDTO{
		Score:   score.Value.String(),
		History: toTransactionDTOs(history),
	})
}

func (h *Handler) ListMissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Game.Missions.List())
}

func (h *Handler) CreateMission(w http.ResponseWriter, r *http.Request) {
	var req CreateMissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Target <= 0 {
		writeError(w, http.StatusBadRequest, "id and a positive target are required", nil)
		return
	}
	if err := h.Game.Missions.Add(r.Context(), req); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add mission", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
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

// writeDomainError picks the status code from the error's kind.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
