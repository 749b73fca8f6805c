/*
handlers_test.go - Tests for the HTTP API

Tests for:
- Contract acceptance and overlap rejection over HTTP
- Clock advance settling flights into the ledger
- Schedule listing by weekday across the week boundary
- Error status mapping
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/warp/airline-engine/factory"
	"github.com/warp/airline-engine/store/sqlite"
	"github.com/warp/airline-engine/telemetry"
)

func newTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	game := NewGame(store, telemetry.New(), zerolog.Nop())
	if err := game.Load(context.Background()); err != nil {
		t.Fatalf("Failed to load game: %v", err)
	}
	h := NewHandler(game, nil)
	return h, NewRouter(h)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestAcceptContract_RejectsOverlap(t *testing.T) {
	// GIVEN: One aircraft and two contracts whose windows collide
	_, router := newTestServer(t)

	if rec := do(t, router, "POST", "/api/fleet", CreateAssetRequest{ID: "N1", Model: "A320"}); rec.Code != http.StatusCreated {
		t.Fatalf("Create asset: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	for _, cj := range []factory.ContractJSON{
		{ID: "c-1", Hub: "JFK", Destination: "BOS", Departure: "MON 08:00"},
		{ID: "c-2", Hub: "JFK", Destination: "DCA", Departure: "MON 09:00"},
	} {
		if rec := do(t, router, "POST", "/api/contracts", cj); rec.Code != http.StatusCreated {
			t.Fatalf("Create contract: expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	// WHEN: Both are accepted on the same aircraft
	opt := factory.NarrowbodyOption("N1", 75)
	first := do(t, router, "POST", "/api/contracts/c-1/accept", opt)
	second := do(t, router, "POST", "/api/contracts/c-2/accept", opt)

	// THEN: The first wins, the second conflicts
	if first.Code != http.StatusCreated {
		t.Fatalf("First accept: expected 201, got %d: %s", first.Code, first.Body.String())
	}
	s := decode[ScheduleDTO](t, first)
	if s.Start != "MON 07:20" || s.End != "MON 11:15" {
		t.Errorf("Expected window MON 07:20 to MON 11:15, got %s to %s", s.Start, s.End)
	}
	if second.Code != http.StatusConflict {
		t.Fatalf("Second accept: expected 409, got %d: %s", second.Code, second.Body.String())
	}

	// AND: Draft reports the same clash without side effects
	draft := decode[DraftDTO](t, do(t, router, "POST", "/api/contracts/c-2/draft", opt))
	if draft.Available {
		t.Error("Expected draft to report the asset as busy")
	}
	contracts := decode[[]ContractDTO](t, do(t, router, "GET", "/api/contracts?status=offered", nil))
	if len(contracts) != 1 || contracts[0].ID != "c-2" {
		t.Errorf("Expected c-2 to remain offered, got %+v", contracts)
	}

	// AND: The asset is locked to the hub
	fleet := decode[[]AssetDTO](t, do(t, router, "GET", "/api/fleet", nil))
	if len(fleet) != 1 || fleet[0].Hub != "JFK" || fleet[0].Schedules != 1 {
		t.Errorf("Expected N1 at JFK with one schedule, got %+v", fleet)
	}
}

func TestAdvanceClock_SettlesFlights(t *testing.T) {
	// GIVEN: The starter hub with two Monday morning shuttles on N101JF
	h, router := newTestServer(t)
	if rec := do(t, router, "POST", "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "starter-hub"}); rec.Code != http.StatusOK {
		t.Fatalf("Load scenario: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// WHEN: The clock runs to Monday 16:40
	rec := do(t, router, "POST", "/api/clock/advance", AdvanceRequest{Ticks: 1000})
	if rec.Code != http.StatusOK {
		t.Fatalf("Advance: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	clock := decode[ClockDTO](t, rec)
	if clock.Tick != 1000 || clock.Display != "W0 MON 16:40" {
		t.Errorf("Expected tick 1000 (W0 MON 16:40), got %d (%s)", clock.Tick, clock.Display)
	}
	if clock.LastMaterialized != 0 {
		t.Errorf("Expected Monday's events registered at tick 0, got %d", clock.LastMaterialized)
	}

	// THEN: Both flights are in the asset's statement
	st := decode[StatementDTO](t, do(t, router, "GET", "/api/ledger?asset=N101JF", nil))
	if st.Flights != 2 {
		t.Errorf("Expected 2 settled flights, got %d", st.Flights)
	}
	// (12375 - 4850) for BOS plus (13200 - 5050) for DCA
	if st.Net != "15675.00" {
		t.Errorf("Expected net 15675.00, got %s", st.Net)
	}

	// AND: A range ending before the second landing holds only the first flight
	early := decode[StatementDTO](t, do(t, router, "GET", "/api/ledger?asset=N101JF&from=0&to=700", nil))
	if early.Flights != 1 {
		t.Errorf("Expected 1 flight by tick 700, got %d", early.Flights)
	}

	recent := decode[[]TransactionDTO](t, do(t, router, "GET", "/api/ledger/recent?limit=3", nil))
	if len(recent) != 3 {
		t.Errorf("Expected 3 recent transactions, got %d", len(recent))
	}

	// AND: Playtime survives a reload
	if err := h.Game.Load(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := h.Game.Clock.Now(); got != 1000 {
		t.Errorf("Expected restored playtime 1000, got %d", got)
	}

	current := decode[ScenarioDTO](t, do(t, router, "GET", "/api/scenarios/current", nil))
	if current.ID != "starter-hub" {
		t.Errorf("Expected current scenario starter-hub, got %q", current.ID)
	}
}

func TestListSchedules_ByWeekday(t *testing.T) {
	// GIVEN: A Sunday night departure that lands on Monday
	_, router := newTestServer(t)
	if rec := do(t, router, "POST", "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "wraparound-week"}); rec.Code != http.StatusOK {
		t.Fatalf("Load scenario: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// WHEN: Monday's schedules are listed
	monday := decode[[]ScheduleDTO](t, do(t, router, "GET", "/api/schedules?day=MON", nil))

	// THEN: Only the wrapping flight shows up
	if len(monday) != 1 || monday[0].ContractID != "sfo-hnl-sun" {
		t.Fatalf("Expected only sfo-hnl-sun on Monday, got %+v", monday)
	}

	// AND: Its usage is split between Sunday and Monday
	usage := decode[UsageDTO](t, do(t, router, "GET", "/api/fleet/N201SF/usage", nil))
	if usage.Days["SUN"] != 190 || usage.Days["MON"] != 555 {
		t.Errorf("Expected SUN 190 and MON 555, got %v", usage.Days)
	}

	if rec := do(t, router, "GET", "/api/schedules?day=XYZ", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("Invalid day: expected 400, got %d", rec.Code)
	}
}

func TestErrorStatuses(t *testing.T) {
	_, router := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown asset usage", "GET", "/api/fleet/N9/usage", nil, http.StatusNotFound},
		{"sell unknown asset", "DELETE", "/api/fleet/N9", nil, http.StatusNotFound},
		{"accept unknown contract", "POST", "/api/contracts/nope/accept", factory.NarrowbodyOption("N1", 60), http.StatusNotFound},
		{"detach unknown schedule", "DELETE", "/api/schedules/nope", nil, http.StatusNotFound},
		{"status unknown schedule", "GET", "/api/schedules/nope/status", nil, http.StatusNotFound},
		{"invalid contract", "POST", "/api/contracts", factory.ContractJSON{Hub: "JFK"}, http.StatusBadRequest},
		{"bad statement range", "GET", "/api/ledger?from=500&to=100", nil, http.StatusBadRequest},
		{"bad recent limit", "GET", "/api/ledger/recent?limit=0", nil, http.StatusBadRequest},
		{"advance zero", "POST", "/api/clock/advance", AdvanceRequest{}, http.StatusBadRequest},
		{"pause without driver", "POST", "/api/clock/pause", nil, http.StatusConflict},
		{"unknown scenario", "POST", "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, router := newTestServer(t)
	do(t, router, "POST", "/api/clock/advance", AdvanceRequest{Ticks: 3})

	rec := do(t, router, "GET", "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "airline_ticks_total 3") {
		t.Errorf("Expected tick counter in metrics output")
	}
}
