package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Vishal-code-E/ipl/internal/auction"
	"github.com/Vishal-code-E/ipl/internal/models"
	"github.com/Vishal-code-E/ipl/internal/syncbus"
)

// memoryStore is a minimal in-memory auction.Store for handler tests.
type memoryStore struct {
	mu      sync.Mutex
	state   *models.AuctionState
	teams   []models.Team
	players []models.Player
}

func (m *memoryStore) LoadState(ctx context.Context) (*models.AuctionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	return m.state.Clone(), nil
}

func (m *memoryStore) SaveState(ctx context.Context, state *models.AuctionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state.Clone()
	return nil
}

func (m *memoryStore) ClearState(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	return nil
}

func (m *memoryStore) LoadTeams(ctx context.Context) ([]models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Team(nil), m.teams...), nil
}

func (m *memoryStore) SaveTeams(ctx context.Context, teams []models.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams = append([]models.Team(nil), teams...)
	return nil
}

func (m *memoryStore) LoadPlayers(ctx context.Context) ([]models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Player(nil), m.players...), nil
}

func (m *memoryStore) SavePlayers(ctx context.Context, players []models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = append([]models.Player(nil), players...)
	return nil
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	app := newTestApp(t)
	manager := NewConnectionManager(DefaultConnectionConfig())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go manager.Start(ctx)

	mux := http.NewServeMux()
	NewHandler(app, manager).RegisterRoutes(mux)
	return mux
}

func newTestApp(t *testing.T) *auction.App {
	t.Helper()
	app := auction.NewApp(&memoryStore{}, syncbus.NewLocalBus(), auction.Config{
		InstanceID: "gateway-test",
		Clock:      clockwork.NewFakeClockAt(time.Date(2024, 5, 21, 14, 0, 0, 0, time.UTC)),
		SeedTeams: []models.Team{
			{ID: "csk", Name: "Chennai Super Kings", ShortName: "CSK", InitialPurse: 10000},
			{ID: "mi", Name: "Mumbai Indians", ShortName: "MI", InitialPurse: 10000},
		},
		SeedPlayers: []models.Player{
			{ID: "p1", Name: "Opener", Role: models.RoleBatsman, BasePrice: 200},
			{ID: "p2", Name: "Quick", Role: models.RoleBowler, BasePrice: 150},
		},
	})
	if err := app.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestOperationEndpoints(t *testing.T) {
	mux := newTestMux(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "undo before any action", method: http.MethodPost, path: "/api/auction/undo", wantStatus: http.StatusConflict},
		{name: "bid before start", method: http.MethodPost, path: "/api/auction/bid", body: `{"team_id": "csk", "amount_lakh": 200}`, wantStatus: http.StatusConflict},
		{name: "start", method: http.MethodPost, path: "/api/auction/start", wantStatus: http.StatusOK},
		{name: "start twice", method: http.MethodPost, path: "/api/auction/start", wantStatus: http.StatusConflict},
		{name: "bid malformed body", method: http.MethodPost, path: "/api/auction/bid", body: `{"team_id":`, wantStatus: http.StatusBadRequest},
		{name: "bid unknown team", method: http.MethodPost, path: "/api/auction/bid", body: `{"team_id": "rr", "amount_lakh": 200}`, wantStatus: http.StatusNotFound},
		{name: "bid negative amount", method: http.MethodPost, path: "/api/auction/bid", body: `{"team_id": "csk", "amount_lakh": -10}`, wantStatus: http.StatusBadRequest},
		{name: "bid beyond purse", method: http.MethodPost, path: "/api/auction/bid", body: `{"team_id": "csk", "amount_lakh": 20000}`, wantStatus: http.StatusConflict},
		{name: "bid ok", method: http.MethodPost, path: "/api/auction/bid", body: `{"team_id": "csk", "amount_lakh": 200}`, wantStatus: http.StatusOK},
		{name: "raise ok", method: http.MethodPost, path: "/api/auction/raise", wantStatus: http.StatusOK},
		{name: "set increment ok", method: http.MethodPost, path: "/api/auction/increment", body: `{"increment_lakh": 50}`, wantStatus: http.StatusOK},
		{name: "set increment invalid", method: http.MethodPost, path: "/api/auction/increment", body: `{"increment_lakh": 0}`, wantStatus: http.StatusBadRequest},
		{name: "sell ok", method: http.MethodPost, path: "/api/auction/sell", wantStatus: http.StatusOK},
		{name: "sell without bidder", method: http.MethodPost, path: "/api/auction/sell", wantStatus: http.StatusConflict},
		{name: "unsold ok", method: http.MethodPost, path: "/api/auction/unsold", wantStatus: http.StatusOK},
		{name: "undo ok", method: http.MethodPost, path: "/api/auction/undo", wantStatus: http.StatusOK},
		{name: "reset ok", method: http.MethodPost, path: "/api/auction/reset", wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(mux, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d; body %s", tt.method, tt.path, rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestStateEndpoint(t *testing.T) {
	mux := newTestMux(t)
	if rec := do(mux, http.MethodPost, "/api/auction/start", ""); rec.Code != http.StatusOK {
		t.Fatalf("start = %d", rec.Code)
	}

	rec := do(mux, http.MethodGet, "/api/auction/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET state = %d", rec.Code)
	}
	var state models.AuctionState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if !state.IsActive {
		t.Error("state.IsActive = false after start")
	}
	if state.CurrentBid != 200 {
		t.Errorf("state.CurrentBid = %d, want base price 200", state.CurrentBid)
	}
}

func TestRosterEndpoints(t *testing.T) {
	mux := newTestMux(t)

	rec := do(mux, http.MethodGet, "/api/teams", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET teams = %d", rec.Code)
	}
	var teams []models.Team
	if err := json.Unmarshal(rec.Body.Bytes(), &teams); err != nil {
		t.Fatalf("decode teams: %v", err)
	}
	if len(teams) != 2 || teams[0].ID != "csk" {
		t.Errorf("teams = %+v", teams)
	}

	rec = do(mux, http.MethodGet, "/api/players", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET players = %d", rec.Code)
	}
	var players []models.Player
	if err := json.Unmarshal(rec.Body.Bytes(), &players); err != nil {
		t.Fatalf("decode players: %v", err)
	}
	if len(players) != 2 {
		t.Errorf("players = %+v", players)
	}
}

func TestHealthz(t *testing.T) {
	mux := newTestMux(t)
	rec := do(mux, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
}

// A view connecting over WebSocket receives the current snapshot
// immediately, then a fresh snapshot after each operator action.
func TestViewReceivesSnapshots(t *testing.T) {
	mux := newTestMux(t)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/auction"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var replay ViewEvent
	if err := conn.ReadJSON(&replay); err != nil {
		t.Fatalf("read replay snapshot: %v", err)
	}
	if replay.Type != "state_update" || replay.State == nil {
		t.Fatalf("replay event = %+v", replay)
	}
	if replay.State.IsActive {
		t.Error("replay snapshot already active")
	}

	resp, err := http.Post(srv.URL+"/api/auction/start", "application/json", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	resp.Body.Close()

	var updated ViewEvent
	if err := conn.ReadJSON(&updated); err != nil {
		t.Fatalf("read broadcast snapshot: %v", err)
	}
	if updated.State == nil || !updated.State.IsActive {
		t.Error("broadcast snapshot not active after start")
	}
}
