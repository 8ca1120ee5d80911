package auction

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/Vishal-code-E/ipl/internal/models"
	"github.com/Vishal-code-E/ipl/internal/syncbus"
)

// DefaultBidIncrement is 25 lakh, a quarter crore.
const DefaultBidIncrement int64 = 25

// Store defines what the app needs from the persistent store. LoadState
// returns (nil, nil) when no session has been saved yet.
type Store interface {
	LoadState(ctx context.Context) (*models.AuctionState, error)
	SaveState(ctx context.Context, state *models.AuctionState) error
	ClearState(ctx context.Context) error
	LoadTeams(ctx context.Context) ([]models.Team, error)
	SaveTeams(ctx context.Context, teams []models.Team) error
	LoadPlayers(ctx context.Context) ([]models.Player, error)
	SavePlayers(ctx context.Context, players []models.Player) error
}

// Archiver receives completed sessions for long-term storage.
type Archiver interface {
	ArchiveSession(ctx context.Context, state *models.AuctionState) error
}

// Config holds app construction options.
type Config struct {
	// InstanceID identifies this view on the sync bus. A random ID is
	// generated when empty.
	InstanceID string

	// BidIncrement used when seeding a fresh session. Defaults to
	// DefaultBidIncrement.
	BidIncrement int64

	// SeedTeams and SeedPlayers populate the store's roster and catalog
	// collections on first run, when those collections are empty.
	SeedTeams   []models.Team
	SeedPlayers []models.Player

	// Clock for ledger and message timestamps. Real clock when nil.
	Clock clockwork.Clock

	// Archiver, when set, receives the session once the queue is
	// exhausted. Optional.
	Archiver Archiver
}

// App is the view controller: it owns the current session snapshot,
// drives the engine, persists every new snapshot, and keeps other views
// in step over the sync bus. One operation runs to completion before
// the next is accepted.
//
// Writes and broadcasts are fire-and-forget: the in-memory snapshot is
// adopted first and a failed save is only logged, never rolled back.
type App struct {
	store Store
	bus   syncbus.Bus
	cfg   Config
	id    string
	clock clockwork.Clock

	mu        sync.Mutex
	engine    *Engine
	state     *models.AuctionState
	teams     []models.Team
	history   *History
	listeners []func(*models.AuctionState)

	unsubscribe func()
}

// NewApp creates an app over the given store and bus. Call Init before
// use.
func NewApp(store Store, bus syncbus.Bus, cfg Config) *App {
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.New().String()
	}
	if cfg.BidIncrement <= 0 {
		cfg.BidIncrement = DefaultBidIncrement
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		store:   store,
		bus:     bus,
		cfg:     cfg,
		id:      cfg.InstanceID,
		clock:   clock,
		history: NewHistory(UndoDepth),
	}
}

// Init loads the roster, catalog and session from the store, seeding
// any collection that is empty, then subscribes to the sync bus.
func (a *App) Init(ctx context.Context) error {
	teams, err := a.store.LoadTeams(ctx)
	if err != nil {
		return fmt.Errorf("load teams: %w", err)
	}
	if len(teams) == 0 {
		teams = a.cfg.SeedTeams
		if err := a.store.SaveTeams(ctx, teams); err != nil {
			return fmt.Errorf("seed teams: %w", err)
		}
	}
	if len(teams) == 0 {
		return fmt.Errorf("no teams available")
	}

	players, err := a.store.LoadPlayers(ctx)
	if err != nil {
		return fmt.Errorf("load players: %w", err)
	}
	if len(players) == 0 {
		players = a.cfg.SeedPlayers
		if err := a.store.SavePlayers(ctx, players); err != nil {
			return fmt.Errorf("seed players: %w", err)
		}
	}

	a.mu.Lock()
	a.teams = teams
	a.engine = NewEngine(a.clock, teams)

	state, err := a.store.LoadState(ctx)
	if err != nil {
		a.mu.Unlock()
		return fmt.Errorf("load auction state: %w", err)
	}
	if state == nil {
		state = a.engine.NewSession(players, a.cfg.BidIncrement)
		if err := a.store.SaveState(ctx, state); err != nil {
			log.Error().Err(err).Msg("save seeded auction state")
		}
	}
	a.state = state
	a.mu.Unlock()

	unsubscribe, err := a.bus.Subscribe(a.handleMessage)
	if err != nil {
		return fmt.Errorf("subscribe sync bus: %w", err)
	}
	a.unsubscribe = unsubscribe

	log.Info().
		Str("instance_id", a.id).
		Int("teams", len(teams)).
		Int("players", len(state.PlayerQueue)).
		Str("phase", string(state.Phase())).
		Msg("auction initialized")
	return nil
}

// Close detaches the app from the sync bus.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// State returns the current session snapshot. Snapshots are immutable;
// callers must not modify the returned value.
func (a *App) State() *models.AuctionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Teams returns the roster.
func (a *App) Teams() []models.Team {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.Team(nil), a.teams...)
}

// CanUndo reports whether any snapshot is available to restore.
func (a *App) CanUndo() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.history.Len() > 0
}

// OnStateChange registers fn to run after every adopted snapshot, both
// local operations and broadcasts from other views.
func (a *App) OnStateChange(fn func(*models.AuctionState)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// listenersLocked copies the listener slice so callbacks can run after
// the mutex is released. Callers hold a.mu.
func (a *App) listenersLocked() []func(*models.AuctionState) {
	out := make([]func(*models.AuctionState), len(a.listeners))
	copy(out, a.listeners)
	return out
}

// Start begins the auction.
func (a *App) Start(ctx context.Context) (*models.AuctionState, error) {
	return a.apply(ctx, func(s *models.AuctionState) (*models.AuctionState, error) {
		return a.engine.Start(s)
	})
}

// TogglePause pauses or resumes bidding.
func (a *App) TogglePause(ctx context.Context) (*models.AuctionState, error) {
	return a.apply(ctx, func(s *models.AuctionState) (*models.AuctionState, error) {
		return a.engine.TogglePause(s)
	})
}

// PlaceBid records a bid by teamID for the current player.
func (a *App) PlaceBid(ctx context.Context, teamID string, amount int64) (*models.AuctionState, error) {
	return a.apply(ctx, func(s *models.AuctionState) (*models.AuctionState, error) {
		return a.engine.PlaceBid(s, teamID, amount)
	})
}

// RaiseBid bumps the leading team's bid by the configured increment.
func (a *App) RaiseBid(ctx context.Context) (*models.AuctionState, error) {
	return a.apply(ctx, func(s *models.AuctionState) (*models.AuctionState, error) {
		return a.engine.RaiseBid(s)
	})
}

// Sell hammers the current player to the leading team.
func (a *App) Sell(ctx context.Context) (*models.AuctionState, error) {
	return a.apply(ctx, func(s *models.AuctionState) (*models.AuctionState, error) {
		return a.engine.Sell(s)
	})
}

// MarkUnsold passes over the current player.
func (a *App) MarkUnsold(ctx context.Context) (*models.AuctionState, error) {
	return a.apply(ctx, func(s *models.AuctionState) (*models.AuctionState, error) {
		return a.engine.MarkUnsold(s)
	})
}

// SetBidIncrement updates the configured increment.
func (a *App) SetBidIncrement(ctx context.Context, increment int64) (*models.AuctionState, error) {
	return a.apply(ctx, func(s *models.AuctionState) (*models.AuctionState, error) {
		return a.engine.SetBidIncrement(s, increment)
	})
}

// Undo restores the snapshot preceding the last operation. Undo itself
// is not recorded, so it cannot be undone.
func (a *App) Undo(ctx context.Context) (*models.AuctionState, error) {
	a.mu.Lock()
	prev := a.history.Pop()
	if prev == nil {
		a.mu.Unlock()
		return nil, ErrNothingToUndo
	}
	a.commitLocked(ctx, prev)
	listeners := a.listenersLocked()
	a.mu.Unlock()

	a.notify(listeners, prev)
	return prev, nil
}

// Reset discards the session and the undo history, reseeds from the
// stored catalog and roster, and tells other views to reload.
func (a *App) Reset(ctx context.Context) (*models.AuctionState, error) {
	players, err := a.store.LoadPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load players for reset: %w", err)
	}

	a.mu.Lock()
	next := a.engine.NewSession(players, a.cfg.BidIncrement)
	a.history.Clear()
	a.commitLocked(ctx, next)
	listeners := a.listenersLocked()
	a.mu.Unlock()

	if err := a.bus.Publish(ctx, syncbus.Message{
		ID:     uuid.New().String(),
		Origin: a.id,
		Type:   syncbus.MessageReset,
		SentAt: a.clock.Now(),
	}); err != nil {
		log.Error().Err(err).Msg("publish reset")
	}

	a.notify(listeners, next)
	log.Info().Msg("auction reset")
	return next, nil
}

// apply runs op against the current snapshot and, on success, records
// the prior snapshot for undo and commits the new one.
func (a *App) apply(ctx context.Context, op func(*models.AuctionState) (*models.AuctionState, error)) (*models.AuctionState, error) {
	a.mu.Lock()
	next, err := op(a.state)
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}
	a.history.Push(a.state)
	wasCompleted := a.state.Completed() && a.state.IsActive
	a.commitLocked(ctx, next)
	listeners := a.listenersLocked()
	a.mu.Unlock()

	a.notify(listeners, next)

	if a.cfg.Archiver != nil && next.IsActive && next.Completed() && !wasCompleted {
		go func() {
			if err := a.cfg.Archiver.ArchiveSession(context.Background(), next); err != nil {
				log.Error().Err(err).Msg("archive completed session")
			}
		}()
	}
	return next, nil
}

// commitLocked adopts next as the current snapshot, then persists and
// broadcasts it. Both side effects are best-effort: failures are logged
// and the in-memory transition stands. Callers hold a.mu.
func (a *App) commitLocked(ctx context.Context, next *models.AuctionState) {
	a.state = next
	if err := a.store.SaveState(ctx, next); err != nil {
		log.Error().Err(err).Msg("save auction state")
	}
	if err := a.bus.Publish(ctx, syncbus.Message{
		ID:     uuid.New().String(),
		Origin: a.id,
		Type:   syncbus.MessageStateUpdate,
		State:  next,
		SentAt: a.clock.Now(),
	}); err != nil {
		log.Error().Err(err).Msg("broadcast auction state")
	}
}

func (a *App) notify(listeners []func(*models.AuctionState), state *models.AuctionState) {
	for _, fn := range listeners {
		fn(state)
	}
}

// handleMessage adopts snapshots broadcast by other views. The payload
// is authoritative: no re-read of storage. Own echoes are dropped by
// origin before anything else.
func (a *App) handleMessage(msg syncbus.Message) {
	if msg.Origin == a.id {
		return
	}
	switch msg.Type {
	case syncbus.MessageStateUpdate:
		if msg.State == nil {
			return
		}
		a.mu.Lock()
		a.state = msg.State
		listeners := a.listenersLocked()
		a.mu.Unlock()
		a.notify(listeners, msg.State)

	case syncbus.MessageReset:
		ctx := context.Background()
		state, err := a.store.LoadState(ctx)
		if err != nil {
			log.Error().Err(err).Msg("reload state after reset broadcast")
			return
		}
		if state == nil {
			players, err := a.store.LoadPlayers(ctx)
			if err != nil {
				log.Error().Err(err).Msg("reload players after reset broadcast")
				return
			}
			a.mu.Lock()
			state = a.engine.NewSession(players, a.cfg.BidIncrement)
			a.mu.Unlock()
		}
		a.mu.Lock()
		a.state = state
		listeners := a.listenersLocked()
		a.mu.Unlock()
		a.notify(listeners, state)
	}
}
