// sim/sim.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package sim drives the simulation: it owns the aircraft registry,
// advances every aircraft's guidance loop once per one-second tick,
// evaluates destination completion, and publishes completion events for
// the scoring and quest consumers.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/avsim/towersim/aviation"
	"github.com/avsim/towersim/log"
	"github.com/avsim/towersim/nav"
	"github.com/avsim/towersim/util"
	"github.com/avsim/towersim/wx"

	"github.com/brunoga/deep"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownCallsign   = errors.New("unknown callsign")
	ErrDuplicateCallsign = errors.New("duplicate callsign")
)

type Callsign string

// Aircraft ties together an aircraft's identity, its guidance state, and
// its objective.
type Aircraft struct {
	Callsign    Callsign
	Type        string
	Nav         *nav.Nav
	Destination *Destination

	// Incremented whenever a control input changes the aircraft's
	// targets; stale predictions must not survive a new clearance.
	targetGen int64
}

// Conflict-detection consumers re-request identical lookaheads every
// frame, so recent predictions are cached. The tick and the target
// generation in the key invalidate entries as soon as the simulation
// advances or the aircraft receives a new clearance.
type predictionKey struct {
	callsign  Callsign
	tick      int64
	targetGen int64
	horizon   float32
	step      float32
}

const predictionCacheSize = 64

// Sim is the simulation driver. All exported methods are safe for
// concurrent use.
type Sim struct {
	mu sync.Mutex

	aircraft map[Callsign]*Aircraft
	wind     *wx.WindModel

	eventStream *EventStream
	Stats       *Stats

	SimRate float32
	Paused  bool
	SimTime time.Time
	tick    int64

	lastUpdateTime time.Time // w.r.t. true wallclock time
	updateTimeSlop time.Duration

	predictions *lru.Cache[predictionKey, []nav.FlightState]
	lg          *log.Logger
}

func NewSim(wind *wx.WindModel, lg *log.Logger) *Sim {
	predictions, err := lru.New[predictionKey, []nav.FlightState](predictionCacheSize)
	if err != nil {
		// Only possible for a non-positive size.
		panic(err)
	}

	return &Sim{
		aircraft:       make(map[Callsign]*Aircraft),
		wind:           wind,
		eventStream:    NewEventStream(lg),
		Stats:          &Stats{},
		SimRate:        1,
		SimTime:        time.Now(),
		lastUpdateTime: time.Now(),
		predictions:    predictions,
		lg:             lg,
	}
}

// AddAircraft spawns an aircraft with the given type and initial state.
// The destination may be nil for aircraft without an objective.
func (s *Sim) AddAircraft(callsign Callsign, icaoType string, fs nav.FlightState, dest *Destination) error {
	perf, err := aviation.Lookup(icaoType)
	if err != nil {
		return err
	}
	if dest != nil {
		if err := dest.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.aircraft[callsign]; ok {
		return fmt.Errorf("%s: %w", callsign, ErrDuplicateCallsign)
	}
	s.aircraft[callsign] = &Aircraft{
		Callsign:    callsign,
		Type:        icaoType,
		Nav:         nav.MakeNav(perf, fs),
		Destination: dest,
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////
// Time

// Update advances the simulation according to the wallclock time passed
// since the previous call, scaled by the sim rate. The simulation itself
// always steps in whole seconds; fractional leftovers are carried into
// the next call.
func (s *Sim) Update() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Paused {
		s.lastUpdateTime = time.Now()
		s.updateTimeSlop = 0
		return
	}

	elapsed := time.Since(s.lastUpdateTime)
	elapsed = time.Duration(s.SimRate*float32(elapsed)) + s.updateTimeSlop

	ns := int(elapsed.Truncate(time.Second).Seconds())
	if ns > 10 {
		s.lg.Warn("unexpected hitch in update rate", slog.Duration("elapsed", elapsed),
			slog.Int("steps", ns), slog.Duration("slop", s.updateTimeSlop))
	}
	for i := 0; i < ns; i++ {
		s.stepOneSecond()
	}
	s.updateTimeSlop = elapsed - elapsed.Truncate(time.Second)

	s.lastUpdateTime = time.Now()
}

// FastForward runs the simulation for the given duration of sim time
// without regard for the wallclock; used by headless runs and tests.
func (s *Sim) FastForward(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := 0, int(d.Seconds()); i < n; i++ {
		s.stepOneSecond()
	}
	s.lastUpdateTime = time.Now()
	s.updateTimeSlop = 0
}

func (s *Sim) SetSimRate(rate float32) error {
	if rate <= 0 || rate > 20 {
		return fmt.Errorf("invalid sim rate %v", rate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.SimRate = rate
	return nil
}

// stepOneSecond runs one tick: every aircraft's guidance update from its
// previous state, then destination evaluation against the new states.
// Callers hold s.mu.
func (s *Sim) stepOneSecond() {
	s.SimTime = s.SimTime.Add(time.Second)
	s.tick++

	// Each aircraft's update reads only its own state plus the read-only
	// wind model, so the per-aircraft pass runs in parallel. Errors are
	// collected per aircraft rather than failing the group: an aircraft
	// with a bad update is logged and skipped for this tick, not fatal to
	// the simulation.
	aircraft := make([]*Aircraft, 0, len(s.aircraft))
	for _, ac := range s.aircraft {
		aircraft = append(aircraft, ac)
	}
	errs := make([]error, len(aircraft))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, ac := range aircraft {
		i, ac := i, ac
		g.Go(func() error {
			errs[i] = ac.Nav.Update(1, s.wind)
			return nil
		})
	}
	g.Wait()

	for i, err := range errs {
		if err != nil {
			s.lg.Error("aircraft update failed", slog.String("callsign", string(aircraft[i].Callsign)),
				slog.Any("error", err))
		}
	}

	// Destination evaluation and registry mutation stay serial; sorted
	// callsigns make the completion event order deterministic.
	for _, callsign := range util.SortedMapKeys(s.aircraft) {
		ac := s.aircraft[callsign]
		if ac.Destination != nil && ac.Destination.update(&ac.Nav.FlightState) {
			s.completeDestination(ac)
		}
	}
}

// completeDestination posts the completion event, updates the score, and
// despawns the aircraft. Callers hold s.mu.
func (s *Sim) completeDestination(ac *Aircraft) {
	reward := s.Stats.recordCompletion(ac.Destination)
	s.eventStream.Post(Event{
		Type:      DestinationCompletedEvent,
		Callsign:  ac.Callsign,
		Aerodrome: ac.Destination.Aerodrome,
		Score:     reward,
		Message:   ac.Destination.Kind.String(),
	})
	delete(s.aircraft, ac.Callsign)
	s.eventStream.Post(Event{Type: AircraftRemovedEvent, Callsign: ac.Callsign})

	s.lg.Info("destination completed",
		slog.String("callsign", string(ac.Callsign)),
		slog.String("kind", ac.Destination.Kind.String()),
		slog.Int("score", s.Stats.Score))
}

// NotifyRunwayVacated is called by the airport/ground collaborator when
// the aircraft has landed and cleared the runway at the given aerodrome;
// it completes landing and vacate-any-runway destinations.
func (s *Sim) NotifyRunwayVacated(callsign Callsign, aerodrome string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ac, ok := s.aircraft[callsign]
	if !ok {
		return fmt.Errorf("%s: %w", callsign, ErrUnknownCallsign)
	}
	if ac.Destination != nil && ac.Destination.notifyRunwayVacated(aerodrome) {
		s.completeDestination(ac)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////
// Accessors and control input

// AircraftState returns a read-only snapshot of an aircraft's kinematic
// state and destination.
func (s *Sim) AircraftState(callsign Callsign) (nav.FlightState, Destination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ac, ok := s.aircraft[callsign]
	if !ok {
		return nav.FlightState{}, Destination{}, fmt.Errorf("%s: %w", callsign, ErrUnknownCallsign)
	}
	var dest Destination
	if ac.Destination != nil {
		// Deep copy so the caller can't reach the live thresholds through
		// the optional-field pointers.
		dest = deep.MustCopy(*ac.Destination)
	}
	return ac.Nav.FlightState, dest, nil
}

// Callsigns returns the registered callsigns, sorted.
func (s *Sim) Callsigns() []Callsign {
	s.mu.Lock()
	defer s.mu.Unlock()
	return util.SortedMapKeys(s.aircraft)
}

func (s *Sim) SetTargetHeading(callsign Callsign, hdg float32) error {
	return s.withAircraft(callsign, func(ac *Aircraft) error {
		return ac.Nav.AssignHeading(hdg)
	})
}

func (s *Sim) SetTargetSpeed(callsign Callsign, kts float32) error {
	return s.withAircraft(callsign, func(ac *Aircraft) error {
		return ac.Nav.AssignSpeed(kts)
	})
}

func (s *Sim) SetTargetAltitude(callsign Callsign, ft float32, expedite bool) error {
	return s.withAircraft(callsign, func(ac *Aircraft) error {
		return ac.Nav.AssignAltitude(ft, expedite)
	})
}

func (s *Sim) SetDirectTo(callsign Callsign, p [2]float32) error {
	return s.withAircraft(callsign, func(ac *Aircraft) error {
		return ac.Nav.DirectTo(p)
	})
}

// SetTargets applies any combination of targets atomically; nil leaves an
// axis unchanged.
func (s *Sim) SetTargets(callsign Callsign, hdg, kts, ft *float32, expedite bool) error {
	return s.withAircraft(callsign, func(ac *Aircraft) error {
		if hdg != nil {
			if err := ac.Nav.AssignHeading(*hdg); err != nil {
				return err
			}
		}
		if kts != nil {
			if err := ac.Nav.AssignSpeed(*kts); err != nil {
				return err
			}
		}
		if ft != nil {
			if err := ac.Nav.AssignAltitude(*ft, expedite); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Sim) withAircraft(callsign Callsign, fn func(*Aircraft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ac, ok := s.aircraft[callsign]
	if !ok {
		return fmt.Errorf("%s: %w", callsign, ErrUnknownCallsign)
	}
	if err := fn(ac); err != nil {
		return err
	}
	ac.targetGen++
	return nil
}

// Predict returns the aircraft's projected trajectory over the given
// horizon at the given step (both seconds). Results are cached per tick
// since conflict detection re-requests the same lookahead repeatedly; a
// new clearance invalidates the aircraft's cached trajectories.
func (s *Sim) Predict(callsign Callsign, horizon, step float32) ([]nav.FlightState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ac, ok := s.aircraft[callsign]
	if !ok {
		return nil, fmt.Errorf("%s: %w", callsign, ErrUnknownCallsign)
	}

	key := predictionKey{callsign: callsign, tick: s.tick, targetGen: ac.targetGen,
		horizon: horizon, step: step}
	if states, ok := s.predictions.Get(key); ok {
		return slices.Clone(states), nil
	}

	states, err := ac.Nav.Predict(s.wind, horizon, step)
	if err != nil {
		return nil, err
	}
	s.predictions.Add(key, states)
	return slices.Clone(states), nil
}

// WindAt exposes the scenario wind field for debug overlays.
func (s *Sim) WindAt(p [2]float32, alt float32) [2]float32 {
	return s.wind.WindAt(p, alt)
}

// Events returns the sim's event stream for subscribers.
func (s *Sim) Events() *EventStream {
	return s.eventStream
}
