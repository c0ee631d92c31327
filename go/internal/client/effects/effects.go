// Package effects turns detected snapshot edges into locally observable side
// effects: audio cues and one-shot phase-entry callbacks.
package effects

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/justone/go/internal/client/diff"
	"github.com/mcdev12/justone/go/internal/protocol"
)

// Cue names the audio resources the client plays.
const (
	CueMaster = "master"
	CueStart  = "start"
	CueReveal = "reveal"
	CueTap    = "tap"
)

// DefaultVolumes maps each cue to its playback volume.
func DefaultVolumes() map[string]float64 {
	return map[string]float64{
		CueMaster: 0.7,
		CueStart:  0.4,
		CueReveal: 0.3,
		CueTap:    0.3,
	}
}

// SoundPlayer plays a named cue. A failed playback is the player's problem to
// report; dispatch never propagates it.
type SoundPlayer interface {
	Play(cue string, volume float64) error
}

// NopPlayer logs cues instead of playing them. Used headless.
type NopPlayer struct{}

func (NopPlayer) Play(cue string, volume float64) error {
	log.Debug().Str("cue", cue).Float64("volume", volume).Msg("sound cue")
	return nil
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMute installs the process-wide mute source. The dispatcher reads it on
// every fire and never mutates it.
func WithMute(muted func() bool) Option {
	return func(d *Dispatcher) { d.muted = muted }
}

// WithVolumes overrides the cue volume table.
func WithVolumes(volumes map[string]float64) Option {
	return func(d *Dispatcher) { d.volumes = volumes }
}

// Dispatcher maps edges to effects, exactly once per edge instance. Audio
// cues are gated by the mute source; phase-entry callbacks always run.
type Dispatcher struct {
	player  SoundPlayer
	volumes map[string]float64
	muted   func() bool

	mu      sync.Mutex
	nextID  int
	entries map[protocol.Phase]map[int]func()
}

// New creates a dispatcher around the given player.
func New(player SoundPlayer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		player:  player,
		volumes: DefaultVolumes(),
		entries: make(map[protocol.Phase]map[int]func()),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnPhaseEntered registers a callback invoked whenever the room enters the
// given phase. The returned function unsubscribes it.
func (d *Dispatcher) OnPhaseEntered(phase protocol.Phase, cb func()) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	if d.entries[phase] == nil {
		d.entries[phase] = make(map[int]func())
	}
	d.entries[phase][id] = cb

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.entries[phase], id)
	}
}

// Fire dispatches every edge once. Unknown edge variants are ignored.
func (d *Dispatcher) Fire(edges []diff.Edge) {
	for _, e := range edges {
		switch e.Kind {
		case diff.KindMasterHanded:
			d.play(CueMaster)
		case diff.KindRoundStarted:
			d.play(CueStart)
		case diff.KindRevealStarted:
			d.play(CueReveal)
		case diff.KindPlayerTapped:
			d.play(CueTap)
		case diff.KindPhaseEntered:
			d.enterPhase(e.Phase)
		}
	}
}

func (d *Dispatcher) play(cue string) {
	if d.muted != nil && d.muted() {
		return
	}
	if err := d.player.Play(cue, d.volumes[cue]); err != nil {
		// Missing or unloadable audio never interrupts reconciliation.
		log.Warn().Err(err).Str("cue", cue).Msg("sound playback failed")
	}
}

func (d *Dispatcher) enterPhase(phase protocol.Phase) {
	d.mu.Lock()
	cbs := make([]func(), 0, len(d.entries[phase]))
	for _, cb := range d.entries[phase] {
		cbs = append(cbs, cb)
	}
	d.mu.Unlock()

	for _, cb := range cbs {
		cb()
	}
}
