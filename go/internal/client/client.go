// Package client implements the room client core: it applies authoritative
// snapshots from the server, detects edges between consecutive snapshots,
// fires their effects exactly once, keeps the countdown in step with phase
// boundaries, and exposes the merged view to the rendering layer.
//
// All event handling (snapshot application, overlay merges, connectivity
// transitions, liveness) is serialized; components downstream of the
// reconciler only ever see one consistent view at a time.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/justone/go/internal/client/diff"
	"github.com/mcdev12/justone/go/internal/client/effects"
	"github.com/mcdev12/justone/go/internal/countdown"
	"github.com/mcdev12/justone/go/internal/debounce"
	"github.com/mcdev12/justone/go/internal/device"
	"github.com/mcdev12/justone/go/internal/protocol"
	"github.com/mcdev12/justone/go/internal/transport"
)

// Notifier surfaces server-pushed user-facing text. The rendering layer
// provides the implementation.
type Notifier interface {
	Notify(text string)
}

// Reloader performs a full client restart after the configured delay.
type Reloader interface {
	Reload()
}

// DeletePrompter asks the user whether stale rooms from a previous session
// may be deleted.
type DeletePrompter interface {
	ConfirmDelete(rooms []string) bool
}

// Option configures a Client.
type Option func(*Client)

// WithNotifier installs the user-facing message sink.
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithReloader installs the restart collaborator.
func WithReloader(r Reloader) Option {
	return func(c *Client) { c.reloader = r }
}

// WithDeletePrompter installs the stale-room prompt collaborator.
func WithDeletePrompter(p DeletePrompter) Option {
	return func(c *Client) { c.prompter = p }
}

// WithDispatcher replaces the default (log-only) effect dispatcher.
func WithDispatcher(d *effects.Dispatcher) Option {
	return func(c *Client) { c.fx = d }
}

// Client is the state reconciler. Construct with New, wire with Start, tear
// down with Close.
type Client struct {
	cfg   Config
	ch    transport.Channel
	clock clockwork.Clock
	store device.Store

	cd  *countdown.Countdown
	deb *debounce.Debouncer[float64]
	fx  *effects.Dispatcher

	notifier Notifier
	reloader Reloader
	prompter DeletePrompter

	mu          sync.Mutex
	view        View
	prev        *protocol.Snapshot
	identity    device.Identity
	subs        map[int]ViewHandler
	nextSub     int
	unsubs      []func()
	reloadTimer clockwork.Timer
	closed      bool
	stats       Stats
}

// New creates a client bound to the channel. Start must be called before any
// state flows.
func New(cfg Config, ch transport.Channel, clock clockwork.Clock, store device.Store, opts ...Option) *Client {
	c := &Client{
		cfg:   cfg,
		ch:    ch,
		clock: clock,
		store: store,
		cd:    countdown.New(clock),
		fx:    effects.New(effects.NopPlayer{}),
		subs:  make(map[int]ViewHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.deb = debounce.New(clock, cfg.SettingsDebounce, c.emitSetting,
		debounce.WithFilter(func(v float64) bool { return !math.IsNaN(v) }))
	return c
}

// Start loads the device identity, subscribes to every server topic, and
// sends init. It does not block; events are handled as the transport
// delivers them.
func (c *Client) Start(ctx context.Context) error {
	identity, err := device.EnsureIdentity(ctx, c.store)
	if err != nil {
		return fmt.Errorf("device identity: %w", err)
	}

	c.mu.Lock()
	c.identity = identity
	c.view.UserID = protocol.UserID(identity.UserID)
	// The transport dialed successfully before the client existed, so the
	// initial connected transition was never observed.
	c.stats.Connected = true
	c.unsubs = append(c.unsubs,
		c.ch.Subscribe(protocol.TopicState, c.onState),
		c.ch.Subscribe(protocol.TopicPlayerState, c.onPlayerState),
		c.ch.Subscribe(protocol.TopicMessage, c.onMessage),
		c.ch.Subscribe(protocol.TopicDisconnect, c.onDisconnect),
		c.ch.Subscribe(protocol.TopicReload, c.onReload),
		c.ch.Subscribe(protocol.TopicAuthRequired, c.onAuthRequired),
		c.ch.Subscribe(protocol.TopicPromptDeleteRoom, c.onPromptDelete),
		c.ch.Subscribe(protocol.TopicPing, c.onPing),
		c.ch.NotifyStatus(c.onStatus),
	)
	c.mu.Unlock()

	return c.sendInit(ctx)
}

// Close cancels all pending timer and debounce activity and detaches from
// the channel. The channel itself stays open; its owner closes it.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsubs := c.unsubs
	c.unsubs = nil
	c.stopReloadTimerLocked()
	c.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	c.cd.Stop()
	c.deb.Close()
}

// OnView subscribes to every published view. The returned function
// unsubscribes.
func (c *Client) OnView(h ViewHandler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = h

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// CurrentView returns a copy of the latest published view.
func (c *Client) CurrentView() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// CountdownSamples exposes the countdown tick stream for the timer display.
func (c *Client) CountdownSamples() <-chan countdown.Sample {
	return c.cd.Samples()
}

// Effects exposes the dispatcher so the rendering layer can register
// phase-entry callbacks.
func (c *Client) Effects() *effects.Dispatcher {
	return c.fx
}

// StatsSnapshot returns a copy of the processing counters.
func (c *Client) StatsSnapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Client) sendInit(ctx context.Context) error {
	acceptDelete, err := device.ConsumeAcceptDelete(ctx, c.store)
	if err != nil {
		// A stuck token must not keep the client from joining.
		log.Warn().Err(err).Msg("accept-delete token unavailable")
	}

	c.mu.Lock()
	identity := c.identity
	c.mu.Unlock()

	args := protocol.InitArgs{
		UserID:       protocol.UserID(identity.UserID),
		Token:        identity.Token,
		UserName:     identity.UserName,
		RoomID:       c.cfg.RoomID,
		AvatarID:     identity.AvatarID,
		AcceptDelete: acceptDelete,
	}
	if err := c.ch.Send(protocol.TopicInit, args); err != nil {
		return fmt.Errorf("send init: %w", err)
	}

	log.Info().
		Str("room_id", c.cfg.RoomID).
		Str("user_id", identity.UserID).
		Msg("client initialized")
	return nil
}

// onState applies one full snapshot replacement.
func (c *Client) onState(data json.RawMessage) {
	next := &protocol.Snapshot{}
	if err := json.Unmarshal(data, next); err != nil {
		log.Error().Err(err).Msg("malformed state snapshot")
		return
	}

	c.mu.Lock()
	if c.closed || c.view.Disconnected {
		c.mu.Unlock()
		return
	}

	first := c.prev == nil
	var edges []diff.Edge
	if !first {
		edges = diff.Diff(c.prev, next, c.view.UserID)
	}

	c.resetCountdownLocked(first, next)

	c.prev = next
	c.view.Snapshot = *next
	c.view.Inited = true
	c.stats.SnapshotsApplied++
	c.stats.EdgesFired += uint64(len(edges))
	c.mu.Unlock()

	// Effects fire after the view is committed, once per edge instance.
	if len(edges) > 0 {
		c.fx.Fire(edges)
	}
	c.publish()
}

// resetCountdownLocked restarts the countdown only when the timing inputs
// actually changed. A pause/resume with an unchanged deadline preserves the
// frozen fraction instead of rederiving it.
func (c *Client) resetCountdownLocked(first bool, next *protocol.Snapshot) {
	prev := c.prev

	total := time.Duration(next.PhaseDuration(next.Phase)) * time.Second
	if !next.Timed || total <= 0 {
		c.cd.Reset(0, 0, false)
		return
	}

	switch {
	case first, next.Phase != prev.Phase, next.Time != prev.Time:
		remaining := time.Duration(next.Time) * time.Millisecond
		c.cd.Reset(remaining, total, next.Paused)
	case next.Paused && !prev.Paused:
		c.cd.Pause()
	case !next.Paused && prev.Paused:
		c.cd.Resume()
	}
}

// onPlayerState merges the per-player overlay without touching the room
// snapshot.
func (c *Client) onPlayerState(data json.RawMessage) {
	var ps protocol.PlayerState
	if err := json.Unmarshal(data, &ps); err != nil {
		log.Error().Err(err).Msg("malformed player state")
		return
	}

	c.mu.Lock()
	if c.closed || c.view.Disconnected {
		c.mu.Unlock()
		return
	}
	c.view.Private = ps
	c.mu.Unlock()

	c.publish()
}

func (c *Client) onMessage(data json.RawMessage) {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		log.Error().Err(err).Msg("malformed server message")
		return
	}
	if c.notifier != nil {
		c.notifier.Notify(text)
	}
}

// onDisconnect transitions to the terminal disconnected view and cancels all
// pending timer and debounce activity.
func (c *Client) onDisconnect(data json.RawMessage) {
	var info protocol.DisconnectInfo
	if len(data) > 0 {
		if err := json.Unmarshal(data, &info); err != nil {
			log.Warn().Err(err).Msg("malformed disconnect info")
		}
	}
	c.disconnect(info.Reason)
}

func (c *Client) disconnect(reason string) {
	c.mu.Lock()
	if c.closed || c.view.Disconnected {
		c.mu.Unlock()
		return
	}
	c.view.Disconnected = true
	c.view.DisconnectReason = reason
	c.stats.Connected = false
	c.mu.Unlock()

	c.cd.Stop()
	c.deb.Close()

	log.Info().Str("reason", reason).Msg("room connection lost")
	c.publish()
}

func (c *Client) onReload(json.RawMessage) {
	c.scheduleReload()
}

func (c *Client) onAuthRequired(json.RawMessage) {
	c.mu.Lock()
	c.view.AuthRequired = true
	c.mu.Unlock()

	c.publish()
	c.scheduleReload()
}

// scheduleReload arms (or re-arms) the delayed restart.
func (c *Client) scheduleReload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.reloader == nil {
		return
	}
	c.stopReloadTimerLocked()
	c.reloadTimer = c.clock.AfterFunc(c.cfg.ReloadDelay, c.reloader.Reload)
	log.Info().Dur("delay", c.cfg.ReloadDelay).Msg("reload scheduled")
}

func (c *Client) stopReloadTimerLocked() {
	if c.reloadTimer != nil {
		c.reloadTimer.Stop()
		c.reloadTimer = nil
	}
}

// onPromptDelete handles the stale-room cleanup prompt. Acceptance is
// persisted as the accept-delete token and rides along on the next init.
func (c *Client) onPromptDelete(data json.RawMessage) {
	var rooms []string
	if err := json.Unmarshal(data, &rooms); err != nil {
		log.Error().Err(err).Msg("malformed delete prompt")
		return
	}
	if c.prompter == nil || !c.prompter.ConfirmDelete(rooms) {
		return
	}

	if err := c.store.Set(context.Background(), device.KeyAcceptDelete, "true"); err != nil {
		log.Error().Err(err).Msg("persist accept-delete token")
		return
	}
	c.scheduleReload()
}

// onPing echoes the opaque id back. Liveness only, never a game event.
func (c *Client) onPing(data json.RawMessage) {
	if err := c.ch.Send(protocol.TopicPong, json.RawMessage(data)); err != nil {
		log.Warn().Err(err).Msg("pong send failed")
		return
	}
	c.mu.Lock()
	c.stats.PingsAnswered++
	c.mu.Unlock()
}

// onStatus reacts to transport connectivity. A reconnect starts a fresh
// cycle: the first snapshot after it is treated as initial again.
func (c *Client) onStatus(s transport.Status) {
	if !s.Connected {
		c.disconnect(s.Reason)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	wasDown := c.view.Disconnected
	c.view.Disconnected = false
	c.view.DisconnectReason = ""
	c.view.Inited = false
	c.prev = nil
	c.stats.Connected = true
	if wasDown {
		// Debounce was torn down with the old connection.
		c.deb = debounce.New(c.clock, c.cfg.SettingsDebounce, c.emitSetting,
			debounce.WithFilter(func(v float64) bool { return !math.IsNaN(v) }))
	}
	c.mu.Unlock()

	if wasDown {
		if err := c.sendInit(context.Background()); err != nil {
			log.Error().Err(err).Msg("re-init after reconnect failed")
		}
	}
	c.publish()
}

// publish hands a copy of the current view to every subscriber.
func (c *Client) publish() {
	c.mu.Lock()
	v := c.view
	hs := make([]ViewHandler, 0, len(c.subs))
	for _, h := range c.subs {
		hs = append(hs, h)
	}
	c.mu.Unlock()

	for _, h := range hs {
		h(v)
	}
}
