package client

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/justone/go/internal/device"
	"github.com/mcdev12/justone/go/internal/protocol"
)

// Intent emitters. All sends are fire-and-forget; a failed send is logged
// and dropped, never surfaced to the caller.

type userArg struct {
	UserID protocol.UserID `json:"userId"`
}

type nameArg struct {
	Name string `json:"name"`
}

type modeArg struct {
	Mode int `json:"mode"`
}

func (c *Client) send(topic string, payload any) {
	if err := c.ch.Send(topic, payload); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("intent send failed")
		return
	}
	c.mu.Lock()
	c.stats.IntentsSent++
	c.mu.Unlock()
}

// SetSetting schedules a debounced numeric setting change. Unknown names and
// non-finite values are dropped silently; in-range enforcement happens here,
// before the debounce, so the final forwarded value is always valid.
func (c *Client) SetSetting(name string, value float64) {
	setting, ok := protocol.SettingByName(name)
	if !ok {
		log.Debug().Str("name", name).Msg("unknown setting dropped")
		return
	}

	c.mu.Lock()
	deb := c.deb
	c.mu.Unlock()
	deb.Schedule(name, setting.Clamp(value))
}

// emitSetting is the debounce sink: one set-param per settled setting.
func (c *Client) emitSetting(name string, value float64) {
	c.send(protocol.TopicSetParam, protocol.SetParam{Name: name, Value: value})
}

// ToggleHintBan flips the ban mark on a player's hint during reveal.
func (c *Client) ToggleHintBan(user protocol.UserID) {
	c.send(protocol.TopicToggleHintBan, userArg{UserID: user})
}

// SetLike marks a player's hint as the liked one.
func (c *Client) SetLike(user protocol.UserID) {
	c.send(protocol.TopicSetLike, userArg{UserID: user})
}

// TogglePause asks the server to pause or resume the phase timer.
func (c *Client) TogglePause() {
	c.send(protocol.TopicTogglePause, nil)
}

// ToggleLock locks or unlocks team membership.
func (c *Client) ToggleLock() {
	c.send(protocol.TopicToggleLock, nil)
}

// ToggleTimed switches timed play on or off.
func (c *Client) ToggleTimed() {
	c.send(protocol.TopicToggleTimed, nil)
}

// Restart asks the server to restart the game.
func (c *Client) Restart() {
	c.send(protocol.TopicRestart, nil)
}

// ChangeName renames the local player and persists the new name so the next
// session inits with it.
func (c *Client) ChangeName(ctx context.Context, name string) {
	if err := c.store.Set(ctx, device.KeyUserName, name); err != nil {
		log.Warn().Err(err).Msg("persist user name")
	}
	c.mu.Lock()
	c.identity.UserName = name
	c.mu.Unlock()

	c.send(protocol.TopicChangeName, nameArg{Name: name})
}

// RemovePlayer ejects a player from the room (host only).
func (c *Client) RemovePlayer(user protocol.UserID) {
	c.send(protocol.TopicRemovePlayer, userArg{UserID: user})
}

// GiveHost hands the host role to another player.
func (c *Client) GiveHost(user protocol.UserID) {
	c.send(protocol.TopicGiveHost, userArg{UserID: user})
}

// JoinPlayers moves the local user to the player seats.
func (c *Client) JoinPlayers() {
	c.send(protocol.TopicPlayersJoin, nil)
}

// JoinSpectators moves the local user to the spectator bench.
func (c *Client) JoinSpectators() {
	c.send(protocol.TopicSpectatorsJoin, nil)
}

// SetRoomMode switches the room's play mode.
func (c *Client) SetRoomMode(mode int) {
	c.send(protocol.TopicSetRoomMode, modeArg{Mode: mode})
}
