package client

import "github.com/mcdev12/justone/go/internal/protocol"

// View is the room state the rendering layer reads: the latest authoritative
// snapshot merged with the per-player overlay and local-only fields. Readers
// receive copies; only the reconciler mutates the live value.
type View struct {
	protocol.Snapshot

	// Private is the shallow per-player overlay (own hint, revealed word).
	Private protocol.PlayerState

	UserID           protocol.UserID
	Inited           bool
	Disconnected     bool
	DisconnectReason string
	AuthRequired     bool
}

// ViewHandler observes each published view.
type ViewHandler func(v View)

// Stats counts what the client has processed, for the status surface.
type Stats struct {
	Connected        bool   `json:"connected"`
	SnapshotsApplied uint64 `json:"snapshotsApplied"`
	EdgesFired       uint64 `json:"edgesFired"`
	IntentsSent      uint64 `json:"intentsSent"`
	PingsAnswered    uint64 `json:"pingsAnswered"`
}
