// Package diff detects semantic edges between two consecutive room
// snapshots. Detection is pure: it never fabricates an edge from a single
// snapshot and never holds state between calls.
package diff

import (
	"github.com/mcdev12/justone/go/internal/protocol"
)

// Kind identifies one edge variant.
type Kind int

const (
	// KindMasterHanded fires when the master role lands on the local user.
	KindMasterHanded Kind = iota
	// KindRoundStarted fires on the RoundSetup to HintWriting transition.
	KindRoundStarted
	// KindRevealStarted fires on the HintWriting to Reveal transition.
	KindRevealStarted
	// KindPlayerTapped fires once per snapshot when the ready set changed
	// size during HintWriting, regardless of how many players changed.
	KindPlayerTapped
	// KindPhaseEntered fires whenever the phase changed at all.
	KindPhaseEntered
)

// Edge is one detected transition. Edges carry only what an effect needs to
// select and parameterize itself.
type Edge struct {
	Kind  Kind
	User  protocol.UserID // master recipient, for KindMasterHanded
	Phase protocol.Phase  // entered phase, for KindPhaseEntered
}

// Diff compares two consecutive snapshots and returns the edges between
// them. All edges are suppressed while the previous snapshot is still in the
// lobby phase, so a fresh game start never produces spurious cues.
//
// The cue edges form one precedence chain (master beats round start beats
// reveal beats tap); the phase-entered edge is an independent category and
// may co-occur with any of them.
func Diff(prev, next *protocol.Snapshot, local protocol.UserID) []Edge {
	if prev == nil || next == nil {
		return nil
	}
	if prev.Phase == protocol.PhaseLobby {
		return nil
	}

	var edges []Edge

	switch {
	case next.Master != prev.Master && next.Master == local:
		edges = append(edges, Edge{Kind: KindMasterHanded, User: next.Master})
	case prev.Phase == protocol.PhaseRoundSetup && next.Phase == protocol.PhaseHintWriting:
		edges = append(edges, Edge{Kind: KindRoundStarted})
	case prev.Phase == protocol.PhaseHintWriting && next.Phase == protocol.PhaseReveal:
		edges = append(edges, Edge{Kind: KindRevealStarted})
	case next.Phase == protocol.PhaseHintWriting && len(prev.ReadyPlayers) != len(next.ReadyPlayers):
		edges = append(edges, Edge{Kind: KindPlayerTapped})
	}

	if next.Phase != prev.Phase {
		edges = append(edges, Edge{Kind: KindPhaseEntered, Phase: next.Phase})
	}

	return edges
}
