// Package client manages client-side race state derived from server
// pushes. The TUI renders from this state and never talks to the store.
package client

import (
	"github.com/j2y-cmd/touch-race/internal/protocol"
)

// Phase is the local view of race progression. The shared room status
// only ever reaches "countdown"; the playing and finished phases exist
// per client, driven by its own timer and its own tap counter.
type Phase int

const (
	PhaseLobby     Phase = iota // not in a room
	PhaseWaiting                // in a room, race not started
	PhaseCountdown              // start signal received
	PhaseRacing                 // countdown elapsed, taps count
	PhaseFinished               // this player crossed the line
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseWaiting:
		return "waiting"
	case PhaseCountdown:
		return "countdown"
	case PhaseRacing:
		return "racing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// RaceState manages client-side race state
type RaceState struct {
	// Own identity
	MyID   string
	MyName string
	MyChar string

	// Server-provided limits
	WinScore  int
	RoomCount int
	Chars     []string

	// Current room
	Room    int
	Status  string
	Players []protocol.PlayerInfo
	Winners []protocol.WinnerInfo

	// Race progress
	Phase   Phase
	MyScore int // local tap counter, ahead of the server snapshot
	MyRank  int // 0 until finished

	// Lobby
	Rooms       []protocol.RoomListItem
	OnlineCount int
}

// NewRaceState creates a new race state
func NewRaceState() *RaceState {
	return &RaceState{Phase: PhaseLobby}
}

// ApplyConnected stores identity and limits from the handshake.
func (rs *RaceState) ApplyConnected(p *protocol.ConnectedPayload) {
	rs.MyID = p.PlayerID
	rs.MyName = p.PlayerName
	rs.MyChar = p.PlayerChar
	rs.Chars = p.Chars
	rs.RoomCount = p.RoomCount
	rs.WinScore = p.WinScore
}

// ApplyJoined enters a room.
func (rs *RaceState) ApplyJoined(p *protocol.RoomJoinedPayload) {
	rs.Room = p.Room
	rs.Phase = PhaseWaiting
	rs.MyScore = 0
	rs.MyRank = 0
	rs.ApplyRoomState(&p.State)
}

// ApplyRoomState merges a room snapshot. The local tap counter stays
// ahead of whatever score the snapshot carries for us.
func (rs *RaceState) ApplyRoomState(state *protocol.RoomStateMsg) {
	if state.Room != rs.Room {
		return
	}
	rs.Status = state.Status
	rs.Winners = state.Winners

	players := make([]protocol.PlayerInfo, len(state.Players))
	copy(players, state.Players)
	for i := range players {
		if players[i].ID == rs.MyID && players[i].Score < rs.MyScore {
			players[i].Score = rs.MyScore
		}
	}
	rs.Players = players
}

// StartCountdown flips to the countdown phase once.
func (rs *RaceState) StartCountdown() {
	if rs.Phase == PhaseWaiting {
		rs.Phase = PhaseCountdown
	}
}

// StartRacing flips to the racing phase.
func (rs *RaceState) StartRacing() {
	if rs.Phase == PhaseCountdown {
		rs.Phase = PhaseRacing
	}
}

// Tap counts a local tap and reports whether it crossed the line.
func (rs *RaceState) Tap() bool {
	if rs.Phase != PhaseRacing {
		return false
	}
	rs.MyScore++
	for i := range rs.Players {
		if rs.Players[i].ID == rs.MyID {
			rs.Players[i].Score = rs.MyScore
		}
	}
	if rs.WinScore > 0 && rs.MyScore >= rs.WinScore {
		rs.Phase = PhaseFinished
		return true
	}
	return false
}

// ApplyFinish records the server-assigned rank.
func (rs *RaceState) ApplyFinish(p *protocol.FinishRecordedPayload) {
	rs.Phase = PhaseFinished
	rs.MyRank = p.Rank
	rs.Winners = p.Winners
}

// IsHost reports whether this player is the room host.
func (rs *RaceState) IsHost() bool {
	for _, p := range rs.Players {
		if p.ID == rs.MyID {
			return p.IsHost
		}
	}
	return false
}

// Progress returns a player's progress toward the line in [0, 1].
func (rs *RaceState) Progress(playerID string) float64 {
	if rs.WinScore <= 0 {
		return 0
	}
	for _, p := range rs.Players {
		if p.ID == playerID {
			progress := float64(p.Score) / float64(rs.WinScore)
			if progress > 1 {
				return 1
			}
			return progress
		}
	}
	return 0
}

// LeaveRoom returns to the lobby.
func (rs *RaceState) LeaveRoom() {
	rs.Room = 0
	rs.Status = ""
	rs.Players = nil
	rs.Winners = nil
	rs.Phase = PhaseLobby
	rs.MyScore = 0
	rs.MyRank = 0
}
