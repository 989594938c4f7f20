package amqp

import (
	"encoding/json"
	"time"

	"donoboard/internal/core"
)

// SnapshotMessage is the wire form of a leaderboard snapshot handed to the
// rendering collaborator. It carries the full render-ready board so the
// consumer never has to read the ledger.
type SnapshotMessage struct {
	Kind        core.SnapshotKind `json:"kind"`
	Month       string            `json:"month,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
	Entries     []core.Entry      `json:"entries"`
}

func NewSnapshotMessage(snap *core.Snapshot) *SnapshotMessage {
	return &SnapshotMessage{
		Kind:        snap.Kind,
		Month:       snap.Month,
		GeneratedAt: snap.GeneratedAt,
		Entries:     snap.Entries,
	}
}

func (m *SnapshotMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SnapshotMessageFromJSON(data []byte) (*SnapshotMessage, error) {
	var msg SnapshotMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
