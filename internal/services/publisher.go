package services

import (
	"context"
	"fmt"
	"log/slog"

	"donoboard/internal/core"
	"donoboard/internal/leaderboard"
)

// SnapshotTransport delivers a snapshot to the rendering collaborator.
type SnapshotTransport interface {
	PublishSnapshot(ctx context.Context, snap *core.Snapshot) error
}

// SnapshotPublisher refreshes the boards after mutations and hands changed
// snapshots to the transport. Delivery is best-effort: a publish failure is
// logged, never rolled into the mutation result — the ledger write already
// succeeded and the next change will republish anyway.
type SnapshotPublisher struct {
	projector *leaderboard.Projector
	transport SnapshotTransport // nil means log-only
}

func NewSnapshotPublisher(projector *leaderboard.Projector, transport SnapshotTransport) *SnapshotPublisher {
	return &SnapshotPublisher{projector: projector, transport: transport}
}

// Refresh projects both boards and publishes whichever changed. Called by the
// dispatcher after every mutating command.
func (p *SnapshotPublisher) Refresh(ctx context.Context) {
	for _, kind := range []core.SnapshotKind{core.AllTimeBoard, core.MonthlyBoard} {
		snap, err := p.project(ctx, kind, false)
		if err != nil {
			slog.ErrorContext(ctx, "Board projection failed",
				"board_kind", kind, "error", err)
			continue
		}
		if snap == nil {
			continue
		}
		p.publish(ctx, snap)
	}
}

// ForceView renders the current board of one kind regardless of the dedup
// cache, publishes it, and returns it for the caller to relay. This backs the
// public "show leaderboard" command: someone who asks always gets the board.
func (p *SnapshotPublisher) ForceView(ctx context.Context, kind core.SnapshotKind) (*core.Snapshot, error) {
	snap, err := p.project(ctx, kind, true)
	if err != nil {
		return nil, err
	}
	p.publish(ctx, snap)
	return snap, nil
}

func (p *SnapshotPublisher) project(ctx context.Context, kind core.SnapshotKind, force bool) (*core.Snapshot, error) {
	switch kind {
	case core.AllTimeBoard:
		return p.projector.AllTime(ctx, force)
	case core.MonthlyBoard:
		return p.projector.Monthly(ctx, force)
	default:
		return nil, fmt.Errorf("unknown board kind: %s", kind)
	}
}

func (p *SnapshotPublisher) publish(ctx context.Context, snap *core.Snapshot) {
	if p.transport == nil {
		slog.InfoContext(ctx, "No snapshot transport configured, skipping publication",
			"board_kind", snap.Kind, "entries", len(snap.Entries))
		return
	}
	if err := p.transport.PublishSnapshot(ctx, snap); err != nil {
		slog.ErrorContext(ctx, "Failed to publish board snapshot",
			"board_kind", snap.Kind, "error", err)
		return
	}
	slog.InfoContext(ctx, "Board snapshot published",
		"board_kind", snap.Kind, "entries", len(snap.Entries))
}
