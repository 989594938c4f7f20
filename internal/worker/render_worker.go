// Package worker renders published leaderboard snapshots for display.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"donoboard/internal/amqp"
	"donoboard/internal/core"
)

// RenderWorker consumes board snapshots and renders them. It stands in for
// the chat-channel side of the system: whatever arrives here has already
// passed change detection, so every message is worth displaying.
type RenderWorker struct {
	out func(string)
}

// NewRenderWorker returns a worker writing rendered boards through out.
// A nil out renders to the log.
func NewRenderWorker(out func(string)) *RenderWorker {
	if out == nil {
		out = func(board string) {
			slog.Info("Rendered board\n" + board)
		}
	}
	return &RenderWorker{out: out}
}

// HandleSnapshot processes a single snapshot message.
func (w *RenderWorker) HandleSnapshot(ctx context.Context, msg *amqp.SnapshotMessage) error {
	if msg.Kind != core.AllTimeBoard && msg.Kind != core.MonthlyBoard {
		return fmt.Errorf("unknown board kind: %q", msg.Kind)
	}

	w.out(FormatBoard(msg))

	slog.InfoContext(ctx, "Board rendered",
		"board_kind", msg.Kind,
		"month", msg.Month,
		"entries", len(msg.Entries))
	return nil
}

// FormatBoard turns a snapshot into display text:
//
//	🏆 TOP 30 Donators
//	🥇 1. alice — Rp 70.000
//	🥈 2. bob — Rp 50.000
func FormatBoard(msg *amqp.SnapshotMessage) string {
	var b strings.Builder

	switch msg.Kind {
	case core.MonthlyBoard:
		fmt.Fprintf(&b, "🏆 TOP %d Monthly Donators (%s)\n", core.TopMonthlySize, msg.Month)
	default:
		fmt.Fprintf(&b, "🏆 TOP %d Donators\n", core.TopAllTimeSize)
	}

	if len(msg.Entries) == 0 {
		b.WriteString("No donations yet.")
		return b.String()
	}

	for i, entry := range msg.Entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		if entry.Medal != "" {
			fmt.Fprintf(&b, "%s %d. %s — Rp %s", entry.Medal, entry.Rank, entry.DisplayName, core.FormatAmount(entry.Total))
		} else {
			fmt.Fprintf(&b, "%d. %s — Rp %s", entry.Rank, entry.DisplayName, core.FormatAmount(entry.Total))
		}
	}

	return b.String()
}
