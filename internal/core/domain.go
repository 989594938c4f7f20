package core

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	AllTimeBoard SnapshotKind = "all_time"
	MonthlyBoard SnapshotKind = "monthly"

	// Board sizes: the all-time board shows the top 30 entrants,
	// the monthly board the top 10.
	TopAllTimeSize = 30
	TopMonthlySize = 10
)

type (
	SnapshotKind string

	// AggregateRow is one entrant's row in either aggregate table.
	AggregateRow struct {
		ID          string
		DisplayName string
		Total       int64
	}

	// Entry is a single ranked line of a leaderboard snapshot.
	Entry struct {
		Rank        int    `json:"rank"`
		Medal       string `json:"medal,omitempty"`
		DisplayName string `json:"display_name"`
		Total       int64  `json:"total"`
	}

	// Snapshot is a render-ready top-N view of one aggregate.
	Snapshot struct {
		Kind        SnapshotKind `json:"kind"`
		Month       string       `json:"month,omitempty"` // set for monthly boards
		GeneratedAt time.Time    `json:"generated_at"`
		Entries     []Entry      `json:"entries"`
	}

	// ContributionEvent is an ordinary (non-admin) contribution as handed
	// over by the chat collaborator. The amount arrives as free text.
	ContributionEvent struct {
		ActorID       string
		DisplayName   string
		RawAmountText string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount: must be a positive integer")
	ErrUnknownTarget = errors.New("unknown target entrant")
)

// StorageError marks a ledger-store I/O failure so callers can tell it apart
// from validation errors. The operation in progress is considered failed; no
// retry happens at this layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// MonthKey maps a point in time to its calendar-month bucket key.
// It is the single source of truth for bucketing: the aggregation engine and
// the rollover check must both derive the key here.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// amountPattern matches currency-prefixed amounts in free chat text,
// e.g. "Rp. 50.000" or "rp 50000". Dots are thousands separators.
var amountPattern = regexp.MustCompile(`(?i)rp\.?\s?([\d.]+)`)

// ParseContributionAmount extracts a positive integer amount from free-text
// contribution messages. The bool reports whether a usable amount was found;
// unparsable or non-positive text is not an error, just a miss.
func ParseContributionAmount(text string) (int64, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, false
	}

	digits := trimmed
	if !isDigits(trimmed) {
		m := amountPattern.FindStringSubmatch(trimmed)
		if m == nil {
			return 0, false
		}
		digits = m[1]
	}

	digits = strings.ReplaceAll(digits, ".", "")
	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || amount <= 0 {
		return 0, false
	}
	return amount, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ValidateAmount checks an admin-supplied amount. Unlike the contribution
// path, a bad amount here fails loudly.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

var medals = [...]string{"🥇", "🥈", "🥉"}

// RankMedal returns the medal marker for ranks 1-3 and "" for everything else.
func RankMedal(rank int) string {
	if rank >= 1 && rank <= len(medals) {
		return medals[rank-1]
	}
	return ""
}

// FormatAmount renders an amount with dot thousands separators ("70.000"),
// matching the display convention of the rendered boards.
func FormatAmount(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
