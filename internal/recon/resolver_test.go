package recon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(source, desc string, amount string) RowRef {
	return RowRef{
		SourceID:    source,
		Date:        time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString(amount),
		Description: desc,
	}
}

func TestResolvePairs_HigherConfidenceWins(t *testing.T) {
	out := ref("a.csv", "sent money", "-100")
	strong := &TransferPair{Outgoing: out, Incoming: ref("b.csv", "received one", "100"), Confidence: 0.9, seq: 0}
	weak := &TransferPair{Outgoing: out, Incoming: ref("c.csv", "received two", "100"), Confidence: 0.4, seq: 1}

	accepted := ResolvePairs([]*TransferPair{weak, strong}, nil)

	require.Len(t, accepted, 1)
	assert.Same(t, strong, accepted[0])
}

func TestResolvePairs_NoDoubleAssignment(t *testing.T) {
	in := ref("b.csv", "received", "100")
	p1 := &TransferPair{Outgoing: ref("a.csv", "sent one", "-100"), Incoming: in, Confidence: 0.8, seq: 0}
	p2 := &TransferPair{Outgoing: ref("c.csv", "sent two", "-100"), Incoming: in, Confidence: 0.8, seq: 1}
	p3 := &TransferPair{Outgoing: ref("d.csv", "sent three", "-50"), Incoming: ref("e.csv", "received other", "50"), Confidence: 0.3, seq: 2}

	accepted := ResolvePairs([]*TransferPair{p1, p2, p3}, nil)

	seen := make(map[string]bool)
	for _, p := range accepted {
		assert.False(t, seen[p.Outgoing.Key()], "row claimed twice")
		assert.False(t, seen[p.Incoming.Key()], "row claimed twice")
		seen[p.Outgoing.Key()] = true
		seen[p.Incoming.Key()] = true
	}
	require.Len(t, accepted, 2)
}

func TestResolvePairs_TieBreaksOnGenerationOrder(t *testing.T) {
	in := ref("b.csv", "received", "100")
	first := &TransferPair{Outgoing: ref("a.csv", "sent one", "-100"), Incoming: in, Confidence: 0.8, seq: 0}
	second := &TransferPair{Outgoing: ref("c.csv", "sent two", "-100"), Incoming: in, Confidence: 0.8, seq: 1}

	accepted := ResolvePairs([]*TransferPair{second, first}, nil)

	require.Len(t, accepted, 1)
	assert.Same(t, first, accepted[0])
}

func TestResolvePairs_RejectedOverride(t *testing.T) {
	pair := &TransferPair{Outgoing: ref("a.csv", "sent", "-100"), Incoming: ref("b.csv", "received", "100"), Confidence: 0.9}

	accepted := ResolvePairs([]*TransferPair{pair}, NewOverrideSet(nil, []string{pair.Key()}))

	assert.Empty(t, accepted)
}

func TestResolvePairs_ConfirmedOverrideBeatsConfidence(t *testing.T) {
	in := ref("b.csv", "received", "100")
	weak := &TransferPair{Outgoing: ref("a.csv", "sent one", "-100"), Incoming: in, Confidence: 0.3, seq: 0}
	strong := &TransferPair{Outgoing: ref("c.csv", "sent two", "-100"), Incoming: in, Confidence: 0.95, seq: 1}

	accepted := ResolvePairs([]*TransferPair{weak, strong}, NewOverrideSet([]string{weak.Key()}, nil))

	require.Len(t, accepted, 1)
	assert.Same(t, weak, accepted[0])
}
