package recon

import (
	"sort"
	"strings"
	"time"
)

// Matcher runs the ordered matching strategies over a candidate set. It holds
// no state beyond the run: a fresh Matcher per reconciliation keeps pair
// generation deterministic and keeps runs independent.
type Matcher struct {
	cfg *Config
	seq int
}

// NewMatcher returns a matcher using the given tolerances and phrase rules.
func NewMatcher(cfg *Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// MatchPairs runs Pass A (internal, same source) then Pass B (cross-source)
// and returns every candidate pair emitted, unresolved. Rows that picked up
// a Pass-A pair do not participate in Pass B.
func (m *Matcher) MatchPairs(set *CandidateSet) []*TransferPair {
	var pairs []*TransferPair

	sources := make([]string, 0, len(set.BySource))
	for src := range set.BySource {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	claimed := make(map[string]bool)
	for _, src := range sources {
		for _, pair := range m.matchWithin(set.BySource[src]) {
			pair.TransferType = TransferInternalConversion
			claimed[pair.Outgoing.Key()] = true
			claimed[pair.Incoming.Key()] = true
			pairs = append(pairs, pair)
		}
	}

	pairs = append(pairs, m.matchAcross(set.All, claimed)...)
	return pairs
}

// matchWithin pairs outgoing against incoming candidates of one source.
func (m *Matcher) matchWithin(candidates []*TransferCandidate) []*TransferPair {
	var pairs []*TransferPair
	for _, out := range candidates {
		if !out.IsOutgoing {
			continue
		}
		for _, in := range candidates {
			if in.IsOutgoing {
				continue
			}
			if pair := m.tryStrategies(out, in); pair != nil {
				pairs = append(pairs, pair)
			}
		}
	}
	return pairs
}

// matchAcross pairs candidates from different sources, skipping rows already
// matched internally.
func (m *Matcher) matchAcross(candidates []*TransferCandidate, claimed map[string]bool) []*TransferPair {
	var pairs []*TransferPair
	for _, out := range candidates {
		if !out.IsOutgoing || claimed[out.Record.RowRef().Key()] {
			continue
		}
		for _, in := range candidates {
			if in.IsOutgoing || in.Record.SourceID == out.Record.SourceID {
				continue
			}
			if claimed[in.Record.RowRef().Key()] {
				continue
			}
			pair := m.tryStrategies(out, in)
			if pair == nil {
				continue
			}
			if pair.Strategy == StrategyAmountDate {
				pair.TransferType = TransferStandard
			} else {
				pair.TransferType = TransferCrossBank
			}
			pairs = append(pairs, pair)
		}
	}
	return pairs
}

// tryStrategies evaluates the strategies in priority order; the first one
// whose base condition holds produces the pair. A pair that fails every base
// condition is not emitted at all: there is no partial credit across
// strategies.
func (m *Matcher) tryStrategies(out, in *TransferCandidate) *TransferPair {
	type strategyFn func(out, in *TransferCandidate) (float64, *ConversionDetails, bool)
	strategies := []struct {
		name Strategy
		fn   strategyFn
	}{
		{StrategyExchangeAmount, m.matchExchangeAmount},
		{StrategyDescriptionConversion, m.matchDescriptionConversion},
		{StrategyNameMatch, m.matchName},
		{StrategyAmountDate, m.matchAmountDate},
	}
	for _, s := range strategies {
		confidence, conversion, ok := s.fn(out, in)
		if !ok {
			continue
		}
		pair := &TransferPair{
			Outgoing:   out.Record.RowRef(),
			Incoming:   in.Record.RowRef(),
			Confidence: confidence,
			Strategy:   s.name,
			Conversion: conversion,
			seq:        m.seq,
		}
		m.seq++
		return pair
	}
	return nil
}

// matchExchangeAmount: the outgoing leg carries a bank-supplied converted
// amount that equals the incoming amount. Exact equality scores 1.0, within
// tolerance 0.95.
func (m *Matcher) matchExchangeAmount(out, in *TransferCandidate) (float64, *ConversionDetails, bool) {
	conv := out.Record.ConversionAmount
	if conv == nil {
		return 0, nil, false
	}
	toCurrency := out.Record.ConversionCurrency
	inCurrency := m.cfg.currencyFor(in.Record)
	if toCurrency != "" && inCurrency != "" && !strings.EqualFold(toCurrency, inCurrency) {
		return 0, nil, false
	}

	diff := conv.Sub(in.Record.Amount).Abs()
	var base float64
	switch {
	case diff.IsZero():
		base = 1.0
	case diff.LessThanOrEqual(m.cfg.epsilon()):
		base = 0.95
	default:
		return 0, nil, false
	}

	if toCurrency == "" {
		toCurrency = inCurrency
	}
	details := &ConversionDetails{
		FromCurrency: m.cfg.currencyFor(out.Record),
		ToCurrency:   toCurrency,
		FromAmount:   out.Record.Amount.Abs(),
		ToAmount:     *conv,
	}
	confidence := m.bonusScore(base, diff.IsZero(), sameDay(out.Record.Date, in.Record.Date),
		sharedTokenCount(out.NormDesc, in.NormDesc, m.cfg.MinTokenLength))
	return confidence, details, true
}

// matchDescriptionConversion: both narrations independently parse to the same
// conversion quadruple.
func (m *Matcher) matchDescriptionConversion(out, in *TransferCandidate) (float64, *ConversionDetails, bool) {
	po, pi := out.Record.ParsedConversion, in.Record.ParsedConversion
	if po == nil || pi == nil || !po.Equal(pi) {
		return 0, nil, false
	}
	exact := out.Record.Amount.Abs().Equal(po.FromAmount) && in.Record.Amount.Equal(po.ToAmount)
	confidence := m.bonusScore(0.5, exact, sameDay(out.Record.Date, in.Record.Date),
		sharedTokenCount(out.NormDesc, in.NormDesc, m.cfg.MinTokenLength))
	details := *po
	return confidence, &details, true
}

// matchName: the outgoing leg matches an outgoing phrase for its bank, the
// incoming leg an incoming phrase for its bank, and both name the same
// counterparty.
func (m *Matcher) matchName(out, in *TransferCandidate) (float64, *ConversionDetails, bool) {
	outName := extractName(m.cfg.ruleFor(out.Record.Bank).OutgoingPhrases, out.NormDesc)
	inName := extractName(m.cfg.ruleFor(in.Record.Bank).IncomingPhrases, in.NormDesc)
	if outName == "" || outName != inName {
		return 0, nil, false
	}
	exact := out.Record.Amount.Abs().Equal(in.Record.Amount)
	confidence := m.bonusScore(0.4, exact, sameDay(out.Record.Date, in.Record.Date),
		sharedTokenCount(out.NormDesc, in.NormDesc, m.cfg.MinTokenLength))
	return confidence, nil, true
}

// matchAmountDate: the traditional fallback. Mirrored amounts, compatible
// currencies, dates within the configured window.
func (m *Matcher) matchAmountDate(out, in *TransferCandidate) (float64, *ConversionDetails, bool) {
	if !m.cfg.amountsEqual(out.Record.Amount.Abs(), in.Record.Amount) {
		return 0, nil, false
	}
	outCur := m.cfg.currencyFor(out.Record)
	inCur := m.cfg.currencyFor(in.Record)
	if outCur != "" && inCur != "" && !strings.EqualFold(outCur, inCur) {
		return 0, nil, false
	}
	window := time.Duration(m.cfg.DateWindowHours) * time.Hour
	gap := out.Record.Date.Sub(in.Record.Date)
	if gap < 0 {
		gap = -gap
	}
	if gap > window {
		return 0, nil, false
	}
	exact := out.Record.Amount.Abs().Equal(in.Record.Amount)
	confidence := m.bonusScore(0.3, exact, sameDay(out.Record.Date, in.Record.Date),
		sharedTokenCount(out.NormDesc, in.NormDesc, m.cfg.MinTokenLength))
	return confidence, nil, true
}

// bonusScore layers the shared bonuses on a strategy's base confidence:
// exact amount equality, identical calendar day, and description overlap
// beyond a single incidental token. Total is capped at 1.0.
func (m *Matcher) bonusScore(base float64, exactAmount, sameCalendarDay bool, sharedTokens int) float64 {
	score := base
	if exactAmount {
		score += 0.3
	}
	if sameCalendarDay {
		score += 0.2
	}
	if sharedTokens >= 2 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// extractName returns the counterparty name following the first phrase that
// appears in the normalized narration, or "" when no phrase matches.
func extractName(phrases []string, normDesc string) string {
	for _, phrase := range phrases {
		phrase = strings.ToLower(phrase)
		idx := strings.Index(normDesc, phrase)
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(normDesc[idx+len(phrase):])
		name = strings.Trim(name, ".,:;")
		if name != "" {
			return name
		}
	}
	return ""
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
