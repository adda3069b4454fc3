package recon

import "strings"

// CandidateSet is the filtered candidate pool, partitioned per source for the
// internal pass and pooled for the cross-source pass.
type CandidateSet struct {
	BySource map[string][]*TransferCandidate
	All      []*TransferCandidate
}

// SelectCandidates reduces the record set to plausible transfer legs. A
// record qualifies if its narration contains transfer vocabulary (generic or
// registered for its inferred bank) or it carries a bank-supplied conversion
// amount. Records missing an amount or date never qualify. Pure filter: an
// empty result is a valid outcome, not an error.
func SelectCandidates(cfg *Config, records []*TransactionRecord) *CandidateSet {
	set := &CandidateSet{BySource: make(map[string][]*TransferCandidate)}
	for _, rec := range records {
		if rec.Date.IsZero() || rec.Amount.IsZero() {
			// MalformedRecord: excluded from candidacy, not fatal to the run.
			continue
		}
		if !isTransferLike(cfg, rec) {
			continue
		}
		cand := &TransferCandidate{
			ID:         CandidateID(len(set.All)),
			Record:     rec,
			IsOutgoing: rec.Amount.IsNegative(),
			NormDesc:   normalizeText(rec.Description),
		}
		set.All = append(set.All, cand)
		set.BySource[rec.SourceID] = append(set.BySource[rec.SourceID], cand)
	}
	return set
}

func isTransferLike(cfg *Config, rec *TransactionRecord) bool {
	if rec.ConversionAmount != nil {
		return true
	}
	desc := normalizeText(rec.Description)
	for _, word := range cfg.Vocabulary {
		if strings.Contains(desc, strings.ToLower(word)) {
			return true
		}
	}
	rule := cfg.ruleFor(rec.Bank)
	for _, phrase := range rule.OutgoingPhrases {
		if strings.Contains(desc, strings.ToLower(phrase)) {
			return true
		}
	}
	for _, phrase := range rule.IncomingPhrases {
		if strings.Contains(desc, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}
