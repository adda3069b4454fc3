package recon

import (
	"fmt"
	"strings"
)

// ApplyResult reports what the applier managed to relabel.
type ApplyResult struct {
	Applied int
	// Unresolved lists the keys of accepted pairs whose rows could not be
	// re-located in the final collection. Their categories were left alone.
	Unresolved []string
}

// ApplyPairs relabels both legs of each accepted pair in the final output
// collection. Rows are located by content (amount within tolerance, same
// calendar day, recognizable description), never by position: the final
// collection is ordered differently from the candidate list, and index-based
// addressing is exactly how corrections land on unrelated rows.
func ApplyPairs(cfg *Config, pairs []*TransferPair, final []*OutputRecord) ApplyResult {
	var result ApplyResult
	taken := make(map[*OutputRecord]bool)

	for _, pair := range pairs {
		outRec := locate(cfg, pair.Outgoing, final, taken)
		inRec := locate(cfg, pair.Incoming, final, taken)
		if outRec == nil || inRec == nil {
			// UnresolvedApplication: reported, never guessed.
			result.Unresolved = append(result.Unresolved, pair.Key())
			continue
		}
		taken[outRec] = true
		taken[inRec] = true
		relabel(outRec, "outgoing", pair.TransferType)
		relabel(inRec, "incoming", pair.TransferType)
		result.Applied++
	}
	return result
}

// locate finds the final-collection row matching a fingerprint: amount within
// epsilon, same calendar day, and a description that either shares a
// meaningful token or is a close fuzzy match of the fingerprint's.
func locate(cfg *Config, ref RowRef, final []*OutputRecord, taken map[*OutputRecord]bool) *OutputRecord {
	for _, rec := range final {
		if taken[rec] {
			continue
		}
		if !cfg.amountsEqual(rec.Amount, ref.Amount) {
			continue
		}
		if !sameDay(rec.Date, ref.Date) {
			continue
		}
		if descriptionsMatch(cfg, ref.Description, rec.Description) {
			return rec
		}
	}
	return nil
}

func descriptionsMatch(cfg *Config, a, b string) bool {
	if sharedTokenCount(a, b, cfg.MinTokenLength) > 0 {
		return true
	}
	return partialMatch(a, b, cfg.DescriptionDriftPercent)
}

func relabel(rec *OutputRecord, direction string, transferType TransferType) {
	rec.Category = CategoryBalanceCorrection
	note := fmt.Sprintf("%s leg of %s transfer", direction, transferType)
	switch {
	case rec.Note == "":
		rec.Note = note
	case strings.Contains(rec.Note, note):
		// Re-running on an already relabeled collection must not stack notes.
	default:
		rec.Note += "; " + note
	}
}
