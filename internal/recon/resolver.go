package recon

import "sort"

// ResolvePairs picks the final, non-conflicting pairing: descending
// confidence, greedy, a row claimed by a higher-confidence pair is
// unavailable to later ones. Ties break on generation order, so resolution
// is deterministic. Overrides from a previous run are honored first:
// rejected pairs never reach acceptance, confirmed pairs claim their rows
// ahead of scored resolution.
func ResolvePairs(pairs []*TransferPair, overrides *OverrideSet) []*TransferPair {
	var eligible []*TransferPair
	var accepted []*TransferPair
	claimed := make(map[string]bool)

	accept := func(p *TransferPair) bool {
		outKey, inKey := p.Outgoing.Key(), p.Incoming.Key()
		if claimed[outKey] || claimed[inKey] {
			return false
		}
		claimed[outKey] = true
		claimed[inKey] = true
		accepted = append(accepted, p)
		return true
	}

	for _, p := range pairs {
		if overrides != nil && overrides.Rejected[p.Key()] {
			continue
		}
		if overrides != nil && overrides.Confirmed[p.Key()] {
			accept(p)
			continue
		}
		eligible = append(eligible, p)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Confidence != eligible[j].Confidence {
			return eligible[i].Confidence > eligible[j].Confidence
		}
		return eligible[i].seq < eligible[j].seq
	})

	for _, p := range eligible {
		accept(p)
	}
	return accepted
}
