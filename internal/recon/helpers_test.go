package recon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testRecord(t *testing.T, source, date, amount, currency, desc string) *TransactionRecord {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("bad test date %q: %v", date, err)
	}
	return &TransactionRecord{
		SourceID:    source,
		Date:        d,
		Amount:      decimal.RequireFromString(amount),
		Currency:    currency,
		Description: desc,
	}
}

// finalFrom builds the final categorized collection view of a record batch,
// with the default category a rule engine would have assigned.
func finalFrom(records ...*TransactionRecord) []*OutputRecord {
	out := make([]*OutputRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, &OutputRecord{
			SourceID:    rec.SourceID,
			Date:        rec.Date,
			Amount:      rec.Amount,
			Currency:    rec.Currency,
			Description: rec.Description,
			Category:    "Uncategorized",
		})
	}
	return out
}

func candidatesFor(cfg *Config, records []*TransactionRecord) *CandidateSet {
	AnnotateRecords(cfg, records)
	return SelectCandidates(cfg, records)
}
