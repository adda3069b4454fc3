package recon

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Bank identifies the institution a record was inferred to come from.
// It is an open set: anything the annotator cannot recognize stays BankUnknown,
// which still participates in generic phrase matching but not in bank-specific
// phrase rules.
type Bank string

// BankUnknown is the fallback identity when no keyword matches.
const BankUnknown Bank = "unknown"

// Strategy names the matching rule that produced a pair.
type Strategy string

const (
	StrategyExchangeAmount        Strategy = "exchange_amount"
	StrategyDescriptionConversion Strategy = "description_conversion"
	StrategyNameMatch             Strategy = "name_match"
	StrategyAmountDate            Strategy = "amount_date"
)

// TransferType classifies a detected transfer.
type TransferType string

const (
	TransferInternalConversion TransferType = "internal_conversion"
	TransferCrossBank          TransferType = "cross_bank"
	TransferStandard           TransferType = "standard"
)

// CategoryBalanceCorrection is the category written onto both legs of an
// accepted transfer, overriding whatever the rule engine assigned.
const CategoryBalanceCorrection = "Balance Correction"

// TransactionRecord is one cleaned statement row as produced by the ingestion
// collaborator: numeric amount (negative = outgoing), ISO date, currency (may
// be empty for sources with a per-source default) and the original narration.
// Metadata carries any extra raw columns of the source row; the annotator
// scans it for bank-supplied conversion fields.
type TransactionRecord struct {
	SourceID    string            `json:"source_id"`
	Date        time.Time         `json:"date"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    string            `json:"currency,omitempty"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`

	// Derived by AnnotateRecords.
	Bank               Bank               `json:"bank,omitempty"`
	ConversionAmount   *decimal.Decimal   `json:"conversion_amount,omitempty"`
	ConversionCurrency string             `json:"conversion_currency,omitempty"`
	ParsedConversion   *ConversionDetails `json:"parsed_conversion,omitempty"`
}

// RowRef is a content fingerprint of a record, usable to re-locate it in the
// final output collection. It deliberately carries no positional information:
// the candidate list and the final collection are differently ordered views
// of the data, and addressing by index is how corrections end up on unrelated
// rows. Deliberately a distinct type from CandidateID.
type RowRef struct {
	SourceID    string          `json:"source_id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// Key returns a stable string form of the fingerprint, used for claim
// tracking and as half of a pair's override identifier.
func (r RowRef) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s",
		r.SourceID, r.Date.Format("2006-01-02"), r.Amount.String(),
		normalizeText(r.Description))
}

// RowRef builds the content fingerprint for a record.
func (t *TransactionRecord) RowRef() RowRef {
	return RowRef{
		SourceID:    t.SourceID,
		Date:        t.Date,
		Amount:      t.Amount,
		Description: t.Description,
	}
}

// CandidateID is a position in the filtered candidate list. It is only
// meaningful inside a single matcher run and must never be used to address
// the final output collection.
type CandidateID int

// TransferCandidate is a record that passed the candidate filter, tagged with
// its direction and a normalized description for phrase matching.
type TransferCandidate struct {
	ID         CandidateID
	Record     *TransactionRecord
	IsOutgoing bool
	NormDesc   string
}

// ConversionDetails is the (from, to) amount/currency quadruple of a currency
// conversion, either parsed from a description or assembled by a strategy.
type ConversionDetails struct {
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	FromAmount   decimal.Decimal `json:"from_amount"`
	ToAmount     decimal.Decimal `json:"to_amount"`
}

// Equal reports whether two quadruples describe the same conversion.
func (c *ConversionDetails) Equal(o *ConversionDetails) bool {
	if c == nil || o == nil {
		return false
	}
	return strings.EqualFold(c.FromCurrency, o.FromCurrency) &&
		strings.EqualFold(c.ToCurrency, o.ToCurrency) &&
		c.FromAmount.Equal(o.FromAmount) &&
		c.ToAmount.Equal(o.ToAmount)
}

// TransferPair is one detected transfer: two row fingerprints plus the
// strategy that matched them and the confidence the scoring rules produced.
type TransferPair struct {
	Outgoing     RowRef             `json:"outgoing"`
	Incoming     RowRef             `json:"incoming"`
	Confidence   float64            `json:"confidence"`
	Strategy     Strategy           `json:"strategy"`
	TransferType TransferType       `json:"transfer_type"`
	Conversion   *ConversionDetails `json:"conversion_details,omitempty"`

	// seq is the generation order, used as the deterministic tie-break when
	// two pairs have equal confidence.
	seq int
}

// Key is the pair's stable identifier, usable across runs for manual
// confirm/reject overrides.
func (p *TransferPair) Key() string {
	return p.Outgoing.Key() + "->" + p.Incoming.Key()
}

// OutputRecord is one row of the final, already-categorized collection that
// the applier relabels in place for matched pairs.
type OutputRecord struct {
	SourceID    string          `json:"source_id,omitempty"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Note        string          `json:"note,omitempty"`
}

// OverrideSet carries user decisions from a previous run: rejected pair keys
// are dropped before resolution, confirmed ones are accepted ahead of scored
// resolution regardless of computed confidence.
type OverrideSet struct {
	Confirmed map[string]bool
	Rejected  map[string]bool
}

// NewOverrideSet builds an OverrideSet from two key lists.
func NewOverrideSet(confirmed, rejected []string) *OverrideSet {
	s := &OverrideSet{
		Confirmed: make(map[string]bool, len(confirmed)),
		Rejected:  make(map[string]bool, len(rejected)),
	}
	for _, k := range confirmed {
		s.Confirmed[k] = true
	}
	for _, k := range rejected {
		s.Rejected[k] = true
	}
	return s
}

// Report summarizes one reconciliation run for the presentation layer.
type Report struct {
	RunID          string          `json:"run_id"`
	Pairs          []*TransferPair `json:"pairs"`
	RecordCount    int             `json:"record_count"`
	CandidateCount int             `json:"candidate_count"`

	InternalConversions int `json:"internal_conversions"`
	CrossBankTransfers  int `json:"cross_bank_transfers"`
	StandardTransfers   int `json:"standard_transfers"`

	// Unresolved lists accepted pairs whose rows could not be re-located in
	// the final collection; their categories were left untouched.
	Unresolved []string `json:"unresolved,omitempty"`
}
