package recon

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// BankRule is the declarative phrase rule set for one institution: keywords
// that identify it from the source filename or narration, and the phrase
// templates its statements use for the two directions of a transfer. The
// text after a matched phrase is taken as the counterparty name.
type BankRule struct {
	Keywords        []string `yaml:"keywords"`
	OutgoingPhrases []string `yaml:"outgoing"`
	IncomingPhrases []string `yaml:"incoming"`
}

// Config carries every tunable of the engine. The tolerance values are
// empirically tuned, not universal constants; callers that know better should
// override them rather than rely on the defaults being "correct".
type Config struct {
	// AmountEpsilon is the absolute tolerance for amount equality, in
	// currency units.
	AmountEpsilon float64 `yaml:"amount_epsilon"`

	// DateWindowHours is the maximum date distance for the amount/date
	// fallback strategy.
	DateWindowHours int `yaml:"date_window_hours"`

	// MinTokenLength is the shortest description token considered meaningful
	// for overlap checks.
	MinTokenLength int `yaml:"min_token_length"`

	// DescriptionDriftPercent is the Levenshtein allowance (as a percentage
	// of the longer string) for the applier's fuzzy description fallback.
	DescriptionDriftPercent float64 `yaml:"description_drift_percent"`

	// Vocabulary is the generic transfer vocabulary; a record whose
	// normalized description contains any entry qualifies as a candidate.
	Vocabulary []string `yaml:"vocabulary"`

	// Banks maps bank identity to its keyword and phrase rules. New banks
	// are added here, not in the matching code.
	Banks map[Bank]BankRule `yaml:"banks"`

	// GenericOutgoing/GenericIncoming apply to every bank, including
	// unknown ones.
	GenericOutgoing []string `yaml:"generic_outgoing"`
	GenericIncoming []string `yaml:"generic_incoming"`

	// DefaultCurrencies maps source_id to the currency assumed when a
	// record carries none.
	DefaultCurrencies map[string]string `yaml:"default_currencies"`

	// ConversionFieldNames are metadata column names (beyond the normalized
	// exchange/to heuristic) that hold a bank-supplied converted amount.
	ConversionFieldNames []string `yaml:"conversion_field_names"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		AmountEpsilon:           0.01,
		DateWindowHours:         24,
		MinTokenLength:          3,
		DescriptionDriftPercent: 30,
		Vocabulary: []string{
			"transfer", "sent", "received", "incoming", "converted",
			"exchange", "balance correction", "fund transfer",
		},
		Banks: map[Bank]BankRule{
			"wise": {
				Keywords:        []string{"wise", "transferwise"},
				OutgoingPhrases: []string{"sent money to "},
				IncomingPhrases: []string{"received money from "},
			},
			"nayapay": {
				Keywords:        []string{"nayapay"},
				OutgoingPhrases: []string{"outgoing fund transfer to ", "fund transfer to "},
				IncomingPhrases: []string{"incoming fund transfer from "},
			},
			"revolut": {
				Keywords:        []string{"revolut"},
				OutgoingPhrases: []string{"payment to "},
				IncomingPhrases: []string{"payment from "},
			},
		},
		GenericOutgoing: []string{"transfer to ", "sent money to "},
		GenericIncoming: []string{"transfer from ", "received money from "},
		ConversionFieldNames: []string{
			"exchange amount", "converted amount", "exchange to amount",
		},
	}
}

// LoadConfig reads a YAML config file and overlays it on the defaults, so a
// file only needs to state what it changes.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadConfig: read %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("LoadConfig: parse %s: %w", path, err)
	}
	if cfg.AmountEpsilon == 0 {
		cfg.AmountEpsilon = 0.01
	}
	return cfg, nil
}

// ruleFor returns the phrase rule for a bank, generic phrases included.
// Unknown banks get the generic phrases only.
func (c *Config) ruleFor(bank Bank) BankRule {
	rule := c.Banks[bank]
	merged := BankRule{
		OutgoingPhrases: append(append([]string{}, rule.OutgoingPhrases...), c.GenericOutgoing...),
		IncomingPhrases: append(append([]string{}, rule.IncomingPhrases...), c.GenericIncoming...),
	}
	return merged
}

// currencyFor resolves a record's currency, falling back to the per-source
// default when the source carries no currency column.
func (c *Config) currencyFor(t *TransactionRecord) string {
	if t.Currency != "" {
		return t.Currency
	}
	return c.DefaultCurrencies[t.SourceID]
}

// epsilon returns AmountEpsilon as a decimal for tolerance arithmetic.
func (c *Config) epsilon() decimal.Decimal {
	return decimal.NewFromFloat(c.AmountEpsilon)
}

// amountsEqual reports equality within AmountEpsilon.
func (c *Config) amountsEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(c.epsilon())
}
