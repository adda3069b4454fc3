package recon

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// conversionPattern matches bank narrations of the shape
// "Converted 22.83 USD to 20.00 EUR", with the optional
// "from USD balance" insert some statements carry.
var conversionPattern = regexp.MustCompile(
	`(?i)converted\s+([0-9][0-9,]*(?:\.[0-9]+)?)\s+([A-Za-z]{3})` +
		`(?:\s+from\s+[A-Za-z]{3}\s+balance)?` +
		`\s+to\s+([0-9][0-9,]*(?:\.[0-9]+)?)\s+([A-Za-z]{3})`)

// AnnotateRecords tags each record with its inferred bank identity and any
// conversion metadata found on it. Records are modified in place; the slice
// is returned for chaining.
func AnnotateRecords(cfg *Config, records []*TransactionRecord) []*TransactionRecord {
	for _, rec := range records {
		rec.Bank = inferBank(cfg, rec)
		annotateConversion(cfg, rec)
	}
	return records
}

// inferBank matches the source filename and narration against each bank's
// keyword set, case-insensitively. First match wins; nothing matching means
// the record stays with the unknown bank.
func inferBank(cfg *Config, rec *TransactionRecord) Bank {
	source := strings.ToLower(rec.SourceID)
	desc := strings.ToLower(rec.Description)
	banks := make([]Bank, 0, len(cfg.Banks))
	for bank := range cfg.Banks {
		banks = append(banks, bank)
	}
	sort.Slice(banks, func(i, j int) bool { return banks[i] < banks[j] })
	for _, bank := range banks {
		for _, kw := range cfg.Banks[bank].Keywords {
			kw = strings.ToLower(kw)
			if kw == "" {
				continue
			}
			if strings.Contains(source, kw) || strings.Contains(desc, kw) {
				return bank
			}
		}
	}
	return BankUnknown
}

// annotateConversion fills ConversionAmount/ConversionCurrency from the
// record's raw metadata fields, and ParsedConversion from the narration.
// Metadata wins for the converted amount; the parsed quadruple is kept either
// way so the matcher can cross-check both legs' narrations.
func annotateConversion(cfg *Config, rec *TransactionRecord) {
	for _, key := range sortedKeys(rec.Metadata) {
		if !isConversionField(cfg, key) {
			continue
		}
		amt, err := parseAmount(rec.Metadata[key])
		if err != nil {
			continue
		}
		rec.ConversionAmount = &amt
		if cur := conversionCurrencyField(rec.Metadata); cur != "" {
			rec.ConversionCurrency = cur
		}
		break
	}

	if details := parseConversionText(rec.Description); details != nil {
		rec.ParsedConversion = details
		if rec.ConversionAmount == nil {
			to := details.ToAmount
			rec.ConversionAmount = &to
			rec.ConversionCurrency = details.ToCurrency
		}
	}
}

// isConversionField reports whether a metadata column name carries a
// bank-supplied converted amount: either its normalized name contains both
// "exchange" and "to", or it is one of the configured named variants.
func isConversionField(cfg *Config, name string) bool {
	norm := normalizeFieldName(name)
	if strings.Contains(norm, "exchange") && strings.Contains(norm, "to") {
		return true
	}
	for _, candidate := range cfg.ConversionFieldNames {
		if norm == normalizeFieldName(candidate) {
			return true
		}
	}
	return false
}

// conversionCurrencyField looks for a companion currency column next to the
// converted amount, e.g. "Exchange To" amount with "Exchange To Currency".
func conversionCurrencyField(metadata map[string]string) string {
	for _, key := range sortedKeys(metadata) {
		norm := normalizeFieldName(key)
		if strings.Contains(norm, "currency") &&
			(strings.Contains(norm, "exchange") || strings.Contains(norm, "converted")) {
			return strings.ToUpper(strings.TrimSpace(metadata[key]))
		}
	}
	return ""
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeFieldName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.Join(strings.Fields(name), " ")
}

// parseConversionText extracts the conversion quadruple from a narration, or
// nil when the narration is not a conversion.
func parseConversionText(desc string) *ConversionDetails {
	m := conversionPattern.FindStringSubmatch(desc)
	if m == nil {
		return nil
	}
	from, err := parseAmount(m[1])
	if err != nil {
		return nil
	}
	to, err := parseAmount(m[3])
	if err != nil {
		return nil
	}
	return &ConversionDetails{
		FromCurrency: strings.ToUpper(m[2]),
		ToCurrency:   strings.ToUpper(m[4]),
		FromAmount:   from,
		ToAmount:     to,
	}
}

// parseAmount parses a decimal that may carry thousands separators.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return decimal.NewFromString(s)
}
