package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CompoundQtyScale is the subunit scale for weight-based units: one whole
// unit (kg) carries 1000 subunits (grams).
const CompoundQtyScale = 1000

// CompoundQty is a whole-unit-dash-subunit quantity, e.g. "12-990" meaning
// 12 kg 990 g. Subunit must stay below CompoundQtyScale; "12-1500" is a
// parse error, not 13.5.
type CompoundQty struct {
	Whole   int64
	Subunit int64
}

func (q CompoundQty) Decimal() decimal.Decimal {
	return decimal.NewFromInt(q.Whole).
		Add(decimal.NewFromInt(q.Subunit).Div(decimal.NewFromInt(CompoundQtyScale)))
}

func (q CompoundQty) String() string {
	return fmt.Sprintf("%d-%03d", q.Whole, q.Subunit)
}

// ParseQuantity parses a user-entered quantity string. Accepted forms:
//
//	"12"        plain whole number
//	"12.5"      plain decimal
//	"12-990"    compound kg-grams form (12 + 990/1000)
//
// Thousand separators and surrounding whitespace are tolerated. The result
// must be a positive number; anything else returns ErrorParse.
func ParseQuantity(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, ErrorParse
	}

	if i := strings.Index(s, "-"); i > 0 {
		q, err := parseCompound(s[:i], s[i+1:])
		if err != nil {
			return decimal.Zero, err
		}
		return q.Decimal(), nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrorParse
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrorParse
	}
	return d, nil
}

func parseCompound(wholePart, subunitPart string) (CompoundQty, error) {
	whole, err := strconv.ParseInt(wholePart, 10, 64)
	if err != nil || whole < 0 {
		return CompoundQty{}, ErrorParse
	}
	subunit, err := strconv.ParseInt(subunitPart, 10, 64)
	if err != nil || subunit < 0 {
		return CompoundQty{}, ErrorParse
	}
	if subunit >= CompoundQtyScale {
		return CompoundQty{}, ErrorParse
	}
	if whole == 0 && subunit == 0 {
		return CompoundQty{}, ErrorParse
	}
	return CompoundQty{Whole: whole, Subunit: subunit}, nil
}

// FormatQuantity renders a decimal quantity in the compound kg-grams form
// used on printed weight-based invoice lines.
func FormatQuantity(d decimal.Decimal) string {
	whole := d.IntPart()
	subunit := d.Sub(decimal.NewFromInt(whole)).
		Mul(decimal.NewFromInt(CompoundQtyScale)).
		Round(0).IntPart()
	if subunit >= CompoundQtyScale {
		whole++
		subunit -= CompoundQtyScale
	}
	return CompoundQty{Whole: whole, Subunit: subunit}.String()
}
