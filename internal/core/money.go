// Package core holds the domain types shared by the loader, classifier,
// aggregator and presentation layers.
//
// This file contains money handling. Amounts are whole yen: the source
// ledger has no minor unit, so there is no fractional representation to
// round. Negative amounts are expenses, positive amounts income.
package core

import (
	"strconv"
	"strings"
)

// Money is a signed amount in whole yen.
type Money struct {
	Yen int64
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Yen: m.Yen + o.Yen}
}

// Neg returns the amount with its sign flipped. Used when expense sums
// (negative in the ledger) are presented as positive magnitudes.
func (m Money) Neg() Money {
	return Money{Yen: -m.Yen}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Yen == 0
}

// String renders the amount with thousands separators, e.g. "-1,234".
func (m Money) String() string {
	s := strconv.FormatInt(m.Yen, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if len(s) > 3 {
		var out []byte
		lead := len(s) % 3
		if lead > 0 {
			out = append(out, s[:lead]...)
		}
		for i := lead; i < len(s); i += 3 {
			if len(out) > 0 {
				out = append(out, ',')
			}
			out = append(out, s[i:i+3]...)
		}
		s = string(out)
	}
	if neg {
		return "-" + s
	}
	return s
}

// ParseYen converts a source cell to whole yen. The exports write plain
// signed integers, but a stray decimal point ("1234.0") appears in some
// older files, so a trailing ".0" fraction is tolerated.
func ParseYen(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		frac := s[dot+1:]
		for i := 0; i < len(frac); i++ {
			if frac[i] != '0' {
				return Money{}, strconv.ErrSyntax
			}
		}
		s = s[:dot]
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Money{}, err
	}
	return Money{Yen: v}, nil
}
