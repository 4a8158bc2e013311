// Package weiconv converts raw wei amounts into fixed-precision decimal
// ETH strings for API responses. Amounts must reconcile with on-chain
// integer math, so the conversion truncates instead of rounding.
package weiconv

import (
	"fmt"
	"math/big"
	"strings"
)

var weiPerEth = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ToEthString renders wei as an ETH decimal string with the given number of
// fractional places. A nil amount renders as zero.
func ToEthString(wei *big.Int, places int) string {
	if wei == nil {
		wei = new(big.Int)
	}
	if places <= 0 {
		return new(big.Int).Quo(wei, weiPerEth).String()
	}
	if places > 18 {
		places = 18
	}

	abs := new(big.Int).Abs(wei)
	whole, frac := new(big.Int).QuoRem(abs, weiPerEth, new(big.Int))

	// Scale the 18-digit remainder down to the requested precision.
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(18-places)), nil)
	frac.Quo(frac, scale)

	sign := ""
	if wei.Sign() < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%s.%0*d", sign, whole.String(), places, frac.Int64())
}

// ParseEthString parses a decimal ETH string back into wei. Used by tests
// and by callers that need to compare API strings against chain values.
func ParseEthString(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if len(frac) > 18 {
		frac = frac[:18]
	}
	frac += strings.Repeat("0", 18-len(frac))
	if whole == "" {
		whole = "0"
	}

	w, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	f, ok := new(big.Int).SetString(frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}

	wei := new(big.Int).Mul(w, weiPerEth)
	wei.Add(wei, f)
	if neg {
		wei.Neg(wei)
	}
	return wei, nil
}
