package deploy

import (
	"fmt"
	"math/big"
	"strings"
)

// DecimalPrecision is the token's fixed-point scale: on-chain amounts are
// integers carrying this many fractional digits.
const DecimalPrecision = 7

var scaleFactor = new(big.Int).Exp(big.NewInt(10), big.NewInt(DecimalPrecision), nil)

// ParseSupply scales a decimal supply string to its on-chain integer
// representation. Arbitrary-precision arithmetic only; float rounding on
// token amounts is not acceptable.
func ParseSupply(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty amount", ErrInvalidSupply)
	}

	whole, frac, found := strings.Cut(s, ".")
	if found && strings.Contains(frac, ".") {
		return nil, fmt.Errorf("%w: multiple decimal points in %q", ErrInvalidSupply, s)
	}
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: no digits in %q", ErrInvalidSupply, s)
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return nil, fmt.Errorf("%w: non-numeric characters in %q", ErrInvalidSupply, s)
	}
	if len(frac) > DecimalPrecision {
		return nil, fmt.Errorf("%w: more than %d fractional digits in %q", ErrInvalidSupply, DecimalPrecision, s)
	}

	scaled := new(big.Int)
	if whole != "" {
		wholeInt, ok := new(big.Int).SetString(whole, 10)
		if !ok {
			return nil, fmt.Errorf("%w: unparseable whole part in %q", ErrInvalidSupply, s)
		}
		scaled.Mul(wholeInt, scaleFactor)
	}

	if frac != "" {
		padded := frac + strings.Repeat("0", DecimalPrecision-len(frac))
		fracInt, ok := new(big.Int).SetString(padded, 10)
		if !ok {
			return nil, fmt.Errorf("%w: unparseable fractional part in %q", ErrInvalidSupply, s)
		}
		scaled.Add(scaled, fracInt)
	}

	return scaled, nil
}

// FormatSupply is the inverse of ParseSupply: it renders a scaled on-chain
// amount back as a decimal string with trailing fractional zeros trimmed.
func FormatSupply(scaled *big.Int) string {
	whole, frac := new(big.Int).DivMod(scaled, scaleFactor, new(big.Int))

	if frac.Sign() == 0 {
		return whole.String()
	}

	fracStr := fmt.Sprintf("%0*d", DecimalPrecision, frac)
	fracStr = strings.TrimRight(fracStr, "0")

	return whole.String() + "." + fracStr
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
