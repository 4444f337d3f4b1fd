package state

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in cents.
type Money int64

var ErrInvalidPrice = errors.New("invalid price")

// ParseMoney accepts "27", "27.5", "27.00" and the comma decimal form "27,00".
func ParseMoney(raw string) (Money, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPrice)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: negative %q", ErrInvalidPrice, raw)
	}
	return Money(math.Round(f * 100)), nil
}

func (m Money) Mul(n int) Money {
	return m * Money(n)
}

func (m Money) Float64() float64 {
	return float64(m) / 100
}

// String renders the amount in Brazilian format, e.g. R$1.234,50.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := strconv.FormatInt(v/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%sR$%s,%02d", sign, b.String(), v%100)
}
