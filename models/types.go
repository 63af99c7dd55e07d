package models

import (
	"fmt"
	"strings"
)

// OptionClass selects the call or put variant of the pricing formulas.
type OptionClass int

const (
	Call OptionClass = iota
	Put
)

func (c OptionClass) String() string {
	switch c {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return fmt.Sprintf("OptionClass(%d)", int(c))
	}
}

// ParseOptionClass accepts "call"/"put" (and "c"/"p"), case-insensitive.
func ParseOptionClass(s string) (OptionClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return 0, fmt.Errorf("unknown option class %q", s)
}

// Contract holds the six inputs of a single pricing call.
type Contract struct {
	Spot             float64 // S, underlying price
	Strike           float64 // K
	TimeToExpiration float64 // T, in years
	InterestRate     float64 // r, continuously compounded
	CostOfCarry      float64 // b, equals r for options on non-dividend stock
	Volatility       float64 // sigma, annualized
}

// BSMResult is the theoretical value and first-order sensitivities of one option.
type BSMResult struct {
	Price float64 `json:"theoretical_value"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
}

// LadderRow is one strike of a priced strike ladder.
type LadderRow struct {
	Strike         float64
	Class          OptionClass
	BSMResult      BSMResult
	IntrinsicValue float64
	ExtrinsicValue float64
	Err            string
}
