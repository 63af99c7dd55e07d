package report

import (
	"fmt"
	"math"
	"os"

	"github.com/bcdannyboy/bsmgreeks/models"
	"github.com/shopspring/decimal"
	"github.com/xhhuango/json"
)

// Places is the number of decimal places kept in reported values.
const Places int32 = 8

type Inputs struct {
	Spot             float64 `json:"spot"`
	Strike           float64 `json:"strike"`
	TimeToExpiration float64 `json:"time_to_expiration"`
	InterestRate     float64 `json:"interest_rate"`
	CostOfCarry      float64 `json:"cost_of_carry"`
	Volatility       float64 `json:"volatility"`
}

type Greeks struct {
	TheoreticalValue decimal.Decimal `json:"theoretical_value"`
	Delta            decimal.Decimal `json:"delta"`
	Gamma            decimal.Decimal `json:"gamma"`
	Vega             decimal.Decimal `json:"vega"`
	Theta            decimal.Decimal `json:"theta"`
}

// Quote is the reported form of one priced option.
type Quote struct {
	Class          string          `json:"class"`
	Inputs         Inputs          `json:"inputs"`
	Greeks         *Greeks         `json:"greeks,omitempty"`
	IntrinsicValue decimal.Decimal `json:"intrinsic_value"`
	ExtrinsicValue decimal.Decimal `json:"extrinsic_value"`
	Error          string          `json:"error,omitempty"`
}

// round must only see finite values; decimal.NewFromFloat panics on NaN and Inf.
func round(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(Places)
}

func allFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func inputs(c models.Contract) Inputs {
	return Inputs{
		Spot:             c.Spot,
		Strike:           c.Strike,
		TimeToExpiration: c.TimeToExpiration,
		InterestRate:     c.InterestRate,
		CostOfCarry:      c.CostOfCarry,
		Volatility:       c.Volatility,
	}
}

func greeks(r models.BSMResult) *Greeks {
	return &Greeks{
		TheoreticalValue: round(r.Price),
		Delta:            round(r.Delta),
		Gamma:            round(r.Gamma),
		Vega:             round(r.Vega),
		Theta:            round(r.Theta),
	}
}

// NewQuote builds a Quote from a successful pricing call. A result holding a
// non-finite value is reported as an error quote without greeks.
func NewQuote(class models.OptionClass, c models.Contract, r models.BSMResult, intrinsic, extrinsic float64) Quote {
	if !allFinite(r.Price, r.Delta, r.Gamma, r.Vega, r.Theta, intrinsic, extrinsic) {
		return Quote{
			Class:  class.String(),
			Inputs: inputs(c),
			Error:  fmt.Sprintf("non-finite result %+v", r),
		}
	}
	return Quote{
		Class:          class.String(),
		Inputs:         inputs(c),
		Greeks:         greeks(r),
		IntrinsicValue: round(intrinsic),
		ExtrinsicValue: round(extrinsic),
	}
}

// FromLadder converts ladder rows priced off base into quotes. Failed rows keep
// their error text and carry no greeks.
func FromLadder(base models.Contract, rows []models.LadderRow) []Quote {
	quotes := make([]Quote, 0, len(rows))
	for _, row := range rows {
		c := base
		c.Strike = row.Strike

		if row.Err != "" {
			quotes = append(quotes, Quote{
				Class:  row.Class.String(),
				Inputs: inputs(c),
				Error:  row.Err,
			})
			continue
		}
		quotes = append(quotes, NewQuote(row.Class, c, row.BSMResult, row.IntrinsicValue, row.ExtrinsicValue))
	}
	return quotes
}

func Marshal(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error marshalling report: %w", err)
	}
	return b, nil
}

func WriteFile(path string, v interface{}) error {
	b, err := Marshal(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("error writing to file %s: %w", path, err)
	}
	return nil
}
