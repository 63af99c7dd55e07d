package positions

import (
	"fmt"
	"math"
	"time"

	"github.com/bcdannyboy/bsmgreeks/models"
)

const expirationLayout = "2006-01-02"

func IntrinsicValue(class models.OptionClass, spot, strike float64) float64 {
	if class == models.Call {
		return math.Max(0, spot-strike)
	}
	return math.Max(0, strike-spot)
}

// ExtrinsicValue is the part of the theoretical value above intrinsic value.
// It is floored at zero since deep in-the-money European puts (and calls with
// b < r) can trade below intrinsic.
func ExtrinsicValue(result models.BSMResult, class models.OptionClass, spot, strike float64) float64 {
	return math.Max(0, result.Price-IntrinsicValue(class, spot, strike))
}

// YearsToExpiration converts a YYYY-MM-DD expiration date into an ACT/365 year
// fraction measured from now.
func YearsToExpiration(expiration string, now time.Time) (float64, error) {
	expDate, err := time.Parse(expirationLayout, expiration)
	if err != nil {
		return 0, fmt.Errorf("failed to parse expiration date %q: %w", expiration, err)
	}

	years := expDate.Sub(now).Hours() / 24 / 365 // Convert to years
	if years <= 0 {
		return 0, &ParameterError{Name: "time_to_expiration", Value: years, Reason: fmt.Sprintf("expiration %s is not in the future", expiration)}
	}
	return years, nil
}

// ParityResidual returns Call - Put - (S*exp((b-r)T) - K*exp(-rT)), which is
// zero up to rounding for a correctly priced pair.
func ParityResidual(c models.Contract) (float64, error) {
	call, put, err := PricePair(c)
	if err != nil {
		return 0, err
	}

	forward := c.Spot * math.Exp((c.CostOfCarry-c.InterestRate)*c.TimeToExpiration)
	strike := c.Strike * math.Exp(-c.InterestRate*c.TimeToExpiration)
	return call.Price - put.Price - (forward - strike), nil
}
