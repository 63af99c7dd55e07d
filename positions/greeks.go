package positions

import (
	"math"

	"github.com/bcdannyboy/bsmgreeks/models"
	"gonum.org/v1/gonum/stat/distuv"
)

// sharedTerms holds the intermediate values used by both the call and the put
// formulas. It is rebuilt from the full contract on every pricing call.
type sharedTerms struct {
	d1       float64
	d2       float64
	carry    float64 // exp((b-r)T)
	discount float64 // exp(-rT)

	// Gamma and Vega are equivalent for calls and puts
	gamma float64
	vega  float64

	thetaTerm1 float64
	thetaTerm2 float64
}

func computeSharedTerms(c models.Contract) sharedTerms {
	S := c.Spot
	K := c.Strike
	T := c.TimeToExpiration
	r := c.InterestRate
	b := c.CostOfCarry
	sigma := c.Volatility

	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (b+sigma*sigma/2)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	carry := math.Exp((b - r) * T)
	pdf := normPDF(d1)

	return sharedTerms{
		d1:         d1,
		d2:         d2,
		carry:      carry,
		discount:   math.Exp(-r * T),
		gamma:      carry * pdf / (S * sigma * sqrtT),
		vega:       S * carry * pdf * sqrtT,
		thetaTerm1: -S * carry * pdf * sigma / (2 * sqrtT),
		thetaTerm2: (b - r) * S * carry * normCDF(d1),
	}
}

// carryDrift is the cost-of-carry part of theta without its cumulative
// probability factor: (b-r)*S*exp((b-r)T).
func (t sharedTerms) carryDrift(c models.Contract) float64 {
	return (c.CostOfCarry - c.InterestRate) * c.Spot * t.carry
}

func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

func normPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
