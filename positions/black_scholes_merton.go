package positions

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/bsmgreeks/models"
)

// classFormulas is the set of formulas that differ between calls and puts.
// Gamma and Vega come straight from the shared terms.
type classFormulas struct {
	price func(c models.Contract, t sharedTerms) float64
	delta func(t sharedTerms) float64
	theta func(c models.Contract, t sharedTerms) float64
}

var formulas = map[models.OptionClass]classFormulas{
	models.Call: {price: callPrice, delta: callDelta, theta: callTheta},
	models.Put:  {price: putPrice, delta: putDelta, theta: putTheta},
}

// Price computes the generalized Black-Scholes-Merton theoretical value and
// greeks of a European option. Inputs are validated before anything is
// computed; the result is either complete or an error is returned.
func Price(class models.OptionClass, c models.Contract) (models.BSMResult, error) {
	f, ok := formulas[class]
	if !ok {
		return models.BSMResult{}, fmt.Errorf("%w: unknown option class %v", ErrInvalidParameter, class)
	}
	if err := Validate(c); err != nil {
		return models.BSMResult{}, err
	}

	result := evaluate(f, c, computeSharedTerms(c))
	if err := checkFinite(class, result); err != nil {
		return models.BSMResult{}, err
	}
	return result, nil
}

func PriceCall(c models.Contract) (models.BSMResult, error) {
	return Price(models.Call, c)
}

func PricePut(c models.Contract) (models.BSMResult, error) {
	return Price(models.Put, c)
}

// PricePair prices the call and the put of the same contract from a single
// evaluation of the shared terms.
func PricePair(c models.Contract) (call, put models.BSMResult, err error) {
	if err = Validate(c); err != nil {
		return models.BSMResult{}, models.BSMResult{}, err
	}

	terms := computeSharedTerms(c)
	call = evaluate(formulas[models.Call], c, terms)
	put = evaluate(formulas[models.Put], c, terms)

	if err = checkFinite(models.Call, call); err != nil {
		return models.BSMResult{}, models.BSMResult{}, err
	}
	if err = checkFinite(models.Put, put); err != nil {
		return models.BSMResult{}, models.BSMResult{}, err
	}
	return call, put, nil
}

// Validate checks the contract against the domain of the model: spot, strike,
// time to expiration and volatility must be positive, and every field finite.
func Validate(c models.Contract) error {
	fields := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"spot", c.Spot, true},
		{"strike", c.Strike, true},
		{"time_to_expiration", c.TimeToExpiration, true},
		{"interest_rate", c.InterestRate, false},
		{"cost_of_carry", c.CostOfCarry, false},
		{"volatility", c.Volatility, true},
	}

	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ParameterError{Name: f.name, Value: f.value, Reason: "must be finite"}
		}
		if f.positive && f.value <= 0 {
			return &ParameterError{Name: f.name, Value: f.value, Reason: "must be greater than zero"}
		}
	}
	return nil
}

func evaluate(f classFormulas, c models.Contract, t sharedTerms) models.BSMResult {
	return models.BSMResult{
		Price: f.price(c, t),
		Delta: f.delta(t),
		Gamma: t.gamma,
		Vega:  t.vega,
		Theta: f.theta(c, t),
	}
}

func callPrice(c models.Contract, t sharedTerms) float64 {
	return c.Spot*t.carry*normCDF(t.d1) - c.Strike*t.discount*normCDF(t.d2)
}

func putPrice(c models.Contract, t sharedTerms) float64 {
	return c.Strike*t.discount*normCDF(-t.d2) - c.Spot*t.carry*normCDF(-t.d1)
}

func callDelta(t sharedTerms) float64 {
	return t.carry * normCDF(t.d1)
}

func putDelta(t sharedTerms) float64 {
	return t.carry * (normCDF(t.d1) - 1)
}

func callTheta(c models.Contract, t sharedTerms) float64 {
	return t.thetaTerm1 - t.thetaTerm2 - c.InterestRate*c.Strike*t.discount*normCDF(t.d2)
}

// The put carries the cost-of-carry term on N(-d1); with b == r it vanishes
// and this reduces to thetaTerm1 + r*K*exp(-rT)*N(-d2).
func putTheta(c models.Contract, t sharedTerms) float64 {
	return t.thetaTerm1 + t.carryDrift(c)*normCDF(-t.d1) + c.InterestRate*c.Strike*t.discount*normCDF(-t.d2)
}

func checkFinite(class models.OptionClass, r models.BSMResult) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"theoretical_value", r.Price},
		{"delta", r.Delta},
		{"gamma", r.Gamma},
		{"vega", r.Vega},
		{"theta", r.Theta},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s %s is %v", ErrNumericDegeneracy, class, f.name, f.value)
		}
	}
	return nil
}
