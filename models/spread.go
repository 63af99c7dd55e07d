package models

// SpreadLeg is one option of a vertical spread.
type SpreadLeg struct {
	Class          OptionClass
	Contract       Contract
	BSMResult      BSMResult
	IntrinsicValue float64
	ExtrinsicValue float64
}

type OptionSpread struct {
	ShortLeg       SpreadLeg
	LongLeg        SpreadLeg
	SpreadType     string
	SpreadBSMPrice float64 // short minus long theoretical value, positive for a credit
	ExtrinsicValue float64
	IntrinsicValue float64
	Width          float64
	Greeks         BSMResult

	// MaxProfitAtSpot reports whether the spread would settle at its maximum
	// profit if the underlying finished at the short leg's current spot.
	MaxProfitAtSpot bool
}

// IsProfitable reports whether the spread settles at its maximum profit when the
// underlying finishes at finalPrice.
func IsProfitable(spread OptionSpread, finalPrice float64) bool {
	short := spread.ShortLeg.Contract.Strike
	switch spread.SpreadType {
	case "Bear Call", "Bear Put":
		return finalPrice <= short
	case "Bull Put", "Bull Call":
		return finalPrice >= short
	default:
		return false
	}
}
