package positions

import (
	"fmt"
	"io"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/bcdannyboy/bsmgreeks/models"
	"github.com/shirou/gopsutil/cpu"
	"github.com/sirupsen/logrus"
	mpb "github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
)

const resultBatchSize = 1000

// LadderOptions controls how PriceLadder spreads its work.
type LadderOptions struct {
	// Workers is the number of pricing goroutines. Zero uses one per logical CPU.
	Workers int
	// Progress receives the progress bar. Nil disables it.
	Progress io.Writer
	Logger   *logrus.Logger
}

type job struct {
	index  int
	strike float64
}

type ladderResult struct {
	index int
	row   models.LadderRow
}

// PriceLadder prices the same contract across a list of strikes. A strike that
// fails to price keeps its row with Err set; the other strikes are unaffected.
// Rows are returned sorted by strike.
func PriceLadder(base models.Contract, class models.OptionClass, strikes []float64, opts LadderOptions) ([]models.LadderRow, error) {
	if len(strikes) == 0 {
		return nil, fmt.Errorf("%w: strike ladder is empty", ErrInvalidParameter)
	}
	if _, ok := formulas[class]; !ok {
		return nil, fmt.Errorf("%w: unknown option class %v", ErrInvalidParameter, class)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = defaultWorkers()
	}
	if numWorkers > len(strikes) {
		numWorkers = len(strikes)
	}

	logger.WithFields(logrus.Fields{
		"class":   class.String(),
		"spot":    base.Spot,
		"strikes": len(strikes),
		"workers": numWorkers,
	}).Info("Pricing strike ladder")

	var p *mpb.Progress
	var bar *mpb.Bar
	if opts.Progress != nil {
		p = mpb.New(mpb.WithWidth(64), mpb.WithOutput(opts.Progress))
		bar = p.AddBar(int64(len(strikes)),
			mpb.PrependDecorators(
				decor.Name("Pricing"),
				decor.Percentage(decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
			),
		)
	}

	jobs := make([]job, len(strikes))
	for i, k := range strikes {
		jobs[i] = job{index: i, strike: k}
	}

	rows, failed := processJobs(base, class, jobs, numWorkers, bar)
	if p != nil {
		p.Wait()
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return strikeLess(rows[i].Strike, rows[j].Strike)
	})

	logger.WithFields(logrus.Fields{
		"priced": len(rows) - int(failed),
		"failed": failed,
	}).Info("Strike ladder complete")

	return rows, nil
}

// strikeLess orders strikes ascending with NaN strikes last.
func strikeLess(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}

func defaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

func processJobs(base models.Contract, class models.OptionClass, jobs []job, numWorkers int, bar *mpb.Bar) ([]models.LadderRow, int64) {
	var wg sync.WaitGroup
	jobChan := make(chan job, len(jobs))
	resultChan := make(chan ladderResult, resultBatchSize)
	var failed int64

	// Start workers
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go worker(base, class, jobChan, resultChan, &wg, &failed, bar)
	}

	for _, j := range jobs {
		jobChan <- j
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	rows := make([]models.LadderRow, len(jobs))
	for res := range resultChan {
		rows[res.index] = res.row
	}
	return rows, failed
}

func worker(base models.Contract, class models.OptionClass, jobs <-chan job, results chan<- ladderResult, wg *sync.WaitGroup, failed *int64, bar *mpb.Bar) {
	defer wg.Done()
	for j := range jobs {
		c := base
		c.Strike = j.strike

		row := models.LadderRow{Strike: j.strike, Class: class}
		result, err := Price(class, c)
		if err != nil {
			row.Err = err.Error()
			atomic.AddInt64(failed, 1)
		} else {
			row.BSMResult = result
			row.IntrinsicValue = IntrinsicValue(class, c.Spot, c.Strike)
			row.ExtrinsicValue = ExtrinsicValue(result, class, c.Spot, c.Strike)
		}

		results <- ladderResult{index: j.index, row: row}
		if bar != nil {
			bar.Increment()
		}
	}
}

// PriceSpread prices a vertical spread. Both legs must be the same class with
// different strikes. Values and greeks are reported short minus long, so a
// credit spread has a positive SpreadBSMPrice.
func PriceSpread(shortLeg, longLeg models.SpreadLeg) (models.OptionSpread, error) {
	spreadType, err := determineSpreadType(shortLeg, longLeg)
	if err != nil {
		return models.OptionSpread{}, err
	}

	short, err := createSpreadLeg(shortLeg)
	if err != nil {
		return models.OptionSpread{}, fmt.Errorf("short leg: %w", err)
	}
	long, err := createSpreadLeg(longLeg)
	if err != nil {
		return models.OptionSpread{}, fmt.Errorf("long leg: %w", err)
	}

	spreadBSMPrice := short.BSMResult.Price - long.BSMResult.Price
	intrinsicValue := short.IntrinsicValue - long.IntrinsicValue

	spread := models.OptionSpread{
		ShortLeg:       short,
		LongLeg:        long,
		SpreadType:     spreadType,
		SpreadBSMPrice: spreadBSMPrice,
		IntrinsicValue: intrinsicValue,
		ExtrinsicValue: spreadBSMPrice - intrinsicValue,
		Width:          math.Abs(short.Contract.Strike - long.Contract.Strike),
		Greeks:         calculateSpreadGreeks(short, long),
	}
	spread.MaxProfitAtSpot = models.IsProfitable(spread, short.Contract.Spot)
	return spread, nil
}

func createSpreadLeg(leg models.SpreadLeg) (models.SpreadLeg, error) {
	result, err := Price(leg.Class, leg.Contract)
	if err != nil {
		return models.SpreadLeg{}, err
	}

	leg.BSMResult = result
	leg.IntrinsicValue = IntrinsicValue(leg.Class, leg.Contract.Spot, leg.Contract.Strike)
	leg.ExtrinsicValue = ExtrinsicValue(result, leg.Class, leg.Contract.Spot, leg.Contract.Strike)
	return leg, nil
}

func determineSpreadType(shortLeg, longLeg models.SpreadLeg) (string, error) {
	if shortLeg.Class != longLeg.Class {
		return "", fmt.Errorf("%w: spread legs must share a class, got short %s and long %s", ErrInvalidParameter, shortLeg.Class, longLeg.Class)
	}

	shortStrike, longStrike := shortLeg.Contract.Strike, longLeg.Contract.Strike
	if shortStrike == longStrike {
		return "", &ParameterError{Name: "strike", Value: shortStrike, Reason: "spread legs must have different strikes"}
	}

	if shortLeg.Class == models.Call {
		if shortStrike < longStrike {
			return "Bear Call", nil
		}
		return "Bull Call", nil
	}
	if shortStrike > longStrike {
		return "Bull Put", nil
	}
	return "Bear Put", nil
}

func calculateSpreadGreeks(shortLeg, longLeg models.SpreadLeg) models.BSMResult {
	return models.BSMResult{
		Price: shortLeg.BSMResult.Price - longLeg.BSMResult.Price,
		Delta: shortLeg.BSMResult.Delta - longLeg.BSMResult.Delta,
		Gamma: shortLeg.BSMResult.Gamma - longLeg.BSMResult.Gamma,
		Vega:  shortLeg.BSMResult.Vega - longLeg.BSMResult.Vega,
		Theta: shortLeg.BSMResult.Theta - longLeg.BSMResult.Theta,
	}
}
