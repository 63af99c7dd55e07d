package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bcdannyboy/bsmgreeks/config"
	"github.com/bcdannyboy/bsmgreeks/positions"
	"github.com/bcdannyboy/bsmgreeks/report"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}

	if err := parseFlags(&cfg, os.Args[1:]); err != nil {
		logger.WithError(err).Fatal("Error parsing flags")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if err := cfg.Resolve(time.Now()); err != nil {
		logger.WithError(err).Fatal("Error resolving contract")
	}

	quotes, err := run(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Pricing failed")
	}

	if cfg.Output == "" {
		b, err := report.Marshal(quotes)
		if err != nil {
			logger.WithError(err).Fatal("Error rendering report")
		}
		fmt.Println(string(b))
		return
	}

	if err := report.WriteFile(cfg.Output, quotes); err != nil {
		logger.WithError(err).Fatal("Error writing report")
	}
	logger.WithFields(logrus.Fields{
		"file":   cfg.Output,
		"quotes": len(quotes),
	}).Info("Successfully wrote report")
}

// parseFlags applies command-line overrides on top of the environment config.
func parseFlags(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("bsmgreeks", flag.ContinueOnError)

	c := &cfg.Contract
	fs.Float64Var(&c.Spot, "spot", c.Spot, "underlying price")
	fs.Float64Var(&c.Strike, "strike", c.Strike, "strike price")
	fs.Float64Var(&c.TimeToExpiration, "tte", c.TimeToExpiration, "time to expiration in years")
	fs.Float64Var(&c.InterestRate, "rate", c.InterestRate, "continuously compounded interest rate")
	fs.Float64Var(&c.Volatility, "vol", c.Volatility, "annualized volatility")
	carry := fs.String("carry", "", "cost of carry, defaults to the interest rate")
	fs.StringVar(&cfg.Expiration, "expiration", cfg.Expiration, "expiration date YYYY-MM-DD, overrides -tte")
	fs.StringVar(&cfg.Class, "class", cfg.Class, "call, put or both")
	strikes := fs.String("strikes", "", "comma separated strike ladder, e.g. 95,100,105")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "ladder workers, 0 for one per CPU")
	fs.StringVar(&cfg.Output, "out", cfg.Output, "write JSON report to file instead of stdout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "logrus level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *carry != "" {
		b, err := strconv.ParseFloat(*carry, 64)
		if err != nil {
			return fmt.Errorf("invalid -carry %q: %w", *carry, err)
		}
		c.CostOfCarry = b
		cfg.CarrySet = true
	}
	if *strikes != "" {
		ks, err := config.ParseStrikes(*strikes)
		if err != nil {
			return err
		}
		cfg.Strikes = ks
	}
	return nil
}

func run(cfg config.Config, logger *logrus.Logger) ([]report.Quote, error) {
	classes, err := cfg.Classes()
	if err != nil {
		return nil, err
	}

	c := cfg.Contract
	logger.WithFields(logrus.Fields{
		"spot":  c.Spot,
		"tte":   c.TimeToExpiration,
		"rate":  c.InterestRate,
		"carry": c.CostOfCarry,
		"vol":   c.Volatility,
	}).Debug("Resolved contract")

	var quotes []report.Quote
	if len(cfg.Strikes) > 0 {
		for _, class := range classes {
			rows, err := positions.PriceLadder(c, class, cfg.Strikes, positions.LadderOptions{
				Workers:  cfg.Workers,
				Progress: os.Stderr,
				Logger:   logger,
			})
			if err != nil {
				return nil, err
			}
			quotes = append(quotes, report.FromLadder(c, rows)...)
		}
		return quotes, nil
	}

	for _, class := range classes {
		result, err := positions.Price(class, c)
		if err != nil {
			return nil, fmt.Errorf("pricing %s: %w", class, err)
		}
		quotes = append(quotes, report.NewQuote(class, c, result,
			positions.IntrinsicValue(class, c.Spot, c.Strike),
			positions.ExtrinsicValue(result, class, c.Spot, c.Strike)))
	}

	if len(classes) == 2 {
		residual, err := positions.ParityResidual(c)
		if err == nil {
			logger.WithField("residual", residual).Debug("Put-call parity check")
		}
	}
	return quotes, nil
}
