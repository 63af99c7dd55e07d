package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bcdannyboy/bsmgreeks/models"
	"github.com/bcdannyboy/bsmgreeks/positions"
	"github.com/joho/godotenv"
)

const (
	EnvSpot       = "BSM_SPOT"
	EnvStrike     = "BSM_STRIKE"
	EnvStrikes    = "BSM_STRIKES"
	EnvTTE        = "BSM_TTE"
	EnvExpiration = "BSM_EXPIRATION"
	EnvRate       = "BSM_RATE"
	EnvCarry      = "BSM_CARRY"
	EnvVol        = "BSM_VOL"
	EnvClass      = "BSM_CLASS"
	EnvWorkers    = "BSM_WORKERS"
	EnvOutput     = "BSM_OUTPUT"
	EnvLogLevel   = "BSM_LOG_LEVEL"
)

// Config is the pricing request assembled from the environment. Command-line
// flags are applied on top of it by the caller.
type Config struct {
	Contract   models.Contract
	CarrySet   bool
	Class      string // call, put or both
	Expiration string
	Strikes    []float64
	Workers    int
	Output     string
	LogLevel   string
}

func defaults() Config {
	return Config{
		Class:    "both",
		LogLevel: "info",
	}
}

// Load reads the given .env files (".env" when none are given) into the
// process environment and builds a Config from it. Missing files are ignored.
func Load(paths ...string) (Config, error) {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from BSM_* environment variables.
func FromEnv() (Config, error) {
	cfg := defaults()

	floats := []struct {
		key string
		dst *float64
	}{
		{EnvSpot, &cfg.Contract.Spot},
		{EnvStrike, &cfg.Contract.Strike},
		{EnvTTE, &cfg.Contract.TimeToExpiration},
		{EnvRate, &cfg.Contract.InterestRate},
		{EnvVol, &cfg.Contract.Volatility},
	}
	for _, f := range floats {
		if _, err := lookupFloat(f.key, f.dst); err != nil {
			return Config{}, err
		}
	}

	set, err := lookupFloat(EnvCarry, &cfg.Contract.CostOfCarry)
	if err != nil {
		return Config{}, err
	}
	cfg.CarrySet = set

	if v, ok := os.LookupEnv(EnvStrikes); ok && strings.TrimSpace(v) != "" {
		strikes, err := ParseStrikes(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvStrikes, err)
		}
		cfg.Strikes = strikes
	}

	if v, ok := os.LookupEnv(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		cfg.Workers = n
	}

	if v := os.Getenv(EnvClass); v != "" {
		cfg.Class = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	cfg.Expiration = os.Getenv(EnvExpiration)
	cfg.Output = os.Getenv(EnvOutput)

	return cfg, nil
}

// Resolve fills derived fields: time to expiration from the expiration date
// when one is given, and cost of carry from the interest rate when unset.
func (c *Config) Resolve(now time.Time) error {
	if c.Expiration != "" {
		tte, err := positions.YearsToExpiration(c.Expiration, now)
		if err != nil {
			return err
		}
		c.Contract.TimeToExpiration = tte
	}
	if !c.CarrySet {
		c.Contract.CostOfCarry = c.Contract.InterestRate
	}
	return nil
}

// Classes expands the configured class into the option classes to price.
func (c Config) Classes() ([]models.OptionClass, error) {
	if c.Class == "both" || c.Class == "" {
		return []models.OptionClass{models.Call, models.Put}, nil
	}
	class, err := models.ParseOptionClass(c.Class)
	if err != nil {
		return nil, err
	}
	return []models.OptionClass{class}, nil
}

// ParseStrikes parses a comma separated strike list such as "95,100,105".
func ParseStrikes(s string) ([]float64, error) {
	var strikes []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid strike %q: %w", part, err)
		}
		if math.IsNaN(k) || math.IsInf(k, 0) {
			return nil, fmt.Errorf("invalid strike %q: must be finite", part)
		}
		strikes = append(strikes, k)
	}
	if len(strikes) == 0 {
		return nil, fmt.Errorf("no strikes in %q", s)
	}
	return strikes, nil
}

func lookupFloat(key string, dst *float64) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return false, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return true, nil
}
