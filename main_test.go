package main

import (
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/bcdannyboy/bsmgreeks/config"
	"github.com/bcdannyboy/bsmgreeks/models"
	"github.com/bcdannyboy/bsmgreeks/positions"
	"github.com/sirupsen/logrus"
)

var envKeys = []string{
	config.EnvSpot, config.EnvStrike, config.EnvStrikes, config.EnvTTE, config.EnvExpiration,
	config.EnvRate, config.EnvCarry, config.EnvVol, config.EnvClass, config.EnvWorkers,
	config.EnvOutput, config.EnvLogLevel,
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestParseFlagsOverridesEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr bool
		check   func(t *testing.T, cfg config.Config)
	}{
		{
			name: "explicit zero carry survives resolve",
			env:  map[string]string{config.EnvRate: "0.05"},
			args: []string{"-carry", "0"},
			check: func(t *testing.T, cfg config.Config) {
				if !cfg.CarrySet || cfg.Contract.CostOfCarry != 0 {
					t.Errorf("CostOfCarry = %v, CarrySet = %v, want 0 and true", cfg.Contract.CostOfCarry, cfg.CarrySet)
				}
			},
		},
		{
			name: "carry defaults to rate",
			env:  map[string]string{config.EnvRate: "0.05"},
			check: func(t *testing.T, cfg config.Config) {
				if cfg.Contract.CostOfCarry != 0.05 {
					t.Errorf("CostOfCarry = %v, want 0.05", cfg.Contract.CostOfCarry)
				}
			},
		},
		{
			name: "strikes flag replaces env strikes",
			env:  map[string]string{config.EnvStrikes: "90,110,120"},
			args: []string{"-strikes", "95,100"},
			check: func(t *testing.T, cfg config.Config) {
				if len(cfg.Strikes) != 2 || cfg.Strikes[0] != 95 || cfg.Strikes[1] != 100 {
					t.Errorf("Strikes = %v, want [95 100]", cfg.Strikes)
				}
			},
		},
		{
			name: "contract and class flags override env",
			env:  map[string]string{config.EnvSpot: "90", config.EnvClass: "call", config.EnvVol: "0.3"},
			args: []string{"-spot", "101", "-class", "put"},
			check: func(t *testing.T, cfg config.Config) {
				if cfg.Contract.Spot != 101 || cfg.Class != "put" {
					t.Errorf("Spot = %v, Class = %q, want 101 and put", cfg.Contract.Spot, cfg.Class)
				}
				if cfg.Contract.Volatility != 0.3 {
					t.Errorf("Volatility = %v, want env value 0.3", cfg.Contract.Volatility)
				}
			},
		},
		{
			name:    "bad carry",
			args:    []string{"-carry", "abc"},
			wantErr: true,
		},
		{
			name:    "bad strikes",
			args:    []string{"-strikes", "100,x"},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"-gamma", "1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := config.FromEnv()
			if err != nil {
				t.Fatalf("FromEnv returned error: %v", err)
			}

			err = parseFlags(&cfg, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFlags(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if err := cfg.Resolve(time.Now()); err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestRun(t *testing.T) {
	contract := models.Contract{Spot: 100, Strike: 105, TimeToExpiration: 0.2, InterestRate: 0.01, CostOfCarry: 0.01, Volatility: 0.1}

	tests := []struct {
		name      string
		cfg       config.Config
		wantQuote []string
	}{
		{"both classes", config.Config{Contract: contract, Class: "both"}, []string{"call", "put"}},
		{"single put", config.Config{Contract: contract, Class: "put"}, []string{"put"}},
		{"ladder both classes", config.Config{Contract: contract, Class: "both", Strikes: []float64{100, 95}, Workers: 2}, []string{"call", "call", "put", "put"}},
		{"ladder call", config.Config{Contract: contract, Class: "call", Strikes: []float64{95, 100}}, []string{"call", "call"}},
	}

	for _, tt := range tests {
		quotes, err := run(tt.cfg, quietLogger())
		if err != nil {
			t.Fatalf("%s: run returned error: %v", tt.name, err)
		}
		if len(quotes) != len(tt.wantQuote) {
			t.Fatalf("%s: got %d quotes, want %d", tt.name, len(quotes), len(tt.wantQuote))
		}
		for i, q := range quotes {
			if q.Class != tt.wantQuote[i] {
				t.Errorf("%s: quote %d class = %q, want %q", tt.name, i, q.Class, tt.wantQuote[i])
			}
			if q.Greeks == nil || q.Error != "" {
				t.Errorf("%s: quote %d not priced: %+v", tt.name, i, q)
			}
		}

		if len(tt.cfg.Strikes) > 0 && quotes[0].Inputs.Strike != 95 {
			t.Errorf("%s: ladder quotes not sorted by strike: first strike %v", tt.name, quotes[0].Inputs.Strike)
		}
		if len(tt.cfg.Strikes) == 0 && quotes[0].Inputs.Strike != contract.Strike {
			t.Errorf("%s: single quote strike = %v, want %v", tt.name, quotes[0].Inputs.Strike, contract.Strike)
		}
	}
}

func TestRunErrors(t *testing.T) {
	contract := models.Contract{Spot: 100, Strike: 105, TimeToExpiration: 0.2, InterestRate: 0.01, CostOfCarry: 0.01, Volatility: 0.1}

	if _, err := run(config.Config{Contract: contract, Class: "straddle"}, quietLogger()); err == nil {
		t.Errorf("expected error for unknown class")
	}

	contract.Volatility = 0
	if _, err := run(config.Config{Contract: contract, Class: "call"}, quietLogger()); !errors.Is(err, positions.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for zero volatility, got %v", err)
	}
}
