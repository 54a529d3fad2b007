package program

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Config is the deployment-time policy of the program: which keys may
// assign reputation, the reputation floor for reviewing, and whether a
// reader may pay for the same paper twice.
type Config struct {
	ReputationCheckers  []solana.PublicKey
	MinReviewReputation uint8
	AllowRemint         bool
}

// DefaultConfig leaves the checker set empty, requires no reputation to
// review, and rejects repeat mints.
func DefaultConfig() Config {
	return Config{}
}

// ConfigFromEnv reads policy overrides from the environment:
//
//	DERES_REPUTATION_CHECKERS   comma-separated base58 public keys
//	DERES_MIN_REVIEW_REPUTATION integer in 0..=MaxReputation
//	DERES_ALLOW_REMINT          boolean
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if raw := os.Getenv("DERES_REPUTATION_CHECKERS"); raw != "" {
		for _, entry := range strings.Split(raw, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			key, err := solana.PublicKeyFromBase58(entry)
			if err != nil {
				return Config{}, fmt.Errorf("failed to parse reputation checker %q: %w", entry, err)
			}
			cfg.ReputationCheckers = append(cfg.ReputationCheckers, key)
		}
	}

	if raw := os.Getenv("DERES_MIN_REVIEW_REPUTATION"); raw != "" {
		min, err := strconv.ParseUint(raw, 10, 8)
		if err != nil || min > MaxReputation {
			return Config{}, fmt.Errorf("invalid DERES_MIN_REVIEW_REPUTATION %q", raw)
		}
		cfg.MinReviewReputation = uint8(min)
	}

	if raw := os.Getenv("DERES_ALLOW_REMINT"); raw != "" {
		allow, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DERES_ALLOW_REMINT %q", raw)
		}
		cfg.AllowRemint = allow
	}

	return cfg, nil
}

// IsReputationChecker reports whether key belongs to the configured
// checker set.
func (c Config) IsReputationChecker(key solana.PublicKey) bool {
	for _, checker := range c.ReputationCheckers {
		if checker.Equals(key) {
			return true
		}
	}
	return false
}
