// Package password hashes credentials with bcrypt on a bounded pool of hashing slots.
package password

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// MaxInputBytes is the longest prefix of a password that bcrypt consumes.
// Longer inputs are truncated rather than rejected.
const MaxInputBytes = 72

// Config tunes the hasher.
type Config struct {
	Cost    int
	Workers int
}

// Hasher produces salted one-way hashes. Safe for concurrent use.
type Hasher struct {
	cost int
	sem  chan struct{}
}

func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.Cost == 0 {
		cfg.Cost = DefaultCost
	}
	if cfg.Cost < bcrypt.MinCost || cfg.Cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cfg.Cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Hasher{
		cost: cfg.Cost,
		sem:  make(chan struct{}, cfg.Workers),
	}, nil
}

// Hash waits for a free slot and hashes plaintext. Two calls with the same input differ.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case h.sem <- struct{}{}:
	}
	defer func() { <-h.sem }()

	hash, err := bcrypt.GenerateFromPassword(truncate(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether plaintext matches hash.
func (h *Hasher) Compare(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(plaintext)) == nil
}

func truncate(plaintext string) []byte {
	b := []byte(plaintext)
	if len(b) > MaxInputBytes {
		b = b[:MaxInputBytes]
	}
	return b
}
