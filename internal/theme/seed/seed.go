// Package seed provides seed generation for theme randomization.
// Deterministic modes let a site render the same theme for the same inputs.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Mode determines how the random seed for theme selection is generated.
type Mode string

const (
	// ModeContent generates the seed from the catalog of available images.
	ModeContent Mode = "content"
	// ModeFilepath generates the seed from the absolute site root path.
	ModeFilepath Mode = "filepath"
	// ModeManual uses a user-provided seed value.
	ModeManual Mode = "manual"
	// ModeRandom uses a non-deterministic seed (varies each run, default).
	ModeRandom Mode = "random"
)

// Config holds configuration for seed generation.
type Config struct {
	Mode  Mode   // Seed mode
	Value *int64 // Seed value (only used when Mode is ModeManual)
}

// Calculate determines the seed value based on the seed mode.
// names: image names making up the catalog (required for ModeContent)
// root: the site root directory (required for ModeFilepath)
func Calculate(names []string, root string, config Config) (int64, error) {
	switch config.Mode {
	case ModeContent:
		if len(names) == 0 {
			return 0, fmt.Errorf("image names are required for content-based seed mode")
		}
		return CalculateContentSeed(names), nil
	case ModeFilepath:
		if root == "" {
			return 0, fmt.Errorf("site root is required for filepath-based seed mode")
		}
		return CalculateFilepathSeed(root), nil
	case ModeManual:
		if config.Value == nil {
			return 0, fmt.Errorf("seed value is required for manual seed mode")
		}
		return *config.Value, nil
	case ModeRandom, "":
		return GenerateRandomSeed(), nil
	default:
		return 0, fmt.Errorf("unknown seed mode: %s", config.Mode)
	}
}

// CalculateContentSeed hashes the sorted image names so the same catalog
// always yields the same seed regardless of directory order.
func CalculateContentSeed(names []string) int64 {
	sorted := slices.Clone(names)
	slices.Sort(sorted)

	hasher := sha256.New()
	for _, name := range sorted {
		hasher.Write([]byte(name))
		hasher.Write([]byte{0})
	}
	hash := hasher.Sum(nil)
	return int64(binary.LittleEndian.Uint64(hash[:8])) // #nosec G115 -- hash conversion is safe
}

// CalculateFilepathSeed generates a deterministic seed from the absolute path of root.
func CalculateFilepathSeed(root string) int64 {
	absPath, err := filepath.Abs(root)
	if err != nil || strings.HasPrefix(root, "http://") || strings.HasPrefix(root, "https://") {
		absPath = root
	}
	hash := sha256.Sum256([]byte(absPath))
	return int64(binary.LittleEndian.Uint64(hash[:8])) // #nosec G115 -- hash conversion is safe
}

// GenerateRandomSeed generates a non-deterministic random seed.
func GenerateRandomSeed() int64 {
	// #nosec G404 -- Random seed generation is intentionally non-deterministic
	return time.Now().UnixNano() + int64(rand.Intn(1000000))
}

// ValidModes returns a list of valid seed modes.
func ValidModes() []Mode {
	return []Mode{ModeContent, ModeFilepath, ModeManual, ModeRandom}
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(s)
	if slices.Contains(ValidModes(), mode) {
		return mode, nil
	}
	return "", fmt.Errorf("invalid seed mode: %s (valid: content, filepath, manual, random)", s)
}
