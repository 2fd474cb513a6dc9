package optimus

import (
	"fmt"
	"runtime"
)

// Family identifies the per-variable distributional model.
type Family string

const (
	FamilyGaussian         Family = "gaussian"
	FamilyPoisson          Family = "poisson"
	FamilyNegativeBinomial Family = "negative_binomial"
	FamilyBinomial         Family = "binomial"
	FamilyOrdinal          Family = "ordinal"
)

// Mode selects how a ClusteringInput is interpreted.
type Mode string

const (
	// ModeAuto infers the mode from which ClusteringInput field is set.
	ModeAuto Mode = "auto"
	// ModeHierarchy cuts a linkage at each requested level.
	ModeHierarchy Mode = "hierarchy"
	// ModeList scores the explicit label vectors as given.
	ModeList Mode = "list"
)

// Characteristic table types.
const (
	PerCluster = "per_cluster"
	Global     = "global"
)

// Config controls model fitting and the three drivers.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Family is the distributional model fitted to every data column.
	// Default: FamilyGaussian.
	Family Family

	// Trials is the number of binomial trials K per observation. With
	// Trials == 1 the binomial family uses a complementary log-log link on
	// presence/absence data; with Trials > 1 it uses a logit link on success
	// proportions. Ignored by the other families. Must be >= 1. Default: 1.
	Trials int

	// Mode forces hierarchy or list interpretation of a ClusteringInput.
	// Default: ModeAuto (infer from which input field is set).
	Mode Mode

	// CutLevels are the group counts at which a hierarchy is cut. Each level
	// must be >= 2. Only used in hierarchy mode. Default: 2..40.
	CutLevels []int

	// OverrideValidation turns enumeration-time validation failures
	// (a cut level exceeding the observation count, a malformed linkage)
	// into per-candidate invalid rows instead of an error for the whole run.
	// Default: false.
	OverrideValidation bool

	// Iterations is the number of greedy merges MergeClusters performs.
	// Merging stops early when one cluster remains. 0 scores the input
	// clustering and performs no merge. Must be >= 0. Default: 0.
	Iterations int

	// CharacteristicType selects per-cluster or global characteristic
	// tables. Default: PerCluster.
	CharacteristicType string

	// Workers controls the number of goroutines used to fit columns and to
	// score candidate merge pairs. Results are deterministic regardless of
	// the value. 0 means use runtime.NumCPU(). Default: 0 (auto).
	Workers int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Family:             FamilyGaussian,
		Trials:             1,
		Mode:               ModeAuto,
		CharacteristicType: PerCluster,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Family == "" {
		cfg.Family = FamilyGaussian
	}
	if cfg.Trials == 0 {
		cfg.Trials = 1
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeAuto
	}
	if cfg.CutLevels == nil {
		cfg.CutLevels = make([]int, 0, 39)
		for g := 2; g <= 40; g++ {
			cfg.CutLevels = append(cfg.CutLevels, g)
		}
	}
	if cfg.CharacteristicType == "" {
		cfg.CharacteristicType = PerCluster
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive
// error if not.
func validateConfig(cfg *Config) error {
	switch cfg.Family {
	case FamilyGaussian, FamilyPoisson, FamilyNegativeBinomial, FamilyBinomial, FamilyOrdinal:
		// valid
	default:
		return fmt.Errorf("optimus: invalid Family %q", cfg.Family)
	}
	if cfg.Trials < 1 {
		return fmt.Errorf("optimus: Trials must be >= 1, got %d", cfg.Trials)
	}
	switch cfg.Mode {
	case ModeAuto, ModeHierarchy, ModeList:
		// valid
	default:
		return fmt.Errorf("optimus: invalid Mode %q", cfg.Mode)
	}
	for _, g := range cfg.CutLevels {
		if g < 2 {
			return fmt.Errorf("optimus: CutLevels entries must be >= 2, got %d", g)
		}
	}
	if cfg.Iterations < 0 {
		return fmt.Errorf("optimus: Iterations must be >= 0, got %d", cfg.Iterations)
	}
	if cfg.CharacteristicType != PerCluster && cfg.CharacteristicType != Global {
		return fmt.Errorf("optimus: CharacteristicType must be %q or %q, got %q",
			PerCluster, Global, cfg.CharacteristicType)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("optimus: Workers must be >= 1 after defaulting, got %d", cfg.Workers)
	}
	return nil
}

// lengthMismatch is the shared error for a clustering that does not align
// with the data rows.
func lengthMismatch(got, want int) error {
	return fmt.Errorf("optimus: clustering has %d labels for %d observations", got, want)
}

// prepare applies defaults, validates the config, and checks data.
func prepare(data *DataMatrix, cfg *Config) error {
	applyDefaults(cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("optimus: data must not be nil")
	}
	return nil
}
