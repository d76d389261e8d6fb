package synth

import (
	"fmt"
	"runtime"
	"time"
)

// Config is the full knob surface of a synthesis run. Every field is
// independently settable; Validate rejects inconsistent combinations
// before enumeration starts, the only fatal condition in a run.
type Config struct {
	Seed  int64 `yaml:"seed"`
	Width uint  `yaml:"width"`

	NumVars int `yaml:"num_vars"`
	// AuxVars is the number of variables that also get a secondary
	// half-width fingerprint column per sample point.
	AuxVars int `yaml:"aux_vars"`

	FuzzSamples     int `yaml:"fuzz_samples"`
	BoundarySamples int `yaml:"boundary_samples"`

	Iterations    int `yaml:"iterations"`
	MaxCandidates int `yaml:"max_candidates"`
	BatchSize     int `yaml:"batch_size"`

	// CommutativeOrder enumerates only one operand order for commutative
	// operators. Cuts the universe roughly in half, but the commutativity
	// rules themselves can then never be discovered.
	CommutativeOrder bool `yaml:"commutative_order"`

	Minimize bool `yaml:"minimize"`
	// ConstIterLimit is the iteration index after which constants stop
	// being introduced as direct operands; 0 means never introduce them,
	// negative means no cutoff.
	ConstIterLimit int `yaml:"const_iter_limit"`

	// OnlyOps restricts enumeration to the named operators (e.g.
	// "bvadd"); empty means the full vocabulary. The disable flags below
	// apply on top of it.
	OnlyOps []string `yaml:"only_ops,omitempty"`

	NoConditionals   bool `yaml:"no_conditionals"`
	NoShifts         bool `yaml:"no_shifts"`
	NoXor            bool `yaml:"no_xor"`
	NoMul            bool `yaml:"no_mul"`
	NoSaturation     bool `yaml:"no_saturation"`
	NoNonlinearMatch bool `yaml:"no_nonlinear_match"`

	ExhaustiveEval bool `yaml:"exhaustive_eval"`
	NoOracle       bool `yaml:"no_oracle"`
	// UseZ3 selects the SMT backend; otherwise the full-domain
	// enumeration oracle is used (and the width must be narrow enough
	// for it).
	UseZ3         bool          `yaml:"use_z3"`
	OracleTimeout time.Duration `yaml:"oracle_timeout"`
	FinalCheck    bool          `yaml:"final_check"`

	Workers int `yaml:"workers"`

	SatMaxNodes int           `yaml:"sat_max_nodes"`
	SatMaxIters int           `yaml:"sat_max_iters"`
	SatBudget   time.Duration `yaml:"sat_budget"`
}

func DefaultConfig() Config {
	return Config{
		Seed:            1,
		Width:           8,
		NumVars:         3,
		AuxVars:         0,
		FuzzSamples:     64,
		BoundarySamples: 16,
		Iterations:      2,
		MaxCandidates:   2000,
		BatchSize:       64,
		Minimize:        false,
		ConstIterLimit:  -1,
		UseZ3:           true,
		OracleTimeout:   10 * time.Second,
		FinalCheck:      false,
		Workers:         runtime.GOMAXPROCS(0),
		SatMaxNodes:     4096,
		SatMaxIters:     8,
		SatBudget:       time.Second,
	}
}

// vocabulary applies OnlyOps and the disable flags to the full operator
// set. Unknown names are caught by Validate.
func (c Config) vocabulary() Vocabulary {
	v := DefaultVocabulary()
	if len(c.OnlyOps) > 0 {
		v = Vocabulary{}
		for _, name := range c.OnlyOps {
			if op, ok := OpByName(name); ok {
				v.enabled[op] = true
			}
		}
	}
	if c.NoConditionals {
		v.DisableClass(ClassCond)
	}
	if c.NoShifts {
		v.DisableClass(ClassShift)
	}
	if c.NoXor {
		v.DisableOp(OpXor)
	}
	if c.NoMul {
		v.DisableClass(ClassMul)
	}
	return v
}

// exhaustiveBits is the largest total assignment-space exponent, in
// bits, that the full-domain paths are allowed to enumerate.
const exhaustiveBits = 22

func (c Config) exhaustiveFeasible() bool {
	return uint(c.NumVars)*c.Width <= exhaustiveBits
}

func (c Config) satLimits() SatLimits {
	return SatLimits{MaxNodes: c.SatMaxNodes, MaxIters: c.SatMaxIters, Budget: c.SatBudget}
}

func (c Config) Validate() error {
	if c.Width < 1 || c.Width > 64 {
		return fmt.Errorf("width %d out of range 1..64", c.Width)
	}
	if c.NumVars < 1 || c.NumVars > maxVars {
		return fmt.Errorf("variable count %d out of range 1..%d", c.NumVars, maxVars)
	}
	if c.AuxVars < 0 || c.AuxVars > c.NumVars {
		return fmt.Errorf("auxiliary variable count %d out of range 0..%d", c.AuxVars, c.NumVars)
	}
	if c.Iterations < 1 || c.Iterations > 16 {
		return fmt.Errorf("iteration count %d out of range 1..16", c.Iterations)
	}
	for _, name := range c.OnlyOps {
		if _, ok := OpByName(name); !ok {
			return fmt.Errorf("unknown operator %q", name)
		}
	}
	if c.vocabulary().Empty() {
		return fmt.Errorf("empty effective operator vocabulary")
	}
	if c.FuzzSamples < 0 || c.BoundarySamples < 0 {
		return fmt.Errorf("sample counts must be non-negative")
	}
	if !c.ExhaustiveEval && c.FuzzSamples+c.BoundarySamples == 0 {
		return fmt.Errorf("sampled mode needs at least one sample point")
	}
	if c.MaxCandidates < 0 {
		return fmt.Errorf("candidate cap must be non-negative")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("worker count must be positive")
	}
	if c.SatMaxNodes < 1 || c.SatMaxIters < 1 || c.SatBudget <= 0 {
		return fmt.Errorf("saturation bounds must be positive")
	}
	if c.ExhaustiveEval && !c.exhaustiveFeasible() {
		return fmt.Errorf("exhaustive evaluation infeasible: %d vars at width %d", c.NumVars, c.Width)
	}
	if !c.NoOracle && !c.UseZ3 && !c.exhaustiveFeasible() {
		return fmt.Errorf("enumeration oracle infeasible: %d vars at width %d; use z3 or disable the oracle", c.NumVars, c.Width)
	}
	if c.FinalCheck && !c.exhaustiveFeasible() {
		return fmt.Errorf("final check infeasible: %d vars at width %d", c.NumVars, c.Width)
	}
	return nil
}
