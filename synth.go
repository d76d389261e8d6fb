package synth

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// errDerivable marks a candidate the saturation pre-filter settled; it
// carries no new information and never reaches the oracle.
var errDerivable = errors.New("derivable from rule set")

// RunStats tallies per-candidate outcomes. Every outcome is expected and
// non-fatal; nothing here ever aborts a run.
type RunStats struct {
	Candidates int `yaml:"candidates"`
	Derivable  int `yaml:"derivable"`
	Proved     int `yaml:"proved"`
	Disproved  int `yaml:"disproved"`
	Unknown    int `yaml:"unknown"`
	// Dropped counts rules removed by the final full-domain check.
	Dropped int `yaml:"dropped"`
}

// Synthesizer drives the iteration loop: grow the term universe,
// partition by fingerprint, validate candidates (saturation pre-filter,
// then oracle), and fold verified rules into the rule set at round
// boundaries.
type Synthesizer struct {
	cfg     Config
	log     logrus.FieldLogger
	vocab   Vocabulary
	store   *TermStore
	samples *Samples
	ev      *Evaluator
	oracle  Oracle
	rules   *RuleSet
	stats   RunStats

	// undecided remembers pairs the oracle answered Unknown for, so a
	// pair is dropped once per run instead of re-escalated every round.
	undecided map[pairKey]bool
}

func New(cfg Config, log logrus.FieldLogger) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	dom := NewDomain(cfg.Width)
	store := NewTermStore(dom)

	var samples *Samples
	if cfg.ExhaustiveEval {
		samples = NewExhaustiveSamples(dom, cfg.NumVars)
	} else {
		samples = NewSamples(dom, cfg.NumVars, cfg.BoundarySamples, cfg.FuzzSamples, cfg.Seed)
	}

	var oracle Oracle
	switch {
	case cfg.NoOracle:
		oracle = nullOracle{}
	case cfg.UseZ3:
		oracle = NewZ3Oracle(dom, cfg.NumVars)
	default:
		oracle = NewExhaustiveOracle(dom, cfg.NumVars)
	}

	return &Synthesizer{
		cfg:       cfg,
		log:       log,
		vocab:     cfg.vocabulary(),
		store:     store,
		samples:   samples,
		ev:        NewEvaluator(dom, samples, cfg.AuxVars),
		oracle:    oracle,
		rules:     NewRuleSet(),
		undecided: map[pairKey]bool{},
	}, nil
}

// Rules returns the current rule set snapshot.
func (s *Synthesizer) Rules() *RuleSet { return s.rules }

// allowConsts reports whether constants may appear as direct operands at
// the given iteration; the seed universe is iteration zero.
func (s *Synthesizer) allowConsts(iter int) bool {
	return s.cfg.ConstIterLimit < 0 || iter < s.cfg.ConstIterLimit
}

// Run executes the configured number of rounds and returns the report.
// Given the same Config, the resulting rule set is bit-identical across
// runs.
func (s *Synthesizer) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	u := NewUniverse(s.store, s.cfg.NumVars, s.allowConsts(0))

	for round := 1; round <= s.cfg.Iterations; round++ {
		added := u.Grow(s.vocab, s.allowConsts(round), s.cfg.CommutativeOrder)

		// The candidate cap spans the whole run, not one round.
		var cands []Candidate
		remaining := s.cfg.MaxCandidates - s.stats.Candidates
		if s.cfg.MaxCandidates == 0 || remaining > 0 {
			cands = ProposeCandidates(u.Terms(), s.ev, s.rules, s.undecided, remaining, s.cfg.NoNonlinearMatch)
		}
		s.stats.Candidates += len(cands)
		s.log.WithFields(logrus.Fields{
			"round":      round,
			"universe":   u.Len(),
			"new_terms":  len(added),
			"candidates": len(cands),
		}).Info("round start")

		proved := s.validateAll(ctx, cands)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, c := range proved {
			rule := buildRule(c.LHS, c.RHS, round, s.rules.Rules(), s.cfg.satLimits())
			s.rules = s.rules.Add(rule)
			s.log.WithFields(logrus.Fields{
				"lhs":           rule.LHS.String(),
				"rhs":           rule.RHS.String(),
				"bidirectional": rule.Bidirectional,
			}).Debug("rule added")
		}
		s.log.WithFields(logrus.Fields{
			"round": round,
			"rules": s.rules.Len(),
		}).Info("round done")
	}

	if s.cfg.Minimize {
		before := s.rules.Len()
		s.rules = s.rules.Replace(Minimize(s.rules.Rules(), s.cfg.satLimits()))
		s.log.WithFields(logrus.Fields{
			"before": before,
			"after":  s.rules.Len(),
		}).Info("minimized")
	}

	if s.cfg.FinalCheck {
		s.finalCheck(ctx)
	}

	return s.report(time.Since(start)), nil
}

// validateAll runs the candidate list in batches. Each batch validates
// against one frozen rule-set snapshot, in parallel; results are folded
// back in candidate order, and counterexamples join the sample-point set
// between batches. Rules proved mid-round take effect only at the round
// boundary, so batch results are order-independent.
func (s *Synthesizer) validateAll(ctx context.Context, cands []Candidate) []Candidate {
	var proved []Candidate
	frozen := s.rules.Rules()
	lim := s.cfg.satLimits()

	for lo := 0; lo < len(cands); lo += s.cfg.BatchSize {
		hi := lo + s.cfg.BatchSize
		if hi > len(cands) {
			hi = len(cands)
		}
		batch := cands[lo:hi]
		verdicts := make([]Verdict, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.Workers)
		for i := range batch {
			i := i
			g.Go(func() error {
				verdicts[i] = s.validate(gctx, batch[i], frozen, lim)
				return nil
			})
		}
		g.Wait()
		if ctx.Err() != nil {
			return proved
		}

		for i, v := range verdicts {
			switch v.Kind {
			case Proved:
				s.stats.Proved++
				proved = append(proved, batch[i])
			case Disproved:
				s.stats.Disproved++
				s.samples.Add(v.Counterexample)
			case Unknown:
				if v.Err == errDerivable {
					s.stats.Derivable++
				} else {
					s.stats.Unknown++
					s.undecided[makePairKey(batch[i].LHS, batch[i].RHS)] = true
					if v.Err != nil {
						s.log.WithError(v.Err).WithFields(logrus.Fields{
							"lhs": batch[i].LHS.String(),
							"rhs": batch[i].RHS.String(),
						}).Debug("oracle unknown")
					}
				}
			}
		}
	}
	return proved
}

// validate decides one candidate: the saturation pre-filter discards
// candidates already derivable from the frozen rules, everything else
// escalates to the oracle under its own timeout.
func (s *Synthesizer) validate(ctx context.Context, c Candidate, frozen []Rule, lim SatLimits) Verdict {
	if !s.cfg.NoSaturation {
		if deriveEqual(c.LHS, c.RHS, frozen, lim) == SatDerivable {
			return Verdict{Kind: Unknown, Err: errDerivable}
		}
	}
	octx, cancel := context.WithTimeout(ctx, s.cfg.OracleTimeout)
	defer cancel()
	return s.oracle.Decide(octx, c.LHS, c.RHS)
}

// finalCheck re-verifies every rule over the entire finite domain and
// drops the ones that fail. A failure here means the oracle misbehaved;
// it is logged and counted, never fatal.
func (s *Synthesizer) finalCheck(ctx context.Context) {
	ex := NewExhaustiveOracle(s.store.Domain(), s.cfg.NumVars)
	var kept []Rule
	for _, r := range s.rules.Rules() {
		v := ex.Decide(ctx, r.LHS, r.RHS)
		if v.Kind == Proved {
			kept = append(kept, r)
			continue
		}
		s.stats.Dropped++
		s.log.WithFields(logrus.Fields{
			"lhs": r.LHS.String(),
			"rhs": r.RHS.String(),
		}).Warn("rule failed full-domain check, dropped")
	}
	if s.stats.Dropped > 0 {
		s.rules = s.rules.Replace(kept)
	}
}
