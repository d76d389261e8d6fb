package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nixoeen/synth"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := synth.DefaultConfig()
	var (
		output  string
		verbose bool
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Discover and verify bitvector rewrite rules",
		Long: `synth enumerates fixed-width bitvector terms, groups them by concrete
evaluation, and verifies conjectured equalities with an SMT oracle. The
result is an ordered set of oriented rewrite rules.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.New()
			log.SetOutput(os.Stderr)
			switch {
			case quiet:
				log.SetLevel(logrus.WarnLevel)
			case verbose:
				log.SetLevel(logrus.DebugLevel)
			default:
				log.SetLevel(logrus.InfoLevel)
			}

			s, err := synth.New(cfg, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rep, err := s.Run(ctx)
			if err != nil {
				return err
			}

			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := rep.WriteYAML(f); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
			}
			return rep.WriteText(os.Stdout)
		},
	}

	f := cmd.Flags()
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for sample generation")
	f.UintVar(&cfg.Width, "width", cfg.Width, "bitvector width (1..64)")
	f.IntVar(&cfg.NumVars, "vars", cfg.NumVars, "number of free variables")
	f.IntVar(&cfg.AuxVars, "aux-vars", cfg.AuxVars, "variables given an auxiliary half-width interpretation")
	f.IntVar(&cfg.FuzzSamples, "fuzz-samples", cfg.FuzzSamples, "random sample points")
	f.IntVar(&cfg.BoundarySamples, "boundary-samples", cfg.BoundarySamples, "curated boundary sample points")
	f.IntVar(&cfg.Iterations, "iterations", cfg.Iterations, "enumeration rounds")
	f.IntVar(&cfg.MaxCandidates, "max-candidates", cfg.MaxCandidates, "total candidate cap for the run, 0 for no cap")
	f.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "candidates validated per parallel batch")
	f.BoolVar(&cfg.CommutativeOrder, "commutative-order", cfg.CommutativeOrder, "enumerate one operand order for commutative operators")
	f.BoolVar(&cfg.Minimize, "minimize", cfg.Minimize, "drop rules derivable from the rest of the set")
	f.IntVar(&cfg.ConstIterLimit, "const-iter-limit", cfg.ConstIterLimit, "iteration after which constants stop being introduced, -1 for never")
	f.StringSliceVar(&cfg.OnlyOps, "only-ops", cfg.OnlyOps, "restrict enumeration to these operators (e.g. bvadd,bvand)")
	f.BoolVar(&cfg.NoConditionals, "no-conditionals", cfg.NoConditionals, "disable ite and comparison operators")
	f.BoolVar(&cfg.NoShifts, "no-shifts", cfg.NoShifts, "disable shift operators")
	f.BoolVar(&cfg.NoXor, "no-xor", cfg.NoXor, "disable xor")
	f.BoolVar(&cfg.NoMul, "no-mul", cfg.NoMul, "disable multiplication")
	f.BoolVar(&cfg.NoSaturation, "no-saturation", cfg.NoSaturation, "skip the saturation pre-filter, send every candidate to the oracle")
	f.BoolVar(&cfg.NoNonlinearMatch, "no-nonlinear-match", cfg.NoNonlinearMatch, "exclude terms multiplying two non-constants from candidates")
	f.BoolVar(&cfg.ExhaustiveEval, "exhaustive-eval", cfg.ExhaustiveEval, "fingerprint over the entire domain instead of sampling")
	f.BoolVar(&cfg.NoOracle, "no-oracle", cfg.NoOracle, "disable oracle escalation; nothing is formally proved")
	f.BoolVar(&cfg.UseZ3, "z3", cfg.UseZ3, "decide candidates with Z3 instead of full-domain enumeration")
	f.DurationVar(&cfg.OracleTimeout, "oracle-timeout", cfg.OracleTimeout, "per-candidate oracle timeout")
	f.BoolVar(&cfg.FinalCheck, "final-check", cfg.FinalCheck, "re-verify all rules over the full domain after the last round")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel validation workers")
	f.IntVar(&cfg.SatMaxNodes, "sat-max-nodes", cfg.SatMaxNodes, "node bound per saturation run")
	f.IntVar(&cfg.SatMaxIters, "sat-max-iters", cfg.SatMaxIters, "iteration bound per saturation run")
	f.DurationVar(&cfg.SatBudget, "sat-budget", cfg.SatBudget, "wall-clock bound per saturation run")
	f.StringVarP(&output, "output", "o", "", "write the YAML report to this file")
	f.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	f.BoolVarP(&quiet, "quiet", "q", false, "warnings only")

	return cmd
}
