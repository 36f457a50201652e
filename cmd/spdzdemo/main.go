// Command spdzdemo runs one of a handful of canned SPDZ online-phase
// programs end to end, entirely in-process, using the in-memory
// preprocessing that core/harness generates. It exists to exercise
// core/harness outside of the test suite; real deployments wire parties
// across a network and a real preprocessing phase, both out of scope here
// (spec.md §1 Non-goals).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/republicprotocol/spdz/core/field"
	"github.com/republicprotocol/spdz/core/harness"
	"github.com/republicprotocol/spdz/core/instruction"
	"github.com/republicprotocol/spdz/core/register"
)

var parties int

func main() {
	root := &cobra.Command{
		Use:   "spdzdemo",
		Short: "Run a canned SPDZ online-phase program across n in-process parties",
	}
	root.PersistentFlags().IntVar(&parties, "parties", 3, "number of parties")

	root.AddCommand(
		&cobra.Command{
			Use:   "mul",
			Short: "Multiply two secret inputs via a Beaver triple",
			RunE:  runMul,
		},
		&cobra.Command{
			Use:   "add",
			Short: "Add two clear registers",
			RunE:  runAdd,
		},
		&cobra.Command{
			Use:   "io",
			Short: "Secret-share one input per party and reveal them all",
			RunE:  runIO,
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runAdd mirrors original_source/src/integration_test.rs's
// integration_test_clear_add: a single party adds two clear constants.
func runAdd(cmd *cobra.Command, args []string) error {
	prog := instruction.Program{
		instruction.CAdd{Dst: 2, A: 0, B: 1},
		instruction.COutput{K: 2},
		instruction.Stop{},
	}
	one := field.One()
	regs := []*register.File{
		register.FromClearInputs(3, []field.Fp{one, one}),
	}
	return runDemo(1, prog, regs)
}

// runMul is the canonical Beaver-triple multiplication sequence from
// original_source/src/integration_test.rs's integration_test_mul.
func runMul(cmd *cobra.Command, args []string) error {
	n := parties
	if n < 2 {
		n = 2
	}
	prog := instruction.Program{
		instruction.Input{Dst: 0, C: 0, OwnerID: 0},
		instruction.Input{Dst: 1, C: 1, OwnerID: 1},
		instruction.Triple{R0: 2, R1: 3, R2: 4},
		instruction.SSub{Dst: 5, A: 0, B: 2},
		instruction.SSub{Dst: 6, A: 1, B: 3},
		instruction.Open{Dst: 5, Src: 5},
		instruction.Open{Dst: 6, Src: 6},
		instruction.MMul{Dst: 7, Src: 3, C: 5},
		instruction.MMul{Dst: 8, Src: 2, C: 6},
		instruction.CMul{Dst: 9, A: 5, B: 6},
		instruction.SAdd{Dst: 10, A: 4, B: 7},
		instruction.SAdd{Dst: 10, A: 10, B: 8},
		instruction.MAdd{Dst: 10, Src: 10, C: 9, OwnerID: 0},
		instruction.SOutput{K: 10},
		instruction.Stop{},
	}

	x, y := field.Random(), field.Random()
	regs := make([]*register.File, n)
	regs[0] = register.FromClearInputs(11, []field.Fp{x, field.Zero()})
	regs[1] = register.FromClearInputs(11, []field.Fp{field.Zero(), y})
	for i := 2; i < n; i++ {
		regs[i] = register.New(11)
	}
	return runDemo(n, prog, regs)
}

// runIO mirrors integration_test_input_output: parties 0, 1 and 2 each
// contribute one secret input; two are opened and revealed as clear outputs
// and one as a checked secret output.
func runIO(cmd *cobra.Command, args []string) error {
	n := parties
	if n < 3 {
		n = 3
	}
	prog := instruction.Program{
		instruction.Input{Dst: 0, C: 0, OwnerID: 0},
		instruction.Input{Dst: 1, C: 1, OwnerID: 1},
		instruction.Input{Dst: 2, C: 2, OwnerID: 2},
		instruction.Open{Dst: 0, Src: 0},
		instruction.Open{Dst: 1, Src: 1},
		instruction.COutput{K: 0},
		instruction.COutput{K: 1},
		instruction.SOutput{K: 2},
		instruction.Stop{},
	}

	inputs := make([]field.Fp, n)
	for i := range inputs {
		inputs[i] = field.Random()
	}
	regs := make([]*register.File, n)
	for i := 0; i < n; i++ {
		vals := make([]field.Fp, 3)
		for j := 0; j < 3 && j < n; j++ {
			if j == i {
				vals[j] = inputs[j]
			} else {
				vals[j] = field.Zero()
			}
		}
		regs[i] = register.FromClearInputs(3, vals)
	}
	return runDemo(n, prog, regs)
}

func runDemo(n int, prog instruction.Program, regs []*register.File) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := harness.Run(ctx, harness.Config{
		N:       n,
		Alpha:   field.Random(),
		Program: prog,
		Regs:    regs,
	})
	if err != nil {
		return err
	}

	for i, r := range results {
		if r.Err != nil {
			return fmt.Errorf("party %d: %w", i, r.Err)
		}
		fmt.Printf("party %d outputs: %v\n", i, r.Outputs)
	}
	return nil
}
