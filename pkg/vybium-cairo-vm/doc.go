// Package vybiumcairovm runs Cairo programs and produces the execution trace
// a STARK prover arithmetizes.
//
// A program is a list of field elements over p = 2^251 + 17*2^192 + 1,
// loaded into a write-once memory. Each step decodes the word at pc,
// resolves its operands, and updates pc, ap and fp. A run ends when pc
// leaves the allocated area (or reaches a configured end address), and
// yields the final registers, the step count and the full memory image.
//
// # Running a program
//
//	words := []vybiumcairovm.Felt{ /* compiled program */ }
//	program := vybiumcairovm.NewProgram(words, 1, 6).
//		WithCell(4, out).
//		WithCell(5, out)
//
//	machine, err := vybiumcairovm.NewVM(vybiumcairovm.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	trace, err := machine.Execute(program)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(trace.Steps, trace.Final)
//
// # Traces and claims
//
// With RecordTrace set, the run also builds a register table and a memory
// table padded to a common power of two height (see ExecutionTrace.TraceColumns).
// Every run produces a Poseidon program digest and a Claim over the initial
// and final registers, the step count and the public memory, committed
// through a sha3 or sha256 Fiat-Shamir transcript.
//
// # Errors
//
// All failures are *VMError values. Match them by code:
//
//	if errors.Is(err, &vybiumcairovm.VMError{Code: vybiumcairovm.ErrMemoryInconsistency}) {
//		...
//	}
package vybiumcairovm
