// vybium-cairo-runner executes Cairo programs and prints the run result as JSON.
//
//	vybium-cairo-runner run --program prog.json [--config run.yaml]
//	vybium-cairo-runner batch a.json b.json --jobs 4
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	vybiumcairovm "github.com/vybium/vybium-cairo-vm/pkg/vybium-cairo-vm"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// runOutput is the JSON result of one run
type runOutput struct {
	Program       string            `json:"program,omitempty"`
	Steps         uint64            `json:"steps"`
	Initial       registers         `json:"initial"`
	Final         registers         `json:"final"`
	ProgramDigest []uint64          `json:"program_digest"`
	Commitment    string            `json:"commitment"`
	PaddedHeight  int               `json:"padded_height,omitempty"`
	PublicMemory  map[uint64]string `json:"public_memory,omitempty"`
	Memory        map[uint64]string `json:"memory,omitempty"`
}

type registers struct {
	PC string `json:"pc"`
	AP string `json:"ap"`
	FP string `json:"fp"`
}

func toRegisters(p vybiumcairovm.Pointers) registers {
	return registers{PC: p.PC.String(), AP: p.AP.String(), FP: p.FP.String()}
}

func newOutput(name string, trace *vybiumcairovm.ExecutionTrace, dumpMemory bool) *runOutput {
	out := &runOutput{
		Program:      name,
		Steps:        trace.Steps,
		Initial:      toRegisters(trace.Initial),
		Final:        toRegisters(trace.Final),
		Commitment:   hex.EncodeToString(trace.Commitment),
		PaddedHeight: trace.PaddedHeight(),
	}
	for _, e := range trace.ProgramDigest {
		out.ProgramDigest = append(out.ProgramDigest, e.Value())
	}
	if trace.Claim != nil && len(trace.Claim.PublicMemory) > 0 {
		out.PublicMemory = make(map[uint64]string, len(trace.Claim.PublicMemory))
		for _, c := range trace.Claim.PublicMemory {
			out.PublicMemory[c.Address] = c.Value.String()
		}
	}
	if dumpMemory {
		out.Memory = make(map[uint64]string, len(trace.Memory))
		for a, v := range trace.Memory {
			out.Memory[a] = v.String()
		}
	}
	return out
}

func newLogger(level zerolog.Level) zerolog.Logger {
	if level < zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(level)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
}

// runFlags are shared by run and batch
type runFlags struct {
	configPath string
	maxSteps   uint64
	endPC      uint64
	noTrace    bool
	logLevel   string
	dumpMemory bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "YAML run configuration")
	cmd.Flags().Uint64Var(&f.maxSteps, "max-steps", 0, "step ceiling (overrides config)")
	cmd.Flags().Uint64Var(&f.endPC, "end-pc", 0, "halt when pc reaches this address (overrides config)")
	cmd.Flags().BoolVar(&f.noTrace, "no-trace", false, "skip trace table generation")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level (overrides config)")
	cmd.Flags().BoolVar(&f.dumpMemory, "dump-memory", false, "include the final memory image")
}

// config loads the configuration and applies flag overrides
func (f *runFlags) config(cmd *cobra.Command) (*vybiumcairovm.Config, zerolog.Logger, error) {
	cfg := vybiumcairovm.DefaultConfig()
	if f.configPath != "" {
		loaded, err := vybiumcairovm.LoadConfig(f.configPath)
		if err != nil {
			return nil, zerolog.Nop(), err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.WithMaxSteps(f.maxSteps)
	}
	if cmd.Flags().Changed("end-pc") {
		cfg.WithEndPC(f.endPC)
	}
	if f.noTrace {
		cfg.WithRecordTrace(false)
	}
	if f.logLevel != "" {
		cfg.WithLogLevel(f.logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, newLogger(level), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	var rootCmd = &cobra.Command{
		Use:           "vybium-cairo-runner",
		Short:         "Execute Cairo programs and report their execution trace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	var (
		flags       runFlags
		batchFlags  runFlags
		programPath string
		jobs        int
	)

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run one program",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.config(cmd)
			if err != nil {
				return err
			}
			program, err := vybiumcairovm.LoadProgram(programPath)
			if err != nil {
				return err
			}
			machine, err := vybiumcairovm.NewVMWithLogger(cfg, log)
			if err != nil {
				return err
			}
			trace, err := machine.Execute(program)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), newOutput(programPath, trace, flags.dumpMemory))
		},
	}
	flags.register(runCmd)
	runCmd.Flags().StringVarP(&programPath, "program", "p", "", "program JSON file")
	_ = runCmd.MarkFlagRequired("program")

	var batchCmd = &cobra.Command{
		Use:   "batch <program.json>...",
		Short: "Run independent programs in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := batchFlags.config(cmd)
			if err != nil {
				return err
			}
			paths := append([]string(nil), args...)
			sort.Strings(paths)

			programs := make([]*vybiumcairovm.Program, len(paths))
			for i, p := range paths {
				if programs[i], err = vybiumcairovm.LoadProgram(p); err != nil {
					return fmt.Errorf("%s: %w", p, err)
				}
			}

			traces, err := vybiumcairovm.ExecuteBatchWithLogger(cmd.Context(), cfg, programs, jobs, log)
			if err != nil {
				return err
			}
			outputs := make([]*runOutput, len(traces))
			for i, t := range traces {
				outputs[i] = newOutput(paths[i], t, batchFlags.dumpMemory)
			}
			return writeJSON(cmd.OutOrStdout(), outputs)
		},
	}
	batchFlags.register(batchCmd)
	batchCmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "maximum parallel runs (0 = unlimited)")

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vybium-cairo-runner %s (commit %s, built %s)\n", Version, Commit, BuildTime)
		},
	}

	rootCmd.AddCommand(runCmd, batchCmd, versionCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
