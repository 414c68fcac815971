package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ezrec/uvm/cpu"
	"github.com/ezrec/uvm/dump"
	"github.com/ezrec/uvm/emulator"
)

// dumpFlags selects the memory range and format of a run's dump.
type dumpFlags struct {
	start  int
	end    int
	format string
}

func (df *dumpFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&df.start, "start", 0, "First memory address to dump")
	cmd.Flags().IntVar(&df.end, "end", 64, "Memory address after the last to dump")
	cmd.Flags().StringVar(&df.format, "format", "xml", "Dump format (xml, cbor)")
}

// resolve applies configuration defaults to flags not set on the command line.
func (df *dumpFlags) resolve(cmd *cobra.Command, opts *options) (format dump.Format, err error) {
	if !cmd.Flags().Changed("start") {
		df.start = opts.cfg.Run.Start
	}
	if !cmd.Flags().Changed("end") {
		df.end = opts.cfg.Run.End
	}
	if !cmd.Flags().Changed("format") {
		df.format = opts.cfg.Run.Format
	}
	format, err = dump.ParseFormat(df.format)
	return
}

// assemble parses a YAML program file.
func assemble(path string, opts *options) (prog *cpu.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Logger: opts.logger.Named("asm")}
	prog, err = asm.Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
	}
	return
}

// execute runs a loaded emulator and writes its memory dump.
// The dump is written even when the run faults, marked incomplete.
func execute(emu *emulator.Emulator, dumpPath string, df *dumpFlags, format dump.Format, out io.Writer) (err error) {
	runErr := emu.Run()

	snap := dump.Capture(emu.Cpu, df.start, df.end, runErr)

	ouf, err := os.Create(dumpPath)
	if err != nil {
		return errors.Join(runErr, err)
	}
	err = snap.Write(ouf, format)
	err = errors.Join(err, ouf.Close())
	if err != nil {
		return errors.Join(runErr, err)
	}

	if runErr != nil {
		fmt.Fprintf(out, "Aborted after %d instructions. Partial memory dumped to %v\n", emu.Cpu.Ticks, dumpPath)
		return runErr
	}

	fmt.Fprintf(out, "Executed %d instructions. Memory dumped to %v\n", emu.Cpu.Ticks, dumpPath)
	return
}

func newAsmCommand(opts *options) *cobra.Command {
	var test bool

	cmd := &cobra.Command{
		Use:   "asm PROGRAM.yaml OUTPUT.bin",
		Short: "Assemble a YAML program into a binary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			prog, err := assemble(args[0], opts)
			if err != nil {
				return
			}

			out := cmd.OutOrStdout()
			if test {
				fmt.Fprintln(out, "Intermediate representation (IR):")
				for n, ins := range prog.Instructions() {
					fmt.Fprintf(out, "%d %v\n", n, ins)
				}
			}

			bin, err := prog.Binary()
			if err != nil {
				err = fmt.Errorf("%v: %w", args[0], err)
				return
			}

			err = os.WriteFile(args[1], bin, 0o644)
			if err != nil {
				return
			}

			if test {
				fmt.Fprint(out, "Binary bytes: [")
				for n, b := range bin {
					if n > 0 {
						fmt.Fprint(out, ", ")
					}
					fmt.Fprintf(out, "%#x", b)
				}
				fmt.Fprintln(out, "]")
				fmt.Fprintf(out, "Wrote %d bytes to %v\n", len(bin), args[1])
			}

			return
		},
	}
	cmd.Flags().BoolVar(&test, "test", false, "Print the assembled instructions and bytes")

	return cmd
}

func newRunCommand(opts *options) *cobra.Command {
	df := &dumpFlags{}

	cmd := &cobra.Command{
		Use:   "run INPUT.bin DUMP",
		Short: "Execute a binary and dump a memory range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			format, err := df.resolve(cmd, opts)
			if err != nil {
				return
			}

			bin, err := os.ReadFile(args[0])
			if err != nil {
				return
			}

			emu := emulator.NewEmulator()
			emu.SetLogger(opts.logger.Named("emu"))
			err = emu.Load(bin)
			if err != nil {
				err = fmt.Errorf("%v: %w", args[0], err)
				return
			}

			err = execute(emu, args[1], df, format, cmd.OutOrStdout())
			return
		},
	}
	df.register(cmd)

	return cmd
}

func newExecCommand(opts *options) *cobra.Command {
	df := &dumpFlags{}

	cmd := &cobra.Command{
		Use:   "exec PROGRAM.yaml DUMP",
		Short: "Assemble and execute a YAML program, then dump a memory range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			format, err := df.resolve(cmd, opts)
			if err != nil {
				return
			}

			prog, err := assemble(args[0], opts)
			if err != nil {
				return
			}

			emu := emulator.NewEmulator()
			emu.SetLogger(opts.logger.Named("emu"))
			err = emu.LoadProgram(prog)
			if err != nil {
				err = fmt.Errorf("%v: %w", args[0], err)
				return
			}

			err = execute(emu, args[1], df, format, cmd.OutOrStdout())
			return
		},
	}
	df.register(cmd)

	return cmd
}
