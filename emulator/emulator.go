// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator runs UVM binaries on a private CPU.
package emulator

import (
	"go.uber.org/zap"

	"github.com/ezrec/uvm/cpu"
)

// Emulator state. CPU + decoded instruction stream.
type Emulator struct {
	Logger   *zap.Logger // Logger for load and run events.
	*cpu.Cpu             // Reference to the CPU simulation.

	words []cpu.Word // Decoded instruction stream.
	ip    int        // Index of the next instruction to execute.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Logger: zap.NewNop(),
		Cpu:    cpu.NewCpu(),
	}

	return
}

// SetLogger sets the logger of the emulator and its CPU.
func (emu *Emulator) SetLogger(logger *zap.Logger) {
	emu.Logger = logger
	emu.Cpu.Logger = logger.Named("cpu")
}

// Load decodes a binary and resets the CPU to run it.
// On a decode error nothing is loaded.
func (emu *Emulator) Load(binary []byte) (err error) {
	var words []cpu.Word
	for _, word := range cpu.Words(binary) {
		if word.Err != nil {
			err = word.Err
			return
		}
		words = append(words, word)
	}

	emu.words = words
	emu.Reset()

	emu.Logger.Info("loaded",
		zap.Int("bytes", len(binary)),
		zap.Int("instructions", len(words)))

	return
}

// LoadProgram encodes an assembled program and loads it.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	binary, err := prog.Binary()
	if err != nil {
		return
	}

	err = emu.Load(binary)
	return
}

// Reset clears the CPU state and rewinds to the first instruction.
func (emu *Emulator) Reset() {
	emu.Cpu.Reset()
	emu.ip = 0
}

// Len returns the number of loaded instructions.
func (emu *Emulator) Len() int {
	return len(emu.words)
}

// Ip returns the index of the next instruction to execute.
func (emu *Emulator) Ip() int {
	return emu.ip
}

// Code returns the next instruction to execute.
func (emu *Emulator) Code() (ins cpu.Instruction, ok bool) {
	if emu.ip >= len(emu.words) {
		return
	}

	return emu.words[emu.ip].Instruction, true
}

// Offset returns the byte offset of the next instruction to execute.
func (emu *Emulator) Offset() int {
	if emu.ip >= len(emu.words) {
		if len(emu.words) == 0 {
			return 0
		}
		last := emu.words[len(emu.words)-1]
		return last.Offset + last.Instruction.Op.Size()
	}
	return emu.words[emu.ip].Offset
}

// Tick performs a single instruction of the emulator.
// A faulting instruction is not retired; repeated ticks report the same fault.
func (emu *Emulator) Tick() (done bool, err error) {
	if emu.ip >= len(emu.words) {
		done = true
		return
	}

	word := emu.words[emu.ip]
	err = emu.Cpu.Execute(word.Instruction)
	if err != nil {
		err = &ErrRuntime{Index: emu.ip, Offset: word.Offset, Err: err}
		return
	}

	emu.ip++

	return
}

// Run ticks until the instruction stream is exhausted or an instruction faults.
// Memory and registers keep every change made before a fault.
func (emu *Emulator) Run() (err error) {
	var done bool
	for !done {
		done, err = emu.Tick()
		if err != nil {
			emu.Logger.Warn("aborted", zap.Error(err))
			return
		}
	}

	emu.Logger.Info("executed", zap.Int("instructions", emu.Cpu.Ticks))

	return
}
