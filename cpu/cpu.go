package cpu

import (
	"fmt"
	"iter"
	"maps"
	"strings"

	"go.uber.org/zap"
)

const (
	REGISTER_COUNT = 128  // Number of registers in the register bank.
	MEMORY_SIZE    = 4096 // Number of words of memory.
)

var _cpu_defines = map[string]uint32{
	"REGISTER_COUNT": REGISTER_COUNT,
	"MEMORY_SIZE":    MEMORY_SIZE,
	"LOAD_CONST":     uint32(OP_LOAD_CONST),
	"READ":           uint32(OP_READ),
	"WRITE":          uint32(OP_WRITE),
	"LT":             uint32(OP_LT),
}

// Cell is a single memory word and its address.
type Cell struct {
	Addr  uint32
	Value uint32
}

// Cpu is the execution context of a single virtual machine.
type Cpu struct {
	Logger *zap.Logger // Instruction trace logger; nil disables tracing.

	Register [REGISTER_COUNT]uint32 // Register bank.
	Memory   [MEMORY_SIZE]uint32    // Data memory.

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a new zeroed CPU.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Logger: zap.NewNop(),
	}

	return
}

// Defines returns the predefined assembler names for the CPU.
func (cpu *Cpu) Defines() iter.Seq2[string, uint32] {
	return maps.All(_cpu_defines)
}

// Reset clears the registers, memory and tick counter.
func (cpu *Cpu) Reset() {
	clear(cpu.Register[:])
	clear(cpu.Memory[:])
	cpu.Ticks = 0
}

// String returns the non-zero registers as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ticks: %d\n", cpu.Ticks)
	for n, val := range cpu.Register {
		if val == 0 {
			continue
		}
		fmt.Fprintf(&sb, "% 5s: %04X_%04X\n", fmt.Sprintf("r%d", n), val>>16, val&0xffff)
	}
	text = sb.String()
	return
}

func (cpu *Cpu) logger() *zap.Logger {
	if cpu.Logger == nil {
		return zap.NewNop()
	}
	return cpu.Logger
}

// getRegister reads a register.
func (cpu *Cpu) getRegister(index uint32) (value uint32, err error) {
	if index >= REGISTER_COUNT {
		err = ErrBounds{Space: SPACE_REGISTER, Index: index}
		return
	}
	value = cpu.Register[index]
	return
}

// checkRegister verifies a register index is writable.
func (cpu *Cpu) checkRegister(index uint32) (err error) {
	if index >= REGISTER_COUNT {
		err = ErrBounds{Space: SPACE_REGISTER, Index: index}
	}
	return
}

// getMemory reads a memory word.
func (cpu *Cpu) getMemory(addr uint32) (value uint32, err error) {
	if addr >= MEMORY_SIZE {
		err = ErrBounds{Space: SPACE_MEMORY, Index: addr}
		return
	}
	value = cpu.Memory[addr]
	return
}

// checkMemory verifies a memory address is writable.
func (cpu *Cpu) checkMemory(addr uint32) (err error) {
	if addr >= MEMORY_SIZE {
		err = ErrBounds{Space: SPACE_MEMORY, Index: addr}
	}
	return
}

// Execute executes a single decoded instruction.
//
// All operands are read and checked before the destination is written, so an
// instruction that fails leaves the CPU state unchanged.
func (cpu *Cpu) Execute(ins Instruction) (err error) {
	log := cpu.logger()
	if ce := log.Check(zap.DebugLevel, "execute"); ce != nil {
		ce.Write(zap.Int("tick", cpu.Ticks), zap.Stringer("ins", ins))
	}

	switch ins.Op {
	case OP_LOAD_CONST:
		err = cpu.checkRegister(ins.C)
		if err != nil {
			return
		}
		cpu.Register[ins.C] = ins.B
	case OP_READ:
		var value uint32
		value, err = cpu.getMemory(ins.B)
		if err != nil {
			return
		}
		err = cpu.checkRegister(ins.C)
		if err != nil {
			return
		}
		cpu.Register[ins.C] = value
	case OP_WRITE:
		var value, addr uint32
		value, err = cpu.getRegister(ins.B)
		if err != nil {
			return
		}
		addr, err = cpu.getRegister(ins.C)
		if err != nil {
			return
		}
		err = cpu.checkMemory(addr)
		if err != nil {
			return
		}
		cpu.Memory[addr] = value
	case OP_LT:
		var base, op1, op2 uint32
		base, err = cpu.getRegister(ins.C)
		if err != nil {
			return
		}
		// Unsigned, wraps modulo 2^32.
		addr := base + ins.D
		op1, err = cpu.getMemory(addr)
		if err != nil {
			return
		}
		op2, err = cpu.getMemory(ins.B)
		if err != nil {
			return
		}
		var result uint32
		if op1 < op2 {
			result = 1
		}
		cpu.Memory[addr] = result
	default:
		err = ErrOpcode(ins.Op)
		return
	}

	cpu.Ticks++

	return
}

// Run executes the instructions in order, stopping at the first failure.
// On failure, index is the position of the faulting instruction.
func (cpu *Cpu) Run(insts iter.Seq2[int, Instruction]) (index int, err error) {
	for n, ins := range insts {
		index = n
		err = cpu.Execute(ins)
		if err != nil {
			cpu.logger().Warn("execution aborted",
				zap.Int("index", n),
				zap.Stringer("ins", ins),
				zap.Error(err))
			return
		}
	}

	return
}

// clamp limits a snapshot bound to the memory range.
func clamp(bound int) uint32 {
	switch {
	case bound < 0:
		return 0
	case bound > MEMORY_SIZE:
		return MEMORY_SIZE
	}
	return uint32(bound)
}

// Cells iterates over the memory words in [start, end), clamped to memory.
func (cpu *Cpu) Cells(start, end int) iter.Seq[Cell] {
	lo, hi := clamp(start), clamp(end)
	return func(yield func(cell Cell) bool) {
		for addr := lo; addr < hi; addr++ {
			if !yield(Cell{Addr: addr, Value: cpu.Memory[addr]}) {
				return
			}
		}
	}
}

// Snapshot copies the memory words in [start, end), clamped to memory.
// An empty or inverted range returns no cells.
func (cpu *Cpu) Snapshot(start, end int) (cells []Cell) {
	for cell := range cpu.Cells(start, end) {
		cells = append(cells, cell)
	}
	return
}
