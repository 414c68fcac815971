// Package cpu implements the instruction set, assembler and executor for the
// UVM virtual machine.
//
// The machine has a bank of 128 unsigned 32-bit registers, 4096 unsigned
// 32-bit words of memory, and four instructions: LOAD_CONST, READ, WRITE and
// LT. There is no control flow; a program runs until its instruction stream
// is exhausted.
//
// Instructions are encoded as 3 or 4 byte little-endian words whose length is
// selected by the opcode nibble in the low four bits of the first byte. The
// assembler reads programs written as YAML records and supports compile-time
// expressions in operand fields.
package cpu
