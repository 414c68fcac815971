// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"io"
	"maps"
	"math"
	"slices"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Assembler converts YAML program records into a Program.
//
// A program is a YAML sequence of mappings:
//
//	- {mnemonic: load_const, A: 1, B: 99, C: 2}
//	- {mnemonic: write, B: 2, C: 3}
//	- {mnemonic: lt, B: 16, C: 3, D: "MEMORY_SIZE - 4096 + 1"}
//
// Operands are integers, or strings holding compile-time expressions that
// may refer to the predefined names and to any Predefine()d equates.
type Assembler struct {
	Logger *zap.Logger // If set, logs the assembled statements.

	predefine map[string]uint32 // Predefines
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value uint32) {
	if asm.predefine == nil {
		asm.predefine = map[string]uint32{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// equates returns all names visible to operand expressions.
func (asm *Assembler) equates() (pred starlark.StringDict) {
	pred = starlark.StringDict{}
	for key, value := range _cpu_defines {
		pred[key] = starlark.MakeUint(uint(value))
	}
	for key, value := range asm.predefine {
		pred[key] = starlark.MakeUint(uint(value))
	}
	return
}

// operands lists the operand fields required by each opcode.
var operands = map[Opcode][]string{
	OP_LOAD_CONST: {"b", "c"},
	OP_READ:       {"b", "c"},
	OP_WRITE:      {"b", "c"},
	OP_LT:         {"b", "c", "d"},
}

// toUint32 narrows an integer operand to 32 bits. Negative values are taken
// as two's complement.
func toUint32(v64 int64, text string) (value uint32, err error) {
	if v64 > math.MaxUint32 || v64 < math.MinInt32 {
		err = ErrParseNumber(text)
		return
	}
	value = uint32(v64)
	return
}

// evaluate does compile-time evaluation of an operand expression.
func (asm *Assembler) evaluate(expr string) (value uint32, err error) {
	thread := starlark.Thread{Name: "operand"}
	opts := syntax.FileOptions{}
	prog := "rc=" + strings.TrimSpace(expr) + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, asm.equates())
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseNumber(expr)
		return
	}
	value, err = toUint32(st_int64, expr)
	return
}

// valueOf returns the value of an operand node.
func (asm *Assembler) valueOf(node *yaml.Node) (value uint32, err error) {
	if node.Kind != yaml.ScalarNode {
		err = ErrParseNumber(node.Value)
		return
	}

	switch node.ShortTag() {
	case "!!int":
		var v64 int64
		err = node.Decode(&v64)
		if err != nil {
			err = ErrParseNumber(node.Value)
			return
		}
		value, err = toUint32(v64, node.Value)
	case "!!str":
		value, err = asm.evaluate(node.Value)
	default:
		err = ErrParseNumber(node.Value)
	}

	return
}

// parseRecord assembles a single program record.
func (asm *Assembler) parseRecord(node *yaml.Node) (st Statement, err error) {
	st.LineNo = node.Line

	if node.Kind != yaml.MappingNode {
		err = ErrRecordSyntax
		return
	}

	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	for n := 0; n+1 < len(node.Content); n += 2 {
		key := strings.ToLower(node.Content[n].Value)
		fields[key] = node.Content[n+1]
	}

	mnemonic, ok := fields["mnemonic"]
	if !ok {
		err = ErrMnemonicMissing
		return
	}
	delete(fields, "mnemonic")

	op, err := ParseMnemonic(mnemonic.Value)
	if err != nil {
		return
	}
	st.Mnemonic = mnemonic.Value

	if a, ok := fields["a"]; ok {
		delete(fields, "a")
		var value uint32
		value, err = asm.valueOf(a)
		if err != nil {
			return
		}
		if value != uint32(op) {
			err = ErrOpcodeMismatch
			return
		}
	}

	var values [3]uint32
	for n, name := range operands[op] {
		field, ok := fields[name]
		if !ok {
			err = ErrFieldMissing(strings.ToUpper(name))
			return
		}
		delete(fields, name)
		values[n], err = asm.valueOf(field)
		if err != nil {
			err = ErrField{Field: strings.ToUpper(name), Err: err}
			return
		}
	}

	if extra := slices.Sorted(maps.Keys(fields)); len(extra) > 0 {
		err = ErrFieldUnknown(strings.ToUpper(extra[0]))
		return
	}

	st.Instruction = Instruction{Op: op, B: values[0], C: values[1], D: values[2]}

	return
}

// Parse parses a YAML program into a Program containing statements.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	log := asm.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var doc yaml.Node
	err = yaml.NewDecoder(input).Decode(&doc)
	if errors.Is(err, io.EOF) {
		prog = &Program{}
		err = nil
		return
	}
	if err != nil {
		err = errors.Join(ErrProgramSyntax, err)
		return
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	prog = &Program{}

	// An empty document (`~`) is an empty program.
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return
	}

	if root.Kind != yaml.SequenceNode {
		err = ErrSyntax{LineNo: root.Line, Err: ErrProgramSyntax}
		prog = nil
		return
	}

	for _, node := range root.Content {
		var st Statement
		st, err = asm.parseRecord(node)
		if err != nil {
			err = ErrSyntax{LineNo: node.Line, Err: err}
			prog = nil
			return
		}

		log.Debug("assembled",
			zap.Int("line", st.LineNo),
			zap.String("mnemonic", st.Mnemonic),
			zap.Stringer("ins", st.Instruction))

		prog.Statements = append(prog.Statements, st)
	}

	return
}
