package bytecode

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Sentinel errors for per-method decode failures. Both isolate failure to the
// single method being analyzed; the batch continues.
var (
	// ErrMalformed reports an unknown opcode, an operand running past the
	// method body, or a truncated switch table.
	ErrMalformed = errors.New("malformed bytecode")

	// ErrUnresolvedTarget reports a jump target that is not a valid
	// instruction boundary within the method body.
	ErrUnresolvedTarget = errors.New("unresolved branch target")
)

// Instruction is one decoded JVM instruction. Instances are immutable once
// the stream is decoded.
type Instruction struct {
	Offset int
	Opcode byte
	Class  Class
	Size   int

	// Target is the resolved absolute branch target for conditional
	// branches and unconditional jumps, -1 otherwise.
	Target int

	// Cases holds switch case targets in table order; Default is the
	// switch default target. Both are meaningful only for switches.
	Cases   []int
	Default int
}

// Mnemonic returns the JVM spec name of the instruction's opcode.
func (in Instruction) Mnemonic() string { return Mnemonic(in.Opcode) }

// IsTerminal reports whether control never falls past this instruction.
// ret ends a jsr subroutine through a register, so it has no static
// successor and is treated like a return.
func (in Instruction) IsTerminal() bool {
	return in.Class == ClassReturn || in.Class == ClassThrow
}

// Branches reports whether the instruction transfers control to an
// explicit target.
func (in Instruction) Branches() bool {
	switch in.Class {
	case ClassCondBranch, ClassJump, ClassTableSwitch, ClassLookupSwitch:
		return true
	}
	return false
}

// ControlTargets returns every offset the instruction may jump to, in
// encoding order. Switch default comes last. Duplicates are preserved.
func (in Instruction) ControlTargets() []int {
	switch in.Class {
	case ClassCondBranch, ClassJump:
		return []int{in.Target}
	case ClassTableSwitch, ClassLookupSwitch:
		targets := make([]int, 0, len(in.Cases)+1)
		targets = append(targets, in.Cases...)
		return append(targets, in.Default)
	}
	return nil
}

// DistinctTargets returns the deduplicated control targets, preserving
// first-seen order. Two switch cases sharing an offset count once.
func (in Instruction) DistinctTargets() []int {
	all := in.ControlTargets()
	if len(all) <= 1 {
		return all
	}
	seen := make(map[int]bool, len(all))
	distinct := all[:0:0]
	for _, t := range all {
		if !seen[t] {
			seen[t] = true
			distinct = append(distinct, t)
		}
	}
	return distinct
}

// Stream is the decode result for one method body.
type Stream struct {
	Instructions []Instruction
	BodyLen      int

	index map[int]int // offset -> Instructions index
}

// At returns the instruction starting at offset.
func (s *Stream) At(offset int) (Instruction, bool) {
	i, ok := s.index[offset]
	if !ok {
		return Instruction{}, false
	}
	return s.Instructions[i], true
}

// IndexOf returns the position of the instruction at offset, or -1.
func (s *Stream) IndexOf(offset int) int {
	if i, ok := s.index[offset]; ok {
		return i
	}
	return -1
}

// IsBoundary reports whether offset starts an instruction.
func (s *Stream) IsBoundary(offset int) bool {
	_, ok := s.index[offset]
	return ok
}

// switchPad returns the number of alignment bytes between a switch opcode at
// pc and its first 32-bit operand. The operands start at the next 4-byte
// boundary relative to the start of the method body.
func switchPad(pc int) int {
	return (4 - (pc+1)%4) % 4
}

// Decode turns a raw method body into a Stream. Constant-pool operands are
// left opaque; only control-flow operands are resolved, as absolute offsets.
func Decode(body []byte) (*Stream, error) {
	s := &Stream{
		BodyLen: len(body),
		index:   make(map[int]int),
	}

	pc := 0
	for pc < len(body) {
		op := body[pc]
		in := Instruction{
			Offset:  pc,
			Opcode:  op,
			Class:   classify(op),
			Target:  -1,
			Default: -1,
		}

		size, err := instructionSize(body, pc, op)
		if err != nil {
			return nil, err
		}
		if pc+size > len(body) {
			return nil, fmt.Errorf("%w: %s at offset %d runs past body end %d",
				ErrMalformed, Mnemonic(op), pc, len(body))
		}
		in.Size = size

		switch in.Class {
		case ClassCondBranch:
			in.Target = pc + int(int16(binary.BigEndian.Uint16(body[pc+1:])))
		case ClassJump:
			if op == OpGotoW || op == OpJsrW {
				in.Target = pc + int(int32(binary.BigEndian.Uint32(body[pc+1:])))
			} else {
				in.Target = pc + int(int16(binary.BigEndian.Uint16(body[pc+1:])))
			}
		case ClassTableSwitch:
			decodeTableSwitch(body, pc, &in)
		case ClassLookupSwitch:
			decodeLookupSwitch(body, pc, &in)
		}

		s.index[pc] = len(s.Instructions)
		s.Instructions = append(s.Instructions, in)
		pc += size
	}

	return s, nil
}

// instructionSize computes the full encoded size of the instruction at pc,
// validating operand bounds for the variable-length forms.
func instructionSize(body []byte, pc int, op byte) (int, error) {
	length := opLengths[op]
	switch {
	case length == 0:
		return 0, fmt.Errorf("%w: unknown opcode 0x%02x at offset %d", ErrMalformed, op, pc)
	case length > 0:
		return length, nil
	}

	switch op {
	case opWide:
		if pc+1 >= len(body) {
			return 0, fmt.Errorf("%w: truncated wide at offset %d", ErrMalformed, pc)
		}
		if body[pc+1] == opIinc {
			return 6, nil
		}
		return 4, nil

	case OpTableswitch:
		base := pc + 1 + switchPad(pc)
		if base+12 > len(body) {
			return 0, fmt.Errorf("%w: truncated tableswitch at offset %d", ErrMalformed, pc)
		}
		low := int(int32(binary.BigEndian.Uint32(body[base+4:])))
		high := int(int32(binary.BigEndian.Uint32(body[base+8:])))
		if high < low {
			return 0, fmt.Errorf("%w: tableswitch at offset %d has high %d < low %d",
				ErrMalformed, pc, high, low)
		}
		n := high - low + 1
		size := base - pc + 12 + 4*n
		if pc+size > len(body) {
			return 0, fmt.Errorf("%w: tableswitch at offset %d truncated (%d entries)",
				ErrMalformed, pc, n)
		}
		return size, nil

	case OpLookupswitch:
		base := pc + 1 + switchPad(pc)
		if base+8 > len(body) {
			return 0, fmt.Errorf("%w: truncated lookupswitch at offset %d", ErrMalformed, pc)
		}
		npairs := int(int32(binary.BigEndian.Uint32(body[base+4:])))
		if npairs < 0 {
			return 0, fmt.Errorf("%w: lookupswitch at offset %d has negative npairs %d",
				ErrMalformed, pc, npairs)
		}
		size := base - pc + 8 + 8*npairs
		if pc+size > len(body) {
			return 0, fmt.Errorf("%w: lookupswitch at offset %d truncated (%d pairs)",
				ErrMalformed, pc, npairs)
		}
		return size, nil
	}

	return 0, fmt.Errorf("%w: unknown opcode 0x%02x at offset %d", ErrMalformed, op, pc)
}

// decodeTableSwitch fills in the case and default targets. Bounds were
// validated by instructionSize.
func decodeTableSwitch(body []byte, pc int, in *Instruction) {
	base := pc + 1 + switchPad(pc)
	in.Default = pc + int(int32(binary.BigEndian.Uint32(body[base:])))
	low := int(int32(binary.BigEndian.Uint32(body[base+4:])))
	high := int(int32(binary.BigEndian.Uint32(body[base+8:])))
	n := high - low + 1
	in.Cases = make([]int, n)
	for i := 0; i < n; i++ {
		in.Cases[i] = pc + int(int32(binary.BigEndian.Uint32(body[base+12+4*i:])))
	}
}

// decodeLookupSwitch fills in the case and default targets. Match values are
// skipped; only the jump offsets matter for control flow.
func decodeLookupSwitch(body []byte, pc int, in *Instruction) {
	base := pc + 1 + switchPad(pc)
	in.Default = pc + int(int32(binary.BigEndian.Uint32(body[base:])))
	npairs := int(int32(binary.BigEndian.Uint32(body[base+4:])))
	in.Cases = make([]int, npairs)
	for i := 0; i < npairs; i++ {
		in.Cases[i] = pc + int(int32(binary.BigEndian.Uint32(body[base+8+8*i+4:])))
	}
}
