// Package bytecode decodes JVM method bodies into typed instruction streams.
package bytecode

// Opcode values referenced by name. Only the opcodes the decoder treats
// specially are named; everything else is handled through the length table.
const (
	opNop          = 0x00
	OpIand         = 0x7e // 126
	OpLand         = 0x7f // 127
	OpIor          = 0x80 // 128
	OpLor          = 0x81 // 129
	opWide         = 0xc4 // 196
	opIinc         = 0x84 // 132
	OpIfeq         = 0x99 // 153
	OpIfAcmpne     = 0xa6 // 166
	OpGoto         = 0xa7 // 167
	OpJsr          = 0xa8 // 168
	OpRet          = 0xa9 // 169
	OpTableswitch  = 0xaa // 170
	OpLookupswitch = 0xab // 171
	OpIreturn      = 0xac // 172
	OpReturn       = 0xb1 // 177
	OpAthrow       = 0xbf // 191
	OpIfnull       = 0xc6 // 198
	OpIfnonnull    = 0xc7 // 199
	OpGotoW        = 0xc8 // 200
	OpJsrW         = 0xc9 // 201
)

// Class partitions opcodes by their effect on control flow.
type Class uint8

const (
	// ClassOther covers straight-line instructions.
	ClassOther Class = iota
	// ClassCondBranch is a two-way conditional branch (ifeq..if_acmpne, ifnull, ifnonnull).
	ClassCondBranch
	// ClassJump is an unconditional jump (goto, jsr, goto_w, jsr_w).
	ClassJump
	// ClassTableSwitch is the tableswitch instruction.
	ClassTableSwitch
	// ClassLookupSwitch is the lookupswitch instruction.
	ClassLookupSwitch
	// ClassReturn covers ireturn..return and ret.
	ClassReturn
	// ClassThrow is athrow.
	ClassThrow
	// ClassBoolOp covers the integer boolean combinators (iand, land, ior, lor).
	ClassBoolOp
)

func (c Class) String() string {
	switch c {
	case ClassCondBranch:
		return "conditional-branch"
	case ClassJump:
		return "unconditional-jump"
	case ClassTableSwitch:
		return "table-switch"
	case ClassLookupSwitch:
		return "lookup-switch"
	case ClassReturn:
		return "return"
	case ClassThrow:
		return "throw"
	case ClassBoolOp:
		return "boolean-operator"
	default:
		return "other"
	}
}

const maxOpcode = 0xc9 // jsr_w, last defined opcode

// variableLength marks tableswitch, lookupswitch and wide in the length table.
const variableLength = -1

// opLengths holds the total encoded length of each opcode including the
// opcode byte itself. Zero means the opcode is undefined.
var opLengths [256]int

func init() {
	// Everything defined defaults to one byte; exceptions follow.
	for op := 0; op <= maxOpcode; op++ {
		opLengths[op] = 1
	}

	opLengths[0x10] = 2 // bipush
	opLengths[0x11] = 3 // sipush
	opLengths[0x12] = 2 // ldc
	opLengths[0x13] = 3 // ldc_w
	opLengths[0x14] = 3 // ldc2_w
	for op := 0x15; op <= 0x19; op++ {
		opLengths[op] = 2 // iload..aload
	}
	for op := 0x36; op <= 0x3a; op++ {
		opLengths[op] = 2 // istore..astore
	}
	opLengths[opIinc] = 3
	for op := OpIfeq; op <= OpJsr; op++ {
		opLengths[op] = 3 // ifeq..if_acmpne, goto, jsr
	}
	opLengths[OpRet] = 2
	opLengths[OpTableswitch] = variableLength
	opLengths[OpLookupswitch] = variableLength
	for op := 0xb2; op <= 0xb8; op++ {
		opLengths[op] = 3 // getstatic..invokestatic
	}
	opLengths[0xb9] = 5 // invokeinterface
	opLengths[0xba] = 5 // invokedynamic
	opLengths[0xbb] = 3 // new
	opLengths[0xbc] = 2 // newarray
	opLengths[0xbd] = 3 // anewarray
	opLengths[0xc0] = 3 // checkcast
	opLengths[0xc1] = 3 // instanceof
	opLengths[opWide] = variableLength
	opLengths[0xc5] = 4 // multianewarray
	opLengths[OpIfnull] = 3
	opLengths[OpIfnonnull] = 3
	opLengths[OpGotoW] = 5
	opLengths[OpJsrW] = 5
}

// classify maps an opcode to its control-flow class.
func classify(op byte) Class {
	switch {
	case op >= OpIfeq && op <= OpIfAcmpne, op == OpIfnull, op == OpIfnonnull:
		return ClassCondBranch
	case op == OpGoto, op == OpJsr, op == OpGotoW, op == OpJsrW:
		return ClassJump
	case op == OpTableswitch:
		return ClassTableSwitch
	case op == OpLookupswitch:
		return ClassLookupSwitch
	case op >= OpIreturn && op <= OpReturn, op == OpRet:
		return ClassReturn
	case op == OpAthrow:
		return ClassThrow
	case op >= OpIand && op <= OpLor:
		return ClassBoolOp
	default:
		return ClassOther
	}
}

// mnemonics holds the JVM specification names for all defined opcodes,
// used for diagnostics and CFG dumps.
var mnemonics = [...]string{
	"nop", "aconst_null", "iconst_m1", "iconst_0", "iconst_1", "iconst_2",
	"iconst_3", "iconst_4", "iconst_5", "lconst_0", "lconst_1", "fconst_0",
	"fconst_1", "fconst_2", "dconst_0", "dconst_1", "bipush", "sipush",
	"ldc", "ldc_w", "ldc2_w", "iload", "lload", "fload", "dload", "aload",
	"iload_0", "iload_1", "iload_2", "iload_3", "lload_0", "lload_1",
	"lload_2", "lload_3", "fload_0", "fload_1", "fload_2", "fload_3",
	"dload_0", "dload_1", "dload_2", "dload_3", "aload_0", "aload_1",
	"aload_2", "aload_3", "iaload", "laload", "faload", "daload", "aaload",
	"baload", "caload", "saload", "istore", "lstore", "fstore", "dstore",
	"astore", "istore_0", "istore_1", "istore_2", "istore_3", "lstore_0",
	"lstore_1", "lstore_2", "lstore_3", "fstore_0", "fstore_1", "fstore_2",
	"fstore_3", "dstore_0", "dstore_1", "dstore_2", "dstore_3", "astore_0",
	"astore_1", "astore_2", "astore_3", "iastore", "lastore", "fastore",
	"dastore", "aastore", "bastore", "castore", "sastore", "pop", "pop2",
	"dup", "dup_x1", "dup_x2", "dup2", "dup2_x1", "dup2_x2", "swap",
	"iadd", "ladd", "fadd", "dadd", "isub", "lsub", "fsub", "dsub", "imul",
	"lmul", "fmul", "dmul", "idiv", "ldiv", "fdiv", "ddiv", "irem", "lrem",
	"frem", "drem", "ineg", "lneg", "fneg", "dneg", "ishl", "lshl", "ishr",
	"lshr", "iushr", "lushr", "iand", "land", "ior", "lor", "ixor", "lxor",
	"iinc", "i2l", "i2f", "i2d", "l2i", "l2f", "l2d", "f2i", "f2l", "f2d",
	"d2i", "d2l", "d2f", "i2b", "i2c", "i2s", "lcmp", "fcmpl", "fcmpg",
	"dcmpl", "dcmpg", "ifeq", "ifne", "iflt", "ifge", "ifgt", "ifle",
	"if_icmpeq", "if_icmpne", "if_icmplt", "if_icmpge", "if_icmpgt",
	"if_icmple", "if_acmpeq", "if_acmpne", "goto", "jsr", "ret",
	"tableswitch", "lookupswitch", "ireturn", "lreturn", "freturn",
	"dreturn", "areturn", "return", "getstatic", "putstatic", "getfield",
	"putfield", "invokevirtual", "invokespecial", "invokestatic",
	"invokeinterface", "invokedynamic", "new", "newarray", "anewarray",
	"arraylength", "athrow", "checkcast", "instanceof", "monitorenter",
	"monitorexit", "wide", "multianewarray", "ifnull", "ifnonnull",
	"goto_w", "jsr_w",
}

// Mnemonic returns the JVM name of an opcode, or "unknown" for undefined values.
func Mnemonic(op byte) string {
	if int(op) < len(mnemonics) {
		return mnemonics[op]
	}
	return "unknown"
}
