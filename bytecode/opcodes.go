package bytecode

import "fmt"

type Opcode uint8

const (
	OpNop             Opcode = 0x00
	OpAconstNull      Opcode = 0x01
	OpIconstM1        Opcode = 0x02
	OpIconst0         Opcode = 0x03
	OpIconst1         Opcode = 0x04
	OpIconst2         Opcode = 0x05
	OpIconst3         Opcode = 0x06
	OpIconst4         Opcode = 0x07
	OpIconst5         Opcode = 0x08
	OpLconst0         Opcode = 0x09
	OpLconst1         Opcode = 0x0a
	OpFconst0         Opcode = 0x0b
	OpFconst1         Opcode = 0x0c
	OpFconst2         Opcode = 0x0d
	OpDconst0         Opcode = 0x0e
	OpDconst1         Opcode = 0x0f
	OpBipush          Opcode = 0x10
	OpSipush          Opcode = 0x11
	OpLdc             Opcode = 0x12
	OpLdcW            Opcode = 0x13
	OpLdc2W           Opcode = 0x14
	OpIload           Opcode = 0x15
	OpLload           Opcode = 0x16
	OpFload           Opcode = 0x17
	OpDload           Opcode = 0x18
	OpAload           Opcode = 0x19
	OpIload0          Opcode = 0x1a
	OpIload1          Opcode = 0x1b
	OpIload2          Opcode = 0x1c
	OpIload3          Opcode = 0x1d
	OpLload0          Opcode = 0x1e
	OpLload1          Opcode = 0x1f
	OpLload2          Opcode = 0x20
	OpLload3          Opcode = 0x21
	OpFload0          Opcode = 0x22
	OpFload1          Opcode = 0x23
	OpFload2          Opcode = 0x24
	OpFload3          Opcode = 0x25
	OpDload0          Opcode = 0x26
	OpDload1          Opcode = 0x27
	OpDload2          Opcode = 0x28
	OpDload3          Opcode = 0x29
	OpAload0          Opcode = 0x2a
	OpAload1          Opcode = 0x2b
	OpAload2          Opcode = 0x2c
	OpAload3          Opcode = 0x2d
	OpIaload          Opcode = 0x2e
	OpLaload          Opcode = 0x2f
	OpFaload          Opcode = 0x30
	OpDaload          Opcode = 0x31
	OpAaload          Opcode = 0x32
	OpBaload          Opcode = 0x33
	OpCaload          Opcode = 0x34
	OpSaload          Opcode = 0x35
	OpIstore          Opcode = 0x36
	OpLstore          Opcode = 0x37
	OpFstore          Opcode = 0x38
	OpDstore          Opcode = 0x39
	OpAstore          Opcode = 0x3a
	OpIstore0         Opcode = 0x3b
	OpIstore1         Opcode = 0x3c
	OpIstore2         Opcode = 0x3d
	OpIstore3         Opcode = 0x3e
	OpLstore0         Opcode = 0x3f
	OpLstore1         Opcode = 0x40
	OpLstore2         Opcode = 0x41
	OpLstore3         Opcode = 0x42
	OpFstore0         Opcode = 0x43
	OpFstore1         Opcode = 0x44
	OpFstore2         Opcode = 0x45
	OpFstore3         Opcode = 0x46
	OpDstore0         Opcode = 0x47
	OpDstore1         Opcode = 0x48
	OpDstore2         Opcode = 0x49
	OpDstore3         Opcode = 0x4a
	OpAstore0         Opcode = 0x4b
	OpAstore1         Opcode = 0x4c
	OpAstore2         Opcode = 0x4d
	OpAstore3         Opcode = 0x4e
	OpIastore         Opcode = 0x4f
	OpLastore         Opcode = 0x50
	OpFastore         Opcode = 0x51
	OpDastore         Opcode = 0x52
	OpAastore         Opcode = 0x53
	OpBastore         Opcode = 0x54
	OpCastore         Opcode = 0x55
	OpSastore         Opcode = 0x56
	OpPop             Opcode = 0x57
	OpPop2            Opcode = 0x58
	OpDup             Opcode = 0x59
	OpDupX1           Opcode = 0x5a
	OpDupX2           Opcode = 0x5b
	OpDup2            Opcode = 0x5c
	OpDup2X1          Opcode = 0x5d
	OpDup2X2          Opcode = 0x5e
	OpSwap            Opcode = 0x5f
	OpIadd            Opcode = 0x60
	OpLadd            Opcode = 0x61
	OpFadd            Opcode = 0x62
	OpDadd            Opcode = 0x63
	OpIsub            Opcode = 0x64
	OpLsub            Opcode = 0x65
	OpFsub            Opcode = 0x66
	OpDsub            Opcode = 0x67
	OpImul            Opcode = 0x68
	OpLmul            Opcode = 0x69
	OpFmul            Opcode = 0x6a
	OpDmul            Opcode = 0x6b
	OpIdiv            Opcode = 0x6c
	OpLdiv            Opcode = 0x6d
	OpFdiv            Opcode = 0x6e
	OpDdiv            Opcode = 0x6f
	OpIrem            Opcode = 0x70
	OpLrem            Opcode = 0x71
	OpFrem            Opcode = 0x72
	OpDrem            Opcode = 0x73
	OpIneg            Opcode = 0x74
	OpLneg            Opcode = 0x75
	OpFneg            Opcode = 0x76
	OpDneg            Opcode = 0x77
	OpIshl            Opcode = 0x78
	OpLshl            Opcode = 0x79
	OpIshr            Opcode = 0x7a
	OpLshr            Opcode = 0x7b
	OpIushr           Opcode = 0x7c
	OpLushr           Opcode = 0x7d
	OpIand            Opcode = 0x7e
	OpLand            Opcode = 0x7f
	OpIor             Opcode = 0x80
	OpLor             Opcode = 0x81
	OpIxor            Opcode = 0x82
	OpLxor            Opcode = 0x83
	OpIinc            Opcode = 0x84
	OpI2l             Opcode = 0x85
	OpI2f             Opcode = 0x86
	OpI2d             Opcode = 0x87
	OpL2i             Opcode = 0x88
	OpL2f             Opcode = 0x89
	OpL2d             Opcode = 0x8a
	OpF2i             Opcode = 0x8b
	OpF2l             Opcode = 0x8c
	OpF2d             Opcode = 0x8d
	OpD2i             Opcode = 0x8e
	OpD2l             Opcode = 0x8f
	OpD2f             Opcode = 0x90
	OpI2b             Opcode = 0x91
	OpI2c             Opcode = 0x92
	OpI2s             Opcode = 0x93
	OpLcmp            Opcode = 0x94
	OpFcmpl           Opcode = 0x95
	OpFcmpg           Opcode = 0x96
	OpDcmpl           Opcode = 0x97
	OpDcmpg           Opcode = 0x98
	OpIfeq            Opcode = 0x99
	OpIfne            Opcode = 0x9a
	OpIflt            Opcode = 0x9b
	OpIfge            Opcode = 0x9c
	OpIfgt            Opcode = 0x9d
	OpIfle            Opcode = 0x9e
	OpIfIcmpeq        Opcode = 0x9f
	OpIfIcmpne        Opcode = 0xa0
	OpIfIcmplt        Opcode = 0xa1
	OpIfIcmpge        Opcode = 0xa2
	OpIfIcmpgt        Opcode = 0xa3
	OpIfIcmple        Opcode = 0xa4
	OpIfAcmpeq        Opcode = 0xa5
	OpIfAcmpne        Opcode = 0xa6
	OpGoto            Opcode = 0xa7
	OpJsr             Opcode = 0xa8
	OpRet             Opcode = 0xa9
	OpTableswitch     Opcode = 0xaa
	OpLookupswitch    Opcode = 0xab
	OpIreturn         Opcode = 0xac
	OpLreturn         Opcode = 0xad
	OpFreturn         Opcode = 0xae
	OpDreturn         Opcode = 0xaf
	OpAreturn         Opcode = 0xb0
	OpReturn          Opcode = 0xb1
	OpGetstatic       Opcode = 0xb2
	OpPutstatic       Opcode = 0xb3
	OpGetfield        Opcode = 0xb4
	OpPutfield        Opcode = 0xb5
	OpInvokevirtual   Opcode = 0xb6
	OpInvokespecial   Opcode = 0xb7
	OpInvokestatic    Opcode = 0xb8
	OpInvokeinterface Opcode = 0xb9
	OpInvokedynamic   Opcode = 0xba
	OpNew             Opcode = 0xbb
	OpNewarray        Opcode = 0xbc
	OpAnewarray       Opcode = 0xbd
	OpArraylength     Opcode = 0xbe
	OpAthrow          Opcode = 0xbf
	OpCheckcast       Opcode = 0xc0
	OpInstanceof      Opcode = 0xc1
	OpMonitorenter    Opcode = 0xc2
	OpMonitorexit     Opcode = 0xc3
	OpWide            Opcode = 0xc4
	OpMultianewarray  Opcode = 0xc5
	OpIfnull          Opcode = 0xc6
	OpIfnonnull       Opcode = 0xc7
	OpGotoW           Opcode = 0xc8
	OpJsrW            Opcode = 0xc9
)

type operandFormat uint8

const (
	formatInvalid operandFormat = iota
	formatNone
	formatS1
	formatU1
	formatS2
	formatU2
	formatS4
	formatIinc
	formatMultiANewArray
	formatInvokeInterface
	formatInvokeDynamic
	formatTableSwitch
	formatLookupSwitch
	formatWide
)

type opcodeInfo struct {
	name   string
	format operandFormat
}

// Opcodes 0xca through 0xff are reserved or unassigned and decode as errors.
var opcodeTable = [256]opcodeInfo{
	OpNop:             {"nop", formatNone},
	OpAconstNull:      {"aconst_null", formatNone},
	OpIconstM1:        {"iconst_m1", formatNone},
	OpIconst0:         {"iconst_0", formatNone},
	OpIconst1:         {"iconst_1", formatNone},
	OpIconst2:         {"iconst_2", formatNone},
	OpIconst3:         {"iconst_3", formatNone},
	OpIconst4:         {"iconst_4", formatNone},
	OpIconst5:         {"iconst_5", formatNone},
	OpLconst0:         {"lconst_0", formatNone},
	OpLconst1:         {"lconst_1", formatNone},
	OpFconst0:         {"fconst_0", formatNone},
	OpFconst1:         {"fconst_1", formatNone},
	OpFconst2:         {"fconst_2", formatNone},
	OpDconst0:         {"dconst_0", formatNone},
	OpDconst1:         {"dconst_1", formatNone},
	OpBipush:          {"bipush", formatS1},
	OpSipush:          {"sipush", formatS2},
	OpLdc:             {"ldc", formatU1},
	OpLdcW:            {"ldc_w", formatU2},
	OpLdc2W:           {"ldc2_w", formatU2},
	OpIload:           {"iload", formatU1},
	OpLload:           {"lload", formatU1},
	OpFload:           {"fload", formatU1},
	OpDload:           {"dload", formatU1},
	OpAload:           {"aload", formatU1},
	OpIload0:          {"iload_0", formatNone},
	OpIload1:          {"iload_1", formatNone},
	OpIload2:          {"iload_2", formatNone},
	OpIload3:          {"iload_3", formatNone},
	OpLload0:          {"lload_0", formatNone},
	OpLload1:          {"lload_1", formatNone},
	OpLload2:          {"lload_2", formatNone},
	OpLload3:          {"lload_3", formatNone},
	OpFload0:          {"fload_0", formatNone},
	OpFload1:          {"fload_1", formatNone},
	OpFload2:          {"fload_2", formatNone},
	OpFload3:          {"fload_3", formatNone},
	OpDload0:          {"dload_0", formatNone},
	OpDload1:          {"dload_1", formatNone},
	OpDload2:          {"dload_2", formatNone},
	OpDload3:          {"dload_3", formatNone},
	OpAload0:          {"aload_0", formatNone},
	OpAload1:          {"aload_1", formatNone},
	OpAload2:          {"aload_2", formatNone},
	OpAload3:          {"aload_3", formatNone},
	OpIaload:          {"iaload", formatNone},
	OpLaload:          {"laload", formatNone},
	OpFaload:          {"faload", formatNone},
	OpDaload:          {"daload", formatNone},
	OpAaload:          {"aaload", formatNone},
	OpBaload:          {"baload", formatNone},
	OpCaload:          {"caload", formatNone},
	OpSaload:          {"saload", formatNone},
	OpIstore:          {"istore", formatU1},
	OpLstore:          {"lstore", formatU1},
	OpFstore:          {"fstore", formatU1},
	OpDstore:          {"dstore", formatU1},
	OpAstore:          {"astore", formatU1},
	OpIstore0:         {"istore_0", formatNone},
	OpIstore1:         {"istore_1", formatNone},
	OpIstore2:         {"istore_2", formatNone},
	OpIstore3:         {"istore_3", formatNone},
	OpLstore0:         {"lstore_0", formatNone},
	OpLstore1:         {"lstore_1", formatNone},
	OpLstore2:         {"lstore_2", formatNone},
	OpLstore3:         {"lstore_3", formatNone},
	OpFstore0:         {"fstore_0", formatNone},
	OpFstore1:         {"fstore_1", formatNone},
	OpFstore2:         {"fstore_2", formatNone},
	OpFstore3:         {"fstore_3", formatNone},
	OpDstore0:         {"dstore_0", formatNone},
	OpDstore1:         {"dstore_1", formatNone},
	OpDstore2:         {"dstore_2", formatNone},
	OpDstore3:         {"dstore_3", formatNone},
	OpAstore0:         {"astore_0", formatNone},
	OpAstore1:         {"astore_1", formatNone},
	OpAstore2:         {"astore_2", formatNone},
	OpAstore3:         {"astore_3", formatNone},
	OpIastore:         {"iastore", formatNone},
	OpLastore:         {"lastore", formatNone},
	OpFastore:         {"fastore", formatNone},
	OpDastore:         {"dastore", formatNone},
	OpAastore:         {"aastore", formatNone},
	OpBastore:         {"bastore", formatNone},
	OpCastore:         {"castore", formatNone},
	OpSastore:         {"sastore", formatNone},
	OpPop:             {"pop", formatNone},
	OpPop2:            {"pop2", formatNone},
	OpDup:             {"dup", formatNone},
	OpDupX1:           {"dup_x1", formatNone},
	OpDupX2:           {"dup_x2", formatNone},
	OpDup2:            {"dup2", formatNone},
	OpDup2X1:          {"dup2_x1", formatNone},
	OpDup2X2:          {"dup2_x2", formatNone},
	OpSwap:            {"swap", formatNone},
	OpIadd:            {"iadd", formatNone},
	OpLadd:            {"ladd", formatNone},
	OpFadd:            {"fadd", formatNone},
	OpDadd:            {"dadd", formatNone},
	OpIsub:            {"isub", formatNone},
	OpLsub:            {"lsub", formatNone},
	OpFsub:            {"fsub", formatNone},
	OpDsub:            {"dsub", formatNone},
	OpImul:            {"imul", formatNone},
	OpLmul:            {"lmul", formatNone},
	OpFmul:            {"fmul", formatNone},
	OpDmul:            {"dmul", formatNone},
	OpIdiv:            {"idiv", formatNone},
	OpLdiv:            {"ldiv", formatNone},
	OpFdiv:            {"fdiv", formatNone},
	OpDdiv:            {"ddiv", formatNone},
	OpIrem:            {"irem", formatNone},
	OpLrem:            {"lrem", formatNone},
	OpFrem:            {"frem", formatNone},
	OpDrem:            {"drem", formatNone},
	OpIneg:            {"ineg", formatNone},
	OpLneg:            {"lneg", formatNone},
	OpFneg:            {"fneg", formatNone},
	OpDneg:            {"dneg", formatNone},
	OpIshl:            {"ishl", formatNone},
	OpLshl:            {"lshl", formatNone},
	OpIshr:            {"ishr", formatNone},
	OpLshr:            {"lshr", formatNone},
	OpIushr:           {"iushr", formatNone},
	OpLushr:           {"lushr", formatNone},
	OpIand:            {"iand", formatNone},
	OpLand:            {"land", formatNone},
	OpIor:             {"ior", formatNone},
	OpLor:             {"lor", formatNone},
	OpIxor:            {"ixor", formatNone},
	OpLxor:            {"lxor", formatNone},
	OpIinc:            {"iinc", formatIinc},
	OpI2l:             {"i2l", formatNone},
	OpI2f:             {"i2f", formatNone},
	OpI2d:             {"i2d", formatNone},
	OpL2i:             {"l2i", formatNone},
	OpL2f:             {"l2f", formatNone},
	OpL2d:             {"l2d", formatNone},
	OpF2i:             {"f2i", formatNone},
	OpF2l:             {"f2l", formatNone},
	OpF2d:             {"f2d", formatNone},
	OpD2i:             {"d2i", formatNone},
	OpD2l:             {"d2l", formatNone},
	OpD2f:             {"d2f", formatNone},
	OpI2b:             {"i2b", formatNone},
	OpI2c:             {"i2c", formatNone},
	OpI2s:             {"i2s", formatNone},
	OpLcmp:            {"lcmp", formatNone},
	OpFcmpl:           {"fcmpl", formatNone},
	OpFcmpg:           {"fcmpg", formatNone},
	OpDcmpl:           {"dcmpl", formatNone},
	OpDcmpg:           {"dcmpg", formatNone},
	OpIfeq:            {"ifeq", formatS2},
	OpIfne:            {"ifne", formatS2},
	OpIflt:            {"iflt", formatS2},
	OpIfge:            {"ifge", formatS2},
	OpIfgt:            {"ifgt", formatS2},
	OpIfle:            {"ifle", formatS2},
	OpIfIcmpeq:        {"if_icmpeq", formatS2},
	OpIfIcmpne:        {"if_icmpne", formatS2},
	OpIfIcmplt:        {"if_icmplt", formatS2},
	OpIfIcmpge:        {"if_icmpge", formatS2},
	OpIfIcmpgt:        {"if_icmpgt", formatS2},
	OpIfIcmple:        {"if_icmple", formatS2},
	OpIfAcmpeq:        {"if_acmpeq", formatS2},
	OpIfAcmpne:        {"if_acmpne", formatS2},
	OpGoto:            {"goto", formatS2},
	OpJsr:             {"jsr", formatS2},
	OpRet:             {"ret", formatU1},
	OpTableswitch:     {"tableswitch", formatTableSwitch},
	OpLookupswitch:    {"lookupswitch", formatLookupSwitch},
	OpIreturn:         {"ireturn", formatNone},
	OpLreturn:         {"lreturn", formatNone},
	OpFreturn:         {"freturn", formatNone},
	OpDreturn:         {"dreturn", formatNone},
	OpAreturn:         {"areturn", formatNone},
	OpReturn:          {"return", formatNone},
	OpGetstatic:       {"getstatic", formatU2},
	OpPutstatic:       {"putstatic", formatU2},
	OpGetfield:        {"getfield", formatU2},
	OpPutfield:        {"putfield", formatU2},
	OpInvokevirtual:   {"invokevirtual", formatU2},
	OpInvokespecial:   {"invokespecial", formatU2},
	OpInvokestatic:    {"invokestatic", formatU2},
	OpInvokeinterface: {"invokeinterface", formatInvokeInterface},
	OpInvokedynamic:   {"invokedynamic", formatInvokeDynamic},
	OpNew:             {"new", formatU2},
	OpNewarray:        {"newarray", formatU1},
	OpAnewarray:       {"anewarray", formatU2},
	OpArraylength:     {"arraylength", formatNone},
	OpAthrow:          {"athrow", formatNone},
	OpCheckcast:       {"checkcast", formatU2},
	OpInstanceof:      {"instanceof", formatU2},
	OpMonitorenter:    {"monitorenter", formatNone},
	OpMonitorexit:     {"monitorexit", formatNone},
	OpWide:            {"wide", formatWide},
	OpMultianewarray:  {"multianewarray", formatMultiANewArray},
	OpIfnull:          {"ifnull", formatS2},
	OpIfnonnull:       {"ifnonnull", formatS2},
	OpGotoW:           {"goto_w", formatS4},
	OpJsrW:            {"jsr_w", formatS4},
}

func (op Opcode) String() string {
	if name := opcodeTable[op].name; name != "" {
		return name
	}
	return fmt.Sprintf("opcode(0x%02x)", uint8(op))
}

// Valid reports whether op is an assigned instruction opcode.
func (op Opcode) Valid() bool {
	return opcodeTable[op].format != formatInvalid
}

func (op Opcode) format() operandFormat {
	return opcodeTable[op].format
}

// wideFormat reports whether op may follow a wide prefix, and whether it
// carries an increment (iinc) in addition to the index.
func wideFormat(op Opcode) (ok, increment bool) {
	switch op {
	case OpIload, OpLload, OpFload, OpDload, OpAload,
		OpIstore, OpLstore, OpFstore, OpDstore, OpAstore, OpRet:
		return true, false
	case OpIinc:
		return true, true
	}
	return false, false
}

// ReferencesPool reports whether op's first operand is a constant pool
// index.
func (op Opcode) ReferencesPool() bool {
	switch op {
	case OpLdc, OpLdcW, OpLdc2W,
		OpGetstatic, OpPutstatic, OpGetfield, OpPutfield,
		OpInvokevirtual, OpInvokespecial, OpInvokestatic, OpInvokeinterface, OpInvokedynamic,
		OpNew, OpAnewarray, OpCheckcast, OpInstanceof, OpMultianewarray:
		return true
	}
	return false
}

// IsBranch reports whether op's operand is an offset relative to the
// instruction itself.
func (op Opcode) IsBranch() bool {
	return (op >= OpIfeq && op <= OpJsr) || op == OpIfnull || op == OpIfnonnull || op == OpGotoW || op == OpJsrW
}
