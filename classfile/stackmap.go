package classfile

import (
	"fmt"

	"github.com/dhamidi/classkit/bytestream"
	"golang.org/x/crypto/cryptobyte"
)

type VerificationTag uint8

const (
	VerificationTop VerificationTag = iota
	VerificationInteger
	VerificationFloat
	VerificationDouble
	VerificationLong
	VerificationNull
	VerificationUninitializedThis
	VerificationObject
	VerificationUninitialized
)

var verificationTagNames = [...]string{
	"top", "int", "float", "double", "long", "null", "uninitializedThis", "object", "uninitialized",
}

func (t VerificationTag) String() string {
	if int(t) < len(verificationTagNames) {
		return verificationTagNames[t]
	}
	return fmt.Sprintf("verification(%d)", uint8(t))
}

// VerificationTypeInfo is a verifier type. Index is the Class entry for
// VerificationObject and the offset of the new instruction for
// VerificationUninitialized; it is unused otherwise.
type VerificationTypeInfo struct {
	Tag   VerificationTag
	Index uint16
}

// StackMapFrame is one delta-encoded verifier frame. The frame type byte
// selects both the variant and, for the short forms, the offset delta.
type StackMapFrame interface {
	FrameType() uint8
	Delta() uint16
	stackMapFrame()
}

// SameFrame has frame types 0-63; the type is the delta.
type SameFrame struct {
	OffsetDelta uint16
}

// SameLocalsOneStackItem has frame types 64-127.
type SameLocalsOneStackItem struct {
	OffsetDelta uint16
	Stack       VerificationTypeInfo
}

type SameLocalsOneStackItemExtended struct {
	OffsetDelta uint16
	Stack       VerificationTypeInfo
}

// ChopFrame has frame types 248-250 and removes 1 to 3 locals.
type ChopFrame struct {
	OffsetDelta  uint16
	AbsentLocals uint8
}

type SameFrameExtended struct {
	OffsetDelta uint16
}

// AppendFrame has frame types 252-254 and adds 1 to 3 locals.
type AppendFrame struct {
	OffsetDelta uint16
	Locals      []VerificationTypeInfo
}

type FullFrame struct {
	OffsetDelta uint16
	Locals      []VerificationTypeInfo
	Stack       []VerificationTypeInfo
}

const (
	frameSameLocalsOneStackItemExtended = 247
	frameSameExtended                   = 251
	frameFull                           = 255
)

func (f *SameFrame) FrameType() uint8                      { return uint8(f.OffsetDelta) }
func (f *SameLocalsOneStackItem) FrameType() uint8         { return 64 + uint8(f.OffsetDelta) }
func (f *SameLocalsOneStackItemExtended) FrameType() uint8 { return frameSameLocalsOneStackItemExtended }
func (f *ChopFrame) FrameType() uint8                      { return frameSameExtended - f.AbsentLocals }
func (f *SameFrameExtended) FrameType() uint8              { return frameSameExtended }
func (f *AppendFrame) FrameType() uint8                    { return frameSameExtended + uint8(len(f.Locals)) }
func (f *FullFrame) FrameType() uint8                      { return frameFull }

func (f *SameFrame) Delta() uint16                      { return f.OffsetDelta }
func (f *SameLocalsOneStackItem) Delta() uint16         { return f.OffsetDelta }
func (f *SameLocalsOneStackItemExtended) Delta() uint16 { return f.OffsetDelta }
func (f *ChopFrame) Delta() uint16                      { return f.OffsetDelta }
func (f *SameFrameExtended) Delta() uint16              { return f.OffsetDelta }
func (f *AppendFrame) Delta() uint16                    { return f.OffsetDelta }
func (f *FullFrame) Delta() uint16                      { return f.OffsetDelta }

func (*SameFrame) stackMapFrame()                      {}
func (*SameLocalsOneStackItem) stackMapFrame()         {}
func (*SameLocalsOneStackItemExtended) stackMapFrame() {}
func (*ChopFrame) stackMapFrame()                      {}
func (*SameFrameExtended) stackMapFrame()              {}
func (*AppendFrame) stackMapFrame()                    {}
func (*FullFrame) stackMapFrame()                      {}

func readStackMapFrames(r *bytestream.Reader) ([]StackMapFrame, error) {
	count := int(r.U2())
	if r.Err() != nil {
		return nil, r.Err()
	}
	// each frame takes at least one byte
	if count > r.Len() {
		return nil, fmt.Errorf("%w: %d frames in %d bytes", ErrIllegalFrame, count, r.Len())
	}
	frames := make([]StackMapFrame, 0, count)
	for i := 0; i < count; i++ {
		frame, err := readStackMapFrame(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read frame %d: %w", i, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

func readStackMapFrame(r *bytestream.Reader) (StackMapFrame, error) {
	offset := r.Offset()
	frameType := r.U1()
	var frame StackMapFrame
	switch {
	case frameType <= 63:
		frame = &SameFrame{OffsetDelta: uint16(frameType)}
	case frameType <= 127:
		frame = &SameLocalsOneStackItem{OffsetDelta: uint16(frameType - 64), Stack: readVerificationType(r)}
	case frameType < frameSameLocalsOneStackItemExtended:
		if r.Err() != nil {
			return nil, r.Err()
		}
		return nil, fmt.Errorf("%w: reserved frame type %d at offset %d", ErrIllegalFrame, frameType, offset)
	case frameType == frameSameLocalsOneStackItemExtended:
		frame = &SameLocalsOneStackItemExtended{OffsetDelta: r.U2(), Stack: readVerificationType(r)}
	case frameType < frameSameExtended:
		frame = &ChopFrame{OffsetDelta: r.U2(), AbsentLocals: frameSameExtended - frameType}
	case frameType == frameSameExtended:
		frame = &SameFrameExtended{OffsetDelta: r.U2()}
	case frameType < frameFull:
		f := &AppendFrame{OffsetDelta: r.U2()}
		f.Locals = readVerificationTypes(r, int(frameType-frameSameExtended))
		frame = f
	default:
		f := &FullFrame{OffsetDelta: r.U2()}
		f.Locals = readVerificationTypes(r, int(r.U2()))
		f.Stack = readVerificationTypes(r, int(r.U2()))
		frame = f
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return frame, nil
}

func readVerificationTypes(r *bytestream.Reader, n int) []VerificationTypeInfo {
	if r.Err() != nil {
		return nil
	}
	if n > r.Len() {
		r.Fail(fmt.Errorf("%w: %d verification types in %d bytes", ErrIllegalFrame, n, r.Len()))
		return nil
	}
	types := make([]VerificationTypeInfo, n)
	for i := range types {
		types[i] = readVerificationType(r)
	}
	return types
}

func readVerificationType(r *bytestream.Reader) VerificationTypeInfo {
	offset := r.Offset()
	tag := VerificationTag(r.U1())
	switch tag {
	case VerificationObject, VerificationUninitialized:
		return VerificationTypeInfo{Tag: tag, Index: r.U2()}
	case VerificationTop, VerificationInteger, VerificationFloat, VerificationDouble,
		VerificationLong, VerificationNull, VerificationUninitializedThis:
		return VerificationTypeInfo{Tag: tag}
	}
	r.Fail(fmt.Errorf("%w: unknown verification type %d at offset %d", ErrIllegalFrame, uint8(tag), offset))
	return VerificationTypeInfo{}
}

func writeStackMapFrames(b *cryptobyte.Builder, frames []StackMapFrame) error {
	if len(frames) > 0xFFFF {
		return fmt.Errorf("%w: %d frames", ErrIllegalFrame, len(frames))
	}
	b.AddUint16(uint16(len(frames)))
	for i, frame := range frames {
		if err := writeStackMapFrame(b, frame); err != nil {
			return fmt.Errorf("failed to write frame %d: %w", i, err)
		}
	}
	return nil
}

func writeStackMapFrame(b *cryptobyte.Builder, frame StackMapFrame) error {
	switch f := frame.(type) {
	case *SameFrame:
		if f.OffsetDelta > 63 {
			return fmt.Errorf("%w: same frame delta %d > 63", ErrIllegalFrame, f.OffsetDelta)
		}
		b.AddUint8(f.FrameType())
	case *SameLocalsOneStackItem:
		if f.OffsetDelta > 63 {
			return fmt.Errorf("%w: same locals frame delta %d > 63", ErrIllegalFrame, f.OffsetDelta)
		}
		b.AddUint8(f.FrameType())
		return writeVerificationTypes(b, f.Stack)
	case *SameLocalsOneStackItemExtended:
		b.AddUint8(f.FrameType())
		b.AddUint16(f.OffsetDelta)
		return writeVerificationTypes(b, f.Stack)
	case *ChopFrame:
		if f.AbsentLocals < 1 || f.AbsentLocals > 3 {
			return fmt.Errorf("%w: chop of %d locals", ErrIllegalFrame, f.AbsentLocals)
		}
		b.AddUint8(f.FrameType())
		b.AddUint16(f.OffsetDelta)
	case *SameFrameExtended:
		b.AddUint8(f.FrameType())
		b.AddUint16(f.OffsetDelta)
	case *AppendFrame:
		if len(f.Locals) < 1 || len(f.Locals) > 3 {
			return fmt.Errorf("%w: append of %d locals", ErrIllegalFrame, len(f.Locals))
		}
		b.AddUint8(f.FrameType())
		b.AddUint16(f.OffsetDelta)
		return writeVerificationTypes(b, f.Locals...)
	case *FullFrame:
		if len(f.Locals) > 0xFFFF || len(f.Stack) > 0xFFFF {
			return fmt.Errorf("%w: full frame too large", ErrIllegalFrame)
		}
		b.AddUint8(f.FrameType())
		b.AddUint16(f.OffsetDelta)
		b.AddUint16(uint16(len(f.Locals)))
		if err := writeVerificationTypes(b, f.Locals...); err != nil {
			return err
		}
		b.AddUint16(uint16(len(f.Stack)))
		return writeVerificationTypes(b, f.Stack...)
	default:
		return fmt.Errorf("%w: unsupported frame %T", ErrIllegalFrame, frame)
	}
	return nil
}

func writeVerificationTypes(b *cryptobyte.Builder, types ...VerificationTypeInfo) error {
	for _, t := range types {
		if t.Tag > VerificationUninitialized {
			return fmt.Errorf("%w: unknown verification type %d", ErrIllegalFrame, uint8(t.Tag))
		}
		b.AddUint8(uint8(t.Tag))
		if t.Tag == VerificationObject || t.Tag == VerificationUninitialized {
			b.AddUint16(t.Index)
		}
	}
	return nil
}
