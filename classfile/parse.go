package classfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dhamidi/classkit/bytestream"
)

var (
	errEmptyAttribute = errors.New("attribute has no entries")
	errDepthExceeded  = errors.New("nesting too deep")
)

// Reader decodes class files and collects a Diagnostic for every attribute
// it drops. A Reader is not safe for concurrent use.
type Reader struct {
	opts        options
	diagnostics []Diagnostic
}

func NewReader(opts ...Option) *Reader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Reader{opts: o}
}

// Diagnostics returns what the last Read dropped or failed on.
func (rd *Reader) Diagnostics() []Diagnostic {
	return rd.diagnostics
}

func (rd *Reader) Read(data []byte) (*ClassFile, error) {
	d := &decoder{opts: rd.opts, cf: &ClassFile{}}
	err := d.decode(bytestream.NewReader(data))
	rd.diagnostics = d.diagnostics
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidClass, err)
	}
	return d.cf, nil
}

func ParseBytes(data []byte, opts ...Option) (*ClassFile, error) {
	return NewReader(opts...).Read(data)
}

func ParseFile(path string, opts ...Option) (*ClassFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class file: %w", err)
	}
	return ParseBytes(data, opts...)
}

func Parse(rd io.Reader, opts ...Option) (*ClassFile, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	return ParseBytes(data, opts...)
}

func (cf *ClassFile) UnmarshalBinary(data []byte) error {
	parsed, err := ParseBytes(data)
	if err != nil {
		return err
	}
	*cf = *parsed
	return nil
}

type decoder struct {
	opts        options
	cf          *ClassFile
	diagnostics []Diagnostic
}

func (d *decoder) decode(r *bytestream.Reader) error {
	cf := d.cf

	magic := r.U4()
	if r.Err() != nil {
		return fmt.Errorf("failed to read magic: %w", r.Err())
	}
	if magic != Magic {
		return fmt.Errorf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic)
	}

	cf.MinorVersion = r.U2()
	cf.MajorVersion = r.U2()
	if r.Err() != nil {
		return fmt.Errorf("failed to read version: %w", r.Err())
	}

	pool, err := readConstantPool(r)
	if err != nil {
		return err
	}
	cf.ConstantPool = pool

	cf.AccessFlags = AccessFlags(r.U2())
	cf.ThisClass = r.U2()
	cf.SuperClass = r.U2()
	interfacesCount := int(r.U2())
	if r.Err() != nil {
		return fmt.Errorf("failed to read class info: %w", r.Err())
	}

	cf.Interfaces = make([]uint16, 0, min(interfacesCount, r.Len()/2))
	for i := 0; i < interfacesCount; i++ {
		cf.Interfaces = append(cf.Interfaces, r.U2())
	}
	if r.Err() != nil {
		return fmt.Errorf("failed to read interfaces: %w", r.Err())
	}

	fieldsCount := int(r.U2())
	if r.Err() != nil {
		return fmt.Errorf("failed to read fields count: %w", r.Err())
	}
	cf.Fields = make([]FieldInfo, 0, min(fieldsCount, r.Len()/8))
	for i := 0; i < fieldsCount; i++ {
		flags, name, desc, attrs, err := d.readMember(r, ContextField)
		if err != nil {
			return fmt.Errorf("failed to read field %d: %w", i, err)
		}
		cf.Fields = append(cf.Fields, FieldInfo{AccessFlags: flags, NameIndex: name, DescriptorIndex: desc, Attributes: attrs})
	}

	methodsCount := int(r.U2())
	if r.Err() != nil {
		return fmt.Errorf("failed to read methods count: %w", r.Err())
	}
	cf.Methods = make([]MethodInfo, 0, min(methodsCount, r.Len()/8))
	for i := 0; i < methodsCount; i++ {
		flags, name, desc, attrs, err := d.readMember(r, ContextMethod)
		if err != nil {
			return fmt.Errorf("failed to read method %d: %w", i, err)
		}
		cf.Methods = append(cf.Methods, MethodInfo{AccessFlags: flags, NameIndex: name, DescriptorIndex: desc, Attributes: attrs})
	}

	attrs, err := d.readAttributes(r, ContextClass, 0)
	if err != nil {
		return fmt.Errorf("failed to read class attributes: %w", err)
	}
	cf.Attributes = attrs

	if !r.Empty() {
		d.opts.log.Warning("ignoring trailing bytes", "count", r.Len(), "offset", r.Offset())
	}
	return nil
}

func readConstantPool(r *bytestream.Reader) (*ConstantPool, error) {
	count := int(r.U2())
	if r.Err() != nil {
		return nil, fmt.Errorf("failed to read constant pool count: %w", r.Err())
	}
	cp := &ConstantPool{entries: make([]ConstantPoolEntry, 0, min(count, r.Len()/3))}
	for index := 1; index < count; index++ {
		entry, err := readConstantPoolEntry(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read constant pool entry %d: %w", index, err)
		}
		cp.insertAt(len(cp.entries), entry)
		if entry.Tag().IsWide() {
			index++
		}
	}
	return cp, nil
}

func readConstantPoolEntry(r *bytestream.Reader) (ConstantPoolEntry, error) {
	offset := r.Offset()
	tag := ConstantTag(r.U1())
	var entry ConstantPoolEntry
	switch tag {
	case ConstantUtf8:
		length := int(r.U2())
		entry = newUtf8Info(r.Bytes(length))
	case ConstantInteger:
		entry = &ConstantIntegerInfo{Value: r.S4()}
	case ConstantFloat:
		entry = &ConstantFloatInfo{Value: math.Float32frombits(r.U4())}
	case ConstantLong:
		entry = &ConstantLongInfo{Value: int64(r.U8())}
	case ConstantDouble:
		entry = &ConstantDoubleInfo{Value: math.Float64frombits(r.U8())}
	case ConstantClass:
		entry = &ConstantClassInfo{NameIndex: r.U2()}
	case ConstantString:
		entry = &ConstantStringInfo{StringIndex: r.U2()}
	case ConstantFieldref:
		entry = &ConstantFieldrefInfo{ClassIndex: r.U2(), NameAndTypeIndex: r.U2()}
	case ConstantMethodref:
		entry = &ConstantMethodrefInfo{ClassIndex: r.U2(), NameAndTypeIndex: r.U2()}
	case ConstantInterfaceMethodref:
		entry = &ConstantInterfaceMethodrefInfo{ClassIndex: r.U2(), NameAndTypeIndex: r.U2()}
	case ConstantNameAndType:
		entry = &ConstantNameAndTypeInfo{NameIndex: r.U2(), DescriptorIndex: r.U2()}
	case ConstantMethodHandle:
		entry = &ConstantMethodHandleInfo{ReferenceKind: MethodHandleKind(r.U1()), ReferenceIndex: r.U2()}
	case ConstantMethodType:
		entry = &ConstantMethodTypeInfo{DescriptorIndex: r.U2()}
	case ConstantDynamic:
		entry = &ConstantDynamicInfo{BootstrapMethodAttrIndex: r.U2(), NameAndTypeIndex: r.U2()}
	case ConstantInvokeDynamic:
		entry = &ConstantInvokeDynamicInfo{BootstrapMethodAttrIndex: r.U2(), NameAndTypeIndex: r.U2()}
	case ConstantModule:
		entry = &ConstantModuleInfo{NameIndex: r.U2()}
	case ConstantPackage:
		entry = &ConstantPackageInfo{NameIndex: r.U2()}
	default:
		if r.Err() != nil {
			return nil, r.Err()
		}
		return nil, fmt.Errorf("unknown constant pool tag %d at offset %d", uint8(tag), offset)
	}
	if r.Err() != nil {
		return nil, r.Err()
	}
	return entry, nil
}

func (d *decoder) readMember(r *bytestream.Reader, ctx Context) (flags AccessFlags, name, desc uint16, attrs []Attribute, err error) {
	flags = AccessFlags(r.U2())
	name = r.U2()
	desc = r.U2()
	if r.Err() != nil {
		return 0, 0, 0, nil, r.Err()
	}
	attrs, err = d.readAttributes(r, ctx, 0)
	return flags, name, desc, attrs, err
}

// readAttributes reads a u2-counted attribute table. Dropped attributes are
// left out of the result; an error means the table itself is unreadable.
func (d *decoder) readAttributes(r *bytestream.Reader, ctx Context, depth int) ([]Attribute, error) {
	if depth > d.opts.maxDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds %d", errDepthExceeded, depth, d.opts.maxDepth)
	}
	count := int(r.U2())
	if r.Err() != nil {
		return nil, r.Err()
	}
	attrs := make([]Attribute, 0, min(count, r.Len()/6))
	for i := 0; i < count; i++ {
		attr, err := d.readAttribute(r, ctx, depth)
		if err != nil {
			return nil, fmt.Errorf("failed to read attribute %d: %w", i, err)
		}
		if attr != nil {
			attrs = append(attrs, attr)
		}
	}
	return attrs, nil
}

// readAttribute carves the attribute's declared length out of r and decodes
// it by name. It returns nil without an error when the attribute is dropped.
// The error is non-nil only when r can no longer be read or when a
// malformed attribute is not allowed to be dropped.
func (d *decoder) readAttribute(r *bytestream.Reader, ctx Context, depth int) (Attribute, error) {
	diag := Diagnostic{Context: ctx, Offset: r.Offset()}
	diag.NameIndex = r.U2()
	length := r.U4()
	if r.Err() != nil {
		return nil, r.Err()
	}
	if uint64(length) > uint64(r.Len()) {
		return nil, fmt.Errorf("attribute at offset %d declares %d bytes but only %d remain", diag.Offset, length, r.Len())
	}
	region := r.Region(int(length))

	name, err := d.cf.ConstantPool.Utf8(diag.NameIndex)
	if err != nil {
		return d.malformed(diag, ReasonMalformed, fmt.Errorf("failed to resolve attribute name: %w", err))
	}
	diag.Name = name

	if since, known := AttributeSince(name); known && d.opts.dropForwardVersioned && since > d.cf.MajorVersion {
		d.drop(diag, ReasonForwardVersioned, fmt.Errorf("%s requires major version %d, class is %d", name, since, d.cf.MajorVersion))
		return nil, nil
	}
	if !AttributeAllowed(name, ctx) {
		return d.malformed(diag, ReasonIllegalContext, fmt.Errorf("%w: %s in %s", ErrIllegalContext, name, ctx))
	}

	attr, err := d.decodeAttribute(region, name, diag.NameIndex, ctx, depth)
	if err == nil {
		err = region.Err()
	}
	switch {
	case err == nil:
	case errors.Is(err, errEmptyAttribute):
		d.drop(diag, ReasonEmpty, err)
		return nil, nil
	case errors.Is(err, errDepthExceeded):
		return d.malformed(diag, ReasonDepthExceeded, err)
	case errors.Is(err, ErrIllegalContext):
		return d.malformed(diag, ReasonIllegalContext, err)
	default:
		return d.malformed(diag, ReasonMalformed, err)
	}
	if !region.Empty() {
		return d.malformed(diag, ReasonLengthMismatch, fmt.Errorf("decoded %d of %d declared bytes", region.Consumed(), length))
	}
	return attr, nil
}

func (d *decoder) drop(diag Diagnostic, reason Reason, err error) {
	diag.Outcome = Dropped
	diag.Reason = reason
	diag.Err = err
	d.diagnostics = append(d.diagnostics, diag)
	if reason == ReasonForwardVersioned {
		d.opts.log.Info("dropped attribute", "name", diag.Name, "context", diag.Context.String(), "reason", reason.String())
		return
	}
	d.opts.log.Debug("dropped attribute", "name", diag.Name, "context", diag.Context.String(), "offset", diag.Offset, "reason", reason.String(), "error", err)
}

func (d *decoder) malformed(diag Diagnostic, reason Reason, err error) (Attribute, error) {
	if d.opts.dropMalformed {
		d.drop(diag, reason, err)
		return nil, nil
	}
	diag.Outcome = Fatal
	diag.Reason = reason
	diag.Err = err
	d.diagnostics = append(d.diagnostics, diag)
	return nil, fmt.Errorf("%w: %s attribute %q at offset %d: %w", ErrMalformedAttribute, diag.Context, diag.Name, diag.Offset, err)
}
