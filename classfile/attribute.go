package classfile

import "github.com/dhamidi/classkit/bytecode"

// Attribute is one entry of an attribute table. Every implementation is a
// pointer to one of the *Attribute structs in this package.
type Attribute interface {
	AttributeNameIndex() uint16
	attribute()
}

type CodeAttribute struct {
	NameIndex      uint16
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     []Attribute
}

type ConstantValueAttribute struct {
	NameIndex          uint16
	ConstantValueIndex uint16
}

type DeprecatedAttribute struct {
	NameIndex uint16
}

type SyntheticAttribute struct {
	NameIndex uint16
}

type EnclosingMethodAttribute struct {
	NameIndex   uint16
	ClassIndex  uint16
	MethodIndex uint16
}

type ExceptionsAttribute struct {
	NameIndex           uint16
	ExceptionIndexTable []uint16
}

type InnerClassesAttribute struct {
	NameIndex uint16
	Classes   []InnerClassEntry
}

type NestHostAttribute struct {
	NameIndex      uint16
	HostClassIndex uint16
}

type NestMembersAttribute struct {
	NameIndex uint16
	Classes   []uint16
}

type PermittedSubclassesAttribute struct {
	NameIndex uint16
	Classes   []uint16
}

type SourceDebugExtensionAttribute struct {
	NameIndex      uint16
	DebugExtension []byte
}

type SourceFileAttribute struct {
	NameIndex       uint16
	SourceFileIndex uint16
}

type SignatureAttribute struct {
	NameIndex      uint16
	SignatureIndex uint16
}

type BootstrapMethodsAttribute struct {
	NameIndex        uint16
	BootstrapMethods []BootstrapMethod
}

type LineNumberTableAttribute struct {
	NameIndex       uint16
	LineNumberTable []LineNumberEntry
}

type LocalVariableTableAttribute struct {
	NameIndex          uint16
	LocalVariableTable []LocalVariableEntry
}

type LocalVariableTypeTableAttribute struct {
	NameIndex              uint16
	LocalVariableTypeTable []LocalVariableTypeEntry
}

type MethodParametersAttribute struct {
	NameIndex  uint16
	Parameters []MethodParameter
}

type ModuleAttribute struct {
	NameIndex          uint16
	ModuleNameIndex    uint16
	ModuleFlags        uint16
	ModuleVersionIndex uint16
	Requires           []ModuleRequires
	Exports            []ModuleExports
	Opens              []ModuleOpens
	Uses               []uint16
	Provides           []ModuleProvides
}

type ModulePackagesAttribute struct {
	NameIndex    uint16
	PackageIndex []uint16
}

type ModuleMainClassAttribute struct {
	NameIndex      uint16
	MainClassIndex uint16
}

type RecordAttribute struct {
	NameIndex  uint16
	Components []RecordComponentInfo
}

type StackMapTableAttribute struct {
	NameIndex uint16
	Entries   []StackMapFrame
}

// AnnotationsAttribute is RuntimeVisibleAnnotations or
// RuntimeInvisibleAnnotations; the name index tells which.
type AnnotationsAttribute struct {
	NameIndex   uint16
	Annotations []Annotation
}

// ParameterAnnotationsAttribute is RuntimeVisibleParameterAnnotations or
// RuntimeInvisibleParameterAnnotations.
type ParameterAnnotationsAttribute struct {
	NameIndex            uint16
	ParameterAnnotations [][]Annotation
}

// TypeAnnotationsAttribute is RuntimeVisibleTypeAnnotations or
// RuntimeInvisibleTypeAnnotations.
type TypeAnnotationsAttribute struct {
	NameIndex   uint16
	Annotations []TypeAnnotation
}

type AnnotationDefaultAttribute struct {
	NameIndex    uint16
	DefaultValue ElementValue
}

// DefaultAttribute holds an attribute with an unrecognised name as raw bytes.
type DefaultAttribute struct {
	NameIndex uint16
	Data      []byte
}

type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

type InnerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags AccessFlags
}

type BootstrapMethod struct {
	BootstrapMethodRef uint16
	BootstrapArguments []uint16
}

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

type LocalVariableEntry struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

type LocalVariableTypeEntry struct {
	StartPC        uint16
	Length         uint16
	NameIndex      uint16
	SignatureIndex uint16
	Index          uint16
}

type MethodParameter struct {
	NameIndex   uint16
	AccessFlags AccessFlags
}

type ModuleRequires struct {
	RequiresIndex        uint16
	RequiresFlags        uint16
	RequiresVersionIndex uint16
}

type ModuleExports struct {
	ExportsIndex   uint16
	ExportsFlags   uint16
	ExportsToIndex []uint16
}

type ModuleOpens struct {
	OpensIndex   uint16
	OpensFlags   uint16
	OpensToIndex []uint16
}

type ModuleProvides struct {
	ProvidesIndex     uint16
	ProvidesWithIndex []uint16
}

type RecordComponentInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

func (a *CodeAttribute) AttributeNameIndex() uint16                   { return a.NameIndex }
func (a *ConstantValueAttribute) AttributeNameIndex() uint16          { return a.NameIndex }
func (a *DeprecatedAttribute) AttributeNameIndex() uint16             { return a.NameIndex }
func (a *SyntheticAttribute) AttributeNameIndex() uint16              { return a.NameIndex }
func (a *EnclosingMethodAttribute) AttributeNameIndex() uint16        { return a.NameIndex }
func (a *ExceptionsAttribute) AttributeNameIndex() uint16             { return a.NameIndex }
func (a *InnerClassesAttribute) AttributeNameIndex() uint16           { return a.NameIndex }
func (a *NestHostAttribute) AttributeNameIndex() uint16               { return a.NameIndex }
func (a *NestMembersAttribute) AttributeNameIndex() uint16            { return a.NameIndex }
func (a *PermittedSubclassesAttribute) AttributeNameIndex() uint16    { return a.NameIndex }
func (a *SourceDebugExtensionAttribute) AttributeNameIndex() uint16   { return a.NameIndex }
func (a *SourceFileAttribute) AttributeNameIndex() uint16             { return a.NameIndex }
func (a *SignatureAttribute) AttributeNameIndex() uint16              { return a.NameIndex }
func (a *BootstrapMethodsAttribute) AttributeNameIndex() uint16       { return a.NameIndex }
func (a *LineNumberTableAttribute) AttributeNameIndex() uint16        { return a.NameIndex }
func (a *LocalVariableTableAttribute) AttributeNameIndex() uint16     { return a.NameIndex }
func (a *LocalVariableTypeTableAttribute) AttributeNameIndex() uint16 { return a.NameIndex }
func (a *MethodParametersAttribute) AttributeNameIndex() uint16       { return a.NameIndex }
func (a *ModuleAttribute) AttributeNameIndex() uint16                 { return a.NameIndex }
func (a *ModulePackagesAttribute) AttributeNameIndex() uint16         { return a.NameIndex }
func (a *ModuleMainClassAttribute) AttributeNameIndex() uint16        { return a.NameIndex }
func (a *RecordAttribute) AttributeNameIndex() uint16                 { return a.NameIndex }
func (a *StackMapTableAttribute) AttributeNameIndex() uint16          { return a.NameIndex }
func (a *AnnotationsAttribute) AttributeNameIndex() uint16            { return a.NameIndex }
func (a *ParameterAnnotationsAttribute) AttributeNameIndex() uint16   { return a.NameIndex }
func (a *TypeAnnotationsAttribute) AttributeNameIndex() uint16        { return a.NameIndex }
func (a *AnnotationDefaultAttribute) AttributeNameIndex() uint16      { return a.NameIndex }
func (a *DefaultAttribute) AttributeNameIndex() uint16                { return a.NameIndex }

func (*CodeAttribute) attribute()                   {}
func (*ConstantValueAttribute) attribute()          {}
func (*DeprecatedAttribute) attribute()             {}
func (*SyntheticAttribute) attribute()              {}
func (*EnclosingMethodAttribute) attribute()        {}
func (*ExceptionsAttribute) attribute()             {}
func (*InnerClassesAttribute) attribute()           {}
func (*NestHostAttribute) attribute()               {}
func (*NestMembersAttribute) attribute()            {}
func (*PermittedSubclassesAttribute) attribute()    {}
func (*SourceDebugExtensionAttribute) attribute()   {}
func (*SourceFileAttribute) attribute()             {}
func (*SignatureAttribute) attribute()              {}
func (*BootstrapMethodsAttribute) attribute()       {}
func (*LineNumberTableAttribute) attribute()        {}
func (*LocalVariableTableAttribute) attribute()     {}
func (*LocalVariableTypeTableAttribute) attribute() {}
func (*MethodParametersAttribute) attribute()       {}
func (*ModuleAttribute) attribute()                 {}
func (*ModulePackagesAttribute) attribute()         {}
func (*ModuleMainClassAttribute) attribute()        {}
func (*RecordAttribute) attribute()                 {}
func (*StackMapTableAttribute) attribute()          {}
func (*AnnotationsAttribute) attribute()            {}
func (*ParameterAnnotationsAttribute) attribute()   {}
func (*TypeAnnotationsAttribute) attribute()        {}
func (*AnnotationDefaultAttribute) attribute()      {}
func (*DefaultAttribute) attribute()                {}

// FindAttribute returns the first attribute of type T in attrs.
func FindAttribute[T Attribute](attrs []Attribute) (T, bool) {
	for _, a := range attrs {
		if t, ok := a.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// AttributeName resolves the name of a through the constant pool.
func AttributeName(cp *ConstantPool, a Attribute) string {
	return cp.GetUtf8(a.AttributeNameIndex())
}

// Instructions decodes the method body.
func (a *CodeAttribute) Instructions() ([]bytecode.Instruction, error) {
	return bytecode.Decode(a.Code)
}

// SetInstructions replaces the method body with the encoding of insns.
func (a *CodeAttribute) SetInstructions(insns []bytecode.Instruction) error {
	code, err := bytecode.Encode(insns)
	if err != nil {
		return err
	}
	a.Code = code
	return nil
}
