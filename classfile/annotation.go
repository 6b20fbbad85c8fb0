package classfile

type Annotation struct {
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

type ElementValuePair struct {
	ElementNameIndex uint16
	Value            ElementValue
}

// ElementValue is one node of an annotation element tree. Implementations
// are ConstElementValue, EnumElementValue, ClassElementValue,
// AnnotationElementValue and ArrayElementValue.
type ElementValue interface {
	Tag() byte
	elementValue()
}

// ConstElementValue covers the primitive tags B C D F I J S Z, which point
// at a numeric constant, and s, which points at a Utf8 entry.
type ConstElementValue struct {
	ElementTag      byte
	ConstValueIndex uint16
}

type EnumElementValue struct {
	TypeNameIndex  uint16
	ConstNameIndex uint16
}

type ClassElementValue struct {
	ClassInfoIndex uint16
}

type AnnotationElementValue struct {
	Annotation Annotation
}

type ArrayElementValue struct {
	Values []ElementValue
}

func (v *ConstElementValue) Tag() byte    { return v.ElementTag }
func (*EnumElementValue) Tag() byte       { return 'e' }
func (*ClassElementValue) Tag() byte      { return 'c' }
func (*AnnotationElementValue) Tag() byte { return '@' }
func (*ArrayElementValue) Tag() byte      { return '[' }

func (*ConstElementValue) elementValue()      {}
func (*EnumElementValue) elementValue()       {}
func (*ClassElementValue) elementValue()      {}
func (*AnnotationElementValue) elementValue() {}
func (*ArrayElementValue) elementValue()      {}

type TypeAnnotation struct {
	TargetType        uint8
	TargetInfo        TargetInfo
	TargetPath        []TypePathEntry
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

type TypePathEntry struct {
	TypePathKind      uint8
	TypeArgumentIndex uint8
}

// TargetInfo is the target_info union of a type annotation; which variant
// applies is fixed by the target type.
type TargetInfo interface {
	targetInfo()
}

type TypeParameterTarget struct {
	TypeParameterIndex uint8
}

type SupertypeTarget struct {
	SupertypeIndex uint16
}

type TypeParameterBoundTarget struct {
	TypeParameterIndex uint8
	BoundIndex         uint8
}

type EmptyTarget struct{}

type FormalParameterTarget struct {
	FormalParameterIndex uint8
}

type ThrowsTarget struct {
	ThrowsTypeIndex uint16
}

type LocalVarTarget struct {
	Table []LocalVarTargetEntry
}

type LocalVarTargetEntry struct {
	StartPC uint16
	Length  uint16
	Index   uint16
}

type CatchTarget struct {
	ExceptionTableIndex uint16
}

type OffsetTarget struct {
	Offset uint16
}

type TypeArgumentTarget struct {
	Offset            uint16
	TypeArgumentIndex uint8
}

func (*TypeParameterTarget) targetInfo()      {}
func (*SupertypeTarget) targetInfo()          {}
func (*TypeParameterBoundTarget) targetInfo() {}
func (*EmptyTarget) targetInfo()              {}
func (*FormalParameterTarget) targetInfo()    {}
func (*ThrowsTarget) targetInfo()             {}
func (*LocalVarTarget) targetInfo()           {}
func (*CatchTarget) targetInfo()              {}
func (*OffsetTarget) targetInfo()             {}
func (*TypeArgumentTarget) targetInfo()       {}
