package classfile

import (
	"fmt"
	"strings"
)

// FieldType is one parsed field descriptor such as "[[Ljava/lang/String;".
// Exactly one of BaseType and ClassName is set.
type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

var baseTypes = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

// String renders the type in source form, e.g. "java.lang.String[][]".
func (ft FieldType) String() string {
	var sb strings.Builder
	if ft.BaseType != "" {
		sb.WriteString(ft.BaseType)
	} else {
		sb.WriteString(InternalToSourceName(ft.ClassName))
	}
	for range ft.ArrayDepth {
		sb.WriteString("[]")
	}
	return sb.String()
}

func (ft FieldType) IsArray() bool {
	return ft.ArrayDepth > 0
}

func (ft FieldType) IsPrimitive() bool {
	return ft.BaseType != "" && ft.ArrayDepth == 0
}

func (ft FieldType) IsReference() bool {
	return !ft.IsPrimitive()
}

// Slots is the number of local variable slots the type occupies.
func (ft FieldType) Slots() int {
	if ft.ArrayDepth == 0 && (ft.BaseType == "long" || ft.BaseType == "double") {
		return 2
	}
	return 1
}

// MethodDescriptor is a parsed method descriptor. ReturnType is nil for void.
type MethodDescriptor struct {
	Parameters []FieldType
	ReturnType *FieldType
}

func (md MethodDescriptor) String() string {
	params := make([]string, len(md.Parameters))
	for i, p := range md.Parameters {
		params[i] = p.String()
	}
	ret := "void"
	if md.ReturnType != nil {
		ret = md.ReturnType.String()
	}
	return "(" + strings.Join(params, ", ") + ") " + ret
}

// ParameterSlots is the number of local variable slots taken by the
// parameters, not counting the receiver.
func (md MethodDescriptor) ParameterSlots() int {
	n := 0
	for _, p := range md.Parameters {
		n += p.Slots()
	}
	return n
}

func ParseFieldDescriptor(desc string) (FieldType, error) {
	s := descriptorScanner{desc: desc}
	ft, err := s.fieldType()
	if err != nil {
		return FieldType{}, err
	}
	if !s.done() {
		return FieldType{}, s.errorf("trailing characters")
	}
	return ft, nil
}

func ParseMethodDescriptor(desc string) (MethodDescriptor, error) {
	s := descriptorScanner{desc: desc}
	if !s.accept('(') {
		return MethodDescriptor{}, s.errorf("expected '('")
	}
	var md MethodDescriptor
	for !s.accept(')') {
		if s.done() {
			return MethodDescriptor{}, s.errorf("unterminated parameter list")
		}
		ft, err := s.fieldType()
		if err != nil {
			return MethodDescriptor{}, err
		}
		md.Parameters = append(md.Parameters, ft)
	}
	if !s.accept('V') {
		ft, err := s.fieldType()
		if err != nil {
			return MethodDescriptor{}, err
		}
		md.ReturnType = &ft
	}
	if !s.done() {
		return MethodDescriptor{}, s.errorf("trailing characters")
	}
	return md, nil
}

type descriptorScanner struct {
	desc string
	pos  int
}

func (s *descriptorScanner) done() bool {
	return s.pos >= len(s.desc)
}

func (s *descriptorScanner) accept(c byte) bool {
	if !s.done() && s.desc[s.pos] == c {
		s.pos++
		return true
	}
	return false
}

func (s *descriptorScanner) errorf(format string, args ...any) error {
	return fmt.Errorf("%w %q at %d: %s", ErrInvalidDescriptor, s.desc, s.pos, fmt.Sprintf(format, args...))
}

func (s *descriptorScanner) fieldType() (FieldType, error) {
	var ft FieldType
	for s.accept('[') {
		ft.ArrayDepth++
	}
	if ft.ArrayDepth > 255 {
		return FieldType{}, s.errorf("more than 255 array dimensions")
	}
	if s.done() {
		return FieldType{}, s.errorf("missing type")
	}
	c := s.desc[s.pos]
	if base, ok := baseTypes[c]; ok {
		s.pos++
		ft.BaseType = base
		return ft, nil
	}
	if c != 'L' {
		return FieldType{}, s.errorf("unexpected %q", c)
	}
	end := strings.IndexByte(s.desc[s.pos:], ';')
	if end <= 1 {
		return FieldType{}, s.errorf("malformed class name")
	}
	ft.ClassName = s.desc[s.pos+1 : s.pos+end]
	s.pos += end + 1
	return ft, nil
}

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
