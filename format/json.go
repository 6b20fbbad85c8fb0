package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/classkit/classfile"
)

type JSONEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(cf *classfile.ClassFile) error {
	e.class = cf
	return write(e.w, e)
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data := e.buildClassData()
	return json.MarshalIndent(data, "", "  ")
}

type jsonClass struct {
	Name         string          `json:"name"`
	SuperClass   string          `json:"superClass,omitempty"`
	Interfaces   []string        `json:"interfaces,omitempty"`
	Visibility   string          `json:"visibility"`
	Kind         string          `json:"kind"`
	Modifiers    []string        `json:"modifiers,omitempty"`
	Version      jsonVersion     `json:"version"`
	ConstantPool []jsonConstant  `json:"constantPool"`
	Fields       []jsonField     `json:"fields,omitempty"`
	Methods      []jsonMethod    `json:"methods,omitempty"`
	Attributes   []jsonAttribute `json:"attributes,omitempty"`
}

type jsonVersion struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

type jsonConstant struct {
	Index uint16 `json:"index"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

type jsonField struct {
	Name       string          `json:"name"`
	Descriptor string          `json:"descriptor"`
	Type       string          `json:"type"`
	Visibility string          `json:"visibility"`
	Modifiers  []string        `json:"modifiers,omitempty"`
	Attributes []jsonAttribute `json:"attributes,omitempty"`
}

type jsonMethod struct {
	Name       string          `json:"name"`
	Descriptor string          `json:"descriptor"`
	ReturnType string          `json:"returnType"`
	Parameters []string        `json:"parameters,omitempty"`
	Visibility string          `json:"visibility"`
	Modifiers  []string        `json:"modifiers,omitempty"`
	Attributes []jsonAttribute `json:"attributes,omitempty"`
}

type jsonAttribute struct {
	Name       string          `json:"name"`
	Summary    string          `json:"summary,omitempty"`
	Attributes []jsonAttribute `json:"attributes,omitempty"`
}

func (e *JSONEncoder) buildClassData() jsonClass {
	cf := e.class
	return jsonClass{
		Name:         cf.ClassName(),
		SuperClass:   cf.SuperClassName(),
		Interfaces:   cf.InterfaceNames(),
		Visibility:   visibility(cf.AccessFlags),
		Kind:         classKind(cf),
		Modifiers:    classModifiers(cf),
		Version:      jsonVersion{Major: cf.MajorVersion, Minor: cf.MinorVersion},
		ConstantPool: buildConstants(cf.ConstantPool),
		Fields:       e.buildFields(),
		Methods:      e.buildMethods(),
		Attributes:   buildAttributes(cf.ConstantPool, cf.Attributes),
	}
}

func buildConstants(cp *classfile.ConstantPool) []jsonConstant {
	result := make([]jsonConstant, 0, cp.Size())
	for index, entry := range cp.All() {
		result = append(result, jsonConstant{Index: index, Tag: entry.Tag().String(), Value: cp.Describe(index)})
	}
	return result
}

func (e *JSONEncoder) buildFields() []jsonField {
	cf := e.class
	cp := cf.ConstantPool
	result := make([]jsonField, len(cf.Fields))
	for i := range cf.Fields {
		f := &cf.Fields[i]
		desc := f.Descriptor(cp)
		result[i] = jsonField{
			Name:       f.Name(cp),
			Descriptor: desc,
			Type:       fieldType(desc),
			Visibility: visibility(f.AccessFlags),
			Modifiers:  fieldModifiers(f),
			Attributes: buildAttributes(cp, f.Attributes),
		}
	}
	return result
}

func (e *JSONEncoder) buildMethods() []jsonMethod {
	cf := e.class
	cp := cf.ConstantPool
	result := make([]jsonMethod, len(cf.Methods))
	for i := range cf.Methods {
		m := &cf.Methods[i]
		jm := jsonMethod{
			Name:       m.Name(cp),
			Descriptor: m.Descriptor(cp),
			Visibility: visibility(m.AccessFlags),
			Modifiers:  methodModifiers(m),
			Attributes: buildAttributes(cp, m.Attributes),
		}
		if md, err := m.ParsedDescriptor(cp); err == nil {
			jm.ReturnType = "void"
			if md.ReturnType != nil {
				jm.ReturnType = md.ReturnType.String()
			}
			for _, p := range md.Parameters {
				jm.Parameters = append(jm.Parameters, p.String())
			}
		}
		result[i] = jm
	}
	return result
}

func buildAttributes(cp *classfile.ConstantPool, attrs []classfile.Attribute) []jsonAttribute {
	if len(attrs) == 0 {
		return nil
	}
	result := make([]jsonAttribute, len(attrs))
	for i, attr := range attrs {
		result[i] = jsonAttribute{Name: classfile.AttributeName(cp, attr), Summary: summary(cp, attr)}
		if code, ok := attr.(*classfile.CodeAttribute); ok {
			result[i].Attributes = buildAttributes(cp, code.Attributes)
		}
	}
	return result
}
