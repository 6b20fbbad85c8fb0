package classfile

import (
	"fmt"

	"github.com/dhamidi/classkit/bytestream"
)

// readAnnotations is the only annotation reader that drops repeated types.
func (d *decoder) readAnnotations(r *bytestream.Reader, name string, nameIndex uint16, ctx Context, depth int) (Attribute, error) {
	count := int(r.U2())
	if r.Err() != nil {
		return nil, r.Err()
	}
	if count == 0 {
		return nil, errEmptyAttribute
	}
	attr := &AnnotationsAttribute{NameIndex: nameIndex, Annotations: make([]Annotation, 0, min(count, r.Len()/4))}
	seen := make(map[string]bool)
	for i := 0; i < count; i++ {
		offset := r.Offset()
		a, err := d.readAnnotation(r, depth)
		if err != nil {
			return nil, fmt.Errorf("failed to read annotation %d: %w", i, err)
		}
		if d.opts.dropDuplicateAnnotations {
			typ := d.cf.ConstantPool.GetUtf8(a.TypeIndex)
			if seen[typ] {
				d.dropDuplicate(Diagnostic{Name: name, NameIndex: nameIndex, Context: ctx, Offset: offset}, typ)
				continue
			}
			seen[typ] = true
		}
		attr.Annotations = append(attr.Annotations, a)
	}
	return attr, nil
}

// readParameterAnnotations drops attributes that declare zero parameters.
func (d *decoder) readParameterAnnotations(r *bytestream.Reader, nameIndex uint16, depth int) (Attribute, error) {
	params := int(r.U1())
	if r.Err() != nil {
		return nil, r.Err()
	}
	if params == 0 {
		return nil, errEmptyAttribute
	}
	attr := &ParameterAnnotationsAttribute{NameIndex: nameIndex, ParameterAnnotations: make([][]Annotation, params)}
	for i := range attr.ParameterAnnotations {
		annotations, err := d.readAnnotationList(r, int(r.U2()), depth)
		if err != nil {
			return nil, fmt.Errorf("failed to read annotations of parameter %d: %w", i, err)
		}
		attr.ParameterAnnotations[i] = annotations
	}
	return attr, nil
}

func (d *decoder) readAnnotationList(r *bytestream.Reader, count int, depth int) ([]Annotation, error) {
	if r.Err() != nil {
		return nil, r.Err()
	}
	annotations := make([]Annotation, 0, min(count, r.Len()/4))
	for i := 0; i < count; i++ {
		a, err := d.readAnnotation(r, depth)
		if err != nil {
			return nil, fmt.Errorf("failed to read annotation %d: %w", i, err)
		}
		annotations = append(annotations, a)
	}
	return annotations, nil
}

// dropDuplicate records a repeated annotation of type typ inside the
// attribute described by diag. The attribute itself is kept.
func (d *decoder) dropDuplicate(diag Diagnostic, typ string) {
	diag.Outcome = Dropped
	diag.Reason = ReasonDuplicateAnnotation
	diag.Err = fmt.Errorf("repeated annotation type %s", typ)
	d.diagnostics = append(d.diagnostics, diag)
	d.opts.log.Debug("dropped duplicate annotation", "attribute", diag.Name, "context", diag.Context.String(), "type", typ, "offset", diag.Offset)
}

func (d *decoder) readAnnotation(r *bytestream.Reader, depth int) (Annotation, error) {
	a := Annotation{TypeIndex: r.U2()}
	if r.Err() != nil {
		return a, r.Err()
	}
	if _, err := d.cf.ConstantPool.Utf8(a.TypeIndex); err != nil {
		return a, fmt.Errorf("failed to resolve annotation type: %w", err)
	}
	pairs, err := d.readElementValuePairs(r, depth)
	if err != nil {
		return a, err
	}
	a.ElementValuePairs = pairs
	return a, nil
}

func (d *decoder) readElementValuePairs(r *bytestream.Reader, depth int) ([]ElementValuePair, error) {
	count := readCount(r, 3)
	if r.Err() != nil {
		return nil, r.Err()
	}
	pairs := make([]ElementValuePair, 0, count)
	names := make(map[uint16]bool, count)
	for i := 0; i < count; i++ {
		nameIndex := r.U2()
		if r.Err() != nil {
			return nil, r.Err()
		}
		if names[nameIndex] {
			return nil, fmt.Errorf("element name #%d repeated", nameIndex)
		}
		names[nameIndex] = true
		value, err := d.readElementValue(r, depth+1)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, ElementValuePair{ElementNameIndex: nameIndex, Value: value})
	}
	return pairs, nil
}

func (d *decoder) readElementValue(r *bytestream.Reader, depth int) (ElementValue, error) {
	if depth > d.opts.maxDepth {
		return nil, fmt.Errorf("%w: element value depth %d", errDepthExceeded, depth)
	}
	offset := r.Offset()
	tag := r.U1()
	if r.Err() != nil {
		return nil, r.Err()
	}
	var value ElementValue
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		value = &ConstElementValue{ElementTag: tag, ConstValueIndex: r.U2()}
	case 'e':
		value = &EnumElementValue{TypeNameIndex: r.U2(), ConstNameIndex: r.U2()}
	case 'c':
		value = &ClassElementValue{ClassInfoIndex: r.U2()}
	case '@':
		a, err := d.readAnnotation(r, depth)
		if err != nil {
			return nil, err
		}
		value = &AnnotationElementValue{Annotation: a}
	case '[':
		count := readCount(r, 3)
		array := &ArrayElementValue{Values: make([]ElementValue, 0, count)}
		for i := 0; i < count; i++ {
			v, err := d.readElementValue(r, depth+1)
			if err != nil {
				return nil, err
			}
			array.Values = append(array.Values, v)
		}
		value = array
	default:
		return nil, fmt.Errorf("unknown element value tag %q at offset %d", tag, offset)
	}
	return value, r.Err()
}

func (d *decoder) readTypeAnnotations(r *bytestream.Reader, nameIndex uint16, ctx Context, depth int) (Attribute, error) {
	count := int(r.U2())
	if r.Err() != nil {
		return nil, r.Err()
	}
	if count == 0 {
		return nil, errEmptyAttribute
	}
	attr := &TypeAnnotationsAttribute{NameIndex: nameIndex, Annotations: make([]TypeAnnotation, 0, min(count, r.Len()/6))}
	for i := 0; i < count; i++ {
		a, err := d.readTypeAnnotation(r, ctx, depth)
		if err != nil {
			return nil, fmt.Errorf("failed to read type annotation %d: %w", i, err)
		}
		attr.Annotations = append(attr.Annotations, a)
	}
	return attr, nil
}

func (d *decoder) readTypeAnnotation(r *bytestream.Reader, ctx Context, depth int) (TypeAnnotation, error) {
	offset := r.Offset()
	a := TypeAnnotation{TargetType: r.U1()}
	if r.Err() != nil {
		return a, r.Err()
	}
	implied, ok := TargetContext(a.TargetType)
	if !ok {
		return a, fmt.Errorf("unknown type annotation target 0x%02x at offset %d", a.TargetType, offset)
	}
	if implied != ctx {
		return a, fmt.Errorf("%w: target 0x%02x belongs in %s, found in %s", ErrIllegalContext, a.TargetType, implied, ctx)
	}
	a.TargetInfo = readTargetInfo(r, a.TargetType)

	pathLength := int(r.U1())
	a.TargetPath = make([]TypePathEntry, 0, pathLength)
	for i := 0; i < pathLength && r.Err() == nil; i++ {
		a.TargetPath = append(a.TargetPath, TypePathEntry{TypePathKind: r.U1(), TypeArgumentIndex: r.U1()})
	}

	a.TypeIndex = r.U2()
	if r.Err() != nil {
		return a, r.Err()
	}
	if _, err := d.cf.ConstantPool.Utf8(a.TypeIndex); err != nil {
		return a, fmt.Errorf("failed to resolve annotation type: %w", err)
	}
	pairs, err := d.readElementValuePairs(r, depth)
	if err != nil {
		return a, err
	}
	a.ElementValuePairs = pairs
	return a, nil
}

func readTargetInfo(r *bytestream.Reader, targetType uint8) TargetInfo {
	switch targetType {
	case TargetClassTypeParameter, TargetMethodTypeParameter:
		return &TypeParameterTarget{TypeParameterIndex: r.U1()}
	case TargetSupertype:
		return &SupertypeTarget{SupertypeIndex: r.U2()}
	case TargetClassTypeParameterBound, TargetMethodTypeParameterBound:
		return &TypeParameterBoundTarget{TypeParameterIndex: r.U1(), BoundIndex: r.U1()}
	case TargetField, TargetMethodReturn, TargetMethodReceiver:
		return &EmptyTarget{}
	case TargetMethodFormalParameter:
		return &FormalParameterTarget{FormalParameterIndex: r.U1()}
	case TargetThrows:
		return &ThrowsTarget{ThrowsTypeIndex: r.U2()}
	case TargetLocalVariable, TargetResourceVariable:
		count := readCount(r, 6)
		target := &LocalVarTarget{Table: make([]LocalVarTargetEntry, count)}
		for i := range target.Table {
			target.Table[i] = LocalVarTargetEntry{StartPC: r.U2(), Length: r.U2(), Index: r.U2()}
		}
		return target
	case TargetExceptionParameter:
		return &CatchTarget{ExceptionTableIndex: r.U2()}
	case TargetInstanceof, TargetNew, TargetConstructorReference, TargetMethodReference:
		return &OffsetTarget{Offset: r.U2()}
	}
	return &TypeArgumentTarget{Offset: r.U2(), TypeArgumentIndex: r.U1()}
}
