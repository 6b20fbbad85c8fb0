package classfile

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseClassFile(t *testing.T) {
	tc := newTestClass(Java17)
	tc.cp.Add(&ConstantUtf8Info{Value: "unused"})
	tc.interfaces = []uint16{tc.class("java/lang/Runnable")}
	tc.field("count", "I")
	tc.method("run", "()V", tc.attr(AttrCode, codeBody()))
	tc.attrs = append(tc.attrs, tc.attr(AttrSourceFile, u2(tc.utf8("Test.java"))))
	data := tc.bytes(t)

	cf, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to parse class file: %v", err)
	}

	t.Run("class name", func(t *testing.T) {
		if got := cf.ClassName(); got != "Test" {
			t.Errorf("ClassName() = %q, want %q", got, "Test")
		}
	})

	t.Run("super class", func(t *testing.T) {
		if got := cf.SuperClassName(); got != "java/lang/Object" {
			t.Errorf("SuperClassName() = %q, want %q", got, "java/lang/Object")
		}
	})

	t.Run("interfaces", func(t *testing.T) {
		interfaces := cf.InterfaceNames()
		if len(interfaces) != 1 || interfaces[0] != "java/lang/Runnable" {
			t.Errorf("InterfaceNames() = %v, want [java/lang/Runnable]", interfaces)
		}
	})

	t.Run("version", func(t *testing.T) {
		if cf.MajorVersion != Java17 || cf.MinorVersion != 0 {
			t.Errorf("version = %d.%d, want %d.0", cf.MajorVersion, cf.MinorVersion, Java17)
		}
		if cf.IsOak() {
			t.Error("Expected IsOak() to be false")
		}
	})

	t.Run("is class", func(t *testing.T) {
		if !cf.IsClass() {
			t.Error("Expected IsClass() to be true")
		}
		if cf.IsInterface() {
			t.Error("Expected IsInterface() to be false")
		}
	})

	t.Run("members", func(t *testing.T) {
		field := cf.GetField("count")
		if field == nil {
			t.Fatal("Expected field count")
		}
		ft, err := field.ParsedDescriptor(cf.ConstantPool)
		if err != nil || ft.BaseType != "int" {
			t.Errorf("ParsedDescriptor() = %v, %v, want int", ft, err)
		}
		method := cf.GetMethod("run", "()V")
		if method == nil {
			t.Fatal("Expected method run()V")
		}
		code := method.Code()
		if code == nil {
			t.Fatal("Expected Code attribute on run")
		}
		if !bytes.Equal(code.Code, []byte{0xB1}) {
			t.Errorf("Code = %x, want b1", code.Code)
		}
		if cf.GetMethod("run", "(I)V") != nil {
			t.Error("Expected no method run(I)V")
		}
	})

	t.Run("source file", func(t *testing.T) {
		sf, ok := cf.GetAttribute(AttrSourceFile).(*SourceFileAttribute)
		if !ok {
			t.Fatal("Expected SourceFile attribute")
		}
		if got := cf.ConstantPool.GetUtf8(sf.SourceFileIndex); got != "Test.java" {
			t.Errorf("SourceFile = %q, want %q", got, "Test.java")
		}
	})

	t.Run("round trip", func(t *testing.T) {
		out, err := Write(cf)
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !bytes.Equal(out, data) {
			t.Errorf("Write() produced %d bytes differing from the %d input bytes", len(out), len(data))
		}
	})
}

func TestParseErrors(t *testing.T) {
	valid := newTestClass(Java8).bytes(t)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", cat(u4(0xCAFEBABF), valid[4:])},
		{"truncated header", valid[:9]},
		{"truncated pool", valid[:14]},
		{"missing attributes count", valid[:len(valid)-1]},
		{"unknown constant tag", cat(valid[:8], u2(2), u1(99))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes(tt.data)
			if !errors.Is(err, ErrInvalidClass) {
				t.Errorf("ParseBytes() error = %v, want ErrInvalidClass", err)
			}
		})
	}
}

func TestParseEveryTruncation(t *testing.T) {
	tc := newTestClass(Java8)
	tc.method("run", "()V", tc.attr(AttrCode, codeBody()))
	data := tc.bytes(t)
	for n := 0; n < len(data); n++ {
		if _, err := ParseBytes(data[:n]); err == nil {
			t.Errorf("ParseBytes(%d of %d bytes) succeeded, want error", n, len(data))
		}
	}
}

func TestTrailingBytesIgnored(t *testing.T) {
	data := cat(newTestClass(Java8).bytes(t), u1(0, 1, 2))
	if _, err := ParseBytes(data); err != nil {
		t.Errorf("ParseBytes() error = %v", err)
	}
}

func TestConstantValueLength(t *testing.T) {
	build := func(body []byte) []byte {
		tc := newTestClass(Java8)
		tc.add(&ConstantIntegerInfo{Value: 7})
		tc.field("x", "I", tc.attr(AttrConstantValue, body))
		return tc.bytes(t)
	}

	t.Run("two bytes", func(t *testing.T) {
		cf, diags := mustParse(t, build(u2(5)))
		if len(diags) != 0 {
			t.Errorf("Diagnostics() = %v, want none", diags)
		}
		if got := cf.Fields[0].ConstantValue(); got != 5 {
			t.Errorf("ConstantValue() = %d, want 5", got)
		}
	})

	t.Run("three bytes dropped", func(t *testing.T) {
		cf, diags := mustParse(t, build(cat(u2(5), u1(0))))
		if len(cf.Fields[0].Attributes) != 0 {
			t.Errorf("Attributes = %v, want none", cf.Fields[0].Attributes)
		}
		if !hasDiagnostic(diags, AttrConstantValue, ReasonLengthMismatch) {
			t.Errorf("Diagnostics() = %v, want length mismatch", diags)
		}
		if diags[0].Outcome != Dropped || diags[0].Context != ContextField {
			t.Errorf("Diagnostic = %v, want dropped in field", diags[0])
		}
	})

	t.Run("one byte dropped", func(t *testing.T) {
		_, diags := mustParse(t, build(u1(5)))
		if !hasDiagnostic(diags, AttrConstantValue, ReasonMalformed) {
			t.Errorf("Diagnostics() = %v, want malformed", diags)
		}
	})

	t.Run("three bytes strict", func(t *testing.T) {
		rd := NewReader(WithDropMalformed(false))
		_, err := rd.Read(build(cat(u2(5), u1(0))))
		if !errors.Is(err, ErrMalformedAttribute) || !errors.Is(err, ErrInvalidClass) {
			t.Errorf("Read() error = %v, want ErrMalformedAttribute", err)
		}
		diags := rd.Diagnostics()
		if len(diags) != 1 || diags[0].Outcome != Fatal {
			t.Errorf("Diagnostics() = %v, want one fatal", diags)
		}
	})
}

func TestAttributeLengthOverrun(t *testing.T) {
	tc := newTestClass(Java8)
	a := tc.attr(AttrSourceFile, u2(1))
	a.overrun = 10
	tc.attrs = append(tc.attrs, a)
	if _, err := ParseBytes(tc.bytes(t)); !errors.Is(err, ErrInvalidClass) {
		t.Errorf("ParseBytes() error = %v, want ErrInvalidClass", err)
	}
}

func TestUnknownAttributePassthrough(t *testing.T) {
	tc := newTestClass(Java8)
	payload := []byte{1, 2, 3, 4, 5}
	tc.attrs = append(tc.attrs, tc.attr("X-Custom", payload))
	tc.method("run", "()V", tc.attr(AttrCode, codeBody(tc.attr("X-Empty"))))
	data := tc.bytes(t)

	cf, diags := mustParse(t, data)
	if len(diags) != 0 {
		t.Errorf("Diagnostics() = %v, want none", diags)
	}
	custom, ok := cf.GetAttribute("X-Custom").(*DefaultAttribute)
	if !ok {
		t.Fatalf("GetAttribute(X-Custom) = %T, want *DefaultAttribute", cf.GetAttribute("X-Custom"))
	}
	if !bytes.Equal(custom.Data, payload) {
		t.Errorf("Data = %x, want %x", custom.Data, payload)
	}
	if len(cf.Methods[0].Code().Attributes) != 1 {
		t.Errorf("Code attributes = %d, want 1", len(cf.Methods[0].Code().Attributes))
	}

	out, err := Write(cf)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("Write() did not reproduce the input")
	}
}

func TestAttributeNameResolution(t *testing.T) {
	tc := newTestClass(Java8)
	tc.attrs = append(tc.attrs, testAttr{name: tc.thisClass, body: u2(1)})
	cf, diags := mustParse(t, tc.bytes(t))
	if len(cf.Attributes) != 0 {
		t.Errorf("Attributes = %v, want none", cf.Attributes)
	}
	if len(diags) != 1 || diags[0].Reason != ReasonMalformed || !errors.Is(diags[0].Err, ErrConstantType) {
		t.Errorf("Diagnostics() = %v, want malformed name", diags)
	}
}

func TestForwardVersionedAttribute(t *testing.T) {
	build := func() []byte {
		tc := newTestClass(Java6)
		host := tc.class("Outer")
		tc.attrs = append(tc.attrs, tc.attr(AttrNestHost, u2(host)))
		return tc.bytes(t)
	}

	t.Run("dropped", func(t *testing.T) {
		cf, diags := mustParse(t, build())
		if cf.GetAttribute(AttrNestHost) != nil {
			t.Error("Expected NestHost to be dropped")
		}
		if !hasDiagnostic(diags, AttrNestHost, ReasonForwardVersioned) {
			t.Errorf("Diagnostics() = %v, want forward versioned", diags)
		}
	})

	t.Run("kept", func(t *testing.T) {
		cf, _ := mustParse(t, build(), WithDropForwardVersioned(false))
		if _, ok := cf.GetAttribute(AttrNestHost).(*NestHostAttribute); !ok {
			t.Error("Expected NestHost to be kept")
		}
	})
}

func TestIllegalContext(t *testing.T) {
	tc := newTestClass(Java8)
	tc.method("run", "()V",
		tc.attr(AttrConstantValue, u2(1)),
		tc.attr(AttrCode, codeBody(tc.attr(AttrSourceFile, u2(1)))),
	)
	tc.attrs = append(tc.attrs, tc.attr(AttrLineNumberTable, u2(0)))
	data := tc.bytes(t)

	cf, diags := mustParse(t, data)
	method := &cf.Methods[0]
	if len(method.Attributes) != 1 || method.Code() == nil {
		t.Errorf("method attributes = %v, want only Code", method.Attributes)
	}
	if len(method.Code().Attributes) != 0 {
		t.Errorf("Code attributes = %v, want none", method.Code().Attributes)
	}
	for _, name := range []string{AttrConstantValue, AttrSourceFile, AttrLineNumberTable} {
		if !hasDiagnostic(diags, name, ReasonIllegalContext) {
			t.Errorf("Diagnostics() = %v, want %s in illegal context", diags, name)
		}
	}

	if _, err := ParseBytes(data, WithDropMalformed(false)); !errors.Is(err, ErrIllegalContext) {
		t.Errorf("ParseBytes() error = %v, want ErrIllegalContext", err)
	}
}

func TestSourceDebugExtension(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		keep    bool
	}{
		{"ascii", []byte("SMAP\nTest.java\n"), true},
		{"encoded nul", []byte{'a', 0xC0, 0x80, 'b'}, true},
		{"raw nul", []byte{'a', 0, 'b'}, false},
		{"truncated sequence", []byte{'a', 0xE2, 0x82}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestClass(Java8)
			tc.attrs = append(tc.attrs, tc.attr(AttrSourceDebugExtension, tt.payload))
			cf, diags := mustParse(t, tc.bytes(t))
			sde, ok := cf.GetAttribute(AttrSourceDebugExtension).(*SourceDebugExtensionAttribute)
			if ok != tt.keep {
				t.Fatalf("kept = %v, want %v (diagnostics %v)", ok, tt.keep, diags)
			}
			if ok && !bytes.Equal(sde.DebugExtension, tt.payload) {
				t.Errorf("DebugExtension = %x, want %x", sde.DebugExtension, tt.payload)
			}
		})
	}
}

func TestOakCodeHeader(t *testing.T) {
	tc := newTestClass(Java1)
	tc.minor = 2
	body := cat(u1(3, 4), u2(2), u1(0x03, 0xAC), u2(0), u2(0))
	tc.method("zero", "()I", tc.attr(AttrCode, body))
	data := tc.bytes(t)

	cf, diags := mustParse(t, data)
	if len(diags) != 0 {
		t.Fatalf("Diagnostics() = %v, want none", diags)
	}
	if !cf.IsOak() {
		t.Error("Expected IsOak() to be true")
	}
	code := cf.Methods[0].Code()
	if code == nil {
		t.Fatal("Expected Code attribute")
	}
	if code.MaxStack != 3 || code.MaxLocals != 4 || !bytes.Equal(code.Code, []byte{0x03, 0xAC}) {
		t.Errorf("Code = %+v, want max stack 3, max locals 4, code 03ac", code)
	}

	out, err := Write(cf)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("Write() did not reproduce the narrow Code header")
	}

	code.MaxStack = 300
	if _, err := Write(cf); err == nil {
		t.Error("Write() succeeded with max stack 300 in an Oak class")
	}
}

func TestOakBoundary(t *testing.T) {
	tests := []struct {
		major, minor uint16
		want         bool
	}{
		{44, 65535, true},
		{45, 0, true},
		{45, 2, true},
		{45, 3, false},
		{46, 0, false},
	}
	for _, tt := range tests {
		if got := IsOak(tt.major, tt.minor); got != tt.want {
			t.Errorf("IsOak(%d, %d) = %v, want %v", tt.major, tt.minor, got, tt.want)
		}
	}
}

func TestStackMapFrames(t *testing.T) {
	object := func(tc *testClass) uint16 { return tc.class("java/lang/String") }

	tests := []struct {
		name  string
		frame func(tc *testClass) []byte
		want  StackMapFrame
	}{
		{"same 63", func(*testClass) []byte { return u1(63) }, &SameFrame{OffsetDelta: 63}},
		{"same locals 64", func(*testClass) []byte { return u1(64, uint8(VerificationInteger)) },
			&SameLocalsOneStackItem{OffsetDelta: 0, Stack: VerificationTypeInfo{Tag: VerificationInteger}}},
		{"same locals extended 247", func(*testClass) []byte { return cat(u1(247), u2(300), u1(uint8(VerificationNull))) },
			&SameLocalsOneStackItemExtended{OffsetDelta: 300, Stack: VerificationTypeInfo{Tag: VerificationNull}}},
		{"chop 249", func(*testClass) []byte { return cat(u1(249), u2(10)) },
			&ChopFrame{OffsetDelta: 10, AbsentLocals: 2}},
		{"append 252", func(*testClass) []byte { return cat(u1(252), u2(4), u1(uint8(VerificationLong))) },
			&AppendFrame{OffsetDelta: 4, Locals: []VerificationTypeInfo{{Tag: VerificationLong}}}},
		{"full 255", func(tc *testClass) []byte {
			return cat(u1(255), u2(7), u2(2), u1(uint8(VerificationObject)), u2(object(tc)), u1(uint8(VerificationTop)),
				u2(1), u1(uint8(VerificationUninitialized)), u2(0))
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestClass(Java8)
			frame := tt.frame(tc)
			table := tc.attr(AttrStackMapTable, u2(1), frame)
			tc.method("run", "()V", tc.attr(AttrCode, codeBody(table)))
			data := tc.bytes(t)

			cf, diags := mustParse(t, data)
			if len(diags) != 0 {
				t.Fatalf("Diagnostics() = %v, want none", diags)
			}
			smt, ok := FindAttribute[*StackMapTableAttribute](cf.Methods[0].Code().Attributes)
			if !ok || len(smt.Entries) != 1 {
				t.Fatalf("StackMapTable = %v, want one frame", smt)
			}
			got := smt.Entries[0]
			if got.FrameType() != frame[0] {
				t.Errorf("FrameType() = %d, want %d", got.FrameType(), frame[0])
			}
			if tt.want != nil && got.Delta() != tt.want.Delta() {
				t.Errorf("Delta() = %d, want %d", got.Delta(), tt.want.Delta())
			}
			if full, ok := got.(*FullFrame); ok {
				if len(full.Locals) != 2 || len(full.Stack) != 1 || full.Locals[0].Tag != VerificationObject {
					t.Errorf("FullFrame = %+v", full)
				}
			}

			out, err := Write(cf)
			if err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if !bytes.Equal(out, data) {
				t.Error("Write() did not reproduce the frame")
			}
		})
	}
}

func TestReservedFrameType(t *testing.T) {
	tc := newTestClass(Java8)
	table := tc.attr(AttrStackMapTable, u2(1), u1(150))
	tc.method("run", "()V", tc.attr(AttrCode, codeBody(table)))
	data := tc.bytes(t)

	cf, diags := mustParse(t, data)
	if len(cf.Methods[0].Code().Attributes) != 0 {
		t.Error("Expected StackMapTable to be dropped")
	}
	if !hasDiagnostic(diags, AttrStackMapTable, ReasonMalformed) || !errors.Is(diags[0].Err, ErrIllegalFrame) {
		t.Errorf("Diagnostics() = %v, want illegal frame", diags)
	}

	_, err := ParseBytes(data, WithDropMalformed(false))
	if !errors.Is(err, ErrIllegalFrame) {
		t.Errorf("ParseBytes() error = %v, want ErrIllegalFrame", err)
	}
}

func TestWriteFrameValidation(t *testing.T) {
	tests := []struct {
		name  string
		frame StackMapFrame
	}{
		{"same delta 64", &SameFrame{OffsetDelta: 64}},
		{"chop 0", &ChopFrame{AbsentLocals: 0}},
		{"chop 4", &ChopFrame{AbsentLocals: 4}},
		{"append 4", &AppendFrame{Locals: make([]VerificationTypeInfo, 4)}},
		{"bad verification tag", &FullFrame{Locals: []VerificationTypeInfo{{Tag: 9}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cf := modelClass(t)
			cp := cf.ConstantPool
			name, _ := cp.Add(&ConstantUtf8Info{Value: AttrStackMapTable})
			code := cf.Methods[0].Code()
			code.Attributes = []Attribute{&StackMapTableAttribute{NameIndex: name, Entries: []StackMapFrame{tt.frame}}}
			if _, err := Write(cf); !errors.Is(err, ErrIllegalFrame) {
				t.Errorf("Write() error = %v, want ErrIllegalFrame", err)
			}
		})
	}
}

func TestAnnotations(t *testing.T) {
	annotation := func(tc *testClass, typ string) []byte {
		return cat(u2(tc.utf8(typ)), u2(1), u2(tc.utf8("value")), u1('I'), u2(tc.add(&ConstantIntegerInfo{Value: 1})))
	}

	t.Run("decoded", func(t *testing.T) {
		tc := newTestClass(Java8)
		tc.attrs = append(tc.attrs, tc.attr(AttrRuntimeVisibleAnnotations, u2(2), annotation(tc, "LA;"), annotation(tc, "LB;")))
		data := tc.bytes(t)
		cf, diags := mustParse(t, data)
		if len(diags) != 0 {
			t.Fatalf("Diagnostics() = %v, want none", diags)
		}
		rva, ok := cf.GetAttribute(AttrRuntimeVisibleAnnotations).(*AnnotationsAttribute)
		if !ok || len(rva.Annotations) != 2 {
			t.Fatalf("RuntimeVisibleAnnotations = %v, want two annotations", rva)
		}
		pair := rva.Annotations[0].ElementValuePairs[0]
		if cf.ConstantPool.GetUtf8(pair.ElementNameIndex) != "value" || pair.Value.Tag() != 'I' {
			t.Errorf("pair = %+v", pair)
		}
		out, err := Write(cf)
		if err != nil || !bytes.Equal(out, data) {
			t.Errorf("Write() = %v, did not reproduce input", err)
		}
	})

	t.Run("duplicates dropped", func(t *testing.T) {
		tc := newTestClass(Java8)
		tc.attrs = append(tc.attrs, tc.attr(AttrRuntimeVisibleAnnotations, u2(2), annotation(tc, "LA;"), annotation(tc, "LA;")))
		data := tc.bytes(t)

		cf, diags := mustParse(t, data)
		rva := cf.GetAttribute(AttrRuntimeVisibleAnnotations).(*AnnotationsAttribute)
		if len(rva.Annotations) != 1 {
			t.Errorf("len(Annotations) = %d, want 1", len(rva.Annotations))
		}
		if !hasDiagnostic(diags, AttrRuntimeVisibleAnnotations, ReasonDuplicateAnnotation) {
			t.Fatalf("Diagnostics() = %v, want duplicate", diags)
		}
		for _, d := range diags {
			if d.Reason != ReasonDuplicateAnnotation {
				continue
			}
			if d.Context != ContextClass || d.Err == nil || !strings.Contains(d.Err.Error(), "LA;") {
				t.Errorf("duplicate diagnostic = %v, want class context naming LA;", d)
			}
		}

		cf, _ = mustParse(t, data, WithDropDuplicateAnnotations(false))
		rva = cf.GetAttribute(AttrRuntimeVisibleAnnotations).(*AnnotationsAttribute)
		if len(rva.Annotations) != 2 {
			t.Errorf("len(Annotations) = %d, want 2", len(rva.Annotations))
		}
	})

	t.Run("repeated parameter annotations kept", func(t *testing.T) {
		tc := newTestClass(Java8)
		body := cat(u1(1), u2(2), annotation(tc, "LA;"), annotation(tc, "LA;"))
		tc.method("run", "(I)V", tc.attr(AttrRuntimeVisibleParameterAnnotations, body))
		data := tc.bytes(t)

		cf, diags := mustParse(t, data)
		if len(diags) != 0 {
			t.Fatalf("Diagnostics() = %v, want none", diags)
		}
		attr, ok := FindAttribute[*ParameterAnnotationsAttribute](cf.Methods[0].Attributes)
		if !ok {
			t.Fatal("Expected parameter annotations on run")
		}
		if got := len(attr.ParameterAnnotations[0]); got != 2 {
			t.Errorf("len(ParameterAnnotations[0]) = %d, want 2", got)
		}
		out, err := Write(cf)
		if err != nil || !bytes.Equal(out, data) {
			t.Errorf("Write() = %v, did not reproduce input", err)
		}
	})

	t.Run("empty dropped", func(t *testing.T) {
		tc := newTestClass(Java8)
		tc.attrs = append(tc.attrs, tc.attr(AttrRuntimeInvisibleAnnotations, u2(0)))
		tc.method("run", "()V", tc.attr(AttrRuntimeVisibleParameterAnnotations, u1(0)))
		_, diags := mustParse(t, tc.bytes(t))
		if !hasDiagnostic(diags, AttrRuntimeInvisibleAnnotations, ReasonEmpty) {
			t.Errorf("Diagnostics() = %v, want empty annotations", diags)
		}
		if !hasDiagnostic(diags, AttrRuntimeVisibleParameterAnnotations, ReasonEmpty) {
			t.Errorf("Diagnostics() = %v, want empty parameter annotations", diags)
		}
	})

	t.Run("repeated element name", func(t *testing.T) {
		tc := newTestClass(Java8)
		value := tc.add(&ConstantIntegerInfo{Value: 1})
		name := tc.utf8("value")
		body := cat(u2(1), u2(tc.utf8("LA;")), u2(2), u2(name), u1('I'), u2(value), u2(name), u1('I'), u2(value))
		tc.attrs = append(tc.attrs, tc.attr(AttrRuntimeVisibleAnnotations, body))
		_, diags := mustParse(t, tc.bytes(t))
		if !hasDiagnostic(diags, AttrRuntimeVisibleAnnotations, ReasonMalformed) {
			t.Errorf("Diagnostics() = %v, want malformed", diags)
		}
	})

	t.Run("type index not utf8", func(t *testing.T) {
		tc := newTestClass(Java8)
		tc.attrs = append(tc.attrs, tc.attr(AttrRuntimeVisibleAnnotations, u2(1), u2(tc.thisClass), u2(0)))
		_, diags := mustParse(t, tc.bytes(t))
		if !hasDiagnostic(diags, AttrRuntimeVisibleAnnotations, ReasonMalformed) {
			t.Errorf("Diagnostics() = %v, want malformed", diags)
		}
	})

	t.Run("unknown element tag", func(t *testing.T) {
		tc := newTestClass(Java8)
		tc.method("value", "()I", tc.attr(AttrAnnotationDefault, u1('X'), u2(1)))
		_, diags := mustParse(t, tc.bytes(t))
		if !hasDiagnostic(diags, AttrAnnotationDefault, ReasonMalformed) {
			t.Errorf("Diagnostics() = %v, want malformed", diags)
		}
	})
}

func TestElementValueDepth(t *testing.T) {
	nested := func(levels int) []byte {
		var out []byte
		for range levels {
			out = append(out, cat(u1('['), u2(1))...)
		}
		return cat(out, u1('I'), u2(1))
	}

	tests := []struct {
		levels int
		keep   bool
	}{
		{2, true},
		{3, false},
	}
	for _, tt := range tests {
		tc := newTestClass(Java8)
		tc.add(&ConstantIntegerInfo{Value: 1})
		tc.method("value", "()[[[I", tc.attr(AttrAnnotationDefault, nested(tt.levels)))
		cf, diags := mustParse(t, tc.bytes(t), WithMaxDepth(2))
		_, ok := FindAttribute[*AnnotationDefaultAttribute](cf.Methods[0].Attributes)
		if ok != tt.keep {
			t.Errorf("levels %d: kept = %v, want %v", tt.levels, ok, tt.keep)
		}
		if !tt.keep && !hasDiagnostic(diags, AttrAnnotationDefault, ReasonDepthExceeded) {
			t.Errorf("levels %d: Diagnostics() = %v, want depth exceeded", tt.levels, diags)
		}
	}
}

func TestAttributeDepth(t *testing.T) {
	tc := newTestClass(Java17)
	signature := tc.attr(AttrSignature, u2(tc.utf8("I")))
	record := tc.attr(AttrRecord, u2(1), u2(tc.utf8("x")), u2(tc.utf8("I")), encode(signature))
	tc.attrs = append(tc.attrs, record)
	data := tc.bytes(t)

	cf, _ := mustParse(t, data)
	rec, ok := cf.GetAttribute(AttrRecord).(*RecordAttribute)
	if !ok || len(rec.Components) != 1 || len(rec.Components[0].Attributes) != 1 {
		t.Fatalf("Record = %+v, want one component with a signature", rec)
	}
	out, err := Write(cf)
	if err != nil || !bytes.Equal(out, data) {
		t.Errorf("Write() = %v, did not reproduce input", err)
	}

	cf, diags := mustParse(t, data, WithMaxDepth(0))
	if cf.GetAttribute(AttrRecord) != nil {
		t.Error("Expected Record to be dropped")
	}
	if !hasDiagnostic(diags, AttrRecord, ReasonDepthExceeded) {
		t.Errorf("Diagnostics() = %v, want depth exceeded", diags)
	}
}

func TestTypeAnnotationContext(t *testing.T) {
	typeAnnotation := func(tc *testClass, target uint8, info []byte) []byte {
		return cat(u2(1), u1(target), info, u1(0), u2(tc.utf8("LT;")), u2(0))
	}

	t.Run("field target on field", func(t *testing.T) {
		tc := newTestClass(Java8)
		tc.field("x", "I", tc.attr(AttrRuntimeVisibleTypeAnnotations, typeAnnotation(tc, TargetField, nil)))
		data := tc.bytes(t)
		cf, diags := mustParse(t, data)
		if len(diags) != 0 {
			t.Fatalf("Diagnostics() = %v, want none", diags)
		}
		out, err := Write(cf)
		if err != nil || !bytes.Equal(out, data) {
			t.Errorf("Write() = %v, did not reproduce input", err)
		}
	})

	t.Run("same type on distinct paths", func(t *testing.T) {
		tc := newTestClass(Java8)
		typ := tc.utf8("LNonNull;")
		body := cat(u2(2),
			u1(TargetField), u1(0), u2(typ), u2(0),
			u1(TargetField), u1(1), u1(3), u1(0), u2(typ), u2(0))
		tc.field("names", "[Ljava/lang/String;", tc.attr(AttrRuntimeVisibleTypeAnnotations, body))
		data := tc.bytes(t)

		cf, diags := mustParse(t, data)
		if len(diags) != 0 {
			t.Fatalf("Diagnostics() = %v, want none", diags)
		}
		attr, ok := FindAttribute[*TypeAnnotationsAttribute](cf.Fields[0].Attributes)
		if !ok {
			t.Fatal("Expected type annotations on names")
		}
		if len(attr.Annotations) != 2 {
			t.Fatalf("len(Annotations) = %d, want 2", len(attr.Annotations))
		}
		if path := attr.Annotations[1].TargetPath; len(path) != 1 || path[0].TypePathKind != 3 {
			t.Errorf("Annotations[1].TargetPath = %+v, want one type argument step", path)
		}
		out, err := Write(cf)
		if err != nil || !bytes.Equal(out, data) {
			t.Errorf("Write() = %v, did not reproduce input", err)
		}
	})

	t.Run("field target on method", func(t *testing.T) {
		tc := newTestClass(Java8)
		tc.method("run", "()V", tc.attr(AttrRuntimeVisibleTypeAnnotations, typeAnnotation(tc, TargetField, nil)))
		_, diags := mustParse(t, tc.bytes(t))
		if !hasDiagnostic(diags, AttrRuntimeVisibleTypeAnnotations, ReasonIllegalContext) {
			t.Errorf("Diagnostics() = %v, want illegal context", diags)
		}
	})

	t.Run("local variable target in code", func(t *testing.T) {
		tc := newTestClass(Java8)
		info := cat(u2(1), u2(0, 1, 0))
		ta := tc.attr(AttrRuntimeInvisibleTypeAnnotations, typeAnnotation(tc, TargetLocalVariable, info))
		tc.method("run", "()V", tc.attr(AttrCode, codeBody(ta)))
		data := tc.bytes(t)
		cf, diags := mustParse(t, data)
		if len(diags) != 0 {
			t.Fatalf("Diagnostics() = %v, want none", diags)
		}
		attr, ok := FindAttribute[*TypeAnnotationsAttribute](cf.Methods[0].Code().Attributes)
		if !ok {
			t.Fatal("Expected type annotations in Code")
		}
		if lv, ok := attr.Annotations[0].TargetInfo.(*LocalVarTarget); !ok || len(lv.Table) != 1 {
			t.Errorf("TargetInfo = %+v, want one local variable", attr.Annotations[0].TargetInfo)
		}
		out, err := Write(cf)
		if err != nil || !bytes.Equal(out, data) {
			t.Errorf("Write() = %v, did not reproduce input", err)
		}
	})

	t.Run("unknown target", func(t *testing.T) {
		tc := newTestClass(Java8)
		tc.attrs = append(tc.attrs, tc.attr(AttrRuntimeVisibleTypeAnnotations, typeAnnotation(tc, 0x30, nil)))
		_, diags := mustParse(t, tc.bytes(t))
		if !hasDiagnostic(diags, AttrRuntimeVisibleTypeAnnotations, ReasonMalformed) {
			t.Errorf("Diagnostics() = %v, want malformed", diags)
		}
	})
}

func TestModifiedUtf8Constants(t *testing.T) {
	tests := []struct {
		name  string
		raw   []byte
		value string
	}{
		{"ascii", []byte("hello"), "hello"},
		{"nul", []byte{'a', 0xC0, 0x80}, "a\x00"},
		{"two byte", []byte{0xC3, 0xA9}, "é"},
		{"supplementary", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}, "\U0001F600"},
		{"overlong ascii", []byte{0xC1, 0x81}, "A"},
		{"lone surrogate", []byte{0xED, 0xA0, 0x80}, "\xed\xa0\x80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestClass(Java8)
			data := tc.bytes(t)
			// append a Utf8 entry with the raw bytes to the pool
			entry := cat(u1(uint8(ConstantUtf8)), u2(uint16(len(tt.raw))), tt.raw)
			count := uint16(tc.cp.Size() + 2)
			poolEnd := len(data) - 14
			data = cat(data[:8], u2(count), data[10:poolEnd], entry, data[poolEnd:])

			cf, _ := mustParse(t, data)
			index := uint16(tc.cp.Size() + 1)
			if got := cf.ConstantPool.GetUtf8(index); got != tt.value {
				t.Errorf("GetUtf8() = %q, want %q", got, tt.value)
			}
			out, err := Write(cf)
			if err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if !bytes.Equal(out, data) {
				t.Errorf("Write() did not reproduce %x", tt.raw)
			}
		})
	}
}

func TestModifiedUtf8Encoding(t *testing.T) {
	tests := []struct {
		value string
		want  []byte
	}{
		{"", nil},
		{"\x00", []byte{0xC0, 0x80}},
		{"€", []byte{0xE2, 0x82, 0xAC}},
		{"\U0001F600", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}},
	}
	for _, tt := range tests {
		got := encodeModifiedUtf8(tt.value)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("encodeModifiedUtf8(%q) = %x, want %x", tt.value, got, tt.want)
		}
		back, ok := decodeModifiedUtf8(got)
		if !ok || back != tt.value {
			t.Errorf("decodeModifiedUtf8(%x) = %q, %v, want %q", got, back, ok, tt.value)
		}
	}
}

func TestUnmarshalBinary(t *testing.T) {
	data := newTestClass(Java8).bytes(t)
	var cf ClassFile
	if err := cf.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary() error = %v", err)
	}
	out, err := cf.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("MarshalBinary() did not reproduce the input")
	}
}
