package classfile

import (
	"testing"

	"golang.org/x/crypto/cryptobyte"
)

// testClass assembles raw class-file bytes so tests can describe exactly
// what a reader sees, including attributes the encoder would refuse.
type testClass struct {
	minor, major uint16
	cp           *ConstantPool
	flags        AccessFlags
	thisClass    uint16
	superClass   uint16
	interfaces   []uint16
	fields       []testMember
	methods      []testMember
	attrs        []testAttr
}

type testMember struct {
	flags      AccessFlags
	name, desc uint16
	attrs      []testAttr
}

// testAttr is an attribute as written on disk. overrun is added to the
// declared length without adding bytes.
type testAttr struct {
	name    uint16
	body    []byte
	overrun int
}

func newTestClass(major uint16) *testClass {
	tc := &testClass{major: major, cp: NewConstantPool(), flags: AccPublic | AccSuper}
	tc.thisClass = tc.class("Test")
	tc.superClass = tc.class("java/lang/Object")
	return tc
}

func (tc *testClass) add(e ConstantPoolEntry) uint16 {
	index, err := tc.cp.Add(e)
	if err != nil {
		panic(err)
	}
	return index
}

func (tc *testClass) utf8(s string) uint16 {
	if index, ok := tc.cp.IndexOfUtf8(s); ok {
		return index
	}
	return tc.add(&ConstantUtf8Info{Value: s})
}

func (tc *testClass) class(name string) uint16 {
	return tc.add(&ConstantClassInfo{NameIndex: tc.utf8(name)})
}

func (tc *testClass) attr(name string, body ...[]byte) testAttr {
	return testAttr{name: tc.utf8(name), body: cat(body...)}
}

func (tc *testClass) field(name, desc string, attrs ...testAttr) {
	tc.fields = append(tc.fields, testMember{flags: AccPrivate, name: tc.utf8(name), desc: tc.utf8(desc), attrs: attrs})
}

func (tc *testClass) method(name, desc string, attrs ...testAttr) {
	tc.methods = append(tc.methods, testMember{flags: AccPublic, name: tc.utf8(name), desc: tc.utf8(desc), attrs: attrs})
}

func (tc *testClass) bytes(t *testing.T) []byte {
	t.Helper()
	b := cryptobyte.NewBuilder(nil)
	b.AddUint32(Magic)
	b.AddUint16(tc.minor)
	b.AddUint16(tc.major)
	writeConstantPool(b, tc.cp)
	b.AddUint16(uint16(tc.flags))
	b.AddUint16(tc.thisClass)
	b.AddUint16(tc.superClass)
	b.AddUint16(uint16(len(tc.interfaces)))
	for _, iface := range tc.interfaces {
		b.AddUint16(iface)
	}
	for _, members := range [][]testMember{tc.fields, tc.methods} {
		b.AddUint16(uint16(len(members)))
		for _, m := range members {
			b.AddUint16(uint16(m.flags))
			b.AddUint16(m.name)
			b.AddUint16(m.desc)
			addTestAttrs(b, m.attrs)
		}
	}
	addTestAttrs(b, tc.attrs)
	out, err := b.Bytes()
	if err != nil {
		t.Fatalf("Failed to build test class: %v", err)
	}
	return out
}

// encode renders attrs as a u2-counted attribute table, for nesting inside
// Code or Record bodies.
func encode(attrs ...testAttr) []byte {
	b := cryptobyte.NewBuilder(nil)
	addTestAttrs(b, attrs)
	return b.BytesOrPanic()
}

func addTestAttrs(b *cryptobyte.Builder, attrs []testAttr) {
	b.AddUint16(uint16(len(attrs)))
	for _, a := range attrs {
		b.AddUint16(a.name)
		b.AddUint32(uint32(len(a.body) + a.overrun))
		b.AddBytes(a.body)
	}
}

func u1(vs ...uint8) []byte {
	return vs
}

func u2(vs ...uint16) []byte {
	out := make([]byte, 0, 2*len(vs))
	for _, v := range vs {
		out = append(out, byte(v>>8), byte(v))
	}
	return out
}

func u4(vs ...uint32) []byte {
	out := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		out = append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	return out
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// codeBody is a Code attribute body with a single return instruction.
func codeBody(nested ...testAttr) []byte {
	return cat(u2(1, 1), u4(1), u1(0xB1), u2(0), encode(nested...))
}

func mustParse(t *testing.T, data []byte, opts ...Option) (*ClassFile, []Diagnostic) {
	t.Helper()
	rd := NewReader(opts...)
	cf, err := rd.Read(data)
	if err != nil {
		t.Fatalf("Failed to parse class file: %v", err)
	}
	return cf, rd.Diagnostics()
}

func hasDiagnostic(diags []Diagnostic, name string, reason Reason) bool {
	for _, d := range diags {
		if d.Name == name && d.Reason == reason {
			return true
		}
	}
	return false
}
