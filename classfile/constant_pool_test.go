package classfile

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func utf8Entry(s string) *ConstantUtf8Info { return &ConstantUtf8Info{Value: s} }

func TestConstantPoolGhostSlot(t *testing.T) {
	cp := NewConstantPool(utf8Entry("a"), &ConstantLongInfo{Value: 42}, utf8Entry("b"))

	if cp.Size() != 4 {
		t.Errorf("Size() = %d, want 4", cp.Size())
	}
	tests := []struct {
		index uint16
		want  string
		err   error
	}{
		{0, "", ErrOutOfBounds},
		{1, "a", nil},
		{2, "42L", nil},
		{3, "", ErrOutOfBounds},
		{4, "b", nil},
		{5, "", ErrOutOfBounds},
	}
	for _, tt := range tests {
		_, err := cp.Get(tt.index)
		if !errors.Is(err, tt.err) {
			t.Errorf("Get(%d) error = %v, want %v", tt.index, err, tt.err)
		}
		if tt.err == nil {
			if got := cp.Describe(tt.index); got != tt.want && got != `"`+tt.want+`"` {
				t.Errorf("Describe(%d) = %s, want %s", tt.index, got, tt.want)
			}
		}
	}
}

func TestConstantPoolAll(t *testing.T) {
	cp := NewConstantPool(&ConstantDoubleInfo{Value: 1.5}, utf8Entry("x"), &ConstantLongInfo{Value: 1}, utf8Entry("y"))
	var indices []uint16
	for index := range cp.All() {
		indices = append(indices, index)
	}
	if want := []uint16{1, 3, 4, 6}; !slices.Equal(indices, want) {
		t.Errorf("All() indices = %v, want %v", indices, want)
	}
	if index, ok := cp.IndexOfUtf8("y"); !ok || index != 6 {
		t.Errorf("IndexOfUtf8(y) = %d, %v, want 6, true", index, ok)
	}
}

func TestConstantPoolInsertBefore(t *testing.T) {
	cp := NewConstantPool(utf8Entry("a"), &ConstantLongInfo{Value: 7}, utf8Entry("b"))

	if err := cp.InsertBefore(2, &ConstantDoubleInfo{Value: 2}); err != nil {
		t.Fatalf("InsertBefore() error = %v", err)
	}
	if got := cp.Describe(2); got != "2d" {
		t.Errorf("Describe(2) = %s, want 2d", got)
	}
	if got := cp.Describe(4); got != "7L" {
		t.Errorf("Describe(4) = %s, want 7L", got)
	}
	if got := cp.GetUtf8(6); got != "b" {
		t.Errorf("GetUtf8(6) = %q, want b", got)
	}
	if _, err := cp.Get(5); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Get(5) error = %v, want ErrOutOfBounds", err)
	}

	if err := cp.InsertBefore(7, utf8Entry("end")); err != nil {
		t.Fatalf("InsertBefore(Size()+1) error = %v", err)
	}
	if got := cp.GetUtf8(7); got != "end" {
		t.Errorf("GetUtf8(7) = %q, want end", got)
	}
	if err := cp.InsertBefore(3, utf8Entry("ghost")); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("InsertBefore(ghost) error = %v, want ErrOutOfBounds", err)
	}
}

func TestConstantPoolInsertAfter(t *testing.T) {
	cp := NewConstantPool(&ConstantLongInfo{Value: 7}, utf8Entry("b"))
	if err := cp.InsertAfter(1, utf8Entry("a")); err != nil {
		t.Fatalf("InsertAfter() error = %v", err)
	}
	if got := cp.GetUtf8(3); got != "a" {
		t.Errorf("GetUtf8(3) = %q, want a", got)
	}
	if got := cp.GetUtf8(4); got != "b" {
		t.Errorf("GetUtf8(4) = %q, want b", got)
	}
}

func TestConstantPoolSet(t *testing.T) {
	cp := NewConstantPool(utf8Entry("a"), utf8Entry("b"), utf8Entry("c"))

	if err := cp.Set(2, &ConstantLongInfo{Value: 1}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cp.Size() != 4 {
		t.Errorf("Size() = %d, want 4", cp.Size())
	}
	if got := cp.GetUtf8(4); got != "c" {
		t.Errorf("GetUtf8(4) = %q, want c", got)
	}

	if err := cp.Set(2, utf8Entry("B")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := cp.GetUtf8(3); got != "c" {
		t.Errorf("GetUtf8(3) = %q, want c", got)
	}
	if err := cp.Set(9, utf8Entry("x")); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Set(9) error = %v, want ErrOutOfBounds", err)
	}
}

func TestConstantPoolRemove(t *testing.T) {
	cp := NewConstantPool(utf8Entry("a"), &ConstantDoubleInfo{Value: 3}, utf8Entry("b"))
	removed, err := cp.Remove(2)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if removed.Tag() != ConstantDouble {
		t.Errorf("Remove() = %s, want Double", removed.Tag())
	}
	if got := cp.GetUtf8(2); got != "b" {
		t.Errorf("GetUtf8(2) = %q, want b", got)
	}
	if cp.Size() != 2 {
		t.Errorf("Size() = %d, want 2", cp.Size())
	}
}

// poolModel mirrors a pool by index. Slot 0 and ghost slots hold nil.
type poolModel []ConstantPoolEntry

func newPoolModel(entries ...ConstantPoolEntry) poolModel {
	m := poolModel{nil}
	for _, e := range entries {
		m = append(m, e)
		if e.Tag().IsWide() {
			m = append(m, nil)
		}
	}
	return m
}

func (m poolModel) insert(index int, e ConstantPoolEntry) poolModel {
	slots := []ConstantPoolEntry{e}
	if e.Tag().IsWide() {
		slots = append(slots, nil)
	}
	return slices.Insert(slices.Clone(m), index, slots...)
}

func (m poolModel) remove(index int) poolModel {
	end := index + 1
	if m[index].Tag().IsWide() {
		end++
	}
	return slices.Delete(slices.Clone(m), index, end)
}

func checkPoolModel(t *testing.T, op string, cp *ConstantPool, m poolModel) {
	t.Helper()
	if cp.Size() != len(m)-1 {
		t.Fatalf("%s: Size() = %d, want %d", op, cp.Size(), len(m)-1)
	}
	for k := 0; k <= len(m); k++ {
		got, err := cp.Get(uint16(k))
		if k >= len(m) || m[k] == nil {
			if !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("%s: Get(%d) error = %v, want ErrOutOfBounds", op, k, err)
			}
			continue
		}
		if err != nil || got != m[k] {
			t.Errorf("%s: Get(%d) = %v, %v, want %v", op, k, got, err, m[k])
		}
	}
}

func TestConstantPoolIndexStability(t *testing.T) {
	base := func() []ConstantPoolEntry {
		return []ConstantPoolEntry{
			utf8Entry("a"),
			&ConstantLongInfo{Value: 1},
			utf8Entry("b"),
			&ConstantDoubleInfo{Value: 2},
			utf8Entry("c"),
			&ConstantIntegerInfo{Value: 3},
		}
	}
	inserts := []func() ConstantPoolEntry{
		func() ConstantPoolEntry { return utf8Entry("new") },
		func() ConstantPoolEntry { return &ConstantLongInfo{Value: 9} },
	}

	size := NewConstantPool(base()...).Size()
	for i := 1; i <= size; i++ {
		for j := i + 1; j <= size+1; j++ {
			for _, mk := range inserts {
				entries := base()
				cp, m := NewConstantPool(entries...), newPoolModel(entries...)
				if j <= size && m[j] == nil {
					if err := cp.InsertBefore(uint16(j), mk()); !errors.Is(err, ErrOutOfBounds) {
						t.Errorf("InsertBefore(%d) error = %v, want ErrOutOfBounds", j, err)
					}
					continue
				}
				before, _ := cp.Get(uint16(i))
				e := mk()
				if err := cp.InsertBefore(uint16(j), e); err != nil {
					t.Fatalf("InsertBefore(%d) error = %v", j, err)
				}
				m = m.insert(j, e)
				op := fmt.Sprintf("InsertBefore(%d, %s)", j, e.Tag())
				if got, err := cp.Get(uint16(i)); m[i] != nil && (err != nil || got != before) {
					t.Errorf("%s: Get(%d) = %v, %v, want unchanged %v", op, i, got, err, before)
				}
				checkPoolModel(t, op, cp, m)
			}

			if j > size {
				continue
			}
			entries := base()
			cp, m := NewConstantPool(entries...), newPoolModel(entries...)
			if m[j] == nil {
				if _, err := cp.Remove(uint16(j)); !errors.Is(err, ErrOutOfBounds) {
					t.Errorf("Remove(%d) error = %v, want ErrOutOfBounds", j, err)
				}
				continue
			}
			before, _ := cp.Get(uint16(i))
			if _, err := cp.Remove(uint16(j)); err != nil {
				t.Fatalf("Remove(%d) error = %v", j, err)
			}
			m = m.remove(j)
			op := fmt.Sprintf("Remove(%d)", j)
			if got, err := cp.Get(uint16(i)); m[i] != nil && (err != nil || got != before) {
				t.Errorf("%s: Get(%d) = %v, %v, want unchanged %v", op, i, got, err, before)
			}
			checkPoolModel(t, op, cp, m)
		}
	}
}

func TestConstantPoolFull(t *testing.T) {
	cp := NewConstantPool()
	for i := 0; i < maxPoolSize-1; i++ {
		if _, err := cp.Add(&ConstantIntegerInfo{Value: int32(i)}); err != nil {
			t.Fatalf("Add(%d) error = %v", i, err)
		}
	}
	if _, err := cp.Add(&ConstantLongInfo{}); !errors.Is(err, ErrPoolFull) {
		t.Errorf("Add(Long) error = %v, want ErrPoolFull", err)
	}
	index, err := cp.Add(&ConstantIntegerInfo{})
	if err != nil || index != maxPoolSize {
		t.Errorf("Add() = %d, %v, want %d", index, err, maxPoolSize)
	}
	if _, err := cp.Add(&ConstantIntegerInfo{}); !errors.Is(err, ErrPoolFull) {
		t.Errorf("Add() error = %v, want ErrPoolFull", err)
	}
}

func TestConstantPoolGetters(t *testing.T) {
	cp := NewConstantPool(
		utf8Entry("java/lang/String"),
		&ConstantClassInfo{NameIndex: 1},
		utf8Entry("length"),
		utf8Entry("()I"),
		&ConstantNameAndTypeInfo{NameIndex: 3, DescriptorIndex: 4},
		&ConstantMethodrefInfo{ClassIndex: 2, NameAndTypeIndex: 5},
		&ConstantStringInfo{StringIndex: 3},
		&ConstantMethodTypeInfo{DescriptorIndex: 4},
		&ConstantMethodHandleInfo{ReferenceKind: RefInvokeVirtual, ReferenceIndex: 6},
		&ConstantModuleInfo{NameIndex: 3},
		&ConstantPackageInfo{NameIndex: 1},
	)

	if got := cp.GetClassName(2); got != "java/lang/String" {
		t.Errorf("GetClassName() = %q, want java/lang/String", got)
	}
	if class, name, desc := cp.GetMemberRef(6); class != "java/lang/String" || name != "length" || desc != "()I" {
		t.Errorf("GetMemberRef() = %q, %q, %q", class, name, desc)
	}
	if got := cp.GetString(7); got != "length" {
		t.Errorf("GetString() = %q, want length", got)
	}
	if got := cp.GetMethodType(8); got != "()I" {
		t.Errorf("GetMethodType() = %q, want ()I", got)
	}
	if got := cp.GetModuleName(10); got != "length" {
		t.Errorf("GetModuleName() = %q, want length", got)
	}
	if got := cp.GetPackageName(11); got != "java/lang/String" {
		t.Errorf("GetPackageName() = %q, want java/lang/String", got)
	}
	if got := cp.Describe(9); got != "REF_invokeVirtual java/lang/String.length:()I" {
		t.Errorf("Describe(9) = %q", got)
	}

	t.Run("wrong type", func(t *testing.T) {
		if got := cp.GetClassName(1); got != "" {
			t.Errorf("GetClassName(1) = %q, want empty", got)
		}
		if _, err := cp.Utf8(2); !errors.Is(err, ErrConstantType) {
			t.Errorf("Utf8(2) error = %v, want ErrConstantType", err)
		}
		if cp.IsIndexOfType(2, ConstantUtf8) {
			t.Error("IsIndexOfType(2, Utf8) = true, want false")
		}
	})

	t.Run("nil pool", func(t *testing.T) {
		var empty *ConstantPool
		if got := empty.GetUtf8(1); got != "" {
			t.Errorf("GetUtf8() = %q, want empty", got)
		}
	})
}
