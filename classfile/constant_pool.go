package classfile

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strconv"
)

type ConstantPoolEntry interface {
	Tag() ConstantTag
}

type ConstantUtf8Info struct {
	Value string

	// raw holds the original bytes when they do not re-encode to the
	// same sequence; it is written back as long as Value is unchanged.
	raw      []byte
	rawValue string
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }

type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }

type ConstantFloatInfo struct {
	Value float32
}

func (c *ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }

type ConstantLongInfo struct {
	Value int64
}

func (c *ConstantLongInfo) Tag() ConstantTag { return ConstantLong }

type ConstantDoubleInfo struct {
	Value float64
}

func (c *ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }

type ConstantStringInfo struct {
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() ConstantTag { return ConstantString }

type ConstantFieldrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldrefInfo) Tag() ConstantTag { return ConstantFieldref }

type ConstantMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodrefInfo) Tag() ConstantTag { return ConstantMethodref }

type ConstantInterfaceMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantInterfaceMethodrefInfo) Tag() ConstantTag { return ConstantInterfaceMethodref }

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }

type ConstantMethodHandleInfo struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandleInfo) Tag() ConstantTag { return ConstantMethodHandle }

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodTypeInfo) Tag() ConstantTag { return ConstantMethodType }

type ConstantDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantDynamicInfo) Tag() ConstantTag { return ConstantDynamic }

type ConstantInvokeDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantInvokeDynamicInfo) Tag() ConstantTag { return ConstantInvokeDynamic }

type ConstantModuleInfo struct {
	NameIndex uint16
}

func (c *ConstantModuleInfo) Tag() ConstantTag { return ConstantModule }

type ConstantPackageInfo struct {
	NameIndex uint16
}

func (c *ConstantPackageInfo) Tag() ConstantTag { return ConstantPackage }

func newUtf8Info(b []byte) *ConstantUtf8Info {
	value, _ := decodeModifiedUtf8(b)
	entry := &ConstantUtf8Info{Value: value}
	if enc := encodeModifiedUtf8(value); string(enc) != string(b) {
		entry.raw = b
		entry.rawValue = value
	}
	return entry
}

func (c *ConstantUtf8Info) encoded() []byte {
	if c.raw != nil && c.Value == c.rawValue {
		return c.raw
	}
	return encodeModifiedUtf8(c.Value)
}

// ConstantPool stores entries in physical order and resolves the 1-based
// logical indices used by the rest of the class file. Long and Double
// entries take two logical slots; the second one holds nothing.
type ConstantPool struct {
	entries []ConstantPoolEntry
	// physical positions of Long and Double entries, ascending
	wide []int
}

// maxPoolSize is the largest logical size whose count still fits in a u2.
const maxPoolSize = 0xFFFE

func NewConstantPool(entries ...ConstantPoolEntry) *ConstantPool {
	cp := &ConstantPool{}
	for _, e := range entries {
		cp.insertAt(len(cp.entries), e)
	}
	return cp
}

// Size is the number of logical slots, counting both halves of wide
// entries. The class file stores Size()+1 as the pool count.
func (cp *ConstantPool) Size() int {
	return len(cp.entries) + len(cp.wide)
}

func (cp *ConstantPool) widesBefore(p int) int {
	return sort.SearchInts(cp.wide, p)
}

func (cp *ConstantPool) isWideAt(p int) bool {
	i := sort.SearchInts(cp.wide, p)
	return i < len(cp.wide) && cp.wide[i] == p
}

func (cp *ConstantPool) logical(p int) int {
	return 1 + p + cp.widesBefore(p)
}

func (cp *ConstantPool) physical(index uint16) (int, error) {
	l := int(index)
	if l == 0 {
		return 0, fmt.Errorf("%w: index 0", ErrOutOfBounds)
	}
	p := sort.Search(len(cp.entries), func(p int) bool { return cp.logical(p) >= l })
	if p < len(cp.entries) && cp.logical(p) == l {
		return p, nil
	}
	if p > 0 && cp.isWideAt(p-1) && cp.logical(p-1)+1 == l {
		return 0, fmt.Errorf("%w: index %d is the second slot of a %s", ErrOutOfBounds, l, cp.entries[p-1].Tag())
	}
	return 0, fmt.Errorf("%w: index %d, pool size %d", ErrOutOfBounds, l, cp.Size())
}

func (cp *ConstantPool) insertAt(p int, e ConstantPoolEntry) {
	cp.entries = slices.Insert(cp.entries, p, e)
	for i := range cp.wide {
		if cp.wide[i] >= p {
			cp.wide[i]++
		}
	}
	if e.Tag().IsWide() {
		cp.wide = slices.Insert(cp.wide, cp.widesBefore(p), p)
	}
}

func (cp *ConstantPool) removeAt(p int) ConstantPoolEntry {
	e := cp.entries[p]
	cp.entries = slices.Delete(cp.entries, p, p+1)
	if i := cp.widesBefore(p); i < len(cp.wide) && cp.wide[i] == p {
		cp.wide = slices.Delete(cp.wide, i, i+1)
	}
	for i := range cp.wide {
		if cp.wide[i] > p {
			cp.wide[i]--
		}
	}
	return e
}

func (cp *ConstantPool) checkRoom(e ConstantPoolEntry) error {
	need := 1
	if e.Tag().IsWide() {
		need = 2
	}
	if cp.Size()+need > maxPoolSize {
		return fmt.Errorf("%w: adding %s to %d slots", ErrPoolFull, e.Tag(), cp.Size())
	}
	return nil
}

// Get returns the entry at a logical index. It fails with ErrOutOfBounds for
// index 0, indices past the end and the empty slot after a wide entry.
func (cp *ConstantPool) Get(index uint16) (ConstantPoolEntry, error) {
	p, err := cp.physical(index)
	if err != nil {
		return nil, err
	}
	return cp.entries[p], nil
}

// Add appends e and returns its logical index.
func (cp *ConstantPool) Add(e ConstantPoolEntry) (uint16, error) {
	if err := cp.checkRoom(e); err != nil {
		return 0, err
	}
	index := uint16(cp.Size() + 1)
	cp.insertAt(len(cp.entries), e)
	return index, nil
}

// InsertBefore places e at logical index, moving the entry that was there
// and everything after it up by one or two slots.
func (cp *ConstantPool) InsertBefore(index uint16, e ConstantPoolEntry) error {
	if int(index) == cp.Size()+1 {
		_, err := cp.Add(e)
		return err
	}
	p, err := cp.physical(index)
	if err != nil {
		return err
	}
	if err := cp.checkRoom(e); err != nil {
		return err
	}
	cp.insertAt(p, e)
	return nil
}

// InsertAfter places e directly after the entry at logical index.
func (cp *ConstantPool) InsertAfter(index uint16, e ConstantPoolEntry) error {
	p, err := cp.physical(index)
	if err != nil {
		return err
	}
	if err := cp.checkRoom(e); err != nil {
		return err
	}
	cp.insertAt(p+1, e)
	return nil
}

// Remove deletes the entry at logical index and returns it. Later entries
// move down by the width of the removed entry.
func (cp *ConstantPool) Remove(index uint16) (ConstantPoolEntry, error) {
	p, err := cp.physical(index)
	if err != nil {
		return nil, err
	}
	return cp.removeAt(p), nil
}

// Set replaces the entry at logical index. Replacing a narrow entry with a
// wide one shifts later entries up by one slot, and the reverse shifts them
// down.
func (cp *ConstantPool) Set(index uint16, e ConstantPoolEntry) error {
	p, err := cp.physical(index)
	if err != nil {
		return err
	}
	old := cp.entries[p]
	if e.Tag().IsWide() && !old.Tag().IsWide() && cp.Size()+1 > maxPoolSize {
		return fmt.Errorf("%w: widening index %d", ErrPoolFull, index)
	}
	cp.removeAt(p)
	cp.insertAt(p, e)
	return nil
}

func (cp *ConstantPool) IsIndexOfType(index uint16, tag ConstantTag) bool {
	e, err := cp.Get(index)
	return err == nil && e.Tag() == tag
}

// All yields every entry with its logical index, skipping empty wide slots.
func (cp *ConstantPool) All() iter.Seq2[uint16, ConstantPoolEntry] {
	return func(yield func(uint16, ConstantPoolEntry) bool) {
		index := 1
		for _, e := range cp.entries {
			if !yield(uint16(index), e) {
				return
			}
			index++
			if e.Tag().IsWide() {
				index++
			}
		}
	}
}

// Utf8 is the strict form of GetUtf8.
func (cp *ConstantPool) Utf8(index uint16) (string, error) {
	e, err := cp.Get(index)
	if err != nil {
		return "", err
	}
	u, ok := e.(*ConstantUtf8Info)
	if !ok {
		return "", fmt.Errorf("%w: index %d is %s, want Utf8", ErrConstantType, index, e.Tag())
	}
	return u.Value, nil
}

// IndexOfUtf8 finds the logical index of a Utf8 entry with the given text.
func (cp *ConstantPool) IndexOfUtf8(value string) (uint16, bool) {
	for index, e := range cp.All() {
		if u, ok := e.(*ConstantUtf8Info); ok && u.Value == value {
			return index, true
		}
	}
	return 0, false
}

func (cp *ConstantPool) entry(index uint16) ConstantPoolEntry {
	if cp == nil {
		return nil
	}
	e, err := cp.Get(index)
	if err != nil {
		return nil
	}
	return e
}

func (cp *ConstantPool) GetUtf8(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantUtf8Info); ok {
		return entry.Value
	}
	return ""
}

func (cp *ConstantPool) GetClassName(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantClassInfo); ok {
		return cp.GetUtf8(entry.NameIndex)
	}
	return ""
}

func (cp *ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	if entry, ok := cp.entry(index).(*ConstantNameAndTypeInfo); ok {
		return cp.GetUtf8(entry.NameIndex), cp.GetUtf8(entry.DescriptorIndex)
	}
	return "", ""
}

func (cp *ConstantPool) GetString(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantStringInfo); ok {
		return cp.GetUtf8(entry.StringIndex)
	}
	return ""
}

func (cp *ConstantPool) GetModuleName(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantModuleInfo); ok {
		return cp.GetUtf8(entry.NameIndex)
	}
	return ""
}

func (cp *ConstantPool) GetPackageName(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantPackageInfo); ok {
		return cp.GetUtf8(entry.NameIndex)
	}
	return ""
}

// GetMemberRef resolves a Fieldref, Methodref or InterfaceMethodref.
func (cp *ConstantPool) GetMemberRef(index uint16) (className, name, descriptor string) {
	var classIndex, natIndex uint16
	switch entry := cp.entry(index).(type) {
	case *ConstantFieldrefInfo:
		classIndex, natIndex = entry.ClassIndex, entry.NameAndTypeIndex
	case *ConstantMethodrefInfo:
		classIndex, natIndex = entry.ClassIndex, entry.NameAndTypeIndex
	case *ConstantInterfaceMethodrefInfo:
		classIndex, natIndex = entry.ClassIndex, entry.NameAndTypeIndex
	default:
		return "", "", ""
	}
	name, descriptor = cp.GetNameAndType(natIndex)
	return cp.GetClassName(classIndex), name, descriptor
}

func (cp *ConstantPool) GetMethodType(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantMethodTypeInfo); ok {
		return cp.GetUtf8(entry.DescriptorIndex)
	}
	return ""
}

// Describe renders the entry at index as a short human-readable string,
// following references one level deep.
func (cp *ConstantPool) Describe(index uint16) string {
	e, err := cp.Get(index)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	switch e := e.(type) {
	case *ConstantUtf8Info:
		return strconv.Quote(e.Value)
	case *ConstantIntegerInfo:
		return strconv.FormatInt(int64(e.Value), 10)
	case *ConstantFloatInfo:
		return strconv.FormatFloat(float64(e.Value), 'g', -1, 32) + "f"
	case *ConstantLongInfo:
		return strconv.FormatInt(e.Value, 10) + "L"
	case *ConstantDoubleInfo:
		return strconv.FormatFloat(e.Value, 'g', -1, 64) + "d"
	case *ConstantClassInfo:
		return cp.GetUtf8(e.NameIndex)
	case *ConstantStringInfo:
		return strconv.Quote(cp.GetUtf8(e.StringIndex))
	case *ConstantFieldrefInfo, *ConstantMethodrefInfo, *ConstantInterfaceMethodrefInfo:
		class, name, desc := cp.GetMemberRef(index)
		return class + "." + name + ":" + desc
	case *ConstantNameAndTypeInfo:
		name, desc := cp.GetNameAndType(index)
		return name + ":" + desc
	case *ConstantMethodHandleInfo:
		class, name, desc := cp.GetMemberRef(e.ReferenceIndex)
		return fmt.Sprintf("%s %s.%s:%s", e.ReferenceKind, class, name, desc)
	case *ConstantMethodTypeInfo:
		return cp.GetUtf8(e.DescriptorIndex)
	case *ConstantDynamicInfo:
		name, desc := cp.GetNameAndType(e.NameAndTypeIndex)
		return fmt.Sprintf("#%d:%s:%s", e.BootstrapMethodAttrIndex, name, desc)
	case *ConstantInvokeDynamicInfo:
		name, desc := cp.GetNameAndType(e.NameAndTypeIndex)
		return fmt.Sprintf("#%d:%s:%s", e.BootstrapMethodAttrIndex, name, desc)
	case *ConstantModuleInfo:
		return cp.GetUtf8(e.NameIndex)
	case *ConstantPackageInfo:
		return cp.GetUtf8(e.NameIndex)
	}
	return e.Tag().String()
}
