package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/classkit/classfile"
)

// PoolEncoder lists the constant pool by logical index. The unusable slot
// after each Long and Double is listed too so that indices line up with
// what other tools print.
type PoolEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewPoolEncoder(w io.Writer) *PoolEncoder {
	return &PoolEncoder{w: w}
}

func (e *PoolEncoder) Encode(cf *classfile.ClassFile) error {
	e.class = cf
	return write(e.w, e)
}

func (e *PoolEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	cp := e.class.ConstantPool
	fmt.Fprintf(&sb, "count\t%d\n", cp.Size()+1)
	for index, entry := range cp.All() {
		fmt.Fprintf(&sb, "#%d\t%s\t%s\n", index, entry.Tag(), cp.Describe(index))
		if entry.Tag().IsWide() {
			fmt.Fprintf(&sb, "#%d\t-\t(second half of #%d)\n", index+1, index)
		}
	}
	return []byte(sb.String()), nil
}
