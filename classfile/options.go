package classfile

import (
	"fmt"

	"github.com/tliron/commonlog"
)

type options struct {
	dropForwardVersioned     bool
	dropMalformed            bool
	dropDuplicateAnnotations bool
	maxDepth                 int
	log                      commonlog.Logger
}

type Option func(*options)

func defaultOptions() options {
	return options{
		dropForwardVersioned:     true,
		dropMalformed:            true,
		dropDuplicateAnnotations: true,
		maxDepth:                 16,
		log:                      commonlog.GetLogger("classkit.classfile"),
	}
}

// WithDropForwardVersioned drops attributes introduced after the version of
// the class being read.
func WithDropForwardVersioned(drop bool) Option {
	return func(o *options) { o.dropForwardVersioned = drop }
}

// WithDropMalformed controls what happens to an attribute that runs out of
// bytes, leaves bytes unread or is otherwise malformed. When drop is false
// the whole read fails instead.
func WithDropMalformed(drop bool) Option {
	return func(o *options) { o.dropMalformed = drop }
}

// WithDropDuplicateAnnotations keeps only the first annotation of each type
// within one RuntimeVisibleAnnotations or RuntimeInvisibleAnnotations
// attribute. Parameter and type annotations are always kept as read.
func WithDropDuplicateAnnotations(drop bool) Option {
	return func(o *options) { o.dropDuplicateAnnotations = drop }
}

// WithMaxDepth bounds nesting of attribute lists and element values.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

func WithLogger(log commonlog.Logger) Option {
	return func(o *options) { o.log = log }
}

type Outcome uint8

const (
	Decoded Outcome = iota
	Dropped
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Decoded:
		return "decoded"
	case Dropped:
		return "dropped"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonLengthMismatch
	ReasonMalformed
	ReasonForwardVersioned
	ReasonIllegalContext
	ReasonEmpty
	ReasonDuplicateAnnotation
	ReasonDepthExceeded
)

var reasonNames = [...]string{
	ReasonNone:                "none",
	ReasonLengthMismatch:      "length mismatch",
	ReasonMalformed:           "malformed",
	ReasonForwardVersioned:    "newer than class version",
	ReasonIllegalContext:      "illegal context",
	ReasonEmpty:               "empty",
	ReasonDuplicateAnnotation: "duplicate annotation",
	ReasonDepthExceeded:       "nesting too deep",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// Diagnostic records an attribute, or an annotation within one, that the
// reader did not keep.
type Diagnostic struct {
	Outcome   Outcome
	Reason    Reason
	Name      string
	NameIndex uint16
	Context   Context
	Offset    int
	Err       error
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s %s attribute %q (#%d) at offset %d: %s", d.Outcome, d.Context, d.Name, d.NameIndex, d.Offset, d.Reason)
	if d.Err != nil {
		s += ": " + d.Err.Error()
	}
	return s
}
