package main

import (
	"fmt"
	"os"

	"github.com/dhamidi/classkit/classfile"
	"github.com/spf13/pflag"
)

// readFlags holds the leniency switches shared by every command that
// decodes a class file.
type readFlags struct {
	keepForward    bool
	strict         bool
	keepDuplicates bool
	maxDepth       int
}

func (f *readFlags) register(flags *pflag.FlagSet) {
	flags.BoolVar(&f.keepForward, "keep-forward", false, "keep attributes newer than the class version")
	flags.BoolVar(&f.strict, "strict", false, "fail on malformed attributes instead of dropping them")
	flags.BoolVar(&f.keepDuplicates, "keep-duplicates", false, "keep repeated annotations of the same type in Annotations attributes")
	flags.IntVar(&f.maxDepth, "max-depth", 16, "maximum nesting of attributes and element values")
}

func (f *readFlags) options() []classfile.Option {
	return []classfile.Option{
		classfile.WithDropForwardVersioned(!f.keepForward),
		classfile.WithDropMalformed(!f.strict),
		classfile.WithDropDuplicateAnnotations(!f.keepDuplicates),
		classfile.WithMaxDepth(f.maxDepth),
	}
}

// readClass decodes filename and returns the raw bytes alongside the model
// and whatever the reader dropped.
func (f *readFlags) readClass(filename string) ([]byte, *classfile.ClassFile, []classfile.Diagnostic, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read class file: %w", err)
	}
	rd := classfile.NewReader(f.options()...)
	cf, err := rd.Read(data)
	if err != nil {
		return data, nil, rd.Diagnostics(), fmt.Errorf("parse class file: %w", err)
	}
	return data, cf, rd.Diagnostics(), nil
}
