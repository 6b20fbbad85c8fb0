package classfile

import "errors"

var (
	ErrInvalidClass       = errors.New("invalid class")
	ErrOutOfBounds        = errors.New("constant pool index out of bounds")
	ErrConstantType       = errors.New("unexpected constant type")
	ErrMalformedAttribute = errors.New("malformed attribute")
	ErrIllegalFrame       = errors.New("illegal stack map frame")
	ErrIllegalContext     = errors.New("attribute not allowed in context")
	ErrPoolFull           = errors.New("constant pool is full")
	ErrInvalidDescriptor  = errors.New("invalid descriptor")
)
