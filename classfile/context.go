package classfile

// Context is the structural location an attribute is read from.
type Context uint8

const (
	ContextClass Context = iota
	ContextField
	ContextMethod
	// ContextAttribute is the nested attribute list of a Code attribute or
	// a record component.
	ContextAttribute
)

func (c Context) String() string {
	switch c {
	case ContextClass:
		return "class"
	case ContextField:
		return "field"
	case ContextMethod:
		return "method"
	case ContextAttribute:
		return "attribute"
	}
	return "unknown"
}

const (
	AttrAnnotationDefault                    = "AnnotationDefault"
	AttrBootstrapMethods                     = "BootstrapMethods"
	AttrCode                                 = "Code"
	AttrConstantValue                        = "ConstantValue"
	AttrDeprecated                           = "Deprecated"
	AttrEnclosingMethod                      = "EnclosingMethod"
	AttrExceptions                           = "Exceptions"
	AttrInnerClasses                         = "InnerClasses"
	AttrLineNumberTable                      = "LineNumberTable"
	AttrLocalVariableTable                   = "LocalVariableTable"
	AttrLocalVariableTypeTable               = "LocalVariableTypeTable"
	AttrMethodParameters                     = "MethodParameters"
	AttrModule                               = "Module"
	AttrModuleMainClass                      = "ModuleMainClass"
	AttrModulePackages                       = "ModulePackages"
	AttrNestHost                             = "NestHost"
	AttrNestMembers                          = "NestMembers"
	AttrPermittedSubclasses                  = "PermittedSubclasses"
	AttrRecord                               = "Record"
	AttrRuntimeInvisibleAnnotations          = "RuntimeInvisibleAnnotations"
	AttrRuntimeInvisibleParameterAnnotations = "RuntimeInvisibleParameterAnnotations"
	AttrRuntimeInvisibleTypeAnnotations      = "RuntimeInvisibleTypeAnnotations"
	AttrRuntimeVisibleAnnotations            = "RuntimeVisibleAnnotations"
	AttrRuntimeVisibleParameterAnnotations   = "RuntimeVisibleParameterAnnotations"
	AttrRuntimeVisibleTypeAnnotations        = "RuntimeVisibleTypeAnnotations"
	AttrSignature                            = "Signature"
	AttrSourceDebugExtension                 = "SourceDebugExtension"
	AttrSourceFile                           = "SourceFile"
	AttrStackMapTable                        = "StackMapTable"
	AttrSynthetic                            = "Synthetic"
)

type contextSet uint8

func (s contextSet) has(c Context) bool {
	return s&(1<<c) != 0
}

const (
	inClass     contextSet = 1 << ContextClass
	inField     contextSet = 1 << ContextField
	inMethod    contextSet = 1 << ContextMethod
	inAttribute contextSet = 1 << ContextAttribute
	inMember               = inClass | inField | inMethod
	inAny                  = inMember | inAttribute
)

type attributeRule struct {
	since    uint16
	contexts contextSet
}

var attributeRules = map[string]attributeRule{
	AttrAnnotationDefault:                    {Java5, inMethod},
	AttrBootstrapMethods:                     {Java7, inClass},
	AttrCode:                                 {Java1, inMethod},
	AttrConstantValue:                        {Java1, inField},
	AttrDeprecated:                           {Java1, inMember},
	AttrEnclosingMethod:                      {Java5, inClass},
	AttrExceptions:                           {Java1, inMethod},
	AttrInnerClasses:                         {Java1, inClass},
	AttrLineNumberTable:                      {Java1, inAttribute},
	AttrLocalVariableTable:                   {Java1, inAttribute},
	AttrLocalVariableTypeTable:               {Java5, inAttribute},
	AttrMethodParameters:                     {Java8, inMethod},
	AttrModule:                               {Java9, inClass},
	AttrModuleMainClass:                      {Java9, inClass},
	AttrModulePackages:                       {Java9, inClass},
	AttrNestHost:                             {Java11, inClass},
	AttrNestMembers:                          {Java11, inClass},
	AttrPermittedSubclasses:                  {Java15, inClass},
	AttrRecord:                               {Java14, inClass},
	AttrRuntimeInvisibleAnnotations:          {Java5, inAny},
	AttrRuntimeInvisibleParameterAnnotations: {Java5, inMethod},
	AttrRuntimeInvisibleTypeAnnotations:      {Java8, inAny},
	AttrRuntimeVisibleAnnotations:            {Java5, inAny},
	AttrRuntimeVisibleParameterAnnotations:   {Java5, inMethod},
	AttrRuntimeVisibleTypeAnnotations:        {Java8, inAny},
	AttrSignature:                            {Java5, inAny},
	AttrSourceDebugExtension:                 {Java5, inClass},
	AttrSourceFile:                           {Java1, inClass},
	AttrStackMapTable:                        {Java6, inAttribute},
	AttrSynthetic:                            {Java1, inMember},
}

// AttributeAllowed reports whether an attribute named name may appear in
// ctx. Unrecognised names are allowed everywhere.
func AttributeAllowed(name string, ctx Context) bool {
	rule, ok := attributeRules[name]
	return !ok || rule.contexts.has(ctx)
}

// AttributeSince returns the class-file major version that introduced name.
func AttributeSince(name string) (uint16, bool) {
	rule, ok := attributeRules[name]
	return rule.since, ok
}

// Type annotation target types.
const (
	TargetClassTypeParameter       = 0x00
	TargetMethodTypeParameter      = 0x01
	TargetSupertype                = 0x10
	TargetClassTypeParameterBound  = 0x11
	TargetMethodTypeParameterBound = 0x12
	TargetField                    = 0x13
	TargetMethodReturn             = 0x14
	TargetMethodReceiver           = 0x15
	TargetMethodFormalParameter    = 0x16
	TargetThrows                   = 0x17
	TargetLocalVariable            = 0x40
	TargetResourceVariable         = 0x41
	TargetExceptionParameter       = 0x42
	TargetInstanceof               = 0x43
	TargetNew                      = 0x44
	TargetConstructorReference     = 0x45
	TargetMethodReference          = 0x46
	TargetCast                     = 0x47
	TargetConstructorInvocationArg = 0x48
	TargetMethodInvocationArg      = 0x49
	TargetConstructorReferenceArg  = 0x4A
	TargetMethodReferenceTypeArg   = 0x4B
)

// TargetContext returns the location implied by a type annotation target
// type.
func TargetContext(targetType uint8) (Context, bool) {
	switch targetType {
	case TargetClassTypeParameter, TargetSupertype, TargetClassTypeParameterBound:
		return ContextClass, true
	case TargetMethodTypeParameter, TargetMethodTypeParameterBound, TargetMethodReturn,
		TargetMethodReceiver, TargetMethodFormalParameter, TargetThrows:
		return ContextMethod, true
	case TargetField:
		return ContextField, true
	}
	if targetType >= TargetLocalVariable && targetType <= TargetMethodReferenceTypeArg {
		return ContextAttribute, true
	}
	return 0, false
}
