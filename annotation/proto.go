package annotation

import "github.com/hupe1980/classanno/metadata"

// FromProto converts a serialized annotation record. Names are resolved
// through names; a record without a resolvable class yields ok == false.
func FromProto(a *metadata.Annotation, names metadata.NameResolver) (Call, bool) {
	if a == nil {
		return Call{}, false
	}
	class := names.QualifiedClassName(a.ID)
	if class == "" {
		return Call{}, false
	}
	call := Call{Class: ClassID(class)}
	for _, arg := range a.Arguments {
		if arg == nil || arg.Value == nil {
			continue
		}
		call.Arguments = append(call.Arguments, Argument{
			Name:  names.String(arg.NameID),
			Value: valueFromProto(arg.Value, names),
		})
	}
	return call, true
}

// FromProtoList converts every resolvable record in list.
func FromProtoList(list []*metadata.Annotation, names metadata.NameResolver) []Call {
	var out []Call
	for _, a := range list {
		if call, ok := FromProto(a, names); ok {
			out = append(out, call)
		}
	}
	return out
}

func valueFromProto(v *metadata.AnnotationValue, names metadata.NameResolver) Value {
	unsigned := v.Flags&metadata.FlagUnsigned != 0
	switch v.Type {
	case metadata.ValueByte:
		return Value{Kind: KindByte, Int: v.IntValue, Unsigned: unsigned}
	case metadata.ValueChar:
		return IntValue(KindChar, v.IntValue)
	case metadata.ValueShort:
		return Value{Kind: KindShort, Int: v.IntValue, Unsigned: unsigned}
	case metadata.ValueInt:
		return Value{Kind: KindInt, Int: v.IntValue, Unsigned: unsigned}
	case metadata.ValueLong:
		return Value{Kind: KindLong, Int: v.IntValue, Unsigned: unsigned}
	case metadata.ValueFloat:
		return FloatValue(KindFloat, float64(v.FloatValue))
	case metadata.ValueDouble:
		return FloatValue(KindDouble, v.DoubleValue)
	case metadata.ValueBoolean:
		return BoolValue(v.IntValue != 0)
	case metadata.ValueString:
		return StringValue(names.String(v.StringValue))
	case metadata.ValueClass:
		return ClassValue(ClassID(names.QualifiedClassName(v.ClassID)), int(v.ArrayDimensionCount))
	case metadata.ValueEnum:
		return EnumValue(ClassID(names.QualifiedClassName(v.ClassID)), names.String(v.EnumValueID))
	case metadata.ValueAnnotation:
		nested, _ := FromProto(v.Annotation, names)
		return AnnotationValue(nested)
	case metadata.ValueArray:
		elements := make([]Value, 0, len(v.ArrayElements))
		for _, e := range v.ArrayElements {
			if e != nil {
				elements = append(elements, valueFromProto(e, names))
			}
		}
		return ArrayValue(elements)
	}
	return Value{Kind: Kind(v.Type)}
}
