package metadata

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the JVM extension blocks attached to the core records.
const (
	extSignature      protowire.Number = 100
	extTypeAnnotation protowire.Number = 100
	extTypeIsRaw      protowire.Number = 101
)

// DecodeFunction decodes a serialized function record.
func DecodeFunction(b []byte) (*Function, error) {
	f := &Function{}
	if err := decodeFunction(b, f); err != nil {
		return nil, fmt.Errorf("metadata: decode function: %w", err)
	}
	return f, nil
}

// DecodeConstructor decodes a serialized constructor record.
func DecodeConstructor(b []byte) (*Constructor, error) {
	c := &Constructor{}
	if err := decodeConstructor(b, c); err != nil {
		return nil, fmt.Errorf("metadata: decode constructor: %w", err)
	}
	return c, nil
}

// DecodeProperty decodes a serialized property record.
func DecodeProperty(b []byte) (*Property, error) {
	p := &Property{}
	if err := decodeProperty(b, p); err != nil {
		return nil, fmt.Errorf("metadata: decode property: %w", err)
	}
	return p, nil
}

// DecodeType decodes a serialized type record.
func DecodeType(b []byte) (*Type, error) {
	t := &Type{}
	if err := decodeType(b, t); err != nil {
		return nil, fmt.Errorf("metadata: decode type: %w", err)
	}
	return t, nil
}

// DecodeTypeTable decodes a serialized type table.
func DecodeTypeTable(b []byte) (*TypeTable, error) {
	tt := &TypeTable{}
	if err := decodeTypeTable(b, tt); err != nil {
		return nil, fmt.Errorf("metadata: decode type table: %w", err)
	}
	return tt, nil
}

// DecodeAnnotation decodes a serialized annotation record.
func DecodeAnnotation(b []byte) (*Annotation, error) {
	a := &Annotation{}
	if err := decodeAnnotation(b, a); err != nil {
		return nil, fmt.Errorf("metadata: decode annotation: %w", err)
	}
	return a, nil
}

// DecodeStringTable decodes a serialized string table.
func DecodeStringTable(b []byte) ([]string, error) {
	var out []string
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 || typ != protowire.BytesType {
			return 0, nil
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		out = append(out, string(v))
		return n, nil
	})
	if err != nil {
		return nil, fmt.Errorf("metadata: decode string table: %w", err)
	}
	return out, nil
}

// DecodeQualifiedNameTable decodes a serialized qualified name table.
func DecodeQualifiedNameTable(b []byte) ([]QualifiedName, error) {
	var out []QualifiedName
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return 0, nil
		}
		q := QualifiedName{Parent: -1, Kind: QualifiedPackage}
		n, err := message(typ, b, func(b []byte) error {
			return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
				var kind int32
				switch num {
				case 1:
					return varint32(typ, b, &q.Parent)
				case 2:
					return varint32(typ, b, &q.ShortName)
				case 3:
					n, err := varint32(typ, b, &kind)
					q.Kind = QualifiedNameKind(kind)
					return n, err
				}
				return 0, nil
			})
		})
		if n > 0 && err == nil {
			out = append(out, q)
		}
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("metadata: decode qualified name table: %w", err)
	}
	return out, nil
}

func decodeFunction(b []byte, f *Function) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			// old_flags; only used when flags is absent
			if f.Flags == 0 {
				return varint32(typ, b, &f.Flags)
			}
		case 9:
			return varint32(typ, b, &f.Flags)
		case 2:
			return varint32(typ, b, &f.Name)
		case 3:
			f.ReturnType = &Type{}
			return message(typ, b, func(b []byte) error { return decodeType(b, f.ReturnType) })
		case 7:
			f.HasReturnTypeID = true
			return varint32(typ, b, &f.ReturnTypeID)
		case 5:
			f.ReceiverType = &Type{}
			return message(typ, b, func(b []byte) error { return decodeType(b, f.ReceiverType) })
		case 8:
			f.HasReceiverTypeID = true
			return varint32(typ, b, &f.ReceiverTypeID)
		case 6:
			p := &ValueParameter{}
			f.ValueParameters = append(f.ValueParameters, p)
			return message(typ, b, func(b []byte) error { return decodeValueParameter(b, p) })
		case 30:
			f.TypeTable = &TypeTable{}
			return message(typ, b, func(b []byte) error { return decodeTypeTable(b, f.TypeTable) })
		case extSignature:
			f.Signature = &JvmMethodSignature{}
			return message(typ, b, func(b []byte) error { return decodeMethodSignature(b, f.Signature) })
		}
		return 0, nil
	})
}

func decodeConstructor(b []byte, c *Constructor) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return varint32(typ, b, &c.Flags)
		case 2:
			p := &ValueParameter{}
			c.ValueParameters = append(c.ValueParameters, p)
			return message(typ, b, func(b []byte) error { return decodeValueParameter(b, p) })
		case extSignature:
			c.Signature = &JvmMethodSignature{}
			return message(typ, b, func(b []byte) error { return decodeMethodSignature(b, c.Signature) })
		}
		return 0, nil
	})
}

func decodeProperty(b []byte, p *Property) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			if p.Flags == 0 {
				return varint32(typ, b, &p.Flags)
			}
		case 11:
			return varint32(typ, b, &p.Flags)
		case 2:
			return varint32(typ, b, &p.Name)
		case 3:
			p.ReturnType = &Type{}
			return message(typ, b, func(b []byte) error { return decodeType(b, p.ReturnType) })
		case 9:
			p.HasReturnTypeID = true
			return varint32(typ, b, &p.ReturnTypeID)
		case 5:
			p.ReceiverType = &Type{}
			return message(typ, b, func(b []byte) error { return decodeType(b, p.ReceiverType) })
		case 10:
			p.HasReceiverTypeID = true
			return varint32(typ, b, &p.ReceiverTypeID)
		case 6:
			p.SetterValueParameter = &ValueParameter{}
			return message(typ, b, func(b []byte) error { return decodeValueParameter(b, p.SetterValueParameter) })
		case 7:
			return varint32(typ, b, &p.GetterFlags)
		case 8:
			return varint32(typ, b, &p.SetterFlags)
		case extSignature:
			p.Signature = &JvmPropertySignature{}
			return message(typ, b, func(b []byte) error { return decodePropertySignature(b, p.Signature) })
		}
		return 0, nil
	})
}

func decodeValueParameter(b []byte, p *ValueParameter) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return varint32(typ, b, &p.Flags)
		case 2:
			return varint32(typ, b, &p.Name)
		case 3:
			p.Type = &Type{}
			return message(typ, b, func(b []byte) error { return decodeType(b, p.Type) })
		case 5:
			p.HasTypeID = true
			return varint32(typ, b, &p.TypeID)
		case 4:
			p.VarargElementType = &Type{}
			return message(typ, b, func(b []byte) error { return decodeType(b, p.VarargElementType) })
		case 6:
			p.HasVarargElementTypeID = true
			return varint32(typ, b, &p.VarargElementTypeID)
		}
		return 0, nil
	})
}

func decodeType(b []byte, t *Type) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return varint32(typ, b, &t.Flags)
		case 2:
			arg := &TypeArgument{Projection: ProjectionInv}
			t.Arguments = append(t.Arguments, arg)
			return message(typ, b, func(b []byte) error { return decodeTypeArgument(b, arg) })
		case 3:
			return boolean(typ, b, &t.Nullable)
		case 6:
			t.HasClassName = true
			return varint32(typ, b, &t.ClassName)
		case 7:
			t.HasTypeParameter = true
			return varint32(typ, b, &t.TypeParameter)
		case 9:
			t.HasTypeParameterName = true
			return varint32(typ, b, &t.TypeParameterName)
		case 12:
			t.HasTypeAliasName = true
			return varint32(typ, b, &t.TypeAliasName)
		case extTypeAnnotation:
			a := &Annotation{}
			t.Annotations = append(t.Annotations, a)
			return message(typ, b, func(b []byte) error { return decodeAnnotation(b, a) })
		case extTypeIsRaw:
			return boolean(typ, b, &t.Raw)
		}
		return 0, nil
	})
}

func decodeTypeArgument(b []byte, arg *TypeArgument) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			var proj int32
			n, err := varint32(typ, b, &proj)
			arg.Projection = Projection(proj)
			return n, err
		case 2:
			arg.Type = &Type{}
			return message(typ, b, func(b []byte) error { return decodeType(b, arg.Type) })
		case 3:
			arg.HasTypeID = true
			return varint32(typ, b, &arg.TypeID)
		}
		return 0, nil
	})
}

func decodeTypeTable(b []byte, tt *TypeTable) error {
	tt.FirstNullable = -1
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			t := &Type{}
			tt.Types = append(tt.Types, t)
			return message(typ, b, func(b []byte) error { return decodeType(b, t) })
		case 2:
			return varint32(typ, b, &tt.FirstNullable)
		}
		return 0, nil
	})
}

func decodeMethodSignature(b []byte, s *JvmMethodSignature) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			s.HasName = true
			return varint32(typ, b, &s.Name)
		case 2:
			s.HasDesc = true
			return varint32(typ, b, &s.Desc)
		}
		return 0, nil
	})
}

func decodeFieldSignature(b []byte, s *JvmFieldSignature) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			s.HasName = true
			return varint32(typ, b, &s.Name)
		case 2:
			s.HasDesc = true
			return varint32(typ, b, &s.Desc)
		}
		return 0, nil
	})
}

func decodePropertySignature(b []byte, s *JvmPropertySignature) error {
	method := func(dst **JvmMethodSignature, typ protowire.Type, b []byte) (int, error) {
		*dst = &JvmMethodSignature{}
		return message(typ, b, func(b []byte) error { return decodeMethodSignature(b, *dst) })
	}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			s.Field = &JvmFieldSignature{}
			return message(typ, b, func(b []byte) error { return decodeFieldSignature(b, s.Field) })
		case 2:
			return method(&s.SyntheticMethod, typ, b)
		case 3:
			return method(&s.Getter, typ, b)
		case 4:
			return method(&s.Setter, typ, b)
		case 5:
			return method(&s.DelegateMethod, typ, b)
		}
		return 0, nil
	})
}

func decodeAnnotation(b []byte, a *Annotation) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return varint32(typ, b, &a.ID)
		case 2:
			arg := &AnnotationArgument{}
			a.Arguments = append(a.Arguments, arg)
			return message(typ, b, func(b []byte) error {
				return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
					switch num {
					case 1:
						return varint32(typ, b, &arg.NameID)
					case 2:
						arg.Value = &AnnotationValue{}
						return message(typ, b, func(b []byte) error { return decodeAnnotationValue(b, arg.Value) })
					}
					return 0, nil
				})
			})
		}
		return 0, nil
	})
}

func decodeAnnotationValue(b []byte, v *AnnotationValue) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			var vt int32
			n, err := varint32(typ, b, &vt)
			v.Type = ValueType(vt)
			return n, err
		case 2:
			if typ != protowire.VarintType {
				return 0, nil
			}
			raw, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			v.IntValue = protowire.DecodeZigZag(raw)
			return n, nil
		case 3:
			if typ != protowire.Fixed32Type {
				return 0, nil
			}
			raw, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			v.FloatValue = math.Float32frombits(raw)
			return n, nil
		case 4:
			if typ != protowire.Fixed64Type {
				return 0, nil
			}
			raw, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			v.DoubleValue = math.Float64frombits(raw)
			return n, nil
		case 5:
			return varint32(typ, b, &v.StringValue)
		case 6:
			return varint32(typ, b, &v.ClassID)
		case 7:
			return varint32(typ, b, &v.EnumValueID)
		case 8:
			v.Annotation = &Annotation{}
			return message(typ, b, func(b []byte) error { return decodeAnnotation(b, v.Annotation) })
		case 9:
			el := &AnnotationValue{}
			v.ArrayElements = append(v.ArrayElements, el)
			return message(typ, b, func(b []byte) error { return decodeAnnotationValue(b, el) })
		case 10:
			return varint32(typ, b, &v.Flags)
		case 11:
			return varint32(typ, b, &v.ArrayDimensionCount)
		}
		return 0, nil
	})
}

// walk calls fn for every field in b. fn returns the number of bytes it
// consumed; 0 means the field is skipped.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return protowire.ParseError(m)
			}
		}
		b = b[m:]
	}
	return nil
}

func varint32(typ protowire.Type, b []byte, dst *int32) (int, error) {
	if typ != protowire.VarintType {
		return 0, nil
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = int32(v)
	return n, nil
}

func boolean(typ protowire.Type, b []byte, dst *bool) (int, error) {
	if typ != protowire.VarintType {
		return 0, nil
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = protowire.DecodeBool(v)
	return n, nil
}

func message(typ protowire.Type, b []byte, decode func([]byte) error) (int, error) {
	if typ != protowire.BytesType {
		return 0, nil
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, decode(v)
}
