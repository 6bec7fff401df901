package signature

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes the key spaces of the signature index.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindMethod identifies a method by name and descriptor.
	KindMethod
	// KindField identifies a field by name and descriptor.
	KindField
	// KindParameter identifies one parameter of a method.
	KindParameter
)

// Signature is the canonical identity of a queryable member.
//
// Signatures are comparable and can be used as map keys. A parameter
// signature never equals a method or field signature because Kind differs.
type Signature struct {
	Kind Kind
	Name string
	Desc string
	// Param is the parameter index; only meaningful for KindParameter.
	Param int
}

// Method returns the signature of the method name with descriptor desc.
func Method(name, desc string) Signature {
	return Signature{Kind: KindMethod, Name: name, Desc: desc}
}

// Field returns the signature of the field name with descriptor desc.
func Field(name, desc string) Signature {
	return Signature{Kind: KindField, Name: name, Desc: desc}
}

// FromNameAndDescriptor returns a method or field signature.
func FromNameAndDescriptor(kind Kind, name, desc string) Signature {
	return Signature{Kind: kind, Name: name, Desc: desc}
}

// Parameter returns the signature of parameter index of the method parent.
func Parameter(parent Signature, index int) Signature {
	return Signature{Kind: KindParameter, Name: parent.Name, Desc: parent.Desc, Param: index}
}

// Parent returns the method signature a parameter signature belongs to.
func (s Signature) Parent() (Signature, bool) {
	if s.Kind != KindParameter {
		return Signature{}, false
	}
	return Method(s.Name, s.Desc), true
}

// IsZero reports whether s is the zero Signature.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

// String renders s as "name(desc)", "name#desc" or "name(desc)@index".
func (s Signature) String() string {
	switch s.Kind {
	case KindMethod:
		return s.Name + s.Desc
	case KindField:
		return s.Name + "#" + s.Desc
	case KindParameter:
		return s.Name + s.Desc + "@" + strconv.Itoa(s.Param)
	default:
		return "<invalid>"
	}
}

// MarshalText implements encoding.TextMarshaler so signatures can key JSON
// objects.
func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using Parse.
func (s *Signature) UnmarshalText(text []byte) error {
	sig, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = sig
	return nil
}

// Parse is the inverse of String. It accepts "name(desc)", "name#desc" and
// "name(desc)@index".
func Parse(s string) (Signature, error) {
	if name, desc, ok := strings.Cut(s, "#"); ok {
		if name == "" || desc == "" {
			return Signature{}, fmt.Errorf("signature: invalid field %q", s)
		}
		return Field(name, desc), nil
	}

	i := strings.IndexByte(s, '(')
	if i <= 0 {
		return Signature{}, fmt.Errorf("signature: invalid method %q", s)
	}
	name, desc := s[:i], s[i:]

	param := -1
	if j := strings.LastIndexByte(desc, '@'); j > strings.LastIndexByte(desc, ')') {
		n, err := strconv.Atoi(desc[j+1:])
		if err != nil || n < 0 {
			return Signature{}, fmt.Errorf("signature: invalid parameter index in %q", s)
		}
		desc, param = desc[:j], n
	}
	if !strings.Contains(desc, ")") || strings.HasSuffix(desc, ")") {
		return Signature{}, fmt.Errorf("signature: invalid method descriptor %q", s)
	}

	m := Method(name, desc)
	if param >= 0 {
		return Parameter(m, param), nil
	}
	return m, nil
}
