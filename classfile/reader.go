package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf16"
)

// ErrMalformed is matched by every FormatError.
var ErrMalformed = errors.New("classfile: malformed class file")

// FormatError describes a structural problem at a byte offset.
type FormatError struct {
	Offset int
	Msg    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("classfile: %s at offset %d", e.Msg, e.Offset)
}

func (e *FormatError) Unwrap() error { return ErrMalformed }

// reader is a bounds-checked big-endian cursor. The first failure is sticky:
// later reads return zero values and err keeps the original problem.
type reader struct {
	b   []byte
	off int
	// base is the absolute offset of b[0] within the class file.
	base int
	err  error
}

func (r *reader) fail(msg string) {
	if r.err == nil {
		r.err = &FormatError{Offset: r.base + r.off, Msg: msg}
	}
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.off+n > len(r.b) {
		r.fail("unexpected end of data")
		return false
	}
	return true
}

func (r *reader) u1() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.b[r.off]
	r.off++
	return v
}

func (r *reader) u2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.b[r.off:])
	r.off += 2
	return v
}

func (r *reader) u4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.b[r.off:])
	r.off += 4
	return v
}

func (r *reader) u8() uint64 {
	if !r.need(8) {
		return 0
	}
	v := binary.BigEndian.Uint64(r.b[r.off:])
	r.off += 8
	return v
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := r.b[r.off : r.off+n]
	r.off += n
	return v
}

// sub returns a reader over the next n bytes and advances past them.
func (r *reader) sub(n int) *reader {
	start := r.off
	b := r.bytes(n)
	return &reader{b: b, base: r.base + start, err: r.err}
}

// Constant pool tags.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

type cpEntry struct {
	tag uint8
	// raw holds Integer/Float/Long/Double bits.
	raw uint64
	// ref is the first index operand (Class, String, ...).
	ref uint16
	str string
}

type constantPool []cpEntry

func readConstantPool(r *reader) constantPool {
	count := int(r.u2())
	cp := make(constantPool, count)
	for i := 1; i < count && r.err == nil; i++ {
		tag := r.u1()
		e := cpEntry{tag: tag}
		switch tag {
		case tagUtf8:
			n := int(r.u2())
			e.str = decodeModifiedUTF8(r.bytes(n))
		case tagInteger, tagFloat:
			e.raw = uint64(r.u4())
		case tagLong, tagDouble:
			e.raw = r.u8()
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			e.ref = r.u2()
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			e.ref = r.u2()
			r.u2()
		case tagMethodHandle:
			r.u1()
			e.ref = r.u2()
		default:
			r.fail(fmt.Sprintf("unknown constant pool tag %d", tag))
		}
		cp[i] = e
		if tag == tagLong || tag == tagDouble {
			// 8-byte constants take two slots.
			i++
		}
	}
	return cp
}

func (cp constantPool) entry(r *reader, index uint16, tag uint8) (cpEntry, bool) {
	if int(index) == 0 || int(index) >= len(cp) || cp[index].tag != tag {
		r.fail(fmt.Sprintf("bad constant pool reference %d", index))
		return cpEntry{}, false
	}
	return cp[index], true
}

func (cp constantPool) utf8(r *reader, index uint16) string {
	e, _ := cp.entry(r, index, tagUtf8)
	return e.str
}

func (cp constantPool) className(r *reader, index uint16) string {
	e, ok := cp.entry(r, index, tagClass)
	if !ok {
		return ""
	}
	return cp.utf8(r, e.ref)
}

// constant resolves a ConstantValue or element_value constant of kind.
func (cp constantPool) constant(r *reader, index uint16, kind ConstKind) Constant {
	c := Constant{Kind: kind}
	switch kind {
	case ConstByte, ConstChar, ConstShort, ConstInt, ConstBoolean:
		e, _ := cp.entry(r, index, tagInteger)
		c.Int = int64(int32(uint32(e.raw)))
	case ConstLong:
		e, _ := cp.entry(r, index, tagLong)
		c.Int = int64(e.raw)
	case ConstFloat:
		e, _ := cp.entry(r, index, tagFloat)
		c.Float = float64(math.Float32frombits(uint32(e.raw)))
	case ConstDouble:
		e, _ := cp.entry(r, index, tagDouble)
		c.Float = math.Float64frombits(e.raw)
	case ConstString:
		if int(index) < len(cp) && cp[index].tag == tagString {
			c.String = cp.utf8(r, cp[index].ref)
		} else {
			// element_value 's' points at a Utf8 entry directly
			c.String = cp.utf8(r, index)
		}
	}
	return c
}

// decodeModifiedUTF8 decodes the class file string encoding: NUL is two
// bytes and supplementary characters are surrogate pairs.
func decodeModifiedUTF8(b []byte) string {
	ascii := true
	for _, c := range b {
		if c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}

	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			units = append(units, 0xFFFD)
			i++
		}
	}
	return string(utf16.Decode(units))
}
