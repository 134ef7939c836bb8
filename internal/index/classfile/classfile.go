// Package classfile parses the symbolic header of a JVM .class file — the
// constant pool, access flags, and method/field tables — without decoding
// any bytecode bodies. This is the minimum needed by the indexer's writer
// pipeline to discover class and method symbols on a classpath.
package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
)

const magic = 0xCAFEBABE

// Constant pool tags (JVM spec §4.4).
const (
	tagUTF8               = 1
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

// Access flag bits relevant to class/method/field headers (JVM spec §4.1/§4.5/§4.6).
const (
	AccPublic     = 0x0001
	AccPrivate    = 0x0002
	AccProtected  = 0x0004
	AccStatic     = 0x0008
	AccFinal      = 0x0010
	AccSuper      = 0x0020
	AccInterface  = 0x0200
	AccAbstract   = 0x0400
	AccSynthetic  = 0x1000
	AccAnnotation = 0x2000
	AccEnum       = 0x4000
)

// Member is a field or method header: name, descriptor, and access flags.
// Attribute bodies (including method Code attributes) are skipped entirely.
type Member struct {
	Name        string
	Descriptor  string
	AccessFlags int
}

// IsPublic reports whether the member is declared public.
func (m Member) IsPublic() bool { return m.AccessFlags&AccPublic != 0 }

// File is the parsed symbolic header of a class file.
type File struct {
	AccessFlags int
	ThisClass   string // internal form, slash-separated (e.g. "com/foo/Bar")
	SuperClass  string
	Methods     []Member
	Fields      []Member
}

// IsInterface reports whether this class file declares an interface (the
// Scala compiler emits a `trait` as an interface).
func (f File) IsInterface() bool { return f.AccessFlags&AccInterface != 0 }

// IsPublic reports whether the class file declares a public type.
func (f File) IsPublic() bool { return f.AccessFlags&AccPublic != 0 }

// Parse reads a class file's symbolic header from r.
func Parse(r io.Reader) (*File, error) {
	br := &byteReader{r: r}

	m, err := br.u4()
	if err != nil {
		return nil, fmt.Errorf("classfile: read magic: %w", err)
	}
	if m != magic {
		return nil, fmt.Errorf("classfile: bad magic %#x", m)
	}

	if _, err := br.u2(); err != nil { // minor_version
		return nil, err
	}
	if _, err := br.u2(); err != nil { // major_version
		return nil, err
	}

	poolCount, err := br.u2()
	if err != nil {
		return nil, fmt.Errorf("classfile: constant_pool_count: %w", err)
	}
	pool, err := parseConstantPool(br, int(poolCount))
	if err != nil {
		return nil, err
	}

	accessFlags, err := br.u2()
	if err != nil {
		return nil, err
	}
	thisClassIdx, err := br.u2()
	if err != nil {
		return nil, err
	}
	superClassIdx, err := br.u2()
	if err != nil {
		return nil, err
	}

	thisClass, err := pool.className(int(thisClassIdx))
	if err != nil {
		return nil, fmt.Errorf("classfile: this_class: %w", err)
	}
	superClass, _ := pool.className(int(superClassIdx)) // 0 for java/lang/Object

	ifaceCount, err := br.u2()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(ifaceCount); i++ {
		if _, err := br.u2(); err != nil {
			return nil, err
		}
	}

	fields, err := parseMembers(br, pool)
	if err != nil {
		return nil, fmt.Errorf("classfile: fields: %w", err)
	}
	methods, err := parseMembers(br, pool)
	if err != nil {
		return nil, fmt.Errorf("classfile: methods: %w", err)
	}

	return &File{
		AccessFlags: int(accessFlags),
		ThisClass:   thisClass,
		SuperClass:  superClass,
		Fields:      fields,
		Methods:     methods,
	}, nil
}

// constantPool resolves indices to names; entries are 1-indexed and Long/
// Double entries occupy two consecutive slots (JVM spec §4.4.5).
type constantPool struct {
	entries []poolEntry
}

type poolEntry struct {
	tag       int
	utf8      string
	className int // index into entries, for tagClass
	nameType  [2]int
}

func (p constantPool) utf8At(idx int) (string, error) {
	if idx <= 0 || idx >= len(p.entries) {
		return "", fmt.Errorf("constant pool index %d out of range", idx)
	}
	e := p.entries[idx]
	if e.tag != tagUTF8 {
		return "", fmt.Errorf("constant pool index %d is not Utf8 (tag %d)", idx, e.tag)
	}
	return e.utf8, nil
}

func (p constantPool) className(idx int) (string, error) {
	if idx == 0 {
		return "", nil
	}
	if idx <= 0 || idx >= len(p.entries) {
		return "", fmt.Errorf("constant pool index %d out of range", idx)
	}
	e := p.entries[idx]
	if e.tag != tagClass {
		return "", fmt.Errorf("constant pool index %d is not Class (tag %d)", idx, e.tag)
	}
	return p.utf8At(e.className)
}

func parseConstantPool(br *byteReader, count int) (*constantPool, error) {
	pool := &constantPool{entries: make([]poolEntry, count)}
	for i := 1; i < count; i++ {
		tag, err := br.u1()
		if err != nil {
			return nil, fmt.Errorf("constant pool entry %d: %w", i, err)
		}
		switch int(tag) {
		case tagUTF8:
			s, err := br.utf8()
			if err != nil {
				return nil, err
			}
			pool.entries[i] = poolEntry{tag: tagUTF8, utf8: s}
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			idx, err := br.u2()
			if err != nil {
				return nil, err
			}
			pool.entries[i] = poolEntry{tag: int(tag), className: int(idx)}
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			a, err := br.u2()
			if err != nil {
				return nil, err
			}
			b, err := br.u2()
			if err != nil {
				return nil, err
			}
			pool.entries[i] = poolEntry{tag: int(tag), nameType: [2]int{int(a), int(b)}}
		case tagInteger, tagFloat:
			if _, err := br.u4(); err != nil {
				return nil, err
			}
		case tagLong, tagDouble:
			if _, err := br.u4(); err != nil {
				return nil, err
			}
			if _, err := br.u4(); err != nil {
				return nil, err
			}
			// Long/Double occupy two constant pool slots.
			i++
		case tagMethodHandle:
			if _, err := br.u1(); err != nil {
				return nil, err
			}
			if _, err := br.u2(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("constant pool entry %d: unknown tag %d", i, tag)
		}
	}
	return pool, nil
}

func parseMembers(br *byteReader, pool *constantPool) ([]Member, error) {
	count, err := br.u2()
	if err != nil {
		return nil, err
	}
	members := make([]Member, 0, count)
	for i := 0; i < int(count); i++ {
		accessFlags, err := br.u2()
		if err != nil {
			return nil, err
		}
		nameIdx, err := br.u2()
		if err != nil {
			return nil, err
		}
		descIdx, err := br.u2()
		if err != nil {
			return nil, err
		}
		name, err := pool.utf8At(int(nameIdx))
		if err != nil {
			return nil, err
		}
		desc, err := pool.utf8At(int(descIdx))
		if err != nil {
			return nil, err
		}
		attrCount, err := br.u2()
		if err != nil {
			return nil, err
		}
		for a := 0; a < int(attrCount); a++ {
			if _, err := br.u2(); err != nil { // attribute_name_index
				return nil, err
			}
			length, err := br.u4()
			if err != nil {
				return nil, err
			}
			if err := br.skip(int64(length)); err != nil {
				return nil, err
			}
		}
		members = append(members, Member{
			Name:        name,
			Descriptor:  desc,
			AccessFlags: int(accessFlags),
		})
	}
	return members, nil
}

// byteReader is a small big-endian primitive reader over an io.Reader.
type byteReader struct {
	r io.Reader
}

func (b *byteReader) u1() (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (b *byteReader) u2() (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func (b *byteReader) u4() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func (b *byteReader) utf8() (string, error) {
	n, err := b.u2()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (b *byteReader) skip(n int64) error {
	_, err := io.CopyN(io.Discard, b.r, n)
	return err
}
