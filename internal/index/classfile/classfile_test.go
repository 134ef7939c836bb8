package classfile

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// builder assembles a minimal synthetic class file byte-for-byte so the
// parser can be exercised without a real compiled .class on disk.
type builder struct {
	buf   bytes.Buffer
	pool  []string // pool[i] holds the Utf8 value at constant index i+1, convenience only
	count int       // next free constant pool index (1-based)
}

func newBuilder() *builder {
	return &builder{count: 1}
}

func (b *builder) u1(v uint8)  { b.buf.WriteByte(v) }
func (b *builder) u2(v uint16) { binary.Write(&b.buf, binary.BigEndian, v) }
func (b *builder) u4(v uint32) { binary.Write(&b.buf, binary.BigEndian, v) }

// addUTF8 appends a Utf8 constant and returns its 1-based index.
func (b *builder) addUTF8(s string) uint16 {
	// Utf8 entries are appended directly to the running pool buffer by the
	// caller via poolEntries; here we just track ordering for the test.
	idx := uint16(b.count)
	b.count++
	b.pool = append(b.pool, s)
	return idx
}

func buildClassFile(thisName, superName string, methodName, methodDesc string) []byte {
	// Constant pool layout:
	// 1: Utf8 thisName
	// 2: Class -> 1
	// 3: Utf8 superName
	// 4: Class -> 3
	// 5: Utf8 methodName
	// 6: Utf8 methodDesc
	poolEntries := [][]byte{}

	appendUTF8 := func(s string) {
		var e bytes.Buffer
		e.WriteByte(tagUTF8)
		binary.Write(&e, binary.BigEndian, uint16(len(s)))
		e.WriteString(s)
		poolEntries = append(poolEntries, e.Bytes())
	}
	appendClass := func(nameIdx uint16) {
		var e bytes.Buffer
		e.WriteByte(tagClass)
		binary.Write(&e, binary.BigEndian, nameIdx)
		poolEntries = append(poolEntries, e.Bytes())
	}

	appendUTF8(thisName)   // 1
	appendClass(1)         // 2
	appendUTF8(superName)  // 3
	appendClass(3)         // 4
	appendUTF8(methodName) // 5
	appendUTF8(methodDesc) // 6

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(magic))
	binary.Write(&out, binary.BigEndian, uint16(0)) // minor
	binary.Write(&out, binary.BigEndian, uint16(52)) // major
	binary.Write(&out, binary.BigEndian, uint16(len(poolEntries)+1))
	for _, e := range poolEntries {
		out.Write(e)
	}
	binary.Write(&out, binary.BigEndian, uint16(AccPublic|AccSuper)) // access_flags
	binary.Write(&out, binary.BigEndian, uint16(2))                  // this_class
	binary.Write(&out, binary.BigEndian, uint16(4))                  // super_class
	binary.Write(&out, binary.BigEndian, uint16(0))                  // interfaces_count

	binary.Write(&out, binary.BigEndian, uint16(0)) // fields_count

	binary.Write(&out, binary.BigEndian, uint16(1))                  // methods_count
	binary.Write(&out, binary.BigEndian, uint16(AccPublic))          // method access_flags
	binary.Write(&out, binary.BigEndian, uint16(5))                  // name_index
	binary.Write(&out, binary.BigEndian, uint16(6))                  // descriptor_index
	binary.Write(&out, binary.BigEndian, uint16(1))                  // attributes_count
	binary.Write(&out, binary.BigEndian, uint16(1))                  // attribute_name_index (unresolved, skipped anyway)
	binary.Write(&out, binary.BigEndian, uint32(3))                  // attribute_length
	out.Write([]byte{0xAA, 0xBB, 0xCC})                              // opaque attribute body

	return out.Bytes()
}

func TestParseSyntheticClassFile(t *testing.T) {
	data := buildClassFile("com/example/Foo", "java/lang/Object", "bar", "(I)V")

	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if f.ThisClass != "com/example/Foo" {
		t.Errorf("ThisClass = %q, want com/example/Foo", f.ThisClass)
	}
	if f.SuperClass != "java/lang/Object" {
		t.Errorf("SuperClass = %q, want java/lang/Object", f.SuperClass)
	}
	if f.IsInterface() {
		t.Errorf("IsInterface() = true, want false")
	}
	if len(f.Fields) != 0 {
		t.Errorf("len(Fields) = %d, want 0", len(f.Fields))
	}
	if len(f.Methods) != 1 {
		t.Fatalf("len(Methods) = %d, want 1", len(f.Methods))
	}
	m := f.Methods[0]
	if m.Name != "bar" || m.Descriptor != "(I)V" {
		t.Errorf("Methods[0] = %+v, want Name=bar Descriptor=(I)V", m)
	}
	if !m.IsPublic() {
		t.Errorf("Methods[0].IsPublic() = false, want true")
	}
}

func TestParseBadMagic(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x00}
	if _, err := Parse(bytes.NewReader(data)); err == nil {
		t.Fatal("expected error for bad magic, got nil")
	}
}

func TestParseTruncated(t *testing.T) {
	data := buildClassFile("com/example/Foo", "java/lang/Object", "bar", "(I)V")
	truncated := data[:len(data)-10]
	if _, err := Parse(bytes.NewReader(truncated)); err == nil {
		t.Fatal("expected error for truncated class file, got nil")
	}
}
