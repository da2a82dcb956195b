package classfile

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// classImage assembles a minimal but well-formed class file image in
// memory, enough for the parser paths under test.
type classImage struct {
	buf  bytes.Buffer
	pool bytes.Buffer
	// next constant pool index to hand out
	nextIdx uint16
}

func newClassImage() *classImage {
	return &classImage{nextIdx: 1}
}

func (ci *classImage) utf8(s string) uint16 {
	ci.pool.WriteByte(tagUtf8)
	var n [2]byte
	binary.BigEndian.PutUint16(n[:], uint16(len(s)))
	ci.pool.Write(n[:])
	ci.pool.WriteString(s)
	idx := ci.nextIdx
	ci.nextIdx++
	return idx
}

func (ci *classImage) class(nameIdx uint16) uint16 {
	ci.pool.WriteByte(tagClass)
	var n [2]byte
	binary.BigEndian.PutUint16(n[:], nameIdx)
	ci.pool.Write(n[:])
	idx := ci.nextIdx
	ci.nextIdx++
	return idx
}

func (ci *classImage) long(v uint64) uint16 {
	ci.pool.WriteByte(tagLong)
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], v)
	ci.pool.Write(n[:])
	idx := ci.nextIdx
	ci.nextIdx += 2 // occupies two slots
	return idx
}

type methodImage struct {
	access  uint16
	nameIdx uint16
	descIdx uint16
	attrs   []byte
}

// codeAttr builds a Code attribute: codeAttrNameIdx must point at the
// "Code" utf8 entry.
func codeAttr(codeAttrNameIdx uint16, body []byte, exceptionTable []byte) []byte {
	var inner bytes.Buffer
	w2 := func(v uint16) {
		var n [2]byte
		binary.BigEndian.PutUint16(n[:], v)
		inner.Write(n[:])
	}
	w2(4) // max_stack
	w2(2) // max_locals
	var n4 [4]byte
	binary.BigEndian.PutUint32(n4[:], uint32(len(body)))
	inner.Write(n4[:])
	inner.Write(body)
	w2(uint16(len(exceptionTable) / 8))
	inner.Write(exceptionTable)
	w2(0) // code attributes

	var out bytes.Buffer
	var n2 [2]byte
	binary.BigEndian.PutUint16(n2[:], codeAttrNameIdx)
	out.Write(n2[:])
	binary.BigEndian.PutUint32(n4[:], uint32(inner.Len()))
	out.Write(n4[:])
	out.Write(inner.Bytes())
	return out.Bytes()
}

func exTableEntry(start, end, handler, catchIdx uint16) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint16(b[0:], start)
	binary.BigEndian.PutUint16(b[2:], end)
	binary.BigEndian.PutUint16(b[4:], handler)
	binary.BigEndian.PutUint16(b[6:], catchIdx)
	return b
}

func (ci *classImage) build(thisIdx, superIdx uint16, methods []methodImage) []byte {
	w2 := func(v uint16) {
		var n [2]byte
		binary.BigEndian.PutUint16(n[:], v)
		ci.buf.Write(n[:])
	}
	w4 := func(v uint32) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], v)
		ci.buf.Write(n[:])
	}

	w4(classMagic)
	w2(0)  // minor
	w2(52) // major, Java 8
	w2(ci.nextIdx)
	ci.buf.Write(ci.pool.Bytes())
	w2(0x0021) // ACC_PUBLIC | ACC_SUPER
	w2(thisIdx)
	w2(superIdx)
	w2(0) // interfaces
	w2(0) // fields
	w2(uint16(len(methods)))
	for _, m := range methods {
		w2(m.access)
		w2(m.nameIdx)
		w2(m.descIdx)
		if len(m.attrs) == 0 {
			w2(0)
		} else {
			w2(1)
			ci.buf.Write(m.attrs)
		}
	}
	w2(0) // class attributes
	return ci.buf.Bytes()
}

func buildTestClass(t *testing.T, body []byte, exTable func(*classImage) []byte) []byte {
	t.Helper()
	ci := newClassImage()
	thisName := ci.utf8("com/example/Widget")
	thisIdx := ci.class(thisName)
	superName := ci.utf8("java/lang/Object")
	superIdx := ci.class(superName)
	methName := ci.utf8("frob")
	methDesc := ci.utf8("(I)I")
	codeName := ci.utf8("Code")
	ci.long(42) // exercise the double-slot path

	var table []byte
	if exTable != nil {
		table = exTable(ci)
	}
	m := methodImage{
		access:  0x0001,
		nameIdx: methName,
		descIdx: methDesc,
		attrs:   codeAttr(codeName, body, table),
	}
	return ci.build(thisIdx, superIdx, []methodImage{m})
}

func TestParseSimpleClass(t *testing.T) {
	// iconst_0; ireturn
	data := buildTestClass(t, []byte{0x03, 0xac}, nil)

	cf, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cf.Name != "com/example/Widget" {
		t.Errorf("class name = %q", cf.Name)
	}
	if cf.SuperName != "java/lang/Object" {
		t.Errorf("super name = %q", cf.SuperName)
	}
	if len(cf.Methods) != 1 {
		t.Fatalf("methods = %d, want 1", len(cf.Methods))
	}

	m := cf.Methods[0]
	if m.Name != "frob" || m.Descriptor != "(I)I" {
		t.Errorf("method = %s%s", m.Name, m.Descriptor)
	}
	if got := m.ID(); got != "com.example.Widget.frob(I)I" {
		t.Errorf("ID() = %q", got)
	}
	if m.Code == nil {
		t.Fatal("Code attribute missing")
	}
	if m.Code.MaxStack != 4 || m.Code.MaxLocals != 2 {
		t.Errorf("max_stack/max_locals = %d/%d", m.Code.MaxStack, m.Code.MaxLocals)
	}
	if !bytes.Equal(m.Code.Body, []byte{0x03, 0xac}) {
		t.Errorf("body = % x", m.Code.Body)
	}
}

func TestParseExceptionTable(t *testing.T) {
	data := buildTestClass(t, []byte{0x03, 0xac}, func(ci *classImage) []byte {
		ioIdx := ci.class(ci.utf8("java/io/IOException"))
		typed := exTableEntry(0, 1, 1, ioIdx)
		catchAll := exTableEntry(0, 2, 1, 0)
		return append(typed, catchAll...)
	})

	cf, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	regions := cf.Methods[0].Code.Regions
	if len(regions) != 2 {
		t.Fatalf("regions = %d, want 2", len(regions))
	}
	if regions[0].CatchType != "java/io/IOException" {
		t.Errorf("regions[0].CatchType = %q", regions[0].CatchType)
	}
	if regions[0].StartPC != 0 || regions[0].EndPC != 1 || regions[0].HandlerPC != 1 {
		t.Errorf("regions[0] = %+v", regions[0])
	}
	if regions[1].CatchType != "" {
		t.Errorf("catch-all CatchType = %q, want empty", regions[1].CatchType)
	}
}

func TestParseAbstractMethod(t *testing.T) {
	ci := newClassImage()
	thisIdx := ci.class(ci.utf8("com/example/Shape"))
	superIdx := ci.class(ci.utf8("java/lang/Object"))
	m := methodImage{
		access:  0x0401, // public abstract
		nameIdx: ci.utf8("area"),
		descIdx: ci.utf8("()D"),
	}
	cf, err := Parse(ci.build(thisIdx, superIdx, []methodImage{m}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cf.Methods[0].Code != nil {
		t.Error("abstract method should have nil Code")
	}
	if cf.Methods[0].AccessFlags&AccAbstract == 0 {
		t.Error("AccAbstract not set")
	}
}

func TestParseBadMagic(t *testing.T) {
	if _, err := Parse([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 0}); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestParseTruncated(t *testing.T) {
	data := buildTestClass(t, []byte{0x03, 0xac}, nil)
	for _, cut := range []int{4, 10, len(data) / 2, len(data) - 3} {
		if _, err := Parse(data[:cut]); err == nil {
			t.Errorf("Parse of %d-byte prefix: expected error", cut)
		}
	}
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()
	data := buildTestClass(t, []byte{0x03, 0xac}, nil)

	classPath := filepath.Join(dir, "Widget.class")
	if err := os.WriteFile(classPath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := Load(classPath)
	if err != nil {
		t.Fatalf("Load(.class): %v", err)
	}
	if len(a.Classes) != 1 {
		t.Fatalf("classes = %d", len(a.Classes))
	}

	// Directory scan picks up the same file.
	a, err = Load(dir)
	if err != nil {
		t.Fatalf("Load(dir): %v", err)
	}
	if len(a.Classes) != 1 {
		t.Fatalf("dir classes = %d", len(a.Classes))
	}

	jarPath := filepath.Join(dir, "app.jar")
	writeTestJAR(t, jarPath, map[string][]byte{
		"com/example/Widget.class": data,
		"META-INF/MANIFEST.MF":     []byte("Manifest-Version: 1.0\n"),
		"com/example/Broken.class": {0xCA, 0xFE},
	})
	a, err = Load(jarPath)
	if err != nil {
		t.Fatalf("Load(.jar): %v", err)
	}
	if len(a.Classes) != 1 {
		t.Errorf("jar classes = %d, want 1", len(a.Classes))
	}
	if len(a.Errors) != 1 {
		t.Errorf("jar errors = %d, want 1 (the broken entry)", len(a.Errors))
	}

	if m := a.FindMethod("com.example.Widget.frob(I)I"); m == nil {
		t.Error("FindMethod with descriptor failed")
	}
	if m := a.FindMethod("com.example.Widget.frob"); m == nil {
		t.Error("FindMethod without descriptor failed")
	}
}

func writeTestJAR(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}
