// Package classfile parses JVM class files and JAR archives down to the
// pieces complexity analysis needs: method identities and Code attributes
// with their exception tables. Everything else (fields, annotations, stack
// map tables) is length-skipped.
package classfile

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/seerlab/haruspex/internal/bytecode"
)

const classMagic = 0xCAFEBABE

// Method access flags used by the analysis.
const (
	AccStatic    = 0x0008
	AccNative    = 0x0100
	AccAbstract  = 0x0400
	accSynthetic = 0x1000
)

// Code is a method's Code attribute: the bytecode body plus its exception
// regions, resolved against the constant pool.
type Code struct {
	MaxStack  int
	MaxLocals int
	Body      []byte
	Regions   []bytecode.ExceptionRegion
}

// Method is one method of a parsed class. Code is nil for abstract and
// native methods, which carry no body.
type Method struct {
	ClassName   string
	Name        string
	Descriptor  string
	AccessFlags uint16
	Code        *Code
}

// ID returns the fully qualified method identity, dot-separated class name
// plus name and descriptor.
func (m *Method) ID() string {
	return strings.ReplaceAll(m.ClassName, "/", ".") + "." + m.Name + m.Descriptor
}

// Synthetic reports whether the compiler generated this method.
func (m *Method) Synthetic() bool {
	return m.AccessFlags&accSynthetic != 0 || strings.Contains(m.Name, "$")
}

// ClassFile is a parsed class, reduced to what the analyzer consumes.
type ClassFile struct {
	Name      string
	SuperName string
	Major     uint16
	Minor     uint16
	Methods   []*Method
}

// cursor is a bounds-checked big-endian reader over a class file image.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) remaining() int { return len(c.data) - c.pos }

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, fmt.Errorf("truncated at offset %d: need %d bytes, have %d", c.pos, n, c.remaining())
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) skip(n int) error {
	_, err := c.bytes(n)
	return err
}

func (c *cursor) u1() (byte, error) {
	b, err := c.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) u2() (uint16, error) {
	b, err := c.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *cursor) u4() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Parse decodes a single class file image.
func Parse(data []byte) (*ClassFile, error) {
	c := &cursor{data: data}

	magic, err := c.u4()
	if err != nil {
		return nil, err
	}
	if magic != classMagic {
		return nil, fmt.Errorf("bad magic 0x%08X, not a class file", magic)
	}

	minor, err := c.u2()
	if err != nil {
		return nil, err
	}
	major, err := c.u2()
	if err != nil {
		return nil, err
	}

	cpCount, err := c.u2()
	if err != nil {
		return nil, err
	}
	pool, err := parseConstantPool(c, int(cpCount))
	if err != nil {
		return nil, fmt.Errorf("constant pool: %w", err)
	}

	if err := c.skip(2); err != nil { // access_flags
		return nil, err
	}
	thisClass, err := c.u2()
	if err != nil {
		return nil, err
	}
	superClass, err := c.u2()
	if err != nil {
		return nil, err
	}

	cf := &ClassFile{Major: major, Minor: minor}
	if cf.Name, err = pool.ClassName(int(thisClass)); err != nil {
		return nil, fmt.Errorf("this_class: %w", err)
	}
	if superClass != 0 {
		if cf.SuperName, err = pool.ClassName(int(superClass)); err != nil {
			return nil, fmt.Errorf("super_class: %w", err)
		}
	}

	ifaceCount, err := c.u2()
	if err != nil {
		return nil, err
	}
	if err := c.skip(2 * int(ifaceCount)); err != nil {
		return nil, err
	}

	// Fields carry nothing the analysis uses; skip each one wholesale.
	fieldCount, err := c.u2()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(fieldCount); i++ {
		if err := c.skip(6); err != nil { // access, name, descriptor
			return nil, err
		}
		if err := skipAttributes(c); err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
	}

	methodCount, err := c.u2()
	if err != nil {
		return nil, err
	}
	cf.Methods = make([]*Method, 0, methodCount)
	for i := 0; i < int(methodCount); i++ {
		m, err := parseMethod(c, pool, cf.Name)
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		cf.Methods = append(cf.Methods, m)
	}

	// Trailing class attributes are irrelevant and may legally be absent
	// only in truncated files; tolerate EOF right here.
	if c.remaining() > 0 {
		if err := skipAttributes(c); err != nil {
			return nil, fmt.Errorf("class attributes: %w", err)
		}
	}

	return cf, nil
}

func parseMethod(c *cursor, pool *ConstantPool, className string) (*Method, error) {
	access, err := c.u2()
	if err != nil {
		return nil, err
	}
	nameIdx, err := c.u2()
	if err != nil {
		return nil, err
	}
	descIdx, err := c.u2()
	if err != nil {
		return nil, err
	}

	m := &Method{ClassName: className, AccessFlags: access}
	if m.Name, err = pool.Utf8(int(nameIdx)); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	if m.Descriptor, err = pool.Utf8(int(descIdx)); err != nil {
		return nil, fmt.Errorf("descriptor: %w", err)
	}

	attrCount, err := c.u2()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(attrCount); i++ {
		attrNameIdx, err := c.u2()
		if err != nil {
			return nil, err
		}
		attrLen, err := c.u4()
		if err != nil {
			return nil, err
		}
		name, err := pool.Utf8(int(attrNameIdx))
		if err != nil {
			return nil, fmt.Errorf("attribute name: %w", err)
		}
		if name != "Code" {
			if err := c.skip(int(attrLen)); err != nil {
				return nil, err
			}
			continue
		}
		if m.Code, err = parseCode(c, pool); err != nil {
			return nil, fmt.Errorf("%s%s: %w", m.Name, m.Descriptor, err)
		}
	}

	return m, nil
}

func parseCode(c *cursor, pool *ConstantPool) (*Code, error) {
	maxStack, err := c.u2()
	if err != nil {
		return nil, err
	}
	maxLocals, err := c.u2()
	if err != nil {
		return nil, err
	}
	codeLen, err := c.u4()
	if err != nil {
		return nil, err
	}
	body, err := c.bytes(int(codeLen))
	if err != nil {
		return nil, err
	}

	code := &Code{
		MaxStack:  int(maxStack),
		MaxLocals: int(maxLocals),
		Body:      body,
	}

	tableLen, err := c.u2()
	if err != nil {
		return nil, err
	}
	code.Regions = make([]bytecode.ExceptionRegion, 0, tableLen)
	for i := 0; i < int(tableLen); i++ {
		startPC, err := c.u2()
		if err != nil {
			return nil, err
		}
		endPC, err := c.u2()
		if err != nil {
			return nil, err
		}
		handlerPC, err := c.u2()
		if err != nil {
			return nil, err
		}
		catchIdx, err := c.u2()
		if err != nil {
			return nil, err
		}
		region := bytecode.ExceptionRegion{
			StartPC:   int(startPC),
			EndPC:     int(endPC),
			HandlerPC: int(handlerPC),
		}
		// catch_type 0 is the catch-all used by finally blocks.
		if catchIdx != 0 {
			if region.CatchType, err = pool.ClassName(int(catchIdx)); err != nil {
				return nil, fmt.Errorf("exception table entry %d: %w", i, err)
			}
		}
		code.Regions = append(code.Regions, region)
	}

	// Nested attributes of the Code attribute (LineNumberTable,
	// StackMapTable and friends) are skipped.
	if err := skipAttributes(c); err != nil {
		return nil, err
	}

	return code, nil
}

func skipAttributes(c *cursor) error {
	count, err := c.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if err := c.skip(2); err != nil { // attribute_name_index
			return err
		}
		length, err := c.u4()
		if err != nil {
			return err
		}
		if err := c.skip(int(length)); err != nil {
			return err
		}
	}
	return nil
}
