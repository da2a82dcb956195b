package classfile

import "fmt"

// Constant pool tags, per the class file format.
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

// poolEntry is one constant pool slot. The analysis treats pool references
// as opaque; only UTF-8 strings and class names are ever resolved, so a
// single struct with a tag covers every entry kind.
type poolEntry struct {
	tag  uint8
	ref1 uint16
	ref2 uint16
	str  string
}

// ConstantPool is the 1-indexed pool of a single class file. Long and
// double constants occupy two slots; the second is a zero-tag placeholder.
type ConstantPool struct {
	entries []poolEntry
}

// parseConstantPool reads count-1 entries from the cursor.
func parseConstantPool(c *cursor, count int) (*ConstantPool, error) {
	pool := &ConstantPool{entries: make([]poolEntry, count)}

	for i := 1; i < count; i++ {
		tag, err := c.u1()
		if err != nil {
			return nil, fmt.Errorf("constant pool entry %d: %w", i, err)
		}

		e := poolEntry{tag: tag}
		switch tag {
		case tagUtf8:
			length, err := c.u2()
			if err != nil {
				return nil, err
			}
			raw, err := c.bytes(int(length))
			if err != nil {
				return nil, err
			}
			// Modified UTF-8 is kept as-is; identifiers never use the
			// surrogate or embedded-NUL encodings that differ.
			e.str = string(raw)
		case tagInteger, tagFloat:
			if _, err := c.u4(); err != nil {
				return nil, err
			}
		case tagLong, tagDouble:
			if _, err := c.u4(); err != nil {
				return nil, err
			}
			if _, err := c.u4(); err != nil {
				return nil, err
			}
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			if e.ref1, err = c.u2(); err != nil {
				return nil, err
			}
		case tagMethodHandle:
			if _, err := c.u1(); err != nil {
				return nil, err
			}
			if e.ref1, err = c.u2(); err != nil {
				return nil, err
			}
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType,
			tagDynamic, tagInvokeDynamic:
			if e.ref1, err = c.u2(); err != nil {
				return nil, err
			}
			if e.ref2, err = c.u2(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("invalid constant pool tag %d at index %d", tag, i)
		}

		pool.entries[i] = e

		// 8-byte constants take the next slot as well.
		if tag == tagLong || tag == tagDouble {
			i++
		}
	}

	return pool, nil
}

func (p *ConstantPool) entry(idx int) (poolEntry, error) {
	if idx <= 0 || idx >= len(p.entries) {
		return poolEntry{}, fmt.Errorf("constant pool index %d out of range [1, %d)", idx, len(p.entries))
	}
	return p.entries[idx], nil
}

// Utf8 resolves a CONSTANT_Utf8 entry.
func (p *ConstantPool) Utf8(idx int) (string, error) {
	e, err := p.entry(idx)
	if err != nil {
		return "", err
	}
	if e.tag != tagUtf8 {
		return "", fmt.Errorf("constant pool index %d is tag %d, not utf8", idx, e.tag)
	}
	return e.str, nil
}

// ClassName resolves a CONSTANT_Class entry to its internal name
// (slash-separated, e.g. "java/lang/String").
func (p *ConstantPool) ClassName(idx int) (string, error) {
	e, err := p.entry(idx)
	if err != nil {
		return "", err
	}
	if e.tag != tagClass {
		return "", fmt.Errorf("constant pool index %d is tag %d, not class", idx, e.tag)
	}
	return p.Utf8(int(e.ref1))
}
