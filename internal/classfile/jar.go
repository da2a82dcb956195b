package classfile

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ClassError records a class entry that failed to parse. Archive loading
// never aborts on a single bad class; callers decide how to surface these.
type ClassError struct {
	Entry string
	Err   error
}

func (e ClassError) Error() string {
	return fmt.Sprintf("%s: %v", e.Entry, e.Err)
}

// Archive is a loaded set of classes from a JAR, a directory tree, or a
// single class file. It is immutable after Load returns.
type Archive struct {
	Source  string
	Classes []*ClassFile
	Errors  []ClassError
}

// Load reads classes from path, dispatching on what it is: a .jar/.war/.zip
// archive, a directory scanned recursively for .class files, or a single
// .class file.
func Load(path string) (*Archive, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loadDir(path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jar", ".war", ".zip":
		return LoadJAR(path)
	case ".class":
		return loadSingle(path)
	default:
		return nil, fmt.Errorf("%s: not a jar, directory, or class file", path)
	}
}

// LoadJAR opens a JAR (or any zip) and parses every .class entry.
func LoadJAR(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer zr.Close()

	a := &Archive{Source: path}
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".class") {
			continue
		}
		// module-info and multi-release metadata classes have no methods
		// worth analyzing.
		if strings.HasSuffix(f.Name, "module-info.class") {
			continue
		}
		data, err := readZipEntry(f)
		if err != nil {
			a.Errors = append(a.Errors, ClassError{Entry: f.Name, Err: err})
			continue
		}
		cf, err := Parse(data)
		if err != nil {
			a.Errors = append(a.Errors, ClassError{Entry: f.Name, Err: err})
			continue
		}
		a.Classes = append(a.Classes, cf)
	}

	sortClasses(a.Classes)
	return a, nil
}

func loadDir(root string) (*Archive, error) {
	a := &Archive{Source: root}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".class") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			a.Errors = append(a.Errors, ClassError{Entry: path, Err: err})
			return nil
		}
		cf, err := Parse(data)
		if err != nil {
			a.Errors = append(a.Errors, ClassError{Entry: path, Err: err})
			return nil
		}
		a.Classes = append(a.Classes, cf)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortClasses(a.Classes)
	return a, nil
}

func loadSingle(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Archive{Source: path, Classes: []*ClassFile{cf}}, nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func sortClasses(classes []*ClassFile) {
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].Name < classes[j].Name
	})
}

// Methods flattens every method of every class, in class order.
func (a *Archive) Methods() []*Method {
	var out []*Method
	for _, cf := range a.Classes {
		out = append(out, cf.Methods...)
	}
	return out
}

// FindMethod locates a method by its qualified ID, with or without the
// descriptor suffix. Without a descriptor the first overload wins.
func (a *Archive) FindMethod(id string) *Method {
	for _, m := range a.Methods() {
		if m.ID() == id {
			return m
		}
		if idx := strings.IndexByte(m.ID(), '('); idx >= 0 && m.ID()[:idx] == id {
			return m
		}
	}
	return nil
}
