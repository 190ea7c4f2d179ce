package apl

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Load reads, resolves and compiles the rotation at path. Imports are
// resolved relative to the file's directory.
func Load(p string) (*CompiledRotation, error) {
	return LoadFS(os.DirFS(filepath.Dir(p)), filepath.Base(p))
}

// LoadFS is Load over an arbitrary filesystem rooted at the rotation
// directory.
func LoadFS(fsys fs.FS, name string) (*CompiledRotation, error) {
	file, err := resolve(fsys, path.Clean(filepath.ToSlash(name)), nil)
	if err != nil {
		return nil, err
	}
	compiled, err := Compile(file)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return compiled, nil
}

// resolve loads name and splices its imports, depth first, ahead of its own
// entries. Variables from imports are visible to the importer unless it
// redefines them.
func resolve(fsys fs.FS, name string, stack []string) (*File, error) {
	for _, open := range stack {
		if open == name {
			return nil, fmt.Errorf("rotation import cycle: %s", strings.Join(append(stack, name), " -> "))
		}
	}
	stack = append(stack, name)

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read rotation %s: %w", name, err)
	}
	file, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	var entries []ActionDefinition
	vars := map[string]any{}
	for _, imp := range file.Imports {
		child, err := resolve(fsys, path.Join(path.Dir(name), imp), stack)
		if err != nil {
			return nil, err
		}
		entries = append(entries, child.Rotation...)
		for k, v := range child.Variables {
			vars[k] = v
		}
	}
	for k, v := range file.Variables {
		vars[k] = v
	}
	file.Rotation = append(entries, file.Rotation...)
	file.Variables = vars
	return file, nil
}
