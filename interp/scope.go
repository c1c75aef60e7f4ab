package interp

import "github.com/algolang/algolang/ast"

// frame is one scope: a mapping from name to a runtime value cell, plus
// the declared base type of each scalar (needed for Read's expected-type
// parsing even after a cell has been reassigned to a different kind).
type frame struct {
	vars      map[string]*Value
	declTypes map[string]string
}

func newFrame() *frame {
	return &frame{vars: map[string]*Value{}, declTypes: map[string]string{}}
}

func (f *frame) declare(decls []ast.VarDecl) {
	for _, d := range decls {
		for _, name := range d.Names {
			var v Value
			if d.IsArray() {
				v = newArray(baseKind(d.Type), append([]int(nil), d.Dims...))
			} else {
				v = defaultScalar(d.Type)
			}
			cell := v
			f.vars[name] = &cell
			f.declTypes[name] = d.Type
		}
	}
}

// lookup searches the call stack from top to bottom and returns the
// innermost binding, so mutation through the returned pointer lands on
// the cell that a later read would find.
func (i *interp) lookup(name string) (*Value, bool) {
	for idx := len(i.frames) - 1; idx >= 0; idx-- {
		if v, ok := i.frames[idx].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (i *interp) lookupDeclType(name string) (string, bool) {
	for idx := len(i.frames) - 1; idx >= 0; idx-- {
		if t, ok := i.frames[idx].declTypes[name]; ok {
			return t, true
		}
	}
	return "", false
}

// snapshot returns a deep copy of every variable visible across the
// whole scope stack, inner frames overriding outer ones, suitable for
// attaching to a Step event.
func (i *interp) snapshot() map[string]Value {
	snap := make(map[string]Value)
	for _, f := range i.frames {
		for name, v := range f.vars {
			snap[name] = v.Clone()
		}
	}
	return snap
}
