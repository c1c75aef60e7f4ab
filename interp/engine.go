package interp

import (
	"fmt"
	"strings"

	"github.com/algolang/algolang/ast"
)

// interp walks the AST under a call stack of scopes. suspendable is false
// while executing inside a function called from expression context: in
// that mode no Step/Output/Input events reach the host.
type interp struct {
	handle      *Handle
	program     *ast.Program
	frames      []*frame
	suspendable bool
	callDepth   int
}

func (i *interp) pushGlobal(decls []ast.VarDecl) {
	f := newFrame()
	f.declare(decls)
	i.frames = append(i.frames, f)
}

type flowKind int

const (
	flowNormal flowKind = iota
	flowReturn
)

type flow struct {
	kind  flowKind
	value Value
}

func (i *interp) stepEvent(line int) {
	if !i.suspendable {
		return
	}
	i.handle.emitStep(line, i.snapshot())
}

func (i *interp) execBlock(block *ast.Block) (flow, error) {
	for _, stmt := range block.Statements {
		fl, err := i.execStatement(stmt)
		if err != nil {
			return flow{}, err
		}
		if fl.kind == flowReturn {
			return fl, nil
		}
	}
	return flow{}, nil
}

func (i *interp) execStatement(stmt ast.Statement) (flow, error) {
	switch s := stmt.(type) {
	case *ast.Block:
		return i.execBlock(s)

	case *ast.Assignment:
		i.stepEvent(s.Line)
		val, err := i.evalExpr(s.Value)
		if err != nil {
			return flow{}, err
		}
		if err := i.assign(s.Target, val); err != nil {
			return flow{}, err
		}
		return flow{}, nil

	case *ast.If:
		i.stepEvent(s.Line)
		cond, err := i.evalExpr(s.Cond)
		if err != nil {
			return flow{}, err
		}
		if cond.Truthy() {
			return i.execBlock(s.Then)
		}
		if s.Else != nil {
			return i.execBlock(s.Else)
		}
		return flow{}, nil

	case *ast.While:
		for {
			i.stepEvent(s.Line)
			cond, err := i.evalExpr(s.Cond)
			if err != nil {
				return flow{}, err
			}
			if !cond.Truthy() {
				return flow{}, nil
			}
			fl, err := i.execBlock(s.Body)
			if err != nil {
				return flow{}, err
			}
			if fl.kind == flowReturn {
				return fl, nil
			}
		}

	case *ast.For:
		return i.execFor(s)

	case *ast.IO:
		return i.execIO(s)

	case *ast.Return:
		if i.callDepth == 0 {
			return flow{}, &RuntimeError{Message: "Return outside function or procedure."}
		}
		i.stepEvent(s.Line)
		if s.Value == nil {
			return flow{kind: flowReturn}, nil
		}
		v, err := i.evalExpr(s.Value)
		if err != nil {
			return flow{}, err
		}
		return flow{kind: flowReturn, value: v}, nil

	case *ast.CallStmt:
		i.stepEvent(s.Line)
		if _, err := i.callStepping(s.Name, s.Args); err != nil {
			return flow{}, err
		}
		return flow{}, nil
	}

	return flow{}, &RuntimeError{Message: fmt.Sprintf("System Error: unknown statement %T", stmt)}
}

func (i *interp) execFor(s *ast.For) (flow, error) {
	startV, err := i.evalExpr(s.Start)
	if err != nil {
		return flow{}, err
	}
	endV, err := i.evalExpr(s.End)
	if err != nil {
		return flow{}, err
	}
	stepV := Real(1)
	if s.Step != nil {
		stepV, err = i.evalExpr(s.Step)
		if err != nil {
			return flow{}, err
		}
	}
	if startV.Kind != KReal || endV.Kind != KReal || stepV.Kind != KReal {
		return flow{}, &RuntimeError{Message: fmt.Sprintf("'%s' is not numeric.", s.Var)}
	}
	cell, ok := i.lookup(s.Var)
	if !ok {
		return flow{}, &RuntimeError{Message: fmt.Sprintf("Variable '%s' not declared.", s.Var)}
	}
	*cell = Real(startV.Num)
	step := stepV.Num
	end := endV.Num

	for {
		i.stepEvent(s.Line)
		if cell.Kind != KReal {
			return flow{}, &RuntimeError{Message: fmt.Sprintf("'%s' is not numeric.", s.Var)}
		}
		current := cell.Num
		var exit bool
		if step >= 0 {
			exit = current > end
		} else {
			exit = current < end
		}
		if exit {
			return flow{}, nil
		}
		fl, err := i.execBlock(s.Body)
		if err != nil {
			return flow{}, err
		}
		if fl.kind == flowReturn {
			return fl, nil
		}
		cell.Num += step
	}
}

func (i *interp) execIO(s *ast.IO) (flow, error) {
	i.stepEvent(s.Line)
	if !i.suspendable {
		// I/O inside an expression-mode call is silently skipped.
		return flow{}, nil
	}
	if s.Direction == ast.DirWrite {
		parts := make([]string, len(s.Args))
		for idx, a := range s.Args {
			v, err := i.evalExpr(a)
			if err != nil {
				return flow{}, err
			}
			parts[idx] = v.Format()
		}
		i.handle.emitOutput(strings.Join(parts, " "))
		return flow{}, nil
	}
	for _, a := range s.Args {
		name, declType, set, err := i.readTarget(a)
		if err != nil {
			return flow{}, err
		}
		reply := i.handle.requestInput(name, declType)
		v, perr := ParseInput(reply, declType)
		if perr != nil {
			return flow{}, &RuntimeError{Message: perr.Error()}
		}
		set(v)
	}
	return flow{}, nil
}

func (i *interp) readTarget(a ast.Expr) (name string, declType string, set func(Value), err error) {
	switch t := a.(type) {
	case *ast.Identifier:
		dt, ok := i.lookupDeclType(t.Name)
		if !ok {
			return "", "", nil, &RuntimeError{Message: fmt.Sprintf("Variable '%s' not declared.", t.Name)}
		}
		cell, _ := i.lookup(t.Name)
		return t.Name, dt, func(v Value) { *cell = v }, nil
	case *ast.ArrayAccess:
		cell, elemKind, err := i.resolveArrayCell(t.Name, t.Indices)
		if err != nil {
			return "", "", nil, err
		}
		return t.Name, kindTypeName(elemKind), func(v Value) { *cell = v }, nil
	}
	return "", "", nil, &RuntimeError{Message: "System Error: invalid Read target"}
}

func kindTypeName(k Kind) string {
	switch k {
	case KBoolean:
		return "Boolean"
	case KString:
		return "String"
	default:
		return "Real"
	}
}

func (i *interp) assign(target ast.Expr, v Value) error {
	switch t := target.(type) {
	case *ast.Identifier:
		cell, ok := i.lookup(t.Name)
		if !ok {
			return &RuntimeError{Message: fmt.Sprintf("Variable '%s' not declared.", t.Name)}
		}
		*cell = v
		return nil
	case *ast.ArrayAccess:
		cell, _, err := i.resolveArrayCell(t.Name, t.Indices)
		if err != nil {
			return err
		}
		*cell = v
		return nil
	}
	return &RuntimeError{Message: "System Error: invalid assignment target"}
}

// resolveArrayCell walks indices into a declared array variable, checking
// 0 <= index < dim at every level, and returns the leaf cell's address
// plus the array's fixed element kind.
func (i *interp) resolveArrayCell(name string, idxExprs []ast.Expr) (*Value, Kind, error) {
	root, ok := i.lookup(name)
	if !ok {
		return nil, 0, &RuntimeError{Message: fmt.Sprintf("Variable '%s' not declared.", name)}
	}
	if root.Kind != KArray {
		return nil, 0, &RuntimeError{Message: fmt.Sprintf("'%s' is not an array.", name)}
	}
	elemKind := root.ElemKind
	cur := root
	for _, idxExpr := range idxExprs {
		if cur.Kind != KArray {
			return nil, 0, &RuntimeError{Message: fmt.Sprintf("'%s' is not an array.", name)}
		}
		idxVal, err := i.evalExpr(idxExpr)
		if err != nil {
			return nil, 0, err
		}
		if idxVal.Kind != KReal {
			return nil, 0, &RuntimeError{Message: fmt.Sprintf("'%s' is not an array.", name)}
		}
		idx := int(idxVal.Num)
		if idx < 0 || idx >= len(cur.Elems) {
			return nil, 0, &RuntimeError{Message: fmt.Sprintf("Index %d out of bounds.", idx)}
		}
		cur = &cur.Elems[idx]
	}
	return cur, elemKind, nil
}
