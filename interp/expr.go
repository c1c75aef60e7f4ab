package interp

import (
	"fmt"
	"math"
	"strings"

	"github.com/algolang/algolang/ast"
)

// evalExpr evaluates an expression. Expression evaluation never suspends:
// it only recurses into more evalExpr/call calls, never touches the
// event channels directly except through a call in stepping context,
// which is only reachable when a CallStmt, not a CallExpr, is involved.
func (i *interp) evalExpr(e ast.Expr) (Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		switch n.Kind {
		case ast.LitNumber:
			return Real(n.Num), nil
		case ast.LitString:
			return StringVal(n.Str), nil
		case ast.LitBoolean:
			return Boolean(n.Bool), nil
		}
		return Value{}, &RuntimeError{Message: "System Error: unknown literal kind"}

	case *ast.Identifier:
		cell, ok := i.lookup(n.Name)
		if !ok {
			return Value{}, &RuntimeError{Message: fmt.Sprintf("Variable '%s' not declared.", n.Name)}
		}
		return *cell, nil

	case *ast.ArrayAccess:
		cell, _, err := i.resolveArrayCell(n.Name, n.Indices)
		if err != nil {
			return Value{}, err
		}
		return *cell, nil

	case *ast.UnaryOp:
		return i.evalUnary(n)

	case *ast.BinaryOp:
		return i.evalBinary(n)

	case *ast.CallExpr:
		return i.callSync(n.Name, n.Args)
	}

	return Value{}, &RuntimeError{Message: fmt.Sprintf("System Error: unknown expression %T", e)}
}

func (i *interp) evalUnary(u *ast.UnaryOp) (Value, error) {
	v, err := i.evalExpr(u.Operand)
	if err != nil {
		return Value{}, err
	}
	switch u.Op {
	case ast.OpNeg:
		if v.Kind != KReal {
			return Value{}, &RuntimeError{Message: "unary '-' requires a numeric operand."}
		}
		return Real(-v.Num), nil
	case ast.OpNot:
		if v.Kind != KBoolean {
			return Value{}, &RuntimeError{Message: "'Not' requires a boolean operand."}
		}
		return Boolean(!v.Bool), nil
	}
	return Value{}, &RuntimeError{Message: "System Error: unknown unary operator"}
}

func (i *interp) evalBinary(b *ast.BinaryOp) (Value, error) {
	if b.Op == ast.OpAnd || b.Op == ast.OpOr {
		l, err := i.evalExpr(b.Left)
		if err != nil {
			return Value{}, err
		}
		if l.Kind != KBoolean {
			return Value{}, &RuntimeError{Message: "'And'/'Or' require boolean operands."}
		}
		if b.Op == ast.OpAnd && !l.Bool {
			return Boolean(false), nil
		}
		if b.Op == ast.OpOr && l.Bool {
			return Boolean(true), nil
		}
		r, err := i.evalExpr(b.Right)
		if err != nil {
			return Value{}, err
		}
		if r.Kind != KBoolean {
			return Value{}, &RuntimeError{Message: "'And'/'Or' require boolean operands."}
		}
		return r, nil
	}

	l, err := i.evalExpr(b.Left)
	if err != nil {
		return Value{}, err
	}
	r, err := i.evalExpr(b.Right)
	if err != nil {
		return Value{}, err
	}

	switch b.Op {
	case ast.OpEq:
		return Boolean(valuesEqual(l, r)), nil
	case ast.OpNeq:
		return Boolean(!valuesEqual(l, r)), nil
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		if l.Kind != KReal || r.Kind != KReal {
			return Value{}, &RuntimeError{Message: "comparison requires numeric operands."}
		}
		switch b.Op {
		case ast.OpLt:
			return Boolean(l.Num < r.Num), nil
		case ast.OpLte:
			return Boolean(l.Num <= r.Num), nil
		case ast.OpGt:
			return Boolean(l.Num > r.Num), nil
		default:
			return Boolean(l.Num >= r.Num), nil
		}
	case ast.OpAdd:
		if l.Kind == KString || r.Kind == KString {
			// '+' on strings concatenates the formatted operands.
			return StringVal(l.Format() + r.Format()), nil
		}
		if l.Kind != KReal || r.Kind != KReal {
			return Value{}, &RuntimeError{Message: "'+' requires numeric operands."}
		}
		return Real(l.Num + r.Num), nil
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpIDiv, ast.OpMod:
		if l.Kind != KReal || r.Kind != KReal {
			return Value{}, &RuntimeError{Message: "arithmetic requires numeric operands."}
		}
		switch b.Op {
		case ast.OpSub:
			return Real(l.Num - r.Num), nil
		case ast.OpMul:
			return Real(l.Num * r.Num), nil
		case ast.OpDiv:
			return Real(l.Num / r.Num), nil
		case ast.OpIDiv:
			return Real(math.Floor(l.Num / r.Num)), nil
		default: // Mod
			return Real(math.Mod(l.Num, r.Num)), nil
		}
	}
	return Value{}, &RuntimeError{Message: "System Error: unknown binary operator"}
}

func valuesEqual(l, r Value) bool {
	if l.Kind != r.Kind {
		return false
	}
	switch l.Kind {
	case KReal:
		return l.Num == r.Num
	case KBoolean:
		return l.Bool == r.Bool
	case KString:
		return l.Str == r.Str
	default:
		return false // array equality is unspecified
	}
}

func (i *interp) findCallable(name string) (*ast.FunctionDecl, *ast.ProcedureDecl, bool) {
	key := strings.ToUpper(name)
	if fn, ok := i.program.Functions[key]; ok {
		return fn, nil, true
	}
	if pr, ok := i.program.Procedures[key]; ok {
		return nil, pr, true
	}
	return nil, nil, false
}

func (i *interp) evalArgs(args []ast.Expr) ([]Value, error) {
	vals := make([]Value, len(args))
	for idx, a := range args {
		v, err := i.evalExpr(a)
		if err != nil {
			return nil, err
		}
		vals[idx] = v
	}
	return vals, nil
}

// callStepping executes a call appearing as a statement: nested Step,
// Output and Input events reach the host normally.
func (i *interp) callStepping(name string, argExprs []ast.Expr) (Value, error) {
	return i.call(name, argExprs, true)
}

// callSync executes a call appearing inside an expression: it runs to
// completion with no event emitted from inside it.
func (i *interp) callSync(name string, argExprs []ast.Expr) (Value, error) {
	return i.call(name, argExprs, false)
}

func (i *interp) call(name string, argExprs []ast.Expr, stepping bool) (Value, error) {
	fn, proc, ok := i.findCallable(name)
	if !ok {
		return Value{}, &RuntimeError{Message: fmt.Sprintf("Unknown procedure/function '%s'.", name)}
	}
	var params []ast.Param
	var vars []ast.VarDecl
	var body *ast.Block
	if fn != nil {
		params, vars, body = fn.Params, fn.Vars, fn.Body
	} else {
		params, vars, body = proc.Params, proc.Vars, proc.Body
	}
	if len(argExprs) != len(params) {
		return Value{}, &RuntimeError{Message: fmt.Sprintf("'%s' expects %d arguments, got %d.", name, len(params), len(argExprs))}
	}
	args, err := i.evalArgs(argExprs)
	if err != nil {
		return Value{}, err
	}

	prevSuspendable := i.suspendable
	i.suspendable = i.suspendable && stepping
	defer func() { i.suspendable = prevSuspendable }()

	f := newFrame()
	for idx, p := range params {
		v := args[idx]
		f.vars[p.Name] = &v
		f.declTypes[p.Name] = p.Type
	}
	f.declare(vars)

	i.frames = append(i.frames, f)
	i.callDepth++
	fl, err := i.execBlock(body)
	i.callDepth--
	i.frames = i.frames[:len(i.frames)-1]
	if err != nil {
		return Value{}, err
	}
	if fl.kind == flowReturn {
		return fl.value, nil
	}
	if fn != nil {
		return defaultScalar(fn.ReturnType), nil
	}
	return Value{}, nil
}
