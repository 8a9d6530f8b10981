package ir

import (
	"fmt"
	"io"
	"strings"
)

// Print writes a human-readable disassembly of f's linked instructions to w,
// one per line prefixed by its index — used by -trace and by tests that
// assert on IR shape instead of runtime behavior.
func Print(w io.Writer, f *Function) error {
	for i, inst := range f.Instructions {
		if _, err := fmt.Fprintf(w, "%4d  %s\n", i, inst.String()); err != nil {
			return err
		}
	}
	return nil
}

func (u Unit) String() string {
	switch u.Kind {
	case UCopy:
		return fmt.Sprintf("copy r%d = %s", u.Dst, u.Src)
	case UStore:
		return fmt.Sprintf("store r%d = %s", u.Dst, u.Src)
	case UFunctionCall:
		name := u.IntrinsicName
		if u.Fn != nil {
			name = u.Fn.Name
		}
		return fmt.Sprintf("call r%d.. = %s(%s)", u.FirstDst, name, joinValues(u.Args))
	case UReturn:
		return "return"
	case UJump:
		return fmt.Sprintf("jump cond=%d %s offset=%d", u.Cond, u.JumpSrc, u.Offset)
	case UBinaryOp:
		return fmt.Sprintf("binop r%d = %s op%d %s", u.Dst, u.Lhs, u.Op, u.Rhs)
	case USignOp:
		return fmt.Sprintf("signop r%d = op%d %s", u.Dst, u.SignO, u.Src)
	case UChild:
		return fmt.Sprintf("child r%d = %s[%s] member=%v", u.Dst, u.Src, u.Index, u.IsMember)
	case UResultEval:
		return fmt.Sprintf("result_eval %s", u.Src)
	default:
		return "empty"
	}
}

func (v Value) String() string {
	switch v.Kind {
	case VNone:
		return "none"
	case VLiteralInt:
		return fmt.Sprintf("%d", v.Int)
	case VLiteralBool:
		return fmt.Sprintf("%v", v.Bool)
	case VLiteralString:
		return fmt.Sprintf("%q", v.Str)
	case VLiteralType:
		return v.LitVT.String()
	case VLiteralEnum:
		return fmt.Sprintf("%s#%d", v.Type, v.Int)
	case VZeroInit:
		return fmt.Sprintf("zero(%s)", v.Type)
	case VArray:
		return fmt.Sprintf("{%s}", joinValues(v.Elems))
	case VStringComposition:
		return fmt.Sprintf("concat(%s)", joinValues(v.Elems))
	case VMultipleReturn:
		return fmt.Sprintf("multi(%s)", joinValues(v.Elems))
	case VRegister:
		return refOpPrefix(v.RefOp) + fmt.Sprintf("r%d", v.RegIndex)
	case VLValue:
		return refOpPrefix(v.RefOp) + fmt.Sprintf("lv%d", v.RegIndex)
	default:
		return "?"
	}
}

func refOpPrefix(refOp int) string {
	if refOp > 0 {
		return strings.Repeat("&", refOp)
	}
	if refOp < 0 {
		return strings.Repeat("*", -refOp)
	}
	return ""
}

func joinValues(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
