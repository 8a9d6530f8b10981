package sema

import (
	"github.com/yov-lang/yov/internal/ast"
	"github.com/yov-lang/yov/internal/defs"
	"github.com/yov-lang/yov/internal/ir"
	"github.com/yov-lang/yov/internal/token"
	"github.com/yov-lang/yov/internal/types"
)

// BuildFunction lowers decl's body into fn, a pre-allocated *ir.Function
// shell (registered into the owning ir.File.Functions map before any body
// is built, so forward/recursive calls already have a stable *ir.Function
// to point their UFunctionCall.Fn at). fn must be empty of registers; its
// parameter/return registers are added here from fd's resolved signature.
func (b *Builder) BuildFunction(fd *defs.FunctionDefinition, decl *ast.FuncDecl, fn *ir.Function) []Error {
	b.fn = fn
	b.scope = newScope(nil)
	b.loops = nil
	b.errs = nil

	for _, p := range fd.Params {
		idx := fn.AddParameter(p.Name, p.Type)
		b.scope.define(p.Name, idx)
	}
	returnRegs := make([]int, len(fd.Returns))
	for i, r := range fd.Returns {
		returnRegs[i] = fn.AddReturn(r.Type)
	}
	b.returnRegs = returnRegs

	b.buildBlock(decl.Body, false)
	fn.Emit(&ir.Unit{Kind: ir.UReturn, Pos: decl.Body.Pos().End})

	if len(fd.Returns) > 0 && !blockAlwaysReturns(decl.Body) {
		b.errorf(decl.Pos().Start, "function %q does not return a value on every path", fd.Identifier)
	}

	return b.errs
}

// BuildGlobalInit lowers every top-level ObjectDeclStmt into fn, whose
// Dst register indices are interpreted by the runtime as indices into the
// program's global register file rather than a private local frame: a
// global initializer has no caller-local storage of its own, so reusing
// the Function shape (and ir.Print's disassembly) for it is simpler than
// inventing a second IR shape solely for globals.
func (b *Builder) BuildGlobalInit(file *ir.File, globals []*ast.ObjectDeclStmt, lookup func(string) (*defs.GlobalDefinition, bool)) (*ir.Function, []Error) {
	fn := ir.NewFunction("$global_init", "")
	fn.Registers = append(fn.Registers, file.Globals...)

	b.fn = fn
	b.scope = newScope(nil)
	b.loops = nil
	b.errs = nil

	for _, decl := range globals {
		name := decl.Names[0].Name
		gd, ok := lookup(name)
		if !ok {
			b.errorf(decl.Pos().Start, "internal error: global %q was not identified", name)
			continue
		}
		var val ir.Value
		if decl.Value != nil {
			val = b.buildExpr(decl.Value)
			val = b.coerce(val, gd.Type)
		} else {
			val = ir.ZeroInit(gd.Type)
		}
		fn.Emit(&ir.Unit{Kind: ir.UCopy, Pos: decl.Pos().Start, Dst: gd.Index, DstGlobal: true, Src: val})
	}
	fn.Emit(&ir.Unit{Kind: ir.UReturn})
	return fn, b.errs
}

func (b *Builder) buildBlock(block *ast.BlockStmt, newInnerScope bool) {
	if newInnerScope {
		b.scope = newScope(b.scope)
		defer func() { b.scope = b.scope.parent }()
	}
	for _, s := range block.List {
		b.buildStmt(s)
	}
}

func (b *Builder) buildStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.BlockStmt:
		b.buildBlock(s, true)
	case *ast.ExprStmt:
		b.buildExprStmt(s.X)
	case *ast.ObjectDeclStmt:
		b.buildObjectDecl(s)
	case *ast.AssignStmt:
		b.buildAssign(s)
	case *ast.ReturnStmt:
		b.buildReturn(s)
	case *ast.IfStmt:
		b.buildIf(s)
	case *ast.WhileStmt:
		b.buildWhile(s)
	case *ast.ForStmt:
		b.buildFor(s)
	case *ast.ForInStmt:
		b.buildForIn(s)
	case *ast.BreakStmt:
		b.buildBreak(s)
	case *ast.ContinueStmt:
		b.buildContinue(s)
	case *ast.BadNode:
		// already reported by the parser
	default:
		b.errorf(s.Pos().Start, "unsupported statement node %T", s)
	}
}

func (b *Builder) buildObjectDecl(s *ast.ObjectDeclStmt) {
	if s.IsConstant {
		val := b.buildExpr(s.Value)
		idx := b.fn.AddNamedLocal(s.Names[0].Name, val.Type, true)
		b.scope.define(s.Names[0].Name, idx)
		b.fn.Emit(&ir.Unit{Kind: ir.UCopy, Pos: s.Pos().Start, Dst: idx, Src: val})
		return
	}

	var declType types.VType
	if s.Type != nil {
		declType = b.resolveType(s.Type)
	}
	var val ir.Value
	switch {
	case s.Value != nil:
		val = b.buildExpr(s.Value)
		if s.Type == nil {
			declType = val.Type
		} else {
			val = b.coerce(val, declType)
		}
	default:
		val = ir.ZeroInit(declType)
	}
	for _, name := range s.Names {
		idx := b.fn.AddNamedLocal(name.Name, declType, false)
		b.scope.define(name.Name, idx)
		b.fn.Emit(&ir.Unit{Kind: ir.UCopy, Pos: s.Pos().Start, Dst: idx, Src: val})
	}
}

func (b *Builder) buildAssign(s *ast.AssignStmt) {
	if len(s.LHS) > 1 {
		b.buildMultiAssign(s)
		return
	}

	lv, ok := b.buildLValue(s.LHS[0])
	if !ok {
		return
	}
	rhs := b.buildExpr(s.RHS[0])
	if s.Op != token.Assign {
		op, ok := compoundBinOp(s.Op)
		if !ok {
			b.errorf(s.Pos().Start, "unsupported assignment operator %s", s.Op)
			return
		}
		cur := ir.Reg(ir.VRegister, lv.RegIndex, lv.Type)
		cur.Global = lv.Global
		result, ok := cur.Type.ResultOfBinaryOp(rhs.Type, op, b.Defs.Types)
		if !ok {
			b.errorf(s.Pos().Start, "operator %s not defined between %s and %s", s.Op, cur.Type, rhs.Type)
			return
		}
		dst := b.newTemp(result)
		b.fn.Emit(&ir.Unit{Kind: ir.UBinaryOp, Pos: s.Pos().Start, Dst: dst, Op: op, Lhs: cur, Rhs: rhs})
		rhs = ir.Reg(ir.VRegister, dst, result)
	}
	rhs = b.coerce(rhs, lv.Type)
	if lv.Direct {
		b.fn.Emit(&ir.Unit{Kind: ir.UCopy, Pos: s.Pos().Start, Dst: lv.RegIndex, DstGlobal: lv.Global, Src: rhs})
	} else {
		b.fn.Emit(&ir.Unit{Kind: ir.UStore, Pos: s.Pos().Start, Dst: lv.RegIndex, Src: rhs})
	}
}

// buildMultiAssign lowers `a, b = f()`, where RHS must be a single call
// with as many results as there are LHS targets.
func (b *Builder) buildMultiAssign(s *ast.AssignStmt) {
	call, ok := s.RHS[0].(*ast.CallExpr)
	if len(s.RHS) != 1 || !ok {
		b.errorf(s.Pos().Start, "multiple assignment requires a single multi-return call on the right")
		return
	}
	v := b.buildExprRaw(call)
	if v.Kind != ir.VMultipleReturn || len(v.Elems) != len(s.LHS) {
		b.errorf(s.Pos().Start, "call does not return %d values", len(s.LHS))
		return
	}
	for i, lhsExpr := range s.LHS {
		lv, ok := b.buildLValue(lhsExpr)
		if !ok {
			continue
		}
		rhs := b.coerce(v.Elems[i], lv.Type)
		if lv.Direct {
			b.fn.Emit(&ir.Unit{Kind: ir.UCopy, Pos: s.Pos().Start, Dst: lv.RegIndex, DstGlobal: lv.Global, Src: rhs})
		} else {
			b.fn.Emit(&ir.Unit{Kind: ir.UStore, Pos: s.Pos().Start, Dst: lv.RegIndex, Src: rhs})
		}
	}
}

func compoundBinOp(k token.Kind) (types.BinOp, bool) {
	switch k {
	case token.AddAssign:
		return types.OpAdd, true
	case token.SubAssign:
		return types.OpSub, true
	case token.MulAssign:
		return types.OpMul, true
	case token.DivAssign:
		return types.OpDiv, true
	case token.ModAssign:
		return types.OpMod, true
	default:
		return 0, false
	}
}

func (b *Builder) buildReturn(s *ast.ReturnStmt) {
	if len(s.Results) != len(b.returnRegs) {
		b.errorf(s.Pos().Start, "expected %d return value(s), got %d", len(b.returnRegs), len(s.Results))
	}
	for i, e := range s.Results {
		if i >= len(b.returnRegs) {
			break
		}
		v := b.buildExpr(e)
		v = b.coerce(v, b.fn.Registers[b.returnRegs[i]].Type)
		b.fn.Emit(&ir.Unit{Kind: ir.UCopy, Pos: s.Pos().Start, Dst: b.returnRegs[i], Src: v})
	}
	b.fn.Emit(&ir.Unit{Kind: ir.UReturn, Pos: s.Pos().Start})
}

func (b *Builder) buildIf(s *ast.IfStmt) {
	cond := b.buildExpr(s.Cond)
	elseAnchor := ir.NewEmpty()
	b.fn.Emit(&ir.Unit{Kind: ir.UJump, Pos: s.Pos().Start, Cond: -1, JumpSrc: cond, Target: elseAnchor})
	b.buildBlock(s.Body, true)

	if s.Else == nil {
		b.fn.Place(elseAnchor)
		return
	}
	endAnchor := ir.NewEmpty()
	b.fn.Emit(&ir.Unit{Kind: ir.UJump, Pos: s.Pos().Start, Cond: 0, Target: endAnchor})
	b.fn.Place(elseAnchor)
	switch e := s.Else.(type) {
	case *ast.BlockStmt:
		b.buildBlock(e, true)
	default:
		b.buildStmt(e)
	}
	b.fn.Place(endAnchor)
}

func (b *Builder) buildWhile(s *ast.WhileStmt) {
	condAnchor := ir.NewEmpty()
	b.fn.Place(condAnchor)
	cond := b.buildExpr(s.Cond)
	endAnchor := ir.NewEmpty()
	b.fn.Emit(&ir.Unit{Kind: ir.UJump, Pos: s.Pos().Start, Cond: -1, JumpSrc: cond, Target: endAnchor})

	b.loops = append(b.loops, &loopFrame{continueTarget: condAnchor, breakTarget: endAnchor})
	b.buildBlock(s.Body, true)
	b.loops = b.loops[:len(b.loops)-1]

	b.fn.Emit(&ir.Unit{Kind: ir.UJump, Pos: s.Pos().Start, Cond: 0, Target: condAnchor})
	b.fn.Place(endAnchor)
}

func (b *Builder) buildFor(s *ast.ForStmt) {
	b.scope = newScope(b.scope)
	defer func() { b.scope = b.scope.parent }()

	if s.Init != nil {
		b.buildStmt(s.Init)
	}
	condAnchor := ir.NewEmpty()
	b.fn.Place(condAnchor)
	endAnchor := ir.NewEmpty()
	if s.Cond != nil {
		cond := b.buildExpr(s.Cond)
		b.fn.Emit(&ir.Unit{Kind: ir.UJump, Pos: s.Pos().Start, Cond: -1, JumpSrc: cond, Target: endAnchor})
	}

	postAnchor := ir.NewEmpty()
	b.loops = append(b.loops, &loopFrame{continueTarget: postAnchor, breakTarget: endAnchor})
	b.buildBlock(s.Body, true)
	b.loops = b.loops[:len(b.loops)-1]

	b.fn.Place(postAnchor)
	if s.Post != nil {
		b.buildStmt(s.Post)
	}
	b.fn.Emit(&ir.Unit{Kind: ir.UJump, Pos: s.Pos().Start, Cond: 0, Target: condAnchor})
	b.fn.Place(endAnchor)
}

// buildForIn desugars `for (elem[, idx] : arr) body` into an index-counted
// C-style loop over arr's element count (spec.md §4.6's ForIn lowering).
func (b *Builder) buildForIn(s *ast.ForInStmt) {
	b.scope = newScope(b.scope)
	defer func() { b.scope = b.scope.parent }()

	arr := b.buildExpr(s.X)
	idxReg := b.fn.AddNamedLocal("%idx", types.Int(), false)
	b.fn.Emit(&ir.Unit{Kind: ir.UCopy, Pos: s.Pos().Start, Dst: idxReg, Src: ir.LitInt(0)})

	countIdx, countType, ok := arr.Type.Property("count")
	if !ok {
		b.errorf(s.X.Pos().Start, "for-in source must be an array")
		return
	}
	countReg := b.newTemp(countType)
	b.fn.Emit(&ir.Unit{Kind: ir.UChild, Pos: s.Pos().Start, Dst: countReg, Src: arr, Index: ir.LitInt(int64(countIdx)), IsMember: true})

	condAnchor := ir.NewEmpty()
	b.fn.Place(condAnchor)
	endAnchor := ir.NewEmpty()
	cmpDst := b.newTemp(types.Bool())
	b.fn.Emit(&ir.Unit{
		Kind: ir.UBinaryOp, Pos: s.Pos().Start, Dst: cmpDst, Op: types.OpLt,
		Lhs: ir.Reg(ir.VRegister, idxReg, types.Int()), Rhs: ir.Reg(ir.VRegister, countReg, types.Int()),
	})
	b.fn.Emit(&ir.Unit{Kind: ir.UJump, Pos: s.Pos().Start, Cond: -1, JumpSrc: ir.Reg(ir.VRegister, cmpDst, types.Bool()), Target: endAnchor})

	elemType := arr.Type.Next(b.Defs.Types)
	elemReg := b.fn.AddNamedLocal(s.Elem.Name, elemType, false)
	b.fn.Emit(&ir.Unit{Kind: ir.UChild, Pos: s.Pos().Start, Dst: elemReg, Src: arr, Index: ir.Reg(ir.VRegister, idxReg, types.Int())})
	b.scope.define(s.Elem.Name, elemReg)
	if s.Idx != nil {
		b.scope.define(s.Idx.Name, idxReg)
	}

	postAnchor := ir.NewEmpty()
	b.loops = append(b.loops, &loopFrame{continueTarget: postAnchor, breakTarget: endAnchor})
	b.buildBlock(s.Body, true)
	b.loops = b.loops[:len(b.loops)-1]

	b.fn.Place(postAnchor)
	nextDst := b.newTemp(types.Int())
	b.fn.Emit(&ir.Unit{
		Kind: ir.UBinaryOp, Pos: s.Pos().Start, Dst: nextDst, Op: types.OpAdd,
		Lhs: ir.Reg(ir.VRegister, idxReg, types.Int()), Rhs: ir.LitInt(1),
	})
	b.fn.Emit(&ir.Unit{Kind: ir.UCopy, Pos: s.Pos().Start, Dst: idxReg, Src: ir.Reg(ir.VRegister, nextDst, types.Int())})
	b.fn.Emit(&ir.Unit{Kind: ir.UJump, Pos: s.Pos().Start, Cond: 0, Target: condAnchor})
	b.fn.Place(endAnchor)
}

func (b *Builder) buildBreak(s *ast.BreakStmt) {
	if len(b.loops) == 0 {
		b.errorf(s.Pos().Start, "break outside a loop")
		return
	}
	top := b.loops[len(b.loops)-1]
	b.fn.Emit(&ir.Unit{Kind: ir.UJump, Pos: s.Pos().Start, Cond: 0, Target: top.breakTarget})
}

func (b *Builder) buildContinue(s *ast.ContinueStmt) {
	if len(b.loops) == 0 {
		b.errorf(s.Pos().Start, "continue outside a loop")
		return
	}
	top := b.loops[len(b.loops)-1]
	b.fn.Emit(&ir.Unit{Kind: ir.UJump, Pos: s.Pos().Start, Cond: 0, Target: top.continueTarget})
}

// blockAlwaysReturns is a conservative backward return-path check: it
// recognizes a trailing return, or an if/else whose every branch itself
// always returns. Loops are never assumed to run, so a return only inside
// one is not enough.
func blockAlwaysReturns(b *ast.BlockStmt) bool {
	if len(b.List) == 0 {
		return false
	}
	return stmtAlwaysReturns(b.List[len(b.List)-1])
}

func stmtAlwaysReturns(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.BlockStmt:
		return blockAlwaysReturns(s)
	case *ast.IfStmt:
		if s.Else == nil {
			return false
		}
		if !blockAlwaysReturns(s.Body) {
			return false
		}
		switch e := s.Else.(type) {
		case *ast.BlockStmt:
			return blockAlwaysReturns(e)
		default:
			return stmtAlwaysReturns(e)
		}
	default:
		return false
	}
}
