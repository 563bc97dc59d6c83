package riscv

import (
	"fmt"
	"strings"

	"come/internal/comperr"
	"come/internal/ir"
)

// Temp registers the emitter spills operands through when an operand or
// result is stack-resident, matching the "t0"/"t1" convention used
// throughout backend/riscv/{from_ir,function}/statement/*.rs.
const (
	tempOperand1 = "t0"
	tempOperand2 = "t1"
)

// PhiConstantAssign is one parallel-copy move spliced into a predecessor
// block just before its terminator, resolving one phi node's contribution
// from that predecessor edge. Grounded on
// from_ir/function/basic_block.rs's append_phi_insert /
// phi_constant_assign: a per-predecessor-block list of (destination,
// value) pairs, installed ahead of per-block emission.
type PhiConstantAssign struct {
	Assign RegisterAssign
	Value  ir.Quantity
}

// FunctionCompileContext carries everything statement-level emission
// needs: where each logical register lives, where Ret should jump if the
// function has cleanup code, the phi parallel-copies to splice into each
// predecessor block, and the struct table/per-register layouts LoadField/
// SetField addressing needs. Grounded on backend/riscv/from_ir's
// FunctionCompileContext (local_assign / cleanup_label / phi_constant_assign).
type FunctionCompileContext struct {
	LocalAssign       map[ir.RegisterName]RegisterAssign
	CleanupLabel      string
	PhiConstantAssign map[string][]PhiConstantAssign
	Structs           *ir.StructTable
	FieldLayouts      map[ir.RegisterName]*ir.StructLayout
}

// NewFunctionCompileContext creates a context over a completed register
// assignment, with no cleanup label and an empty phi-resolution table.
// structs is consulted by BuildFieldLayouts and by SetField's per-step
// chain addressing.
func NewFunctionCompileContext(assign map[ir.RegisterName]RegisterAssign, structs *ir.StructTable) *FunctionCompileContext {
	return &FunctionCompileContext{
		LocalAssign:       assign,
		PhiConstantAssign: make(map[string][]PhiConstantAssign),
		Structs:           structs,
		FieldLayouts:      make(map[ir.RegisterName]*ir.StructLayout),
	}
}

func (ctx *FunctionCompileContext) assignOf(r ir.RegisterName) (RegisterAssign, error) {
	a, ok := ctx.LocalAssign[r]
	if !ok {
		return RegisterAssign{}, comperr.New(comperr.KindSemantic, comperr.ErrorUndefinedRegister,
			fmt.Sprintf("register %s has no register assignment", r))
	}
	return a, nil
}

// BuildPhiConstantAssign populates ctx.PhiConstantAssign from every phi in
// fn: for each (value, predecessor) source, the destination phi register's
// assignment and the source value are recorded against the predecessor
// block's name, so EmitBlock can splice in the parallel copy just before
// that predecessor's terminator.
func BuildPhiConstantAssign(fn *ir.FunctionDefinition, ctx *FunctionCompileContext) error {
	for _, b := range fn.Content {
		for _, phi := range b.Phis {
			toAssign, err := ctx.assignOf(phi.To)
			if err != nil {
				return err
			}
			for _, src := range phi.From {
				ctx.PhiConstantAssign[src.Block] = append(ctx.PhiConstantAssign[src.Block], PhiConstantAssign{
					Assign: toAssign,
					Value:  src.Value,
				})
			}
		}
	}
	return nil
}

// BuildFieldLayouts populates ctx.FieldLayouts with the struct layout of
// every local register whose static type is a struct: function parameters
// and alloca-defined registers. LoadField carries only a single flattened
// field index and no struct-type operand of its own, so the emitter needs
// this table to resolve LoadField.Source's layout; SetField's own chain
// carries a type per step and only needs ctx.Structs.
func BuildFieldLayouts(fn *ir.FunctionDefinition, ctx *FunctionCompileContext) error {
	register := func(name ir.RegisterName, t ir.Type) error {
		ref, ok := t.(ir.StructRefType)
		if !ok {
			return nil
		}
		layout := ctx.Structs.Lookup(ref.Name)
		if layout == nil {
			return comperr.New(comperr.KindSemantic, comperr.ErrorUndefinedRegister,
				"unknown struct type "+ref.Name)
		}
		ctx.FieldLayouts[name] = layout
		return nil
	}
	for _, p := range fn.Parameters {
		if err := register(p.Name, p.DataType); err != nil {
			return err
		}
	}
	for _, b := range fn.Content {
		for _, s := range b.Content {
			if alloca, ok := s.(*ir.Alloca); ok {
				if err := register(alloca.To, alloca.AllocType); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// abiName resolves a physical register index to its calling-convention
// spelling, falling back to "xN" if it isn't in registers.spec (never
// happens for an allocator-produced index 0-31, but keeps this total).
func abiName(r uint8) string {
	if name, ok := AbiName(r); ok {
		return name
	}
	return fmt.Sprintf("x%d", r)
}

// loadOperand materializes q into a register usable as an instruction
// operand: a register-resident value is used directly, a stack-resident
// value is loaded into tmp first, and a literal is materialized into tmp
// with li. Returns the register name to reference and the assembly lines
// (if any) that must precede its use.
func loadOperand(ctx *FunctionCompileContext, q ir.Quantity, tmp string) (string, string, error) {
	switch v := q.(type) {
	case ir.RegisterName:
		assign, err := ctx.assignOf(v)
		if err != nil {
			return "", "", err
		}
		switch assign.Kind {
		case AssignRegister:
			return abiName(assign.Register), "", nil
		case AssignStackValue:
			return tmp, fmt.Sprintf("    lw %s, %d(sp)\n", tmp, assign.Offset), nil
		default:
			return "", "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch,
				"operand register is not value-resident")
		}
	case ir.NumberLiteral:
		return tmp, fmt.Sprintf("    li %s, %d\n", tmp, int64(v)), nil
	default:
		return "", "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch,
			"global variable operands are not supported by this emitter")
	}
}

// destRegister returns the register a statement should compute its
// result directly into: its own physical register, or tmp if the result
// is stack-resident (in which case the caller must spill it back with
// storeResult after computing).
func destRegister(assign RegisterAssign, tmp string) (string, error) {
	switch assign.Kind {
	case AssignRegister:
		return abiName(assign.Register), nil
	case AssignStackValue:
		return tmp, nil
	default:
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch,
			"statement result is not value-resident")
	}
}

// storeResult spills reg back to assign's stack slot if assign is
// stack-resident; it is a no-op for a register-resident destination,
// since destRegister already computed directly into it.
func storeResult(assign RegisterAssign, reg string) string {
	if assign.Kind == AssignStackValue {
		return fmt.Sprintf("    sw %s, %d(sp)\n", reg, assign.Offset)
	}
	return ""
}

// EmitFunction lowers fn to RISC-V assembly text under ctx, which must
// already carry a complete register assignment (and, via
// BuildPhiConstantAssign, its phi resolution table). Blocks are emitted
// in declaration order, each named block (the entry block included) under
// its own label; the function's global label is left to the caller.
func EmitFunction(fn *ir.FunctionDefinition, ctx *FunctionCompileContext) (string, error) {
	var out strings.Builder
	for _, b := range fn.Content {
		code, err := EmitBlock(b, ctx)
		if err != nil {
			return "", err
		}
		out.WriteString(code)
	}
	return out.String(), nil
}

// EmitBlock lowers one basic block: its body statements, then the
// parallel-copy moves phi resolution installed against this block's name,
// then its terminator. Grounded on from_ir/function/basic_block.rs's
// emit_code/append_phi_insert.
func EmitBlock(b *ir.BasicBlock, ctx *FunctionCompileContext) (string, error) {
	var out strings.Builder
	if b.Name != "" {
		out.WriteString(b.Name)
		out.WriteString(":\n")
	}
	for _, s := range b.Content {
		code, err := EmitStatement(s, ctx)
		if err != nil {
			return "", err
		}
		out.WriteString(code)
	}
	out.WriteString(appendPhiInsert(ctx, b.Name))
	if b.Terminator != nil {
		code, err := EmitTerminator(b.Terminator, ctx)
		if err != nil {
			return "", err
		}
		out.WriteString(code)
	}
	return out.String(), nil
}

func appendPhiInsert(ctx *FunctionCompileContext, blockName string) string {
	var out strings.Builder
	for _, move := range ctx.PhiConstantAssign[blockName] {
		switch v := move.Value.(type) {
		case ir.NumberLiteral:
			switch move.Assign.Kind {
			case AssignRegister:
				fmt.Fprintf(&out, "    li %s, %d\n", abiName(move.Assign.Register), int64(v))
			case AssignStackValue, AssignStackRef:
				fmt.Fprintf(&out, "    li t0, %d\n", int64(v))
				fmt.Fprintf(&out, "    sw t0, %d(sp)\n", move.Assign.Offset)
			}
		default:
			reg, pre, err := loadOperand(ctx, move.Value, tempOperand1)
			if err != nil {
				continue
			}
			out.WriteString(pre)
			switch move.Assign.Kind {
			case AssignRegister:
				fmt.Fprintf(&out, "    mv %s, %s\n", abiName(move.Assign.Register), reg)
			case AssignStackValue, AssignStackRef:
				fmt.Fprintf(&out, "    sw %s, %d(sp)\n", reg, move.Assign.Offset)
			}
		}
	}
	return out.String()
}

// EmitStatement lowers one non-terminator statement. Alloca is a no-op at
// this stage: its stack slot was already reserved when the register
// assignment was computed.
func EmitStatement(s ir.Statement, ctx *FunctionCompileContext) (string, error) {
	switch v := s.(type) {
	case *ir.Alloca:
		return "", nil
	case *ir.UnaryCalculate:
		return emitUnaryCalculate(v, ctx)
	case *ir.BinaryCalculate:
		return emitBinaryCalculate(v, ctx)
	case *ir.Load:
		return emitLoad(v, ctx)
	case *ir.Store:
		return emitStore(v, ctx)
	case *ir.Call:
		return emitCall(v, ctx)
	case *ir.LoadField:
		return emitLoadField(v, ctx)
	case *ir.SetField:
		return emitSetField(v, ctx)
	default:
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch,
			fmt.Sprintf("no emitter for statement %T", s))
	}
}

// EmitTerminator lowers a block's closing statement.
func EmitTerminator(t ir.Terminator, ctx *FunctionCompileContext) (string, error) {
	switch v := t.(type) {
	case *ir.Branch:
		return emitBranch(v, ctx)
	case *ir.Jump:
		return fmt.Sprintf("    j %s\n", v.Label), nil
	case *ir.Ret:
		return emitRet(v, ctx)
	default:
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch,
			fmt.Sprintf("no emitter for terminator %T", t))
	}
}

func emitUnaryCalculate(s *ir.UnaryCalculate, ctx *FunctionCompileContext) (string, error) {
	var out strings.Builder
	operand, pre, err := loadOperand(ctx, s.Operand, tempOperand1)
	if err != nil {
		return "", err
	}
	out.WriteString(pre)
	toAssign, err := ctx.assignOf(s.To)
	if err != nil {
		return "", err
	}
	toReg, err := destRegister(toAssign, tempOperand1)
	if err != nil {
		return "", err
	}
	switch s.Op {
	case ir.Neg:
		fmt.Fprintf(&out, "    neg %s, %s\n", toReg, operand)
	case ir.Not:
		fmt.Fprintf(&out, "    not %s, %s\n", toReg, operand)
	default:
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "unknown unary operator")
	}
	out.WriteString(storeResult(toAssign, toReg))
	return out.String(), nil
}

func emitBinaryCalculate(s *ir.BinaryCalculate, ctx *FunctionCompileContext) (string, error) {
	var out strings.Builder
	op1, pre1, err := loadOperand(ctx, s.Operand1, tempOperand1)
	if err != nil {
		return "", err
	}
	out.WriteString(pre1)
	op2, pre2, err := loadOperand(ctx, s.Operand2, tempOperand2)
	if err != nil {
		return "", err
	}
	out.WriteString(pre2)
	toAssign, err := ctx.assignOf(s.To)
	if err != nil {
		return "", err
	}
	toReg, err := destRegister(toAssign, tempOperand1)
	if err != nil {
		return "", err
	}
	switch s.Op {
	case ir.Add:
		fmt.Fprintf(&out, "    add %s, %s, %s\n", toReg, op1, op2)
	case ir.Sub:
		fmt.Fprintf(&out, "    sub %s, %s, %s\n", toReg, op1, op2)
	case ir.And:
		fmt.Fprintf(&out, "    and %s, %s, %s\n", toReg, op1, op2)
	case ir.Or:
		fmt.Fprintf(&out, "    or %s, %s, %s\n", toReg, op1, op2)
	case ir.Xor:
		fmt.Fprintf(&out, "    xor %s, %s, %s\n", toReg, op1, op2)
	case ir.LSL:
		fmt.Fprintf(&out, "    sll %s, %s, %s\n", toReg, op1, op2)
	case ir.LSR:
		fmt.Fprintf(&out, "    srl %s, %s, %s\n", toReg, op1, op2)
	case ir.ASR:
		fmt.Fprintf(&out, "    sra %s, %s, %s\n", toReg, op1, op2)
	case ir.LT:
		fmt.Fprintf(&out, "    slt %s, %s, %s\n", toReg, op1, op2)
	case ir.GT:
		fmt.Fprintf(&out, "    slt %s, %s, %s\n", toReg, op2, op1)
	case ir.GE:
		fmt.Fprintf(&out, "    slt %s, %s, %s\n", toReg, op1, op2)
		fmt.Fprintf(&out, "    xori %s, %s, 1\n", toReg, toReg)
	case ir.LE:
		fmt.Fprintf(&out, "    slt %s, %s, %s\n", toReg, op2, op1)
		fmt.Fprintf(&out, "    xori %s, %s, 1\n", toReg, toReg)
	case ir.EQ:
		fmt.Fprintf(&out, "    sub %s, %s, %s\n", toReg, op1, op2)
		fmt.Fprintf(&out, "    seqz %s, %s\n", toReg, toReg)
	case ir.NE:
		fmt.Fprintf(&out, "    sub %s, %s, %s\n", toReg, op1, op2)
		fmt.Fprintf(&out, "    snez %s, %s\n", toReg, toReg)
	default:
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "unknown binary operator")
	}
	out.WriteString(storeResult(toAssign, toReg))
	return out.String(), nil
}

// emitLoad lowers a read of a local variable's stack slot. From must
// name a local whose address is the slot itself (AssignStackRef);
// heap/runtime-address reads go through the load_u32 call intrinsic
// instead. Grounded on function/statement/load.rs.
func emitLoad(s *ir.Load, ctx *FunctionCompileContext) (string, error) {
	reg, ok := s.From.(ir.RegisterName)
	if !ok {
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "load address must be a local register")
	}
	fromAssign, err := ctx.assignOf(reg)
	if err != nil {
		return "", err
	}
	if fromAssign.Kind != AssignStackRef {
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "load address must resolve to a stack slot")
	}
	toAssign, err := ctx.assignOf(s.To)
	if err != nil {
		return "", err
	}
	toReg, err := destRegister(toAssign, tempOperand1)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	fmt.Fprintf(&out, "    lw %s, %d(sp)\n", toReg, fromAssign.Offset)
	out.WriteString(storeResult(toAssign, toReg))
	return out.String(), nil
}

// emitStore lowers a write to a local variable's stack slot. Grounded on
// function/statement/store.rs.
func emitStore(s *ir.Store, ctx *FunctionCompileContext) (string, error) {
	var out strings.Builder
	srcReg, pre, err := loadOperand(ctx, s.Source, tempOperand1)
	if err != nil {
		return "", err
	}
	out.WriteString(pre)
	target, ok := s.Target.(ir.RegisterName)
	if !ok {
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "store target must be a local register")
	}
	targetAssign, err := ctx.assignOf(target)
	if err != nil {
		return "", err
	}
	if targetAssign.Kind != AssignStackRef {
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "store target must resolve to a stack slot")
	}
	fmt.Fprintf(&out, "    sw %s, %d(sp)\n", srcReg, targetAssign.Offset)
	return out.String(), nil
}

// emitLoadField reads one field of a local struct variable straight out of
// its stack slot: Source must be a local register whose address is the
// slot itself (AssignStackRef, same restriction as emitLoad), and Index is
// resolved against the layout BuildFieldLayouts recorded for that register.
func emitLoadField(s *ir.LoadField, ctx *FunctionCompileContext) (string, error) {
	reg, ok := s.Source.(ir.RegisterName)
	if !ok {
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "loadfield source must be a local register")
	}
	fromAssign, err := ctx.assignOf(reg)
	if err != nil {
		return "", err
	}
	if fromAssign.Kind != AssignStackRef {
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "loadfield source must resolve to a stack slot")
	}
	layout, ok := ctx.FieldLayouts[reg]
	if !ok {
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "loadfield source has no known struct layout")
	}
	toAssign, err := ctx.assignOf(s.To)
	if err != nil {
		return "", err
	}
	toReg, err := destRegister(toAssign, tempOperand1)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	fmt.Fprintf(&out, "    lw %s, %d(sp)\n", toReg, fromAssign.Offset+layout.FieldOffset(s.Index))
	out.WriteString(storeResult(toAssign, toReg))
	return out.String(), nil
}

// emitSetField writes Source into a (possibly nested) field of a local
// struct variable. Target addresses the variable's own stack slot exactly
// as emitStore's target does; FieldChain is walked step by step, each step
// naming the struct type being indexed into at that depth, to accumulate
// the byte offset from the slot's base (StructLayout.FieldOffset per step).
func emitSetField(s *ir.SetField, ctx *FunctionCompileContext) (string, error) {
	var out strings.Builder
	srcReg, pre, err := loadOperand(ctx, s.Source, tempOperand1)
	if err != nil {
		return "", err
	}
	out.WriteString(pre)
	target, ok := s.Target.(ir.RegisterName)
	if !ok {
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "setfield target must be a local register")
	}
	targetAssign, err := ctx.assignOf(target)
	if err != nil {
		return "", err
	}
	if targetAssign.Kind != AssignStackRef {
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "setfield target must resolve to a stack slot")
	}
	fieldOffset := 0
	for _, step := range s.FieldChain {
		ref, ok := step.Type.(ir.StructRefType)
		if !ok {
			return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "setfield chain step must name a struct type")
		}
		layout := ctx.Structs.Lookup(ref.Name)
		if layout == nil {
			return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "setfield chain step names an unknown struct "+ref.Name)
		}
		fieldOffset += layout.FieldOffset(step.Index)
	}
	fmt.Fprintf(&out, "    sw %s, %d(sp)\n", srcReg, targetAssign.Offset+fieldOffset)
	return out.String(), nil
}

// emitCall lowers the two memory-access intrinsics the generator emits
// instead of ordinary Load/Store when the address is a runtime value
// rather than a local's own slot. Grounded on from_ir/function/statement/call.rs.
func emitCall(s *ir.Call, ctx *FunctionCompileContext) (string, error) {
	switch s.Name {
	case "load_u32":
		return emitLoadU32(s, ctx)
	case "store_u32":
		return emitStoreU32(s, ctx)
	default:
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch,
			"unsupported call intrinsic "+s.Name)
	}
}

func emitLoadU32(s *ir.Call, ctx *FunctionCompileContext) (string, error) {
	var out strings.Builder
	addrReg, pre, err := loadOperand(ctx, s.Params[0], "a0")
	if err != nil {
		return "", err
	}
	out.WriteString(pre)
	if addrReg != "a0" {
		fmt.Fprintf(&out, "    mv a0, %s\n", addrReg)
	}
	out.WriteString("    lw a0, 0(a0)\n")
	if s.To != nil {
		toAssign, err := ctx.assignOf(*s.To)
		if err != nil {
			return "", err
		}
		switch toAssign.Kind {
		case AssignRegister:
			fmt.Fprintf(&out, "    mv %s, a0\n", abiName(toAssign.Register))
		case AssignStackValue, AssignStackRef:
			fmt.Fprintf(&out, "    sw a0, %d(sp)\n", toAssign.Offset)
		default:
			return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "load_u32 destination is not value-resident")
		}
	}
	return out.String(), nil
}

func emitStoreU32(s *ir.Call, ctx *FunctionCompileContext) (string, error) {
	var out strings.Builder
	valueReg, prePre, err := loadOperand(ctx, s.Params[1], "a1")
	if err != nil {
		return "", err
	}
	out.WriteString(prePre)
	if valueReg != "a1" {
		fmt.Fprintf(&out, "    mv a1, %s\n", valueReg)
	}
	addrReg, pre, err := loadOperand(ctx, s.Params[0], "a0")
	if err != nil {
		return "", err
	}
	out.WriteString(pre)
	if addrReg != "a0" {
		fmt.Fprintf(&out, "    mv a0, %s\n", addrReg)
	}
	out.WriteString("    sw a1, 0(a0)\n")
	return out.String(), nil
}

func emitBranch(b *ir.Branch, ctx *FunctionCompileContext) (string, error) {
	var out strings.Builder
	op1, pre1, err := loadOperand(ctx, b.Op1, tempOperand1)
	if err != nil {
		return "", err
	}
	out.WriteString(pre1)
	op2, pre2, err := loadOperand(ctx, b.Op2, tempOperand2)
	if err != nil {
		return "", err
	}
	out.WriteString(pre2)
	var mnemonic string
	switch b.Kind {
	case ir.BEQ:
		mnemonic = "beq"
	case ir.BNE:
		mnemonic = "bne"
	case ir.BLT:
		mnemonic = "blt"
	case ir.BGE:
		mnemonic = "bge"
	default:
		return "", comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch, "unknown branch kind")
	}
	fmt.Fprintf(&out, "    %s %s, %s, %s\n", mnemonic, op1, op2, b.SuccessLabel)
	fmt.Fprintf(&out, "    j %s\n", b.FailureLabel)
	return out.String(), nil
}

func emitRet(r *ir.Ret, ctx *FunctionCompileContext) (string, error) {
	var out strings.Builder
	if r.Value != nil {
		reg, pre, err := loadOperand(ctx, r.Value, "a0")
		if err != nil {
			return "", err
		}
		out.WriteString(pre)
		if reg != "a0" {
			fmt.Fprintf(&out, "    mv a0, %s\n", reg)
		}
	}
	if ctx.CleanupLabel != "" {
		fmt.Fprintf(&out, "    j %s\n", ctx.CleanupLabel)
	} else {
		out.WriteString("    ret\n")
	}
	return out.String(), nil
}
