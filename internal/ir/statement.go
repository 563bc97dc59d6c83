package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Statement is the sum type of IR statements; each variant carries its own
// operands and, where applicable, its own result register (spec.md §3).
type Statement interface {
	fmt.Stringer
	isStatement()
	// Result returns the register this statement defines and its type, or
	// ok=false for statements with no result (Store, SetField, terminators).
	Result() (to RegisterName, dataType Type, ok bool)
	// UseRegisters returns every RegisterName operand this statement reads.
	UseRegisters() []RegisterName
	// ReplaceRegister rewrites in place any operand referencing old to new.
	// A statement whose own result register is renamed rewrites that too,
	// so a chain of renames composes (editor.go §4.6 step 3).
	ReplaceRegister(old RegisterName, to Quantity)
}

// Terminator is a Statement that ends a basic block and names its possible
// successors by label.
type Terminator interface {
	Statement
	isTerminator()
	// Targets lists the block labels control may transfer to.
	Targets() []string
}

func quantityUses(qs ...Quantity) []RegisterName {
	var out []RegisterName
	for _, q := range qs {
		if r, ok := q.(RegisterName); ok {
			out = append(out, r)
		}
	}
	return out
}

func replaceIn(q *Quantity, old RegisterName, to Quantity) {
	if *q == nil {
		return
	}
	if r, ok := (*q).(RegisterName); ok && r == old {
		*q = to
	}
}

// Alloca reserves a stack slot of alloc_type and defines `to: Address`.
type Alloca struct {
	To        RegisterName
	AllocType Type
}

func (*Alloca) isStatement() {}
func (a *Alloca) Result() (RegisterName, Type, bool) { return a.To, AddressType{}, true }
func (a *Alloca) UseRegisters() []RegisterName       { return nil }
func (a *Alloca) ReplaceRegister(old RegisterName, to Quantity) {
	if a.To == old {
		if r, ok := to.(RegisterName); ok {
			a.To = r
		}
	}
}
func (a *Alloca) String() string {
	return fmt.Sprintf("%s = alloca %s", RegisterName(a.To), a.AllocType)
}

// Load reads data_type from a Quantity address.
type Load struct {
	To       RegisterName
	DataType Type
	From     Quantity
}

func (*Load) isStatement() {}
func (l *Load) Result() (RegisterName, Type, bool) { return l.To, l.DataType, true }
func (l *Load) UseRegisters() []RegisterName       { return quantityUses(l.From) }
func (l *Load) ReplaceRegister(old RegisterName, to Quantity) {
	if l.To == old {
		if r, ok := to.(RegisterName); ok {
			l.To = r
		}
	}
	replaceIn(&l.From, old, to)
}
func (l *Load) String() string {
	return fmt.Sprintf("%s = load %s %s", RegisterName(l.To), l.DataType, l.From)
}

// Store writes source into target, both typed data_type.
type Store struct {
	DataType Type
	Source   Quantity
	Target   Quantity
}

func (*Store) isStatement() {}
func (s *Store) Result() (RegisterName, Type, bool) { return "", nil, false }
func (s *Store) UseRegisters() []RegisterName       { return quantityUses(s.Source, s.Target) }
func (s *Store) ReplaceRegister(old RegisterName, to Quantity) {
	replaceIn(&s.Source, old, to)
	replaceIn(&s.Target, old, to)
}
func (s *Store) String() string {
	return fmt.Sprintf("store %s %s, address %s", s.DataType, s.Source, s.Target)
}

// LoadField reads the field at Index, within Source's own registered
// StructLayout, into To. Single level only: reaching a field nested inside
// a field's own struct type is not expressible by LoadField (see SetField's
// FieldChain for the multi-level form).
type LoadField struct {
	To       RegisterName
	Source   Quantity
	DataType Type
	Index    int
}

func (*LoadField) isStatement() {}
func (l *LoadField) Result() (RegisterName, Type, bool) { return l.To, l.DataType, true }
func (l *LoadField) UseRegisters() []RegisterName       { return quantityUses(l.Source) }
func (l *LoadField) ReplaceRegister(old RegisterName, to Quantity) {
	if l.To == old {
		if r, ok := to.(RegisterName); ok {
			l.To = r
		}
	}
	replaceIn(&l.Source, old, to)
}
func (l *LoadField) String() string {
	return fmt.Sprintf("%s = loadfield %s %s, %d", RegisterName(l.To), l.DataType, l.Source, l.Index)
}

// FieldStep is one link of a SetField field chain: the struct type being
// indexed into and the field index within it.
type FieldStep struct {
	Type  Type
	Index int
}

// SetField writes source into a (possibly nested) field of target, reached
// by walking FieldChain from OriginRoot. FinalType is the type of the field
// actually written.
type SetField struct {
	Target     Quantity
	Source     Quantity
	OriginRoot RegisterName
	FieldChain []FieldStep
	FinalType  Type
}

func (*SetField) isStatement() {}
func (s *SetField) Result() (RegisterName, Type, bool) { return "", nil, false }
func (s *SetField) UseRegisters() []RegisterName {
	uses := quantityUses(s.Source, s.Target)
	uses = append(uses, s.OriginRoot)
	return uses
}
func (s *SetField) ReplaceRegister(old RegisterName, to Quantity) {
	replaceIn(&s.Source, old, to)
	replaceIn(&s.Target, old, to)
	if s.OriginRoot == old {
		if r, ok := to.(RegisterName); ok {
			s.OriginRoot = r
		}
	}
}
func (s *SetField) String() string {
	steps := make([]string, len(s.FieldChain))
	for i, step := range s.FieldChain {
		steps[i] = fmt.Sprintf("%s:%d", step.Type, step.Index)
	}
	return fmt.Sprintf("setfield %s, [%s], %s, %s", s.OriginRoot, strings.Join(steps, ", "), s.FinalType, s.Source)
}

// UnaryOp is the operator of a UnaryCalculate statement.
type UnaryOp int

const (
	Neg UnaryOp = iota
	Not
)

func (op UnaryOp) String() string {
	switch op {
	case Neg:
		return "neg"
	case Not:
		return "not"
	default:
		return "?"
	}
}

// UnaryCalculate applies op to operand, result in to.
type UnaryCalculate struct {
	Op       UnaryOp
	Operand  Quantity
	To       RegisterName
	DataType Type
}

func (*UnaryCalculate) isStatement() {}
func (u *UnaryCalculate) Result() (RegisterName, Type, bool) { return u.To, u.DataType, true }
func (u *UnaryCalculate) UseRegisters() []RegisterName       { return quantityUses(u.Operand) }
func (u *UnaryCalculate) ReplaceRegister(old RegisterName, to Quantity) {
	if u.To == old {
		if r, ok := to.(RegisterName); ok {
			u.To = r
		}
	}
	replaceIn(&u.Operand, old, to)
}
func (u *UnaryCalculate) String() string {
	return fmt.Sprintf("%s = %s %s %s", RegisterName(u.To), u.Op, u.DataType, u.Operand)
}

// BinaryOp is the operator of a BinaryCalculate statement.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	And
	Or
	Xor
	LSL
	LSR
	ASR
	LT
	LE
	GT
	GE
	EQ
	NE
)

var binaryOpNames = [...]string{
	Add: "add", Sub: "sub", And: "and", Or: "or", Xor: "xor",
	LSL: "lsl", LSR: "lsr", ASR: "asr",
	LT: "lt", LE: "le", GT: "gt", GE: "ge", EQ: "eq", NE: "ne",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

// BinaryCalculate applies op to (operand1, operand2), result in to.
type BinaryCalculate struct {
	Op       BinaryOp
	Operand1 Quantity
	Operand2 Quantity
	To       RegisterName
	DataType Type
}

func (*BinaryCalculate) isStatement() {}
func (b *BinaryCalculate) Result() (RegisterName, Type, bool) { return b.To, b.DataType, true }
func (b *BinaryCalculate) UseRegisters() []RegisterName {
	return quantityUses(b.Operand1, b.Operand2)
}
func (b *BinaryCalculate) ReplaceRegister(old RegisterName, to Quantity) {
	if b.To == old {
		if r, ok := to.(RegisterName); ok {
			b.To = r
		}
	}
	replaceIn(&b.Operand1, old, to)
	replaceIn(&b.Operand2, old, to)
}
func (b *BinaryCalculate) String() string {
	return fmt.Sprintf("%s = %s %s %s, %s", RegisterName(b.To), b.Op, b.DataType, b.Operand1, b.Operand2)
}

// Call invokes Name (an intrinsic, e.g. load_u32/store_u32, or a function)
// with Params, optionally defining To.
type Call struct {
	To       *RegisterName
	Name     string
	DataType Type
	Params   []Quantity
	// Pure marks calls with no observable side effect, eligible for
	// RemoveUnusedRegister (spec.md §4.8).
	Pure bool
}

func (*Call) isStatement() {}
func (c *Call) Result() (RegisterName, Type, bool) {
	if c.To == nil {
		return "", nil, false
	}
	return *c.To, c.DataType, true
}
func (c *Call) UseRegisters() []RegisterName { return quantityUses(c.Params...) }
func (c *Call) ReplaceRegister(old RegisterName, to Quantity) {
	if c.To != nil && *c.To == old {
		if r, ok := to.(RegisterName); ok {
			*c.To = r
		}
	}
	for i := range c.Params {
		replaceIn(&c.Params[i], old, to)
	}
}
func (c *Call) String() string {
	params := make([]string, len(c.Params))
	for i, p := range c.Params {
		params[i] = p.String()
	}
	prefix := ""
	if c.To != nil {
		prefix = RegisterName(*c.To).String() + " = "
	}
	return fmt.Sprintf("%scall %s %s(%s)", prefix, c.DataType, c.Name, strings.Join(params, ", "))
}

// PhiSource is one (value, predecessor-block) pair of a Phi.
type PhiSource struct {
	Value Quantity
	Block string
}

// Phi selects Value from the source whose Block matches the predecessor
// that transferred control. Only appears at a block head, only after
// memory-to-register promotion (spec.md §3 invariants).
type Phi struct {
	To       RegisterName
	DataType Type
	From     []PhiSource
}

func (*Phi) isStatement() {}
func (p *Phi) Result() (RegisterName, Type, bool) { return p.To, p.DataType, true }
func (p *Phi) UseRegisters() []RegisterName {
	var out []RegisterName
	for _, src := range p.From {
		out = append(out, quantityUses(src.Value)...)
	}
	return out
}
func (p *Phi) ReplaceRegister(old RegisterName, to Quantity) {
	if p.To == old {
		if r, ok := to.(RegisterName); ok {
			p.To = r
		}
	}
	for i := range p.From {
		replaceIn(&p.From[i].Value, old, to)
	}
}

// SortSources sorts and deduplicates From by (block, value string), the
// canonical order the editor installs new phi nodes in (spec.md §4.6).
func (p *Phi) SortSources() {
	sort.Slice(p.From, func(i, j int) bool {
		if p.From[i].Block != p.From[j].Block {
			return p.From[i].Block < p.From[j].Block
		}
		return p.From[i].Value.String() < p.From[j].Value.String()
	})
	out := p.From[:0]
	for i, src := range p.From {
		if i == 0 || src != p.From[i-1] {
			out = append(out, src)
		}
	}
	p.From = out
}

func (p *Phi) String() string {
	parts := make([]string, len(p.From))
	for i, src := range p.From {
		parts[i] = fmt.Sprintf("[%s, %s]", src.Value, src.Block)
	}
	return fmt.Sprintf("%s = phi %s %s", RegisterName(p.To), p.DataType, strings.Join(parts, ", "))
}

// BranchKind is the condition code of a Branch terminator: the subset of
// comparisons the RISC-V branch instructions natively encode.
type BranchKind int

const (
	BEQ BranchKind = iota
	BNE
	BLT
	BGE
)

func (k BranchKind) String() string {
	switch k {
	case BEQ:
		return "beq"
	case BNE:
		return "bne"
	case BLT:
		return "blt"
	case BGE:
		return "bge"
	default:
		return "?"
	}
}

// Branch conditionally transfers control to SuccessLabel if the comparison
// holds, else FailureLabel.
type Branch struct {
	Kind         BranchKind
	Op1          Quantity
	Op2          Quantity
	SuccessLabel string
	FailureLabel string
}

func (*Branch) isStatement()  {}
func (*Branch) isTerminator() {}
func (b *Branch) Result() (RegisterName, Type, bool) { return "", nil, false }
func (b *Branch) UseRegisters() []RegisterName       { return quantityUses(b.Op1, b.Op2) }
func (b *Branch) ReplaceRegister(old RegisterName, to Quantity) {
	replaceIn(&b.Op1, old, to)
	replaceIn(&b.Op2, old, to)
}
func (b *Branch) Targets() []string { return []string{b.SuccessLabel, b.FailureLabel} }
func (b *Branch) String() string {
	return fmt.Sprintf("%s %s, %s, %s, %s", b.Kind, b.Op1, b.Op2, b.SuccessLabel, b.FailureLabel)
}

// Jump unconditionally transfers control to Label.
type Jump struct {
	Label string
}

func (*Jump) isStatement()  {}
func (*Jump) isTerminator() {}
func (j *Jump) Result() (RegisterName, Type, bool) { return "", nil, false }
func (j *Jump) UseRegisters() []RegisterName       { return nil }
func (j *Jump) ReplaceRegister(RegisterName, Quantity) {}
func (j *Jump) Targets() []string { return []string{j.Label} }
func (j *Jump) String() string    { return fmt.Sprintf("j %s", j.Label) }

// Ret returns from the function, optionally carrying Value.
type Ret struct {
	Value Quantity // nil for a none-returning function
}

func (*Ret) isStatement()  {}
func (*Ret) isTerminator() {}
func (r *Ret) Result() (RegisterName, Type, bool) { return "", nil, false }
func (r *Ret) UseRegisters() []RegisterName       { return quantityUses(r.Value) }
func (r *Ret) ReplaceRegister(old RegisterName, to Quantity) {
	replaceIn(&r.Value, old, to)
}
func (r *Ret) Targets() []string { return nil }
func (r *Ret) String() string {
	if r.Value == nil {
		return "ret"
	}
	return fmt.Sprintf("ret %s", r.Value)
}

// IsPure reports whether a statement has no observable side effect and is
// therefore a candidate for RemoveUnusedRegister when its result is unused
// (spec.md §4.8): Alloca, Load, LoadField, UnaryCalculate, BinaryCalculate,
// Phi, and pure Call. Store, SetField, and impure Call are never removed
// this way.
func IsPure(s Statement) bool {
	switch v := s.(type) {
	case *Alloca, *Load, *UnaryCalculate, *BinaryCalculate, *LoadField, *Phi:
		return true
	case *Call:
		return v.Pure
	default:
		return false
	}
}
