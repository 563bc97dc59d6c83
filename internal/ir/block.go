package ir

import (
	"sort"
	"strings"
)

// BasicBlock is a straight-line sequence of statements headed by zero or
// more Phi nodes and closed by a Terminator. Phis are tracked separately
// from Content because the editor installs/removes them as a unit distinct
// from ordinary statements (see editor.go, grounded on the original
// ir/optimize/action.rs EditActionBatch.insert_phis pass).
type BasicBlock struct {
	Name       string
	Phis       []*Phi
	Content    []Statement
	Terminator Terminator
}

// NewBasicBlock creates an empty, unnamed block.
func NewBasicBlock() *BasicBlock {
	return &BasicBlock{}
}

// Empty reports whether the block has no name, no phis, no statements, and
// no terminator.
func (b *BasicBlock) Empty() bool {
	return b.Name == "" && len(b.Phis) == 0 && len(b.Content) == 0 && b.Terminator == nil
}

// Append adds a statement to the end of the block's body.
func (b *BasicBlock) Append(s Statement) {
	b.Content = append(b.Content, s)
}

// Registers returns the set of register names this block defines: its
// phis' targets plus every statement's result register.
func (b *BasicBlock) Registers() map[RegisterName]struct{} {
	result := make(map[RegisterName]struct{})
	for _, phi := range b.Phis {
		result[phi.To] = struct{}{}
	}
	for _, s := range b.Content {
		if to, _, ok := s.Result(); ok {
			result[to] = struct{}{}
		}
	}
	return result
}

// AllStatements returns phis, body statements, and the terminator (if any)
// as one ordered slice of Statement, for passes that don't care about the
// phi/body/terminator distinction.
func (b *BasicBlock) AllStatements() []Statement {
	out := make([]Statement, 0, len(b.Phis)+len(b.Content)+1)
	for _, phi := range b.Phis {
		out = append(out, phi)
	}
	out = append(out, b.Content...)
	if b.Terminator != nil {
		out = append(out, b.Terminator)
	}
	return out
}

// PhiByTarget returns the phi defining to, or nil.
func (b *BasicBlock) PhiByTarget(to RegisterName) *Phi {
	for _, phi := range b.Phis {
		if phi.To == to {
			return phi
		}
	}
	return nil
}

// SortPhis orders phis by target register name, the canonical order the
// printer and editor use so output is deterministic.
func (b *BasicBlock) SortPhis() {
	sort.Slice(b.Phis, func(i, j int) bool { return b.Phis[i].To < b.Phis[j].To })
}

func (b *BasicBlock) String() string {
	var out strings.Builder
	if b.Name != "" {
		out.WriteString(b.Name)
		out.WriteString(":\n")
	}
	for _, phi := range b.Phis {
		out.WriteString("    ")
		out.WriteString(phi.String())
		out.WriteString("\n")
	}
	for _, s := range b.Content {
		out.WriteString("    ")
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	if b.Terminator != nil {
		out.WriteString("    ")
		out.WriteString(b.Terminator.String())
		out.WriteString("\n")
	}
	return out.String()
}
