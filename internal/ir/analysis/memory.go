package analysis

import (
	"sort"

	"come/internal/ir"

	"github.com/sasha-s/go-deadlock"
)

// MemoryAccessInfo indexes every statement that touches one alloca-defined
// register: its defining alloca, and the ordered lists of stores and loads
// targeting/reading it. Grounded on the original ir/optimize/analyzer/
// memory_usage.rs MemoryAccessInfo, including its per-block groupings and
// loads_dorminated_by_store (here LoadsDominatedByStoreInBlock) — used by
// memory-to-register promotion to find loads made redundant by an
// immediately preceding store in the same block.
type MemoryAccessInfo struct {
	Alloca ir.StatementIndex
	Store  []ir.StatementIndex
	Load   []ir.StatementIndex

	storeByBlock map[int][]int
	loadByBlock  map[int][]int
}

func groupByBlock(indices []ir.StatementIndex) map[int][]int {
	grouped := make(map[int][]int)
	for _, idx := range indices {
		grouped[idx.BlockIndex] = append(grouped[idx.BlockIndex], idx.StatementIndex)
	}
	for block := range grouped {
		sort.Ints(grouped[block])
	}
	return grouped
}

func (m *MemoryAccessInfo) storeGroupByBlock() map[int][]int {
	if m.storeByBlock == nil {
		m.storeByBlock = groupByBlock(m.Store)
	}
	return m.storeByBlock
}

func (m *MemoryAccessInfo) loadGroupByBlock() map[int][]int {
	if m.loadByBlock == nil {
		m.loadByBlock = groupByBlock(m.Load)
	}
	return m.loadByBlock
}

// LoadsDominatedByStoreInBlock returns the loads in store's own block that
// occur after store and before the next store to the same slot in that
// block — loads trivially redundant after promotion, since no other store
// to the slot can reach them in between.
func (m *MemoryAccessInfo) LoadsDominatedByStoreInBlock(store ir.StatementIndex) []ir.StatementIndex {
	storesInBlock := m.storeGroupByBlock()[store.BlockIndex]
	nextStoreIndex := -1
	for _, idx := range storesInBlock {
		if idx > store.StatementIndex {
			nextStoreIndex = idx
			break
		}
	}
	if nextStoreIndex == -1 {
		nextStoreIndex = int(^uint(0) >> 1) // max int: no later store in this block
	}

	var result []ir.StatementIndex
	for _, idx := range m.loadGroupByBlock()[store.BlockIndex] {
		if idx > store.StatementIndex && idx < nextStoreIndex {
			result = append(result, ir.StatementIndex{BlockIndex: store.BlockIndex, StatementIndex: idx})
		}
	}
	return result
}

// StoresUsedByOtherBlocks returns, for each block, only its last store to
// the slot — the only store in a block that can reach a different block,
// since any store after it in the same block shadows it.
func (m *MemoryAccessInfo) StoresUsedByOtherBlocks() []ir.StatementIndex {
	var result []ir.StatementIndex
	for block, indices := range m.storeGroupByBlock() {
		last := indices[len(indices)-1]
		result = append(result, ir.StatementIndex{BlockIndex: block, StatementIndex: last})
	}
	return result
}

// MemoryUsageAnalyzer indexes every promotable (and non-promotable) alloca
// slot of a function, lazily and once, guarded by a deadlock-checked mutex
// per spec.md §5's lazy-initialisation requirement.
type MemoryUsageAnalyzer struct {
	fn *ir.FunctionDefinition

	mu     deadlock.Mutex
	access map[ir.RegisterName]*MemoryAccessInfo
}

// NewMemoryUsageAnalyzer creates an analyzer over fn. fn is borrowed immutably; an edit to fn
// requires building a fresh analyzer.
func NewMemoryUsageAnalyzer(fn *ir.FunctionDefinition) *MemoryUsageAnalyzer {
	return &MemoryUsageAnalyzer{fn: fn}
}

func (a *MemoryUsageAnalyzer) memoryAccess() map[ir.RegisterName]*MemoryAccessInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.access != nil {
		return a.access
	}
	access := make(map[ir.RegisterName]*MemoryAccessInfo)
	allocated := make(map[ir.RegisterName]bool)
	get := func(name ir.RegisterName, idx ir.StatementIndex) *MemoryAccessInfo {
		info, ok := access[name]
		if !ok {
			info = &MemoryAccessInfo{Alloca: idx}
			access[name] = info
		}
		return info
	}
	a.fn.Walk(func(idx ir.StatementIndex, s ir.Statement) {
		switch stmt := s.(type) {
		case *ir.Alloca:
			get(stmt.To, idx).Alloca = idx
			allocated[stmt.To] = true
		case *ir.Store:
			if target, ok := stmt.Target.(ir.RegisterName); ok {
				info := get(target, idx)
				info.Store = append(info.Store, idx)
			}
		case *ir.Load:
			if from, ok := stmt.From.(ir.RegisterName); ok {
				info := get(from, idx)
				info.Load = append(info.Load, idx)
			}
		}
	})
	for name := range access {
		if !allocated[name] {
			delete(access, name)
		}
	}
	a.access = access
	return access
}

// MemoryAccessInfo returns the access info for a register, or nil if it
// was never touched by an Alloca/Load/Store.
func (a *MemoryUsageAnalyzer) MemoryAccessInfo(name ir.RegisterName) *MemoryAccessInfo {
	return a.memoryAccess()[name]
}

// Variables returns every register this analyzer has access info for.
func (a *MemoryUsageAnalyzer) Variables() []ir.RegisterName {
	access := a.memoryAccess()
	out := make([]ir.RegisterName, 0, len(access))
	for name := range access {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// VariableTypes returns each indexed variable's alloc type, read from its
// defining Alloca statement.
func (a *MemoryUsageAnalyzer) VariableTypes() map[ir.RegisterName]ir.Type {
	access := a.memoryAccess()
	out := make(map[ir.RegisterName]ir.Type, len(access))
	for name, info := range access {
		alloca := a.fn.Content[info.Alloca.BlockIndex].Content[info.Alloca.StatementIndex].(*ir.Alloca)
		out[name] = alloca.AllocType
	}
	return out
}

// Promotable reports whether name's only uses are as a Load source or a
// Store target — i.e. its address never escapes as some other operand
// (memory-to-register promotion §4.7 step 1).
func (a *MemoryUsageAnalyzer) Promotable(name ir.RegisterName) bool {
	for _, block := range a.fn.Content {
		for _, s := range block.AllStatements() {
			switch stmt := s.(type) {
			case *ir.Alloca:
				continue
			case *ir.Store:
				if r, ok := stmt.Source.(ir.RegisterName); ok && r == name {
					return false
				}
			case *ir.Load:
				continue
			default:
				for _, use := range stmt.UseRegisters() {
					if use == name {
						return false
					}
				}
			}
		}
	}
	_, ok := a.memoryAccess()[name]
	return ok
}
