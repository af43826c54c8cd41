package store

import "fmt"

// GlobalIDTable maps a revision's CompactID space to ExtendedGUIDs. A
// revision's table is built by replaying its GlobalIdTableEntry* nodes in
// order, starting from either an empty table (GlobalIdTableStartFNDX) or a
// copy of a dependent revision's table that the caller supplies (§4.E,
// Design Notes on dependent-revision inheritance: the copy is logical, via
// Entry2/Entry3 remap records, never a physical duplication of bytes).
type GlobalIDTable struct {
	entries []GUID // index i holds the GUID for CompactID.GUIDIndex() == i
}

// NewGlobalIDTable returns an empty table.
func NewGlobalIDTable() *GlobalIDTable {
	return &GlobalIDTable{}
}

// Clone returns an independent copy, used when a revision inherits its
// dependent's table before applying its own entries on top.
func (t *GlobalIDTable) Clone() *GlobalIDTable {
	c := &GlobalIDTable{entries: make([]GUID, len(t.entries))}
	copy(c.entries, t.entries)
	return c
}

func (t *GlobalIDTable) ensure(index uint32) {
	for uint32(len(t.entries)) <= index {
		t.entries = append(t.entries, GUID{})
	}
}

// Set assigns the GUID at a table index directly (GlobalIdTableEntryFNDX).
func (t *GlobalIDTable) Set(index uint32, g GUID) {
	t.ensure(index)
	t.entries[index] = g
}

// Remap copies the GUID currently at `from` to `to` (GlobalIdTableEntry2FNDX).
func (t *GlobalIDTable) Remap(from, to uint32) error {
	if from >= uint32(len(t.entries)) {
		return fmt.Errorf("globalid table: remap from %d: %w", from, ErrArgument)
	}
	t.ensure(to)
	t.entries[to] = t.entries[from]
	return nil
}

// CopyRange bulk-copies count entries starting at fromStart to toStart
// (GlobalIdTableEntry3FNDX).
func (t *GlobalIDTable) CopyRange(fromStart, count, toStart uint32) error {
	if fromStart+count > uint32(len(t.entries)) {
		return fmt.Errorf("globalid table: copy range [%d,%d): %w", fromStart, fromStart+count, ErrArgument)
	}
	t.ensure(toStart + count)
	for i := uint32(0); i < count; i++ {
		t.entries[toStart+i] = t.entries[fromStart+i]
	}
	return nil
}

// Lookup resolves a CompactID to an ExtendedGUID (§8 property 5).
func (t *GlobalIDTable) Lookup(id CompactID) (ExtendedGUID, error) {
	idx := id.GUIDIndex()
	if idx >= uint32(len(t.entries)) {
		return ExtendedGUID{}, fmt.Errorf("globalid table: index %d: %w", idx, ErrObjectNotFound)
	}
	g := t.entries[idx]
	if g.IsZero() {
		return ExtendedGUID{}, fmt.Errorf("globalid table: index %d unset: %w", idx, ErrObjectNotFound)
	}
	return ExtendedGUID{GUID: g, N: uint32(id.N())}, nil
}

// BuildGlobalIDTable replays a sequence of already-decoded global-ID-table
// file nodes (as produced between a GlobalIdTableStartFNDX/Start2FND and its
// matching GlobalIdTableEndFNDX) against base, which may be nil for an empty
// starting table or a dependent revision's table for inheritance.
func BuildGlobalIDTable(base *GlobalIDTable, nodes []FileNode) (*GlobalIDTable, error) {
	var t *GlobalIDTable
	if base != nil {
		t = base.Clone()
	} else {
		t = NewGlobalIDTable()
	}
	for _, n := range nodes {
		switch b := n.Body.(type) {
		case GlobalIdTableEntryFNDX:
			t.Set(b.Index, b.GUID)
		case GlobalIdTableEntry2FNDX:
			if err := t.Remap(b.IIndexMapFrom, b.IIndexMapTo); err != nil {
				return nil, err
			}
		case GlobalIdTableEntry3FNDX:
			if err := t.CopyRange(b.FromStart, b.Count, b.ToStart); err != nil {
				return nil, err
			}
		case GlobalIdTableStartFNDX, GlobalIdTableStart2FND, GlobalIdTableEndFNDX:
			// bracketing markers carry no table data
		default:
			return nil, fmt.Errorf("globalid table: %w: unexpected node in table region", ErrUnexpectedFileNode)
		}
	}
	return t, nil
}
