package store

import "fmt"

// contextKey keys the context map: (gctxid, revisionRole) -> rid, with a
// null gctxid and role 1 as the default context (§4.I).
type contextKey struct {
	Gctxid ExtendedGUID
	Role   uint32
}

// ObjectSpace is one constructed object space (a notebook section, or the
// table-of-contents space in a .onetoc2 file): its revisions in document
// order plus the context map used to pick a "current" revision (§4.I).
type ObjectSpace struct {
	Gosid     ExtendedGUID
	Revisions map[ExtendedGUID]*Revision
	Order     []ExtendedGUID // construction order, ancestors before descendants

	contexts map[contextKey]ExtendedGUID
}

// NewObjectSpace returns an empty object space for the given gosid.
func NewObjectSpace(gosid ExtendedGUID) *ObjectSpace {
	return &ObjectSpace{
		Gosid:     gosid,
		Revisions: make(map[ExtendedGUID]*Revision),
		contexts:  make(map[contextKey]ExtendedGUID),
	}
}

// AddRevision constructs and records a revision from its start body and
// node stream, in document order (ancestors must be added before any
// revision that depends on them, per §4.I: "needed so that each dependent
// revision finds its ancestor already built").
func (s *ObjectSpace) AddRevision(in BuildRevisionInput) (*Revision, error) {
	var dependent *Revision
	startRev, err := newRevisionFromStart(in.StartBody)
	if err != nil {
		return nil, err
	}
	if !startRev.RidDependent.IsZero() {
		dependent = s.Revisions[startRev.RidDependent]
	}
	in.Dependent = dependent

	rev, err := BuildRevision(in)
	if err != nil {
		return nil, err
	}
	s.Revisions[rev.Rid] = rev
	s.Order = append(s.Order, rev.Rid)
	return rev, nil
}

// RegisterContext records a (gctxid, revisionRole) -> rid mapping from a
// RevisionRoleDeclarationFND (null gctxid) or
// RevisionRoleAndContextDeclarationFND node.
func (s *ObjectSpace) RegisterContext(gctxid ExtendedGUID, role uint32, rid ExtendedGUID) {
	s.contexts[contextKey{Gctxid: gctxid, Role: role}] = rid
}

// ContextRid looks up the rid registered for (gctxid, role).
func (s *ObjectSpace) ContextRid(gctxid ExtendedGUID, role uint32) (ExtendedGUID, error) {
	rid, ok := s.contexts[contextKey{Gctxid: gctxid, Role: role}]
	if !ok {
		return ExtendedGUID{}, fmt.Errorf("objectspace %s: %w: no context (gctxid=%s, role=%d)",
			s.Gosid, ErrObjectNotFound, gctxid, role)
	}
	return rid, nil
}

// DefaultContextRid is ContextRid(NilExtendedGUID, 1).
func (s *ObjectSpace) DefaultContextRid() (ExtendedGUID, error) {
	return s.ContextRid(NilExtendedGUID, 1)
}

// ContextLabels returns every (gctxid, role) pair currently registered.
func (s *ObjectSpace) ContextLabels() []struct {
	Gctxid ExtendedGUID
	Role   uint32
} {
	out := make([]struct {
		Gctxid ExtendedGUID
		Role   uint32
	}, 0, len(s.contexts))
	for k := range s.contexts {
		out = append(out, struct {
			Gctxid ExtendedGUID
			Role   uint32
		}{k.Gctxid, k.Role})
	}
	return out
}

// ApplyRoleDeclaration applies a RevisionRoleDeclarationFND or
// RevisionRoleAndContextDeclarationFND node to the context map (§4.I).
func (s *ObjectSpace) ApplyRoleDeclaration(body interface{ fileNodeKind() FileNodeKind }) error {
	switch b := body.(type) {
	case RevisionRoleDeclarationFND:
		s.RegisterContext(NilExtendedGUID, b.RevisionRole, b.Rid)
		return nil
	case RevisionRoleAndContextDeclarationFND:
		s.RegisterContext(b.Gctxid, b.RevisionRole, b.Rid)
		return nil
	default:
		return fmt.Errorf("objectspace %s: %w: not a role declaration", s.Gosid, ErrUnexpectedFileNode)
	}
}
