package glreflect

import (
	"math"
	"slices"

	"github.com/gogpu/glreflect/frontend"
)

// resolveAggregates rebuilds structured uniforms from the front-end's
// flattened names.
//
// Uniforms are scanned in order and grouped by path prefix: every name
// sharing an outermost container joins that container's Aggregate, and the
// remaining path is resolved inside it, so structures of structures nest.
// Each slot of an array of structures is an Aggregate of its own; the slots
// of one array stay adjacent and in index order, and the block builder
// places them by index. Indexed leaves ("bones[0]", "bones[1]") fold into a
// single array uniform. When a container name repeats, the first occurrence
// wins. The result otherwise keeps declaration order at every level.
func resolveAggregates(uniforms []Uniform) ([]Member, error) {
	var top []Member
	root := newScope(&top)
	seen := make(map[string]bool, len(uniforms))
	for i := range uniforms {
		p, err := parsePath(uniforms[i].Name)
		if err != nil {
			return nil, err
		}
		if seen[uniforms[i].Name] {
			return nil, newError(ErrDuplicateName, uniforms[i].Name, "uniform reported twice")
		}
		seen[uniforms[i].Name] = true
		if err := root.insert(p, uniforms[i]); err != nil {
			return nil, err
		}
	}
	return top, nil
}

// scope collects the members of the program's top level or of one aggregate.
type scope struct {
	list       *[]Member
	aggregates map[string]*scope      // keyed by container key, "lights[1]"
	containers map[string]bool        // container name without index -> indexed
	slots      map[*Aggregate]segment // slot aggregates of arrays of structures
	leaves     map[string]*Uniform    // keyed by name without index
	indexed    map[*Uniform]bool      // leaves that came from "name[i]"
}

func newScope(list *[]Member) *scope {
	return &scope{
		list:       list,
		aggregates: make(map[string]*scope),
		containers: make(map[string]bool),
		slots:      make(map[*Aggregate]segment),
		leaves:     make(map[string]*Uniform),
		indexed:    make(map[*Uniform]bool),
	}
}

func (s *scope) insert(p path, u Uniform) error {
	head := p[0]
	if len(p) == 1 {
		return s.addLeaf(head, u)
	}
	if _, clash := s.leaves[head.Name]; clash {
		return newError(ErrMalformedName, u.Name, "%q is used both as a uniform and as a structure", head.Name)
	}
	if indexed, ok := s.containers[head.Name]; ok && indexed != head.indexed() {
		return newError(ErrMalformedName, u.Name, "%q is used both as a structure and as an array of structures", head.Name)
	}
	key := head.key()
	child, ok := s.aggregates[key]
	if !ok {
		agg := &Aggregate{Name: key}
		s.place(agg, head)
		child = newScope(&agg.Members)
		s.aggregates[key] = child
		s.containers[head.Name] = head.indexed()
	}
	return child.insert(p[1:], u)
}

// place appends a new aggregate to the scope. A slot of an array of
// structures goes next to the other slots of its array, in index order.
func (s *scope) place(agg *Aggregate, seg segment) {
	list := *s.list
	at := len(list)
	if seg.indexed() {
		for i, m := range list {
			a, ok := m.(*Aggregate)
			if !ok {
				continue
			}
			other, ok := s.slots[a]
			if !ok || other.Name != seg.Name {
				continue
			}
			if other.Index > seg.Index {
				at = i
				break
			}
			at = i + 1
		}
		s.slots[agg] = seg
	}
	*s.list = slices.Insert(list, at, Member(agg))
}

// indexedLength returns the array length implied by element seg carrying
// size elements. A size of 0 counts as one element.
func indexedLength(seg segment, size uint32, name string) (uint32, error) {
	n := uint64(seg.Index) + uint64(max(size, 1))
	if n > math.MaxUint32 {
		return 0, newError(ErrMalformedName, name, "array index %d out of range", seg.Index)
	}
	return uint32(n), nil
}

func (s *scope) addLeaf(seg segment, u Uniform) error {
	if _, ok := s.containers[seg.Name]; ok {
		return newError(ErrMalformedName, u.Name, "%q is used both as a uniform and as a structure", seg.Name)
	}
	if prev, ok := s.leaves[seg.Name]; ok {
		if !seg.indexed() || !s.indexed[prev] {
			return newError(ErrDuplicateName, u.Name, "uniform reported twice")
		}
		if prev.Type != u.Type {
			return newError(ErrMalformedName, u.Name, "array element has type %v, earlier elements %v", u.Type, prev.Type)
		}
		n, err := indexedLength(seg, u.ArraySize, u.Name)
		if err != nil {
			return err
		}
		if n > prev.ArraySize {
			prev.ArraySize = n
		}
		prev.Stages |= u.Stages
		return nil
	}

	leaf := u
	leaf.Name = seg.Name
	if seg.indexed() {
		n, err := indexedLength(seg, u.ArraySize, u.Name)
		if err != nil {
			return err
		}
		leaf.ArraySize = n
	}
	ptr := &leaf
	*s.list = append(*s.list, ptr)
	s.leaves[seg.Name] = ptr
	if seg.indexed() {
		s.indexed[ptr] = true
	}
	return nil
}

// firstLeaf returns the first uniform reachable from m in declaration order.
func firstLeaf(m Member) *Uniform {
	switch m := m.(type) {
	case *Uniform:
		return m
	case *Aggregate:
		for _, child := range m.Members {
			if u := firstLeaf(child); u != nil {
				return u
			}
		}
	}
	return nil
}

// memberStages returns the union of the stages of every leaf under m.
func memberStages(m Member) (stages frontend.Stage) {
	switch m := m.(type) {
	case *Uniform:
		return m.Stages
	case *Aggregate:
		for _, child := range m.Members {
			stages |= memberStages(child)
		}
	}
	return stages
}

// foldOpaque merges indexed opaque uniforms ("textures[0]", "textures[1]")
// into one array uniform. Opaque uniforms never form aggregates: a sampler
// declared inside a structure keeps its flattened name.
func foldOpaque(opaque []Uniform) ([]Uniform, error) {
	out := make([]Uniform, 0, len(opaque))
	index := make(map[string]int, len(opaque))
	seen := make(map[string]bool, len(opaque))
	for _, u := range opaque {
		p, err := parsePath(u.Name)
		if err != nil {
			return nil, err
		}
		if len(p) != 1 || !p[0].indexed() {
			if _, dup := index[u.Name]; dup {
				return nil, newError(ErrDuplicateName, u.Name, "uniform reported twice")
			}
			index[u.Name] = len(out)
			out = append(out, u)
			continue
		}

		if seen[u.Name] {
			return nil, newError(ErrDuplicateName, u.Name, "uniform reported twice")
		}
		seen[u.Name] = true
		base := p[0].Name
		n, err := indexedLength(p[0], u.ArraySize, u.Name)
		if err != nil {
			return nil, err
		}
		if i, ok := index[base]; ok {
			prev := &out[i]
			if prev.Type != u.Type {
				return nil, newError(ErrMalformedName, u.Name, "array element has type %v, earlier elements %v", u.Type, prev.Type)
			}
			if n > prev.ArraySize {
				prev.ArraySize = n
			}
			prev.Stages |= u.Stages
			continue
		}
		u.Name = base
		u.ArraySize = n
		index[base] = len(out)
		out = append(out, u)
	}
	return out, nil
}

// slotOf returns the container segment of a slot of an array of structures.
func slotOf(a *Aggregate) (segment, bool) {
	p, err := parsePath(a.Name)
	if err != nil || len(p) != 1 || !p[0].indexed() {
		return segment{}, false
	}
	return p[0], true
}
