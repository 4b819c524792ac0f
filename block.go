package glreflect

import (
	"math"
	"slices"

	"github.com/gogpu/glreflect/frontend"
	"github.com/gogpu/glreflect/types"
)

// blockPlan is a block under construction together with the binding the
// front-end declared for it, if any.
type blockPlan struct {
	block   *UniformBlock
	binding frontend.Optional
	set     frontend.Optional
}

// buildBlocks assigns every top-level member to a uniform block, lays the
// blocks out and assigns bindings to blocks and opaque uniforms.
// opaque is updated in place with allocated bindings and sets.
func buildBlocks(members []Member, opaque []Uniform, opts Options, res frontend.Resources) ([]UniformBlock, error) {
	plans := groupBlocks(members, opts)

	for _, p := range plans {
		end, err := layoutMembers(p.block.Members)
		if err != nil {
			return nil, err
		}
		size := roundUp(end, types.SlotSize)
		if size > math.MaxUint32 || (res.MaxUniformBlockSize != 0 && size > uint64(res.MaxUniformBlockSize)) {
			return nil, newError(ErrLimitExceeded, p.block.Name, "block size %d exceeds limit %d", size, res.MaxUniformBlockSize)
		}
		p.block.Size = uint32(size)
		Logger().Debug("glreflect: block laid out",
			"block", p.block.Name, "members", len(p.block.Members), "size", p.block.Size)
	}

	if err := assignBindings(plans, opaque, opts, res); err != nil {
		return nil, err
	}

	blocks := make([]UniformBlock, len(plans))
	for i, p := range plans {
		blocks[i] = *p.block
	}
	return blocks, nil
}

// groupBlocks partitions members into blocks in first-use order.
// An aggregate goes to the block of its first leaf; every slot of an array
// of structures goes to the block of its first slot.
func groupBlocks(members []Member, opts Options) []*blockPlan {
	var plans []*blockPlan
	index := make(map[string]*blockPlan)
	arrays := make(map[string]string) // array of structures -> block name
	for _, m := range members {
		leaf := firstLeaf(m)
		if leaf == nil {
			continue
		}
		name := blockName(leaf.Block, memberStages(m), opts)
		if a, ok := m.(*Aggregate); ok {
			if seg, ok := slotOf(a); ok {
				if prev, ok := arrays[seg.Name]; ok {
					name = prev
				}
				arrays[seg.Name] = name
			}
		}
		p := index[name]
		if p == nil {
			p = &blockPlan{block: &UniformBlock{Name: name}}
			index[name] = p
			plans = append(plans, p)
		}
		p.block.Members = append(p.block.Members, m)
		p.block.Stages |= memberStages(m)
		if !p.binding.Valid && leaf.Binding.Valid {
			p.binding = leaf.Binding
		}
		if !p.set.Valid && leaf.Set.Valid {
			p.set = leaf.Set
		}
	}
	return plans
}

func blockName(explicit string, stages frontend.Stage, opts Options) string {
	if explicit != "" {
		return explicit
	}
	name := opts.defaultBlockName()
	if opts.BlockPolicy != PolicyPerStage {
		return name
	}
	if stages&frontend.StageVertex != 0 {
		return name + "_vs"
	}
	return name + "_fs"
}

// layoutMembers places members from offset 0 in declaration order and
// returns the cursor after the last one.
//
// Scalars and vectors align to their natural alignment, matrices, arrays
// and aggregates to 16 bytes. Array elements are padded to a 16-byte stride
// and aggregates to a multiple of 16. Padding is implied by the offsets.
// Layouts past 4 GiB fail with ErrLimitExceeded.
func layoutMembers(members []Member) (uint64, error) {
	var cursor uint64
	placed := make(map[string]bool)
	for i, m := range members {
		switch m := m.(type) {
		case *Uniform:
			align, size, err := uniformLayout(m)
			if err != nil {
				return 0, err
			}
			offset := roundUp(cursor, align)
			m.Offset = uint32(offset)
			cursor = offset + size
		case *Aggregate:
			if seg, ok := slotOf(m); ok {
				if placed[seg.Name] {
					continue
				}
				placed[seg.Name] = true
				end, err := layoutSlots(seg.Name, members[i:], cursor)
				if err != nil {
					return 0, err
				}
				cursor = end
				break
			}
			inner, err := layoutMembers(m.Members)
			if err != nil {
				return 0, err
			}
			offset := roundUp(cursor, types.SlotSize)
			size := roundUp(inner, types.SlotSize)
			m.Offset = uint32(offset)
			m.Size = uint32(size)
			cursor = offset + size
		}
		if cursor > math.MaxUint32 {
			return 0, newError(ErrLimitExceeded, m.MemberName(), "layout exceeds %d bytes", uint64(math.MaxUint32))
		}
	}
	return cursor, nil
}

// layoutSlots places the slots of the array of structures name found in
// members at cursor. Every slot shares one layout, the union of the members
// reported for any slot, and slot i sits at base + i*stride whether or not
// the slots before it were reported.
func layoutSlots(name string, members []Member, cursor uint64) (uint64, error) {
	var slots []*Aggregate
	var template []Member
	var count uint64
	for _, m := range members {
		a, ok := m.(*Aggregate)
		if !ok {
			continue
		}
		seg, ok := slotOf(a)
		if !ok || seg.Name != name {
			continue
		}
		var err error
		if template, err = mergeMembers(template, a.Members); err != nil {
			return 0, err
		}
		slots = append(slots, a)
		count = max(count, uint64(seg.Index)+1)
	}

	inner, err := layoutMembers(template)
	if err != nil {
		return 0, err
	}
	stride := roundUp(inner, types.SlotSize)
	base := roundUp(cursor, types.SlotSize)
	if base > math.MaxUint32 || (stride != 0 && count > (math.MaxUint32-base)/stride) {
		return 0, newError(ErrLimitExceeded, name, "%d elements of %d bytes exceed %d bytes", count, stride, uint64(math.MaxUint32))
	}
	for _, a := range slots {
		seg, _ := slotOf(a)
		a.Offset = uint32(base + uint64(seg.Index)*stride)
		a.Size = uint32(stride)
		applyTemplate(a.Members, template)
	}
	return base + count*stride, nil
}

// mergeMembers adds the members of src missing from dst to a copy of dst,
// keeping the relative order of both. Members present in both must agree.
func mergeMembers(dst, src []Member) ([]Member, error) {
	pos := -1
	for _, m := range src {
		i := memberIndex(dst, m.MemberName())
		if i < 0 {
			dst = slices.Insert(dst, pos+1, cloneMember(m))
			pos++
			continue
		}
		switch t := dst[i].(type) {
		case *Uniform:
			u, ok := m.(*Uniform)
			if !ok || u.Type != t.Type {
				return nil, newError(ErrMalformedName, m.MemberName(), "member differs between array elements")
			}
			t.ArraySize = max(t.ArraySize, u.ArraySize)
		case *Aggregate:
			a, ok := m.(*Aggregate)
			if !ok {
				return nil, newError(ErrMalformedName, m.MemberName(), "member differs between array elements")
			}
			members, err := mergeMembers(t.Members, a.Members)
			if err != nil {
				return nil, err
			}
			t.Members = members
		}
		pos = max(pos, i)
	}
	return dst, nil
}

// applyTemplate copies offsets, strides and sizes from a laid out template
// onto members, which are a subset of it.
func applyTemplate(members, template []Member) {
	for _, m := range members {
		t := template[memberIndex(template, m.MemberName())]
		switch m := m.(type) {
		case *Uniform:
			tu := t.(*Uniform)
			m.Offset = tu.Offset
			m.Stride = 0
			if m.IsArray() {
				m.Stride = tu.Stride
			}
		case *Aggregate:
			ta := t.(*Aggregate)
			m.Offset, m.Size = ta.Offset, ta.Size
			applyTemplate(m.Members, ta.Members)
		}
	}
}

func memberIndex(members []Member, name string) int {
	return slices.IndexFunc(members, func(m Member) bool { return m.MemberName() == name })
}

// uniformLayout returns the alignment and total size of u and records its
// array stride.
func uniformLayout(u *Uniform) (align, size uint64, err error) {
	a, sz, ok := u.Type.Layout()
	if !ok {
		return 0, 0, newError(ErrUnknownSize, u.Name, "type %v has no size in a uniform block", u.Type)
	}
	if !u.IsArray() {
		u.Stride = 0
		return uint64(a), uint64(sz), nil
	}
	stride, _ := u.Type.ArrayStride()
	u.Stride = stride
	return types.SlotSize, uint64(stride) * uint64(u.ArraySize), nil
}

func roundUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

// assignBindings claims every explicit binding, then allocates free ones to
// blocks and, when enabled, to opaque uniforms, in that order.
func assignBindings(plans []*blockPlan, opaque []Uniform, opts Options, res frontend.Resources) error {
	alloc := newBindingAllocator(res)

	for _, p := range plans {
		p.block.Set = opts.DefaultSet
		if p.set.Valid {
			p.block.Set = p.set.Value
		}
		if p.binding.Valid {
			p.block.Binding = p.binding.Value
			if err := alloc.claim(p.block.Set, p.block.Binding, p.block.Name); err != nil {
				return err
			}
		}
	}
	for i := range opaque {
		u := &opaque[i]
		if !u.Binding.Valid {
			continue
		}
		if !u.Set.Valid {
			u.Set = frontend.Some(opts.DefaultSet)
		}
		if err := alloc.claim(u.Set.Value, u.Binding.Value, u.Name); err != nil {
			return err
		}
	}

	for _, p := range plans {
		if p.binding.Valid {
			continue
		}
		b, err := alloc.allocate(p.block.Set, p.block.Name)
		if err != nil {
			return err
		}
		p.block.Binding = b
		Logger().Debug("glreflect: binding assigned",
			"block", p.block.Name, "set", p.block.Set, "binding", b)
	}
	if !opts.AssignOpaqueBindings {
		return nil
	}
	for i := range opaque {
		u := &opaque[i]
		if u.Binding.Valid {
			continue
		}
		set := opts.DefaultSet
		if u.Set.Valid {
			set = u.Set.Value
		}
		b, err := alloc.allocate(set, u.Name)
		if err != nil {
			return err
		}
		u.Binding = frontend.Some(b)
		u.Set = frontend.Some(set)
		Logger().Debug("glreflect: binding assigned",
			"uniform", u.Name, "set", set, "binding", b)
	}
	return nil
}
