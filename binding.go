package glreflect

import (
	"github.com/gogpu/glreflect/frontend"
)

// bindingAllocator hands out descriptor bindings per set. Explicit bindings
// are claimed first so that free ones never collide with them.
type bindingAllocator struct {
	res   frontend.Resources
	owner map[uint32]map[uint32]string // set -> binding -> owner name
	next  map[uint32]uint32            // set -> lowest binding not yet checked
}

func newBindingAllocator(res frontend.Resources) *bindingAllocator {
	return &bindingAllocator{
		res:   res,
		owner: make(map[uint32]map[uint32]string),
		next:  make(map[uint32]uint32),
	}
}

func (a *bindingAllocator) checkSet(set uint32, name string) error {
	if a.res.MaxDescriptorSets != 0 && set >= a.res.MaxDescriptorSets {
		return newError(ErrLimitExceeded, name, "descriptor set %d exceeds limit %d", set, a.res.MaxDescriptorSets)
	}
	return nil
}

func (a *bindingAllocator) checkBinding(binding uint32, name string) error {
	if a.res.MaxBindingsPerSet != 0 && binding >= a.res.MaxBindingsPerSet {
		return newError(ErrLimitExceeded, name, "binding %d exceeds limit %d", binding, a.res.MaxBindingsPerSet)
	}
	return nil
}

// claim records an explicit binding.
func (a *bindingAllocator) claim(set, binding uint32, name string) error {
	if err := a.checkSet(set, name); err != nil {
		return err
	}
	if err := a.checkBinding(binding, name); err != nil {
		return err
	}
	used := a.owner[set]
	if used == nil {
		used = make(map[uint32]string)
		a.owner[set] = used
	}
	if prev, taken := used[binding]; taken {
		return newError(ErrBindingCollision, name, "set %d binding %d already used by %q", set, binding, prev)
	}
	used[binding] = name
	return nil
}

// allocate returns the lowest free binding in set.
func (a *bindingAllocator) allocate(set uint32, name string) (uint32, error) {
	if err := a.checkSet(set, name); err != nil {
		return 0, err
	}
	used := a.owner[set]
	if used == nil {
		used = make(map[uint32]string)
		a.owner[set] = used
	}
	b := a.next[set]
	for {
		if _, taken := used[b]; !taken {
			break
		}
		b++
	}
	if err := a.checkBinding(b, name); err != nil {
		return 0, err
	}
	used[b] = name
	a.next[set] = b + 1
	return b, nil
}
