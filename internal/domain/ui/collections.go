package ui

import "github.com/GriffinCanCode/uilayers/internal/shared/id"

// exclusiveSlot holds at most one instance
type exclusiveSlot struct {
	occupant *Instance
}

func (s *exclusiveSlot) holds(h id.InstanceID) bool {
	return s.occupant != nil && s.occupant.id == h
}

func (s *exclusiveSlot) take() *Instance {
	inst := s.occupant
	s.occupant = nil
	return inst
}

// panelStack is ordered bottom to top; the last element is the top
type panelStack struct {
	items []*Instance
}

func (s *panelStack) len() int { return len(s.items) }

func (s *panelStack) push(inst *Instance) {
	s.items = append(s.items, inst)
}

func (s *panelStack) top() *Instance {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

func (s *panelStack) indexOf(h id.InstanceID) int {
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].id == h {
			return i
		}
	}
	return -1
}

// removeAt deletes the element at i, keeping the order of the rest
func (s *panelStack) removeAt(i int) *Instance {
	inst := s.items[i]
	copy(s.items[i:], s.items[i+1:])
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	return inst
}

// overlaySet has no ordering discipline; order is kept only so listings are stable
type overlaySet struct {
	members map[id.InstanceID]*Instance
	order   []id.InstanceID
}

func newOverlaySet() overlaySet {
	return overlaySet{members: make(map[id.InstanceID]*Instance)}
}

func (s *overlaySet) len() int { return len(s.members) }

func (s *overlaySet) add(inst *Instance) {
	s.members[inst.id] = inst
	s.order = append(s.order, inst.id)
}

func (s *overlaySet) get(h id.InstanceID) (*Instance, bool) {
	inst, ok := s.members[h]
	return inst, ok
}

func (s *overlaySet) remove(h id.InstanceID) *Instance {
	inst, ok := s.members[h]
	if !ok {
		return nil
	}
	delete(s.members, h)
	for i, member := range s.order {
		if member == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return inst
}

func (s *overlaySet) list() []*Instance {
	out := make([]*Instance, 0, len(s.order))
	for _, h := range s.order {
		out = append(out, s.members[h])
	}
	return out
}
