package domain

import "sort"

// SubscriptionSet is the set of doctor names a device is subscribed to.
// The zero value is an empty set. Add and Remove return a new set and never
// modify the receiver, so a set can be shared between goroutines once built.
type SubscriptionSet struct {
	names map[string]struct{}
}

// NewSubscriptionSet builds a set from a list of doctor names. Duplicates collapse.
func NewSubscriptionSet(names ...string) SubscriptionSet {
	s := SubscriptionSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.names[n] = struct{}{}
	}
	return s
}

// Contains reports whether name is in the set.
func (s SubscriptionSet) Contains(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Len returns the number of names in the set.
func (s SubscriptionSet) Len() int {
	return len(s.names)
}

// Add returns a set that also contains name. Adding a present name is a no-op.
func (s SubscriptionSet) Add(name string) SubscriptionSet {
	if s.Contains(name) {
		return s
	}
	out := s.clone()
	out.names[name] = struct{}{}
	return out
}

// Remove returns a set without name. Removing an absent name is a no-op.
func (s SubscriptionSet) Remove(name string) SubscriptionSet {
	if !s.Contains(name) {
		return s
	}
	out := s.clone()
	delete(out.names, name)
	return out
}

// Names returns the names in sorted order.
func (s SubscriptionSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (s SubscriptionSet) clone() SubscriptionSet {
	out := SubscriptionSet{names: make(map[string]struct{}, len(s.names)+1)}
	for n := range s.names {
		out.names[n] = struct{}{}
	}
	return out
}
