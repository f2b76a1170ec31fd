package founder

import "sort"

// pair is one (key, value) entry of a ploidyMultimap.
type pair struct {
	key, value uint32
}

// ploidyMultimap is a minimal stand-in for std::multimap<ploidy_type,
// ploidy_type>, kept as a key-sorted slice since the sizes involved never
// exceed the graph's total chromosome-copy count. Find/erase operate on
// the first matching key, mirroring multimap::find semantics.
type ploidyMultimap struct {
	entries []pair
}

func (m *ploidyMultimap) emplace(key, value uint32) {
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].key >= key })
	m.entries = append(m.entries, pair{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = pair{key, value}
}

func (m *ploidyMultimap) find(key uint32) (value uint32, ok bool) {
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].key >= key })
	if i < len(m.entries) && m.entries[i].key == key {
		return m.entries[i].value, true
	}
	return 0, false
}

func (m *ploidyMultimap) eraseKey(key uint32) {
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].key >= key })
	if i < len(m.entries) && m.entries[i].key == key {
		m.entries = append(m.entries[:i], m.entries[i+1:]...)
	}
}

func (m *ploidyMultimap) empty() bool { return len(m.entries) == 0 }

// popBegin returns the smallest-keyed entry (multimap's begin()) and
// erases it.
func (m *ploidyMultimap) popBegin() pair {
	p := m.entries[0]
	m.entries = m.entries[1:]
	return p
}

func (m *ploidyMultimap) clear() { m.entries = nil }
