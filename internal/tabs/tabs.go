// Package tabs provides single-select-of-N selection state for tab bars.
// The studio instantiates it for variation tabs, platform tabs, and the
// brief form's tone selector.
package tabs

// Selection tracks which item of an ordered collection is active.
// The zero value is an empty selection with no active item.
type Selection struct {
	active int
	count  int
}

// NewSelection returns a Selection over count items with item 0 active.
// A count of zero (or negative) yields a selection with no active item.
func NewSelection(count int) Selection {
	if count <= 0 {
		return Selection{}
	}
	return Selection{count: count}
}

// Count returns the number of items.
func (s Selection) Count() int {
	return s.count
}

// Active returns the active index, or -1 when the collection is empty.
func (s Selection) Active() int {
	if s.count == 0 {
		return -1
	}
	return s.active
}

// IsActive reports whether idx is the active item.
func (s Selection) IsActive(idx int) bool {
	return s.count > 0 && idx == s.active
}

// Select activates idx. Out-of-range indexes are ignored.
func (s Selection) Select(idx int) Selection {
	if idx < 0 || idx >= s.count {
		return s
	}
	s.active = idx
	return s
}

// Next activates the following item, wrapping at the end.
func (s Selection) Next() Selection {
	if s.count == 0 {
		return s
	}
	s.active = (s.active + 1) % s.count
	return s
}

// Prev activates the preceding item, wrapping at the start.
func (s Selection) Prev() Selection {
	if s.count == 0 {
		return s
	}
	s.active--
	if s.active < 0 {
		s.active = s.count - 1
	}
	return s
}

// Flags returns a visibility flag per item, exactly one of which is set
// when the collection is non-empty.
func (s Selection) Flags() []bool {
	flags := make([]bool, s.count)
	if s.count > 0 {
		flags[s.active] = true
	}
	return flags
}
