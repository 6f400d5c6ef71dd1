package customers

// Selection is the set of customer keys ticked for a bulk action.
type Selection struct {
	keys map[string]struct{}
}

func NewSelection(keys ...string) *Selection {
	s := &Selection{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

func (s *Selection) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s.keys[key]
	return ok
}

func (s *Selection) Toggle(key string) {
	if s.Has(key) {
		delete(s.keys, key)
		return
	}
	s.keys[key] = struct{}{}
}

// ToggleAll clears the selection when every visible customer is already
// selected and selects all of them otherwise.
func (s *Selection) ToggleAll(visible []Info) {
	if len(s.keys) == len(visible) {
		s.Clear()
		return
	}
	s.keys = make(map[string]struct{}, len(visible))
	for _, c := range visible {
		s.keys[c.Key] = struct{}{}
	}
}

func (s *Selection) Clear() {
	s.keys = make(map[string]struct{})
}

func (s *Selection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

func (s *Selection) Keys() []string {
	out := make([]string, 0, s.Len())
	if s == nil {
		return out
	}
	for k := range s.keys {
		out = append(out, k)
	}
	return out
}
