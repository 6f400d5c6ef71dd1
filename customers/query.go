package customers

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortByName          SortKey = "name"
	SortByOrderCount    SortKey = "orderCount"
	SortByTotalSpent    SortKey = "totalSpent"
	SortByLastOrderDate SortKey = "lastOrderDate"
)

func (k SortKey) IsValid() bool {
	switch k {
	case SortByName, SortByOrderCount, SortByTotalSpent, SortByLastOrderDate:
		return true
	}
	return false
}

type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

type SortState struct {
	Key SortKey `json:"sort"`
	Dir SortDir `json:"dir"`
}

// DefaultSort shows the most recent customers first.
func DefaultSort() SortState {
	return SortState{Key: SortByLastOrderDate, Dir: Desc}
}

// ParseSort falls back to the default for unknown keys and to descending
// for unknown directions.
func ParseSort(key, dir string) SortState {
	s := DefaultSort()
	if k := SortKey(key); k.IsValid() {
		s.Key = k
	}
	if d := SortDir(strings.ToLower(dir)); d == Asc || d == Desc {
		s.Dir = d
	}
	return s
}

// Toggle flips the direction when the same key is picked again and
// otherwise switches to key, descending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key {
		if s.Dir == Asc {
			s.Dir = Desc
		} else {
			s.Dir = Asc
		}
		return s
	}
	return SortState{Key: key, Dir: Desc}
}

// Filter keeps customers whose name, phone or any address contains q,
// ignoring case.
func Filter(list []Info, q string) []Info {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return list
	}
	var out []Info
	for _, c := range list {
		if matches(c, q) {
			out = append(out, c)
		}
	}
	return out
}

func matches(c Info, q string) bool {
	if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.ContactNumber), q) {
		return true
	}
	for _, a := range c.Addresses {
		if strings.Contains(strings.ToLower(a), q) {
			return true
		}
	}
	return false
}

// Sort returns a sorted copy of list.
func Sort(list []Info, s SortState) []Info {
	out := make([]Info, len(list))
	copy(out, list)

	col := collate.New(language.English, collate.IgnoreCase)

	cmp := func(a, b Info) int {
		switch s.Key {
		case SortByName:
			return col.CompareString(a.Name, b.Name)
		case SortByOrderCount:
			return a.OrderCount - b.OrderCount
		case SortByTotalSpent:
			return a.TotalSpent.Cmp(b.TotalSpent)
		default:
			return a.LastOrderDate.Compare(b.LastOrderDate)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if s.Dir == Asc {
			return c < 0
		}
		return c > 0
	})
	return out
}

// Query filters then sorts.
func Query(list []Info, q string, s SortState) []Info {
	return Sort(Filter(list, q), s)
}
