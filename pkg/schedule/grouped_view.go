package schedule

import (
	"cmp"
	"iter"
	"math"
	"slices"

	"github.com/boredapes/ctaplanner/pkg/event"
)

// Group is one time slot of the grouped view.
type Group struct {
	Slot   string              `json:"slot"`
	Events []event.EventRecord `json:"events"`
}

// GroupedView yields the records partitioned by their exact time slot, slots in
// chronological order of a day that starts at noon and wraps past midnight. Records
// within a slot keep their insertion order.
func GroupedView(records []event.EventRecord) iter.Seq2[string, []event.EventRecord] {
	return func(yield func(string, []event.EventRecord) bool) {
		var slots []string
		groups := map[string][]event.EventRecord{}
		for _, record := range records {
			if _, seen := groups[record.Time]; !seen {
				slots = append(slots, record.Time)
			}
			groups[record.Time] = append(groups[record.Time], record)
		}

		slices.SortStableFunc(slots, func(a, b string) int {
			return cmp.Compare(slotRank(a), slotRank(b))
		})

		for _, slot := range slots {
			if !yield(slot, groups[slot]) {
				return
			}
		}
	}
}

// GroupedView is the grouped view of the set's current contents.
func (s *Set) GroupedView() iter.Seq2[string, []event.EventRecord] {
	return GroupedView(s.Records())
}

// Groups materializes the grouped view.
func (s *Set) Groups() []Group {
	return Collect(s.GroupedView())
}

func Collect(view iter.Seq2[string, []event.EventRecord]) []Group {
	groups := []Group{}
	for slot, records := range view {
		groups = append(groups, Group{Slot: slot, Events: records})
	}
	return groups
}

// slotRank orders hour 0 after hour 24 and unparsable slots last.
func slotRank(slot string) int {
	hour, err := event.HourOf(slot)
	if err != nil {
		return math.MaxInt
	}
	if hour == 0 {
		return 25
	}
	return hour
}
