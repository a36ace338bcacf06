/*
planstore.go - Per-person committed-day ledger

PURPOSE:
  The PlanStore is the only mutable structure inside a solve. It records, per
  person, the set of calendar days already committed to work, and answers the
  rolling-window questions the solver asks:
  - already assigned on day D?
  - how many committed days in an inclusive date window?
  - can this person take day D without exceeding 5 days per 7?

CRITICAL INVARIANT:
  For every person and every day D, committed days in [D-6, D] never exceed 5.
  The store enforces this through CanAssign; Commit trusts the solver.

TWO-PHASE CanAssign:
  pendingSameDay=false  "is this person eligible to be considered today?"
                        If not yet committed on D, the stored window count
                        must be <= 4 (adding today would make 5).
  pendingSameDay=true   "is a tentative, locally recorded assignment still
                        within the cap?" The count must be <= 5.
  The eager <=4 probe lets the backtracking solver reject candidates before
  tentatively assigning them, while tolerating the temporary post-assignment
  state during re-checks.

SERIALIZATION:
  Portable form is a JSON object person_id -> [ISO dates]. Input tolerates
  duplicates and arbitrary order; output is sorted and deduplicated.

SEE ALSO:
  - daysolver.go: reads the store during candidate filtering
  - driver.go: the only writer, via Commit at end of each successful day
*/
package schedule

import (
	"encoding/json"
	"sort"
)

// =============================================================================
// PLAN STORE
// =============================================================================

// PlanStore maps person -> set of committed work days. It models days only,
// never tasks. Not safe for concurrent use; parallel solves each own a Clone.
type PlanStore struct {
	days map[PersonID]map[Date]struct{}
}

func NewPlanStore() *PlanStore {
	return &PlanStore{days: make(map[PersonID]map[Date]struct{})}
}

// AssignedOn reports whether the person is already committed on day d.
func (s *PlanStore) AssignedOn(person PersonID, d Date) bool {
	_, ok := s.days[person][d]
	return ok
}

// CountInWindow counts committed days in the inclusive range [lo, hi].
func (s *PlanStore) CountInWindow(person PersonID, lo, hi Date) int {
	set := s.days[person]
	if len(set) == 0 {
		return 0
	}
	count := 0
	for i := 0; i <= DaysBetween(lo, hi); i++ {
		if _, ok := set[lo.AddDays(i)]; ok {
			count++
		}
	}
	return count
}

// CanAssign reports whether adding person on day d keeps the rolling cap
// (at most 5 committed days in any 7 consecutive days) satisfied.
// See the two-phase semantics in the file header.
func (s *PlanStore) CanAssign(person PersonID, d Date, pendingSameDay bool) bool {
	count := s.CountInWindow(person, d.AddDays(-6), d)
	if pendingSameDay {
		return count <= 5
	}
	if s.AssignedOn(person, d) {
		return count <= 5
	}
	return count <= 4
}

// Commit idempotently records (person, day) for each assignment.
func (s *PlanStore) Commit(assignments []Assignment) {
	for _, a := range assignments {
		s.add(a.PersonID, a.Day)
	}
}

// Preload seeds prior history, e.g. days worked before the horizon start.
// Identical semantics to Commit; a separate name keeps call sites honest.
func (s *PlanStore) Preload(assignments []Assignment) {
	s.Commit(assignments)
}

// AddDay records a single committed day directly.
func (s *PlanStore) AddDay(person PersonID, d Date) {
	s.add(person, d)
}

func (s *PlanStore) add(person PersonID, d Date) {
	set, ok := s.days[person]
	if !ok {
		set = make(map[Date]struct{})
		s.days[person] = set
	}
	set[d] = struct{}{}
}

// Clone returns an independent store with the same committed state. The PTO
// admission check runs against a clone so the live store is never mutated.
func (s *PlanStore) Clone() *PlanStore {
	out := NewPlanStore()
	for pid, set := range s.days {
		dst := make(map[Date]struct{}, len(set))
		for d := range set {
			dst[d] = struct{}{}
		}
		out.days[pid] = dst
	}
	return out
}

// Equal compares two stores as person -> set-of-days mappings.
func (s *PlanStore) Equal(other *PlanStore) bool {
	if len(s.days) != len(other.days) {
		return false
	}
	for pid, set := range s.days {
		oset, ok := other.days[pid]
		if !ok || len(oset) != len(set) {
			return false
		}
		for d := range set {
			if _, ok := oset[d]; !ok {
				return false
			}
		}
	}
	return true
}

// =============================================================================
// PORTABLE FORM
// =============================================================================

// PortablePlan is the wire shape of a PlanStore: person_id -> ISO dates.
type PortablePlan map[string][]string

// ToPortable serializes the store, persons and dates sorted, duplicates gone.
func (s *PlanStore) ToPortable() PortablePlan {
	out := make(PortablePlan, len(s.days))
	for pid, set := range s.days {
		dates := make([]string, 0, len(set))
		for d := range set {
			dates = append(dates, d.String())
		}
		sort.Strings(dates)
		out[string(pid)] = dates
	}
	return out
}

// FromPortable rebuilds a store from the wire shape. Duplicate dates are
// tolerated; malformed dates are InvalidInput.
func FromPortable(p PortablePlan) (*PlanStore, error) {
	s := NewPlanStore()
	for pid, dates := range p {
		if pid == "" {
			return nil, &InputError{Field: "plan", Reason: "empty person_id key"}
		}
		for _, raw := range dates {
			d, err := ParseDate(raw)
			if err != nil {
				return nil, err
			}
			s.add(PersonID(pid), d)
		}
	}
	return s, nil
}

// ToJSON emits the portable form as JSON.
func (s *PlanStore) ToJSON() ([]byte, error) {
	return json.Marshal(s.ToPortable())
}

// PlanStoreFromJSON parses the portable form, accepting the bare mapping or
// either documented wrapper: {"days_by_person": {...}} and {"json": "<...>"}.
func PlanStoreFromJSON(data []byte) (*PlanStore, error) {
	var wrapper struct {
		DaysByPerson PortablePlan `json:"days_by_person"`
		JSON         string       `json:"json"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil {
		if wrapper.JSON != "" {
			return PlanStoreFromJSON([]byte(wrapper.JSON))
		}
		if wrapper.DaysByPerson != nil {
			return FromPortable(wrapper.DaysByPerson)
		}
	}
	var plain PortablePlan
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, &InputError{Field: "plan", Reason: "not a portable plan: " + err.Error()}
	}
	return FromPortable(plain)
}
