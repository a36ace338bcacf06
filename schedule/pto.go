/*
pto.go - Portable PTO map form

PURPOSE:
  The wire shape of a PTOMap is a JSON object ISO-date -> [person_id].
  Conversions here are the only place that shape is interpreted; the core
  works exclusively with the typed PTOMap.
*/
package schedule

import "sort"

// PortablePTO is the wire shape: ISO date -> person ids, sorted on output.
type PortablePTO map[string][]string

// ToPortable serializes the map with sorted person lists.
func (m PTOMap) ToPortable() PortablePTO {
	out := make(PortablePTO, len(m))
	for day, set := range m {
		ids := make([]string, 0, len(set))
		for pid := range set {
			ids = append(ids, string(pid))
		}
		sort.Strings(ids)
		out[day.String()] = ids
	}
	return out
}

// PTOFromPortable parses the wire shape. Duplicate ids are tolerated;
// malformed dates are InvalidInput.
func PTOFromPortable(p PortablePTO) (PTOMap, error) {
	out := PTOMap{}
	for raw, ids := range p {
		day, err := ParseDate(raw)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if id == "" {
				return nil, &InputError{Field: "pto", Reason: "empty person_id for " + raw}
			}
			out.Add(day, PersonID(id))
		}
	}
	return out, nil
}
