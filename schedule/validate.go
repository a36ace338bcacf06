/*
validate.go - Independent schedule checker

PURPOSE:
  Re-checks a produced schedule against every invariant, independent of the
  solver that built it. Tests lean on this; callers can use it as a second
  opinion before persisting a schedule.

CHECKS:
  1. at most one assignment per (day, person)
  2. per-skill coverage of every scheduled task matches the requirement
     exactly
  3. contributed skills are possessed
  4. rolling cap: no more than 5 worked days in any 7 consecutive days
  5. nobody works on their PTO days
  6. scheduled tasks are active on their day
*/
package schedule

import "fmt"

// ValidateDays checks a sequence of day schedules against the invariants.
// Returns ok and the list of violations found.
func ValidateDays(cal Calendar, people []Person, tasks []Task, days []DaySchedule, pto PTOMap) (bool, []string) {
	peopleBy := make(map[PersonID]Person, len(people))
	for _, p := range people {
		peopleBy[p.ID] = p
	}
	tasksBy := make(map[TaskID]Task, len(tasks))
	for _, t := range tasks {
		tasksBy[t.ID] = t
	}

	var errs []string
	workedOn := make(map[PersonID]map[Date]struct{})

	for _, ds := range days {
		seen := make(map[PersonID]struct{})
		for _, tc := range ds.Coverage {
			task, known := tasksBy[tc.TaskID]
			if !known {
				errs = append(errs, fmt.Sprintf("%s: unknown task %s", ds.Date, tc.TaskID))
				continue
			}
			if !task.ActiveOn(cal, ds.Date) {
				errs = append(errs, fmt.Sprintf("%s: task %s scheduled though inactive", ds.Date, tc.TaskID))
			}
			for skill, count := range task.Requirements {
				if count <= 0 {
					continue
				}
				if got := len(tc.SkillCoverage[skill]); got != count {
					errs = append(errs, fmt.Sprintf("%s %s skill %s: assigned %d != %d", ds.Date, tc.TaskID, skill, got, count))
				}
			}
			for pid, skills := range tc.Contributions {
				person, known := peopleBy[pid]
				if !known {
					errs = append(errs, fmt.Sprintf("%s: unknown person %s", ds.Date, pid))
					continue
				}
				if _, dup := seen[pid]; dup {
					errs = append(errs, fmt.Sprintf("%s: person %s assigned to multiple tasks", ds.Date, pid))
				}
				seen[pid] = struct{}{}
				for _, skill := range skills {
					if !person.Skills.Has(skill) {
						errs = append(errs, fmt.Sprintf("%s: person %s lacks skill %s", ds.Date, pid, skill))
					}
				}
				if pto.Contains(ds.Date, pid) {
					errs = append(errs, fmt.Sprintf("%s: person %s assigned while on PTO", ds.Date, pid))
				}
			}
		}
		for pid := range seen {
			if workedOn[pid] == nil {
				workedOn[pid] = make(map[Date]struct{})
			}
			workedOn[pid][ds.Date] = struct{}{}
		}
	}

	// Rolling cap over the observed days.
	for pid, dates := range workedOn {
		for d := range dates {
			count := 0
			for i := 0; i <= 6; i++ {
				if _, ok := dates[d.AddDays(-i)]; ok {
					count++
				}
			}
			if count > 5 {
				errs = append(errs, fmt.Sprintf("rolling cap violated for %s ending %s: %d > 5", pid, d, count))
			}
		}
	}

	return len(errs) == 0, errs
}
