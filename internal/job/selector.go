package job

// setCurrent implements the POSIX current/previous job policy (spec §4.2):
//
//   - The old current job becomes the next previous job.
//   - n == 0 means "promote the previous job, or pick one if there is
//     none usable"; otherwise n must already name an extant job.
//   - If, after the update, previous is still 0 or equals current, a
//     replacement previous is chosen with findNext.
func (t *Table) setCurrent(n int) {
	if n != 0 {
		if _, ok := t.Get(n); !ok {
			panic("job: setCurrent called with a stale job number")
		}
	}

	oldCurrent := t.current
	t.previous = oldCurrent

	if n == 0 {
		n = t.previous
		if n == 0 {
			n = t.findNext(0)
		} else if _, ok := t.Get(n); !ok {
			n = t.findNext(0)
		}
	}
	t.current = n

	if t.previous == 0 || t.previous == t.current {
		t.previous = t.findNext(t.current)
	}
}

// SetCurrent is the driver-facing entry point for "fg"/explicit current
// job changes (P1, P3). Passing 0 promotes the previous job.
func (t *Table) SetCurrent(n int) error {
	if n != 0 {
		if _, ok := t.Get(n); !ok {
			return ErrNoSuchJob
		}
	}
	t.setCurrent(n)
	return nil
}

// findNext picks a job number other than excl suitable for the next
// current/previous label: Stopped jobs are preferred over running/done
// ones, and among equally-preferred candidates the largest index wins.
// Returns 0 if there is no candidate.
func (t *Table) findNext(excl int) int {
	for i := len(t.slots) - 1; i > 0; i-- {
		if i == excl {
			continue
		}
		if j := t.slots[i]; j != nil && j.State == JobStopped {
			return i
		}
	}
	for i := len(t.slots) - 1; i > 0; i-- {
		if i == excl {
			continue
		}
		if t.slots[i] != nil {
			return i
		}
	}
	return 0
}
