// Package allocation computes how a raffle's ticket pool is split
// across the eligible students of a room. It is pure: same inputs,
// same output, no I/O.
package allocation

import "errors"

var (
	// ErrInvalidTicketCount is returned when fewer than one ticket is requested.
	ErrInvalidTicketCount = errors.New("allocation: total tickets must be at least 1")
	// ErrNoRecipients is returned when the student roster is empty.
	ErrNoRecipients = errors.New("allocation: no eligible recipients")
)

// Assignment is the number of tickets one student receives.
type Assignment struct {
	OwnerID uint
	Count   int
}

// Slot binds one concrete ticket number to its pre-assigned owner.
type Slot struct {
	Number  int
	OwnerID uint
}

// Distribute splits totalTickets across studentIDs. Every student gets
// floor(N/M) tickets and the last student in roster order additionally
// receives the whole remainder. Students left with zero tickets are
// excluded from the result, so the returned counts always sum to
// totalTickets.
//
// The roster order is the caller's responsibility (registration time
// ascending, ties broken by id); Distribute never reorders it.
func Distribute(studentIDs []uint, totalTickets int) ([]Assignment, error) {
	if totalTickets < 1 {
		return nil, ErrInvalidTicketCount
	}
	if len(studentIDs) == 0 {
		return nil, ErrNoRecipients
	}

	base := totalTickets / len(studentIDs)
	remainder := totalTickets % len(studentIDs)

	out := make([]Assignment, 0, len(studentIDs))
	for i, id := range studentIDs {
		count := base
		if i == len(studentIDs)-1 {
			count += remainder
		}
		if count == 0 {
			continue
		}
		out = append(out, Assignment{OwnerID: id, Count: count})
	}
	return out, nil
}

// Slots expands per-student counts into the full numbered ticket list.
// Numbers start at 1 and keep counting across student boundaries, so
// the sequence is dense over the whole raffle.
func Slots(assignments []Assignment) []Slot {
	total := 0
	for _, a := range assignments {
		total += a.Count
	}

	slots := make([]Slot, 0, total)
	number := 1
	for _, a := range assignments {
		for i := 0; i < a.Count; i++ {
			slots = append(slots, Slot{Number: number, OwnerID: a.OwnerID})
			number++
		}
	}
	return slots
}
