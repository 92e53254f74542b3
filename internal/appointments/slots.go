package appointments

import (
	"fmt"
	"time"

	"github.com/vetsuite/clinic-crm/internal/clinic"
)

// minutesOf parses a "15:04" label into minutes since midnight.
func minutesOf(label string) (int, error) {
	t, err := time.Parse(TimeLayout, label)
	if err != nil {
		return 0, fmt.Errorf("appointments: parse time %q: %w", label, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func labelOf(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// overlaps reports whether the half-open windows [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back windows do not overlap.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// ComputeSlots enumerates the day's slot grid from the clinic's open time to
// its close time inclusive, stepping by the policy's slot length. A slot is
// available when no existing appointment's window intersects the slot's own
// [start, start+step) window; whether a longer requested duration fits is
// slotFits' concern at booking time.
func ComputeSlots(policy *clinic.Settings, existing []*Appointment) ([]Slot, error) {
	openMin, err := minutesOf(policy.OpenTime)
	if err != nil {
		return nil, err
	}
	closeMin, err := minutesOf(policy.CloseTime)
	if err != nil {
		return nil, err
	}

	type window struct{ start, end int }
	taken := make([]window, 0, len(existing))
	for _, appt := range existing {
		if appt.Status == StatusCanceled {
			continue
		}
		start, err := minutesOf(appt.StartTime)
		if err != nil {
			return nil, err
		}
		taken = append(taken, window{start: start, end: start + appt.DurationMinutes})
	}

	var slots []Slot
	for start := openMin; start <= closeMin; start += policy.SlotMinutes {
		end := start + policy.SlotMinutes
		available := true
		for _, w := range taken {
			if overlaps(start, end, w.start, w.end) {
				available = false
				break
			}
		}
		slots = append(slots, Slot{Time: labelOf(start), Available: available})
	}
	return slots, nil
}

// slotFits reports whether the requested window [startMin, startMin+duration)
// is clear of every existing appointment.
func slotFits(startMin, durationMinutes int, existing []*Appointment) (bool, error) {
	end := startMin + durationMinutes
	for _, appt := range existing {
		if appt.Status == StatusCanceled {
			continue
		}
		otherStart, err := minutesOf(appt.StartTime)
		if err != nil {
			return false, err
		}
		if overlaps(startMin, end, otherStart, otherStart+appt.DurationMinutes) {
			return false, nil
		}
	}
	return true, nil
}

// onGrid reports whether startMin is a valid slot start under the policy.
func onGrid(policy *clinic.Settings, startMin int) (bool, error) {
	openMin, err := minutesOf(policy.OpenTime)
	if err != nil {
		return false, err
	}
	closeMin, err := minutesOf(policy.CloseTime)
	if err != nil {
		return false, err
	}
	if startMin < openMin || startMin > closeMin {
		return false, nil
	}
	return (startMin-openMin)%policy.SlotMinutes == 0, nil
}
