package billing

import (
	"testing"
	"time"

	"billcycle/internal/core"
)

func TestCalculateCycle(t *testing.T) {
	tests := []struct {
		name        string
		reference   core.Date
		withdrawDay int
		wantStart   core.Date
		wantEnd     core.Date
	}{
		{
			name:        "before withdraw day closes this month",
			reference:   core.NewDate(2024, 9, 15),
			withdrawDay: 20,
			wantStart:   core.NewDate(2024, 8, 21),
			wantEnd:     core.NewDate(2024, 9, 20),
		},
		{
			name:        "after withdraw day closes next month",
			reference:   core.NewDate(2024, 9, 25),
			withdrawDay: 20,
			wantStart:   core.NewDate(2024, 9, 21),
			wantEnd:     core.NewDate(2024, 10, 20),
		},
		{
			name:        "withdraw day belongs to the closing cycle",
			reference:   core.NewDate(2024, 9, 20),
			withdrawDay: 20,
			wantStart:   core.NewDate(2024, 8, 21),
			wantEnd:     core.NewDate(2024, 9, 20),
		},
		{
			name:        "leap february keeps day 29",
			reference:   core.NewDate(2024, 2, 15),
			withdrawDay: 29,
			wantStart:   core.NewDate(2024, 1, 30),
			wantEnd:     core.NewDate(2024, 2, 29),
		},
		{
			name:        "non-leap february clamps end to 28",
			reference:   core.NewDate(2023, 2, 15),
			withdrawDay: 29,
			wantStart:   core.NewDate(2023, 1, 30),
			wantEnd:     core.NewDate(2023, 2, 28),
		},
		{
			name:        "start collapses to first of month after a month-end close",
			reference:   core.NewDate(2023, 3, 10),
			withdrawDay: 31,
			wantStart:   core.NewDate(2023, 3, 1),
			wantEnd:     core.NewDate(2023, 3, 31),
		},
		{
			name:        "day 31 in february",
			reference:   core.NewDate(2024, 2, 10),
			withdrawDay: 31,
			wantStart:   core.NewDate(2024, 2, 1),
			wantEnd:     core.NewDate(2024, 2, 29),
		},
		{
			name:        "day 30 after short february starts on march 1",
			reference:   core.NewDate(2023, 3, 30),
			withdrawDay: 30,
			wantStart:   core.NewDate(2023, 3, 1),
			wantEnd:     core.NewDate(2023, 3, 30),
		},
		{
			name:        "year rollover",
			reference:   core.NewDate(2024, 12, 28),
			withdrawDay: 9,
			wantStart:   core.NewDate(2024, 12, 10),
			wantEnd:     core.NewDate(2025, 1, 9),
		},
		{
			name:        "withdraw day 1",
			reference:   core.NewDate(2024, 3, 1),
			withdrawDay: 1,
			wantStart:   core.NewDate(2024, 2, 2),
			wantEnd:     core.NewDate(2024, 3, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := CalculateCycle(tt.reference, tt.withdrawDay)
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("CalculateCycle(%v, %d) = (%v, %v), want (%v, %v)",
					tt.reference, tt.withdrawDay, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestCalculateCycleInvariants(t *testing.T) {
	from := core.NewDate(2023, 1, 1)
	to := core.NewDate(2025, 3, 31)

	for w := core.MinWithdrawDay; w <= core.MaxWithdrawDay; w++ {
		for d := from; !d.After(to); d = d.AddDays(1) {
			start, end := CalculateCycle(d, w)
			if end.Before(start) {
				t.Fatalf("w=%d ref=%v: end %v before start %v", w, d, end, start)
			}
			if d.Before(start) || d.After(end) {
				t.Fatalf("w=%d ref=%v: cycle (%v, %v) does not contain reference", w, d, start, end)
			}
			s2, e2 := CalculateCycle(d, w)
			if !s2.Equal(start) || !e2.Equal(end) {
				t.Fatalf("w=%d ref=%v: repeated call differs", w, d)
			}
		}
	}
}

func TestCycleEndingInIsContiguous(t *testing.T) {
	for w := core.MinWithdrawDay; w <= core.MaxWithdrawDay; w++ {
		year, month := 2022, time.November
		_, prevEnd := CycleEndingIn(year, month, w)
		for i := 0; i < 30; i++ {
			year, month = ShiftMonths(year, month, 1)
			start, end := CycleEndingIn(year, month, w)
			if want := prevEnd.AddDays(1); !start.Equal(want) {
				t.Fatalf("w=%d %d-%02d: start %v, want %v", w, year, month, start, want)
			}
			prevEnd = end
		}
	}
}

func TestCycleEndingInMatchesCalculateCycle(t *testing.T) {
	for w := core.MinWithdrawDay; w <= core.MaxWithdrawDay; w++ {
		ref := core.NewDate(2024, 2, 5)
		start, end := CalculateCycle(ref, w)
		s2, e2 := CycleEndingIn(end.Year(), end.Time.Month(), w)
		if !s2.Equal(start) || !e2.Equal(end) {
			t.Errorf("w=%d: CycleEndingIn = (%v, %v), CalculateCycle = (%v, %v)", w, s2, e2, start, end)
		}
	}
}
