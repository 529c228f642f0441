package booking

import "testing"

func TestConflictsOverlapSemantics(t *testing.T) {
	existing := []Reservation{
		{UserID: "u1", Date: "2024-01-15", StartTime: "09:00", EndTime: "17:00"},
	}

	cases := []struct {
		name      string
		candidate Reservation
		want      bool
	}{
		{
			name:      "contained interval conflicts",
			candidate: Reservation{UserID: "u2", Date: "2024-01-15", StartTime: "10:00", EndTime: "11:00"},
			want:      true,
		},
		{
			name:      "boundary touching is not a conflict",
			candidate: Reservation{UserID: "u2", Date: "2024-01-15", StartTime: "17:00", EndTime: "18:00"},
			want:      false,
		},
		{
			name:      "ending at existing start is not a conflict",
			candidate: Reservation{UserID: "u2", Date: "2024-01-15", StartTime: "08:00", EndTime: "09:00"},
			want:      false,
		},
		{
			name:      "straddling start conflicts",
			candidate: Reservation{UserID: "u2", Date: "2024-01-15", StartTime: "08:30", EndTime: "09:30"},
			want:      true,
		},
		{
			name:      "enclosing interval conflicts",
			candidate: Reservation{UserID: "u2", Date: "2024-01-15", StartTime: "08:00", EndTime: "18:00"},
			want:      true,
		},
		{
			name:      "different date never conflicts",
			candidate: Reservation{UserID: "u2", Date: "2024-01-16", StartTime: "10:00", EndTime: "11:00"},
			want:      false,
		},
		{
			name:      "same user still conflicts on the shared resource",
			candidate: Reservation{UserID: "u1", Date: "2024-01-15", StartTime: "12:00", EndTime: "13:00"},
			want:      true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Conflicts(tc.candidate, existing)
			if err != nil {
				t.Fatalf("Conflicts() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("Conflicts() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConflictsEmptySet(t *testing.T) {
	got, err := Conflicts(Reservation{Date: "2024-01-15", StartTime: "09:00", EndTime: "10:00"}, nil)
	if err != nil {
		t.Fatalf("Conflicts() error = %v", err)
	}
	if got {
		t.Fatalf("Conflicts() = true against empty set")
	}
}

func TestParseClockRejectsMalformed(t *testing.T) {
	for _, v := range []string{"", "9:00", "09:0", "25:00", "09:61", "nine", "09-00", "09:00:00"} {
		if _, err := ParseClock(v); err == nil {
			t.Fatalf("ParseClock(%q) accepted malformed input", v)
		}
	}
	if _, err := ParseClock("23:59"); err != nil {
		t.Fatalf("ParseClock(23:59) error = %v", err)
	}
}

func TestValidateSlot(t *testing.T) {
	ok := Reservation{Date: "2024-01-15", StartTime: "09:00", EndTime: "10:00"}
	if err := ValidateSlot(ok); err != nil {
		t.Fatalf("ValidateSlot() error = %v", err)
	}

	bad := []Reservation{
		{Date: "15-01-2024", StartTime: "09:00", EndTime: "10:00"},
		{Date: "2024-01-15", StartTime: "9am", EndTime: "10:00"},
		{Date: "2024-01-15", StartTime: "09:00", EndTime: "09:00"},
		{Date: "2024-01-15", StartTime: "10:00", EndTime: "09:00"},
	}
	for _, r := range bad {
		if err := ValidateSlot(r); err == nil {
			t.Fatalf("ValidateSlot(%+v) accepted malformed slot", r)
		}
	}
}
