package civil

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    Date
		wantErr bool
	}{
		{input: "2024-02-29", want: NewDate(2024, time.February, 29)},
		{input: "1999-12-31", want: NewDate(1999, time.December, 31)},
		{input: "2023-02-29", wantErr: true},
		{input: "2024-13-01", wantErr: true},
		{input: "24-01-01", wantErr: true},
		{input: "not a date", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDateAddDays(t *testing.T) {
	tests := []struct {
		name string
		d    Date
		n    int
		want Date
	}{
		{"within month", NewDate(2024, time.March, 10), 5, NewDate(2024, time.March, 15)},
		{"across month boundary", NewDate(2024, time.January, 31), 1, NewDate(2024, time.February, 1)},
		{"across leap day", NewDate(2024, time.February, 28), 1, NewDate(2024, time.February, 29)},
		{"across year boundary", NewDate(2023, time.December, 31), 1, NewDate(2024, time.January, 1)},
		{"negative", NewDate(2024, time.March, 1), -1, NewDate(2024, time.February, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.AddDays(tt.n); got != tt.want {
				t.Errorf("%v.AddDays(%d) = %v, want %v", tt.d, tt.n, got, tt.want)
			}
		})
	}
}

func TestDateDaysSince(t *testing.T) {
	tests := []struct {
		name  string
		d     Date
		other Date
		want  int
	}{
		{"same day", NewDate(2024, time.June, 1), NewDate(2024, time.June, 1), 0},
		{"one week", NewDate(2024, time.June, 8), NewDate(2024, time.June, 1), 7},
		{"across leap day", NewDate(2024, time.March, 1), NewDate(2024, time.February, 28), 2},
		{"negative", NewDate(2024, time.June, 1), NewDate(2024, time.June, 8), -7},
		{"across a year", NewDate(2025, time.January, 1), NewDate(2024, time.January, 1), 366},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.DaysSince(tt.other); got != tt.want {
				t.Errorf("%v.DaysSince(%v) = %d, want %d", tt.d, tt.other, got, tt.want)
			}
		})
	}
}

func TestDateCompare(t *testing.T) {
	a := NewDate(2024, time.May, 10)
	b := NewDate(2024, time.May, 11)

	if !a.Before(b) {
		t.Errorf("%v.Before(%v) = false, want true", a, b)
	}
	if !b.After(a) {
		t.Errorf("%v.After(%v) = false, want true", b, a)
	}
	if a.Compare(a) != 0 {
		t.Errorf("%v.Compare(itself) = %d, want 0", a, a.Compare(a))
	}
	if NewDate(2023, time.December, 31).Compare(NewDate(2024, time.January, 1)) != -1 {
		t.Error("year boundary comparison failed")
	}
}

func TestDateWeekday(t *testing.T) {
	// 2024-06-02 was a Sunday
	if got := NewDate(2024, time.June, 2).Weekday(); got != time.Sunday {
		t.Errorf("Weekday() = %v, want Sunday", got)
	}
	if got := NewDate(2024, time.June, 5).Weekday(); got != time.Wednesday {
		t.Errorf("Weekday() = %v, want Wednesday", got)
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2100, time.February, 28}, // century, not a leap year
		{2000, time.February, 29}, // quadricentennial, leap year
		{2024, time.April, 30},
		{2024, time.December, 31},
	}

	for _, tt := range tests {
		if got := DaysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysInMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestDateOfShiftsIntoLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	// 2024-06-02 01:30 UTC is still 2024-06-01 in New York.
	instant := time.Date(2024, time.June, 2, 1, 30, 0, 0, time.UTC)
	if got := DateOf(instant.In(loc)); got != NewDate(2024, time.June, 1) {
		t.Errorf("DateOf(in New York) = %v, want 2024-06-01", got)
	}
	if got := DateOf(instant); got != NewDate(2024, time.June, 2) {
		t.Errorf("DateOf(in UTC) = %v, want 2024-06-02", got)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{input: "09:30", want: NewTimeOfDay(9, 30)},
		{input: "00:00", want: NewTimeOfDay(0, 0)},
		{input: "23:59", want: NewTimeOfDay(23, 59)},
		{input: "24:00", wantErr: true},
		{input: "9:30am", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimeOfDay(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTimeOfDayCompare(t *testing.T) {
	morning := NewTimeOfDay(9, 0)
	evening := NewTimeOfDay(18, 30)

	if !morning.Before(evening) {
		t.Error("09:00 should be before 18:30")
	}
	if !evening.After(morning) {
		t.Error("18:30 should be after 09:00")
	}
	if morning.Compare(NewTimeOfDay(9, 0)) != 0 {
		t.Error("equal times should compare as 0")
	}
}

func TestTimeOfDayScan(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  TimeOfDay
	}{
		{"time.Time", time.Date(0, 1, 1, 14, 45, 0, 0, time.UTC), NewTimeOfDay(14, 45)},
		{"microseconds", int64(9*3_600_000_000 + 30*60_000_000), NewTimeOfDay(9, 30)},
		{"string with seconds", "07:15:00", NewTimeOfDay(7, 15)},
		{"bytes", []byte("23:05"), NewTimeOfDay(23, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tod TimeOfDay
			if err := tod.Scan(tt.value); err != nil {
				t.Fatalf("Scan(%v) error = %v", tt.value, err)
			}
			if tod != tt.want {
				t.Errorf("Scan(%v) = %v, want %v", tt.value, tod, tt.want)
			}
		})
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, time.July, 4, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Scan(time.Time) error = %v", err)
	}
	if d != NewDate(2024, time.July, 4) {
		t.Errorf("Scan(time.Time) = %v, want 2024-07-04", d)
	}

	if err := d.Scan("2025-01-15"); err != nil {
		t.Fatalf("Scan(string) error = %v", err)
	}
	if d != NewDate(2025, time.January, 15) {
		t.Errorf("Scan(string) = %v, want 2025-01-15", d)
	}

	if err := d.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error = %v", err)
	}
	if !d.IsZero() {
		t.Errorf("Scan(nil) = %v, want zero", d)
	}
}
