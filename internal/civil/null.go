package civil

import "database/sql/driver"

// NullDate is a Date that may be NULL in the database
type NullDate struct {
	Date  Date
	Valid bool
}

// Scan implements the sql.Scanner interface for NullDate
func (n *NullDate) Scan(value interface{}) error {
	if value == nil {
		n.Date, n.Valid = Date{}, false
		return nil
	}
	if err := n.Date.Scan(value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Value implements the driver.Valuer interface for NullDate
func (n NullDate) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Date.Value()
}

// Ptr returns the date as a pointer, nil when NULL
func (n NullDate) Ptr() *Date {
	if !n.Valid {
		return nil
	}
	d := n.Date
	return &d
}

// NullDateOf wraps an optional date for storage
func NullDateOf(d *Date) NullDate {
	if d == nil {
		return NullDate{}
	}
	return NullDate{Date: *d, Valid: true}
}

// NullTimeOfDay is a TimeOfDay that may be NULL in the database
type NullTimeOfDay struct {
	Time  TimeOfDay
	Valid bool
}

// Scan implements the sql.Scanner interface for NullTimeOfDay
func (n *NullTimeOfDay) Scan(value interface{}) error {
	if value == nil {
		n.Time, n.Valid = TimeOfDay{}, false
		return nil
	}
	if err := n.Time.Scan(value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Value implements the driver.Valuer interface for NullTimeOfDay
func (n NullTimeOfDay) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Time.Value()
}

// Ptr returns the time as a pointer, nil when NULL
func (n NullTimeOfDay) Ptr() *TimeOfDay {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

// NullTimeOfDayOf wraps an optional time for storage
func NullTimeOfDayOf(t *TimeOfDay) NullTimeOfDay {
	if t == nil {
		return NullTimeOfDay{}
	}
	return NullTimeOfDay{Time: *t, Valid: true}
}
