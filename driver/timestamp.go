package driver

import (
	"fmt"
	"time"
)

// Timestamp is a FAT calendar time with two-second resolution.
type Timestamp struct {
	Year   uint16
	Month  uint8
	Day    uint8
	Hour   uint8
	Minute uint8
	Second uint8
}

// TimestampOf converts t to a Timestamp in t's location.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{
		Year:   uint16(t.Year()),
		Month:  uint8(t.Month()),
		Day:    uint8(t.Day()),
		Hour:   uint8(t.Hour()),
		Minute: uint8(t.Minute()),
		Second: uint8(t.Second()),
	}
}

// Validate reports InvalidParameter for fields a FAT directory entry cannot hold.
func (ts Timestamp) Validate() error {
	switch {
	case ts.Year < 1980 || ts.Year > 2107:
		return fmt.Errorf("year %d: %w", ts.Year, InvalidParameter)
	case ts.Month < 1 || ts.Month > 12:
		return fmt.Errorf("month %d: %w", ts.Month, InvalidParameter)
	case ts.Day < 1 || int(ts.Day) > daysIn(ts.Year, ts.Month):
		return fmt.Errorf("day %d: %w", ts.Day, InvalidParameter)
	case ts.Hour > 23:
		return fmt.Errorf("hour %d: %w", ts.Hour, InvalidParameter)
	case ts.Minute > 59:
		return fmt.Errorf("minute %d: %w", ts.Minute, InvalidParameter)
	case ts.Second > 59:
		return fmt.Errorf("second %d: %w", ts.Second, InvalidParameter)
	}
	return nil
}

func daysIn(year uint16, month uint8) int {
	return time.Date(int(year), time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date returns the FAT date word: bits 15-9 year since 1980, 8-5 month, 4-0 day.
func (ts Timestamp) Date() uint16 {
	return (ts.Year-1980)<<9 | uint16(ts.Month)<<5 | uint16(ts.Day)
}

// Time returns the FAT time word: bits 15-11 hour, 10-5 minute, 4-0 second/2.
func (ts Timestamp) Time() uint16 {
	return uint16(ts.Hour)<<11 | uint16(ts.Minute)<<5 | uint16(ts.Second/2)
}

// DecodeTimestamp is the inverse of Date and Time.
func DecodeTimestamp(date, tm uint16) Timestamp {
	return Timestamp{
		Year:   date>>9 + 1980,
		Month:  uint8(date >> 5 & 0x0f),
		Day:    uint8(date & 0x1f),
		Hour:   uint8(tm >> 11),
		Minute: uint8(tm >> 5 & 0x3f),
		Second: uint8(tm&0x1f) * 2,
	}
}

// AsTime converts ts to a time.Time in loc.
func (ts Timestamp) AsTime(loc *time.Location) time.Time {
	return time.Date(int(ts.Year), time.Month(ts.Month), int(ts.Day),
		int(ts.Hour), int(ts.Minute), int(ts.Second), 0, loc)
}

func (ts Timestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second)
}
