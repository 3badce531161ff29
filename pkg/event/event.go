package event

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format of EventRecord.Date.
const DateLayout = "2006-01-02"

type Category string

const (
	WorldBoss        Category = "World Boss"
	InterServer      Category = "Inter Server"
	DynamicEvent     Category = "Dynamic Event"
	GuildWar         Category = "Guild War"
	CastleSiege      Category = "Castle Siege"
	TaxCollection    Category = "Tax Collection"
	ArchbossPeace    Category = "Archboss Peace"
	ArchbossConflict Category = "Archboss Conflict"
	RiftstoneBoss    Category = "Riftstone Boss"
	Archboss         Category = "Archboss"
)

type Team string

const (
	BoredApes    Team = "Bored Apes"
	BoredDragons Team = "Bored Dragons"
)

// EventRecord is a single entry of a day's schedule.
type EventRecord struct {
	Id        string
	Date      string // YYYY-MM-DD
	Time      string // hour slot, HH:00
	Timestamp int64  // seconds since epoch of Date at Time, UTC
	Category  Category
	// MinMembers is nil unless a minimum member count was given.
	MinMembers *int
	// Team is set only for categories that require one.
	Team *Team
}

// HourOf returns the hour named by an hour slot such as "15:00", "24:00" or "0:00".
func HourOf(slot string) (int, error) {
	hourPart, _, found := strings.Cut(slot, ":")
	if !found {
		return 0, fmt.Errorf("invalid time slot %q", slot)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("invalid time slot %q", slot)
	}
	return hour, nil
}

// TimestampOf returns the epoch seconds of date at the start of the hour named by slot, in UTC.
// Hour 24 is the midnight that ends date.
func TimestampOf(date string, slot string) (int64, error) {
	day, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	hour, err := HourOf(slot)
	if err != nil {
		return 0, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC).Unix(), nil
}

// StartTime is the UTC instant the record is scheduled at.
func (e EventRecord) StartTime() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}

func (e EventRecord) String() string {
	var b strings.Builder
	b.WriteString(string(e.Category))
	if e.Team != nil {
		b.WriteString(" · ")
		b.WriteString(string(*e.Team))
	}
	if e.MinMembers != nil {
		fmt.Fprintf(&b, " · %d+", *e.MinMembers)
	}
	return b.String()
}
