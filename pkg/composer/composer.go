package composer

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/boredapes/ctaplanner/internal/utils"
	"github.com/boredapes/ctaplanner/pkg/event"
	log "github.com/sirupsen/logrus"
)

type Kind string

const (
	MissingField  Kind = "MissingField"
	InvalidNumber Kind = "InvalidNumber"
	MissingTeam   Kind = "MissingTeam"
	InvalidField  Kind = "InvalidField"
)

var (
	ErrMissingField  = errors.New("missing field")
	ErrInvalidNumber = errors.New("invalid number")
	ErrMissingTeam   = errors.New("missing team")
	ErrInvalidField  = errors.New("invalid field")
)

// ValidationError reports the first rule a form failed.
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	switch e.Kind {
	case MissingField:
		return ErrMissingField
	case InvalidNumber:
		return ErrInvalidNumber
	case MissingTeam:
		return ErrMissingTeam
	default:
		return ErrInvalidField
	}
}

const (
	DefaultTime     = "15:00"
	DefaultCategory = event.WorldBoss
)

// Form is the raw input of the event form. MinMembers is kept as typed text.
type Form struct {
	Date       string `json:"date"`
	Time       string `json:"time"`
	Category   string `json:"category"`
	MinMembers string `json:"minMembers"`
	Team       string `json:"team"`
}

// RecordSink receives the records a composer produces.
type RecordSink interface {
	Add(record event.EventRecord) error
}

// Composer turns form input into validated event records. It keeps the form state of one
// session between entries.
type Composer struct {
	catalog *event.Catalog
	clock   utils.Clock
	ids     utils.IdGenerator

	mu   sync.Mutex
	form Form
}

func New(catalog *event.Catalog, clock utils.Clock, ids utils.IdGenerator) *Composer {
	c := &Composer{catalog: catalog, clock: clock, ids: ids}
	c.form = c.defaults()
	return c
}

// Form returns the current form state.
func (c *Composer) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Validate runs the rule table against input and builds the record it describes. The
// record has no id yet.
func (c *Composer) Validate(input Form) (event.EventRecord, error) {
	for _, r := range rules {
		if msg := r.check(c.catalog, input); msg != "" {
			return event.EventRecord{}, &ValidationError{Kind: r.kind, Message: msg}
		}
	}

	timestamp, err := event.TimestampOf(input.Date, input.Time)
	if err != nil {
		// rule 4 has already checked date and time
		return event.EventRecord{}, &ValidationError{Kind: InvalidField, Message: err.Error()}
	}

	record := event.EventRecord{
		Date:      input.Date,
		Time:      input.Time,
		Timestamp: timestamp,
		Category:  event.Category(input.Category),
	}
	// members_required is an int4 column; larger counts are kept as absent
	if input.MinMembers != "" {
		if n, err := strconv.Atoi(input.MinMembers); err == nil && n >= 0 && n <= math.MaxInt32 {
			record.MinMembers = &n
		}
	}
	if c.catalog.RequiresTeam(record.Category) {
		team := event.Team(input.Team)
		record.Team = &team
	}
	return record, nil
}

// Compose validates input, hands the record to sink and resets the form. Time and
// category carry over to the next entry. Nothing is emitted and the form is left as it
// was when validation or the sink fails.
func (c *Composer) Compose(input Form, sink RecordSink) (event.EventRecord, error) {
	record, err := c.Validate(input)
	if err != nil {
		log.Debugf("event form rejected: %v", err)
		return event.EventRecord{}, err
	}
	record.Id = c.ids.NewId()

	if err := sink.Add(record); err != nil {
		return event.EventRecord{}, err
	}

	c.mu.Lock()
	next := c.defaults()
	next.Time = input.Time
	next.Category = input.Category
	c.form = next
	c.mu.Unlock()

	log.Debugf("event %s composed: %s at %s %s", record.Id, record, record.Date, record.Time)
	return record, nil
}

// Reset restores the form defaults.
func (c *Composer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = c.defaults()
}

func (c *Composer) defaults() Form {
	return Form{
		Date:     c.clock.Now().UTC().Format(event.DateLayout),
		Time:     DefaultTime,
		Category: string(DefaultCategory),
	}
}

type rule struct {
	kind  Kind
	check func(catalog *event.Catalog, f Form) string
}

var digits = regexp.MustCompile(`^\d*$`)

// rules are evaluated in order; the first failing rule wins.
var rules = []rule{
	{kind: MissingField, check: requireFields},
	{kind: InvalidNumber, check: requireDigits},
	{kind: MissingTeam, check: requireTeam},
	{kind: InvalidField, check: requireKnownValues},
}

func requireFields(_ *event.Catalog, f Form) string {
	if blank(f.Date) || blank(f.Time) || blank(f.Category) {
		return "Please fill in all required fields"
	}
	return ""
}

func requireDigits(_ *event.Catalog, f Form) string {
	if f.MinMembers != "" && !digits.MatchString(f.MinMembers) {
		return "Member count must be a valid number"
	}
	return ""
}

func requireTeam(catalog *event.Catalog, f Form) string {
	if catalog.RequiresTeam(event.Category(f.Category)) && blank(f.Team) {
		return "Please select a guild"
	}
	return ""
}

func requireKnownValues(catalog *event.Catalog, f Form) string {
	if _, err := time.ParseInLocation(event.DateLayout, f.Date, time.UTC); err != nil {
		return fmt.Sprintf("Invalid date %q", f.Date)
	}
	if !catalog.ValidSlot(f.Time) {
		return fmt.Sprintf("Unknown time slot %q", f.Time)
	}
	category := event.Category(f.Category)
	if !catalog.Offered(category) {
		return fmt.Sprintf("Unknown event type %q", f.Category)
	}
	if catalog.RequiresTeam(category) && !catalog.KnownTeam(event.Team(f.Team)) {
		return fmt.Sprintf("Unknown guild %q", f.Team)
	}
	return ""
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
