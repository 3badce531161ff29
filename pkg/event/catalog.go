package event

import (
	"fmt"
	"slices"

	"github.com/boredapes/ctaplanner/internal/config"
)

// Catalog holds the closed enumerations a record is built from. The categories offered
// by the form and the categories known to the display legend are kept separately
// because they do not agree; Mismatch reports the difference.
type Catalog struct {
	formCategories   []Category
	legendCategories []Category
	teamRequired     []Category
	teams            []Team
	timeSlots        []string
}

// Mismatch lists categories that appear in one set but not the other.
type Mismatch struct {
	FormOnly               []Category `json:"formOnly"`
	LegendOnly             []Category `json:"legendOnly"`
	TeamRequiredNotOffered []Category `json:"teamRequiredNotOffered"`
}

func (m Mismatch) Empty() bool {
	return len(m.FormOnly) == 0 && len(m.LegendOnly) == 0 && len(m.TeamRequiredNotOffered) == 0
}

func NewCatalog(cfg config.Catalog) (*Catalog, error) {
	if len(cfg.FormCategories) == 0 {
		return nil, fmt.Errorf("catalog: no form categories configured")
	}
	if len(cfg.TimeSlots) == 0 {
		return nil, fmt.Errorf("catalog: no time slots configured")
	}
	for _, slot := range cfg.TimeSlots {
		if _, err := HourOf(slot); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	if len(cfg.TeamRequired) > 0 && len(cfg.Teams) == 0 {
		return nil, fmt.Errorf("catalog: team-required categories configured without teams")
	}

	return &Catalog{
		formCategories:   toCategories(cfg.FormCategories),
		legendCategories: toCategories(cfg.LegendCategories),
		teamRequired:     toCategories(cfg.TeamRequired),
		teams:            toTeams(cfg.Teams),
		timeSlots:        slices.Clone(cfg.TimeSlots),
	}, nil
}

// DefaultCatalog is the catalog of the default configuration.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(config.Defaults().Catalog)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) FormCategories() []Category   { return slices.Clone(c.formCategories) }
func (c *Catalog) LegendCategories() []Category { return slices.Clone(c.legendCategories) }
func (c *Catalog) TeamRequired() []Category     { return slices.Clone(c.teamRequired) }
func (c *Catalog) Teams() []Team                { return slices.Clone(c.teams) }
func (c *Catalog) TimeSlots() []string          { return slices.Clone(c.timeSlots) }

// Offered reports whether the form offers the category.
func (c *Catalog) Offered(category Category) bool {
	return slices.Contains(c.formCategories, category)
}

// InLegend reports whether the display legend knows the category.
func (c *Catalog) InLegend(category Category) bool {
	return slices.Contains(c.legendCategories, category)
}

func (c *Catalog) RequiresTeam(category Category) bool {
	return slices.Contains(c.teamRequired, category)
}

func (c *Catalog) KnownTeam(team Team) bool {
	return slices.Contains(c.teams, team)
}

func (c *Catalog) ValidSlot(slot string) bool {
	return slices.Contains(c.timeSlots, slot)
}

func (c *Catalog) Mismatch() Mismatch {
	var m Mismatch
	for _, category := range c.formCategories {
		if !c.InLegend(category) {
			m.FormOnly = append(m.FormOnly, category)
		}
	}
	for _, category := range c.legendCategories {
		if !c.Offered(category) {
			m.LegendOnly = append(m.LegendOnly, category)
		}
	}
	for _, category := range c.teamRequired {
		if !c.Offered(category) {
			m.TeamRequiredNotOffered = append(m.TeamRequiredNotOffered, category)
		}
	}
	return m
}

func toCategories(values []string) []Category {
	categories := make([]Category, 0, len(values))
	for _, v := range values {
		categories = append(categories, Category(v))
	}
	return categories
}

func toTeams(values []string) []Team {
	teams := make([]Team, 0, len(values))
	for _, v := range values {
		teams = append(teams, Team(v))
	}
	return teams
}
