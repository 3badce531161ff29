package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Port      int       `koanf:"port"`
	Database  Database  `koanf:"db"`
	Store     Store     `koanf:"store"`
	Auth      Auth      `koanf:"auth"`
	Catalog   Catalog   `koanf:"catalog"`
	Google    Google    `koanf:"google"`
	Workspace Workspace `koanf:"workspace"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

const (
	StorePostgres  = "postgres"
	StorePostgREST = "postgrest"
)

type Store struct {
	Kind      string    `koanf:"kind"`
	PostgREST PostgREST `koanf:"postgrest"`
}

// PostgREST points at a Supabase-style REST endpoint, e.g. https://<project>.supabase.co
type PostgREST struct {
	Url            string        `koanf:"url"`
	ApiKey         string        `koanf:"apikey"`
	SchedulesTable string        `koanf:"schedulestable"`
	EventsTable    string        `koanf:"eventstable"`
	Timeout        time.Duration `koanf:"timeout"`
}

const (
	AuthLocal = "local"
	AuthOAuth = "oauth"
)

type Auth struct {
	Provider   string        `koanf:"provider"`
	SessionTtl time.Duration `koanf:"sessionttl"`
	OAuth      OAuth         `koanf:"oauth"`
}

type OAuth struct {
	TokenUrl     string   `koanf:"tokenurl"`
	ClientId     string   `koanf:"clientid"`
	ClientSecret string   `koanf:"clientsecret"`
	Scopes       []string `koanf:"scopes"`
}

// Catalog keeps the category sets offered by the form and known to the display legend.
// They are not reconciled here; see event.Catalog.Mismatch.
type Catalog struct {
	FormCategories   []string `koanf:"formcategories"`
	LegendCategories []string `koanf:"legendcategories"`
	TeamRequired     []string `koanf:"teamrequired"`
	Teams            []string `koanf:"teams"`
	TimeSlots        []string `koanf:"timeslots"`
}

type Google struct {
	CalendarId      string `koanf:"calendarid"`
	CredentialsFile string `koanf:"credentialsfile"`
}

type Workspace struct {
	ReapInterval time.Duration `koanf:"reapinterval"`
}

func Defaults() Application {
	return Application{
		Port: 8181,
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "cta",
			Pass:   "",
			Name:   "cta",
			Schema: "cta",
		},
		Store: Store{
			Kind: StorePostgres,
			PostgREST: PostgREST{
				SchedulesTable: "schedules",
				EventsTable:    "events",
				Timeout:        30 * time.Second,
			},
		},
		Auth: Auth{
			Provider:   AuthLocal,
			SessionTtl: 12 * time.Hour,
		},
		Catalog: Catalog{
			FormCategories: []string{
				"World Boss", "Inter Server", "Dynamic Event", "Guild War",
				"Castle Siege", "Tax Collection", "Archboss Peace", "Archboss Conflict",
			},
			LegendCategories: []string{
				"World Boss", "Dynamic Event", "Guild War", "Castle Siege",
				"Tax Collection", "Riftstone Boss", "Archboss",
			},
			TeamRequired: []string{"Guild War", "Riftstone Boss"},
			Teams:        []string{"Bored Apes", "Bored Dragons"},
			TimeSlots: []string{
				"12:00", "13:00", "14:00", "15:00", "16:00", "17:00", "18:00",
				"19:00", "20:00", "21:00", "22:00", "23:00", "24:00",
			},
		},
		Workspace: Workspace{
			ReapInterval: time.Minute,
		},
	}
}

// listKeys are settings given as comma separated values in the environment, e.g. CTA_AUTH_OAUTH_SCOPES.
var listKeys = map[string]bool{
	"auth.oauth.scopes":        true,
	"catalog.formcategories":   true,
	"catalog.legendcategories": true,
	"catalog.teamrequired":     true,
	"catalog.teams":            true,
	"catalog.timeslots":        true,
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "CTA_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "CTA_")), "_", ".")
			if listKeys[k] {
				return k, strings.Split(v, ",")
			}
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
