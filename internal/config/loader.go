package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/example/weekly-planner/internal/synth"
)

// Config captures environment driven configuration for the planner.
type Config struct {
	LogLevel  string `envconfig:"PLANNER_LOG_LEVEL" default:"info"`
	SQLiteDSN string `envconfig:"PLANNER_SQLITE_DSN" default:"file:planner.db?_pragma=busy_timeout(5000)"`

	Timezone  string `envconfig:"PLANNER_TIMEZONE" default:"UTC"`
	WeekStart string `envconfig:"PLANNER_WEEK_START" default:"sunday"`

	CalendarBaseURL string `envconfig:"PLANNER_CALENDAR_URL"`
	CalendarToken   string `envconfig:"PLANNER_CALENDAR_TOKEN"`
	// ICSFeeds is a comma-separated list of id=url pairs for read-only feeds.
	ICSFeeds string `envconfig:"PLANNER_ICS_FEEDS"`

	GeneratorBaseURL string `envconfig:"PLANNER_GENERATOR_URL" default:"https://api.openai.com"`
	GeneratorAPIKey  string `envconfig:"PLANNER_GENERATOR_API_KEY"`
	GeneratorModel   string `envconfig:"PLANNER_GENERATOR_MODEL"`

	SyncCron        string `envconfig:"PLANNER_SYNC_CRON" default:"*/15 * * * *"`
	SyncConcurrency int    `envconfig:"PLANNER_SYNC_CONCURRENCY" default:"4"`

	WorkStart        string `envconfig:"PLANNER_WORK_START" default:"09:00"`
	WorkEnd          string `envconfig:"PLANNER_WORK_END" default:"17:00"`
	ExcludedWeekdays string `envconfig:"PLANNER_EXCLUDED_WEEKDAYS"`
	MinGapMinutes    int    `envconfig:"PLANNER_MIN_GAP_MINUTES" default:"30"`

	// ConstraintsFile optionally points at a YAML profile overriding the
	// working-hour settings above.
	ConstraintsFile string `envconfig:"PLANNER_CONSTRAINTS_FILE"`

	// Derived fields populated by Load.
	Location     *time.Location    `ignored:"true"`
	WeekStartDay time.Weekday      `ignored:"true"`
	Constraints  synth.Constraints `ignored:"true"`
	Feeds        []Feed            `ignored:"true"`
}

// Feed identifies one ICS subscription.
type Feed struct {
	ID  string
	URL string
}

// constraintsProfile is the YAML shape of a constraints file.
type constraintsProfile struct {
	WorkStart        string   `yaml:"work_start"`
	WorkEnd          string   `yaml:"work_end"`
	ExcludedWeekdays []string `yaml:"excluded_weekdays"`
	MinGapMinutes    *int     `yaml:"min_gap_minutes"`
}

// Load parses configuration from the process environment, applies the
// optional constraints profile, and resolves derived fields.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}

	if cfg.ConstraintsFile != "" {
		if err := cfg.applyProfile(cfg.ConstraintsFile); err != nil {
			return Config{}, err
		}
	}

	invalid := make([]string, 0, 2)

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		invalid = append(invalid, "PLANNER_TIMEZONE")
	} else {
		cfg.Location = location
	}

	weekday, ok := parseWeekday(cfg.WeekStart)
	if !ok {
		invalid = append(invalid, "PLANNER_WEEK_START")
	}
	cfg.WeekStartDay = weekday

	workStart, err := synth.ParseTimeOfDay(cfg.WorkStart)
	if err != nil {
		invalid = append(invalid, "PLANNER_WORK_START")
	}
	workEnd, err := synth.ParseTimeOfDay(cfg.WorkEnd)
	if err != nil {
		invalid = append(invalid, "PLANNER_WORK_END")
	}

	excluded, ok := parseWeekdays(cfg.ExcludedWeekdays)
	if !ok {
		invalid = append(invalid, "PLANNER_EXCLUDED_WEEKDAYS")
	}

	if cfg.MinGapMinutes < 0 {
		invalid = append(invalid, "PLANNER_MIN_GAP_MINUTES")
	}
	if cfg.SyncConcurrency <= 0 {
		invalid = append(invalid, "PLANNER_SYNC_CONCURRENCY")
	}

	feeds, ok := parseFeeds(cfg.ICSFeeds)
	if !ok {
		invalid = append(invalid, "PLANNER_ICS_FEEDS")
	}
	cfg.Feeds = feeds

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("config: invalid values for: %s", strings.Join(invalid, ", "))
	}

	cfg.Constraints = synth.Constraints{
		WorkStart:        workStart,
		WorkEnd:          workEnd,
		ExcludedWeekdays: excluded,
		MinGapMinutes:    cfg.MinGapMinutes,
	}
	if err := cfg.Constraints.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyProfile(path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read constraints file: %w", err)
	}

	var profile constraintsProfile
	if err := yaml.Unmarshal(body, &profile); err != nil {
		return fmt.Errorf("config: parse constraints file: %w", err)
	}

	if profile.WorkStart != "" {
		c.WorkStart = profile.WorkStart
	}
	if profile.WorkEnd != "" {
		c.WorkEnd = profile.WorkEnd
	}
	if profile.ExcludedWeekdays != nil {
		c.ExcludedWeekdays = strings.Join(profile.ExcludedWeekdays, ",")
	}
	if profile.MinGapMinutes != nil {
		c.MinGapMinutes = *profile.MinGapMinutes
	}
	return nil
}

func parseWeekday(value string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sunday":
		return time.Sunday, true
	case "monday":
		return time.Monday, true
	case "tuesday":
		return time.Tuesday, true
	case "wednesday":
		return time.Wednesday, true
	case "thursday":
		return time.Thursday, true
	case "friday":
		return time.Friday, true
	case "saturday":
		return time.Saturday, true
	}
	return time.Sunday, false
}

func parseWeekdays(value string) ([]time.Weekday, bool) {
	if strings.TrimSpace(value) == "" {
		return nil, true
	}
	parts := strings.Split(value, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, part := range parts {
		day, ok := parseWeekday(part)
		if !ok {
			return nil, false
		}
		days = append(days, day)
	}
	return days, true
}

func parseFeeds(value string) ([]Feed, bool) {
	if strings.TrimSpace(value) == "" {
		return nil, true
	}
	parts := strings.Split(value, ",")
	feeds := make([]Feed, 0, len(parts))
	for _, part := range parts {
		id, url, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || id == "" || url == "" {
			return nil, false
		}
		feeds = append(feeds, Feed{ID: id, URL: url})
	}
	return feeds, true
}
