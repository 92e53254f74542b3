// Package clinic provides the clinic-wide scheduling policy.
package clinic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Settings holds the clinic's scheduling policy. Staff can adjust it at
// runtime; callers always read through the Store so edits take effect
// without a restart.
type Settings struct {
	Name string `json:"name"`
	// OpenTime and CloseTime bound the bookable day, "09:00" in 24-hour
	// format. CloseTime is the last bookable slot start, inclusive.
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	// SlotMinutes is the enumeration step between candidate slot starts.
	SlotMinutes int `json:"slot_minutes"`
	// DefaultDurationMinutes is assumed for requests that omit a duration.
	DefaultDurationMinutes int `json:"default_duration_minutes"`
	// DisabledWeekdays lists day names the clinic never books, e.g. ["Sunday"].
	DisabledWeekdays []string `json:"disabled_weekdays"`
	Timezone         string   `json:"timezone"`
}

// DefaultSettings returns the stock policy: Monday through Saturday,
// half-hour slots from 09:00 to 17:00.
func DefaultSettings() *Settings {
	return &Settings{
		Name:                   "Veterinary Clinic",
		OpenTime:               "09:00",
		CloseTime:              "17:00",
		SlotMinutes:            30,
		DefaultDurationMinutes: 30,
		DisabledWeekdays:       []string{"Sunday"},
		Timezone:               "America/New_York",
	}
}

// DayDisabled reports whether the clinic is closed on the given weekday.
func (s *Settings) DayDisabled(day time.Weekday) bool {
	for _, name := range s.DisabledWeekdays {
		if strings.EqualFold(strings.TrimSpace(name), day.String()) {
			return true
		}
	}
	return false
}

// Validate checks that the policy parses and describes a non-empty workday.
func (s *Settings) Validate() error {
	openAt, err := time.Parse("15:04", s.OpenTime)
	if err != nil {
		return fmt.Errorf("clinic: parse open time %q: %w", s.OpenTime, err)
	}
	closeAt, err := time.Parse("15:04", s.CloseTime)
	if err != nil {
		return fmt.Errorf("clinic: parse close time %q: %w", s.CloseTime, err)
	}
	if !openAt.Before(closeAt) {
		return fmt.Errorf("clinic: open time %q is not before close time %q", s.OpenTime, s.CloseTime)
	}
	if s.SlotMinutes <= 0 {
		return fmt.Errorf("clinic: slot minutes must be positive, got %d", s.SlotMinutes)
	}
	if s.DefaultDurationMinutes <= 0 {
		return fmt.Errorf("clinic: default duration must be positive, got %d", s.DefaultDurationMinutes)
	}
	for _, name := range s.DisabledWeekdays {
		if _, ok := weekdayByName(name); !ok {
			return fmt.Errorf("clinic: unknown weekday %q", name)
		}
	}
	return nil
}

func weekdayByName(name string) (time.Weekday, bool) {
	trimmed := strings.TrimSpace(name)
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.EqualFold(trimmed, day.String()) {
			return day, true
		}
	}
	return 0, false
}

const settingsKey = "clinic:settings"

// Store provides persistence for clinic settings.
type Store struct {
	redis    *redis.Client
	defaults *Settings
}

// NewStore creates a new clinic settings store. defaults is the policy
// served until staff save one; nil means DefaultSettings.
func NewStore(redisClient *redis.Client, defaults *Settings) *Store {
	return &Store{redis: redisClient, defaults: defaults}
}

// Get retrieves the settings, returning the store's defaults if none were
// saved yet.
func (s *Store) Get(ctx context.Context) (*Settings, error) {
	data, err := s.redis.Get(ctx, settingsKey).Bytes()
	if err == redis.Nil {
		if s.defaults != nil {
			fallback := *s.defaults
			return &fallback, nil
		}
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("clinic: get settings: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("clinic: unmarshal settings: %w", err)
	}
	return &settings, nil
}

// Set saves the settings after validating them.
func (s *Store) Set(ctx context.Context, settings *Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("clinic: marshal settings: %w", err)
	}
	if err := s.redis.Set(ctx, settingsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("clinic: set settings: %w", err)
	}
	return nil
}
