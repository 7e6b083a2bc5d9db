package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrLogNotFound      = errors.New("daily log not found")
	ErrLogInvalidUserID = errors.New("invalid user id")
	ErrLogInvalidDate   = errors.New("invalid log date (must be YYYY-MM-DD)")
)

// DateLayout is the calendar-date key format used for grouping and
// sorting logs. It is not globally unique across users.
const DateLayout = "2006-01-02"

// Rating bounds. Stress uses a narrower 1-5 scale and pain starts at 0
// ("no pain" is a valid report).
const (
	RatingMin = 1
	RatingMax = 10
	StressMin = 1
	StressMax = 5
	PainMin   = 0
	PainMax   = 10
)

// Mid-scale fallbacks applied when a stored record is missing a rating.
const (
	DefaultRating = 5
	DefaultStress = 3
	DefaultPain   = 0
)

type DailyLog struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
	Date   string `json:"date" db:"date"`

	Mood          string `json:"mood" db:"mood"`
	MorningMood   int    `json:"morning_mood" db:"morning_mood"`
	GeneralMood   int    `json:"general_mood" db:"general_mood"`
	MorningEnergy int    `json:"morning_energy" db:"morning_energy"`
	GeneralEnergy int    `json:"general_energy" db:"general_energy"`
	StressLevel   int    `json:"stress_level" db:"stress_level"`
	DigestiveFlow int    `json:"digestive_flow" db:"digestive_flow"`
	PainLevel     int    `json:"pain_level" db:"pain_level"`

	TimeToBed  time.Time `json:"time_to_bed" db:"time_to_bed"`
	TimeWokeUp time.Time `json:"time_woke_up" db:"time_woke_up"`

	Activities []string `json:"activities" db:"-"`

	FoodBreakfast  string `json:"food_breakfast" db:"food_breakfast"`
	FoodSnack1     string `json:"food_snack1" db:"food_snack1"`
	FoodLunch      string `json:"food_lunch" db:"food_lunch"`
	FoodSnack2     string `json:"food_snack2" db:"food_snack2"`
	FoodDinner     string `json:"food_dinner" db:"food_dinner"`
	FoodDrinks     string `json:"food_drinks" db:"food_drinks"`
	Medicines      string `json:"medicines" db:"medicines"`
	DigestiveNotes string `json:"digestive_notes" db:"digestive_notes"`
	PainNotes      string `json:"pain_notes" db:"pain_notes"`
	Notes          string `json:"notes" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LogRatings carries the scalar self-reports for one day. Values
// outside their documented range are clamped, never rejected.
type LogRatings struct {
	MorningMood   int
	GeneralMood   int
	MorningEnergy int
	GeneralEnergy int
	StressLevel   int
	DigestiveFlow int
	PainLevel     int
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NewDailyLog builds a log for one user and calendar date with all
// ratings at their mid-scale defaults. The ID is assigned at persist
// time if still empty.
func NewDailyLog(userID string, date time.Time) (*DailyLog, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrLogInvalidUserID
	}
	if date.IsZero() {
		return nil, ErrLogInvalidDate
	}

	now := time.Now().UTC()

	return &DailyLog{
		UserID:        userID,
		Date:          date.UTC().Format(DateLayout),
		MorningMood:   DefaultRating,
		GeneralMood:   DefaultRating,
		MorningEnergy: DefaultRating,
		GeneralEnergy: DefaultRating,
		StressLevel:   DefaultStress,
		DigestiveFlow: DefaultRating,
		PainLevel:     DefaultPain,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// SetRatings clamps every value to its bound and applies it.
func (l *DailyLog) SetRatings(r LogRatings) {
	l.MorningMood = clamp(r.MorningMood, RatingMin, RatingMax)
	l.GeneralMood = clamp(r.GeneralMood, RatingMin, RatingMax)
	l.MorningEnergy = clamp(r.MorningEnergy, RatingMin, RatingMax)
	l.GeneralEnergy = clamp(r.GeneralEnergy, RatingMin, RatingMax)
	l.StressLevel = clamp(r.StressLevel, StressMin, StressMax)
	l.DigestiveFlow = clamp(r.DigestiveFlow, RatingMin, RatingMax)
	l.PainLevel = clamp(r.PainLevel, PainMin, PainMax)
}

// FillDefaults replaces out-of-range ratings with their mid-scale
// fallback so a partial or corrupt record never blocks rendering.
// Repositories call this on every read.
func (l *DailyLog) FillDefaults() {
	if l.MorningMood < RatingMin || l.MorningMood > RatingMax {
		l.MorningMood = DefaultRating
	}
	if l.GeneralMood < RatingMin || l.GeneralMood > RatingMax {
		l.GeneralMood = DefaultRating
	}
	if l.MorningEnergy < RatingMin || l.MorningEnergy > RatingMax {
		l.MorningEnergy = DefaultRating
	}
	if l.GeneralEnergy < RatingMin || l.GeneralEnergy > RatingMax {
		l.GeneralEnergy = DefaultRating
	}
	if l.StressLevel < StressMin || l.StressLevel > StressMax {
		l.StressLevel = DefaultStress
	}
	if l.DigestiveFlow < RatingMin || l.DigestiveFlow > RatingMax {
		l.DigestiveFlow = DefaultRating
	}
	if l.PainLevel < PainMin || l.PainLevel > PainMax {
		l.PainLevel = DefaultPain
	}
}

// SleepHours derives the slept duration from the bed/wake timestamps.
// A wake time on or before bed time is treated as crossing midnight.
func (l *DailyLog) SleepHours() float64 {
	if l.TimeToBed.IsZero() || l.TimeWokeUp.IsZero() {
		return 0
	}

	wake := l.TimeWokeUp
	if !wake.After(l.TimeToBed) {
		wake = wake.AddDate(0, 0, 1)
	}

	hours := wake.Sub(l.TimeToBed).Hours()
	if hours <= 0 || hours >= 24 {
		return 0
	}
	return hours
}

// ParseDate validates a YYYY-MM-DD calendar-date key.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrLogInvalidDate
	}
	return t, nil
}
