package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// NotificationSettings mirrors the client's reminder toggles.
type NotificationSettings struct {
	DailyReminder bool `json:"daily_reminder"`
	WeeklyReport  bool `json:"weekly_report"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{DailyReminder: true, WeeklyReport: true}
}

// TrackingSettings gate which form sections the client renders.
// They are display-only and never filter what the batch job reads.
type TrackingSettings struct {
	TrackMood      bool `json:"track_mood"`
	TrackEnergy    bool `json:"track_energy"`
	TrackSleep     bool `json:"track_sleep"`
	TrackStress    bool `json:"track_stress"`
	TrackSymptoms  bool `json:"track_symptoms"`
	TrackFood      bool `json:"track_food"`
	TrackMedicines bool `json:"track_medicines"`
	TrackDigestion bool `json:"track_digestion"`
	TrackMoonCycle bool `json:"track_moon_cycle"`
	TrackPain      bool `json:"track_pain"`
	TrackNotes     bool `json:"track_notes"`
}

func DefaultTrackingSettings() TrackingSettings {
	return TrackingSettings{
		TrackMood:      true,
		TrackEnergy:    true,
		TrackSleep:     true,
		TrackStress:    true,
		TrackSymptoms:  true,
		TrackFood:      true,
		TrackMedicines: true,
		TrackDigestion: true,
		TrackMoonCycle: true,
		TrackPain:      true,
		TrackNotes:     true,
	}
}

type UserProfile struct {
	UserID string `json:"user_id" db:"user_id"`
	Name   string `json:"name" db:"name"`
	Email  string `json:"email" db:"email"`

	LastName         *string  `json:"last_name,omitempty" db:"last_name"`
	Age              *int     `json:"age,omitempty" db:"age"`
	Gender           *string  `json:"gender,omitempty" db:"gender"`
	Weight           *float64 `json:"weight,omitempty" db:"weight"`
	Height           *float64 `json:"height,omitempty" db:"height"`
	MedicalCondition *string  `json:"medical_condition,omitempty" db:"medical_condition"`
	Medicines        *string  `json:"medicines,omitempty" db:"medicines"`

	NotificationSettings NotificationSettings `json:"notification_settings" db:"-"`
	TrackingSettings     TrackingSettings     `json:"tracking_settings" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewUserProfile(userID, name, email string) *UserProfile {
	now := time.Now().UTC()
	return &UserProfile{
		UserID:               userID,
		Name:                 strings.TrimSpace(name),
		Email:                strings.ToLower(strings.TrimSpace(email)),
		NotificationSettings: DefaultNotificationSettings(),
		TrackingSettings:     DefaultTrackingSettings(),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Optional is a tri-state JSON field: absent (leave as-is), explicit
// null (clear the stored value), or a value (set it). It exists so a
// partial profile update can never null out fields the client simply
// did not send.
type Optional[T any] struct {
	Defined bool
	Value   *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Defined = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// ProfilePatch is the explicit partial-update type for profiles.
type ProfilePatch struct {
	Name             Optional[string]               `json:"name"`
	LastName         Optional[string]               `json:"last_name"`
	Age              Optional[int]                  `json:"age"`
	Gender           Optional[string]               `json:"gender"`
	Weight           Optional[float64]              `json:"weight"`
	Height           Optional[float64]              `json:"height"`
	MedicalCondition Optional[string]               `json:"medical_condition"`
	Medicines        Optional[string]               `json:"medicines"`
	Notifications    Optional[NotificationSettings] `json:"notification_settings"`
	Tracking         Optional[TrackingSettings]     `json:"tracking_settings"`
}

// Apply merges the patch into the profile. Undefined fields are left
// untouched; defined-null fields are cleared, except for required
// fields where a null is rejected.
func (p *UserProfile) Apply(patch ProfilePatch) error {
	if patch.Name.Defined {
		if patch.Name.Value == nil || strings.TrimSpace(*patch.Name.Value) == "" {
			return ErrNameEmpty
		}
		p.Name = strings.TrimSpace(*patch.Name.Value)
	}

	if patch.LastName.Defined {
		p.LastName = patch.LastName.Value
	}
	if patch.Age.Defined {
		p.Age = patch.Age.Value
	}
	if patch.Gender.Defined {
		p.Gender = patch.Gender.Value
	}
	if patch.Weight.Defined {
		p.Weight = patch.Weight.Value
	}
	if patch.Height.Defined {
		p.Height = patch.Height.Value
	}
	if patch.MedicalCondition.Defined {
		p.MedicalCondition = patch.MedicalCondition.Value
	}
	if patch.Medicines.Defined {
		p.Medicines = patch.Medicines.Value
	}

	if patch.Notifications.Defined {
		if patch.Notifications.Value == nil {
			p.NotificationSettings = DefaultNotificationSettings()
		} else {
			p.NotificationSettings = *patch.Notifications.Value
		}
	}
	if patch.Tracking.Defined {
		if patch.Tracking.Value == nil {
			p.TrackingSettings = DefaultTrackingSettings()
		} else {
			p.TrackingSettings = *patch.Tracking.Value
		}
	}

	p.UpdatedAt = time.Now().UTC()
	return nil
}
