package member

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	default:
		return false
	}
}

type BloodGroup string

const (
	BloodAPos        BloodGroup = "A+"
	BloodANeg        BloodGroup = "A-"
	BloodBPos        BloodGroup = "B+"
	BloodBNeg        BloodGroup = "B-"
	BloodABPos       BloodGroup = "AB+"
	BloodABNeg       BloodGroup = "AB-"
	BloodOPos        BloodGroup = "O+"
	BloodONeg        BloodGroup = "O-"
	BloodUnspecified BloodGroup = "unspecified"
)

func (b BloodGroup) Valid() bool {
	switch b {
	case BloodAPos, BloodANeg, BloodBPos, BloodBNeg,
		BloodABPos, BloodABNeg, BloodOPos, BloodONeg, BloodUnspecified:
		return true
	default:
		return false
	}
}

type FitnessLevel string

const (
	FitnessBeginner     FitnessLevel = "beginner"
	FitnessIntermediate FitnessLevel = "intermediate"
	FitnessAdvanced     FitnessLevel = "advanced"
)

func (f FitnessLevel) Valid() bool {
	switch f {
	case FitnessBeginner, FitnessIntermediate, FitnessAdvanced:
		return true
	default:
		return false
	}
}

type Member struct {
	ID         int64  `db:"id" json:"id"`
	MemberCode string `db:"-" json:"member_code"`

	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	OtherNames *string    `db:"other_names" json:"other_names,omitempty"`
	Email      *string    `db:"email" json:"email,omitempty"`
	Phone      string     `db:"phone" json:"phone"`
	IDPassport *string    `db:"id_passport" json:"id_passport,omitempty"`
	DOB        *time.Time `db:"dob" json:"dob,omitempty"`
	BloodGroup BloodGroup `db:"blood_group" json:"blood_group"`

	EmergencyContactName  string  `db:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactPhone string  `db:"emergency_contact_phone" json:"emergency_contact_phone"`
	MedicalConditions     *string `db:"medical_conditions" json:"medical_conditions,omitempty"`

	Status       Status     `db:"status" json:"status"`
	RegisteredAt time.Time  `db:"registered_at" json:"registered_at"`
	TotalVisits  int64      `db:"total_visits" json:"total_visits"`
	LastVisitAt  *time.Time `db:"last_visit_at" json:"last_visit_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Code derives the human-facing member code from the numeric id.
func (m *Member) Code() string {
	return fmt.Sprintf("PTF%06d", m.ID)
}

type PhysicalProfile struct {
	ID           int64        `db:"id" json:"id"`
	MemberID     int64        `db:"member_id" json:"member_id"`
	HeightCM     float64      `db:"height_cm" json:"height_cm"`
	WeightKG     float64      `db:"weight_kg" json:"weight_kg"`
	BMI          float64      `db:"bmi" json:"bmi"`
	BodyFatPct   *float64     `db:"body_fat_pct" json:"body_fat_pct,omitempty"`
	FitnessLevel FitnessLevel `db:"fitness_level" json:"fitness_level"`
	Goals        *string      `db:"goals" json:"goals,omitempty"`
	TestResults  *string      `db:"test_results" json:"test_results,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// ComputeBMI derives BMI from height in centimetres and weight in kilograms.
func ComputeBMI(heightCM, weightKG float64) float64 {
	if heightCM <= 0 {
		return 0
	}
	m := heightCM / 100
	return weightKG / (m * m)
}

// StatusSummary accompanies member listings on the dashboard.
type StatusSummary struct {
	Total     int64 `db:"total" json:"total"`
	Active    int64 `db:"active" json:"active"`
	Inactive  int64 `db:"inactive" json:"inactive"`
	Suspended int64 `db:"suspended" json:"suspended"`
}
