package models

import (
	"errors"
	"strings"
	"time"

	"github.com/yoockh/mockmate/internal/geo"
)

type UserRole string

const (
	RoleInterviewer UserRole = "interviewer"
	RoleInterviewee UserRole = "interviewee"
)

func (r UserRole) Valid() bool {
	return r == RoleInterviewer || r == RoleInterviewee
}

type CurrentStatus string

const (
	StatusStudent      CurrentStatus = "student"
	StatusProfessional CurrentStatus = "professional"
)

// DefaultAvailabilityRadiusKm is applied when an interviewer does not set one.
const DefaultAvailabilityRadiusKm = 5.0

// Point is a GeoJSON point, coordinates are [lng, lat].
type Point struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

func NewPoint(lat, lng float64) Point {
	return Point{Type: "Point", Coordinates: []float64{lng, lat}}
}

func (p Point) Lng() float64 {
	if len(p.Coordinates) < 1 {
		return 0
	}
	return p.Coordinates[0]
}

func (p Point) Lat() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

func (p Point) Validate() error {
	if p.Type != "Point" || len(p.Coordinates) != 2 {
		return errors.New("location must be a point with lat and lng")
	}
	if !geo.ValidLat(p.Lat()) {
		return errors.New("location.lat must be between -90 and 90")
	}
	if !geo.ValidLng(p.Lng()) {
		return errors.New("location.lng must be between -180 and 180")
	}
	return nil
}

type InterviewerProfile struct {
	YearsOfExperience    int      `bson:"years_of_experience" json:"years_of_experience"`
	Domains              []string `bson:"domains" json:"domains"`
	AvailabilityRadiusKm float64  `bson:"availability_radius_km" json:"availability_radius_km"` // display only
}

type IntervieweeProfile struct {
	CurrentStatus CurrentStatus `bson:"current_status" json:"current_status"`
	YearOfStudy   int           `bson:"year_of_study,omitempty" json:"year_of_study,omitempty"`
	Domain        string        `bson:"domain,omitempty" json:"domain,omitempty"`
}

// User is a directory record. Role selects which variant is populated:
// Interviewer for RoleInterviewer, Interviewee for RoleInterviewee.
type User struct {
	ID       string   `bson:"_id" json:"id"`
	Role     UserRole `bson:"role" json:"role"`
	FullName string   `bson:"full_name" json:"full_name"`
	Email    string   `bson:"email" json:"email"`
	Location Point    `bson:"location" json:"location"`

	Interviewer *InterviewerProfile `bson:"interviewer,omitempty" json:"interviewer,omitempty"`
	Interviewee *IntervieweeProfile `bson:"interviewee,omitempty" json:"interviewee,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func NewInterviewer(id, fullName, email string, loc Point, p InterviewerProfile) *User {
	return &User{ID: id, Role: RoleInterviewer, FullName: fullName, Email: email, Location: loc, Interviewer: &p}
}

func NewInterviewee(id, fullName, email string, loc Point, p IntervieweeProfile) *User {
	return &User{ID: id, Role: RoleInterviewee, FullName: fullName, Email: email, Location: loc, Interviewee: &p}
}

// Normalize trims strings, de-duplicates domains and applies defaults. It
// does not fix role/variant mismatches; Validate reports those.
func (u *User) Normalize() {
	u.FullName = strings.TrimSpace(u.FullName)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	if p := u.Interviewer; p != nil {
		seen := make(map[string]struct{}, len(p.Domains))
		out := make([]string, 0, len(p.Domains))
		for _, d := range p.Domains {
			d = strings.TrimSpace(d)
			if d == "" {
				continue
			}
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			out = append(out, d)
		}
		p.Domains = out
		if p.AvailabilityRadiusKm == 0 {
			p.AvailabilityRadiusKm = DefaultAvailabilityRadiusKm
		}
	}
	if p := u.Interviewee; p != nil {
		p.Domain = strings.TrimSpace(p.Domain)
	}
}

func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("id is required")
	}
	if u.FullName == "" {
		return errors.New("full_name is required")
	}
	if err := u.Location.Validate(); err != nil {
		return err
	}

	switch u.Role {
	case RoleInterviewer:
		if u.Interviewer == nil || u.Interviewee != nil {
			return errors.New("interviewer must carry interviewer fields only")
		}
		p := u.Interviewer
		if p.YearsOfExperience < 0 {
			return errors.New("years_of_experience must not be negative")
		}
		if len(p.Domains) == 0 {
			return errors.New("at least one domain is required")
		}
		if p.AvailabilityRadiusKm <= 0 {
			return errors.New("availability_radius_km must be positive")
		}
	case RoleInterviewee:
		if u.Interviewee == nil || u.Interviewer != nil {
			return errors.New("interviewee must carry interviewee fields only")
		}
		p := u.Interviewee
		switch p.CurrentStatus {
		case StatusStudent:
			if p.YearOfStudy <= 0 {
				return errors.New("year_of_study is required for students")
			}
			if p.Domain != "" {
				return errors.New("domain applies to professionals only")
			}
		case StatusProfessional:
			if p.Domain == "" {
				return errors.New("domain is required for professionals")
			}
			if p.YearOfStudy != 0 {
				return errors.New("year_of_study applies to students only")
			}
		default:
			return errors.New("current_status must be student or professional")
		}
	default:
		return errors.New("role must be interviewer or interviewee")
	}
	return nil
}

// Covers reports whether an interviewer advertises subject.
func (u *User) Covers(subject string) bool {
	if u.Role != RoleInterviewer || u.Interviewer == nil {
		return false
	}
	for _, d := range u.Interviewer.Domains {
		if d == subject {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller as resolved by the identity gate.
type Actor struct {
	UserID string
	Role   UserRole
}
