package domain

import "time"

// Segment is the value tier a customer has been placed in.
type Segment string

const (
	SegmentHigh   Segment = "High"
	SegmentLow    Segment = "Low"
	SegmentBarely Segment = "Barely"
)

var segmentLabels = map[Segment]string{
	SegmentHigh:   "High Value",
	SegmentLow:    "Low Value",
	SegmentBarely: "Barely Active",
}

// Segments returns every known segment in display order.
func Segments() []Segment {
	return []Segment{SegmentHigh, SegmentLow, SegmentBarely}
}

// Valid reports whether s is one of the known segments.
func (s Segment) Valid() bool {
	_, ok := segmentLabels[s]
	return ok
}

// Label returns the human readable name of the segment.
func (s Segment) Label() string {
	if l, ok := segmentLabels[s]; ok {
		return l
	}
	return string(s)
}

// DefaultProfileImage is stored for customers that never uploaded a picture.
const DefaultProfileImage = "customer_images/default.jpg"

// Customer is a single account holder.
type Customer struct {
	ID           int64      `json:"customer_id" db:"customer_id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PhoneNumber  string     `json:"phone_number" db:"phone_number"`
	Address      string     `json:"address,omitempty" db:"address"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	SignupDate   time.Time  `json:"signup_date" db:"signup_date"`
	Segment      Segment    `json:"segment" db:"segment"`
	ProfileImage string     `json:"profile_image,omitempty" db:"profile_image"`
}
