package models

// ServiceDefinition is one bookable offering as declared in the catalog file.
// It is built once at startup and never mutated afterwards.
type ServiceDefinition struct {
	Name          string                   `json:"name"`
	Price         *float64                 `json:"price,omitempty"`
	Duration      *int                     `json:"duration,omitempty"` // minutes
	Description   string                   `json:"description,omitempty"`
	Professionals []ProfessionalDefinition `json:"professionals"`
}

// ProfessionalDefinition is a person who delivers a service, with the weekly
// windows in which they accept appointments.
type ProfessionalDefinition struct {
	Name         string               `json:"name"`
	Availability []AvailabilityWindow `json:"availability"`
}

// AvailabilityWindow is an open interval list on one weekday. Day keeps the
// label exactly as written in the catalog (any supported language).
type AvailabilityWindow struct {
	Day   string      `json:"day"`
	Slots []TimeRange `json:"slots"`
}

// TimeRange is a pair of 24-hour "HH:MM" clock times.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// String renders the range as "HH:MM-HH:MM".
func (r TimeRange) String() string {
	return r.Start + "-" + r.End
}

// CandidateSlot is a duration-sized piece of an availability window that the
// calendar reported free when it was generated. Never stored.
type CandidateSlot struct {
	Professional string `json:"professional"`
	Day          string `json:"day"`
	Slot         string `json:"slot"`
	Date         string `json:"date"` // next concrete occurrence, YYYY-MM-DD
}
