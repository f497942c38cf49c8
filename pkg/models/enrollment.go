package models

import "fmt"

// EnrollmentStatus is the terminal status of an enrollment attempt
type EnrollmentStatus string

const (
	// EnrollmentAdded means the user was joined to a hub group
	EnrollmentAdded EnrollmentStatus = "ADDED"
	// EnrollmentSkippedNoLocation means the user record has no location text
	EnrollmentSkippedNoLocation EnrollmentStatus = "SKIPPED_NO_LOCATION"
	// EnrollmentSkippedNoGroups means the tenant has no leaf hub groups
	EnrollmentSkippedNoGroups EnrollmentStatus = "SKIPPED_NO_GROUPS"
	// EnrollmentSkippedEmptyLocation means the location normalized to nothing
	EnrollmentSkippedEmptyLocation EnrollmentStatus = "SKIPPED_EMPTY_LOCATION"
	// EnrollmentSkippedLowConfidence means the best score was below the threshold
	EnrollmentSkippedLowConfidence EnrollmentStatus = "SKIPPED_LOW_CONFIDENCE"
	// EnrollmentSkippedAlreadyMember means the user already belongs to the matched group
	EnrollmentSkippedAlreadyMember EnrollmentStatus = "SKIPPED_ALREADY_MEMBER"
	// EnrollmentError means a membership store operation failed
	EnrollmentError EnrollmentStatus = "ERROR"
)

// EnrollmentOutcome is the result of a single enrollment attempt. Expected
// outcomes are values, not errors; every attempt produces exactly one.
type EnrollmentOutcome struct {
	Status    EnrollmentStatus `json:"status"`
	TenantID  string           `json:"tenant_id"`
	UserID    string           `json:"user_id"`
	Location  string           `json:"location,omitempty"`
	Candidate string           `json:"candidate,omitempty"`
	GroupID   string           `json:"group_id,omitempty"`
	GroupName string           `json:"group_name,omitempty"`
	Score     float64          `json:"score,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// Joined reports whether the attempt resulted in a new membership
func (o *EnrollmentOutcome) Joined() bool {
	return o.Status == EnrollmentAdded
}

// Describe renders a single audit line for the outcome
func (o *EnrollmentOutcome) Describe() string {
	switch o.Status {
	case EnrollmentAdded:
		return fmt.Sprintf("ADDED: user %s joined group %q (%s) matching %q at %.2f", o.UserID, o.GroupName, o.GroupID, o.Candidate, o.Score)
	case EnrollmentSkippedNoLocation:
		return fmt.Sprintf("SKIPPED_NO_LOCATION: user %s has no location", o.UserID)
	case EnrollmentSkippedNoGroups:
		return fmt.Sprintf("SKIPPED_NO_GROUPS: tenant %s has no leaf hub groups", o.TenantID)
	case EnrollmentSkippedEmptyLocation:
		return fmt.Sprintf("SKIPPED_EMPTY_LOCATION: location %q normalized to nothing for user %s", o.Location, o.UserID)
	case EnrollmentSkippedLowConfidence:
		return fmt.Sprintf("SKIPPED_LOW_CONFIDENCE: best match %q for location %q scored %.2f", o.GroupName, o.Location, o.Score)
	case EnrollmentSkippedAlreadyMember:
		return fmt.Sprintf("SKIPPED_ALREADY_MEMBER: user %s is already in group %q (%s)", o.UserID, o.GroupName, o.GroupID)
	case EnrollmentError:
		return fmt.Sprintf("ERROR: enrollment failed for user %s: %s", o.UserID, o.Message)
	default:
		return fmt.Sprintf("%s: user %s", o.Status, o.UserID)
	}
}
