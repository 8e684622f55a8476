package enums

// EnrollmentStatus tracks the lifecycle of a course enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusSuspended EnrollmentStatus = "suspended"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
)

// String implements fmt.Stringer.
func (e EnrollmentStatus) String() string {
	return string(e)
}

// AccessLevel describes how much of a course an enrollment unlocks.
type AccessLevel string

const (
	AccessLevelFull    AccessLevel = "full"
	AccessLevelPreview AccessLevel = "preview"
)

// String implements fmt.Stringer.
func (a AccessLevel) String() string {
	return string(a)
}
