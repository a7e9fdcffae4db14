package reservation

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCheckedIn Status = "checked_in"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
	StatusNoShow    Status = "no_show"
	StatusCompleted Status = "completed"
)

var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusExpired},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled, StatusNoShow, StatusCompleted},
	StatusCheckedIn: {StatusCompleted},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn,
		StatusCancelled, StatusExpired, StatusNoShow, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusExpired, StatusNoShow, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsBlocking reports whether a reservation in this status still occupies
// its interval claim.
func (s Status) IsBlocking() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
		return true
	default:
		return false
	}
}

// ReleasesUnderlying reports whether entering s must give back the held
// stock or interval.
func (s Status) ReleasesUnderlying() bool {
	return s == StatusCancelled || s == StatusExpired
}

func CanTransition(from, to Status) bool {
	for _, target := range allowedTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

func AllowedTargets(from Status) []Status {
	targets := allowedTransitions[from]
	out := make([]Status, len(targets))
	copy(out, targets)
	return out
}

type RequesterType string

const (
	RequesterUser   RequesterType = "user"
	RequesterMember RequesterType = "member"
)

func (t RequesterType) IsValid() bool {
	return t == RequesterUser || t == RequesterMember
}
