package person

// Kind tells which follow-up pipeline a person belongs to.
type Kind string

const (
	KindConvert   Kind = "CONVERT"
	KindNewMember Kind = "NEW_MEMBER"
	KindMember    Kind = "MEMBER"
	KindGuest     Kind = "GUEST"
)

var AllKinds = []Kind{KindConvert, KindNewMember, KindMember, KindGuest}

func (k Kind) Valid() bool {
	switch k {
	case KindConvert, KindNewMember, KindMember, KindGuest:
		return true
	}
	return false
}

// Status tracks a person through the follow-up pipeline.
type Status string

const (
	StatusNew        Status = "NEW"
	StatusScheduled  Status = "SCHEDULED"
	StatusConnected  Status = "CONNECTED"
	StatusNoResponse Status = "NO_RESPONSE"
	StatusCompleted  Status = "COMPLETED"
	StatusArchived   Status = "ARCHIVED"
)

var AllStatuses = []Status{StatusNew, StatusScheduled, StatusConnected, StatusNoResponse, StatusCompleted, StatusArchived}

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusScheduled, StatusConnected, StatusNoResponse, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// statusTransitions lists the manual status changes allowed from each status.
// Check-ins drive their own status changes via StatusAfterCheckin.
var statusTransitions = map[Status][]Status{
	StatusNew:        {StatusScheduled, StatusArchived},
	StatusScheduled:  {StatusConnected, StatusNoResponse, StatusArchived},
	StatusConnected:  {StatusScheduled, StatusCompleted, StatusArchived},
	StatusNoResponse: {StatusScheduled, StatusArchived},
	StatusCompleted:  {StatusArchived},
	StatusArchived:   {StatusNew}, // restore
}

// CanTransition reports whether a manual status change from `from` to `to` is allowed.
func CanTransition(from, to Status) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Outcome is the result of a follow-up check-in.
type Outcome string

const (
	OutcomeConnected   Outcome = "CONNECTED"
	OutcomeNoResponse  Outcome = "NO_RESPONSE"
	OutcomeLeftMessage Outcome = "LEFT_MESSAGE"
)

var AllOutcomes = []Outcome{OutcomeConnected, OutcomeNoResponse, OutcomeLeftMessage}

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeConnected, OutcomeNoResponse, OutcomeLeftMessage:
		return true
	}
	return false
}

// StatusAfterCheckin returns the pipeline status a person moves to after a
// check-in. Scheduling a next follow-up always wins; otherwise the outcome
// decides.
func StatusAfterCheckin(outcome Outcome, nextFollowUpSet bool) Status {
	if nextFollowUpSet {
		return StatusScheduled
	}
	switch outcome {
	case OutcomeConnected:
		return StatusConnected
	default: // NO_RESPONSE, LEFT_MESSAGE
		return StatusNoResponse
	}
}
