package engine

import "strings"

// Severity is the weight attached to a chosen option. It decides which branch
// wins when a multi-select answer points at several next questions.
type Severity string

const (
	SeverityLow       Severity = "low"
	SeverityMedium    Severity = "medium"
	SeverityHigh      Severity = "high"
	SeverityEmergency Severity = "emergency"
)

// Urgency classifies how fast a technician visit is needed.
type Urgency string

const (
	UrgencyRoutine   Urgency = "routine"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

func severityRank(value Severity) int {
	switch Severity(strings.ToLower(strings.TrimSpace(string(value)))) {
	case SeverityEmergency:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func urgencyRank(value Urgency) int {
	switch Urgency(strings.ToLower(strings.TrimSpace(string(value)))) {
	case UrgencyEmergency:
		return 3
	case UrgencyUrgent:
		return 2
	case UrgencyRoutine:
		return 1
	default:
		return 0
	}
}

// maxUrgency returns the more severe of two urgencies.
func maxUrgency(a, b Urgency) Urgency {
	if urgencyRank(b) > urgencyRank(a) {
		return b
	}
	return a
}
