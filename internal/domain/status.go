package domain

// Status is where a quote stands in the approval flow. Values are the shop's
// own vocabulary and are stored and transmitted verbatim.
type Status string

const (
	StatusPending   Status = "Pendente"
	StatusApproved  Status = "Aprovado"
	StatusRejected  Status = "Reprovado"
	StatusCancelled Status = "Cancelado"
)

// Statuses lists every known status in display order.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled}

// ParseStatus accepts exactly the four wire values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", NewValidationErrorWithValue("status", "unknown quote status", s)
	}

	return st, nil
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the core defines no transition out of s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// CanGenerateWorkOrder gates the work order action. Only approved quotes offer it.
func (s Status) CanGenerateWorkOrder() bool {
	return s == StatusApproved
}

// CanTransitionTo reports whether a quote in s may be moved to next.
// Pending moves to any terminal status; staying put is always allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if !next.Valid() {
		return false
	}

	if s == next {
		return true
	}

	return s == StatusPending && next.Terminal()
}

// Icon names the badge glyph shown next to a status.
type Icon string

const (
	IconCheckCircle   Icon = "check-circle"
	IconClock         Icon = "clock"
	IconXCircle       Icon = "x-circle"
	IconAlertTriangle Icon = "alert-triangle"
)

// Badge is how a status is drawn: a CSS class list plus an icon.
type Badge struct {
	Class string `json:"class"`
	Icon  Icon   `json:"icon"`
	Label string `json:"label"`
}

const neutralClass = "bg-gray-100 text-gray-800"

var badges = map[Status]Badge{
	StatusApproved:  {Class: "bg-green-100 text-green-800", Icon: IconCheckCircle, Label: string(StatusApproved)},
	StatusPending:   {Class: "bg-yellow-100 text-yellow-800", Icon: IconClock, Label: string(StatusPending)},
	StatusRejected:  {Class: "bg-red-100 text-red-800", Icon: IconXCircle, Label: string(StatusRejected)},
	StatusCancelled: {Class: neutralClass, Icon: IconAlertTriangle, Label: string(StatusCancelled)},
}

// Badge returns the presentation for s. Unknown values get the neutral
// gray clock badge and keep their raw label.
func (s Status) Badge() Badge {
	if b, ok := badges[s]; ok {
		return b
	}

	return Badge{Class: neutralClass, Icon: IconClock, Label: string(s)}
}
