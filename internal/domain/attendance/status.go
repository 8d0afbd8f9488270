package attendance

type Status string

const (
	StatusPresent       Status = "present"
	StatusAbsent        Status = "absent"
	StatusIncomplete    Status = "incomplete"
	StatusLeave         Status = "leave"
	StatusWfh           Status = "wfh"
	StatusIncompleteWfh Status = "incomplete_wfh"
	StatusNotApplicable Status = "not_applicable"
)

// Glyph is the calendar symbol shown for a status.
func (s Status) Glyph() string {
	switch s {
	case StatusPresent:
		return "P"
	case StatusIncomplete:
		return "I"
	case StatusAbsent:
		return "A"
	case StatusLeave:
		return "L"
	case StatusWfh:
		return "W"
	case StatusIncompleteWfh:
		return "I-W"
	default:
		return "—"
	}
}

// Color is the hex color the calendar uses for a status.
func (s Status) Color() string {
	switch s {
	case StatusPresent:
		return "#16a34a"
	case StatusIncomplete:
		return "#f97316"
	case StatusAbsent:
		return "#dc2626"
	case StatusLeave:
		return "#2563eb"
	case StatusWfh:
		return "#9333ea"
	case StatusIncompleteWfh:
		return "#d97706"
	default:
		return "#9ca3af"
	}
}

// ExportLetter maps a status to the spreadsheet column scheme {P,A,I,L,W,—}.
func (s Status) ExportLetter() string {
	switch s {
	case StatusPresent:
		return "P"
	case StatusAbsent:
		return "A"
	case StatusIncomplete, StatusIncompleteWfh:
		return "I"
	case StatusLeave:
		return "L"
	case StatusWfh:
		return "W"
	default:
		return "—"
	}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusIncomplete, StatusLeave,
		StatusWfh, StatusIncompleteWfh, StatusNotApplicable:
		return true
	}
	return false
}
