package speedscope

const (
	Schema = "https://www.speedscope.app/file-format-schema.json"

	ValueUnitNanoseconds ValueUnit = "nanoseconds"

	EventTypeOpenFrame  EventType = "O"
	EventTypeCloseFrame EventType = "C"

	ProfileTypeEvented ProfileType = "evented"
)

type (
	Frame struct {
		File string `json:"file,omitempty"`
		Name string `json:"name"`
	}

	Event struct {
		Type  EventType `json:"type"`
		Frame int       `json:"frame"`
		At    uint64    `json:"at"`
	}

	EventedProfile struct {
		EndValue   uint64      `json:"endValue"`
		Events     []Event     `json:"events"`
		Name       string      `json:"name"`
		StartValue uint64      `json:"startValue"`
		ThreadID   uint64      `json:"threadID"`
		Type       ProfileType `json:"type"`
		Unit       ValueUnit   `json:"unit"`
	}

	SharedData struct {
		Frames []Frame `json:"frames"`
	}

	EventType   string
	ProfileType string
	ValueUnit   string

	Output struct {
		Schema             string           `json:"$schema"`
		ActiveProfileIndex int              `json:"activeProfileIndex"`
		Exporter           string           `json:"exporter"`
		Name               string           `json:"name"`
		Profiles           []EventedProfile `json:"profiles"`
		Shared             SharedData       `json:"shared"`
	}
)

// Open appends an open frame event at the given offset.
func (p *EventedProfile) Open(frame int, at uint64) {
	p.Events = append(p.Events, Event{Type: EventTypeOpenFrame, Frame: frame, At: at})
}

// Close appends a close frame event and extends the profile end if needed.
func (p *EventedProfile) Close(frame int, at uint64) {
	p.Events = append(p.Events, Event{Type: EventTypeCloseFrame, Frame: frame, At: at})
	if at > p.EndValue {
		p.EndValue = at
	}
}

// Balanced reports whether every opened frame is closed in LIFO order.
func (p *EventedProfile) Balanced() bool {
	var stack []int
	for _, e := range p.Events {
		switch e.Type {
		case EventTypeOpenFrame:
			stack = append(stack, e.Frame)
		case EventTypeCloseFrame:
			if len(stack) == 0 || stack[len(stack)-1] != e.Frame {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}
