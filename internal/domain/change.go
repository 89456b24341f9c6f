package domain

import "encoding/json"

// EventPostgresChanges is the event name of row change messages.
const EventPostgresChanges = "postgres_changes"

// changePayload covers both the nested ("data.record") and the flat
// ("record") change payload layouts.
type changePayload struct {
	Data *struct {
		Record json.RawMessage `json:"record"`
	} `json:"data"`
	Record json.RawMessage `json:"record"`
}

// Record returns the changed row carried by the message, if any.
func (m Message) Record() (json.RawMessage, bool) {
	if len(m.Payload) == 0 {
		return nil, false
	}

	var p changePayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nil, false
	}

	if p.Data != nil && isObject(p.Data.Record) {
		return p.Data.Record, true
	}
	if isObject(p.Record) {
		return p.Record, true
	}
	return nil, false
}

func isObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
