package gateway

// StatusMap translates a gateway status code into a human-readable message.
// It never affects control flow beyond enriching error messages: adapters
// decide success or failure before consulting it. Unknown codes translate to
// Fallback.
type StatusMap struct {
	Messages map[string]string
	Fallback string
}

// Translate returns the message registered for code, or the fallback when
// the code is unknown.
func (m StatusMap) Translate(code string) string {
	if msg, ok := m.Messages[code]; ok && msg != "" {
		return msg
	}
	return m.Fallback
}
