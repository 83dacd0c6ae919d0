package gateway

import "net/http"

// RedirectionForm describes where and how to send the end user to complete
// payment at the gateway. It is pure data; rendering the redirect or the
// auto-submitting form is the caller's responsibility.
type RedirectionForm struct {
	Action string            `json:"action"`
	Inputs map[string]string `json:"inputs,omitempty"`
	Method string            `json:"method"`
}

// NewRedirectionForm builds a redirection instruction. An empty method
// defaults to POST, matching a form submission.
func NewRedirectionForm(action string, inputs map[string]string, method string) *RedirectionForm {
	if method == "" {
		method = http.MethodPost
	}
	return &RedirectionForm{
		Action: action,
		Inputs: inputs,
		Method: method,
	}
}
