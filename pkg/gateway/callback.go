package gateway

import (
	"net/http"
	"net/url"
)

// CallbackParams is a read-only view of the query and form parameters the
// gateway sends to the callback URL. Verification data must come from here
// rather than from adapter memory: purchase and verify typically run in two
// different processes, separated by the end user's browser redirect.
type CallbackParams struct {
	values url.Values
}

// CallbackFromRequest reads the callback parameters from an inbound request,
// combining query string and form body.
func CallbackFromRequest(r *http.Request) CallbackParams {
	_ = r.ParseForm()
	return CallbackParams{values: r.Form}
}

// CallbackFromValues wraps already-decoded values. Mostly useful in tests.
func CallbackFromValues(v url.Values) CallbackParams {
	return CallbackParams{values: v}
}

// Input returns the parameter stored under name, or "" when absent.
func (p CallbackParams) Input(name string) string {
	return p.values.Get(name)
}
