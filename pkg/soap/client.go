// Package soap is a thin wrapper around a WSDL-based RPC client. Gateway
// adapters depend on the Caller interface so tests can stub the transport
// with canned XML.
package soap

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tiaguinho/gosoap"
)

// Caller performs one SOAP RPC and returns the raw response body XML.
type Caller interface {
	Call(ctx context.Context, method string, params map[string]string) ([]byte, error)
}

// Client is the gosoap-backed Caller. The underlying client is built per
// call, mirroring how the WSDL endpoints are used: one RPC per payment
// phase, no connection reuse guarantees.
type Client struct {
	wsdl       string
	httpClient *http.Client
}

// NewClient creates a Caller for the given WSDL URL. A nil httpClient gets a
// 30 second timeout default.
func NewClient(wsdl string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{wsdl: wsdl, httpClient: httpClient}
}

// Call invokes the named RPC. The context deadline, if any, is carried by
// the configured HTTP client's timeout; gosoap does not accept a context.
func (c *Client) Call(ctx context.Context, method string, params map[string]string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := gosoap.SoapClient(c.wsdl, c.httpClient)
	if err != nil {
		return nil, fmt.Errorf("soap client for %s: %w", c.wsdl, err)
	}

	p := gosoap.Params{}
	for k, v := range params {
		p[k] = v
	}

	res, err := client.Call(method, p)
	if err != nil {
		return nil, fmt.Errorf("soap call %s: %w", method, err)
	}
	return res.Body, nil
}

// ScalarResult extracts the text of the <methodResult> element from a SOAP
// response body. The gateways wrapped here return a single scalar (a token
// string or a signed status number) per call.
func ScalarResult(body []byte, method string) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	want := method + "Result"

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode soap response: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != want {
			continue
		}
		var value string
		if err := dec.DecodeElement(&value, &se); err != nil {
			return "", fmt.Errorf("decode %s: %w", want, err)
		}
		return strings.TrimSpace(value), nil
	}
	return "", fmt.Errorf("element %s not found in soap response", want)
}
