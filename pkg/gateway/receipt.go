package gateway

import "time"

// Receipt is the proof of a confirmed transaction. One exists only as the
// return value of a successful Verify; it is immutable after construction
// except for the detail map, which adapters populate right after creating it.
type Receipt struct {
	gatewayName string
	referenceID string
	date        time.Time
	details     map[string]string
}

// NewReceipt creates a receipt for the given gateway and gateway-confirmed
// reference id.
func NewReceipt(gatewayName, referenceID string) *Receipt {
	return &Receipt{
		gatewayName: gatewayName,
		referenceID: referenceID,
		date:        time.Now(),
		details:     make(map[string]string),
	}
}

// GatewayName identifies the adapter that produced the receipt.
func (r *Receipt) GatewayName() string {
	return r.gatewayName
}

// ReferenceID is the gateway-confirmed reference identifier. It is the only
// value a reconciliation system should trust.
func (r *Receipt) ReferenceID() string {
	return r.referenceID
}

// Date is the verification time.
func (r *Receipt) Date() time.Time {
	return r.date
}

// Detail stores an extra gateway-returned field. Returns the receipt so
// adapters can chain calls while populating it.
func (r *Receipt) Detail(key, value string) *Receipt {
	r.details[key] = value
	return r
}

// GetDetail returns the detail stored under key, or "" when absent.
func (r *Receipt) GetDetail(key string) string {
	return r.details[key]
}

// Details returns a copy of the detail map.
func (r *Receipt) Details() map[string]string {
	out := make(map[string]string, len(r.details))
	for k, v := range r.details {
		out[k] = v
	}
	return out
}
