package gateway

import "encoding/json"

// LooseString decodes a JSON value that arrives either as a string or as a
// number. Several gateways flip between the two for the same field across
// environments (production vs sandbox) or across response shapes, so
// adapters decode such fields through this type and treat the result as a
// string.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = LooseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = LooseString(num.String())
	return nil
}
