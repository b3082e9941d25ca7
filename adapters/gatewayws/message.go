package gatewayws

import "encoding/json"

const (
	typeChallenge  = "connect.challenge"
	typeConnect    = "connect"
	typeHelloOK    = "hello-ok"
	typeHelloError = "hello-error"
	typeCall       = "call"
)

// message is any frame received from the gateway.
type message struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// object decodes the payload as an object. Anything else is empty.
func (m message) object() map[string]any {
	var obj map[string]any
	if err := json.Unmarshal(m.Payload, &obj); err != nil || obj == nil {
		return map[string]any{}
	}
	return obj
}

// envelope is any frame sent to the gateway.
type envelope struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Method  string `json:"method,omitempty"`
	Params  any    `json:"params,omitempty"`
	Payload any    `json:"payload,omitempty"`
}
