package openclaw

import (
	"context"
)

// Presence is the aggregated live state read from a gateway. Sub-queries that failed
// are empty rather than missing.
type Presence struct {
	Agents   []any          `json:"agents"`
	Channels []any          `json:"channels"`
	Models   []any          `json:"models"`
	Config   map[string]any `json:"config"`
}

// PresenceFromPayload coerces a raw presence payload. Lists that are missing or not
// lists become empty, and a config that is not an object becomes an empty object.
func PresenceFromPayload(payload map[string]any) Presence {
	list := func(key string) []any {
		if l, ok := asList(payload[key]); ok {
			return l
		}
		return []any{}
	}

	config, ok := asObject(payload["config"])
	if !ok {
		config = map[string]any{}
	}

	return Presence{
		Agents:   list("agents"),
		Channels: list("channels"),
		Models:   list("models"),
		Config:   config,
	}
}

// ListMethod is a gateway query that answers with a list of items.
type ListMethod string

const (
	ListAgents   ListMethod = "agents.list"
	ListChannels ListMethod = "channels.list"
	ListModels   ListMethod = "models.list"
)

func (lm ListMethod) valid() bool {
	switch lm {
	case ListAgents, ListChannels, ListModels:
		return true
	default:
		return false
	}
}

// GatewayTarget is everything needed to connect to a registered instance.
// DeviceToken is the token an earlier handshake issued, if any.
type GatewayTarget struct {
	URL              string
	Token            string
	DevicePrivateKey string
	DeviceToken      string
}

func targetFor(instance Record) GatewayTarget {
	str := func(key string) string {
		s, _ := instance.Fields[key].(string)
		return s
	}

	return GatewayTarget{
		URL:              str("url"),
		Token:            str("token"),
		DevicePrivateKey: str("devicePrivateKey"),
		DeviceToken:      str("deviceToken"),
	}
}

// Gateway is an authenticated connection to a gateway.
type Gateway interface {
	Presence(ctx context.Context) (Presence, error)
	List(ctx context.Context, method ListMethod) ([]any, error)
	// DeviceToken is the token issued by the gateway during the handshake. It is
	// empty when none was issued.
	DeviceToken() string
	Close() error
}

// Dialer connects and authenticates to a gateway. A rejected handshake is an error.
type Dialer interface {
	Dial(ctx context.Context, target GatewayTarget) (Gateway, error)
}
