package openclaw

import "github.com/google/uuid"

const (
	KindInstance        = "openclaw-instance"
	KindSnapshot        = "openclaw-snapshot"
	KindAgent           = "openclaw-agent"
	KindChannel         = "openclaw-channel"
	KindModelProvider   = "openclaw-model-provider"
	KindSessionConfig   = "openclaw-session-config"
	KindGatewayConfig   = "openclaw-gateway-config"
	KindSkill           = "openclaw-skill"
	KindToolConfig      = "openclaw-tool-config"
	KindTalkConfig      = "openclaw-talk-config"
	KindBrowserConfig   = "openclaw-browser-config"
	KindHook            = "openclaw-hook"
	KindCronJob         = "openclaw-cron-job"
	KindDiscoveryConfig = "openclaw-discovery-config"
	KindIdentityConfig  = "openclaw-identity-config"
	KindCanvasConfig    = "openclaw-canvas-config"
	KindLoggingConfig   = "openclaw-logging-config"
	KindUIConfig        = "openclaw-ui-config"
)

var kindNamespace = uuid.MustParse("3f0c6a52-8d4e-4c1b-9a57-2e6b1d0f7c39")

// KindID derives the identifier of a built in kind from its slug so that it is the
// same in every process.
func KindID(slug string) string {
	return uuid.NewSHA1(kindNamespace, []byte(slug)).String()
}

func field(name string, typ FieldType, def any) FieldDefinition {
	return FieldDefinition{Name: name, Type: typ, Default: def}
}

func required(name string, typ FieldType, def any) FieldDefinition {
	return FieldDefinition{Name: name, Type: typ, Required: true, Default: def}
}

func builtin(slug, name, desc string, fields ...FieldDefinition) Kind {
	return Kind{
		ID:          KindID(slug),
		Name:        name,
		Slug:        slug,
		Description: desc,
		Fields:      fields,
	}
}

// BuiltinKinds returns the kinds that describe a gateway instance, its snapshots and
// every section of its config. Defaults are the values applied when a config
// section omits the field.
func BuiltinKinds() []Kind {
	return []Kind{
		builtin(KindInstance, "OpenClaw Instance", "A registered OpenClaw Gateway instance",
			required("url", FieldTypeURL, nil),
			field("token", FieldTypeString, nil),
			field("deviceId", FieldTypeString, nil),
			field("devicePublicKey", FieldTypeTextarea, nil),
			field("devicePrivateKey", FieldTypeTextarea, nil),
			field("deviceToken", FieldTypeString, nil),
			field("status", FieldTypeString, nil),
			field("lastPingAt", FieldTypeDate, nil),
			field("lastPingLatencyMs", FieldTypeNumber, nil),
			field("version", FieldTypeString, nil),
		),
		builtin(KindSnapshot, "OpenClaw Snapshot", "A point in time capture of a gateway's live state",
			required("instanceId", FieldTypeString, nil),
			field("capturedAt", FieldTypeDate, nil),
			field("config", FieldTypeTextarea, nil),
			field("agentCount", FieldTypeNumber, nil),
			field("channelCount", FieldTypeNumber, nil),
			field("modelCount", FieldTypeNumber, nil),
		),
		builtin(KindAgent, "OpenClaw Agent", "An agent definition on the OpenClaw Gateway",
			required("name", FieldTypeString, ""),
			required("model", FieldTypeString, ""),
			field("systemPrompt", FieldTypeTextarea, ""),
			field("tools", FieldTypeJSON, []any{}),
			field("channels", FieldTypeJSON, []any{}),
			field("skills", FieldTypeJSON, []any{}),
			field("enabled", FieldTypeBoolean, true),
		),
		builtin(KindChannel, "OpenClaw Channel", "A messaging channel connected to the gateway",
			required("type", FieldTypeString, ""),
			required("name", FieldTypeString, ""),
			field("config", FieldTypeJSON, map[string]any{}),
			field("enabled", FieldTypeBoolean, true),
		),
		builtin(KindModelProvider, "OpenClaw Model Provider", "A model provider and model available to agents",
			required("provider", FieldTypeString, ""),
			required("model", FieldTypeString, ""),
			field("apiKey", FieldTypeString, ""),
			field("baseUrl", FieldTypeURL, ""),
			field("enabled", FieldTypeBoolean, true),
		),
		builtin(KindSessionConfig, "OpenClaw Session Config", "Session limits of the gateway",
			field("maxSessions", FieldTypeNumber, 10),
			field("sessionTimeout", FieldTypeNumber, 3600),
			field("persistSessions", FieldTypeBoolean, false),
		),
		builtin(KindGatewayConfig, "OpenClaw Gateway Config", "Listener settings of the gateway",
			field("host", FieldTypeString, "localhost"),
			field("port", FieldTypeNumber, 8080),
			field("tlsEnabled", FieldTypeBoolean, false),
			field("certPath", FieldTypeString, ""),
			field("keyPath", FieldTypeString, ""),
		),
		builtin(KindSkill, "OpenClaw Skill", "A skill that agents can use",
			required("name", FieldTypeString, ""),
			field("description", FieldTypeTextarea, ""),
			field("enabled", FieldTypeBoolean, true),
			field("config", FieldTypeJSON, map[string]any{}),
		),
		builtin(KindToolConfig, "OpenClaw Tool Config", "A tool exposed to agents",
			required("name", FieldTypeString, ""),
			required("type", FieldTypeString, ""),
			field("config", FieldTypeJSON, map[string]any{}),
			field("enabled", FieldTypeBoolean, true),
		),
		builtin(KindTalkConfig, "OpenClaw Talk Config", "Voice settings of the gateway",
			field("provider", FieldTypeString, ""),
			field("voice", FieldTypeString, ""),
			field("enabled", FieldTypeBoolean, false),
		),
		builtin(KindBrowserConfig, "OpenClaw Browser Config", "Headless browser settings",
			field("enabled", FieldTypeBoolean, false),
			field("headless", FieldTypeBoolean, true),
			field("timeout", FieldTypeNumber, 30000),
		),
		builtin(KindHook, "OpenClaw Hook", "A webhook called on gateway events",
			required("url", FieldTypeURL, ""),
			field("events", FieldTypeJSON, []any{}),
			field("secret", FieldTypeString, ""),
			field("enabled", FieldTypeBoolean, true),
		),
		builtin(KindCronJob, "OpenClaw Cron Job", "A scheduled action run by the gateway",
			required("name", FieldTypeString, ""),
			required("schedule", FieldTypeString, ""),
			required("action", FieldTypeString, ""),
			field("enabled", FieldTypeBoolean, true),
		),
		builtin(KindDiscoveryConfig, "OpenClaw Discovery Config", "Local network discovery settings",
			field("enabled", FieldTypeBoolean, false),
			field("port", FieldTypeNumber, 5353),
			field("interfaces", FieldTypeJSON, []any{}),
		),
		builtin(KindIdentityConfig, "OpenClaw Identity Config", "Device identity of the gateway",
			field("name", FieldTypeString, ""),
			field("deviceId", FieldTypeString, ""),
			field("publicKey", FieldTypeTextarea, ""),
		),
		builtin(KindCanvasConfig, "OpenClaw Canvas Config", "Canvas server settings",
			field("enabled", FieldTypeBoolean, false),
			field("port", FieldTypeNumber, 3000),
			field("authEnabled", FieldTypeBoolean, true),
		),
		builtin(KindLoggingConfig, "OpenClaw Logging Config", "Log output settings of the gateway",
			field("level", FieldTypeSelect, "info"),
			field("format", FieldTypeSelect, "json"),
			field("outputs", FieldTypeJSON, []any{"stdout"}),
		),
		builtin(KindUIConfig, "OpenClaw UI Config", "Web UI settings",
			field("enabled", FieldTypeBoolean, false),
			field("port", FieldTypeNumber, 3001),
			field("theme", FieldTypeString, "default"),
		),
	}
}
