package openclaw

import (
	"github.com/luno/openclaw/internal/canonical"
)

// Config is a gateway configuration document. Known section keys are listed in
// SectionKeys; anything else is ignored by Decompose and Diff.
type Config map[string]any

// section maps one config key to the kind of record that stores it. Array sections
// hold one record per element; singleton sections hold at most one record.
type section struct {
	key   string
	kind  string
	array bool
	title func(item map[string]any) string
}

// sections is in processing order.
var sections = []section{
	{key: "agents", kind: KindAgent, array: true, title: nameOr("name", "agent")},
	{key: "channels", kind: KindChannel, array: true, title: nameOr("name", "channel")},
	{key: "modelProviders", kind: KindModelProvider, array: true, title: providerTitle},
	{key: "skills", kind: KindSkill, array: true, title: nameOr("name", "skill")},
	{key: "tools", kind: KindToolConfig, array: true, title: nameOr("name", "tool")},
	{key: "sessionConfig", kind: KindSessionConfig, title: fixed("Session Config")},
	{key: "gatewayConfig", kind: KindGatewayConfig, title: fixed("Gateway Config")},
	{key: "talkConfig", kind: KindTalkConfig, title: fixed("Talk Config")},
	{key: "browserConfig", kind: KindBrowserConfig, title: fixed("Browser Config")},
	{key: "hooks", kind: KindHook, array: true, title: nameOr("url", "hook")},
	{key: "cronJobs", kind: KindCronJob, array: true, title: nameOr("name", "cron")},
	{key: "discoveryConfig", kind: KindDiscoveryConfig, title: fixed("Discovery Config")},
	{key: "identityConfig", kind: KindIdentityConfig, title: nameOr("name", "Identity")},
	{key: "canvasConfig", kind: KindCanvasConfig, title: fixed("Canvas Config")},
	{key: "loggingConfig", kind: KindLoggingConfig, title: fixed("Logging Config")},
	{key: "uiConfig", kind: KindUIConfig, title: fixed("UI Config")},
}

// SectionKeys returns every known config key in processing order.
func SectionKeys() []string {
	keys := make([]string, 0, len(sections))
	for _, s := range sections {
		keys = append(keys, s.key)
	}

	return keys
}

func sectionByKind(slug string) (section, bool) {
	for _, s := range sections {
		if s.kind == slug {
			return s, true
		}
	}

	return section{}, false
}

func nameOr(field, fallback string) func(map[string]any) string {
	return func(item map[string]any) string {
		if s, ok := item[field].(string); ok && s != "" {
			return s
		}

		return fallback
	}
}

func fixed(title string) func(map[string]any) string {
	return func(map[string]any) string {
		return title
	}
}

func providerTitle(item map[string]any) string {
	provider, _ := item["provider"].(string)
	model, _ := item["model"].(string)
	return provider + "/" + model
}

// toRecordFields flattens a config item into record fields. Declared fields absent
// from the item take their default. Fields declared as json are always stored as
// their JSON encoding so that fromRecordFields can restore them exactly. Undeclared
// fields are carried through with nested values encoded.
func (s section) toRecordFields(kind Kind, item map[string]any) Fields {
	fields := make(Fields, len(item))
	for _, def := range kind.Fields {
		v, ok := item[def.Name]
		if !ok || v == nil {
			if def.Default == nil {
				continue
			}
			v = def.Default
		}

		if def.Type == FieldTypeJSON || canonical.IsContainer(v) {
			fields[def.Name] = canonical.String(v)
			continue
		}

		fields[def.Name] = v
	}

	for name, v := range item {
		if _, declared := kind.Field(name); declared {
			continue
		}

		if canonical.IsContainer(v) {
			v = canonical.String(v)
		}

		fields[name] = v
	}

	return fields
}

// fromRecordFields is the inverse of toRecordFields. Fields declared as json are
// decoded whatever they hold; any other string is decoded only when it holds an
// object or array. Strings that fail to decode are returned as stored.
func (s section) fromRecordFields(kind Kind, fields Fields) map[string]any {
	item := make(map[string]any, len(fields))
	for name, v := range fields {
		str, ok := v.(string)
		if !ok {
			item[name] = v
			continue
		}

		def, declared := kind.Field(name)
		switch {
		case declared && def.Type == FieldTypeJSON:
			if decoded, err := canonical.Decode(str); err == nil {
				item[name] = decoded
				continue
			}
		default:
			if decoded, ok := canonical.DecodeContainer(str); ok {
				item[name] = decoded
				continue
			}
		}

		item[name] = str
	}

	return item
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		res := make([]any, 0, len(l))
		for _, m := range l {
			res = append(res, m)
		}
		return res, true
	case []Config:
		res := make([]any, 0, len(l))
		for _, m := range l {
			res = append(res, map[string]any(m))
		}
		return res, true
	default:
		return nil, false
	}
}

func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Config:
		return m, true
	case Fields:
		return m, true
	default:
		return nil, false
	}
}
