package logger

import "log/slog"

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// TenantID records the tenant identifier under the key "tenant_id".
func TenantID(id string) slog.Attr {
	return slog.String("tenant_id", id)
}

// PlanCode records the plan code under the key "plan_code".
func PlanCode(code string) slog.Attr {
	return slog.String("plan_code", code)
}

// ResolutionSource records how a tenant was identified under "source".
func ResolutionSource(source string) slog.Attr {
	return slog.String("source", source)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

