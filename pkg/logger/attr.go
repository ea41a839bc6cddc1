package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the canonical user identifier under the key "user_id".
func UserID(id int64) slog.Attr {
	return slog.Int64("user_id", id)
}

// OrganizationID records the tenant identifier under the key "organization_id".
func OrganizationID(id string) slog.Attr {
	return slog.String("organization_id", id)
}

// Table records a database table name under the key "table".
func Table(name string) slog.Attr {
	return slog.String("table", name)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Alert marks a record that should page someone. Log pipelines filter on alert=true.
func Alert() slog.Attr {
	return slog.Bool("alert", true)
}
