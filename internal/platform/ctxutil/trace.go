package ctxutil

import "context"

type traceDataKey struct{}

// TraceData carries per-request identifiers from the HTTP edge into services and collaborators.
type TraceData struct {
	TraceID   string
	RequestID string
	AdminUser string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// AdminUser returns the acting administrator recorded on ctx, or "".
func AdminUser(ctx context.Context) string {
	if td := GetTraceData(ctx); td != nil {
		return td.AdminUser
	}
	return ""
}

// RequestID returns the request id recorded on ctx, or "".
func RequestID(ctx context.Context) string {
	if td := GetTraceData(ctx); td != nil {
		return td.RequestID
	}
	return ""
}
