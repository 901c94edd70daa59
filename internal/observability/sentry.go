package observability

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry is a no-op without a DSN; captured events are then dropped by
// the SDK's default hub.
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		ServerName:       "guestbook",
		AttachStacktrace: true,
		BeforeSend:       scrubRequest,
	})
}

// scrubRequest drops posted form bodies and cookies, which carry what
// visitors typed into the guestbook.
func scrubRequest(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request != nil {
		event.Request.Data = ""
		event.Request.Cookies = ""
	}
	return event
}

// CaptureError reports err tagged with the request id carried by ctx.
func CaptureError(ctx context.Context, err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		if id := RequestID(ctx); id != "" {
			scope.SetTag("request_id", id)
		}
		sentry.CaptureException(err)
	})
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
