package auth

import "context"

type ctxMarker struct{}

var ctxMarkerKey = &ctxMarker{}

// User returns the auth.Info stored in ctx by Info.WithContext. It's empty
// for anonymous requests.
func User(ctx context.Context) Info {
	info, ok := ctx.Value(ctxMarkerKey).(Info)
	if !ok {
		return Info{}
	}
	return info
}
