package vision

import "context"

// Provider counts banknotes on a photo. Implementations may fail on
// service errors; callers treat a failure as "nothing counted" for the
// affected photo and move on.
type Provider interface {
	CountBanknotes(ctx context.Context, image []byte) (int, error)
}
