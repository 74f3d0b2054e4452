package bank

import "context"

// Notifier receives best-effort observer notifications (the owner's
// private chat in the bot). Implementations must swallow their own
// errors; notification failure never affects the operation.
type Notifier interface {
	Notify(ctx context.Context, text string)
}
