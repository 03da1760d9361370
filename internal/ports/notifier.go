package ports

import "github.com/arcbank/offlinegate/internal/domain"

// Notifier delivers sync notices to every subscribed page.
// Delivery is best-effort: a slow or gone subscriber never blocks replay.
type Notifier interface {
	// Broadcast sends the notice to all current subscribers.
	Broadcast(n domain.SyncNotice)
}
