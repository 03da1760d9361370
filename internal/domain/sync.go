package domain

import "time"

// NoticeSyncSuccess is the notification type broadcast to all open pages
// when a queued mutation replays successfully.
const NoticeSyncSuccess = "SYNC_SUCCESS"

// SyncOutcome is the ephemeral result of replaying one queued entry.
// It drives notification and removal; it is never persisted.
type SyncOutcome struct {
	Key         int64
	URL         string
	Succeeded   bool
	RespondedAt time.Time
}

// SyncNotice is the message sent to subscribed pages over the client bridge
// after a successful replay, carrying enough for UI reconciliation.
type SyncNotice struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// NoticeFor builds the broadcast notice for a successful outcome.
func NoticeFor(o SyncOutcome) SyncNotice {
	return SyncNotice{
		Type:      NoticeSyncSuccess,
		URL:       o.URL,
		Timestamp: o.Key,
	}
}
