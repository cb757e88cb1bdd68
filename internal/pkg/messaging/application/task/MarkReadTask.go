package task

import (
	"context"
	"encoding/json"
	"time"

	qport "servihub/internal/infrastructure/queue/port"
	repository "servihub/internal/pkg/messaging/persistence/repository/port"
)

// MarkReadTaskType is the queue task name for durably marking a conversation read.
const MarkReadTaskType = "messaging:mark_read"

// MarkReadPayload is the JSON payload transported via the queue. The write it
// drives is idempotent (seen=false -> seen=true), so the queue's retry policy
// is safe to lean on, unlike message creation, which never rides the queue.
type MarkReadPayload struct {
	UserID    string `json:"userId"`
	PartnerID string `json:"partnerId"`
}

// RegisterMarkReadTask binds the mark-read handler to the provided server.
func RegisterMarkReadTask(srv qport.Server, repo repository.MessageRepository) {
	srv.Register(MarkReadTaskType, func(ctx context.Context, t qport.Task) error {
		var p MarkReadPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// Malformed payload: retrying cannot help.
			return err
		}
		if p.UserID == "" || p.PartnerID == "" {
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		return repo.MarkRead(ctx, p.UserID, p.PartnerID)
	})
}
