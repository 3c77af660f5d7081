package delegate

import (
	"encoding/json"

	"github.com/Strob0t/TaskForge/internal/domain"
)

// Reply statuses on the wire.
const (
	ReplyStatusSuccess = "success"
	ReplyStatusError   = "error"
)

// Reply is the wire envelope a worker sends back over a remote transport.
// Exactly one of Result or Error is set, selected by Status.
type Reply struct {
	Status string              `json:"status"`
	Result json.RawMessage     `json:"result,omitempty"`
	Error  *domain.WorkerError `json:"error,omitempty"`
}

// Decode unpacks a wire reply into the channel's return convention.
func (r *Reply) Decode() (json.RawMessage, error) {
	if r.Status == ReplyStatusSuccess {
		return r.Result, nil
	}
	if r.Error != nil {
		return nil, r.Error
	}
	return nil, &domain.WorkerError{Code: "malformed_reply", Message: "error reply without error payload"}
}
