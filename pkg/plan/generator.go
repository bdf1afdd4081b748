package plan

import "context"

const (
	RoleSystem = "system"
	RoleUser   = "user"
	RoleModel  = "model"
)

type Message struct {
	Role string
	Text string
}

// PlanGenerator sends a conversation to a text-generation backend and
// returns the raw reply. Timeouts and transport failures come back as
// errors; the reply itself is not validated.
type PlanGenerator interface {
	Request(ctx context.Context, messages []Message) (string, error)
}
