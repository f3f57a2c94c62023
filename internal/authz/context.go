package authz

import (
	"context"

	"github.com/insightpulse/scout/internal/auditcontext"
)

// ActorFromContext builds the enforcer subject from the audit actor on the
// context: "system" or "api_key:<id>". Empty when no actor has been
// attached, which Authorize rejects.
func ActorFromContext(ctx context.Context) string {
	actorType, actorID, ok := auditcontext.Actor(ctx)
	if !ok || actorType == "" {
		return ""
	}
	if actorType == "system" || actorID == "" {
		return actorType
	}
	return actorType + ":" + actorID
}
