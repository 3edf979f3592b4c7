package app

import (
	"context"
	"strings"

	"github.com/hylla/zukai/internal/domain"
)

// MutationActor identifies who is changing a diagram.
type MutationActor struct {
	ActorID   string
	ActorType domain.ActorType
}

// mutationActorContextKey stores context keys for mutation actor metadata.
type mutationActorContextKey struct{}

// WithMutationActor attaches normalized mutation-actor identity metadata to context.
func WithMutationActor(ctx context.Context, actor MutationActor) context.Context {
	return context.WithValue(ctx, mutationActorContextKey{}, normalizeMutationActor(actor))
}

// MutationActorFromContext returns normalized mutation-actor metadata, defaulting to the local user.
func MutationActorFromContext(ctx context.Context) MutationActor {
	actor, ok := ctx.Value(mutationActorContextKey{}).(MutationActor)
	if !ok {
		return MutationActor{ActorID: "local", ActorType: domain.ActorTypeUser}
	}
	return normalizeMutationActor(actor)
}

// normalizeMutationActor trims and canonicalizes mutation actor metadata.
func normalizeMutationActor(actor MutationActor) MutationActor {
	actor.ActorID = strings.TrimSpace(actor.ActorID)
	actorType, err := domain.NormalizeActorType(actor.ActorType)
	if err != nil {
		actorType = domain.ActorTypeUser
	}
	actor.ActorType = actorType
	if actor.ActorID == "" {
		actor.ActorID = "local"
	}
	return actor
}
