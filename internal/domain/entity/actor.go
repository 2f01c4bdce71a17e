package entity

// AnonymousActor is the identity recorded for unauthenticated callers.
const AnonymousActor = "anonymous"

// ActorContext describes the caller as established by the surrounding
// application. ClientIP is optional.
type ActorContext struct {
	IsAuthenticatedOfficer bool
	Identity               string
	ClientIP               string
}

// Name returns the identity, or AnonymousActor when unset.
func (a ActorContext) Name() string {
	if a.Identity == "" {
		return AnonymousActor
	}
	return a.Identity
}
