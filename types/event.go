package types

import "time"

// Event types published after a successful mutation.
const (
	EventUserRegistered = "user.registered"
	EventUserUpdated    = "user.updated"
	EventUserDeleted    = "user.deleted"
	EventPostingCreated = "posting.created"
	EventPostingUpdated = "posting.updated"
	EventPostingDeleted = "posting.deleted"
	EventBlogCreated    = "blog.created"
	EventBlogUpdated    = "blog.updated"
	EventBlogDeleted    = "blog.deleted"
)

// Event describes a resource mutation. It is serialized as JSON onto the
// configured message queue channel.
type Event struct {
	// Type is one of the Event* constants.
	Type string `json:"type"`

	// ResourceID is the posting/blog id or the username for user events.
	ResourceID string `json:"resource_id"`

	// Actor is the username that performed the mutation.
	Actor string `json:"actor"`

	OccurredAt time.Time `json:"occurred_at"`
}
