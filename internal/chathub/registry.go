package chathub

import (
	"sync"

	"travelbay/backend/internal/models"
)

// PostKey identifies one listing-scoped conversation.
type PostKey struct {
	PostID   string
	PostType models.PostType
}

// PostConnection pairs the live customer and agency connections for one post.
// It is derived state: entries exist only while at least one side is online.
type PostConnection struct {
	Customer Client
	Agency   Client
}

// Registry tracks which users currently hold a live connection and the
// per-post customer/agency pairing. All access goes through the internal
// lock; a register racing with a find never observes a torn entry.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
	posts   map[PostKey]*PostConnection
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]Client),
		posts:   make(map[PostKey]*PostConnection),
	}
}

// Register adds a client, replacing any prior connection for the same user.
// The replaced handle is closed so it receives no further pushes.
func (r *Registry) Register(c Client) {
	r.mu.Lock()
	old, existed := r.clients[c.GetUserID()]
	r.clients[c.GetUserID()] = c
	if existed {
		r.unlink(old)
	}
	r.link(c)
	r.mu.Unlock()

	if existed {
		old.Close()
	}
}

// Unregister removes the client. It is a no-op when the user is unknown or
// when the registered connection is a newer one that replaced c.
func (r *Registry) Unregister(c Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.clients[c.GetUserID()]
	if !ok || current != c {
		return false
	}
	delete(r.clients, c.GetUserID())
	r.unlink(c)
	return true
}

// FindByUser returns the live connection for a user. The second return
// value is false when the user is offline; this is never an error.
func (r *Registry) FindByUser(userID string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[userID]
	return c, ok
}

// FindCounterpart returns the live connection of the other party paired on
// the given post, if any.
func (r *Registry) FindCounterpart(key PostKey, selfUserID string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pc, ok := r.posts[key]
	if !ok {
		return nil, false
	}
	if pc.Customer != nil && pc.Customer.GetUserID() != selfUserID {
		return pc.Customer, true
	}
	if pc.Agency != nil && pc.Agency.GetUserID() != selfUserID {
		return pc.Agency, true
	}
	return nil, false
}

// link attaches the client to its post pairing slot. Callers hold r.mu.
func (r *Registry) link(c Client) {
	key, ok := c.GetPost()
	if !ok {
		return
	}
	pc := r.posts[key]
	if pc == nil {
		pc = &PostConnection{}
		r.posts[key] = pc
	}
	if c.GetRole() == models.RoleAgencyOwner {
		pc.Agency = c
	} else {
		pc.Customer = c
	}
}

// unlink detaches the client from its post pairing slot and garbage-collects
// entries with no live references. Callers hold r.mu.
func (r *Registry) unlink(c Client) {
	key, ok := c.GetPost()
	if !ok {
		return
	}
	pc, ok := r.posts[key]
	if !ok {
		return
	}
	if pc.Customer == c {
		pc.Customer = nil
	}
	if pc.Agency == c {
		pc.Agency = nil
	}
	if pc.Customer == nil && pc.Agency == nil {
		delete(r.posts, key)
	}
}
