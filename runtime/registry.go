// Package runtime owns the shared session/group state and the workers
// that keep the service alive. It contains no parsing or transport logic.
package runtime

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"group-chat/contract"
	"group-chat/domain"
	"group-chat/errors"
	"group-chat/repositories"
)

// Registry is the single shared store of connected sessions and groups.
// Every operation runs under one exclusive lock: concurrent creates with the
// same name cannot both succeed, and a fan-out always sees a complete,
// unchanging member set. Operations are short and never block on I/O other
// than the in-memory journal, so coarse locking is not a bottleneck here.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]contract.Peer // map display name -> connected peer
	groups    map[string]*domain.Group // map group name -> group
	sanitizer contract.Sanitizer
	journal   repositories.IJournalRepository
	log       *slog.Logger
}

func NewRegistry(log *slog.Logger, sanitizer contract.Sanitizer,
	journal repositories.IJournalRepository) *Registry {
	return &Registry{
		sessions:  make(map[string]contract.Peer),
		groups:    make(map[string]*domain.Group),
		sanitizer: sanitizer,
		journal:   journal,
		log:       log,
	}
}

// Register inserts a peer under its display name and announces the updated
// user list to everyone, the newcomer included. Duplicate names are rejected:
// silently overwriting the entry would orphan the first session's group
// memberships.
func (r *Registry) Register(peer contract.Peer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := peer.Name()
	if _, ok := r.sessions[name]; ok {
		return errors.ErrNameTaken
	}
	r.sessions[name] = peer
	r.log.Info("Session registered", "name", name, "connected", len(r.sessions))
	r.broadcastUserListLocked()
	return nil
}

// Unregister removes a session, cleans its name out of every member set,
// dissolves the groups it owned, and announces the updated user list.
// A name that never completed registration is a no-op: no broadcast,
// no mutation.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[name]; !ok {
		return
	}
	delete(r.sessions, name)

	for groupName, group := range r.groups {
		if group.Owner == name {
			r.dissolveLocked(group)
			delete(r.groups, groupName)
			continue
		}
		group.Remove(name)
	}

	r.log.Info("Session unregistered", "name", name, "connected", len(r.sessions))
	r.broadcastUserListLocked()
}

// dissolveLocked notifies every surviving member that an owner-less group is
// gone. Ownership never transfers, so a group whose owner disconnected would
// otherwise stay unmanageable forever.
func (r *Registry) dissolveLocked(group *domain.Group) {
	for member := range group.Members {
		if member == group.Owner {
			continue
		}
		if peer, ok := r.sessions[member]; ok {
			peer.GroupRemoved(group.Name)
			peer.Deliver(fmt.Sprintf("Group '%s' has been dissolved because its owner left.", group.Name))
		}
	}
	r.log.Info("Group dissolved", "group", group.Name, "owner", group.Owner)
}

// CreateGroup creates a group owned by the creator, with the creator as sole
// member. A name collision leaves everything untouched.
func (r *Registry) CreateGroup(group string, creator contract.Peer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[group]; ok {
		creator.Deliver(fmt.Sprintf("Group '%s' already exists.", group))
		return errors.ErrGroupExists
	}
	r.groups[group] = domain.NewGroup(group, creator.Name())
	creator.GroupAdded(group)
	creator.Deliver(fmt.Sprintf("Group '%s' created.", group))
	r.log.Info("Group created", "group", group, "owner", creator.Name())
	return nil
}

// AddMember adds a connected user to a group. Only the owner may do this;
// any failure notifies the requester only and mutates nothing.
func (r *Registry) AddMember(group, target string, requester contract.Peer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, groupExists := r.groups[group]
	targetPeer, targetExists := r.sessions[target]
	if !groupExists || !targetExists {
		requester.Deliver("Group or client does not exist.")
		if !groupExists {
			return errors.ErrGroupNotFound
		}
		return errors.ErrUserNotFound
	}
	if g.Owner != requester.Name() {
		requester.Deliver("Only the group owner can add members.")
		return errors.ErrNotOwner
	}

	g.Add(target)
	requester.Deliver(fmt.Sprintf("%s has been added to group '%s'.", target, group))
	targetPeer.GroupAdded(group)
	targetPeer.Deliver(fmt.Sprintf("You have been added to group '%s' by %s.", group, requester.Name()))
	return nil
}

// RemoveMember removes a user from a group under the same authorization rule
// as AddMember, with the extra case of a target that is connected but not a
// member.
func (r *Registry) RemoveMember(group, target string, requester contract.Peer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, groupExists := r.groups[group]
	targetPeer, targetExists := r.sessions[target]
	if !groupExists || !targetExists {
		requester.Deliver("Group or client does not exist.")
		if !groupExists {
			return errors.ErrGroupNotFound
		}
		return errors.ErrUserNotFound
	}
	if g.Owner != requester.Name() {
		requester.Deliver("Only the group owner can remove members.")
		return errors.ErrNotOwner
	}
	if !g.Remove(target) {
		requester.Deliver(fmt.Sprintf("%s is not in the group.", target))
		return errors.ErrNotMember
	}

	requester.Deliver(fmt.Sprintf("%s has been removed from group '%s'.", target, group))
	targetPeer.GroupRemoved(group)
	targetPeer.Deliver(fmt.Sprintf("You have been removed from group '%s' by %s.", group, requester.Name()))
	return nil
}

// BroadcastAll sends a message to every registered session. Best effort: a
// peer whose outbound queue is full or whose transport died simply misses
// the line and is reaped by its own read loop.
func (r *Registry) BroadcastAll(sender, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	censored := r.recordLocked(domain.ScopeAll, sender, text)
	line := fmt.Sprintf("%s: %s", sender, censored)
	for _, peer := range r.sessions {
		peer.Deliver(line)
	}
}

// BroadcastToGroup sends a group-tagged message to the group's current
// member set, sender included.
func (r *Registry) BroadcastToGroup(group, sender, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[group]
	if !ok {
		if peer, connected := r.sessions[sender]; connected {
			peer.Deliver(fmt.Sprintf("Group '%s' does not exist.", group))
		}
		return errors.ErrGroupNotFound
	}

	censored := r.recordLocked(group, sender, text)
	line := fmt.Sprintf("[%s] %s: %s", group, sender, censored)
	for member := range g.Members {
		if peer, connected := r.sessions[member]; connected {
			peer.Deliver(line)
		}
	}
	return nil
}

// recordLocked moderates a message body and appends it to the journal.
// Notices and protocol lines never pass through here.
func (r *Registry) recordLocked(scope, sender, text string) string {
	censored, _ := r.sanitizer.Censor(text)
	err := r.journal.Store(domain.Message{
		ID:        uuid.New(),
		Scope:     scope,
		SenderID:  sender,
		Content:   censored,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		r.log.Warn("Journal write failed", "err", err)
	}
	return censored
}

// broadcastUserListLocked pushes the full name snapshot to every connected
// session. Names are sorted so two successive snapshots with the same set
// compare equal on the wire.
func (r *Registry) broadcastUserListLocked() {
	names := lo.Keys(r.sessions)
	sort.Strings(names)
	line := strings.TrimSpace("/users " + strings.Join(names, " "))
	for _, peer := range r.sessions {
		peer.Deliver(line)
	}
}

// Stats summarizes the live state for the debug inspector.
func (r *Registry) Stats() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := lo.Keys(r.sessions)
	sort.Strings(users)

	groups := make([]map[string]any, 0, len(r.groups))
	for _, g := range r.groups {
		members := lo.Keys(g.Members)
		sort.Strings(members)
		groups = append(groups, map[string]any{
			"name":    g.Name,
			"owner":   g.Owner,
			"members": members,
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i]["name"].(string) < groups[j]["name"].(string)
	})

	return map[string]any{
		"connected": len(users),
		"users":     users,
		"groups":    groups,
	}
}
