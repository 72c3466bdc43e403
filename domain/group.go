// Package domain contains core concepts of the chat system.
// No runtime, network, or UI logic should be added here.
package domain

type Set map[string]struct{}

// Group is a named broadcast scope. The owner is fixed at creation and is
// the only session allowed to change the member set.
type Group struct {
	Name    string
	Owner   string
	Members Set
}

func NewGroup(name, owner string) *Group {
	return &Group{
		Name:    name,
		Owner:   owner,
		Members: Set{owner: {}},
	}
}

func (g *Group) IsMember(name string) bool {
	_, ok := g.Members[name]
	return ok
}

func (g *Group) Add(name string) {
	g.Members[name] = struct{}{}
}

// Remove reports whether the name was actually a member.
func (g *Group) Remove(name string) bool {
	if _, ok := g.Members[name]; !ok {
		return false
	}
	delete(g.Members, name)
	return true
}
