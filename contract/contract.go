//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Peer is the registry-facing side of one connected client.
// Deliver is fire-and-forget: it must never block, a full or dead
// outbound queue simply loses the line.
type Peer interface {
	Name() string
	Deliver(line string) bool
	GroupAdded(group string)
	GroupRemoved(group string)
}

// IRegistry exposes the atomic operations on the shared session/group state.
// Every call runs under the registry's single exclusive lock.
type IRegistry interface {
	Register(peer Peer) error
	Unregister(name string)
	CreateGroup(group string, creator Peer) error
	AddMember(group, target string, requester Peer) error
	RemoveMember(group, target string, requester Peer) error
	BroadcastAll(sender, text string)
	BroadcastToGroup(group, sender, text string) error
}

// Sanitizer rewrites a message body before fan-out and reports the
// patterns it matched.
type Sanitizer interface {
	Censor(original string) (string, []string)
}
