package workspace

import (
	"sync"

	"github.com/boredapes/ctaplanner/pkg/session"
	log "github.com/sirupsen/logrus"
)

// SessionLookup reports whether a session token is still live.
type SessionLookup interface {
	Session(token string) (session.Session, bool)
}

// Registry holds one workspace per session token.
type Registry struct {
	deps Deps

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps, workspaces: map[string]*Workspace{}}
}

// For returns the workspace of the session, creating it on first use. A workspace is
// never created for a session that already ended; its Drop has run or is yet to come.
func (r *Registry) For(token string, owner string) (*Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.workspaces[token]; ok {
		return w, nil
	}
	if r.deps.Sessions != nil {
		if _, ok := r.deps.Sessions.Session(token); !ok {
			return nil, session.ErrNoSession
		}
	}
	w := New(token, owner, r.deps)
	r.workspaces[token] = w
	log.Debugf("workspace opened for %s", owner)
	return w, nil
}

// Drop discards the workspace of token together with its unsubmitted records.
func (r *Registry) Drop(token string) {
	r.mu.Lock()
	w, ok := r.workspaces[token]
	delete(r.workspaces, token)
	r.mu.Unlock()

	if !ok {
		return
	}
	if n := len(w.Records()); n > 0 {
		log.Infof("discarding %d unsubmitted events of %s", n, w.Owner())
	}
	w.Close()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// CloseAll ends every workspace, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	workspaces := r.workspaces
	r.workspaces = map[string]*Workspace{}
	r.mu.Unlock()

	for _, w := range workspaces {
		w.Close()
	}
}
