package app

import (
	"context"

	"github.com/desertthunder/rolodex/internal/auth"
	"github.com/desertthunder/rolodex/internal/models"
)

// AuthSource reports the current session and announces changes to it.
type AuthSource interface {
	Subscribe(fn func(auth.Event)) (unsubscribe func())
	Session(ctx context.Context) (*models.Session, error)
}

// Gate keeps the contact view behind a live session.
//
// OnSession runs when a session is found or started. OnSignedOut runs when
// there is none, which is the redirect to the authentication screen.
type Gate struct {
	OnSession   func(models.Session)
	OnSignedOut func()
}

// Watch subscribes to src, then checks the current session once. A failed
// check counts as no session. The returned function unsubscribes.
func (g Gate) Watch(ctx context.Context, src AuthSource) (unsubscribe func()) {
	unsubscribe = src.Subscribe(func(e auth.Event) {
		if e.Kind == auth.SignedIn && e.Session != nil {
			g.session(*e.Session)
			return
		}
		g.signedOut()
	})

	session, err := src.Session(ctx)
	if err != nil || session == nil {
		g.signedOut()
	} else {
		g.session(*session)
	}

	return unsubscribe
}

func (g Gate) session(s models.Session) {
	if g.OnSession != nil {
		g.OnSession(s)
	}
}

func (g Gate) signedOut() {
	if g.OnSignedOut != nil {
		g.OnSignedOut()
	}
}
