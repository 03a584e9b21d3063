package live

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// Upgrader turns HTTP requests into websocket connections.
type Upgrader struct {
	upgrader websocket.Upgrader
}

// NewUpgrader creates an upgrader accepting the given origins. With no
// origins, only same-origin requests are accepted.
func NewUpgrader(allowedOrigins []string) *Upgrader {
	u := &Upgrader{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if len(allowedOrigins) > 0 {
		allowed := make(map[string]struct{}, len(allowedOrigins))
		for _, o := range allowedOrigins {
			allowed[strings.TrimRight(o, "/")] = struct{}{}
		}
		u.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		}
	}
	return u
}

// Upgrade upgrades the connection. On failure the upgrader has already
// written an HTTP error response.
func (u *Upgrader) Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error) {
	conn, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
