package shared

import (
	"net/http"
	"strconv"
)

// ActorHeader identifies the acting user on mutating requests. Audit fields
// are populated from this explicit value, never from ambient state.
const ActorHeader = "X-Actor-ID"

// ActorID extracts the acting user id from the request.
func ActorID(r *http.Request) int64 {
	if raw := r.Header.Get(ActorHeader); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return 1 // default actor for development
}
