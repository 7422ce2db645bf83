package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// keepAliveInterval keeps idle proxies from closing the stream.
const keepAliveInterval = 15 * time.Second

// StreamEvents handles GET /events. The caller receives the lifecycle events
// of every order it is a recipient of for as long as the connection stays
// open. Events missed while disconnected are not replayed.
func (s *Server) StreamEvents(ctx echo.Context) error {
	actor := actorFrom(ctx)
	sub := s.hub.Subscribe(actor.ID)
	defer s.hub.Unsubscribe(sub)

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	s.logger.DebugContext(ctx.Request().Context(), "event stream opened", "actor", actor.String())

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	done := ctx.Request().Context().Done()
	for {
		select {
		case <-done:
			s.logger.DebugContext(ctx.Request().Context(), "event stream closed", "actor", actor.String())
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			data, err := json.Marshal(eventToResponse(event))
			if err != nil {
				return err
			}
			if _, err = fmt.Fprintf(res, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Kind, data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
