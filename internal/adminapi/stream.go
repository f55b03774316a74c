package adminapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/gravitlabs/storefront/internal/store"
	"github.com/gravitlabs/storefront/internal/webserver"
	"github.com/labstack/echo/v4"
)

// registerStreamRoutes registers the live snapshot streams the dashboard
// and storefront subscribe to. Each stream is SSE: one event per
// snapshot, the full current result set every time.
func registerStreamRoutes() {
	webserver.PubGET("/shop/stream/chats/:id/messages", func(c echo.Context) error {
		return streamCollection(c, store.ChatMessagesCollection(c.Param("id")))
	})
	webserver.PubGET("/shop/stream/:collection", func(c echo.Context) error {
		return streamCollection(c, c.Param("collection"))
	})
}

func streamCollection(c echo.Context, collection string) error {
	sub, err := GetHub(c).Watch(c.Request().Context(), collection)
	if err != nil {
		return fail(c, http.StatusNotFound, "UNKNOWN_COLLECTION", "No such collection", err.Error())
	}
	defer sub.Close()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-sub.Done():
			// drain a pending terminal snapshot before ending the stream
			select {
			case snap := <-sub.C():
				if err := writeEvent(resp, snap); err != nil {
					return err
				}
			default:
			}
			return nil
		case snap := <-sub.C():
			if err := writeEvent(resp, snap); err != nil {
				return err
			}
		}
	}
}

func writeEvent(resp *echo.Response, snap store.Snapshot) error {
	var payload []byte
	var err error
	if snap.Err != nil {
		payload, err = jsoniter.Marshal(map[string]interface{}{
			"collection": snap.Collection,
			"error":      snap.Err.Error(),
		})
	} else {
		payload, err = jsoniter.Marshal(snap)
	}
	if err != nil {
		return err
	}
	// SSE data lines may not contain raw newlines
	data := strings.ReplaceAll(string(payload), "\n", "")
	if _, err := fmt.Fprintf(resp, "data: %s\n\n", data); err != nil {
		return err
	}
	resp.Flush()
	return nil
}
