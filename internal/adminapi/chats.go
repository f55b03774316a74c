package adminapi

import (
	"net/http"

	"github.com/gravitlabs/storefront/internal/domain"
	"github.com/gravitlabs/storefront/internal/shop"
	"github.com/gravitlabs/storefront/internal/webserver"
	"github.com/labstack/echo/v4"
)

type chatMessagePayload struct {
	ChatId     string `json:"chat_id"`
	ClientName string `json:"client_name"`
	Text       string `json:"text" validate:"required,min=1,max=2048"`
}

// registerChatRoutes registers the messaging inbox. Visitors post via
// the public endpoint; the admin inbox and replies sit behind the
// token.
func registerChatRoutes() {
	webserver.PubPOST("/shop/chats/messages", postUserMessage)
	webserver.PubGET("/shop/chats/:id/messages", listChatMessages)
	webserver.ApiGET("/shop/chats", listChats)
	webserver.ApiPOST("/shop/chats/:id/messages", postAdminMessage)
	webserver.ApiPUT("/shop/chats/:id/read", markChatRead)
}

func listChats(c echo.Context) error {
	rows, err := shop.NewChatService(GetDB(c), GetHub(c)).List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query chats", err.Error())
	}
	return ok(c, rows)
}

func listChatMessages(c echo.Context) error {
	rows, err := shop.NewChatService(GetDB(c), GetHub(c)).Messages(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query messages", err.Error())
	}
	return ok(c, rows)
}

func postUserMessage(c echo.Context) error {
	var payload chatMessagePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse message", err.Error())
	}
	msg, err := shop.NewChatService(GetDB(c), GetHub(c)).
		Post(c.Request().Context(), payload.ChatId, domain.ChatRoleUser, payload.ClientName, payload.Text)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to post message", err.Error())
	}
	return ok(c, msg)
}

func postAdminMessage(c echo.Context) error {
	var payload chatMessagePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse message", err.Error())
	}
	msg, err := shop.NewChatService(GetDB(c), GetHub(c)).
		Post(c.Request().Context(), c.Param("id"), domain.ChatRoleAdmin, "", payload.Text)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to post message", err.Error())
	}
	return ok(c, msg)
}

func markChatRead(c echo.Context) error {
	if err := shop.NewChatService(GetDB(c), GetHub(c)).MarkRead(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to mark chat read", err.Error())
	}
	return ok(c, map[string]interface{}{"id": c.Param("id")})
}
