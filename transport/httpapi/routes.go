// Package httpapi exposes the REST surface next to the websocket:
// account registration and login, the current-session probe, and room
// history for clients that want to backfill before joining live.
package httpapi

import (
	stderrors "errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"trimchat/contract"
	"trimchat/errors"
	"trimchat/services"
)

const authTokenHeader = "x-auth-token"

type API struct {
	log         *slog.Logger
	authService services.IAuthService
	store       contract.MessageStore
}

func NewAPI(log *slog.Logger, authService services.IAuthService, store contract.MessageStore) *API {
	return &API{log: log, authService: authService, store: store}
}

func (a *API) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", a.register)
	authGroup.Post("/login", a.login)
	authGroup.Get("/me", a.me)
	authGroup.Put("/avatar", a.updateAvatar)

	api.Get("/rooms/:room/messages", a.roomMessages)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Avatar   string `json:"avatar,omitempty"`
}

type avatarRequest struct {
	Avatar string `json:"avatar"`
}

func (a *API) register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	session, err := a.authService.Register(req.Username, req.Password, req.Avatar)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"msg": "username already taken"})
		}
		a.log.Debug("Registration rejected", "username", req.Username, "error", err)
		return badRequest(c, "invalid registration")
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (a *API) login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	session, err := a.authService.Login(req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": "invalid credentials"})
	}
	return c.JSON(session)
}

// me resolves the session behind the x-auth-token header. A missing or
// stale token yields a null body, not an error: the client treats both
// as "not signed in".
func (a *API) me(c *fiber.Ctx) error {
	token := c.Get(authTokenHeader)
	if token == "" {
		return c.JSON(nil)
	}

	account, err := a.authService.Me(token)
	if err != nil {
		return c.JSON(nil)
	}
	return c.JSON(account)
}

func (a *API) updateAvatar(c *fiber.Ctx) error {
	token := c.Get(authTokenHeader)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": "missing token"})
	}

	var req avatarRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	account, err := a.authService.UpdateAvatar(token, req.Avatar)
	if err != nil {
		if stderrors.Is(err, errors.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": "invalid token"})
		}
		return badRequest(c, "invalid avatar")
	}
	return c.JSON(account)
}

func (a *API) roomMessages(c *fiber.Ctx) error {
	messages, err := a.store.RoomMessages(c.Params("room"))
	if err != nil {
		a.log.Error("Failed to load room history", "room", c.Params("room"), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"msg": "history unavailable"})
	}
	return c.JSON(messages)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": msg})
}
