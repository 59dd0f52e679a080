// Package http exposes the REST surface. Handlers translate between HTTP
// and processor commands; no game logic lives here.
package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"mentrachess/internal/core"
	"mentrachess/internal/processor"
	"mentrachess/internal/service"
)

const rateLimitRate = 10 // req/sec

// Handler routes HTTP requests to the processor
type Handler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHandler(proc *processor.Processor, svc *service.Service) *Handler {
	return &Handler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	h := NewHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", perIPLimiter(5, "5 registrations per minute allowed"), h.Register)
	auth.Post("/login", perIPLimiter(10, "10 login attempts per minute allowed"), h.Login)

	validateToken := svc.ValidateToken
	auth.Get("/me", AuthRequired(validateToken), h.CurrentUser)
	auth.Post("/logout", AuthRequired(validateToken), h.Logout)

	// Game routes with standard rate limiting
	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Post("/games", OptionalAuth(validateToken), h.CreateGame)
	api.Put("/games/:gameId/players", OptionalAuth(validateToken), h.ConfigurePlayers)
	api.Get("/games/:gameId", h.GetGame)
	api.Delete("/games/:gameId", h.DeleteGame)
	api.Post("/games/:gameId/moves", OptionalAuth(validateToken), h.MakeMove)
	api.Post("/games/:gameId/voice", OptionalAuth(validateToken), h.VoiceMove)
	api.Post("/games/:gameId/clarify", OptionalAuth(validateToken), h.Clarify)
	api.Post("/games/:gameId/undo", h.UndoMove)
	api.Get("/games/:gameId/board", h.GetBoard)

	return app
}

// perIPLimiter builds a fixed-window limiter keyed on client IP.
func perIPLimiter(perMinute int, detail string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: detail,
			})
		},
	})
}

// contentTypeValidator ensures POST and PUT requests carry application/json
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType := c.Get("Content-Type")
		if contentType != "application/json" && contentType != "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrGameNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// requestBody retrieves the body parsed and checked by the validation
// middleware. A nil return means the middleware did not run for this
// route, which is a wiring bug, and an error response has been sent.
func requestBody[T any](c *fiber.Ctx) (*T, error) {
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.ErrInternalError,
		})
	}

	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.ErrInternalError,
		})
	}
	return body, nil
}

// gameParam validates the :gameId path parameter. Empty return means the
// error response has been written.
func gameParam(c *fiber.Ctx) (string, error) {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return "", c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid game ID format",
			Code:    core.ErrInvalidRequest,
			Details: "game ID must be a valid UUID",
		})
	}
	return gameID, nil
}

// sendResult maps a processor response to HTTP.
func sendResult(c *fiber.Ctx, resp processor.Response) error {
	if resp.Success {
		return c.JSON(resp.Data)
	}

	statusCode := fiber.StatusBadRequest
	switch resp.Error.Code {
	case core.ErrGameNotFound:
		statusCode = fiber.StatusNotFound
	case core.ErrUnauthorized:
		statusCode = fiber.StatusForbidden
	case core.ErrGameOver:
		statusCode = fiber.StatusConflict
	case core.ErrNoClarification:
		statusCode = fiber.StatusConflict
	case core.ErrInternalError:
		statusCode = fiber.StatusInternalServerError
	}
	return c.Status(statusCode).JSON(resp.Error)
}

// Health reports liveness plus storage status
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
	})
}

// CreateGame creates a new game with the given seats and optional
// starting position
func (h *Handler) CreateGame(c *fiber.Ctx) error {
	req, err := requestBody[core.CreateGameRequest](c)
	if err != nil || req == nil {
		return err
	}

	userID, _ := c.Locals("userID").(string)

	cmd := processor.NewCreateGameCommand(*req)
	cmd.UserID = userID

	resp := h.proc.Execute(cmd)
	if !resp.Success {
		return sendResult(c, resp)
	}
	return c.Status(fiber.StatusCreated).JSON(resp.Data)
}

// ConfigurePlayers updates player configuration mid-game
func (h *Handler) ConfigurePlayers(c *fiber.Ctx) error {
	gameID, err := gameParam(c)
	if err != nil || gameID == "" {
		return err
	}
	req, err := requestBody[core.ConfigurePlayersRequest](c)
	if err != nil || req == nil {
		return err
	}

	cmd := processor.NewConfigurePlayersCommand(gameID, *req)
	cmd.UserID, _ = c.Locals("userID").(string)
	return sendResult(c, h.proc.Execute(cmd))
}

// GetGame returns the game state, optionally long-polling until the move
// count changes
func (h *Handler) GetGame(c *fiber.Ctx) error {
	gameID, err := gameParam(c)
	if err != nil || gameID == "" {
		return err
	}

	waitStr := c.Query("wait", "false")
	moveCountStr := c.Query("moveCount", "-1")

	if waitStr != "true" {
		return sendResult(c, h.proc.Execute(processor.NewGetGameCommand(gameID)))
	}

	moveCount, err := strconv.Atoi(moveCountStr)
	if err != nil {
		moveCount = -1
	}

	g, err := h.svc.GetGame(gameID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "game not found",
			Code:  core.ErrGameNotFound,
		})
	}

	// Already different, no need to wait
	if moveCount != len(g.Moves()) {
		return sendResult(c, h.proc.Execute(processor.NewGetGameCommand(gameID)))
	}

	ctx := c.Context()
	notify := h.svc.RegisterWait(gameID, moveCount, ctx)

	select {
	case <-notify:
		return sendResult(c, h.proc.Execute(processor.NewGetGameCommand(gameID)))
	case <-ctx.Done():
		// Client disconnected
		return nil
	}
}

// MakeMove submits a fully specified move (or the computer-move request)
func (h *Handler) MakeMove(c *fiber.Ctx) error {
	gameID, err := gameParam(c)
	if err != nil || gameID == "" {
		return err
	}
	req, err := requestBody[core.MoveRequest](c)
	if err != nil || req == nil {
		return err
	}

	cmd := processor.NewMakeMoveCommand(gameID, *req)
	cmd.UserID, _ = c.Locals("userID").(string)
	return sendResult(c, h.proc.Execute(cmd))
}

// VoiceMove submits a piece-and-destination command with no origin square.
// The response either carries the executed move or a clarification prompt.
func (h *Handler) VoiceMove(c *fiber.Ctx) error {
	gameID, err := gameParam(c)
	if err != nil || gameID == "" {
		return err
	}
	req, err := requestBody[core.VoiceMoveRequest](c)
	if err != nil || req == nil {
		return err
	}

	cmd := processor.NewVoiceMoveCommand(gameID, *req)
	cmd.UserID, _ = c.Locals("userID").(string)
	return sendResult(c, h.proc.Execute(cmd))
}

// Clarify resolves a pending clarification with the speaker's selection
func (h *Handler) Clarify(c *fiber.Ctx) error {
	gameID, err := gameParam(c)
	if err != nil || gameID == "" {
		return err
	}
	req, err := requestBody[core.ClarifyRequest](c)
	if err != nil || req == nil {
		return err
	}

	cmd := processor.NewClarifyCommand(gameID, *req)
	cmd.UserID, _ = c.Locals("userID").(string)
	return sendResult(c, h.proc.Execute(cmd))
}

// UndoMove reverts one or more moves
func (h *Handler) UndoMove(c *fiber.Ctx) error {
	gameID, err := gameParam(c)
	if err != nil || gameID == "" {
		return err
	}
	req, err := requestBody[core.UndoRequest](c)
	if err != nil || req == nil {
		return err
	}

	return sendResult(c, h.proc.Execute(processor.NewUndoMoveCommand(gameID, *req)))
}

// DeleteGame ends and cleans up a game
func (h *Handler) DeleteGame(c *fiber.Ctx) error {
	gameID, err := gameParam(c)
	if err != nil || gameID == "" {
		return err
	}

	resp := h.proc.Execute(processor.NewDeleteGameCommand(gameID))
	if !resp.Success {
		return c.Status(fiber.StatusNotFound).JSON(resp.Error)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetBoard returns the ASCII rendering of the board
func (h *Handler) GetBoard(c *fiber.Ctx) error {
	gameID, err := gameParam(c)
	if err != nil || gameID == "" {
		return err
	}
	return sendResult(c, h.proc.Execute(processor.NewGetBoardCommand(gameID)))
}
