package controller

import (
	"strconv"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatSessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
}

type chatSessionController struct {
	sessionService service.IChatSessionService
	messageService service.IMessageService
}

func NewChatSessionController(sessionService service.IChatSessionService, messageService service.IMessageService) IChatSessionController {
	return &chatSessionController{
		sessionService: sessionService,
		messageService: messageService,
	}
}

func (c *chatSessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Post("/", c.Create)
	h.Get("/", c.List)
	h.Get("/:id/messages", c.ListMessages)
	h.Get("/:id", c.Show)
}

func (c *chatSessionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateChatSessionRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(res)
}

func (c *chatSessionController) Show(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.sessionService.GetByID(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

// List accepts an optional user_id query parameter.
func (c *chatSessionController) List(ctx *fiber.Ctx) error {
	var userId *uint
	if raw := ctx.Query("user_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 0)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid user_id")
		}
		id := uint(parsed)
		userId = &id
	}

	res, err := c.sessionService.List(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *chatSessionController) ListMessages(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.messageService.ListBySession(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
