package files

import (
	"errors"
	"path"

	"cloud-assets/core/bucket"
	"cloud-assets/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for stored files.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RenameRequest is the body of POST /files/rename.
type RenameRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RegisterRoutes registers the files routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/files")
	group.Post("/", h.HandleUpload)
	group.Delete("/", h.HandleDelete)
	group.Get("/content", h.HandleContent)
	group.Get("/exists", h.HandleExists)
	group.Get("/size", h.HandleSize)
	group.Get("/link", h.HandleLink)
	group.Post("/rename", h.HandleRename)
}

// HandleUpload stores a multipart "file" under "name" and puts it in the bucket.
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	name := c.FormValue("name")
	if name == "" {
		return badRequest(c, "name is required")
	}
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	src, err := header.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	defer src.Close()

	key, err := h.service.Store(c.Context(), name, src)
	if err != nil {
		if errors.Is(err, ErrInvalidName) {
			return badRequest(c, err.Error())
		}
		l.Error("Upload failed", zap.String("name", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Stored file", zap.String("name", name), zap.String("key", key), zap.Int64("size", header.Size))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "stored", "key": key})
}

// HandleContent streams the stored object.
func (h *Handler) HandleContent(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return badRequest(c, "name is required")
	}

	body, err := h.service.Contents(c.Context(), name)
	if err != nil {
		return h.fail(c, "Read failed", err)
	}

	c.Type(path.Ext(name))
	return c.SendStream(body)
}

// HandleExists reports whether the object exists.
func (h *Handler) HandleExists(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return badRequest(c, "name is required")
	}

	exists, err := h.service.Exists(c.Context(), name)
	if err != nil {
		return h.fail(c, "Exists check failed", err)
	}
	return c.JSON(fiber.Map{"exists": exists})
}

// HandleSize returns the object size, -1 when it cannot be fetched.
func (h *Handler) HandleSize(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return badRequest(c, "name is required")
	}

	size, err := h.service.Size(c.Context(), name)
	if err != nil {
		return h.fail(c, "Size lookup failed", err)
	}
	return c.JSON(fiber.Map{"size": size})
}

// HandleLink returns a temporary link to the object.
func (h *Handler) HandleLink(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return badRequest(c, "name is required")
	}
	expires, err := ParseExpiry(c.Query("expires"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	link, err := h.service.Link(c.Context(), name, expires)
	if err != nil {
		return h.fail(c, "Link failed", err)
	}
	return c.JSON(fiber.Map{"url": link})
}

// HandleDelete removes the object.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return badRequest(c, "name is required")
	}

	if err := h.service.Delete(c.Context(), name); err != nil {
		return h.fail(c, "Delete failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleRename moves an object to a new name.
func (h *Handler) HandleRename(c *fiber.Ctx) error {
	var req RenameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.From == "" || req.To == "" {
		return badRequest(c, "from and to are required")
	}

	if err := h.service.Rename(c.Context(), req.From, req.To); err != nil {
		return h.fail(c, "Rename failed", err)
	}
	return c.JSON(fiber.Map{"status": "renamed", "from": req.From, "to": req.To})
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	switch {
	case errors.Is(err, ErrInvalidName):
		return badRequest(c, err.Error())
	case errors.Is(err, bucket.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
