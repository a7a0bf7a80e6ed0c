package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// Envelope: uniform response shape shared with the web and mobile clients.
// Success responses always carry Data, failures always carry Message; no
// handler builds a half-filled envelope by hand.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Meta    []any  `json:"meta,omitempty"`
}

func Success(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data})
}

func SuccessMeta(c *fiber.Ctx, status int, data any, meta []any) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data, Meta: meta})
}

// ErrorHandler converts fiber errors into the failure envelope. Anything that
// is not a *fiber.Error is an unexpected server error and gets logged.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(Envelope{Success: false, Message: e.Message})
	}
	log.Println("unexpected error:", err)
	return c.Status(fiber.StatusInternalServerError).JSON(Envelope{
		Success: false,
		Message: "unexpected server error",
	})
}
