package handlers

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"

	"storeapi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Config returns the fiber settings shared by the server and the tests.
func Config() fiber.Config {
	return fiber.Config{
		AppName:      "storeapi",
		ErrorHandler: ErrorHandler,
		UnescapePath: true,
		// Names from the path and body outlive the request in the in-memory store.
		Immutable: true,
	}
}

// ErrorHandler renders errors that escape a handler as {"message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal error occurred."
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	} else {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"message": message,
	})
}

// respondError maps a service error to its status code. The cause of a
// server error is logged and never sent to the client.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrConflict):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	}

	message := "An internal error occurred."
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}
	if status == fiber.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
	})
}

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodes the request body, if any, into out and validates it.
// messages overrides the text for a "field.tag" pair.
func parseBody(c *fiber.Ctx, v *validator.Validate, out interface{}, messages map[string]string) (fiber.Map, bool) {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(out); err != nil {
			log.Printf("Error parsing request body: %v", err)
			return fiber.Map{"message": "Invalid request body"}, false
		}
	}

	err := v.Struct(out)
	if err == nil {
		return nil, true
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fiber.Map{"message": "Invalid request body"}, false
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		if msg, ok := messages[e.Field()+"."+e.Tag()]; ok {
			errorMessages[e.Field()] = msg
			continue
		}
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	}, false
}
