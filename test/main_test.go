package main

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestUploadRouteRequiresAuth(t *testing.T) {
	app := fiber.New()
	app.Post("/api/v1/transactions/upload", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing or malformed JWT"})
	})

	req := httptest.NewRequest("POST", "/api/v1/transactions/upload", nil)

	resp, _ := app.Test(req, 1)

	assert.Equal(t, 401, resp.StatusCode)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	app := fiber.New()
	// no routes registered; expect 404
	req := httptest.NewRequest("GET", "/api/v1/transactions", nil)
	resp, _ := app.Test(req)
	assert.Equal(t, 404, resp.StatusCode)
}
