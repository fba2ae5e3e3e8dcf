package handlers

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts every API route on router, which is normally the
// authenticated /api group.
func RegisterRoutes(router fiber.Router, gen *GenerateHandler, sessions *SessionHandler) {
	gemini := router.Group("/gemini")
	gemini.Post("/orchestrate", gen.Orchestrate)
	gemini.Post("/social", gen.Social)
	gemini.Post("/text", gen.Text)
	gemini.Post("/video", gen.Video)
	gemini.Post("/youtube", gen.Video)
	gemini.Post("/deconstruct", gen.Deconstruct)

	router.Post("/sources/classify", sessions.Classify)

	router.Get("/sessions", sessions.ListSessions)
	router.Post("/sessions/generate", sessions.Generate)
	router.Get("/sessions/:id", sessions.GetSession)
	router.Patch("/sessions/:id", sessions.UpdateSession)
	router.Delete("/sessions/:id", sessions.DeleteSession)
	router.Post("/sessions/:id/generate/async", sessions.GenerateAsync)
	router.Post("/sessions/:id/drafts/:platform", sessions.GenerateDraft)
	router.Post("/sessions/:id/sources", sessions.AddSource)
	router.Delete("/sessions/:id/sources/:sourceId", sessions.RemoveSource)
	router.Post("/sessions/:id/export", sessions.Export)
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
