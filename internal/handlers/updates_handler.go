package handlers

import (
	"time"

	"kasuwa/internal/events"

	"github.com/gofiber/fiber/v2"
)

// UpdatesHandler exposes change notifications to clients as a long-poll
// endpoint: the request parks until the caller's data changes, then returns
// the last change of the burst.
type UpdatesHandler struct {
	emitter events.Emitter
}

// How long a poll waits before returning empty, and how long a burst of
// changes is allowed to settle before it is delivered.
const (
	pollWindow     = 25 * time.Second
	debounceWindow = 300 * time.Millisecond
)

// NewUpdatesHandler creates a new UpdatesHandler.
func NewUpdatesHandler(emitter events.Emitter) *UpdatesHandler {
	return &UpdatesHandler{emitter: emitter}
}

// RegisterRoutes registers the update routes. All require authentication.
func (h *UpdatesHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/updates/:entity", h.HandleWaitForChange)
}

var pollableEntities = map[string]bool{
	events.EntityOrders:       true,
	events.EntityInvoices:     true,
	events.EntityTransactions: true,
	events.EntityCustomOrders: true,
}

// HandleWaitForChange blocks until a change lands for the caller's entity
// list, or answers 204 when the poll window passes quietly.
func (h *UpdatesHandler) HandleWaitForChange(c *fiber.Ctx) error {
	entity := c.Params("entity")
	if !pollableEntities[entity] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown entity type for updates",
		})
	}
	userID, _ := c.Locals("user_id").(string)

	changed := make(chan events.Change, 1)
	unsubscribe := h.emitter.Subscribe(entity, userID, events.Debounce(debounceWindow, func(change events.Change) {
		select {
		case changed <- change:
		default:
		}
	}))
	defer unsubscribe()

	select {
	case change := <-changed:
		return c.JSON(change)
	case <-time.After(pollWindow):
		return c.SendStatus(fiber.StatusNoContent)
	case <-c.Context().Done():
		return nil
	}
}
