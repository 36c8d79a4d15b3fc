// Package server exposes a budget session over HTTP.
package server

import (
	"errors"
	"log"
	"sync"

	"github.com/etnz/budget"
	"github.com/etnz/budget/agent"
	"github.com/gofiber/fiber/v2"
)

// Config configures the server.
type Config struct {
	// Secret verifies bearer tokens. Without it every request is a guest.
	Secret string
	// Advisor answers the AI routes, they are disabled without it.
	Advisor *agent.Advisor
}

// Server serves one session.
type Server struct {
	mu     sync.Mutex
	coord  *budget.Coordinator
	ledger *budget.Ledger
	cfg    Config
	app    *fiber.App
}

// New returns a server on the session made of coord and ledger.
func New(coord *budget.Coordinator, ledger *budget.Ledger, cfg Config) *Server {
	s := &Server{coord: coord, ledger: ledger, cfg: cfg}
	s.app = fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	s.routes()
	return s
}

// App returns the fiber application.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }

// Shutdown stops the server.
func (s *Server) Shutdown() error { return s.app.Shutdown() }

func (s *Server) routes() {
	api := s.app.Group("/api", s.withIdentity)

	api.Get("/snapshot", s.getSnapshot)
	api.Get("/journal", s.getJournal)
	api.Get("/dashboard", s.getDashboard)
	api.Get("/breakdown", s.getBreakdown)
	api.Get("/accounts/:id/ledger", s.getAccountLedger)

	api.Post("/accounts", s.postAccount)
	api.Post("/payment-methods", s.postPaymentMethod)

	api.Post("/expenses", postFlow(s.ledger.AddExpense))
	api.Put("/expenses/:id", putFlow(s.ledger.UpdateExpense, func(e *budget.Expense, id string) { e.ID = id }))
	api.Delete("/expenses/:id", deleteRecord(s.ledger.DeleteExpense))

	api.Post("/incomes", postFlow(s.ledger.AddIncome))
	api.Put("/incomes/:id", putFlow(s.ledger.UpdateIncome, func(i *budget.Income, id string) { i.ID = id }))
	api.Delete("/incomes/:id", deleteRecord(s.ledger.DeleteIncome))

	api.Post("/transfers", postFlow(s.ledger.AddTransfer))
	api.Put("/transfers/:id", putFlow(s.ledger.UpdateTransfer, func(t *budget.Transfer, id string) { t.ID = id }))
	api.Delete("/transfers/:id", deleteRecord(s.ledger.DeleteTransfer))

	api.Post("/categories", s.postCategory)
	api.Post("/categories/:id/subcategories", s.postSubcategory)
	api.Put("/settings/currency", s.putCurrency)

	api.Post("/suggest/subcategories", s.postSuggest)
	api.Post("/insights/patterns", s.postPatterns)
}

// errorHandler answers errors as {"error": message}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, budget.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, budget.ErrInvalid), errors.Is(err, budget.ErrSameAccount):
		code = fiber.StatusBadRequest
	default:
		log.Printf("request-failed method=%s path=%q err=%q", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
