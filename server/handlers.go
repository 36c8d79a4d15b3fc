package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/budget"
	"github.com/etnz/budget/agent"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func badRequest(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
}

// GET /api/snapshot
func (s *Server) getSnapshot(c *fiber.Ctx) error {
	snap := s.ledger.Snapshot()
	body := fiber.Map{"mode": s.coord.Mode()}
	for _, col := range budget.Collections {
		body[string(col)] = snap.Value(col)
	}
	return c.JSON(body)
}

func queryRange(c *fiber.Ctx) (budget.Range, error) {
	r, err := budget.ParseRange(c.Query("period"))
	if err != nil {
		return r, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return r, nil
}

type journalEntry struct {
	Date        budget.Date     `json:"date"`
	ID          string          `json:"id"`
	Kind        budget.Kind     `json:"kind"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Effect      decimal.Decimal `json:"effect"`
	Balance     decimal.Decimal `json:"balance"`
}

// GET /api/journal?period=FROM..TO
func (s *Server) getJournal(c *fiber.Ctx) error {
	r, err := queryRange(c)
	if err != nil {
		return err
	}
	entries := []journalEntry{}
	for _, e := range s.ledger.Snapshot().Journal() {
		if !r.Contains(e.Date) {
			continue
		}
		entries = append(entries, journalEntry{e.Date, e.ID, e.Kind, e.Description, e.Debit, e.Credit, e.Effect, e.Balance})
	}
	return c.JSON(entries)
}

type total struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

func totals(list []budget.Total) []total {
	result := []total{}
	for _, t := range list {
		result = append(result, total{t.ID, t.Name, t.Amount})
	}
	return result
}

// GET /api/dashboard?recent=5
func (s *Server) getDashboard(c *fiber.Ctx) error {
	d := s.ledger.Snapshot().Dashboard(c.QueryInt("recent", 5))
	recent := d.Recent
	if recent == nil {
		recent = []budget.Expense{}
	}
	return c.JSON(fiber.Map{
		"currency":      d.Currency,
		"cash":          d.Cash,
		"bank":          d.Bank,
		"creditCardDue": d.CreditCardDue,
		"netWorth":      d.NetWorth,
		"recent":        recent,
		"byCategory":    totals(d.ByCategory),
	})
}

// GET /api/breakdown?direction=expense&period=FROM..TO
func (s *Server) getBreakdown(c *fiber.Ctx) error {
	dir, err := budget.ParseDirection(c.Query("direction", string(budget.Outgoing)))
	if err != nil {
		return err
	}
	r, err := queryRange(c)
	if err != nil {
		return err
	}
	b := s.ledger.Snapshot().Breakdown(dir, r)
	categories := []fiber.Map{}
	for _, cat := range b.Categories {
		categories = append(categories, fiber.Map{
			"id":            cat.ID,
			"name":          cat.Name,
			"amount":        cat.Amount,
			"subcategories": totals(cat.Subcategories),
		})
	}
	return c.JSON(fiber.Map{
		"direction":  b.Direction,
		"currency":   b.Currency,
		"total":      b.Total,
		"categories": categories,
	})
}

// GET /api/accounts/:id/ledger
func (s *Server) getAccountLedger(c *fiber.Ctx) error {
	lines, err := s.ledger.Snapshot().AccountLedger(c.Params("id"))
	if err != nil {
		return err
	}
	type line struct {
		Date        budget.Date     `json:"date"`
		ID          string          `json:"id"`
		Kind        budget.Kind     `json:"kind"`
		Description string          `json:"description"`
		In          decimal.Decimal `json:"in"`
		Out         decimal.Decimal `json:"out"`
		Balance     decimal.Decimal `json:"balance"`
	}
	result := []line{}
	for _, l := range lines {
		result = append(result, line{l.Date, l.ID, l.Kind, l.Description, l.In, l.Out, l.Balance})
	}
	return c.JSON(result)
}

// POST /api/accounts
func (s *Server) postAccount(c *fiber.Ctx) error {
	var body budget.Account
	if err := c.BodyParser(&body); err != nil {
		return badRequest(err)
	}
	a, err := s.ledger.AddAccount(body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

// POST /api/payment-methods
func (s *Server) postPaymentMethod(c *fiber.Ctx) error {
	var body budget.PaymentMethod
	if err := c.BodyParser(&body); err != nil {
		return badRequest(err)
	}
	pm, err := s.ledger.AddPaymentMethod(body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(pm)
}

func postFlow[T any](add func(T) (T, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body T
		if err := c.BodyParser(&body); err != nil {
			return badRequest(err)
		}
		rec, err := add(body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

func putFlow[T any](update func(T) error, setID func(*T, string)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body T
		if err := c.BodyParser(&body); err != nil {
			return badRequest(err)
		}
		setID(&body, c.Params("id"))
		if err := update(body); err != nil {
			return err
		}
		return c.JSON(body)
	}
}

func deleteRecord(del func(string) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := del(c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/categories
func (s *Server) postCategory(c *fiber.Ctx) error {
	var body struct {
		Name string           `json:"name"`
		Type budget.Direction `json:"type"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(err)
	}
	cat, err := s.ledger.AddCategory(body.Name, body.Type)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}

// POST /api/categories/:id/subcategories
func (s *Server) postSubcategory(c *fiber.Ctx) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(err)
	}
	parent, ok := s.ledger.Snapshot().Category(c.Params("id"))
	if !ok {
		return fmt.Errorf("category %q: %w", c.Params("id"), budget.ErrNotFound)
	}
	sub, err := s.ledger.AddSubcategory(parent, body.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// PUT /api/settings/currency
func (s *Server) putCurrency(c *fiber.Ctx) error {
	var body budget.Settings
	if err := c.BodyParser(&body); err != nil {
		return badRequest(err)
	}
	if err := s.ledger.SetCurrency(body.Currency); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"currency": s.ledger.Snapshot().Currency()})
}

func (s *Server) advisor() (*agent.Advisor, error) {
	if s.cfg.Advisor == nil {
		return nil, fiber.NewError(fiber.StatusNotImplemented, "AI suggestions are not configured")
	}
	return s.cfg.Advisor, nil
}

// POST /api/suggest/subcategories
func (s *Server) postSuggest(c *fiber.Ctx) error {
	advisor, err := s.advisor()
	if err != nil {
		return err
	}
	var body struct {
		CategoryID  string `json:"categoryId"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(err)
	}
	cat, ok := s.ledger.Snapshot().Category(body.CategoryID)
	if !ok {
		return fmt.Errorf("category %q: %w", body.CategoryID, budget.ErrNotFound)
	}
	req := agent.SubcategoryRequest{Category: cat.Name, Description: strings.TrimSpace(body.Description)}
	for _, sub := range cat.Subcategories {
		req.Examples = append(req.Examples, sub.Name)
	}
	names, err := advisor.SuggestSubcategories(c.UserContext(), req)
	if err != nil {
		return suggestionFailed(err)
	}
	return c.JSON(fiber.Map{"subcategories": names})
}

// POST /api/insights/patterns
func (s *Server) postPatterns(c *fiber.Ctx) error {
	advisor, err := s.advisor()
	if err != nil {
		return err
	}
	patterns, err := advisor.DiscoverPatterns(c.UserContext(), agent.ExpenseSummaries(s.ledger.Snapshot()))
	if err != nil {
		return suggestionFailed(err)
	}
	return c.JSON(fiber.Map{"patterns": patterns})
}

// suggestionFailed keeps input errors and reports model failures as 502.
func suggestionFailed(err error) error {
	if errors.Is(err, budget.ErrInvalid) {
		return err
	}
	return fiber.NewError(fiber.StatusBadGateway, err.Error())
}
