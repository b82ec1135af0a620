// Package server exposes the task and reminder operations as a JSON API.
package server

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/nibzard/taskremind/internal/app"
	"github.com/nibzard/taskremind/internal/due"
	"github.com/nibzard/taskremind/internal/export"
	"github.com/nibzard/taskremind/internal/logging"
	"github.com/nibzard/taskremind/internal/reminder"
	"github.com/nibzard/taskremind/internal/store"
	"github.com/nibzard/taskremind/internal/todo"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now for due-soon evaluation.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server routes HTTP requests to an App.
type Server struct {
	fiber  *fiber.App
	svc    *app.App
	logger *log.Logger
	now    func() time.Time
}

// New builds the fiber app and registers the routes.
func New(svc *app.App, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.fiber = fiber.New(fiber.Config{
		AppName:               "taskremind",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.fiber.Use(recover.New())
	s.fiber.Use(s.requestLogger)
	s.routes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.fiber
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.fiber.Listen(addr)
	}()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.fiber.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}

func (s *Server) routes() {
	api := s.fiber.Group("/api")

	employees := api.Group("/employees")
	employees.Get("/", s.listEmployees)
	employees.Post("/", s.createEmployee)
	employees.Delete("/:id", s.deleteEmployee)
	employees.Get("/:id/tasks", s.listTasks)
	employees.Post("/:id/tasks", s.createTask)
	employees.Post("/:id/tasks/:index/complete", s.completeTask)
	employees.Delete("/:id/tasks/:index", s.deleteTask)

	reminders := api.Group("/reminders")
	reminders.Get("/", s.previewReminders)
	reminders.Post("/send", s.sendReminders)

	api.Get("/export", s.exportTasks)
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		status = statusFor(err)
	}
	s.logger.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start),
	)
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	var fe *fiber.Error
	var pe *todo.ParseError
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &pe), errors.As(err, &ve), errors.Is(err, store.ErrInvalidIdentifier):
		return fiber.StatusBadRequest
	case errors.Is(err, app.ErrUnknownEmployee), errors.Is(err, store.ErrIndexOutOfRange):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

type employeeRequest struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

type taskRequest struct {
	Task     string `json:"task"`
	Priority string `json:"priority"`
	DueDate  string `json:"due_date"`
}

type taskResponse struct {
	Index int `json:"index"`
	todo.Task
	DueSoon bool `json:"due_soon"`
}

type reminderResponse struct {
	Employee string `json:"employee"`
	Address  string `json:"address"`
	Index    int    `json:"index"`
	Task     string `json:"task"`
	DueDate  string `json:"due_date"`
	Message  string `json:"message"`
}

func (s *Server) listEmployees(c *fiber.Ctx) error {
	employees, err := s.svc.Employees()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"employees": employees})
}

func (s *Server) createEmployee(c *fiber.Ctx) error {
	var req employeeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	emp, err := s.svc.AddEmployee(req.ID, req.Address)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(emp)
}

func (s *Server) deleteEmployee(c *fiber.Ctx) error {
	if err := s.svc.RemoveEmployee(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listTasks(c *fiber.Ctx) error {
	tasks, err := s.svc.Tasks(c.Params("id"))
	if err != nil {
		return err
	}
	now := s.now()
	out := make([]taskResponse, 0, len(tasks))
	for i, t := range tasks {
		soon, _ := due.IsDueSoon(t, now)
		out = append(out, taskResponse{Index: i + 1, Task: t, DueSoon: soon})
	}
	return c.JSON(fiber.Map{"tasks": out})
}

func (s *Server) createTask(c *fiber.Ctx) error {
	var req taskRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	task, err := s.svc.AddTask(c.Params("id"), req.Task, req.Priority, req.DueDate)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (s *Server) completeTask(c *fiber.Ctx) error {
	index, err := indexParam(c)
	if err != nil {
		return err
	}
	task, err := s.svc.CompleteTask(c.Params("id"), index)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

func (s *Server) deleteTask(c *fiber.Ctx) error {
	index, err := indexParam(c)
	if err != nil {
		return err
	}
	task, err := s.svc.DeleteTask(c.Params("id"), index)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

func (s *Server) previewReminders(c *fiber.Ctx) error {
	now, err := s.evalTime(c)
	if err != nil {
		return err
	}
	scan, err := s.svc.Scan(now)
	if err != nil && scan.At.IsZero() {
		return err
	}
	return c.JSON(fiber.Map{
		"at":        scan.At,
		"reminders": reminders(scan.Reminders),
		"errors":    errorStrings(scan.Errors),
	})
}

func (s *Server) sendReminders(c *fiber.Ctx) error {
	now, err := s.evalTime(c)
	if err != nil {
		return err
	}
	result, err := s.svc.Notify(c.UserContext(), now)
	if err != nil && result.Scan.At.IsZero() {
		return err
	}
	failed := make([]fiber.Map, 0, len(result.Failed))
	for _, f := range result.Failed {
		failed = append(failed, fiber.Map{
			"employee": f.Reminder.Employee,
			"index":    f.Reminder.Index,
			"error":    f.Err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"at":      result.Scan.At,
		"sent":    reminders(result.Sent),
		"skipped": reminders(result.Skipped),
		"failed":  failed,
		"errors":  errorStrings(result.Scan.Errors),
	})
}

func (s *Server) exportTasks(c *fiber.Ctx) error {
	entries, err := s.svc.AllTasks()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, entries, s.now()); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=tasks.xlsx")
	return c.Send(buf.Bytes())
}

// evalTime returns the ?at= override or the current time.
func (s *Server) evalTime(c *fiber.Ctx) (time.Time, error) {
	now := s.now()
	at := c.Query("at")
	if at == "" {
		return now, nil
	}
	return due.ParseAt(at, now.Location())
}

func indexParam(c *fiber.Ctx) (int, error) {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "task index must be a number")
	}
	return index, nil
}

func reminders(rs []reminder.Reminder) []reminderResponse {
	out := make([]reminderResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, reminderResponse{
			Employee: r.Employee,
			Address:  r.Address,
			Index:    r.Index,
			Task:     r.Task.Description,
			DueDate:  r.Task.DueDate,
			Message:  r.Message,
		})
	}
	return out
}

func errorStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}
