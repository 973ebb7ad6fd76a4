package actions

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type ActionType string

const (
	RollAction     ActionType = "roll"
	RejectedAction ActionType = "rejected"
)

// Action describes something the engine did with a notation.
type Action struct {
	Type      ActionType `json:"type"`
	ID        string     `json:"id,omitempty"`
	Notation  string     `json:"notation"`
	Total     int        `json:"total"`
	Text      string     `json:"text,omitempty"`
	Message   string     `json:"message,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	// Payload carries the full roll record for RollAction.
	Payload any `json:"payload,omitempty"`
}

type ActionHandler interface {
	Handle(action Action) error
}

// HandlerFunc adapts a function to the ActionHandler interface.
type HandlerFunc func(action Action) error

func (f HandlerFunc) Handle(action Action) error { return f(action) }

// LogHandler writes every action as a structured log entry.
type LogHandler struct {
	logger *zap.Logger
}

func NewLogHandler(logger *zap.Logger) *LogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogHandler{logger: logger}
}

func (h *LogHandler) Handle(action Action) error {
	switch action.Type {
	case RejectedAction:
		h.logger.Warn("Notation rejected",
			zap.String("notation", action.Notation),
			zap.String("reason", action.Message))
	default:
		h.logger.Info("Dice rolled",
			zap.String("id", action.ID),
			zap.String("notation", action.Notation),
			zap.String("rolls", action.Text),
			zap.Int("total", action.Total))
	}
	return nil
}

// DashboardHandler forwards actions to a broadcaster such as the dashboard
// server.
type DashboardHandler struct {
	send func(Action)
}

func NewDashboardHandler(send func(Action)) *DashboardHandler {
	return &DashboardHandler{send: send}
}

func (h *DashboardHandler) Handle(action Action) error {
	if h.send == nil {
		return fmt.Errorf("dashboard handler has no sender")
	}
	h.send(action)
	return nil
}

type ActionRegistry struct {
	mu       sync.RWMutex
	handlers map[ActionType][]ActionHandler
}

func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{
		handlers: make(map[ActionType][]ActionHandler),
	}
}

func (r *ActionRegistry) RegisterHandler(actionType ActionType, handler ActionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[actionType] = append(r.handlers[actionType], handler)
}

// HandlerCount returns the number of handlers registered for actionType.
func (r *ActionRegistry) HandlerCount(actionType ActionType) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[actionType])
}

// ExecuteAction runs every handler registered for the action's type and
// stops at the first failure. An action type with no handlers is a no-op.
func (r *ActionRegistry) ExecuteAction(action Action) error {
	r.mu.RLock()
	handlers := r.handlers[action.Type]

	// Copy handlers to release lock quickly
	handlersCopy := make([]ActionHandler, len(handlers))
	copy(handlersCopy, handlers)
	r.mu.RUnlock()

	for _, handler := range handlersCopy {
		if err := handler.Handle(action); err != nil {
			return fmt.Errorf("handler error for %s: %w", action.Type, err)
		}
	}

	return nil
}

func (r *ActionRegistry) CreateAction(actionType ActionType, notation string) Action {
	return Action{
		Type:      actionType,
		Notation:  notation,
		Timestamp: time.Now(),
	}
}
