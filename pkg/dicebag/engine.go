package dicebag

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chosenoffset/dicebag/pkg/dicebag/actions"
	"github.com/chosenoffset/dicebag/pkg/dicebag/dice"
	"github.com/chosenoffset/dicebag/pkg/dicebag/metrics"
	"github.com/chosenoffset/dicebag/pkg/dicebag/parser"
)

// Engine parses notations under a set of limits, evaluates them, records
// each roll and notifies registered action handlers.
// It is safe for concurrent use as long as its generator is.
type Engine struct {
	generator      dice.Generator
	evaluator      *Evaluator
	roller         *Roller
	actionRegistry *actions.ActionRegistry
	collector      *metrics.RollCollector
	logger         *zap.Logger
	transformer    RollTransformer

	limits *Limits
	mutex  sync.RWMutex
}

// RollRecord is the outcome of Engine.Roll.
type RollRecord struct {
	// ID uniquely identifies the roll.
	ID string `json:"id"`
	// Notation is the canonical form of the rolled notation.
	Notation  string    `json:"notation"`
	Timestamp time.Time `json:"timestamp"`
	RollHistory
}

// Option configures an Engine.
type Option func(*Engine)

// WithGenerator sets the source of die results. The default is a
// RandomGenerator seeded from the current time.
func WithGenerator(gen dice.Generator) Option {
	return func(e *Engine) {
		e.generator = gen
	}
}

// WithLogger sets the logger used for engine diagnostics and the default
// log action handler.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLimits replaces DefaultLimits.
func WithLimits(limits *Limits) Option {
	return func(e *Engine) {
		e.limits = limits
	}
}

// WithTransformer applies fn to every dice group rolled by Engine.Roll.
func WithTransformer(fn RollTransformer) Option {
	return func(e *Engine) {
		e.transformer = fn
	}
}

// WithCollector sets the collector that receives every roll.
func WithCollector(collector *metrics.RollCollector) Option {
	return func(e *Engine) {
		e.collector = collector
	}
}

// NewEngine creates an engine. Without options it rolls with a time-seeded
// generator, applies DefaultLimits and discards its logs.
func NewEngine(opts ...Option) *Engine {
	engine := &Engine{
		actionRegistry: actions.NewActionRegistry(),
		limits:         DefaultLimits(),
	}
	for _, opt := range opts {
		opt(engine)
	}

	if engine.generator == nil {
		engine.generator = dice.NewRandomGenerator(time.Now().UnixNano())
	}
	if engine.logger == nil {
		engine.logger = zap.NewNop()
	}
	if engine.collector == nil {
		engine.collector = metrics.NewRollCollector(1000)
	}

	engine.evaluator = NewEvaluator(engine.generator)
	var rollerOpts []RollerOption
	if engine.transformer != nil {
		rollerOpts = append(rollerOpts, WithRollTransformer(engine.transformer))
	}
	engine.roller = NewRoller(engine.generator, rollerOpts...)

	logHandler := actions.NewLogHandler(engine.logger)
	engine.actionRegistry.RegisterHandler(actions.RollAction, logHandler)
	engine.actionRegistry.RegisterHandler(actions.RejectedAction, logHandler)

	return engine
}

// Parse parses notation and checks it against the engine limits.
//
// Returns an error if:
//   - The notation has syntax errors (*parser.ParseError)
//   - A limit is exceeded (*LimitError)
func (e *Engine) Parse(notation string) (parser.Expression, error) {
	limits := e.GetLimits()

	if err := limits.CheckNotation(notation); err != nil {
		return nil, err
	}
	expr, err := parser.Parse(notation)
	if err != nil {
		return nil, err
	}
	if err := limits.CheckExpression(expr); err != nil {
		return nil, err
	}
	return expr, nil
}

// Roll simulates notation, records the result and dispatches a RollAction.
// Rejected notations dispatch a RejectedAction before the error is
// returned.
func (e *Engine) Roll(notation string) (RollRecord, error) {
	expr, err := e.Parse(notation)
	if err != nil {
		e.reject(notation, err)
		return RollRecord{}, err
	}

	history, err := e.roller.Roll(expr)
	if err != nil {
		e.logger.Error("Roll failed", zap.String("notation", notation), zap.Error(err))
		return RollRecord{}, err
	}

	record := RollRecord{
		ID:          uuid.NewString(),
		Notation:    expr.String(),
		Timestamp:   time.Now(),
		RollHistory: history,
	}

	e.collector.Record(metrics.RollEntry{
		ID:        record.ID,
		Notation:  record.Notation,
		Total:     record.Total,
		Text:      record.Text,
		Results:   record.Results,
		Timestamp: record.Timestamp,
	})

	action := e.actionRegistry.CreateAction(actions.RollAction, record.Notation)
	action.ID = record.ID
	action.Total = record.Total
	action.Text = record.Text
	action.Payload = record
	if err := e.actionRegistry.ExecuteAction(action); err != nil {
		e.logger.Warn("Roll action handler failed", zap.String("id", record.ID), zap.Error(err))
	}

	return record, nil
}

// Evaluate returns the total of notation without keeping individual rolls.
func (e *Engine) Evaluate(notation string) (int, error) {
	expr, err := e.Parse(notation)
	if err != nil {
		e.reject(notation, err)
		return 0, err
	}
	return e.evaluator.Eval(expr)
}

// Bounds returns the smallest and largest totals notation can produce.
func (e *Engine) Bounds(notation string) (int, int, error) {
	expr, err := e.Parse(notation)
	if err != nil {
		return 0, 0, err
	}
	return boundsOf(expr)
}

func boundsOf(expr parser.Expression) (int, int, error) {
	// Subtraction swaps which extreme of the right operand is used.
	switch node := expr.(type) {
	case *parser.InfixExpression:
		leftMin, leftMax, err := boundsOf(node.Left)
		if err != nil {
			return 0, 0, err
		}
		rightMin, rightMax, err := boundsOf(node.Right)
		if err != nil {
			return 0, 0, err
		}
		if node.Operator == "-" {
			return leftMin - rightMax, leftMax - rightMin, nil
		}
		return leftMin + rightMin, leftMax + rightMax, nil
	default:
		minimum, err := NewEvaluatorWithResolver(MinimumResolver).Eval(expr)
		if err != nil {
			return 0, 0, err
		}
		maximum, err := NewEvaluatorWithResolver(MaximumResolver).Eval(expr)
		if err != nil {
			return 0, 0, err
		}
		return minimum, maximum, nil
	}
}

func (e *Engine) reject(notation string, err error) {
	e.collector.RecordRejected()

	action := e.actionRegistry.CreateAction(actions.RejectedAction, notation)
	action.Message = err.Error()
	if execErr := e.actionRegistry.ExecuteAction(action); execErr != nil {
		e.logger.Warn("Rejected action handler failed", zap.Error(errors.Join(err, execErr)))
	}
}

// RegisterHandler adds a handler for actionType.
func (e *Engine) RegisterHandler(actionType actions.ActionType, handler actions.ActionHandler) {
	e.actionRegistry.RegisterHandler(actionType, handler)
}

// SetLimits updates the limits
func (e *Engine) SetLimits(limits *Limits) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.limits = limits
}

// GetLimits returns the current limits
func (e *Engine) GetLimits() *Limits {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.limits
}

// Collector returns the collector receiving every roll.
func (e *Engine) Collector() *metrics.RollCollector {
	return e.collector
}
