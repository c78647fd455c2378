// Package receiver turns result bundles sent by the updater into Results,
// logs them according to their detail message policy and hands them to
// subscribers selected by glob patterns.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/revrobotics/chupdater/domain/entities"
	"github.com/revrobotics/chupdater/wireformat"
	"go.uber.org/zap"
)

// ErrInvalidPattern is returned by Subscribe for malformed glob patterns.
var ErrInvalidPattern = errors.New("invalid route pattern")

// unknownName stands in for absent enum values in route keys.
const unknownName = "UNKNOWN"

// Delivery is what a Handler receives for each result.
type Delivery struct {
	Result entities.Result
	// RouteKey is CATEGORY/PRESENTATION/CODE.
	RouteKey string
	// Display is the text to show the user: the display prefix, the
	// rendered message and, for DISPLAYED results, the detail message on
	// its own line.
	Display string
}

// Handler is called for each delivered result matching its pattern.
type Handler func(ctx context.Context, d Delivery)

// Option configures a Receiver.
type Option func(*Receiver)

// WithDisplayPrefix prepends prefix to every Delivery.Display.
func WithDisplayPrefix(prefix string) Option {
	return func(r *Receiver) {
		r.displayPrefix = prefix
	}
}

type route struct {
	pattern string
	handler Handler
}

// Receiver decodes, logs and routes updater results.
type Receiver struct {
	logger        *zap.Logger
	displayPrefix string

	mu     sync.RWMutex
	routes []route
}

// New creates a Receiver. A nil logger discards logs.
func New(logger *zap.Logger, opts ...Option) *Receiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Receiver{logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe registers h for results whose route key matches pattern.
// Patterns use doublestar syntax, e.g. "OTA_UPDATE/ERROR/*" or "**/STATUS/*".
func (r *Receiver) Subscribe(pattern string, h Handler) error {
	if h == nil {
		return fmt.Errorf("receiver: nil handler for pattern %q", pattern)
	}
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route{pattern: pattern, handler: h})
	return nil
}

// Receive decodes b and delivers the result.
func (r *Receiver) Receive(ctx context.Context, b wireformat.Bundle) entities.Result {
	result := wireformat.DecodeResult(b)
	r.Deliver(ctx, result)
	return result
}

// Deliver logs result and calls every matching handler in subscription order.
func (r *Receiver) Deliver(ctx context.Context, result entities.Result) Delivery {
	d := Delivery{
		Result:   result,
		RouteKey: RouteKey(result),
		Display:  r.display(result),
	}
	r.log(d)

	r.mu.RLock()
	routes := make([]route, len(r.routes))
	copy(routes, r.routes)
	r.mu.RUnlock()

	for _, rt := range routes {
		// Patterns were validated on Subscribe, so Match cannot fail here.
		if ok, _ := doublestar.Match(rt.pattern, d.RouteKey); ok {
			rt.handler(ctx, d)
		}
	}
	return d
}

// RouteKey returns CATEGORY/PRESENTATION/CODE for result, using UNKNOWN for
// absent enum values.
func RouteKey(result entities.Result) string {
	return nameOrUnknown(result.Category().String()) + "/" +
		nameOrUnknown(result.PresentationType().String()) + "/" +
		strconv.Itoa(result.Code())
}

func (r *Receiver) display(result entities.Result) string {
	text := r.displayPrefix + result.Message()
	if result.DetailMessageType() == entities.DetailDisplayed {
		if detail := result.DetailMessage(); detail != nil && *detail != "" {
			text += "\n" + *detail
		}
	}
	return text
}

func (r *Receiver) log(d Delivery) {
	result := d.Result
	fields := []zap.Field{
		zap.String("route", d.RouteKey),
		zap.String("message", result.Message()),
	}

	if !result.Category().Valid() || !result.PresentationType().Valid() || !result.DetailMessageType().Valid() {
		r.logger.Warn("updater result has an unknown classification", fields...)
	} else {
		r.logger.Debug("updater result", fields...)
	}

	if result.DetailMessageType() == entities.DetailLogged {
		if detail := result.DetailMessage(); detail != nil {
			r.logger.Info("updater detail", zap.String("route", d.RouteKey), zap.String("detail", *detail))
		}
	}

	if cause := result.Cause(); cause != nil {
		r.logger.Warn("updater reported a cause", zap.String("route", d.RouteKey), zap.Error(cause))
	}
}

func nameOrUnknown(name string) string {
	if name == "" {
		return unknownName
	}
	return name
}
