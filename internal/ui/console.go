package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/roach88/uisync/internal/state"
)

// ConsoleOptions configures the console primitives.
type ConsoleOptions struct {
	// Settle simulates the time a transition takes to visually settle.
	Settle time.Duration

	// ToastPosition and ToastDuration are printed with every toast,
	// mirroring the options a real toast widget is created with.
	ToastPosition string
	ToastDuration time.Duration

	Translator *Translator
	Logger     *slog.Logger
}

// Console renders every primitive call as a line of text.
// It is the UI used by the simulate command.
type Console struct {
	mu   sync.Mutex
	w    io.Writer
	opts ConsoleOptions
}

// NewConsole creates console primitives writing to w.
func NewConsole(w io.Writer, opts ConsoleOptions) *Console {
	if opts.ToastPosition == "" {
		opts.ToastPosition = "bottom"
	}
	if opts.ToastDuration == 0 {
		opts.ToastDuration = 4 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Console{w: w, opts: opts}
}

// Primitives returns the full primitive set backed by this console.
func (c *Console) Primitives() Primitives {
	return Primitives{
		Navigator: consoleNavigator{c},
		Overlays: map[state.OverlayKind]OverlayController{
			state.OverlayToast:  consoleOverlays{c, state.OverlayToast},
			state.OverlayLoader: consoleOverlays{c, state.OverlayLoader},
			state.OverlayModal:  consoleOverlays{c, state.OverlayModal},
		},
		Menu: consoleMenu{c},
	}
}

func (c *Console) settle(ctx context.Context) error {
	if c.opts.Settle <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.opts.Settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format+"\n", args...)
}

// formatParams renders params as k=v pairs in key order.
func formatParams(p state.Params) string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, p[k])
	}
	return " {" + strings.Join(parts, ", ") + "}"
}

type consoleNavigator struct{ c *Console }

func (n consoleNavigator) SetRoot(ctx context.Context, name string, params state.Params, opts NavOptions) error {
	n.c.printf("nav   set-root %s%s (animate=%t)", name, formatParams(params), opts.Animate)
	return n.c.settle(ctx)
}

func (n consoleNavigator) Push(ctx context.Context, name string, params state.Params) error {
	n.c.printf("nav   push %s%s", name, formatParams(params))
	return n.c.settle(ctx)
}

func (n consoleNavigator) Pop(ctx context.Context, opts NavOptions) error {
	n.c.printf("nav   pop (animate=%t)", opts.Animate)
	return n.c.settle(ctx)
}

type consoleOverlays struct {
	c    *Console
	kind state.OverlayKind
}

func (o consoleOverlays) Create(content string) (OverlayHandle, error) {
	return &consoleHandle{c: o.c, kind: o.kind, text: o.c.opts.Translator.Translate(content)}, nil
}

type consoleHandle struct {
	c    *Console
	kind state.OverlayKind
	text string
}

func (h *consoleHandle) Present(ctx context.Context) error {
	switch h.kind {
	case state.OverlayToast:
		h.c.printf("%-5s present %q (%s, %s)", h.kind, h.text, h.c.opts.ToastPosition, h.c.opts.ToastDuration)
	default:
		h.c.printf("%-5s present %q", h.kind, h.text)
	}
	return h.c.settle(ctx)
}

func (h *consoleHandle) Dismiss(ctx context.Context) error {
	h.c.printf("%-5s dismiss", h.kind)
	return h.c.settle(ctx)
}

type consoleMenu struct{ c *Console }

func (m consoleMenu) SetSwipeEnabled(ctx context.Context, enabled bool) error {
	m.c.printf("menu  swipe-enabled=%t", enabled)
	m.c.opts.Logger.Debug("menu swipe toggled", "enabled", enabled)
	return nil
}
