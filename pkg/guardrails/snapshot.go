package guardrails

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Snapshot is one fully-built configuration generation: the loaded
// catalog, the rendered prompt text and the compiled engine. It is
// immutable; a reload builds a whole new Snapshot.
type Snapshot struct {
	// Catalog is the loaded guardrail list in load order.
	Catalog []*Guardrail

	// PromptText is RenderPrompt(Catalog), computed once at build time.
	PromptText string

	// Engine is the compiled scan engine for this generation.
	Engine *Engine

	// Generation is a monotonically increasing build counter.
	Generation uint64

	// BuiltAt records when this generation was constructed.
	BuiltAt time.Time
}

// BuildOptions controls snapshot construction.
type BuildOptions struct {
	// Enabled gates whether any loading happens at all. When false the
	// snapshot carries an empty catalog and an identity engine.
	Enabled bool

	// Enforce gates whether regex rules are compiled into the engine.
	// When false, guardrails load and render into the prompt but the
	// engine is the identity.
	Enforce bool

	// Root is the primary workspace guardrails directory.
	Root string

	// ExtraDirs are additional manifest roots merged after Root, in
	// order, with first-seen names winning.
	ExtraDirs []string
}

// Holder owns the current snapshot generation and hands out read-only
// references. Consumers call Current on each request; swaps are atomic,
// and in-flight scans keep whichever engine reference they captured.
type Holder struct {
	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
	loader     *Loader
	logger     *slog.Logger
}

// NewHolder creates a holder primed with an empty generation so Current
// never returns nil.
func NewHolder(logger *slog.Logger) *Holder {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Holder{
		loader: NewLoader(logger),
		logger: logger.With("component", "guardrails.holder"),
	}
	h.current.Store(&Snapshot{
		Engine:  NewEngine(nil),
		BuiltAt: time.Now(),
	})
	return h
}

// Current returns the active snapshot. The returned value is shared and
// read-only; it remains valid for the caller even after a reload swaps
// in a newer generation.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Reload builds a new generation from disk and swaps it in atomically.
// Loading is soft-failing throughout, so Reload always succeeds in
// producing a generation; the worst case is an empty one.
func (h *Holder) Reload(opts BuildOptions) *Snapshot {
	snap := Build(opts, h.logger)
	snap.Generation = h.generation.Add(1)
	h.current.Store(snap)

	h.logger.Info("guardrail snapshot swapped",
		"generation", snap.Generation,
		"guardrails", len(snap.Catalog),
		"filters", snap.Engine.FilterCount(),
	)
	return snap
}

// Build constructs a snapshot from the given options without touching
// any shared state.
func Build(opts BuildOptions, logger *slog.Logger) *Snapshot {
	if logger == nil {
		logger = slog.Default()
	}

	snap := &Snapshot{BuiltAt: time.Now()}

	if !opts.Enabled {
		snap.Engine = NewEngine(nil)
		return snap
	}

	snap.Catalog = NewLoader(logger).Load(opts.Root, opts.ExtraDirs...)
	snap.PromptText = RenderPrompt(snap.Catalog)

	if opts.Enforce {
		snap.Engine = Compile(snap.Catalog, logger)
	} else {
		// Loaded but inert: prompt text still renders, nothing scans.
		snap.Engine = NewEngine(nil)
	}

	return snap
}
