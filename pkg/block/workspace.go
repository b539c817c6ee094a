package block

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateID is returned by [Workspace.NewBlockWithID] when a block
	// with the same ID already exists in the workspace.
	ErrDuplicateID = errors.New("duplicate block ID")

	// ErrBrokenLink is returned by [Workspace.Validate] when a connection's
	// target does not point back at it. This indicates workspace corruption.
	ErrBrokenLink = errors.New("asymmetric connection link")

	// ErrOrphanBlock is returned by [Workspace.Validate] when a block has no
	// parent but is missing from the top-level list.
	ErrOrphanBlock = errors.New("block is neither top-level nor attached to a parent")

	// ErrStrayTopBlock is returned by [Workspace.Validate] when a block with
	// a parent is still listed as top-level.
	ErrStrayTopBlock = errors.New("attached block listed as top-level")

	// ErrForeignBlock is returned by [Workspace.Validate] when a linked or
	// registered block belongs to a different workspace.
	ErrForeignBlock = errors.New("block belongs to a different workspace")

	// ErrBlockCycle is returned by [Workspace.Validate] when the block forest
	// contains a cycle. Cycles are detected using depth-first search with
	// white/gray/black coloring.
	ErrBlockCycle = errors.New("block forest contains a cycle")
)

// Workspace owns a forest of blocks: the top-level roots plus everything
// attached beneath them. It resolves block types through its [Registry],
// assigns IDs, tracks the top-level list, and fans out change events.
//
// The zero value is not usable - use NewWorkspace. Workspace is not safe for
// concurrent use without external synchronization.
type Workspace struct {
	registry    *Registry
	blocks      map[string]*Block
	top         []*Block
	rtl         bool
	canvasWidth func() float64
	sink        RenderSink
	newID       func() string

	listeners  []listenerEntry
	nextListen int
	loading    bool
}

type listenerEntry struct {
	id int
	fn Listener
}

// Option configures a workspace at creation time.
type Option func(*Workspace)

// WithRTL marks the workspace as right-to-left. Documents encoded from an
// RTL workspace mirror top-level x coordinates across the canvas width, and
// decoding mirrors them back.
func WithRTL() Option {
	return func(w *Workspace) { w.rtl = true }
}

// WithCanvasWidth supplies the current canvas width in workspace units.
// The function is queried at encode and decode time, so hosts with resizable
// canvases stay accurate. Only used for RTL coordinate mirroring.
func WithCanvasWidth(width func() float64) Option {
	return func(w *Workspace) { w.canvasWidth = width }
}

// WithRenderSink routes re-render requests to the given sink instead of
// discarding them.
func WithRenderSink(sink RenderSink) Option {
	return func(w *Workspace) { w.sink = sink }
}

// WithIDGenerator replaces the default UUID generator for new block IDs.
// Tests use this for deterministic IDs.
func WithIDGenerator(fn func() string) Option {
	return func(w *Workspace) { w.newID = fn }
}

// NewWorkspace creates an empty workspace backed by the given registry.
// A nil registry is replaced by an empty one.
func NewWorkspace(registry *Registry, opts ...Option) *Workspace {
	if registry == nil {
		registry = NewRegistry()
	}
	w := &Workspace{
		registry:    registry,
		blocks:      make(map[string]*Block),
		canvasWidth: func() float64 { return 0 },
		sink:        NopRenderSink{},
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Registry returns the registry the workspace resolves block types against.
func (w *Workspace) Registry() *Registry { return w.registry }

// RTL reports whether the workspace is right-to-left.
func (w *Workspace) RTL() bool { return w.rtl }

// CanvasWidth returns the current canvas width in workspace units, used for
// RTL coordinate mirroring. Returns 0 when no width source is configured.
func (w *Workspace) CanvasWidth() float64 { return w.canvasWidth() }

// NewBlock creates a top-level block of the given type with a fresh ID.
// Returns ErrUnknownType if the type is not registered.
func (w *Workspace) NewBlock(typeID string) (*Block, error) {
	return w.NewBlockWithID(typeID, "")
}

// NewBlockWithID creates a top-level block with the given ID, or a fresh ID
// if id is empty. The document decoder uses this to preserve block IDs.
//
// Returns ErrUnknownType if the type is not registered, or ErrDuplicateID if
// the ID is already taken.
func (w *Workspace) NewBlockWithID(typeID, id string) (*Block, error) {
	def, err := w.registry.Lookup(typeID)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = w.newID()
	} else if _, exists := w.blocks[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	b, err := newBlock(w, def, id)
	if err != nil {
		return nil, err
	}
	w.blocks[id] = b
	w.addTop(b)
	w.emit(Event{Kind: EventCreate, Block: b})
	w.markDirty(b)
	return b, nil
}

// BlockByID returns the block with the given ID and true, or nil and false.
func (w *Workspace) BlockByID(id string) (*Block, bool) {
	b, ok := w.blocks[id]
	return b, ok
}

// TopBlocks returns the top-level blocks. Unordered, the result follows
// insertion order. Ordered, blocks are sorted top to bottom, ties left to
// right (right to left for RTL workspaces).
//
// The returned slice is a copy; the block pointers are live.
func (w *Workspace) TopBlocks(ordered bool) []*Block {
	out := slices.Clone(w.top)
	if ordered {
		sign := 1.0
		if w.rtl {
			sign = -1.0
		}
		slices.SortStableFunc(out, func(a, b *Block) int {
			if c := cmp.Compare(a.y, b.y); c != 0 {
				return c
			}
			return cmp.Compare(sign*a.x, sign*b.x)
		})
	}
	return out
}

// AllBlocks returns every block in the workspace in pre-order: each top-level
// block followed by its descendants. The ordered flag applies to the
// top-level traversal order, as in [Workspace.TopBlocks].
func (w *Workspace) AllBlocks(ordered bool) []*Block {
	var out []*Block
	for _, top := range w.TopBlocks(ordered) {
		out = append(out, top.Descendants()...)
	}
	return out
}

// BlockCount returns the number of live blocks in the workspace.
func (w *Workspace) BlockCount() int { return len(w.blocks) }

// Clear disposes every block in the workspace.
func (w *Workspace) Clear() {
	for _, b := range w.TopBlocks(false) {
		b.Dispose(false)
	}
}

// AddChangeListener registers a listener for workspace events and returns a
// function that removes it. Listeners run synchronously in registration
// order.
func (w *Workspace) AddChangeListener(fn Listener) (remove func()) {
	id := w.nextListen
	w.nextListen++
	w.listeners = append(w.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		w.listeners = slices.DeleteFunc(w.listeners, func(e listenerEntry) bool { return e.id == id })
	}
}

// BeginLoad suspends event and re-render notification during a bulk decode.
// Every BeginLoad must be paired with [Workspace.EndLoad].
func (w *Workspace) BeginLoad() { w.loading = true }

// EndLoad resumes notification and emits a single [EventLoad] so listeners
// can react to the finished document instead of every intermediate step.
func (w *Workspace) EndLoad() {
	w.loading = false
	w.emit(Event{Kind: EventLoad})
}

// AbortLoad resumes notification without emitting a load event. Used when a
// bulk decode fails partway and the workspace is rolled back instead.
func (w *Workspace) AbortLoad() { w.loading = false }

// RequestRender asks the render sink to redraw the block, bypassing load
// suspension. The document decoder calls this once per decoded top-level
// stack; hosts may call it to force a redraw.
func (w *Workspace) RequestRender(b *Block) {
	w.sink.NotifyDirty(b)
}

// Validate checks workspace integrity and returns nil if consistent.
// It verifies that connection links are symmetric, that all linked blocks
// belong to this workspace, that the top-level list contains exactly the
// parentless blocks, and that the block forest is acyclic.
//
// Returns ErrBrokenLink, ErrForeignBlock, ErrStrayTopBlock, ErrOrphanBlock,
// or ErrBlockCycle. Runs in O(N) time over blocks and connections.
func (w *Workspace) Validate() error {
	tops := make(map[string]bool, len(w.top))
	for _, b := range w.top {
		if b.ws != w || w.blocks[b.id] != b {
			return ErrForeignBlock
		}
		if b.Parent() != nil {
			return ErrStrayTopBlock
		}
		tops[b.id] = true
	}
	for id, b := range w.blocks {
		if b.ws != w || b.id != id {
			return ErrForeignBlock
		}
		for _, c := range b.connections() {
			t := c.Target()
			if t == nil {
				continue
			}
			if t.Target() != c {
				return ErrBrokenLink
			}
			linked := t.Block()
			if linked.ws != w || w.blocks[linked.id] != linked {
				return ErrForeignBlock
			}
		}
		if b.Parent() == nil && !tops[id] {
			return ErrOrphanBlock
		}
	}
	return w.detectCycles()
}

func (w *Workspace) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(w.blocks))
	var hasCycle bool

	var dfs func(b *Block)
	dfs = func(b *Block) {
		color[b.id] = gray
		for _, child := range b.Children() {
			switch color[child.id] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[b.id] = black
	}

	for _, b := range w.blocks {
		if color[b.id] == white {
			dfs(b)
			if hasCycle {
				return ErrBlockCycle
			}
		}
	}
	return nil
}

func (w *Workspace) addTop(b *Block) {
	if !slices.Contains(w.top, b) {
		w.top = append(w.top, b)
	}
}

func (w *Workspace) removeTop(b *Block) {
	w.top = slices.DeleteFunc(w.top, func(t *Block) bool { return t == b })
}

// removeBlock unregisters a disposed block. Called from [Block.Dispose].
func (w *Workspace) removeBlock(b *Block) {
	delete(w.blocks, b.id)
	w.removeTop(b)
	w.emit(Event{Kind: EventDispose, Block: b})
}

func (w *Workspace) emit(ev Event) {
	if w.loading {
		return
	}
	for _, l := range w.listeners {
		l.fn(ev)
	}
}

func (w *Workspace) markDirty(b *Block) {
	if w.loading {
		return
	}
	w.sink.NotifyDirty(b)
}
