// Package pkg provides the core libraries for Blockpad visual programs.
//
// # Overview
//
// Blockpad edits and renders block-based visual programs: blocks snap
// together into stacks and expressions, save as portable JSON documents,
// and render as canvas or node-link diagrams. The pkg directory is
// organized into four main areas:
//
//  1. [block] - Domain logic (workspace, blocks, connections, definitions)
//  2. [document] - Serialization (portable JSON wire format)
//  3. [render] - Visualization (canvas and node-link views)
//  4. [pipeline] - Orchestration (build → layout → render)
//
// plus infrastructure shared by the CLI and the HTTP server: [store],
// [cache], [toolbox], [io], [errors], [observability], and [buildinfo].
//
// # Architecture
//
// The typical data flow through Blockpad:
//
//	Document JSON
//	         ↓
//	    [document] package (decode into a workspace)
//	         ↓
//	    [block] package (live model, editing, validation)
//	         ↓
//	    [render] package (geometry + output sinks)
//	         ↓
//	    SVG/PDF/PNG/JSON/DOT output
//
// # Quick Start
//
// Load a document and render a canvas visualization:
//
//	import (
//	    "github.com/matzehuels/blockpad/pkg/block"
//	    "github.com/matzehuels/blockpad/pkg/document"
//	    "github.com/matzehuels/blockpad/pkg/render/canvas"
//	    "github.com/matzehuels/blockpad/pkg/toolbox"
//	)
//
//	// 1. Build a registry from the builtin block library
//	registry, _ := toolbox.Builtin().Registry()
//
//	// 2. Decode the document into a workspace
//	ws := block.NewWorkspace(registry)
//	doc, _ := document.ReadFile("program.json")
//	_ = document.Decode(ws, doc)
//
//	// 3. Compute geometry
//	layout := canvas.Compute(ws, canvas.Options{})
//
//	// 4. Render to SVG
//	svg := canvas.RenderSVG(layout)
//
// The [pipeline] package wraps steps 2-4 behind options, caching, and
// logging; hosts normally go through it instead.
//
// # Main Packages
//
// ## Core Domain Logic
//
// [block] - The live model. A Workspace instantiates blocks from registered
// definitions; connections enforce kind compatibility, single occupancy,
// and cycle rejection; edits emit synchronous events for hosts.
//
// [document] - The wire format. Encode captures a workspace as a tree of
// nodes with fields, children, and next chains; Decode rebuilds it
// atomically. Round trips preserve IDs, order, and flags.
//
// [toolbox] - Palette categories over block definitions: the builtin
// library plus TOML block libraries loaded at runtime and merged.
//
// ## Visualization
//
// [render/canvas] - The editing view. Computes absolute geometry for every
// block, input row, field, and connector, then renders SVG, JSON, PDF, or
// PNG through pluggable styles.
//
// [render/nodelink] - Structure diagrams. Converts a workspace to DOT and
// renders it with Graphviz.
//
// [render] - Shared SVG-to-PDF/PNG conversion via rsvg-convert.
//
// ## Infrastructure
//
// [pipeline] - The build → layout → render pipeline used by the CLI and
// the server. Ensures consistent defaults, validation, caching, and
// observability across all entry points.
//
// [store] - Named document persistence: memory, file, Redis, MongoDB, and
// PostgreSQL backends behind one interface.
//
// [cache] - Byte cache for layouts, artifacts, and document payloads:
// memory, file, Redis, and null backends with hashed content keys.
//
// [io] - File-facing import and export with structural validation.
//
// [errors] - Structured error codes shared by the CLI and the HTTP API,
// plus input validators for type IDs, document IDs, and field names.
//
// [observability] - Optional hooks for pipeline stages, cache access, and
// store operations.
//
// # Common Workflows
//
// Edit a workspace programmatically:
//
//	b, _ := ws.NewBlock("text_print")
//	msg, _ := ws.NewBlock("text")
//	_ = msg.SetFieldValue("TEXT", "hello")
//	in, _ := b.Input("TEXT")
//	_ = in.Connection.Connect(msg.OutputConnection())
//
// Load a custom block library:
//
//	lib, _ := toolbox.LoadFile("sound.toml")
//	tb := toolbox.Merge(toolbox.Builtin(), lib)
//
// Run the full pipeline:
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, logger)
//	result, _ := runner.Execute(ctx, doc, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/block/...        # Specific package
//	go test -run Example ./pkg/... # Examples only
//
// [block]: https://pkg.go.dev/github.com/matzehuels/blockpad/pkg/block
// [document]: https://pkg.go.dev/github.com/matzehuels/blockpad/pkg/document
// [toolbox]: https://pkg.go.dev/github.com/matzehuels/blockpad/pkg/toolbox
// [render]: https://pkg.go.dev/github.com/matzehuels/blockpad/pkg/render
// [render/canvas]: https://pkg.go.dev/github.com/matzehuels/blockpad/pkg/render/canvas
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/blockpad/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/blockpad/pkg/pipeline
// [store]: https://pkg.go.dev/github.com/matzehuels/blockpad/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/blockpad/pkg/cache
// [io]: https://pkg.go.dev/github.com/matzehuels/blockpad/pkg/io
// [errors]: https://pkg.go.dev/github.com/matzehuels/blockpad/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/blockpad/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/blockpad/pkg/buildinfo
package pkg
