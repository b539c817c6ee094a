// Package toolbox provides the block palette data model and block libraries.
//
// # Overview
//
// Blockpad can source block definitions from two places:
//
//   - The builtin library (logic, loops, math, text, variables)
//   - TOML library files describing custom block types and palette layouts
//
// A [Toolbox] holds an ordered set of block definitions plus the categories
// that present them to a user. Hosts render the categories however they
// like; the core only guarantees that every palette entry resolves to a
// registered block type.
//
// # Building a Registry
//
// Use [Builtin] for the standard library, [LoadFile] for a custom one, and
// [Merge] to layer them:
//
//	custom, err := toolbox.LoadFile("sound.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tb := toolbox.Merge(toolbox.Builtin(), custom)
//	registry, err := tb.Registry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ws := block.NewWorkspace(registry)
//
// Merging is last-writer-wins: a custom definition with a builtin's type id
// replaces it, and a category with an existing name appends its blocks to
// that category.
//
// # Mutating Blocks
//
// Two builtin types carry mutation codecs, which serialize block shapes
// that differ from their definition baseline:
//
//   - controls_if grows else-if and else arms ({"elseif": 2, "else": 1})
//   - text_join joins a variable number of pieces ({"items": 4})
//
// TOML libraries cannot declare mutation codecs; shapes that change at
// runtime require code and so are reserved for compiled-in definitions.
//
// # Library Format
//
// See [Parse] for the TOML format reference.
package toolbox
