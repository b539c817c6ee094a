// Package block provides the core block-tree model for visual programs:
// workspaces, blocks, typed connections, inputs, and fields.
//
// # Overview
//
// Blockpad documents are forests of blocks. Each block is an instance of a
// registered [Definition] and carries rows of inputs. Value inputs and
// statement inputs expose connection points; dummy inputs carry fields only.
// Blocks snap together through [Connection] pairs, forming trees whose roots
// are the workspace's top-level blocks.
//
// The row-based input model and the four connection kinds mirror the classic
// block-editor layout: expressions plug into value sockets, statements stack
// vertically through previous/next connectors.
//
// # Basic Usage
//
// Create a [Registry], register block definitions, then create a [Workspace]
// and instantiate blocks with [Workspace.NewBlock]:
//
//	reg := block.NewRegistry()
//	reg.MustRegister(&block.Definition{
//		Type:   "math_number",
//		Output: true,
//		Inputs: []block.InputSpec{{
//			Kind:   block.InputDummy,
//			Fields: []block.FieldSpec{{Name: "NUM", Default: "0"}},
//		}},
//	})
//
//	ws := block.NewWorkspace(reg)
//	b, _ := ws.NewBlock("math_number")
//	_ = b.SetFieldValue("NUM", "42")
//
// Attach blocks by connecting opposite connection kinds, for example a child's
// output plug into a parent's value socket:
//
//	_ = parentInput.Connection.Connect(child.OutputConnection())
//
// # Connections
//
// The four [ConnectionKind] values form two opposite pairs:
//
//   - [ConnInputValue] accepts [ConnOutputValue] (expression nesting)
//   - [ConnNextStatement] accepts [ConnPreviousStatement] (statement stacking)
//
// The kinds on the parent side ([ConnInputValue], [ConnNextStatement]) are
// superior; their counterparts are inferior. A block's parent is derived from
// its inferior connections, so the parent pointer can never drift out of sync
// with the link structure. [Connection.Connect] rejects kind mismatches,
// occupied connections, self connections, cross-workspace links, and links
// that would create a cycle.
//
// # Events
//
// A [Workspace] notifies registered listeners synchronously about block
// creation, disposal, and change, and emits a single document-loaded event
// after a bulk decode. Hosts that render blocks register a [RenderSink] to
// receive re-render requests for dirty blocks.
//
// # Concurrency
//
// Workspaces and blocks are not safe for concurrent use. Callers must
// synchronize access if multiple goroutines read or modify the same
// workspace. A [Registry] is safe for concurrent reads once registration
// has completed.
//
// # Related Packages
//
// The [document] package converts workspaces and blocks to and from their
// portable document form. The [toolbox] package ships ready-made block
// definitions and loads custom ones from TOML.
//
// [document]: github.com/matzehuels/blockpad/pkg/document
// [toolbox]: github.com/matzehuels/blockpad/pkg/toolbox
package block
