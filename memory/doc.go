// Package memory persists a session's message log between runs.
//
// Persistence model:
//   - Every message variant is stored, tool calls and results included, so a
//     reloaded log replays to the provider exactly as it was sent.
//   - Stores only ever append completed turns; a failed turn writes nothing.
package memory
