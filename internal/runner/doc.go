// Package runner drives one conversational turn: it streams a completion,
// dispatches the tool calls it carries, and continues with the extended log
// until the model answers without tools.
//
// Invariant:
//   - every assistant message with tool calls is followed by exactly one
//     tool result per call, in call order, before the next streaming call.
//
// Flow:
//
//	user -> assistant(tool_calls) -> tool... -> assistant(tool_calls) -> tool... -> assistant(text)
//
// The loop is bounded by Options.MaxDepth streaming calls per turn.
package runner
