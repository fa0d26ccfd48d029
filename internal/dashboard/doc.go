// Package dashboard implements the fleet monitoring TUI.
//
// The dashboard lists every agent the server knows about, sorted worst
// health first, and shows the selected agent's recent history as braille
// charts with summary cards, trend arrows and a short live feed.
//
// # Architecture
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Session: the view-model. Holds the roster rows, selection, generation,
//     chart state, alert evaluator and toasts. Mutated only from Update.
//   - Model: key handling, layout and rendering on top of a Session.
//   - Controller: the scheduler side. Selecting an agent starts its history
//     loop and returns a generation used to drop stale responses.
//
// # Message Flow
//
//  1. The poll scheduler fetches on its own tickers and emits events.
//  2. A Relay forwards each event into the program with tea.Program.Send.
//  3. Update folds the event into the Session and schedules toast expiry.
//  4. View re-renders from the Session.
//
// # Layout Modes
//
//	LayoutMinimal  (<80 cols)  - stacked, mini sparklines
//	LayoutCompact  (80-120)    - stacked, braille graphs
//	LayoutStandard (120-160)   - roster beside the agent panel
//	LayoutWide     (160+)      - wider roster with health scores
package dashboard
