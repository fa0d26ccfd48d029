// Package ui provides the styled output used by ccdash's one-shot commands
// (status, history, export, transfer). The full-screen dashboard lives in
// internal/dashboard and shares this palette.
//
// # Color Scheme
//
//	ColorSuccess (green)  - Healthy devices, completed requests
//	ColorWarning (yellow) - Warning tier
//	ColorError   (red)    - Critical tier, failures
//	ColorInfo    (cyan)   - Informational messages
//	ColorMuted   (gray)   - Secondary text, timing info
//
// TierColor and ThresholdColor map health tiers and raw percentages onto the
// palette using the configured thresholds. Use DisableColors() for --no-color
// or when stdout is not a terminal.
//
// # Components
//
//	Spinner           - Animated label while a request is in flight
//	RenderProgressBar - Metric gauge: [████████░░░░]  67.0%
//	RenderSparkline   - Eight-level trend line for a history series
//	RenderRosterTable - Device list for `ccdash status`
//	RenderSimpleTable - Bubbles table rendered once, for history output
//	PickRecipients    - Huh multi-select with "Select all" plus confirm
//
// Spinner usage:
//
//	s := ui.NewSpinner("Fetching devices", os.Stderr, ui.IsTerminal(os.Stderr))
//	err := s.Run(func() error { ... })
package ui
