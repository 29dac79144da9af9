// Package viz hosts simulations in the terminal with Bubble Tea.
//
//   - [Live]: one mounted simulation with parameter panel, readouts and a chart
//   - [Picker]: catalog menu that opens entries in a [Live] view
//   - [Canvas]: Braille pixel canvas; [Rasterize] draws a scene frame onto it
//   - [TeaFrames]: frame source backed by tea.Tick
//
// # Key Bindings
//
//	Space - Run / pause
//	L     - Launch from the initial condition
//	R     - Reset to ready
//	Tab   - Select next parameter
//	Up/Dn - Nudge the selected parameter
//	C     - Cycle plotted quantity
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
