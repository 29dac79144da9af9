// Package sim drives simulations frame by frame.
//
// A [Scheduler] turns a [Frames] source into clamped dt ticks and can be
// cancelled at any time. A [Controller] layers the run lifecycle on top
// (launch, pause, resume, reset, close) and notifies observers after every
// tick. [Run] and [Ensemble] use the same path headlessly over
// [ManualFrames].
package sim
