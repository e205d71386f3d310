// Package executor replays a scripted sequence of host events against the
// engine. Frames are handed to a pool of workers; the events of one frame
// run in order on a single worker, the way one render thread would issue
// them.
package executor
