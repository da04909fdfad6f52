// Package lifecycle runs the video and audio loops on dedicated OS threads
// and shuts them down together on an interrupt.
//
// Each loop receives an Env carrying its cancellation flag. The flag is
// written once by the interrupt path and polled by the loop at the top of
// every iteration, so a loop may run one extra iteration after Cancel.
// Loops report failure only through their return value: ErrSetup ends the
// process with a failure status, ErrIO ends that loop alone.
package lifecycle
