// Package process runs the display show and reset scripts.
//
// Runner wraps os/exec for short-lived shell snippets:
//   - Each script runs as the last argument of a shell (sh -c by default)
//     in its own process group
//   - Standard output is logged at info, standard error at warn
//   - On timeout or cancellation the group gets SIGINT, then SIGKILL
//   - Each run publishes a ScriptFinishedEvent with the exit status
//
// Example:
//
//	r := process.NewRunner(logging.GetLogger("scripts"), process.WithTimeout(10*time.Second))
//	code, err := r.Run(ctx, process.Script{Name: "show", Command: "fbset -fb /dev/fb1 -g 640 480 640 960 16"})
package process
