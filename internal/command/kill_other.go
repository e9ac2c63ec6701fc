//go:build !unix

package command

import "os/exec"

// Leaves the default cancellation (kill the direct child) in place; process
// groups are not available on this platform.
func killGroupOnCancel(cmd *exec.Cmd) {}
