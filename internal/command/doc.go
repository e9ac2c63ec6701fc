// Package command runs external programs and normalizes their results.
//
// Every interaction with the container runtime and with ssh-keygen goes
// through an [Executor]. Arguments are always passed as an argument vector,
// so user-supplied image names and search terms can never be reinterpreted
// by a shell. A zero exit status yields a [Result]; anything else yields an
// [ExecutionError] carrying the exit code and captured stderr.
//
// Structured (JSON) runtime output is decoded with [DecodeRecords], which
// reports malformed output as a [DecodeError]. The two error types are kept
// apart so callers can tell "the command failed" from "the command succeeded
// but printed something unexpected".
//
// Example usage:
//
//	exe := command.New(command.WithTimeout(time.Minute))
//
//	res, err := exe.Run(ctx, "podman", "container", "ls", "--format", "json")
//	if err != nil {
//	    return err
//	}
//
//	records, err := command.DecodeRecords[record](res, "podman container ls")
package command
