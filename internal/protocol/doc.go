// Package protocol defines the wire format between podsmith and its daemon.
//
// Every message is a single JSON [Envelope] terminated by a newline. A
// request carries the command name and a command-specific payload; the
// response is either [CmdOK] with a result payload or [CmdError] with an
// [ErrorResult]. One exchange is made per connection.
//
//	{"command":"pull","payload":{"image":"ubuntu:latest"}}
//	{"command":"ok","payload":{"message":"Image ubuntu:latest pulled successfully."}}
package protocol
