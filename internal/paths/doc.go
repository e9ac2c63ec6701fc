// Provides platform-appropriate locations for podsmith's files.
//
// Configuration and key material follow XDG conventions on Linux and the
// platform-native equivalents on macOS and Windows, always under a "podsmith"
// subdirectory. The SSH key pair is the exception: it defaults to the user's
// ~/.ssh directory so the generated key is picked up by ssh without extra
// configuration.
package paths
