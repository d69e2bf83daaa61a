// Package decors holds build metadata for the decors module.
package decors

// Version is the release version of the decors module and CLI.
const Version = "0.1.0"
