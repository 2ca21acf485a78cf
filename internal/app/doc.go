// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the lifecycle of loading an extension and
// evaluating host expressions against it, decoupled from any specific
// entrypoint like a CLI or server.
package app
