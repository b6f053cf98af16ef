// Package runtime provides the execution context for st commands.
//
// It opens the repository, loads the config, builds the engine on top of
// them and connects to GitHub lazily, only for commands that need it.
package runtime
