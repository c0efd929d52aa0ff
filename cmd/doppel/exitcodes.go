package main

// Exit codes shared by every command.
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (invalid arguments, runtime failure)
	ExitNotRepository = 2 // No doppel repository or library found
	ExitNotFound      = 3 // Entry or identifier not found
	ExitDuplicate     = 4 // Import rejected candidates as duplicates
	ExitStale         = 5 // Store cache is stale and could not be rebuilt
)
