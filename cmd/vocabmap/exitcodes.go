package main

// Exit codes used across all commands.
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError   = 2 // Configuration error (missing config, invalid paths)
	ExitDataError     = 3 // Data error (malformed input, validation failure) / Ollama not available
	ExitSessionError  = 4 // Session not found or artifact missing
	ExitModelNotFound = 5 // Embedding model not found
)
