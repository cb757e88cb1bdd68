package usecase

import "fmt"

// ErrPersistence indicates an infrastructure/repository failure inside a use case.
// Callers surface it for client-driven retry; the core never auto-retries durable
// message writes, to avoid duplicate creation.
var ErrPersistence = fmt.Errorf("messaging use case persistence error")
