// Package generation provides the interface and parsing helpers for
// interacting with the external text-generation service. It abstracts the
// details of the provider integration, allowing the application to turn
// student questions into answers plus recommended topics without coupling
// to a specific external service.
package generation
