// Package service provides application-level services for questions and
// answer generation. Services own transactions and coordinate stores,
// the generator, and event emission; HTTP handlers and background tasks
// stay thin on top of them.
package service
