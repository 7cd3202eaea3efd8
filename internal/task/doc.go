// Package task provides background task processing: a persistent task
// queue, a worker pool runner with crash recovery, and the answer
// generation task that retries with backoff and falls back to a fixed
// answer when generation cannot succeed.
package task
