// Package task manages background job queuing, processing, and lifecycle.
// Tasks are persisted before they are queued so that work such as
// transactional email delivery survives restarts: on start the runner
// rehydrates pending and interrupted tasks through registered decoders.
package task
