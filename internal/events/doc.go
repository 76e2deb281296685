// Package events decouples the services that observe something happening
// (a user registering, a password reset being requested) from the
// background work it triggers. Services emit events; handlers registered
// on the emitter turn them into persisted tasks.
package events
