// Package store holds the mirrored garden view and publishes its changes.
//
// This package is internal to gardenwatch and keeps one [Element] per render
// target (age, plants, watchers, garden, page). It implements a
// publish-subscribe pattern for real-time updates to connected dashboard
// clients.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Element]: Storage representation of one render target
//
// The store is designed for concurrent access with proper synchronization.
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers will miss updates rather than block the system).
package store
