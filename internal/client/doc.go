// Package client is a Go client for the UI host API.
//
// Every request carries a fresh X-Trace-ID so host logs can be correlated
// with the caller. Stream subscribes to the lifecycle event feed.
package client
