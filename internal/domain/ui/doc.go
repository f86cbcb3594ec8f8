// Package ui orchestrates the presentation layers of the host.
//
// Three collections are owned by the Manager:
//   - Exclusive slot: at most one full-screen instance, replaced destructively
//   - Panel stack: LIFO; only the top is active, everything below is paused
//   - Overlay set: independent instances with no pause/resume relationship
//
// Every close request funnels through CloseUI, which resolves the owning
// collection by instance handle. Lifecycle hooks are synchronous and may call
// back into the Manager.
package ui
