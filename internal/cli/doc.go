// Package cli implements the uictl command tree.
package cli
