// Command uictl is the operator CLI for a running UI host.
//
//	uictl open panel inventory --args '{"slot": 3}'
//	uictl state
//	uictl close top
//	uictl watch --layer overlay
package main
