// Package server provides the HTTP server lifecycle (non-blocking
// start, graceful shutdown, signal handling) and the websocket
// change-feed relay that streams store events to live viewers.
package server
