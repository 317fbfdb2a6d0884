// Package http serves a Router over a small JSON API built on chi.
//
//	POST   /v1/messages            dispatch {sender, text}
//	GET    /v1/intents             the intent tree
//	GET    /v1/contexts            tracked senders
//	GET    /v1/contexts/{sender}   conversation snapshot
//	DELETE /v1/contexts/{sender}   forget a sender
//	GET    /v1/events?sender=...   SSE stream of the sender's results
//	GET    /health, /info, /metrics
package http
