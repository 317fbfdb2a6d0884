// Package mcp exposes a Router as a Model Context Protocol server.
//
// Tools: dispatch_message, list_intents, get_conversation, reset_conversation.
// Resources: switchboard://intents.
package mcp
