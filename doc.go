/*
Package switchboard is a conversational intent router.

Given an inbound text message and the sender's conversation state, the router resolves which
registered action should run. Resolution combines exact-text shortcuts, a trained text
classifier scoped to the sender's current position in a hierarchical intent tree, and
per-node fallback policies.

# Concept

Intents form a tree addressed by dot-separated paths ("order", "order.item"). Every node can
carry classifier samples, an exact literal text, an action name and an alias ("call") to
another node. A sender who reaches a node with children is "inside" it: the next message is
only classified against that node's direct children. When the classifier is not confident
enough, the node's default policy decides whether the conversation stays put, goes back to the
root or falls to the "unknown" node.

# Usage

	router := switchboard.New(switchboard.WithLogger(logger))

	err := router.DefineIntent(
		domain.Definition{Address: "greet", Classifiers: []string{"hello", "hi"}, Action: "greet"},
		domain.Definition{Address: "unknown"},
	)
	if err != nil {
		log.Fatal(err)
	}

	router.RegisterAction("greet", func(ctx context.Context, msg domain.Message, conv ports.Conversation) (any, error) {
		return "hello " + msg.Sender.ID, nil
	})

	if err := router.FinalizeTraining(ctx); err != nil {
		log.Fatal(err)
	}

	res := router.Dispatch(ctx, domain.NewMessage("u1", "hello"))
	fmt.Println(res.Output)

Every message is also scored by a sentiment lexicon (pkg/sentiment); the score is on the
Result and available to actions through conv.Sentiment().

Actions can run on timers too: Schedule registers timer and one-shot schedules and
RunSchedules runs them through the same action registry until its context is canceled.

Definitions and schedules can also be loaded from YAML files with pkg/loader, and the router
can be served over HTTP (pkg/adapters/http) or as MCP tools (pkg/adapters/mcp).
*/
package switchboard
