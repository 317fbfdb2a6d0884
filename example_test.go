package switchboard_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/switchboard"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

func ExampleRouter_Dispatch() {
	router := switchboard.New()

	err := router.DefineIntent(
		domain.Definition{Address: "greet", Classifiers: []string{"hello", "hi"}, Action: "greet"},
		domain.Definition{Address: "menu", Text: "/menu"},
		domain.Definition{Address: "unknown"},
	)
	if err != nil {
		log.Fatal(err)
	}

	router.RegisterAction("greet", func(ctx context.Context, msg domain.Message, conv ports.Conversation) (any, error) {
		return "hello " + msg.Sender.ID, nil
	})
	router.RegisterAction("menu", func(ctx context.Context, msg domain.Message, conv ports.Conversation) (any, error) {
		return "1. pizza 2. pasta", nil
	})
	router.RegisterAction("unknown", func(ctx context.Context, msg domain.Message, conv ports.Conversation) (any, error) {
		return "sorry?", nil
	})

	ctx := context.Background()
	if err := router.FinalizeTraining(ctx); err != nil {
		log.Fatal(err)
	}

	for _, text := range []string{"hello", "/menu", "xyzzy"} {
		res := router.Dispatch(ctx, domain.NewMessage("ana", text))
		fmt.Printf("%s -> %s: %v\n", text, res.Address, res.Output)
	}
	// Output:
	// hello -> greet: hello ana
	// /menu -> menu: 1. pizza 2. pasta
	// xyzzy -> unknown: sorry?
}
