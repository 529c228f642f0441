package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/mzanetti/turfdesk/internal/assistant"
	"github.com/mzanetti/turfdesk/internal/booking"
	"github.com/mzanetti/turfdesk/internal/brain"
	"github.com/mzanetti/turfdesk/internal/checkpoint"
	"github.com/mzanetti/turfdesk/internal/config"
	"github.com/mzanetti/turfdesk/internal/extract"
	"github.com/mzanetti/turfdesk/internal/intent"
	"github.com/mzanetti/turfdesk/internal/knowledge"
)

// turfchat is a terminal client for the assistant, wired in-process so it
// needs no running server. One invocation is one conversation thread.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	store, err := booking.NewStore(ctx, cfg.DatabaseURL, cfg.BookingsCSVPath)
	if err != nil {
		log.Fatalf("booking store init failed: %v", err)
	}
	defer store.Close()

	registry, err := checkpoint.NewRegistry(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("checkpoint registry init failed: %v", err)
	}
	defer registry.Close()

	adapter, err := brain.NewAdapter(brain.Config{
		Mode:    cfg.BrainMode,
		HTTPURL: cfg.BrainHTTPURL,
		APIKey:  cfg.BrainAPIKey,
		Model:   cfg.BrainModel,
	})
	if err != nil {
		log.Fatalf("brain adapter init failed: %v", err)
	}

	negotiator := booking.NewNegotiator(extract.NewLLMExtractor(adapter), store, cfg.AbandonToken)
	svc := assistant.New(intent.NewRouter(adapter), knowledge.NewAnswerer(adapter), negotiator, registry, store, nil)
	svc.SetDefaultUser(cfg.DefaultUserID)

	threadID := uuid.NewString()
	fmt.Println("turfchat ready. Ask a question, do some math, or book the ground.")
	fmt.Printf("Type %q to abandon a booking in progress, or to end the session.\n", cfg.AbandonToken)

	scanner := bufio.NewScanner(os.Stdin)
	pending := false
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		// Outside a negotiation the abandonment token ends the session
		// instead; inside one it flows through and abandons the draft.
		if !pending && strings.EqualFold(text, cfg.AbandonToken) {
			break
		}

		res := svc.HandleTurn(ctx, threadID, cfg.DefaultUserID, text)
		pending = res.Pending
		if res.Pending {
			fmt.Println(res.Question)
			continue
		}
		fmt.Println(res.Reply)
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("read error: %v", err)
	}
	fmt.Println("bye")
}
