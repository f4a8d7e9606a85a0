package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/salon-bot/internal/app/bootstrap"
	"github.com/wolfman30/salon-bot/internal/chatlog"
	appconfig "github.com/wolfman30/salon-bot/internal/config"
	"github.com/wolfman30/salon-bot/internal/conversation"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

var defaultMessages = []string{
	"Hola!",
	"¿Cuánto cuesta el gelish?",
	"Quiero agendar uñas acrílicas mañana a las 10",
	"¿Dónde están ubicadas?",
	"Gracias!",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := appconfig.Load()
	logger := logging.New("warn")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	messages := defaultMessages
	if len(os.Args) > 1 {
		messages = os.Args[1:]
	}

	pipeline, err := bootstrap.BuildPipeline(ctx, cfg, bootstrap.PipelineDeps{
		ChatLog: chatlog.Nop{},
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("build pipeline: %v", err)
	}
	defer func() { _ = pipeline.Close() }()

	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Reply pipeline test (provider=%s, tuned=%t)\n", pipeline.LLM.Provider(), pipeline.LLM.Tuned())
	fmt.Println(strings.Repeat("=", 60))

	for i, text := range messages {
		fmt.Printf("\n[%d] 👤 %s\n", i+1, text)
		start := time.Now()
		raw, err := pipeline.LLM.SubmitPrompt(ctx, conversation.BuildExtractionPrompt(text, pipeline.LLM.Tuned()))
		if err != nil {
			fmt.Printf("    ❌ model error: %v\n", err)
		} else {
			fmt.Printf("    🧾 raw (%v): %s\n", time.Since(start).Round(time.Millisecond), oneLine(raw))
		}

		reply, err := pipeline.Dispatcher.Handle(ctx, "llmtest", text)
		if err != nil {
			fmt.Printf("    ❌ pipeline error: %v\n", err)
			continue
		}
		fmt.Printf("    🤖 %s\n", reply)
	}
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 200 {
		return string(r[:200]) + "…"
	}
	return s
}
