package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jqian-ml/agent-finie/internal/config"
	"github.com/jqian-ml/agent-finie/internal/finiedir"
	"github.com/jqian-ml/agent-finie/internal/marketdata"
	"github.com/jqian-ml/agent-finie/internal/metrics"
	"github.com/jqian-ml/agent-finie/internal/provider"
	"github.com/jqian-ml/agent-finie/internal/runner"
	"github.com/jqian-ml/agent-finie/internal/telemetry"
	"github.com/jqian-ml/agent-finie/memory"
	"github.com/jqian-ml/agent-finie/tools"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("FINIE_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	usage := &metrics.Usage{}
	completer, err := provider.New(cfg, usage)
	if err != nil {
		return err
	}
	model := cfg.LLM.Model
	if model == "" {
		model = provider.DefaultModel(cfg.LLM.Provider)
	}

	md := marketdata.New(marketdata.Config{
		AlphaVantageKey: cfg.Keys.AlphaVantage,
		UserAgent:       cfg.HTTP.UserAgent,
		Timeout:         cfg.Timeout(),
		MaxRetries:      cfg.HTTP.MaxRetries,
	})

	r := runner.New(completer, tools.Registry(md), model,
		cfg.LLM.MaxTokens, cfg.LLM.Temperature,
		cfg.Agent.TokenBudget, cfg.Agent.MaxIterations)

	// Load prior conversation if it exists
	persistPath, err := finiedir.ConversationPath()
	if err != nil {
		return err
	}
	persisted, err := memory.LoadConversation(persistPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load persisted conversation: %v\n", err)
	}
	conv := memory.ToChat(persisted)

	// Graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		fmt.Println("\nExiting...")
		cancel()
	}()

	fmt.Println("Finie - AI finance analyst")
	fmt.Printf("Model: %s (%s)\n", model, cfg.LLM.Provider)
	fmt.Println("Type 'quit' or 'exit' to end the conversation")
	fmt.Println("Type 'clear' to reset conversation history")

	// stdin reader goroutine -> lines into channel
	scanner := bufio.NewScanner(os.Stdin)
	inputCh := make(chan string)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

outer:
	for {
		fmt.Print("\u001b[94mYou\u001b[0m: ")
		var (
			user string
			ok   bool
		)
		select {
		case <-ctx.Done():
			break outer
		case user, ok = <-inputCh:
			if !ok {
				break outer
			}
		}

		user = strings.TrimSpace(user)
		switch strings.ToLower(user) {
		case "":
			continue
		case "quit", "exit", "q":
			break outer
		case "clear":
			conv = nil
			if err := memory.Reset(persistPath); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to reset conversation: %v\n", err)
			}
			fmt.Println("[Conversation history cleared]")
			continue
		}

		turnID := fmt.Sprintf("turn-%d", time.Now().UnixNano())
		turnCtx := telemetry.WithTurnID(ctx, turnID)
		telemetry.EmitQuestionFeatures(turnCtx, user)

		newConv, _, err := r.RunTurn(turnCtx, conv, user)
		conv = newConv
		if err != nil {
			if errors.Is(err, runner.ErrMaxIterations) {
				fmt.Fprintln(os.Stderr, "warning: stopped before a final answer; try a narrower question")
			} else {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
			continue
		}

		// Persist the text-only view of the transcript; tool traffic is transient.
		if err := memory.SaveConversation(persistPath, memory.FromChat(conv)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save conversation: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: stdin read error: %v\n", err)
	}

	if requests, in, out := usage.Totals(); requests > 0 {
		fmt.Printf("Session: %d requests, %d input tokens, %d output tokens\n", requests, in, out)
	}
	return nil
}
