// cmd/chat/main.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mintedhq/minted-go/auth"
	"github.com/mintedhq/minted-go/config"
	"github.com/mintedhq/minted-go/models"
	"github.com/mintedhq/minted-go/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	provider := auth.NewTokenProvider(cfg.SessionToken)
	if err := provider.Load(); err != nil {
		log.Fatalf("Could not load session token: %v", err)
	}

	api := services.NewAPIService(cfg.APIBaseURL, provider)
	store := services.NewChatService(api, provider, services.NewSnapshotStore(cfg.SnapshotPath))

	store.Subscribe(func(ev services.Event) {
		if ev.Kind == services.EventStateChanged {
			if msg := store.LastError(); msg != "" {
				fmt.Println("! " + msg)
			}
		}
	})

	ctx := context.Background()
	if err := store.Load(ctx); err != nil {
		log.Printf("Initial load failed: %v", err)
	}

	if current := store.CurrentConversation(); current != nil {
		fmt.Printf("Resumed %q\n", displayTitle(*current))
	}
	fmt.Println("Commands: /new /list /switch <n> /rename <title> /delete /quit")

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "/quit":
			return
		case line == "/list":
			for i, conv := range menuOrder(store.Conversations()) {
				marker := " "
				if current := store.CurrentConversation(); current != nil && current.ID == conv.ID {
					marker = "*"
				}
				fmt.Printf("%s %d. %s\n", marker, i+1, displayTitle(conv))
			}
		case line == "/new":
			if _, err := store.CreateNewConversation(ctx); err != nil {
				fmt.Printf("! %v\n", err)
			} else {
				fmt.Println("Started a new conversation")
			}
		case strings.HasPrefix(line, "/switch "):
			ordered := menuOrder(store.Conversations())
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/switch ")))
			if err != nil || n < 1 || n > len(ordered) {
				fmt.Println("! usage: /switch <n> (see /list)")
				break
			}
			conv := ordered[n-1]
			if err := store.SwitchToConversation(ctx, conv); err != nil {
				fmt.Printf("! %v\n", err)
				break
			}
			fmt.Printf("Switched to %q\n", displayTitle(conv))
			printMessages(store.CurrentMessages())
		case strings.HasPrefix(line, "/rename "):
			title := strings.TrimSpace(strings.TrimPrefix(line, "/rename "))
			if title == "" {
				fmt.Println("! usage: /rename <title>")
				break
			}
			if err := store.RenameCurrentConversation(ctx, title); err != nil {
				fmt.Printf("! %v\n", err)
			}
		case line == "/delete":
			if err := store.DeleteCurrentConversation(ctx); err != nil {
				fmt.Printf("! %v\n", err)
			} else {
				fmt.Println("Conversation deleted")
			}
		case line != "":
			store.SetMessageText(line)
			if err := store.SendMessage(ctx); err == nil {
				messages := store.CurrentMessages()
				if len(messages) > 0 && !messages[len(messages)-1].IsFromUser {
					fmt.Println("minted: " + messages[len(messages)-1].Content)
				}
			}
		}
		fmt.Print("> ")
	}
}

func menuOrder(conversations []models.Conversation) []models.Conversation {
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastModified > conversations[j].LastModified
	})
	return conversations
}

func displayTitle(conv models.Conversation) string {
	if conv.Title == "" {
		return "Untitled"
	}
	return conv.Title
}

func printMessages(messages []models.Message) {
	for _, msg := range messages {
		who := "minted"
		if msg.IsFromUser {
			who = "you"
		}
		fmt.Printf("%s: %s\n", who, msg.Content)
	}
}
