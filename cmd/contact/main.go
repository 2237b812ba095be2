// Contact form client - sends a message to the portfolio contact endpoint.
//
// Missing fields are prompted for with native dialogs, and the outcome is
// shown the same way. Usage:
//
//	go run ./cmd/contact -name Ada -email ada@example.com -message "Hello"
//	go run ./cmd/contact -health
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ncruces/zenity"

	"github.com/pthm-cable/backdrop/config"
	"github.com/pthm-cable/backdrop/contact"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	name := flag.String("name", "", "Your name (prompted when empty)")
	email := flag.String("email", "", "Your email address (prompted when empty)")
	message := flag.String("message", "", "Message text (prompted when empty)")
	noDialog := flag.Bool("no-dialog", false, "Print the outcome instead of showing dialogs; never prompt")
	health := flag.Bool("health", false, "Check the endpoint's health route and exit")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	client := contact.NewClient(cfg.Contact.Endpoint, cfg.Derived.ContactTimeout)
	ctx := context.Background()

	if *health {
		if err := client.Health(ctx); err != nil {
			slog.Error("health check failed", "endpoint", client.Endpoint(), "error", err)
			os.Exit(1)
		}
		fmt.Println("healthy")
		return
	}

	msg := contact.Message{Name: *name, Email: *email, Message: *message}
	if !*noDialog {
		var err error
		msg, err = prompt(msg)
		if errors.Is(err, zenity.ErrCanceled) {
			return
		}
		if err != nil {
			slog.Error("failed to prompt", "error", err)
			os.Exit(1)
		}
	}
	msg = msg.Trimmed()

	text, err := send(ctx, client, msg)
	if err != nil {
		slog.Error("contact failed", "endpoint", client.Endpoint(), "error", err)
	}
	if err := report(text, err, *noDialog); err != nil {
		slog.Error("failed to show result", "error", err)
	}
	if err != nil {
		os.Exit(1)
	}
}

// prompt asks for every empty field in turn.
func prompt(msg contact.Message) (contact.Message, error) {
	fields := []struct {
		value *string
		label string
	}{
		{&msg.Name, "Name"},
		{&msg.Email, "Email"},
		{&msg.Message, "Message"},
	}
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		v, err := zenity.Entry(f.label+":", zenity.Title("Contact Me"))
		if err != nil {
			return msg, err
		}
		*f.value = v
	}
	return msg, nil
}

// send validates locally, then submits.
func send(ctx context.Context, client *contact.Client, msg contact.Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	return client.Submit(ctx, msg)
}

// report shows the outcome in a dialog, or prints it.
func report(text string, err error, noDialog bool) error {
	if err != nil {
		text = contact.UserMessage(err)
	}

	if noDialog {
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error! "+text)
			return nil
		}
		fmt.Println("Success! " + text)
		return nil
	}

	if err != nil {
		return zenity.Error(text, zenity.Title("Error!"), zenity.ErrorIcon)
	}
	return zenity.Info(text, zenity.Title("Success!"), zenity.InfoIcon)
}
