package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	sommelier "github.com/kailas-cloud/sommelier/pkg/sdk"
)

const defaultServerURL = "http://localhost:8080"

type clientFlags struct {
	server  string
	apiKey  string
	jsonOut bool
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.server, "server", envOr("SOMMELIER_URL", defaultServerURL), "API base URL")
	cmd.Flags().StringVar(&f.apiKey, "api-key", os.Getenv("SOMMELIER_API_KEY"), "bearer API key")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "output as JSON")
}

func (f *clientFlags) client() (*sommelier.Client, error) {
	c, err := sommelier.New(f.server, sommelier.WithAPIKey(f.apiKey))
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

func newAskCmd() *cobra.Command {
	var (
		flags   clientFlags
		session string
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the running service a question",
		Long: `Send a question to a running sommelier API and print the answer.

Examples:
  sommelier ask "tell me about rosé" --session me
  sommelier ask "the sparkling one" --session me   # answer the clarification`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.client()
			if err != nil {
				return err
			}
			var opts []sommelier.AskOption
			if session != "" {
				opts = append(opts, sommelier.InSession(session))
			}
			ans, err := c.Ask(cmd.Context(), strings.Join(args, " "), opts...)
			if err != nil {
				return err //nolint:wrapcheck
			}
			if flags.jsonOut {
				return printJSON(cmd.OutOrStdout(), ans)
			}
			printAnswer(cmd.OutOrStdout(), ans)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&session, "session", "", "conversation id for follow-up questions")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	var flags clientFlags
	cmd := &cobra.Command{
		Use:   "classify <question>",
		Short: "Show how the service classifies a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.client()
			if err != nil {
				return err
			}
			cls, err := c.Classify(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err //nolint:wrapcheck
			}
			if flags.jsonOut {
				return printJSON(cmd.OutOrStdout(), cls)
			}
			printClassification(cmd.OutOrStdout(), cls)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func printAnswer(w io.Writer, ans sommelier.Answer) {
	fmt.Fprintln(w, ans.Text)
	if len(ans.Sources) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Sources:")
		for _, s := range ans.Sources {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	if ans.Clarification {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "(reply with --session to pick one)")
	}
}

func printClassification(w io.Writer, cls sommelier.Classification) {
	fmt.Fprintf(w, "domain:   %s\n", cls.Domain)
	if cls.Subtype != "" {
		fmt.Fprintf(w, "subtype:  %s\n", cls.Subtype)
	}
	if cls.EntityPattern != "" {
		fmt.Fprintf(w, "entity:   %s (%s)\n", cls.EntityName, cls.EntityPattern)
	}
	if cls.Family != "" {
		fmt.Fprintf(w, "family:   %s\n", cls.Family)
	}
	if cls.PreferredVariant != "" {
		fmt.Fprintf(w, "variant:  %s\n", cls.PreferredVariant)
	}
	fmt.Fprintf(w, "specific: %t  confirmed: %t  generic: %t\n",
		cls.IsSpecificEntity, cls.IsConfirmedEntity, cls.IsGenericEntity)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
