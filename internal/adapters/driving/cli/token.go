package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newTokenCmd() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Manage stored API tokens",
		Long: `Stores API tokens per host URL so --token and GITLAB_TOKEN can be omitted.
A token given on the command line or in the environment always wins.`,
	}

	setCmd := &cobra.Command{
		Use:   "set <url>",
		Short: "Store a token for a host, read from the terminal or stdin",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenSet,
	}
	getCmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Show the stored token for a host (masked unless --reveal)",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenGet,
	}
	getCmd.Flags().Bool("reveal", false, "print the token in full")
	deleteCmd := &cobra.Command{
		Use:   "delete <url>",
		Short: "Remove the stored token for a host",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenDelete,
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List hosts with stored tokens",
		Args:  cobra.NoArgs,
		RunE:  runTokenList,
	}

	tokenCmd.AddCommand(setCmd, getCmd, deleteCmd, listCmd)
	return tokenCmd
}

func tokenURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

func runTokenSet(cmd *cobra.Command, args []string) error {
	if deps.Tokens == nil {
		return errors.New("token store not configured")
	}

	cmd.Printf("Token for %s: ", tokenURL(args[0]))
	token := readSecret(cmd)
	cmd.Println()
	if token == "" {
		return errors.New("no token given")
	}

	if err := deps.Tokens.Save(cmd.Context(), tokenURL(args[0]), token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	cmd.Printf("Token stored for %s.\n", tokenURL(args[0]))
	return nil
}

func runTokenGet(cmd *cobra.Command, args []string) error {
	if deps.Tokens == nil {
		return errors.New("token store not configured")
	}
	token, err := deps.Tokens.Get(cmd.Context(), tokenURL(args[0]))
	if err != nil {
		return err
	}
	if reveal, _ := cmd.Flags().GetBool("reveal"); reveal {
		cmd.Println(token)
		return nil
	}
	cmd.Println(maskToken(token))
	return nil
}

func runTokenDelete(cmd *cobra.Command, args []string) error {
	if deps.Tokens == nil {
		return errors.New("token store not configured")
	}
	if err := deps.Tokens.Delete(cmd.Context(), tokenURL(args[0])); err != nil {
		return err
	}
	cmd.Printf("Token removed for %s.\n", tokenURL(args[0]))
	return nil
}

func runTokenList(cmd *cobra.Command, _ []string) error {
	if deps.Tokens == nil {
		return errors.New("token store not configured")
	}
	urls, err := deps.Tokens.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		cmd.Println("No tokens stored.")
		return nil
	}
	for _, u := range urls {
		cmd.Println(u)
	}
	return nil
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command) string {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	reader := bufio.NewReader(in)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
