package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"campus_delivery/internal/app"
	"campus_delivery/internal/auth"
	"campus_delivery/internal/models"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

var errPasswordMismatch = errors.New("passwords do not match")

func newUsersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	var (
		name string
		role string
	)

	create := &cobra.Command{
		Use:   "create <email>",
		Short: "Create a user, reading the password from the terminal or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			password, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			cfg, repo, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			svc := auth.New(opts.logger(), repo, repo, repo, nil, app.Policy(cfg))

			user, err := svc.Register(ctx, args[0], password, name, role)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %d <%s>\n", user.Role, user.ID, user.Email)
			return nil
		},
	}

	create.Flags().StringVar(&name, "name", "", "Display name")
	create.Flags().StringVar(&role, "role", models.RoleCustomer, "customer or worker")

	cmd.AddCommand(create)

	return cmd
}

// promptPassword asks twice on a terminal. Piped input supplies the password
// as its first line.
func promptPassword(in io.Reader, out io.Writer) (string, error) {
	f, ok := in.(*os.File)
	if !ok || !isTerminal(int(f.Fd())) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read password: %w", err)
		}

		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(out, "Password: ")
	first, err := readPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(out, "Confirm password: ")
	second, err := readPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errPasswordMismatch
	}

	return string(first), nil
}
