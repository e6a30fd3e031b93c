package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/services"
)

// passwordEnv supplies the password when --password is not given, keeping
// it out of the shell history.
const passwordEnv = "LEDGER_PASSWORD"

func createUserCmd() *cobra.Command {
	var in services.RegisterInput

	cmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create an active user account",
		Long:  "Create an account with the same checks as the sign-up form. The password is read from --password or the " + passwordEnv + " environment variable.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password1 == "" {
				in.Password1 = os.Getenv(passwordEnv)
			}
			in.Password2 = in.Password1

			mgr, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(mgr)

			return createUser(cmd.OutOrStdout(), services.NewUserService(mgr.DB()), in)
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name (required)")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name (required)")
	cmd.Flags().StringVar(&in.Password1, "password", "", "password, or set "+passwordEnv)
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// createUser registers the account, listing every rejected field.
func createUser(out io.Writer, users services.UserServicer, in services.RegisterInput) error {
	user, err := users.Register(in)
	if err != nil {
		var fields apperrors.FieldErrors
		if !errors.As(err, &fields) {
			return err
		}
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s: %s\n", k, fields[k])
		}
		return errors.New("user not created")
	}

	fmt.Fprintf(out, "Created user %s <%s>\n", user.Username, user.Email)
	return nil
}
