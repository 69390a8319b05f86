// Package useradmin creates accounts from the command line, typically the
// first admin, through the same registration flow the HTTP API uses.
package useradmin

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/dmitrijs2005/staffhub/internal/common"
	"github.com/dmitrijs2005/staffhub/internal/flagx"
	"github.com/dmitrijs2005/staffhub/internal/server/models"
	"github.com/dmitrijs2005/staffhub/internal/server/services"
	"github.com/dmitrijs2005/staffhub/internal/server/validation"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

// Registrar is implemented by services.AuthService.
type Registrar interface {
	Register(ctx context.Context, in validation.RegisterInput) (*services.RegisterResult, error)
}

// Options are the account fields given as flags. Anything missing is
// prompted for, except Role and Name, which fall back to registration
// defaults.
type Options struct {
	Email string
	Role  string
	Name  string
}

// ParseOptions reads -email, -role and -name from args, ignoring flags that
// belong to the server configuration.
func ParseOptions(args []string) (Options, error) {
	var o Options

	fs := flag.NewFlagSet("useradmin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.Email, "email", "", "account email")
	fs.StringVar(&o.Role, "role", string(models.RoleAdmin), "account role (admin, manager, employee)")
	fs.StringVar(&o.Name, "name", "", "profile name")

	if err := fs.Parse(flagx.FilterArgs(args, "email", "role", "name")); err != nil {
		return Options{}, fmt.Errorf("parse flags: %w", err)
	}
	return o, nil
}

// Run collects the missing fields, asks for the password twice and
// registers the account.
func Run(ctx context.Context, opts Options, in *bufio.Reader, out io.Writer, r Registrar) error {
	email := opts.Email
	if email == "" {
		var err error
		if email, err = GetSimpleText(in, "Enter email", out); err != nil {
			return err
		}
	}

	pw, err := GetPassword(out, "Enter password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	confirm, err := GetPassword(out, "Repeat password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		return ErrPasswordMismatch
	}

	input := validation.RegisterInput{
		Email:    email,
		Password: string(pw),
		Role:     models.Role(opts.Role),
	}
	if opts.Name != "" {
		input.Profile = &validation.ProfileInput{Name: opts.Name}
	}

	res, err := r.Register(ctx, input)
	if err != nil {
		printError(out, err)
		return err
	}

	fmt.Fprintf(out, "Created %s %s (id %s)\n", res.User.Role, res.User.Email, res.User.ID)
	return nil
}

func printError(w io.Writer, err error) {
	var e *common.Error
	if !errors.As(err, &e) {
		fmt.Fprintln(w, err.Error())
		return
	}

	fmt.Fprintln(w, e.Message)

	fields := make([]string, 0, len(e.Details))
	for f := range e.Details {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		for _, msg := range e.Details[f] {
			fmt.Fprintf(w, "  %s: %s\n", f, msg)
		}
	}
}
