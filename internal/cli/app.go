// Package cli implements postctl, the operator tool that adds accounts to the
// credential store and mints tokens for local testing.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/dmitrijs2005/postgate/internal/server/models"
)

var (
	ErrUsage            = errors.New("usage: postctl <adduser [username] | token <username>> [flags]")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

type Registrar interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
}

type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type TokenIssuer interface {
	Issue(userID, username string) (string, error)
}

type App struct {
	in     *bufio.Reader
	out    io.Writer
	users  Registrar
	finder UserFinder
	tokens TokenIssuer
}

func NewApp(in io.Reader, out io.Writer, users Registrar, finder UserFinder, tokens TokenIssuer) *App {
	return &App{
		in:     bufio.NewReader(in),
		out:    out,
		users:  users,
		finder: finder,
		tokens: tokens,
	}
}

// Run executes the subcommand named by args[0]. Arguments starting with "-"
// belong to the config layer and are skipped.
func (a *App) Run(ctx context.Context, args []string) error {
	pos := positional(args)
	if len(pos) == 0 {
		return ErrUsage
	}

	switch pos[0] {
	case "adduser":
		var username string
		if len(pos) > 1 {
			username = pos[1]
		}
		return a.addUser(ctx, username)
	case "token":
		if len(pos) < 2 {
			return ErrUsage
		}
		return a.token(ctx, pos[1])
	case "help":
		fmt.Fprintln(a.out, ErrUsage.Error())
		return nil
	default:
		return ErrUsage
	}
}

func (a *App) addUser(ctx context.Context, username string) error {
	var err error
	if username == "" {
		username, err = GetSimpleText(a.in, "Enter user name", a.out)
		if err != nil {
			return err
		}
	}

	pw, err := GetPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	confirm, err := GetPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		return ErrPasswordMismatch
	}

	u, err := a.users.Register(ctx, username, string(pw))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "user %s created (id %s)\n", u.Username, u.ID)
	return nil
}

func (a *App) token(ctx context.Context, username string) error {
	u, err := a.finder.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", username, err)
	}

	tok, err := a.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, tok)
	return nil
}

// positional drops flags and their values. Every flag postctl understands
// takes a value unless written as -f=value.
func positional(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) > 0 && arg[0] == '-' {
			if !strings.Contains(arg, "=") && i+1 < len(args) {
				i++
			}
			continue
		}
		out = append(out, arg)
	}
	return out
}
