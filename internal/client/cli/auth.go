package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wsauth/internal/client/client"
	"github.com/dmitrijs2005/wsauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, username and password and creates the account.
// The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Register(ctx, email, userName, password); err != nil {
		a.report("Registration failed", err)
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for an email or username and the password. The token stays
// inside the API client.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter email or username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Login(ctx, identifier, password); err != nil {
		a.report("Login unsuccessful", err)
		return err
	}

	a.userName = identifier
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// SendVerifyEmail asks the server to mail a verification code.
func (a *App) SendVerifyEmail(ctx context.Context) error {
	sent, err := a.api.SendVerifyEmail(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			// The token is no longer accepted; a fresh login is required.
			a.api.Logout()
			a.userName = ""
		}
		a.report("Verification request failed", err)
		return err
	}

	if sent {
		fmt.Fprintln(a.out, "Verification code sent")
	} else {
		fmt.Fprintln(a.out, "Email already verified")
	}
	return nil
}

// Logout revokes the session token on the server. The local session ends
// even when the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Revoke(ctx)
	a.api.Logout()
	a.userName = ""
	if err != nil && !errors.Is(err, client.ErrUnauthorized) && !errors.Is(err, client.ErrNotLoggedIn) {
		a.report("Logout incomplete, token dropped locally", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) report(what string, err error) {
	if errors.Is(err, client.ErrUnavailable) {
		a.setMode(ModeOffline)
	}
	fmt.Fprintf(a.out, "%s: %v\n", what, err)
}
