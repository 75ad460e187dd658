package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/wsauth/internal/client/client"
)

type fakeAPI struct {
	token string

	regEmail, regUser string
	regPass           []byte
	regErr            error

	loginID   string
	loginPass []byte
	loginErr  error

	sent      bool
	verifyErr error

	pingErr error

	revokeErr error
	revoked   int
}

func (f *fakeAPI) Register(_ context.Context, email, username string, pass []byte) error {
	f.regEmail, f.regUser, f.regPass = email, username, append([]byte(nil), pass...)
	return f.regErr
}

func (f *fakeAPI) Login(_ context.Context, id string, pass []byte) error {
	f.loginID, f.loginPass = id, append([]byte(nil), pass...)
	if f.loginErr == nil {
		f.token = "tok"
	}
	return f.loginErr
}

func (f *fakeAPI) SendVerifyEmail(context.Context) (bool, error) { return f.sent, f.verifyErr }
func (f *fakeAPI) Ping(context.Context) error                    { return f.pingErr }
func (f *fakeAPI) Logout()                                       { f.token = "" }

func (f *fakeAPI) Revoke(context.Context) error {
	f.revoked++
	f.token = ""
	return f.revokeErr
}
func (f *fakeAPI) LoggedIn() bool                                { return f.token != "" }

// stubInputs answers prompts from answers in order.
func stubInputs(t *testing.T, password []byte, answers ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return append([]byte(nil), password...), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func quietLog(t *testing.T) {
	t.Helper()
	old := log.Default().Writer()
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(old) })
}

func newTestApp(f *fakeAPI) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{api: f, out: &out}, &out
}

func TestRegister_Success(t *testing.T) {
	f := &fakeAPI{}
	a, out := newTestApp(f)
	stubInputs(t, []byte("secret"), "alice@example.org", "alice")

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, "alice@example.org", f.regEmail)
	assert.Equal(t, "alice", f.regUser)
	assert.Equal(t, "secret", string(f.regPass))
	assert.Contains(t, out.String(), "Success!")
}

func TestRegister_ServerError(t *testing.T) {
	f := &fakeAPI{regErr: &client.APIError{Status: 409, Code: "conflict", Message: "already exists"}}
	a, out := newTestApp(f)
	stubInputs(t, []byte("secret"), "alice@example.org", "alice")

	require.Error(t, a.Register(context.Background()))
	assert.Contains(t, out.String(), "already exists")
}

func TestRegister_InputError(t *testing.T) {
	f := &fakeAPI{}
	a, _ := newTestApp(f)
	stubInputs(t, nil, "only-email")

	require.ErrorIs(t, a.Register(context.Background()), io.EOF)
	assert.Empty(t, f.regEmail)
}

func TestLogin(t *testing.T) {
	quietLog(t)
	f := &fakeAPI{}
	a, _ := newTestApp(f)
	stubInputs(t, []byte("p1"), "alice")

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "alice", f.loginID)
	assert.Equal(t, "alice", a.userName)
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, ModeOnline, a.mode())
}

func TestLogin_Unavailable(t *testing.T) {
	quietLog(t)
	f := &fakeAPI{loginErr: fmt.Errorf("%w: connection refused", client.ErrUnavailable)}
	a, _ := newTestApp(f)
	stubInputs(t, []byte("p1"), "alice")

	require.Error(t, a.Login(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, ModeOffline, a.mode())
}

func TestSendVerifyEmail(t *testing.T) {
	tests := []struct {
		name       string
		sent       bool
		err        error
		wantOut    string
		wantLogged bool
	}{
		{name: "sent", sent: true, wantOut: "Verification code sent", wantLogged: true},
		{name: "already verified", wantOut: "already verified", wantLogged: true},
		{name: "token rejected", err: client.ErrUnauthorized, wantOut: "unauthorized", wantLogged: false},
		{name: "other error", err: errors.New("boom"), wantOut: "boom", wantLogged: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeAPI{token: "tok", sent: tt.sent, verifyErr: tt.err}
			a, out := newTestApp(f)
			a.userName = "alice"

			err := a.SendVerifyEmail(context.Background())
			if tt.err != nil {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, out.String(), tt.wantOut)
			assert.Equal(t, tt.wantLogged, a.isLoggedIn())
		})
	}
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name      string
		revokeErr error
		wantErr   bool
		wantOut   string
		wantMode  Mode
	}{
		{name: "revoked", wantOut: "Logged out", wantMode: ModeOnline},
		{name: "already rejected", revokeErr: client.ErrUnauthorized, wantOut: "Logged out", wantMode: ModeOnline},
		{name: "server down", revokeErr: client.ErrUnavailable, wantErr: true, wantOut: "token dropped locally", wantMode: ModeOffline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeAPI{token: "tok", revokeErr: tt.revokeErr}
			a, out := newTestApp(f)
			a.setMode(ModeOnline)
			a.userName = "alice"

			err := a.Logout(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, 1, f.revoked)
			assert.False(t, a.isLoggedIn())
			assert.Empty(t, a.userName)
			assert.Contains(t, out.String(), tt.wantOut)
			assert.Equal(t, tt.wantMode, a.mode())
		})
	}
}
