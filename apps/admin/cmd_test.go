package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/everly/elearning/core/user"
	inmemdb "github.com/everly/elearning/storage/database/inmem"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()
	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	return &commandLine{usrRepo: usrRepo}
}

func createUser(t *testing.T, email, pwd, role string) user.User {
	t.Helper()
	usr := user.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "user",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed, %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}
	return usr
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "awe@test.cd", "mdr", user.RoleStudent)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, pwd: "lol", wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, pwd: "lmao"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addAdmin(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "promoted@test.cd", "mdr", user.RoleTeacher)

	tests := []cliTest{
		{name: "no args", args: []string{"addadmin"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"addadmin", "-email", "root@test.cd"}, wantErr: errHelp},
		{name: "create new admin", args: []string{"addadmin", "-email", "root@test.cd"}, pwd: "lol"},
		{name: "promote existing user", args: []string{"addadmin", "-email", usr.Email}, pwd: "lmao"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			email := args[3]
			refreshedUsr, err := usrRepo.GetUserByEmail(context.Background(), email)
			if err != nil {
				t.Fatalf("GetUserByEmail() failed, %v", err)
			}
			if !refreshedUsr.IsAdmin() {
				t.Errorf("user role = %s, want %s", refreshedUsr.Role, user.RoleAdmin)
			}
			if err = refreshedUsr.CheckPassword(tt.pwd); err != nil {
				t.Error("failed to set new password")
			}
		})
	}
}
