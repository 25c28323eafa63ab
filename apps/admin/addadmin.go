package main

import (
	"context"
	"time"

	"github.com/everly/elearning/core"
	"github.com/everly/elearning/core/user"
)

// addAdmin promotes an existing account to admin or creates a fresh one.
func (cli *commandLine) addAdmin(email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Email:     email,
			FirstName: "Admin",
			LastName:  "admin",
			Role:      user.RoleAdmin,
			CreatedAt: time.Now().UTC(),
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	if _, err = cli.usrRepo.UpdateUser(ctx, usr.ID, user.UpdateUser{Role: user.RoleAdmin}); err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	return cli.usrRepo.SetUserPassword(ctx, usr.ID, usr.PasswordHash)
}
