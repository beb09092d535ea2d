package cli

import (
	"context"
	"log"
	"os"

	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/models"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/routes"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/services"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/common"
)

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	roleRaw, err := GetSimpleText(a.reader, "Enter role (admin/teacher/student)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	role, err := models.ParseRole(roleRaw)
	if err != nil {
		log.Printf("Unknown role %q", roleRaw)
		return err
	}

	req := services.LoginRequest{Email: email, Role: role}

	if !role.UsesOTP() {
		password, err := GetPassword(os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		defer common.WipeByteArray(password)
		req.Password = string(password)
	}

	res, err := a.login.Login(ctx, req)
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	if res.Challenge != nil {
		return a.verifyOTP(ctx, res.Challenge)
	}

	a.route = res.Route
	log.Printf("Login successful, landing at %s", res.Route)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	// Memory-first profile read; repeat whoami calls never touch sqlite.
	cached := a.profiles.CachedUser(ctx)
	switch {
	case a.session.IsAuthenticated(ctx):
		u := a.session.CurrentUser(ctx)
		log.Printf("Logged in as %s (%s)", u.Email, u.Role)
	case cached != nil:
		log.Printf("Session expired; last signed in as %s (%s)", cached.Email, cached.Role)
	default:
		log.Printf("Not logged in")
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Clear(ctx); err != nil {
		log.Printf("Logout failed: %s", err.Error())
		return err
	}
	a.profiles.Forget()
	a.route = routes.Login
	log.Printf("Logged out")
	return nil
}
