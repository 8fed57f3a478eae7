package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/abelbrown/truthlens/internal/logging"
	"github.com/abelbrown/truthlens/internal/session"
)

func runLogin() {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password (prompted when empty)")
	verbose := verboseFlag(fs)
	fs.Parse(os.Args[1:])

	e := setup(*verbose)
	defer shutdown()

	if *email == "" {
		*email = prompt("Email")
	}
	if *password == "" {
		*password = prompt("Password")
	}

	sess, err := e.api.Login(context.Background(), *email, *password)
	if err != nil {
		fatal("login: %v", err)
	}
	saveSession(sess)
	fmt.Printf("Signed in as %s\n", sess.DisplayName())
}

func runSignup() {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password (prompted when empty)")
	name := fs.String("name", "", "Display name")
	verbose := verboseFlag(fs)
	fs.Parse(os.Args[1:])

	e := setup(*verbose)
	defer shutdown()

	if *email == "" {
		*email = prompt("Email")
	}
	if *password == "" {
		*password = prompt("Password")
	}

	sess, err := e.api.Signup(context.Background(), *email, *password, *name)
	if err != nil {
		fatal("signup: %v", err)
	}
	saveSession(sess)
	fmt.Printf("Account created. Signed in as %s\n", sess.DisplayName())
}

func saveSession(sess *session.Session) {
	if err := session.Save(session.Path(), sess); err != nil {
		fatal("save session: %v", err)
	}
	logging.Info("session saved", "user", sess.User.Email)
}

func runLogout() {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	verbose := verboseFlag(fs)
	fs.Parse(os.Args[1:])

	setup(*verbose)
	defer shutdown()

	if err := session.Clear(session.Path()); err != nil {
		fatal("logout: %v", err)
	}
	fmt.Println("Signed out")
}

func runWhoami() {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	verbose := verboseFlag(fs)
	fs.Parse(os.Args[1:])

	e := setup(*verbose)
	defer shutdown()

	token := ""
	if e.creds != nil {
		token = e.creds.BearerToken()
	}
	if token == "" {
		if e.sess.Expired() {
			fmt.Println("Session expired. Run 'tl login' to sign in again.")
		} else {
			fmt.Println("Not signed in")
		}
		return
	}

	user, err := e.api.Me(context.Background(), token)
	if err != nil {
		fatal("whoami: %v", err)
	}

	fmt.Printf("Name:    %s\n", user.Name)
	fmt.Printf("Email:   %s\n", user.Email)
	fmt.Printf("Plan:    %s\n", user.SubscriptionTier)
	if exp, ok := e.sess.Expiry(); ok && e.cfg.Token == "" {
		fmt.Printf("Expires: %s (in %s)\n", exp.Local().Format(time.DateTime), time.Until(exp).Round(time.Minute))
	}
}
