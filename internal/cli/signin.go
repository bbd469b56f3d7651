package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
)

type signInCommand struct {
	fs       *flag.FlagSet
	username string
}

func SignInCommand() Command {
	cmd := &signInCommand{
		fs: flag.NewFlagSet("signin", flag.ExitOnError),
	}

	cmd.fs.StringVar(&cmd.username, "user", "", "Your username")

	return cmd
}

func (c *signInCommand) Init(args []string) error {
	return c.fs.Parse(args)
}

func (c *signInCommand) Run() {
	reader := bufio.NewReader(os.Stdin)
	if c.username == "" {
		fmt.Print("Enter username: ")
		text, _ := reader.ReadString('\n')
		c.username = strings.TrimSpace(text)
	}

	fmt.Print("Enter password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	token, err := signIn(c.username, password)
	if err != nil {
		fmt.Printf("Sign in failed! Error: %v\n", err)
		return
	}

	fmt.Printf("Signed in!\nToken:\n\t%s\n", token)
}

func (c *signInCommand) Name() string {
	return c.fs.Name()
}

func (c *signInCommand) Description() string {
	return "Sign in and print an access token"
}

func signIn(username, password string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	res, err := http.Post(
		fmt.Sprintf("%s/auth/login", baseUrl),
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var resBody map[string]any
	if err = json.NewDecoder(res.Body).Decode(&resBody); err != nil {
		return "", err
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign in failed with status %d, and body:\n%v", res.StatusCode, resBody)
	}

	token, _ := resBody["token"].(string)
	return token, nil
}
