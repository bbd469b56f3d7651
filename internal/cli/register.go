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

type registerCommand struct {
	fs       *flag.FlagSet
	username string
	email    string
}

func RegisterCommand() Command {
	cmd := &registerCommand{
		fs: flag.NewFlagSet("register", flag.ExitOnError),
	}

	cmd.fs.StringVar(&cmd.username, "user", "", "Your username, used to login")
	cmd.fs.StringVar(&cmd.email, "email", "", "Email for the new account")

	return cmd
}

func (c *registerCommand) Init(args []string) error {
	return c.fs.Parse(args)
}

func (c *registerCommand) Run() {
	reader := bufio.NewReader(os.Stdin)
	if c.username == "" {
		fmt.Print("Enter username: ")
		text, _ := reader.ReadString('\n')
		c.username = strings.TrimSpace(text)
	}

	if c.email == "" {
		fmt.Print("Enter email: ")
		text, _ := reader.ReadString('\n')
		c.email = strings.TrimSpace(text)
	}

	fmt.Print("Enter password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	fmt.Print("Repeat password: ")
	password2, _ := reader.ReadString('\n')
	password2 = strings.TrimSpace(password2)

	fmt.Println("Registering user")
	token, err := register(c.username, c.email, password, password2)
	if err != nil {
		fmt.Printf("Registration failed! Error: %v\n", err)
		return
	}

	fmt.Printf("Successfully created a new user!\n")
	fmt.Printf("To use the api pass the following token as a bearer token:\n\t%s\n", token)
}

func (c *registerCommand) Name() string {
	return c.fs.Name()
}

func (c *registerCommand) Description() string {
	return "Register a new user account"
}

func register(username, email, password, password2 string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username":  username,
		"email":     email,
		"password":  password,
		"password2": password2,
	})
	if err != nil {
		return "", err
	}

	res, err := http.Post(
		fmt.Sprintf("%s/auth/register", baseUrl),
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

	if res.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("registration failed with status %d, and body:\n%v", res.StatusCode, resBody)
	}

	token, _ := resBody["token"].(string)
	return token, nil
}
