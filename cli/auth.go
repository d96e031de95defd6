package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"syscall"
	"time"

	"github.com/booknest/booknest/cli/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var username string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Register and login commands for BookNest.`,
}

type authResponse struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(passwordBytes), nil
}

func postAuth(path string, body map[string]string) (*authResponse, error) {
	serverURL, err := config.GetServerURL()
	if err != nil {
		printError("Configuration not initialized")
		fmt.Println("Run: booknest init")
		return nil, err
	}

	jsonData, _ := json.Marshal(body)
	res, err := http.Post(serverURL+path, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		printError("Server connection error")
		return nil, err
	}
	defer res.Body.Close()

	data, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		var errRes map[string]string
		json.Unmarshal(data, &errRes)
		printError(errRes["error"])
		return nil, fmt.Errorf("request failed with status %d", res.StatusCode)
	}

	var auth authResponse
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &auth, nil
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if username == "" {
			return fmt.Errorf("username is required (--username)")
		}

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			printError("Passwords do not match")
			return fmt.Errorf("passwords do not match")
		}

		auth, err := postAuth("/api/auth/register", map[string]string{
			"username": username,
			"password": password,
		})
		if err != nil {
			return err
		}

		if err := config.UpdateUserToken(auth.Username, auth.Token); err != nil {
			fmt.Println("Warning: Failed to save token to config")
		}

		printSuccess("Account created successfully!")
		fmt.Printf("User ID: %d\n", auth.UserID)
		fmt.Printf("Username: %s\n", auth.Username)
		fmt.Println("\nYou are now logged in!")
		return nil
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if username == "" {
			return fmt.Errorf("username is required (--username)")
		}

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		auth, err := postAuth("/api/auth/login", map[string]string{
			"username": username,
			"password": password,
		})
		if err != nil {
			return err
		}

		if err := config.UpdateUserToken(auth.Username, auth.Token); err != nil {
			fmt.Println("Warning: Failed to save token to config")
		}

		printSuccess(fmt.Sprintf("Logged in as %s", auth.Username))
		return nil
	},
}

func init() {
	authCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "Account username")

	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLoginCmd)
	rootCmd.AddCommand(authCmd)
}
