// Command jj is the pastebin CLI client.
//
// Usage:
//
//	jj paste <file>   - upload a file ("-" or no file reads stdin)
//	jj login          - login and save the API token
//	jj logout         - remove saved credentials
//	jj list           - list your pastes
//	jj view <id>      - view a paste
//	jj delete <id>    - delete a paste
//	jj version        - show version information
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const version = "1.0.0"

type pasteResponse struct {
	UniqueID  string `json:"unique_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Language  string `json:"language"`
	IsPublic  bool   `json:"is_public"`
	Views     int    `json:"views"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
	URL       string `json:"url"`
}

type listResponse struct {
	Pastes     []pasteResponse `json:"pastes"`
	Pagination struct {
		Total   int `json:"total"`
		Pages   int `json:"pages"`
		Page    int `json:"page"`
		PerPage int `json:"per_page"`
	} `json:"pagination"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := loadConfig()
	c := newClient(cfg)

	var err error
	switch os.Args[1] {
	case "paste":
		err = cmdPaste(c, os.Args[2:])
	case "login":
		err = cmdLogin(c, os.Args[2:])
	case "logout":
		err = cmdLogout(c)
	case "list":
		err = cmdList(c, os.Args[2:])
	case "view":
		err = cmdView(c, os.Args[2:])
	case "delete":
		err = cmdDelete(c, os.Args[2:])
	case "version":
		fmt.Printf("jj version %s\n", version)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: jj <paste|login|logout|list|view|delete|version> [options]")
}

func requireToken(c *client) error {
	if c.cfg.Token == "" {
		return fmt.Errorf("please login first (jj login)")
	}
	return nil
}

func applyAPIURL(c *client, apiURL string) error {
	if apiURL == "" {
		return nil
	}
	c.cfg.APIURL = apiURL
	return c.cfg.save()
}

func cmdPaste(c *client, args []string) error {
	fs := flag.NewFlagSet("paste", flag.ExitOnError)
	title := fs.String("title", "", "title for the paste")
	language := fs.String("language", "", "programming language")
	private := fs.Bool("private", false, "make paste private")
	apiURL := fs.String("api-url", "", "API URL for the pastebin service")
	fs.Parse(args)

	if err := applyAPIURL(c, *apiURL); err != nil {
		return err
	}
	if err := requireToken(c); err != nil {
		return err
	}

	filename := "-"
	if fs.NArg() > 0 {
		filename = fs.Arg(0)
	}

	var content []byte
	var err error
	if filename == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(filename)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return fmt.Errorf("no content to paste")
	}

	if *title == "" && filename != "-" {
		*title = filepath.Base(filename)
	}
	if *language == "" {
		*language = detectLanguage(filename)
	}

	body := map[string]interface{}{
		"title":     *title,
		"content":   string(content),
		"language":  *language,
		"is_public": !*private,
	}

	var paste pasteResponse
	if err := c.do("POST", "/pastes", body, &paste); err != nil {
		return err
	}

	fmt.Println("Paste created successfully!")
	fmt.Printf("URL: %s\n", paste.URL)
	fmt.Printf("ID: %s\n", paste.UniqueID)
	return nil
}

func cmdLogin(c *client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	apiURL := fs.String("api-url", "", "API URL for the pastebin service")
	fs.Parse(args)

	if err := applyAPIURL(c, *apiURL); err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	if *username == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		*username = strings.TrimSpace(line)
	}
	if *password == "" {
		fmt.Print("Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	var result struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	body := map[string]string{"username": *username, "password": *password}
	if err := c.do("POST", "/auth/login", body, &result); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	c.cfg.Token = result.Token
	if err := c.cfg.save(); err != nil {
		return err
	}
	fmt.Printf("Logged in successfully as %s\n", result.User.Username)
	return nil
}

func cmdLogout(c *client) error {
	c.cfg.Token = ""
	if err := c.cfg.save(); err != nil {
		return err
	}
	fmt.Println("Logged out successfully")
	return nil
}

func cmdList(c *client, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	fs.Parse(args)

	if err := requireToken(c); err != nil {
		return err
	}

	var result listResponse
	if err := c.do("GET", fmt.Sprintf("/users/me/pastes?page=%d", *page), nil, &result); err != nil {
		return err
	}

	if len(result.Pastes) == 0 {
		fmt.Println("No pastes found")
		return nil
	}

	sep := strings.Repeat("-", 60)
	fmt.Printf("Your pastes (Page %d of %d):\n", result.Pagination.Page, result.Pagination.Pages)
	fmt.Println(sep)
	for _, p := range result.Pastes {
		status := "Public"
		if !p.IsPublic {
			status = "Private"
		}
		fmt.Printf("ID: %s\n", p.UniqueID)
		fmt.Printf("Title: %s\n", p.Title)
		fmt.Printf("Language: %s\n", p.Language)
		fmt.Printf("Status: %s\n", status)
		fmt.Printf("Views: %d\n", p.Views)
		fmt.Printf("Created: %s\n", p.CreatedAt)
		fmt.Println(sep)
	}
	return nil
}

func cmdView(c *client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: jj view <paste_id>")
	}

	var paste pasteResponse
	if err := c.do("GET", "/pastes/"+args[0], nil, &paste); err != nil {
		return err
	}

	fmt.Printf("Title: %s\n", paste.Title)
	fmt.Printf("Language: %s\n", paste.Language)
	fmt.Printf("Author: %s\n", paste.Author)
	fmt.Printf("Created: %s\n", paste.CreatedAt)
	fmt.Printf("Views: %d\n", paste.Views)
	fmt.Println(strings.Repeat("-", 60))
	fmt.Println(paste.Content)
	return nil
}

func cmdDelete(c *client, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: jj delete [-yes] <paste_id>")
	}
	if err := requireToken(c); err != nil {
		return err
	}

	if !*yes {
		fmt.Print("Are you sure you want to delete this paste? [y/N]: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return err
		}
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := c.do("DELETE", "/pastes/"+fs.Arg(0), nil, nil); err != nil {
		return err
	}
	fmt.Println("Paste deleted successfully")
	return nil
}
