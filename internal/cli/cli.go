// Package cli provides the headless command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/kartikmehra/flowprompt/internal/capture"
	apperrors "github.com/kartikmehra/flowprompt/internal/errors"
	"github.com/kartikmehra/flowprompt/internal/models"
	"github.com/kartikmehra/flowprompt/internal/paste"
	"github.com/kartikmehra/flowprompt/internal/renderer"
	"github.com/kartikmehra/flowprompt/internal/service"
)

// CLI dispatches headless commands against the service and the
// clipboard orchestrators.
type CLI struct {
	service  *service.Service
	capturer *capture.Capturer
	paster   *paste.Paster
}

// NewCLI creates a new CLI instance
func NewCLI(svc *service.Service, capturer *capture.Capturer, paster *paste.Paster) *CLI {
	return &CLI{service: svc, capturer: capturer, paster: paster}
}

// ExecuteCommand processes a CLI command and returns the result
func (c *CLI) ExecuteCommand(args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "list", "ls":
		return c.listPrompts(commandArgs)
	case "search":
		return c.searchPrompts(commandArgs)
	case "get", "show":
		return c.showPrompt(commandArgs)
	case "create", "new":
		return c.createPrompt(commandArgs)
	case "delete", "rm":
		return c.deletePrompt(commandArgs)
	case "move", "mv":
		return c.movePrompt(commandArgs)
	case "copy":
		return c.copyPrompt(commandArgs)
	case "paste":
		return c.pastePrompt(commandArgs)
	case "capture":
		return c.captureSelection(commandArgs)
	case "categories":
		return c.handleCategories(commandArgs)
	case "tags":
		return c.listTags()
	case "recent":
		return c.listRecent(commandArgs)
	case "favorites":
		return c.listFavorites(commandArgs)
	case "export":
		return c.exportLibrary(commandArgs)
	case "help":
		return c.printUsage()
	default:
		return apperrors.CommandNotFoundError(command).WithDetails("use 'help' for usage information")
	}
}

func (c *CLI) listPrompts(args []string) error {
	var format string
	var tag string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--format", "-f":
			if i+1 < len(args) {
				format = args[i+1]
				i++
			}
		case "--tag", "-t":
			if i+1 < len(args) {
				tag = args[i+1]
				i++
			}
		}
	}

	var prompts []models.Prompt
	for _, p := range c.service.Library().AllPrompts() {
		if tag != "" && !p.HasTag(tag) {
			continue
		}
		prompts = append(prompts, p)
	}

	return c.formatOutput(prompts, format)
}

func (c *CLI) searchPrompts(args []string) error {
	if len(args) == 0 {
		return apperrors.InvalidCommandError("search", "requires a query")
	}

	var format string
	var queryParts []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--format", "-f":
			if i+1 < len(args) {
				format = args[i+1]
				i++
			}
		default:
			queryParts = append(queryParts, args[i])
		}
	}

	results := c.service.Search(strings.Join(queryParts, " "))

	if format == "json" {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	for _, r := range results {
		fmt.Printf("%4d  %s - %s  [%s]\n", r.Score, r.Prompt.ID, r.Prompt.Name, r.CategoryName)
	}
	return nil
}

func (c *CLI) showPrompt(args []string) error {
	if len(args) == 0 {
		return apperrors.InvalidCommandError("show", "requires a prompt ID")
	}

	var format string
	id := args[0]
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--format", "-f":
			if i+1 < len(args) {
				format = args[i+1]
				i++
			}
		}
	}

	prompt, categoryID, err := c.service.Prompt(id)
	if err != nil {
		return fmt.Errorf("failed to get prompt: %w", err)
	}

	categoryName := ""
	for _, cat := range c.service.Categories() {
		if cat.ID == categoryID {
			categoryName = cat.Name
			break
		}
	}

	switch format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(prompt)
	case "markdown", "md":
		r, err := renderer.New(80)
		if err != nil {
			return err
		}
		out, err := r.RenderMarkdown(prompt)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	default:
		fmt.Print(renderer.RenderDetail(prompt, categoryName))
		return nil
	}
}

func (c *CLI) createPrompt(args []string) error {
	var title, content, categoryID string
	var tags []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--title":
			if i+1 < len(args) {
				title = args[i+1]
				i++
			}
		case "--content":
			if i+1 < len(args) {
				content = args[i+1]
				i++
			}
		case "--category", "-c":
			if i+1 < len(args) {
				categoryID = args[i+1]
				i++
			}
		case "--tags", "-t":
			if i+1 < len(args) {
				tags = strings.Split(args[i+1], ",")
				i++
			}
		}
	}

	if categoryID == "" {
		return fmt.Errorf("create requires --category <id>")
	}

	prompt := models.NewPrompt(title, content, tags...)
	if err := c.service.AddPrompt(categoryID, prompt); err != nil {
		return fmt.Errorf("failed to create prompt: %w", err)
	}

	fmt.Printf("Created prompt %s\n", prompt.ID)
	return nil
}

func (c *CLI) deletePrompt(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("delete requires a prompt ID")
	}

	id := args[0]
	if _, _, err := c.service.Prompt(id); err != nil {
		return fmt.Errorf("failed to delete prompt: %w", err)
	}

	c.service.DeletePrompt(id)
	fmt.Printf("Deleted prompt %s\n", id)
	return nil
}

func (c *CLI) movePrompt(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("move requires a prompt ID and a category ID")
	}

	if err := c.service.MovePrompt(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to move prompt: %w", err)
	}

	fmt.Printf("Moved prompt %s to category %s\n", args[0], args[1])
	return nil
}

func (c *CLI) copyPrompt(args []string) error {
	if len(args) == 0 {
		return apperrors.InvalidCommandError("copy", "requires a prompt ID")
	}

	id := args[0]
	prompt, _, err := c.service.Prompt(id)
	if err != nil {
		return fmt.Errorf("failed to get prompt: %w", err)
	}

	if err := c.paster.Copy(prompt.Content); err != nil {
		return apperrors.ClipboardError("copy", err)
	}

	c.service.RecordUse(id)
	fmt.Println("Copied to clipboard!")
	return nil
}

func (c *CLI) pastePrompt(args []string) error {
	if len(args) == 0 {
		return apperrors.InvalidCommandError("paste", "requires a prompt ID")
	}

	id := args[0]
	prompt, _, err := c.service.Prompt(id)
	if err != nil {
		return fmt.Errorf("failed to get prompt: %w", err)
	}

	if err := c.paster.Paste(prompt.Content, SimulatePasteKeystroke); err != nil {
		return apperrors.ClipboardError("paste", err)
	}

	c.service.RecordUse(id)

	// Hold the process open until the clipboard restore resolves; the
	// pending timer dies with the process otherwise.
	c.paster.Wait()
	return nil
}

func (c *CLI) captureSelection(args []string) error {
	var categoryID, title string
	save := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--save", "-s":
			save = true
		case "--category", "-c":
			if i+1 < len(args) {
				categoryID = args[i+1]
				i++
			}
		case "--title":
			if i+1 < len(args) {
				title = args[i+1]
				i++
			}
		}
	}

	text, err := c.capturer.Capture(SimulateCopyKeystroke)
	if err != nil {
		return fmt.Errorf("failed to capture selection: %w", err)
	}

	if text == "" {
		// Nothing to capture is not a failure.
		fmt.Println("Nothing captured.")
		return nil
	}

	if !save {
		fmt.Println(text)
		return nil
	}

	if categoryID == "" {
		return fmt.Errorf("capture --save requires --category <id>")
	}
	if title == "" {
		title = firstLine(text)
	}

	prompt := models.NewPrompt(title, text)
	if err := c.service.AddPrompt(categoryID, prompt); err != nil {
		return fmt.Errorf("failed to save captured prompt: %w", err)
	}

	fmt.Printf("Saved captured text as prompt %s\n", prompt.ID)
	return nil
}

func (c *CLI) handleCategories(args []string) error {
	if len(args) == 0 {
		for _, cat := range c.service.Categories() {
			fmt.Printf("%s - %s (%d prompts)\n", cat.ID, cat.Name, cat.PromptCount())
		}
		return nil
	}

	switch args[0] {
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("categories add requires a name")
		}
		cat, err := c.service.AddCategory(strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("failed to add category: %w", err)
		}
		fmt.Printf("Created category %s\n", cat.ID)
		return nil
	case "rename":
		if len(args) < 3 {
			return fmt.Errorf("categories rename requires an ID and a name")
		}
		if err := c.service.RenameCategory(args[1], strings.Join(args[2:], " ")); err != nil {
			return fmt.Errorf("failed to rename category: %w", err)
		}
		fmt.Println("Renamed.")
		return nil
	case "delete", "rm":
		if len(args) < 2 {
			return fmt.Errorf("categories delete requires an ID")
		}
		c.service.DeleteCategory(args[1])
		fmt.Printf("Deleted category %s\n", args[1])
		return nil
	default:
		return fmt.Errorf("unknown categories subcommand: %s", args[0])
	}
}

func (c *CLI) listTags() error {
	seen := make(map[string]bool)
	var tags []string
	for _, p := range c.service.Library().AllPrompts() {
		for _, tag := range p.Tags {
			key := strings.ToLower(tag)
			if !seen[key] {
				seen[key] = true
				tags = append(tags, tag)
			}
		}
	}

	sort.Strings(tags)
	for _, tag := range tags {
		fmt.Println(tag)
	}
	return nil
}

func (c *CLI) listRecent(args []string) error {
	limit := 5
	prompts := c.service.RecentlyUsed(limit)
	return c.formatOutput(prompts, formatFlag(args))
}

func (c *CLI) listFavorites(args []string) error {
	return c.formatOutput(c.service.Favorites(), formatFlag(args))
}

func (c *CLI) exportLibrary(args []string) error {
	var outputFile string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--output", "-o":
			if i+1 < len(args) {
				outputFile = args[i+1]
				i++
			}
		}
	}

	raw, err := json.MarshalIndent(c.service.Library(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to export library: %w", err)
	}

	if outputFile == "" {
		fmt.Println(string(raw))
		return nil
	}

	if err := os.WriteFile(outputFile, raw, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	fmt.Printf("Exported library to %s\n", outputFile)
	return nil
}

func (c *CLI) formatOutput(prompts []models.Prompt, format string) error {
	switch format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(prompts)
	case "ids":
		for _, p := range prompts {
			fmt.Println(p.ID)
		}
	default:
		for _, p := range prompts {
			fmt.Printf("%s - %s\n", p.ID, p.Name)
			if len(p.Tags) > 0 {
				fmt.Printf("  Tags: %s\n", strings.Join(p.Tags, ", "))
			}
		}
	}
	return nil
}

func formatFlag(args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "--format" || args[i] == "-f" {
			if i+1 < len(args) {
				return args[i+1]
			}
		}
	}
	return ""
}

func firstLine(text string) string {
	line := text
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if len(line) > 50 {
		line = line[:47] + "..."
	}
	if line == "" {
		line = "Captured text"
	}
	return line
}

// SimulateCopyKeystroke asks the OS to copy the current selection in the
// foreground application. Best-effort: platforms without a keystroke
// tool fall back to whatever is already on the clipboard, which the
// capture orchestrator handles.
func SimulateCopyKeystroke() {
	simulateKeystroke("c")
}

// SimulatePasteKeystroke asks the OS to paste into the foreground
// application.
func SimulatePasteKeystroke() {
	simulateKeystroke("v")
}

func simulateKeystroke(key string) {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`tell application "System Events" to keystroke "%s" using command down`, key)
		_ = exec.Command("osascript", "-e", script).Run()
	case "linux":
		if _, err := exec.LookPath("xdotool"); err == nil {
			_ = exec.Command("xdotool", "key", "ctrl+"+key).Run()
		}
	}
}

func (c *CLI) printUsage() error {
	fmt.Println(`flowprompt - Headless CLI mode

Usage: flowprompt <command> [options]

Commands:
  list, ls              List all prompts (--tag <t>, --format json|ids)
  search <query>        Ranked search across the library
  get, show <id>        Show a prompt (--format json|markdown)
  create, new           Create a prompt (--category <id> --title <t> --content <c> --tags a,b)
  delete, rm <id>       Delete a prompt
  move, mv <id> <cat>   Move a prompt to another category
  copy <id>             Copy prompt content to the clipboard
  paste <id>            Paste prompt content into the focused app
  capture               Capture the focused app's selection (--save --category <id>)
  categories            List categories (add/rename/delete subcommands)
  tags                  List all tags
  recent                List recently used prompts
  favorites             List favorite prompts
  export                Export the library as JSON (--output <file>)
  help                  Show help`)
	return nil
}
