package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/aidanlsb/vaultfm/internal/ui"
)

// stdin feeds confirmation prompts; tests swap it.
var stdin io.Reader = os.Stdin

// interactive reports whether both ends of the session are a terminal.
var interactive = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}

func shouldPromptForConfirm() bool {
	if isJSONOutput() {
		return false
	}
	return interactive()
}

func promptForConfirm(message string) bool {
	if message == "" {
		message = "Apply changes?"
	}
	fmt.Fprintf(stdout, "%s %s ", message, ui.Hint("[y/N]"))
	reader := bufio.NewReader(stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// confirmLive gates writes. Dry runs and --yes pass straight through; live
// runs otherwise need an interactive yes.
func confirmLive(action string) error {
	if getConfig().IsDryRun() || yesFlag {
		return nil
	}
	if !shouldPromptForConfirm() {
		return handleErrorMsg(ErrConfirmationRequired,
			fmt.Sprintf("%s in live mode needs confirmation", action),
			"Re-run with --yes to write changes without a prompt")
	}
	if !promptForConfirm(fmt.Sprintf("%s will rewrite notes in %s. Continue?", action, getConfig().NotesPath())) {
		return handleErrorMsg(ErrAborted, "aborted", "")
	}
	return nil
}

// confirmAction asks before a destructive bookkeeping change unless --yes
// was given.
func confirmAction(message string) error {
	if yesFlag {
		return nil
	}
	if !shouldPromptForConfirm() {
		return handleErrorMsg(ErrConfirmationRequired, "this action needs confirmation",
			"Re-run with --yes to skip the prompt")
	}
	if !promptForConfirm(message) {
		return handleErrorMsg(ErrAborted, "aborted", "")
	}
	return nil
}
