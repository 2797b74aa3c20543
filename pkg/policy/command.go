package policy

import (
	"fmt"
	"regexp"
	"strings"
)

// Classification is the verdict of a command classifier.
type Classification string

const (
	ClassSafe      Classification = "safe"
	ClassDangerous Classification = "dangerous"
)

// dangerousSubstrings are matched against the normalized command line.
// The list is a denylist of destructive or irreversible operations; the
// classifier errs toward dangerous when in doubt.
var dangerousSubstrings = []string{
	"rm -rf /",
	"rm -rf ~",
	"rm -rf *",
	"rm -fr /",
	"mkfs",
	"dd if=",
	":(){",
	"chmod -r 777 /",
	"chown -r",
	"> /dev/sd",
	"shutdown",
	"reboot",
	"git push --force",
	"git push -f",
	"git reset --hard",
	"git clean -fd",
	"truncate -s 0",
}

// pipeToShell catches remote-script execution like `curl ... | sh`.
var pipeToShell = regexp.MustCompile(`(curl|wget)\b[^|]*\|\s*(ba|z|da)?sh\b`)

// sudoPrefix catches privilege escalation regardless of what follows.
var sudoPrefix = regexp.MustCompile(`^\s*sudo\b`)

// ClassifyCommand is the default command classifier: a conservative denylist
// over the normalized command line. It never returns an error itself; the
// error return exists so injected classifiers (external services, config
// lookups) can fail, which the engine treats as dangerous.
func ClassifyCommand(command string) (Classification, error) {
	if strings.TrimSpace(command) == "" {
		return ClassSafe, fmt.Errorf("empty command")
	}

	normalized := strings.ToLower(strings.Join(strings.Fields(command), " "))

	if sudoPrefix.MatchString(normalized) {
		return ClassDangerous, nil
	}
	if pipeToShell.MatchString(normalized) {
		return ClassDangerous, nil
	}
	for _, pattern := range dangerousSubstrings {
		if strings.Contains(normalized, pattern) {
			return ClassDangerous, nil
		}
	}

	return ClassSafe, nil
}
