// Package gitcli provides the transport adapter for repo-mirror.
// It implements domain.Transport by shelling out to the external git tool,
// which owns all object-store and network transport concerns.
package gitcli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/MyCarrier-DevOps/repo-mirror/internal/domain"
)

// Logger defines the logging interface for the git transport adapter.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// ExecFunc runs a command in a directory and returns combined output, exit
// code, and a process-level error. It exists so tests can substitute a fake
// process runner.
type ExecFunc func(ctx context.Context, dir string, name string, args ...string) (string, int, error)

// Runner implements domain.Transport over the git command line. Every
// invocation names its working directory explicitly; the process working
// directory is never changed.
type Runner struct {
	workDir string
	execFn  ExecFunc
	logger  Logger
}

// NewRunner creates a Runner using the real git binary.
func NewRunner(log Logger) *Runner {
	return &Runner{
		execFn: runProcess,
		logger: log,
	}
}

// NewRunnerWithExec creates a Runner with a custom process runner for tests.
func NewRunnerWithExec(execFn ExecFunc, log Logger) *Runner {
	return &Runner{
		execFn: execFn,
		logger: log,
	}
}

// Clone clones the repository into dir. On success dir becomes the working
// directory for all subsequent operations.
func (r *Runner) Clone(ctx context.Context, repo domain.RepoRef, dir string) error {
	args := append(credentialArgs(repo.Credential), "clone", "--", repo.URL, dir)
	if _, err := r.run(ctx, "", args...); err != nil {
		return fmt.Errorf("clone of %s failed: %w", domain.RedactURL(repo.URL), err)
	}
	r.workDir = dir
	return nil
}

// AddRemote registers an additional named remote in the working directory.
func (r *Runner) AddRemote(ctx context.Context, name, url string) error {
	_, err := r.run(ctx, r.workDir, "remote", "add", name, url)
	return err
}

// RemoveRemote deletes a named remote.
func (r *Runner) RemoveRemote(ctx context.Context, name string) error {
	_, err := r.run(ctx, r.workDir, "remote", "remove", name)
	return err
}

// Fetch updates remote-tracking refs from the named remote with pruning.
// When tags is true all tags are fetched as well.
func (r *Runner) Fetch(ctx context.Context, remote string, cred domain.Credential, tags bool) error {
	args := append(credentialArgs(cred), "fetch", "--prune", remote)
	if tags {
		args = append(args, "--tags")
	}
	_, err := r.run(ctx, r.workDir, args...)
	return err
}

// Push pushes a single refspec to the named remote. A non-zero git exit is
// reported as domain.ErrPushRejected so callers can apply retry rules.
func (r *Runner) Push(ctx context.Context, remote string, cred domain.Credential, refspec string, force bool) error {
	args := append(credentialArgs(cred), "push")
	if force {
		args = append(args, "--force")
	}
	args = append(args, remote, refspec)
	return r.push(ctx, args, refspec)
}

// PushAllTags pushes every local tag to the named remote.
func (r *Runner) PushAllTags(ctx context.Context, remote string, cred domain.Credential, force bool) error {
	args := append(credentialArgs(cred), "push", "--tags")
	if force {
		args = append(args, "--force")
	}
	args = append(args, remote)
	return r.push(ctx, args, "--tags")
}

func (r *Runner) push(ctx context.Context, args []string, what string) error {
	out, exitCode, err := r.execFn(ctx, r.workDir, "git", args...)
	if err != nil {
		return fmt.Errorf("git push could not run: %w", err)
	}
	if exitCode != 0 {
		return fmt.Errorf("%w: %s: %s", domain.ErrPushRejected, what, firstLine(out))
	}
	return nil
}

// run executes git and treats any non-zero exit as an error. Mutating
// operations use this path; probes belong to the ref store, not here.
func (r *Runner) run(ctx context.Context, dir string, args ...string) (string, error) {
	out, exitCode, err := r.execFn(ctx, dir, "git", args...)
	if err != nil {
		return "", fmt.Errorf("git %s could not run: %w", firstArg(args), err)
	}
	if exitCode != 0 {
		return "", fmt.Errorf("git %s failed: %s", firstArg(args), firstLine(out))
	}

	r.logger.Debug(ctx, "git command completed", map[string]interface{}{
		"subcommand": firstArg(args),
		"dir":        dir,
	})
	return out, nil
}

// credentialArgs builds per-invocation credential injection arguments.
// Tokens go through an Authorization header config flag, never into the
// URL, so no credential can leak into logs or error messages.
func credentialArgs(cred domain.Credential) []string {
	if !cred.HasToken() {
		return nil
	}
	basic := base64.StdEncoding.EncodeToString([]byte("x-access-token:" + cred.Token))
	return []string{
		"-c", "credential.helper=",
		"-c", "http.extraheader=Authorization: Basic " + basic,
	}
}

// runProcess is the production ExecFunc backed by os/exec.
func runProcess(ctx context.Context, dir string, name string, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(output), exitErr.ExitCode(), nil
		}
		return string(output), -1, err
	}
	return string(output), 0, nil
}

// firstArg returns the git subcommand for log context, skipping -c pairs.
func firstArg(args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "-c" {
			i++
			continue
		}
		return args[i]
	}
	return ""
}

func firstLine(out string) string {
	out = strings.TrimSpace(out)
	if idx := strings.IndexByte(out, '\n'); idx >= 0 {
		return out[:idx]
	}
	return out
}
