package execx

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/forcelab-tw/forcedesk/internal/ports"
)

// Runner executes local commands, honoring the caller's context deadline.
type Runner struct{}

var _ ports.CommandRunner = Runner{}

// Output runs name with args and returns its stdout.
func (Runner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return out, nil
}
