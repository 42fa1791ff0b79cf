package tool

import (
	"context"
	"encoding/json"

	"github.com/kwerner/anvil"
)

// codeRunnerArgs defines arguments for the code_runner tool.
type codeRunnerArgs struct {
	Language string `json:"language" desc:"Programming language" enum:"python,javascript" required:"true"`
	Code     string `json:"code" desc:"Source code to execute" required:"true"`
}

// NewCodeRunnerTool creates the code_runner tool backed by the given Runner.
// The sandbox enforces its own wall-clock bound; a timed-out or failed run
// is still reported as structured output so the model can inspect stderr.
func NewCodeRunnerTool(runner anvil.Runner) Registration {
	return Func("code_runner",
		"Execute Python or JavaScript code in a sandbox and return stdout, stderr, and the exit code.",
		func(ctx context.Context, args codeRunnerArgs) (string, error) {
			result, err := runner.Run(ctx, args.Language, args.Code)
			if err != nil {
				return "", err
			}

			data, err := json.Marshal(result)
			if err != nil {
				return "", err
			}
			return string(data), nil
		})
}
