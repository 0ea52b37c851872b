package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/hypertune/hypertune/internal/tuning"
	"go.uber.org/zap"
)

// CommandKind is the built-in capability backed by an external trainer
// process. The model definition describes the command to run; the trainer
// owns the actual fitting code in whatever runtime it likes.
const CommandKind = "command"

// commandDefinition is the serialized model definition for CommandKind.
type commandDefinition struct {
	// Command is the trainer argv. It is invoked as
	// `<command...> <verb> <dataset-uri>` with verb train or evaluate.
	Command []string `json:"command"`
	// Workdir, when set, is the working directory of the trainer.
	Workdir string `json:"workdir,omitempty"`
}

// commandCapability shells out to the trainer. Hyperparameters are passed on
// HYPERTUNE_HYPERPARAMETERS as JSON; a per-trial state directory on
// HYPERTUNE_STATE_DIR carries the fitted state between train and evaluate.
// evaluate must print {"score": <float>} on stdout; trained weights are read
// back from <state-dir>/parameters.bin.
type commandCapability struct {
	def      commandDefinition
	params   tuning.Params
	stateDir string
}

func NewCommandCapability(definition []byte, hyperparameters tuning.Params) (Capability, error) {
	var def commandDefinition
	if err := json.Unmarshal(definition, &def); err != nil {
		return nil, fmt.Errorf("parsing command model definition: %w", err)
	}
	if len(def.Command) == 0 {
		return nil, fmt.Errorf("command model definition has no command")
	}

	stateDir, err := os.MkdirTemp("", "hypertune-trial-")
	if err != nil {
		return nil, err
	}

	return &commandCapability{def: def, params: hyperparameters, stateDir: stateDir}, nil
}

func (c *commandCapability) Train(ctx context.Context, datasetURI string) error {
	_, err := c.run(ctx, "train", datasetURI)
	return err
}

func (c *commandCapability) Evaluate(ctx context.Context, datasetURI string) (float64, error) {
	out, err := c.run(ctx, "evaluate", datasetURI)
	if err != nil {
		return 0, err
	}

	var result struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(out), &result); err != nil {
		return 0, fmt.Errorf("parsing trainer score output: %w", err)
	}

	return result.Score, nil
}

func (c *commandCapability) DumpParameters() ([]byte, error) {
	return os.ReadFile(filepath.Join(c.stateDir, "parameters.bin"))
}

func (c *commandCapability) Destroy() error {
	return os.RemoveAll(c.stateDir)
}

func (c *commandCapability) run(ctx context.Context, verb, datasetURI string) ([]byte, error) {
	hyperparameters, err := json.Marshal(c.params)
	if err != nil {
		return nil, err
	}

	args := append(c.def.Command[1:], verb, datasetURI)
	cmd := exec.CommandContext(ctx, c.def.Command[0], args...)
	cmd.Dir = c.def.Workdir
	cmd.Env = append(os.Environ(),
		"HYPERTUNE_HYPERPARAMETERS="+string(hyperparameters),
		"HYPERTUNE_STATE_DIR="+c.stateDir,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		zap.S().Named("capability").Errorf("trainer %s failed: %v: %s", verb, err, stderr.String())
		return nil, fmt.Errorf("trainer %s: %w", verb, err)
	}

	return stdout.Bytes(), nil
}
