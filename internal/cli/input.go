package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// readInput reads the named file, or stdin when args is empty or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, WrapExitError(ExitUsage, "read stdin", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Clean(args[0]))
	if err != nil {
		return nil, WrapExitError(ExitUsage, fmt.Sprintf("read %s", args[0]), err)
	}
	return data, nil
}

// writeJSON encodes v to the command's stdout.
func writeJSON(cmd *cobra.Command, v any, pretty bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("indent output: %w", err)
		}
		data = buf.Bytes()
	}
	data = append(data, '\n')
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
