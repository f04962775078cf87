package export

import (
	"encoding/json"
	"io"

	"github.com/catqa/catqa/pkg/analyze"
	qaerrors "github.com/catqa/catqa/pkg/errors"
)

// WriteJSON encodes the full result tree as indented JSON.
func WriteJSON(w io.Writer, result *analyze.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to encode JSON report")
	}
	return nil
}
