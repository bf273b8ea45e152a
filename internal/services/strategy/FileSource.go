package strategy

import (
	"fmt"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SymbolPlaceholder in a score file path is replaced by the symbol
const SymbolPlaceholder = "{symbol}"

type scoreFile struct {
	Scores []float64 `json:"scores"`
}

// FileSource reads externally produced model scores from a JSON file of the
// form {"scores": [...]}. The last score belongs to the latest close; a file
// holding more scores than closes is aligned on the tail.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return SignalFile }

func (s *FileSource) Lookback() int { return 0 }

func (s *FileSource) Path(symbol string) string {
	return strings.ReplaceAll(s.path, SymbolPlaceholder, symbol)
}

func (s *FileSource) Score(symbol string, closes []float64) ([]float64, error) {
	path := s.Path(symbol)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading score file: %w", err)
	}

	var f scoreFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding score file %s: %w", path, err)
	}

	if len(f.Scores) < len(closes) {
		return nil, fmt.Errorf("score file %s holds %d scores for %d closes", path, len(f.Scores), len(closes))
	}
	return f.Scores[len(f.Scores)-len(closes):], nil
}
