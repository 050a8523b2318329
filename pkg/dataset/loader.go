package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// FileFormat identifies how a dataset file is encoded.
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatJSON               // array of {"id","name"}
	FormatTOML               // [[candidates]] tables
	FormatMsgpack            // array of {"id","name"} maps
)

// FormatInfo describes a supported dataset encoding.
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
}

var supportedFormats = []FormatInfo{
	{Format: FormatJSON, Description: "JSON candidate list", Extensions: []string{".json"}},
	{Format: FormatTOML, Description: "TOML candidate tables", Extensions: []string{".toml"}},
	{Format: FormatMsgpack, Description: "MessagePack candidate list", Extensions: []string{".msgpack", ".mpk"}},
}

func (f FileFormat) String() string {
	for _, info := range supportedFormats {
		if info.Format == f {
			return info.Description
		}
	}
	return "unknown"
}

// DetectFormat picks the format from the file extension.
func DetectFormat(filename string) FileFormat {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return info.Format
			}
		}
	}
	return FormatUnknown
}

type tomlFile struct {
	Candidates []Candidate `toml:"candidates"`
}

// ReadFile decodes the candidates stored in one file, in file order.
func ReadFile(filename string) ([]Candidate, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", filename, err)
	}

	var items []Candidate
	switch format := DetectFormat(filename); format {
	case FormatJSON:
		err = json.Unmarshal(data, &items)
	case FormatTOML:
		var doc tomlFile
		_, err = toml.Decode(string(data), &doc)
		items = doc.Candidates
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &items)
	default:
		return nil, fmt.Errorf("dataset %s has unsupported extension %q", filename, filepath.Ext(filename))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode dataset %s: %w", filename, err)
	}

	log.Debugf("Read %d candidates from %s", len(items), filename)
	return items, nil
}

// LoadFile builds a Dataset from a single file.
func LoadFile(filename string) (*Dataset, error) {
	items, err := ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return New(items)
}

// LoadGlob builds a Dataset from every file matching a doublestar pattern
// (e.g. "data/**/*.toml"). Files are concatenated in lexical path order.
func LoadGlob(pattern string) (*Dataset, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no dataset files match %q", pattern)
	}
	sort.Strings(matches)

	var all []Candidate
	for _, file := range matches {
		items, err := ReadFile(file)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	log.Debugf("Loaded %d candidates from %d files", len(all), len(matches))
	return New(all)
}

// Load resolves path to a Dataset. An empty path yields the built-in sample,
// a path with glob metacharacters goes through LoadGlob.
func Load(path string) (*Dataset, error) {
	switch {
	case path == "":
		return New(Sample())
	case strings.ContainsAny(path, "*?[{"):
		return LoadGlob(path)
	default:
		return LoadFile(path)
	}
}

// WriteFile encodes items into filename using the format implied by its extension.
func WriteFile(filename string, items []Candidate) error {
	var (
		data []byte
		err  error
	)
	switch format := DetectFormat(filename); format {
	case FormatJSON:
		data, err = json.MarshalIndent(items, "", "  ")
	case FormatMsgpack:
		data, err = msgpack.Marshal(items)
	case FormatTOML:
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(tomlFile{Candidates: items})
		data = []byte(sb.String())
	default:
		return fmt.Errorf("dataset %s has unsupported extension %q", filename, filepath.Ext(filename))
	}
	if err != nil {
		return fmt.Errorf("failed to encode dataset %s: %w", filename, err)
	}
	return os.WriteFile(filename, data, 0644)
}
