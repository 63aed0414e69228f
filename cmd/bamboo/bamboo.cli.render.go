package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abend/bamboo"
)

type renderConfig struct {
	templatePath string
	seedJSON     string
	seedFilePath string
	outputPath   string
}

func runRender(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseRenderFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgMissingTemplate, err)
		return ExitCodeUsageError
	}

	source, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	seed, err := loadSeed(cfg.seedJSON, cfg.seedFilePath)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidSeed, err)
		return ExitCodeInputError
	}

	result, err := bamboo.Process(string(source), seed)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgExecuteFailed, err)
		return ExitCodeError
	}

	if err := writeOutput(cfg.outputPath, []byte(result), stdout); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}
	return ExitCodeSuccess
}

func parseRenderFlags(args []string) (*renderConfig, error) {
	fs := flag.NewFlagSet(CmdNameRender, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &renderConfig{}
	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.seedJSON, FlagSeed, "", "")
	fs.StringVar(&cfg.seedJSON, FlagSeedShort, "", "")
	fs.StringVar(&cfg.seedFilePath, FlagSeedFile, "", "")
	fs.StringVar(&cfg.seedFilePath, FlagSeedFileShort, "", "")
	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}
	return cfg, nil
}

// loadSeed parses a YAML (or, since YAML is a JSON superset, plain JSON)
// mapping into a bamboo.Env. An absent seed and file both yield an empty
// environment.
func loadSeed(seedText, filePath string) (*bamboo.Env, error) {
	var raw []byte
	switch {
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		raw = data
	case seedText != "":
		raw = []byte(seedText)
	default:
		return bamboo.NewEnv(), nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	env := bamboo.NewEnv()
	for k, v := range fields {
		env.Bind(k, normalizeSeedValue(v))
	}
	return env, nil
}

// normalizeSeedValue recursively widens yaml.v3's int/int64/uint64 scalar
// decoding to float64, matching the numeric type every other value in the
// host environment already carries (expr's arithmetic, comparison and
// truthiness all key off float64, not Go's int kinds).
func normalizeSeedValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = normalizeSeedValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = normalizeSeedValue(vv)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return val
	}
}
