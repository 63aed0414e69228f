package main

// Command names.
const (
	CmdNameRender  = "render"
	CmdNameVersion = "version"
	CmdNameHelp    = "help"
)

// Flag names - long form.
const (
	FlagTemplate = "template"
	FlagSeed     = "seed"
	FlagSeedFile = "seed-file"
	FlagOutput   = "output"
	FlagFormat   = "format"
)

// Flag names - short form.
const (
	FlagTemplateShort = "t"
	FlagSeedShort     = "s"
	FlagSeedFileShort = "f"
	FlagOutputShort   = "o"
	FlagFormatShort   = "F"
)

// Flag default values.
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats for the version command.
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes.
const (
	ExitCodeSuccess    = 0
	ExitCodeError      = 1
	ExitCodeUsageError = 2
	ExitCodeInputError = 3
)

// InputSourceStdin marks a flag value that should read from stdin instead
// of a named file.
const InputSourceStdin = "-"

// Error messages.
const (
	ErrMsgMissingTemplate   = "template source required"
	ErrMsgInvalidSeed       = "invalid seed JSON"
	ErrMsgReadFileFailed    = "failed to read file"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgExecuteFailed     = "template execution failed"
	ErrMsgInvalidFormat     = "invalid output format"
	ErrMsgUnknownCommand    = "unknown command"
)

// Format strings.
const (
	FmtErrorWithCause  = "%s: %v\n"
	FmtErrorWithDetail = "%s: %s\n"
	FmtNewline         = "\n"
)

// FilePermissions is the mode used when writing output to a file.
const FilePermissions = 0644

// Help text.
const (
	HelpMainUsage = `bamboo - a small tag-based templating engine

Usage:
    bamboo <command> [options]

Commands:
    render      Render a template against a JSON-seeded environment
    version     Show version information
    help        Show help for a command

Use "bamboo help <command>" for more information about a command.`

	HelpRenderUsage = `Render a template against a JSON-seeded environment

Usage:
    bamboo render [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -s, --seed <json>       JSON object to seed the environment with
    -f, --seed-file <file>  JSON file to seed the environment with
    -o, --output <file>     Output file (default: stdout)

Examples:
    bamboo render -t template.txt -s '{"name": "Alice"}'
    bamboo render -t template.txt -f seed.json
    cat template.txt | bamboo render -t - -s '{"name": "Bob"}'`

	HelpVersionUsage = `Show version information

Usage:
    bamboo version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    bamboo help [command]

Commands:
    render      Show help for render command
    version     Show help for version command`
)
