package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "jsgate"

	// ConfigFileName is the file written by "jsgate init"
	ConfigFileName = "jsgate.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "JSGATE"

	// ConfigEnvVar points at a config file when none is found by discovery
	ConfigEnvVar = "JSGATE_CONFIG"
)

// Process exit codes
const (
	ExitAllow         = 0
	ExitDeny          = 1
	ExitUnrecoverable = 255
)

// Analyzer kinds selectable per profile
const (
	AnalyzerBuiltin = "builtin"
	AnalyzerESLint  = "eslint"
)

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// DefaultProfile is the profile name used by generated configs
const DefaultProfile = "default"

// PathPlaceholder is replaced by the analyzed file's path in analyzer commands
const PathPlaceholder = "{path}"

// Builtin rule ids
const (
	RuleParseError    = "parse-error"
	RuleNoEval        = "no-eval"
	RuleNoDebugger    = "no-debugger"
	RuleNoUnreachable = "no-unreachable"
	RuleEqeqeq        = "eqeqeq"
	RuleMaxComplexity = "max-complexity"
	RuleMaxDepth      = "max-depth"
	RuleMaxParams     = "max-params"
	RuleNoVar         = "no-var"
	RuleNoEmptyBlock  = "no-empty-block"
	RuleNoConsole     = "no-console"
)
