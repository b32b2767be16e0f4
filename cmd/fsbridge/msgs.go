package fsbridge

// Command descriptions
const (
	MsgRootShort = "Report filesystem changes to a file synchronizer"
	MsgRootLong  = `fsbridge watches directory trees on behalf of a controlling process
(such as a file synchronizer) and reports which paths changed.

It speaks a line protocol on standard input and output, so it is normally
started by the controller rather than by hand. Logs go to standard error
and to a log file.`

	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgCompletionLong  = `Generate a shell completion script for fsbridge.

  bash:       source <(fsbridge completion bash)
  zsh:        fsbridge completion zsh > "${fpath[1]}/_fsbridge"
  fish:       fsbridge completion fish | source
  powershell: fsbridge completion powershell | Out-String | Invoke-Expression`
	MsgManShort       = "Generate man pages into a directory"
	MsgGenConfigShort = "Print the default configuration"
	MsgGenConfigLong  = `Print the built-in configuration as TOML.

Redirect it to $XDG_CONFIG_HOME/fsbridge/config.toml and edit the copy to
change the defaults.`
)

// Flag descriptions
const (
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig  = "Config file (default $XDG_CONFIG_HOME/fsbridge/config.toml)"
	MsgFlagLogFile = "Log file path, or - to log to stderr only"
)

// Output messages
const (
	MsgVersionFormat = "fsbridge %s (commit %s, built %s, protocol %s)\n"
	MsgManWritten    = "Man pages written to %s\n"
)

// Error messages
const (
	MsgErrLoadConfig = "failed to load configuration: %w"
	MsgErrWatcher    = "failed to start watcher: %w"
	MsgErrManDir     = "failed to create %s: %w"
)
