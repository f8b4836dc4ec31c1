// Package config handles configuration loading and merging for sarifview.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--sarif-dir, --refresh-on-task-end, --log-level, etc.)
//  2. Environment variables (SARIFVIEW_SARIF_DIRECTORY, SARIFVIEW_LOG_LEVEL, EDITOR, ...)
//  3. YAML config file (.sarifview.yaml in the working directory or $XDG_CONFIG_HOME/sarifview/.sarifview.yaml)
//  4. Hardcoded defaults
//
// Every resolved value records where it came from. Running any command with
// --log-level debug logs each value with its source.
//
// # Environment Variables
//
//   - SARIFVIEW_SARIF_DIRECTORY: directory scanned for .sarif files under each root
//   - SARIFVIEW_REFRESH_ON_TASK_END: always, on-failure or never
//   - SARIFVIEW_FOCUS_AFTER_REFRESH: boolean
//   - SARIFVIEW_LOG_LEVEL: debug, info, warn or error
//   - SARIFVIEW_LOG_FILE: path of the rotated JSON log file
//   - EDITOR: external editor command
package config
