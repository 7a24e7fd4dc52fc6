// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (~/.briefly/config.toml)
//   - PromptStore: user-editable prompt templates with embedded defaults
//     and hot reload through fsnotify
package file
