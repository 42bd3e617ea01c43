// Package file provides filesystem implementations of driven ports.
//
// Adapters:
//   - ConfigStore: TOML settings at <config dir>/config.toml
//   - PromptStore: user-editable prompt templates at <config dir>/prompts/*.txt
package file
