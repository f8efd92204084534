// Package file provides filesystem-backed configuration adapters.
//
// Adapters:
//   - ConfigStore: settings in $JSE_HOME/config.toml, nested tables read as
//     dotted keys ("query.default_k")
//   - PromptStore: editable analyst prompt templates in $JSE_HOME/prompts
package file
