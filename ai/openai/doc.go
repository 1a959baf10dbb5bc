// Package openai implements the ai interfaces against OpenAI-compatible
// HTTP endpoints, including local services such as Ollama and llama.cpp in
// OpenAI compatibility mode.
package openai
