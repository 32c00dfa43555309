package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Template is written on first run for the user to fill in
const Template = `version = "1.0"
language = "zh-CN"
api_url = "https://api.openai.com/v1/chat/completions"
api_key = ""
model = "gpt-4o-mini"
temperature = 0.2
# Requests per second sent to api_url (minimum 1)
rate_limit = 8
# Seconds before a translation request is abandoned
timeout = 30
# Optional custom request body; {{model}}, {{prompt}} and {{temperature}} are substituted
# request_body_template = '{"model": "{{model}}", "messages": [{"role": "user", "content": "{{prompt}}"}], "temperature": {{temperature}}}'
# Dotted path of the translated text in the response body
# response_path = "choices.0.message.content"
# Pause requests for 30s after this many consecutive failures (0 = never)
# breaker_failures = 0
`

// WriteTemplate creates the config directory and writes Template to path.
// An existing file is left untouched.
func WriteTemplate(path string) error {
	if Exists(path) {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(Template), 0600); err != nil {
		return fmt.Errorf("failed to write config template: %w", err)
	}

	return nil
}
