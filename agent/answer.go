package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// extract decodes a JSON answer and evaluates path on it.
func extract(answer, path string) (any, error) {
	answer = strings.TrimSpace(answer)
	// some models wrap JSON in a markdown fence despite the mime type.
	answer = strings.TrimPrefix(answer, "```json")
	answer = strings.TrimPrefix(answer, "```")
	answer = strings.TrimSuffix(answer, "```")

	var jobj any
	if err := json.Unmarshal([]byte(answer), &jobj); err != nil {
		return nil, fmt.Errorf("answer is not JSON: %w", err)
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("cannot find %q in answer: %w", path, err)
	}
	return jval, nil
}

// extractStrings returns the strings found at path.
func extractStrings(answer, path string) ([]string, error) {
	jval, err := extract(answer, path)
	if err != nil {
		return nil, err
	}
	list, ok := jval.([]any)
	if !ok {
		list = []any{jval}
	}
	result := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%q holds %T, not a string", path, v)
		}
		result = append(result, s)
	}
	return result, nil
}

// extractString returns the single string found at path.
func extractString(answer, path string) (string, error) {
	jval, err := extract(answer, path)
	if err != nil {
		return "", err
	}
	// jsonpath may return a list of one answer.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	s, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("%q holds %T, not a string", path, jval)
	}
	return s, nil
}
